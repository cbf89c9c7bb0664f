package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/urfave/cli/v3"

	"github.com/LynnColeArt/symmem"
)

func probeCmd() *cli.Command {
	return &cli.Command{
		Name:      "probe",
		Usage:     "Print the largest safe vector width for addresses or sizes",
		ArgsUsage: "value [value ...]  (decimal, or hex with 0x prefix)",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			args := cmd.Args().Slice()
			if len(args) == 0 {
				return cli.Exit("probe: at least one value required", 1)
			}
			for _, arg := range args {
				v, err := strconv.ParseUint(arg, 0, 64)
				if err != nil {
					return cli.Exit(fmt.Sprintf("probe: cannot parse %q: %v", arg, err), 1)
				}
				fmt.Printf("%s\talignment %d\n", arg, symmem.AlignmentOfSize(uintptr(v)))
			}
			return nil
		},
	}
}
