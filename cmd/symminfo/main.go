// Command symminfo reports the symmetric-memory capability surface of the
// current build: the multicast capability matrix, alignment probes, and
// validation of a planned session against the platform ceilings.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

func main() {
	app := &cli.Command{
		Name:  "symminfo",
		Usage: "Inspect symmem backend capabilities and validate session plans",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return cli.ShowAppHelp(cmd)
		},
		Commands: []*cli.Command{
			capsCmd(),
			probeCmd(),
			planCmd(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
