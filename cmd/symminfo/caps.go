package main

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/LynnColeArt/symmem"
)

// capsReport is the JSON document the caps command emits. Callers use it
// to decide which (dtype, width) code paths are issuable before launching.
type capsReport struct {
	Backend            string              `json:"backend"`
	MaxBlocks          int                 `json:"max_blocks"`
	MaxThreadsPerBlock int                 `json:"max_threads_per_block"`
	MaxVectorWidth     int                 `json:"max_vector_width"`
	WideWords          bool                `json:"wide_words"`
	CPUFeatures        []string            `json:"cpu_features"`
	Capabilities       []symmem.Capability `json:"capabilities"`
}

func capsCmd() *cli.Command {
	return &cli.Command{
		Name:  "caps",
		Usage: "Print the multicast capability matrix as JSON",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			report := capsReport{
				Backend:            symmem.MultimemBackendName(),
				MaxBlocks:          symmem.MaxNumBlocks,
				MaxThreadsPerBlock: symmem.MaxNumThreadsPerBlock,
				MaxVectorWidth:     symmem.MaxVectorWidth,
				WideWords:          symmem.MultimemWideWords(),
				CPUFeatures:        symmem.CPUFeatures(),
				Capabilities:       symmem.CapabilityMatrix(),
			}
			out, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}
}
