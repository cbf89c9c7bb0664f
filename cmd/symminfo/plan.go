package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/LynnColeArt/symmem"
)

// sessionPlan is the YAML shape of a planned symmetric-memory session.
type sessionPlan struct {
	WorldSize   int      `yaml:"world_size"`
	Grid        planDim3 `yaml:"grid"`
	Block       planDim3 `yaml:"block"`
	BufferBytes int      `yaml:"buffer_bytes"`
}

type planDim3 struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
	Z int `yaml:"z"`
}

func (d planDim3) dim() symmem.Dim3 {
	return symmem.Dim3{X: d.X, Y: d.Y, Z: d.Z}
}

func planCmd() *cli.Command {
	var configPath string
	return &cli.Command{
		Name:  "plan",
		Usage: "Validate a YAML session plan against the platform ceilings",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Usage:       "path to the session plan YAML",
				Required:    true,
				Destination: &configPath,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			raw, err := os.ReadFile(configPath)
			if err != nil {
				return errors.Wrap(err, "plan: reading config")
			}
			var plan sessionPlan
			if err := yaml.Unmarshal(raw, &plan); err != nil {
				return errors.Wrap(err, "plan: parsing config")
			}

			w, err := symmem.NewWorld(plan.WorldSize)
			if err != nil {
				return errors.Wrap(err, "plan: world")
			}
			grid, block := plan.Grid.dim(), plan.Block.dim()
			if err := symmem.ValidateLaunchConfig(grid, block); err != nil {
				return errors.Wrap(err, "plan: launch config")
			}
			if block.Size() < plan.WorldSize {
				return errors.Errorf("plan: block size %d smaller than world size %d; remote block sync needs one lane per peer",
					block.Size(), plan.WorldSize)
			}
			if plan.BufferBytes > 0 {
				if _, err := w.AllocSymmetric(plan.BufferBytes); err != nil {
					return errors.Wrap(err, "plan: symmetric buffer")
				}
			}

			padBytes := uint64(symmem.SignalPadWords(plan.WorldSize) * symmem.SignalWordBytes)
			fmt.Printf("plan ok: world %d ranks, grid %d block %d, vector width for buffer offset 0: %d\n",
				plan.WorldSize, grid.Size(), block.Size(), symmem.MaxVectorWidth)
			fmt.Printf("signal pads: %s per rank, %s total\n",
				humanize.IBytes(padBytes), humanize.IBytes(padBytes*uint64(plan.WorldSize)))
			if plan.BufferBytes > 0 {
				fmt.Printf("symmetric buffer: %s per rank, %s total\n",
					humanize.IBytes(uint64(plan.BufferBytes)),
					humanize.IBytes(uint64(plan.BufferBytes)*uint64(plan.WorldSize)))
			}
			return nil
		},
	}
}
