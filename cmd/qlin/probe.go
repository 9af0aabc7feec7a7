package main

import (
	"context"
	"fmt"
	"os"

	json "github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/quantfold/qlin/internal/api"
	"github.com/quantfold/qlin/internal/kernels"
)

func probeCmd() *cli.Command {
	var jsonOut bool

	flags := append(kernelFlags(), loggingFlags()...)
	flags = append(flags, &cli.BoolFlag{
		Name:        "json",
		Usage:       "emit the report as JSON",
		Destination: &jsonOut,
	})

	return &cli.Command{
		Name:  "probe",
		Usage: "Probe which native kernel extensions are available",
		Flags: flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			applyCommonConfig(cmd, cfg)

			snap := kernels.Probe(probeOptions())
			if jsonOut {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(api.NewKernelReport(snap))
			}

			fmt.Printf("devices: hpu=%v cuda=%v rocm=%v\n\n", snap.HPU, snap.CUDA, snap.ROCm)
			for _, ext := range kernels.Extensions() {
				cap := snap.Get(ext)
				switch {
				case cap.Available && cap.Version != "":
					fmt.Printf("%-12s ok       %s (version %s)\n", ext, cap.Path, cap.Version)
				case cap.Available:
					fmt.Printf("%-12s ok       %s\n", ext, cap.Path)
				default:
					fmt.Printf("%-12s missing  %v\n", ext, cap.Err)
				}
			}
			return nil
		},
	}
}
