package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/quantfold/qlin/internal/kernels"
	"github.com/quantfold/qlin/internal/selector"
)

func selectCmd() *cli.Command {
	var (
		bits      int64
		groupSize int64
		descAct   bool

		useTriton        bool
		useTritonV2      bool
		useQigen         bool
		useMarlin        bool
		useIPEX          bool
		disableExllama   string
		disableExllamaV2 bool
	)

	flags := append(kernelFlags(), loggingFlags()...)
	flags = append(flags,
		&cli.Int64Flag{
			Name:        "bits",
			Aliases:     []string{"b"},
			Usage:       "quantization bit width",
			Value:       4,
			Destination: &bits,
		},
		&cli.Int64Flag{
			Name:        "group-size",
			Aliases:     []string{"group_size", "g"},
			Usage:       "quantization group size (-1 = no grouping)",
			Value:       -1,
			Destination: &groupSize,
		},
		&cli.BoolFlag{
			Name:        "desc-act",
			Aliases:     []string{"desc_act"},
			Usage:       "descending activation order reordering",
			Destination: &descAct,
		},
		&cli.BoolFlag{
			Name:        "use-triton",
			Usage:       "prefer the triton v1 kernel",
			Destination: &useTriton,
		},
		&cli.BoolFlag{
			Name:        "use-tritonv2",
			Usage:       "prefer the triton v2 kernel",
			Destination: &useTritonV2,
		},
		&cli.BoolFlag{
			Name:        "use-qigen",
			Usage:       "prefer the qigen CPU codegen kernel",
			Destination: &useQigen,
		},
		&cli.BoolFlag{
			Name:        "use-marlin",
			Usage:       "prefer the marlin kernel (4-bit only)",
			Destination: &useMarlin,
		},
		&cli.BoolFlag{
			Name:        "use-ipex",
			Usage:       "prefer the intel cpu extension (4-bit only)",
			Destination: &useIPEX,
		},
		&cli.StringFlag{
			Name:        "disable-exllama",
			Usage:       "disable the exllama v1 kernel (auto, true, false)",
			Value:       "auto",
			Destination: &disableExllama,
		},
		&cli.BoolFlag{
			Name:        "disable-exllamav2",
			Usage:       "disable the exllama v2 kernel",
			Destination: &disableExllamaV2,
		},
	)

	return &cli.Command{
		Name:  "select",
		Usage: "Pick the linear-layer backend for a quantization config",
		Flags: flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			fileCfg, err := loadConfig()
			if err != nil {
				return err
			}
			applyCommonConfig(cmd, fileCfg)
			log := newLogger()

			pref := prefFromConfig(fileCfg.Prefer)
			if cmd.IsSet("use-triton") {
				pref.UseTriton = useTriton
			}
			if cmd.IsSet("use-tritonv2") {
				pref.UseTritonV2 = useTritonV2
			}
			if cmd.IsSet("use-qigen") {
				pref.UseQigen = useQigen
			}
			if cmd.IsSet("use-marlin") {
				pref.UseMarlin = useMarlin
			}
			if cmd.IsSet("use-ipex") {
				pref.UseIPEX = useIPEX
			}
			if cmd.IsSet("disable-exllamav2") {
				pref.DisableExllamaV2 = disableExllamaV2
			}
			if cmd.IsSet("disable-exllama") {
				t, err := parseTristate(disableExllama)
				if err != nil {
					return err
				}
				pref.DisableExllama = t
			}

			cfg := selector.QuantConfig{
				Bits:      int(bits),
				GroupSize: int(groupSize),
				DescAct:   descAct,
			}
			snap := kernels.Probe(probeOptions())
			backend, err := selector.New(log).Select(snap, cfg, pref)
			if err != nil {
				return err
			}
			fmt.Println(backend)
			return nil
		},
	}
}

func prefFromConfig(p PreferConfig) selector.Preference {
	pref := selector.Preference{
		UseTriton:        p.UseTriton,
		UseTritonV2:      p.UseTritonV2,
		UseQigen:         p.UseQigen,
		UseMarlin:        p.UseMarlin,
		UseIPEX:          p.UseIPEX,
		DisableExllamaV2: p.DisableExllamaV2,
	}
	if p.DisableExllama != nil {
		if *p.DisableExllama {
			pref.DisableExllama = selector.Enabled
		} else {
			pref.DisableExllama = selector.Disabled
		}
	}
	return pref
}

func parseTristate(v string) (selector.Tristate, error) {
	switch v {
	case "auto", "":
		return selector.Unset, nil
	case "true", "yes", "on":
		return selector.Enabled, nil
	case "false", "no", "off":
		return selector.Disabled, nil
	default:
		return selector.Unset, fmt.Errorf("invalid --disable-exllama value %q (expected auto, true, or false)", v)
	}
}
