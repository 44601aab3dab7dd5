package cli

import (
	"context"
	"strconv"

	"github.com/maximilian-heeg/xenium-filter-transcripts/internal/transcript"

	flag "github.com/spf13/pflag"
)

// PrintConfigCmd returns the print-config command.
func PrintConfigCmd(cfg *transcript.Config) *Command {
	return &Command{
		Flags: flag.NewFlagSet("print-config", flag.ContinueOnError),
		Usage: "print-config",
		Short: "Show resolved configuration",
		Long:  "Display the effective configuration and which files it was loaded from.",
		Exec: func(_ context.Context, io *IO, _ []string) error {
			return execPrintConfig(io, cfg)
		},
	}
}

func execPrintConfig(io *IO, cfg *transcript.Config) error {
	io.Println("effective_cwd=" + cfg.EffectiveCwd)
	io.Println("min_qv=" + formatFloat(cfg.MinQV))
	io.Println("min_x=" + formatFloat(cfg.MinX))
	io.Println("max_x=" + formatFloat(cfg.MaxX))
	io.Println("min_y=" + formatFloat(cfg.MinY))
	io.Println("max_y=" + formatFloat(cfg.MaxY))
	io.Println("nucleus_only=" + strconv.FormatBool(cfg.NucleusOnly))
	io.Println("out_dir=" + cfg.OutDirAbs())

	io.Println("")
	io.Println("# sources")

	if cfg.Sources.Global == "" && cfg.Sources.Project == "" {
		io.Println("(defaults only)")
	} else {
		if cfg.Sources.Global != "" {
			io.Println("global_config=" + cfg.Sources.Global)
		}

		if cfg.Sources.Project != "" {
			io.Println("project_config=" + cfg.Sources.Project)
		}
	}

	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
