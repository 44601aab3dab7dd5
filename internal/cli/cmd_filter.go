package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/maximilian-heeg/xenium-filter-transcripts/internal/transcript"

	flag "github.com/spf13/pflag"
)

// FilterCmd returns the filter command. Flag defaults come from cfg, so
// config-file values show up in --help and flags override them only
// when given.
func FilterCmd(cfg *transcript.Config) *Command {
	flags := flag.NewFlagSet("filter", flag.ContinueOnError)

	flags.Float64Var(&cfg.MinQV, "min-qv", cfg.MinQV, "Minimum Q-Score to pass filtering")
	flags.Float64Var(&cfg.MinX, "min-x", cfg.MinX, "Keep transcripts with x >= this limit (microns)")
	flags.Float64Var(&cfg.MaxX, "max-x", cfg.MaxX, "Keep transcripts with x <= this limit (microns)")
	flags.Float64Var(&cfg.MinY, "min-y", cfg.MinY, "Keep transcripts with y >= this limit (microns)")
	flags.Float64Var(&cfg.MaxY, "max-y", cfg.MaxY, "Keep transcripts with y <= this limit (microns)")
	flags.BoolVar(&cfg.NucleusOnly, "nucleus-only", cfg.NucleusOnly,
		"Drop cell assignment of transcripts outside the nucleus")
	flags.StringVar(&cfg.OutDir, "out-dir", cfg.OutDir, "Directory for the output file")
	progressEvery := flags.Uint64("progress", 0, "Print a progress line every N rows (0 = off)")

	return &Command{
		Flags: flags,
		Usage: "filter <transcripts.csv> [flags]",
		Short: "Filter a transcript table",
		Long: `Filter transcripts by Q-Score and x/y bounds, remove negative
controls and blanks, and decode cell ids into their numeric form.

The output file is written to --out-dir and named after the run
parameters:
  X{min-x}-{max-x}_Y{min-y}-{max-y}_filtered_transcripts_nucleus_only_{nucleus-only}.csv

The path of the written file is printed to stdout.`,
		Exec: func(ctx context.Context, o *IO, args []string) error {
			return execFilter(ctx, o, cfg, *progressEvery, args)
		},
	}
}

func execFilter(ctx context.Context, o *IO, cfg *transcript.Config, progressEvery uint64, args []string) error {
	if len(args) == 0 {
		return transcript.ErrInputFileRequired
	}

	inPath := args[0]
	if !filepath.IsAbs(inPath) {
		inPath = filepath.Join(cfg.EffectiveCwd, inPath)
	}

	err := cfg.Validate()
	if err != nil {
		return err
	}

	opts := transcript.Options{
		Bounds:      cfg.Bounds(),
		NucleusOnly: cfg.NucleusOnly,
	}

	outPath := filepath.Join(cfg.OutDirAbs(), transcript.OutFileName(opts.Bounds, opts.NucleusOnly))

	inFile, err := os.Open(inPath)
	if err != nil {
		return fmt.Errorf("opening input: %w", err)
	}
	defer inFile.Close()

	var stats transcript.Stats

	err = transcript.WithOutputLock(outPath, func() error {
		return transcript.WriteFileAtomic(outPath, func(w io.Writer) error {
			var runErr error

			stats, runErr = transcript.Run(ctx, transcript.RunInput{
				Reader:        bufio.NewReader(inFile),
				Writer:        w,
				Options:       opts,
				ProgressEvery: progressEvery,
				OnProgress: func(rowsRead uint64) {
					o.ErrPrintf("processed %d rows\n", rowsRead)
				},
			})

			return runErr
		})
	})
	if err != nil {
		return err
	}

	o.ErrPrintf("read %d, kept %d, dropped %d\n", stats.Read, stats.Kept, stats.Dropped)
	o.Println(outPath)

	return nil
}
