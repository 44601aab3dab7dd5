package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/maximilian-heeg/xenium-filter-transcripts/internal/transcript"
)

const helpFlag = "--help"

// Run is the main entry point. Returns exit code.
func Run(stdin io.Reader, out, errOut io.Writer, args []string, env map[string]string, sigCh <-chan os.Signal) int {
	o := NewIO(stdin, out, errOut)

	if len(args) < 2 {
		printUsage(o)
		return 0
	}

	flags, err := parseGlobalFlags(args[1:])
	if err != nil {
		o.ErrPrintln("error:", err)
		return 1
	}

	if len(flags.remaining) == 0 || flags.remaining[0] == "-h" || flags.remaining[0] == helpFlag {
		printUsage(o)
		return 0
	}

	cfg, err := transcript.LoadConfig(transcript.LoadConfigInput{
		WorkDirOverride: flags.workDir,
		ConfigPath:      flags.configPath,
		Env:             env,
	})
	if err != nil {
		o.ErrPrintln("error:", err)
		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if sigCh != nil {
		go func() {
			<-sigCh
			cancel()
		}()
	}

	commands := []*Command{
		FilterCmd(&cfg),
		DecodeCmd(),
		PrintConfigCmd(&cfg),
	}

	name := flags.remaining[0]
	for _, cmd := range commands {
		if cmd.Name() == name {
			return cmd.Run(ctx, o, flags.remaining[1:])
		}
	}

	o.ErrPrintln("error: unknown command:", name)
	printUsage(NewIO(stdin, errOut, errOut))

	return 1
}

type globalFlags struct {
	workDir    string
	configPath string
	remaining  []string
}

// parseGlobalFlags consumes flags that appear before the command name.
func parseGlobalFlags(args []string) (globalFlags, error) {
	var flags globalFlags

	idx := 0
	for idx < len(args) {
		arg := args[idx]

		switch {
		case arg == "-C" || arg == "--cwd":
			if idx+1 >= len(args) {
				return globalFlags{}, fmt.Errorf("%w: %s", transcript.ErrFlagRequiresArg, arg)
			}

			flags.workDir = args[idx+1]
			idx += 2

		case strings.HasPrefix(arg, "--cwd="):
			flags.workDir = strings.TrimPrefix(arg, "--cwd=")
			idx++

		case arg == "-c" || arg == "--config":
			if idx+1 >= len(args) {
				return globalFlags{}, fmt.Errorf("%w: %s", transcript.ErrFlagRequiresArg, arg)
			}

			flags.configPath = args[idx+1]
			idx += 2

		case strings.HasPrefix(arg, "--config="):
			flags.configPath = strings.TrimPrefix(arg, "--config=")
			idx++

		case arg == "-h" || arg == helpFlag:
			flags.remaining = []string{helpFlag}
			return flags, nil

		case strings.HasPrefix(arg, "-") && arg != "-":
			return globalFlags{}, fmt.Errorf("%w: %s", transcript.ErrUnknownFlag, arg)

		default:
			// Not a flag, this is the command.
			flags.remaining = args[idx:]
			return flags, nil
		}
	}

	return flags, nil
}

func printUsage(o *IO) {
	o.Println(`xft - filter Xenium transcript tables

Filters transcripts.csv by Q-Score and x/y bounds, removes negative
controls, and decodes cell ids into their numeric form.

Usage: xft [options] <command> [args]

Options:
  -C, --cwd <dir>       Run as if started in <dir>
  -c, --config <path>   Config file (default: .xft.json in cwd)
  -h, --help            Show this help

Commands:`)

	cfg := transcript.DefaultConfig()
	for _, cmd := range []*Command{FilterCmd(&cfg), DecodeCmd(), PrintConfigCmd(&cfg)} {
		o.Println(cmd.HelpLine())
	}

	o.Println()
	o.Println(`Run 'xft <command> --help' for command details.`)
}
