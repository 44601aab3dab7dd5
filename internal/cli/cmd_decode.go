package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"

	"github.com/maximilian-heeg/xenium-filter-transcripts/internal/transcript"

	"github.com/peterh/liner"
	flag "github.com/spf13/pflag"
)

// DecodeCmd returns the decode command.
func DecodeCmd() *Command {
	flags := flag.NewFlagSet("decode", flag.ContinueOnError)
	interactive := flags.BoolP("interactive", "i", false, "Read cell ids from an interactive prompt")

	return &Command{
		Flags: flags,
		Usage: "decode [cell-id ...]",
		Short: "Decode encoded cell ids",
		Long: `Decode Xenium cell ids (e.g. "ffkpbaba-1") into numeric prefix and
dataset suffix, printed tab-separated, one per line.

Ids are taken from the arguments, or read line-by-line from stdin when
no arguments are given. With -i an interactive prompt is used instead.`,
		Exec: func(_ context.Context, o *IO, args []string) error {
			return execDecode(o, *interactive, args)
		},
	}
}

func execDecode(o *IO, interactive bool, args []string) error {
	if interactive {
		return decodePrompt(o)
	}

	if len(args) > 0 {
		return decodeAll(o, args)
	}

	if o.In() == nil {
		return errors.New("no cell ids given and no stdin attached")
	}

	scanner := bufio.NewScanner(o.In())
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		err := decodeOne(o, line)
		if err != nil {
			return err
		}
	}

	return scanner.Err()
}

func decodeAll(o *IO, ids []string) error {
	for _, id := range ids {
		err := decodeOne(o, id)
		if err != nil {
			return err
		}
	}

	return nil
}

func decodeOne(o *IO, encoded string) error {
	id, err := transcript.DecodeCellID(encoded)
	if err != nil {
		return err
	}

	o.Printf("%d\t%d\n", id.Prefix, id.DatasetSuffix)

	return nil
}

// decodePrompt runs a readline loop on the controlling terminal.
// Decode failures are printed and the loop continues.
func decodePrompt(o *IO) error {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)

	for {
		input, err := line.Prompt("xft> ")
		if err == io.EOF || errors.Is(err, liner.ErrPromptAborted) {
			return nil
		}

		if err != nil {
			return err
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if input == "exit" || input == "quit" {
			return nil
		}

		line.AppendHistory(input)

		err = decodeOne(o, input)
		if err != nil {
			o.ErrPrintln("error:", err)
		}
	}
}
