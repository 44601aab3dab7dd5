package transcript

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// Options holds the per-run decision parameters.
type Options struct {
	Bounds Bounds

	// NucleusOnly discards the cell assignment of transcripts that do
	// not overlap a nucleus.
	NucleusOnly bool
}

// Stats counts the outcome of a run.
type Stats struct {
	Read    uint64
	Kept    uint64
	Dropped uint64
}

// Apply decides one record and may rewrite its cell id.
//
// Order matters: nucleus-only blanking and UNASSIGNED normalization run
// before the codec, which is skipped entirely for the "0" sentinel.
// A malformed cell id on a kept record is returned as an error; the
// record is not mutated further and not kept.
func (o Options) Apply(t *Transcript) (bool, error) {
	if !o.Bounds.Keep(t) {
		return false, nil
	}

	if o.NucleusOnly && t.OverlapsNucleus == 0 {
		t.CellID = UnassignedCellID
	}

	if t.CellID == unassignedLiteral {
		t.CellID = UnassignedCellID
	}

	if t.CellID != UnassignedCellID {
		id, err := DecodeCellID(t.CellID)
		if err != nil {
			return false, err
		}

		t.CellID = strconv.FormatUint(id.Prefix, 10)
	}

	return true, nil
}

// ctxCheckInterval is how often the run loop polls for cancellation.
const ctxCheckInterval = 4096

// RunInput holds the inputs for Run.
type RunInput struct {
	Reader  io.Reader
	Writer  io.Writer
	Options Options

	// ProgressEvery invokes OnProgress after every N data rows read.
	// Zero disables progress reporting.
	ProgressEvery uint64
	OnProgress    func(rowsRead uint64)
}

// Run streams the transcript table from Reader to Writer, applying
// Options per record. Kept rows are written in input order. The first
// row-level failure aborts the run with the 1-based data row number.
func Run(ctx context.Context, in RunInput) (Stats, error) {
	reader := csv.NewReader(in.Reader)
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err == io.EOF {
		return Stats{}, ErrEmptyInput
	}

	if err != nil {
		return Stats{}, fmt.Errorf("reading header: %w", err)
	}

	idx, err := indexColumns(header)
	if err != nil {
		return Stats{}, err
	}

	writer := csv.NewWriter(in.Writer)

	err = writer.Write(Columns)
	if err != nil {
		return Stats{}, fmt.Errorf("writing header: %w", err)
	}

	var stats Stats

	for {
		row, readErr := reader.Read()
		if readErr == io.EOF {
			break
		}

		if readErr != nil {
			return stats, fmt.Errorf("row %d: %w", stats.Read+1, readErr)
		}

		stats.Read++

		if in.ProgressEvery > 0 && in.OnProgress != nil && stats.Read%in.ProgressEvery == 0 {
			in.OnProgress(stats.Read)
		}

		if stats.Read%ctxCheckInterval == 0 && ctx.Err() != nil {
			return stats, ctx.Err()
		}

		record, parseErr := idx.parseRow(row)
		if parseErr != nil {
			return stats, fmt.Errorf("row %d: %w", stats.Read, parseErr)
		}

		keep, applyErr := in.Options.Apply(&record)
		if applyErr != nil {
			return stats, fmt.Errorf("row %d: %w", stats.Read, applyErr)
		}

		if !keep {
			stats.Dropped++
			continue
		}

		writeErr := writer.Write(record.row(row, idx))
		if writeErr != nil {
			return stats, fmt.Errorf("row %d: %w", stats.Read, writeErr)
		}

		stats.Kept++
	}

	writer.Flush()

	err = writer.Error()
	if err != nil {
		return stats, fmt.Errorf("flushing output: %w", err)
	}

	return stats, nil
}
