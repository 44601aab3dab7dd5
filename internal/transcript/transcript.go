// Package transcript filters Xenium transcript tables.
//
// A transcripts.csv row is one detected molecule. The package decides
// keep/drop per row against spatial, quality and control-probe rules,
// rewrites encoded cell ids into their numeric form, and streams kept
// rows to the output in input order.
package transcript

import (
	"fmt"
	"strconv"
)

// Column names of a Xenium transcripts.csv, in output order.
var Columns = []string{
	"transcript_id",
	"cell_id",
	"overlaps_nucleus",
	"feature_name",
	"x_location",
	"y_location",
	"z_location",
	"qv",
	"fov_name",
	"nucleus_distance",
}

// Transcript is one row of the table.
//
// Only cell_id, overlaps_nucleus, feature_name, x/y location and qv
// carry meaning for filtering. The remaining fields are opaque and kept
// as raw strings so their formatting survives the round trip untouched.
type Transcript struct {
	TranscriptID    string
	CellID          string
	OverlapsNucleus int
	FeatureName     string
	XLocation       float64
	YLocation       float64
	ZLocation       string
	QV              float64
	FOVName         string
	NucleusDistance string
}

// columnIndex maps each required column name to its position in the
// input header. Input files may carry extra columns; those are ignored.
type columnIndex map[string]int

func indexColumns(header []string) (columnIndex, error) {
	positions := make(columnIndex, len(header))
	for i, name := range header {
		positions[name] = i
	}

	for _, name := range Columns {
		if _, ok := positions[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}

	return positions, nil
}

// parseRow builds a Transcript from one data row.
func (idx columnIndex) parseRow(row []string) (Transcript, error) {
	field := func(name string) string { return row[idx[name]] }

	overlaps, err := strconv.Atoi(field("overlaps_nucleus"))
	if err != nil {
		return Transcript{}, fmt.Errorf("%w: overlaps_nucleus: %q", ErrFieldParse, field("overlaps_nucleus"))
	}

	x, err := strconv.ParseFloat(field("x_location"), 64)
	if err != nil {
		return Transcript{}, fmt.Errorf("%w: x_location: %q", ErrFieldParse, field("x_location"))
	}

	y, err := strconv.ParseFloat(field("y_location"), 64)
	if err != nil {
		return Transcript{}, fmt.Errorf("%w: y_location: %q", ErrFieldParse, field("y_location"))
	}

	qv, err := strconv.ParseFloat(field("qv"), 64)
	if err != nil {
		return Transcript{}, fmt.Errorf("%w: qv: %q", ErrFieldParse, field("qv"))
	}

	return Transcript{
		TranscriptID:    field("transcript_id"),
		CellID:          field("cell_id"),
		OverlapsNucleus: overlaps,
		FeatureName:     field("feature_name"),
		XLocation:       x,
		YLocation:       y,
		ZLocation:       field("z_location"),
		QV:              qv,
		FOVName:         field("fov_name"),
		NucleusDistance: field("nucleus_distance"),
	}, nil
}

// row renders t in output column order. Parsed numeric fields are
// written back in their raw input form except cell_id, which the
// pipeline may have rewritten.
func (t *Transcript) row(raw []string, idx columnIndex) []string {
	out := make([]string, 0, len(Columns))
	for _, name := range Columns {
		if name == "cell_id" {
			out = append(out, t.CellID)
			continue
		}

		out = append(out, raw[idx[name]])
	}

	return out
}
