package transcript

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestApplySentinelHandling(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		cellID      string
		overlaps    int
		nucleusOnly bool
		wantCellID  string
	}{
		{"unassigned normalized to zero", "UNASSIGNED", 1, false, "0"},
		{"nucleus-only blanks non-overlapping", "ffkpbaba-1", 0, true, "0"},
		{"nucleus-only blanks unassigned too", "UNASSIGNED", 0, true, "0"},
		{"nucleus-only keeps overlapping assignment", "ffkpbaba-1", 1, true, "1437536272"},
		{"assigned id decoded", "ffkpbaba-1", 0, false, "1437536272"},
		{"zero sentinel skips codec", "0", 1, false, "0"},
	}

	for _, testCase := range tests {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			record := passing()
			record.CellID = testCase.cellID
			record.OverlapsNucleus = testCase.overlaps

			opts := Options{Bounds: defaultBounds, NucleusOnly: testCase.nucleusOnly}

			keep, err := opts.Apply(&record)
			if err != nil {
				t.Fatalf("Apply failed: %v", err)
			}

			if !keep {
				t.Fatal("Apply dropped a passing record")
			}

			if got, want := record.CellID, testCase.wantCellID; got != want {
				t.Errorf("cell id = %q, want %q", got, want)
			}
		})
	}
}

func TestApplyMalformedCellID(t *testing.T) {
	t.Parallel()

	record := passing()
	record.CellID = "not a cell id"

	opts := Options{Bounds: defaultBounds}

	keep, err := opts.Apply(&record)
	if keep {
		t.Error("record with malformed cell id must not be kept")
	}

	if !errors.Is(err, ErrMalformedCellID) {
		t.Errorf("want ErrMalformedCellID, got %v", err)
	}
}

// Dropped records are never decoded, so a malformed cell id on a
// filtered-out row is not an error.
func TestApplyDroppedRecordSkipsCodec(t *testing.T) {
	t.Parallel()

	record := passing()
	record.CellID = "not a cell id"
	record.QV = 5

	opts := Options{Bounds: defaultBounds}

	keep, err := opts.Apply(&record)
	if keep || err != nil {
		t.Errorf("Apply = (%v, %v), want (false, nil)", keep, err)
	}

	if record.CellID != "not a cell id" {
		t.Errorf("dropped record was mutated: %q", record.CellID)
	}
}

const testHeader = "transcript_id,cell_id,overlaps_nucleus,feature_name,x_location,y_location,z_location,qv,fov_name,nucleus_distance\n"

func runCSV(t *testing.T, input string, opts Options) (string, Stats, error) {
	t.Helper()

	var out strings.Builder

	stats, err := Run(context.Background(), RunInput{
		Reader:  strings.NewReader(input),
		Writer:  &out,
		Options: opts,
	})

	return out.String(), stats, err
}

func TestRunEndToEnd(t *testing.T) {
	t.Parallel()

	// Row 1 kept with cell id normalized, row 2 dropped by qv,
	// row 3 dropped by control-probe rule.
	input := testHeader +
		"1,UNASSIGNED,0,gene,5,5,1.5,25,FOV1,0.0\n" +
		"2,ffkpbaba-1,1,gene,5,5,1.5,10,FOV1,0.0\n" +
		"3,ffkpbaba-1,1,BLANK_1,5,5,1.5,25,FOV1,0.0\n"

	opts := Options{Bounds: defaultBounds}

	got, stats, err := runCSV(t, input, opts)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	want := testHeader + "1,0,0,gene,5,5,1.5,25,FOV1,0.0\n"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff(Stats{Read: 3, Kept: 1, Dropped: 2}, stats); diff != "" {
		t.Errorf("stats mismatch (-want +got):\n%s", diff)
	}
}

func TestRunPreservesInputOrder(t *testing.T) {
	t.Parallel()

	var rows strings.Builder

	rows.WriteString(testHeader)

	for _, id := range []string{"9", "3", "7", "1", "5"} {
		rows.WriteString(id + ",0,0,gene,5,5,1.5,25,FOV1,0.0\n")
	}

	got, _, err := runCSV(t, rows.String(), Options{Bounds: defaultBounds})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	var ids []string
	for i, line := range strings.Split(strings.TrimSpace(got), "\n") {
		if i == 0 {
			continue
		}

		ids = append(ids, strings.SplitN(line, ",", 2)[0])
	}

	if diff := cmp.Diff([]string{"9", "3", "7", "1", "5"}, ids); diff != "" {
		t.Errorf("row order mismatch (-want +got):\n%s", diff)
	}
}

func TestRunPreservesOpaqueFields(t *testing.T) {
	t.Parallel()

	// Opaque fields keep their exact input formatting, including
	// trailing zeros and scientific notation.
	input := testHeader +
		"281474976710656,ffkpbaba-1,1,gene,5.00,5,1.250000,25,F0V-07,1.3e-05\n"

	got, _, err := runCSV(t, input, Options{Bounds: defaultBounds})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	want := testHeader + "281474976710656,1437536272,1,gene,5.00,5,1.250000,25,F0V-07,1.3e-05\n"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestRunReordersShuffledHeader(t *testing.T) {
	t.Parallel()

	// Input column order differs from the canonical one; output is
	// always written in canonical order.
	input := "qv,cell_id,transcript_id,overlaps_nucleus,feature_name,x_location,y_location,z_location,fov_name,nucleus_distance\n" +
		"25,ffkpbaba-1,1,1,gene,5,5,1.5,FOV1,0.0\n"

	got, _, err := runCSV(t, input, Options{Bounds: defaultBounds})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	want := testHeader + "1,1437536272,1,gene,5,5,1.5,25,FOV1,0.0\n"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestRunErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		input       string
		wantErr     error
		wantMessage string
	}{
		{
			name:    "empty input",
			input:   "",
			wantErr: ErrEmptyInput,
		},
		{
			name:        "missing column",
			input:       "transcript_id,cell_id\n",
			wantErr:     ErrMissingColumn,
			wantMessage: "overlaps_nucleus",
		},
		{
			name:        "non-numeric qv",
			input:       testHeader + "1,0,0,gene,5,5,1.5,high,FOV1,0.0\n",
			wantErr:     ErrFieldParse,
			wantMessage: "row 1",
		},
		{
			name: "malformed cell id reports row number",
			input: testHeader +
				"1,ffkpbaba-1,1,gene,5,5,1.5,25,FOV1,0.0\n" +
				"2,bogus,1,gene,5,5,1.5,25,FOV1,0.0\n",
			wantErr:     ErrMalformedCellID,
			wantMessage: "row 2",
		},
		{
			name: "short row",
			input: testHeader +
				"1,0,0,gene,5,5\n",
			wantMessage: "wrong number of fields",
		},
	}

	for _, testCase := range tests {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			_, _, err := runCSV(t, testCase.input, Options{Bounds: defaultBounds})
			if err == nil {
				t.Fatal("Run should have failed")
			}

			if testCase.wantErr != nil && !errors.Is(err, testCase.wantErr) {
				t.Errorf("err = %v, want %v", err, testCase.wantErr)
			}

			if testCase.wantMessage != "" && !strings.Contains(err.Error(), testCase.wantMessage) {
				t.Errorf("err = %q, want to contain %q", err, testCase.wantMessage)
			}
		})
	}
}

func TestRunProgressCallback(t *testing.T) {
	t.Parallel()

	var rows strings.Builder

	rows.WriteString(testHeader)

	for i := 0; i < 10; i++ {
		rows.WriteString("1,0,0,gene,5,5,1.5,25,FOV1,0.0\n")
	}

	var calls []uint64

	_, err := Run(context.Background(), RunInput{
		Reader:        strings.NewReader(rows.String()),
		Writer:        &strings.Builder{},
		Options:       Options{Bounds: defaultBounds},
		ProgressEvery: 4,
		OnProgress:    func(rowsRead uint64) { calls = append(calls, rowsRead) },
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if diff := cmp.Diff([]uint64{4, 8}, calls); diff != "" {
		t.Errorf("progress calls mismatch (-want +got):\n%s", diff)
	}
}

func TestRunCancelledContext(t *testing.T) {
	t.Parallel()

	var rows strings.Builder

	rows.WriteString(testHeader)

	for i := 0; i < ctxCheckInterval+1; i++ {
		rows.WriteString("1,0,0,gene,5,5,1.5,25,FOV1,0.0\n")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, RunInput{
		Reader:  strings.NewReader(rows.String()),
		Writer:  &strings.Builder{},
		Options: Options{Bounds: defaultBounds},
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
