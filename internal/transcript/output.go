package transcript

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/natefinch/atomic"
)

const (
	dirPerms  = 0o755
	filePerms = 0o644
)

// OutFileName returns the output file name for a parameter set, e.g.
// X0-24000_Y0-24000_filtered_transcripts_nucleus_only_false.csv.
// The name encodes the run parameters so differently-filtered outputs
// of the same input never collide.
func OutFileName(b Bounds, nucleusOnly bool) string {
	return fmt.Sprintf("X%s-%s_Y%s-%s_filtered_transcripts_nucleus_only_%t.csv",
		formatCoord(b.MinX), formatCoord(b.MaxX),
		formatCoord(b.MinY), formatCoord(b.MaxY),
		nucleusOnly)
}

// formatCoord renders a threshold in shortest form (0 not 0.000000).
func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WriteFileAtomic streams write to a temp file next to path and renames
// it into place on success. A failed write leaves no partial output.
func WriteFileAtomic(path string, write func(io.Writer) error) (err error) {
	dir := filepath.Dir(path)

	mkdirErr := os.MkdirAll(dir, dirPerms)
	if mkdirErr != nil {
		return fmt.Errorf("creating output directory: %w", mkdirErr)
	}

	tmp, tmpErr := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if tmpErr != nil {
		return fmt.Errorf("creating temp file: %w", tmpErr)
	}

	tmpPath := tmp.Name()

	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	err = write(tmp)
	if err != nil {
		return err
	}

	err = tmp.Chmod(filePerms)
	if err != nil {
		return fmt.Errorf("setting output permissions: %w", err)
	}

	err = tmp.Sync()
	if err != nil {
		return fmt.Errorf("syncing output: %w", err)
	}

	err = tmp.Close()
	if err != nil {
		return fmt.Errorf("closing output: %w", err)
	}

	err = atomic.ReplaceFile(tmpPath, path)
	if err != nil {
		return fmt.Errorf("renaming output into place: %w", err)
	}

	return nil
}
