package transcript

import (
	"fmt"
	"strconv"
	"strings"
)

// CellID is a decoded Xenium cell identifier.
//
// Xenium encodes the numeric part of a cell id as a run of letters where
// each letter is a hexadecimal nibble shifted into 'a'..'p' ('a' = 0,
// 'p' = 15), followed by "-" and a decimal dataset suffix. "ffkpbaba-1"
// is 0x55AF1010 in dataset 1.
type CellID struct {
	Prefix        uint64
	DatasetSuffix uint64
}

const hexDigits = "0123456789ABCDEF"

// DecodeCellID reverses the shifted-hex encoding.
//
// The string is split at the first "-"; everything after it must parse
// as a non-negative decimal integer. Every letter before it must be in
// 'a'..'p'. Anything else returns ErrMalformedCellID; the input is never
// coerced to a plausible-but-wrong number.
func DecodeCellID(encoded string) (CellID, error) {
	letters, suffix, found := strings.Cut(encoded, "-")
	if !found {
		return CellID{}, fmt.Errorf("%w: %q: missing '-' separator", ErrMalformedCellID, encoded)
	}

	datasetSuffix, err := strconv.ParseUint(suffix, 10, 64)
	if err != nil {
		return CellID{}, fmt.Errorf("%w: %q: dataset suffix is not a non-negative integer", ErrMalformedCellID, encoded)
	}

	if letters == "" {
		return CellID{}, fmt.Errorf("%w: %q: empty letter run", ErrMalformedCellID, encoded)
	}

	// Each letter maps to one hex digit; the concatenation is the prefix
	// in base 16.
	hex := make([]byte, len(letters))

	for i := 0; i < len(letters); i++ {
		v := int(letters[i]) - 'a'
		if v < 0 || v > 15 {
			return CellID{}, fmt.Errorf("%w: %q: letter %q outside 'a'..'p'", ErrMalformedCellID, encoded, letters[i])
		}

		hex[i] = hexDigits[v]
	}

	prefix, err := strconv.ParseUint(string(hex), 16, 64)
	if err != nil {
		// Only possible failure here is overflow (more than 16 letters).
		return CellID{}, fmt.Errorf("%w: %q: prefix does not fit in 64 bits", ErrMalformedCellID, encoded)
	}

	return CellID{Prefix: prefix, DatasetSuffix: datasetSuffix}, nil
}
