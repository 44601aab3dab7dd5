package transcript

import "errors"

// Cell-id sentinel meaning "no cell assignment".
const UnassignedCellID = "0"

// Literal value Xenium writes for cell-free transcripts.
const unassignedLiteral = "UNASSIGNED"

// Error variables for transcript processing.
var (
	ErrMalformedCellID    = errors.New("malformed cell id")
	ErrMissingColumn      = errors.New("missing required column")
	ErrEmptyInput         = errors.New("input has no header row")
	ErrFieldParse         = errors.New("cannot parse field")
	ErrConfigFileNotFound = errors.New("config file not found")
	ErrConfigFileRead     = errors.New("cannot read config file")
	ErrConfigInvalid      = errors.New("invalid config file")
	ErrBoundsInverted     = errors.New("min bound exceeds max bound")
	ErrOutDirEmpty        = errors.New("out-dir cannot be empty")
	ErrOutputLocked       = errors.New("output file is locked by another run")
	ErrFlagRequiresArg    = errors.New("flag requires an argument")
	ErrUnknownFlag        = errors.New("unknown flag")
	ErrInputFileRequired  = errors.New("input file is required")
)
