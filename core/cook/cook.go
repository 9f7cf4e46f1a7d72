package cook

import "context"

// Result describes the outcome of a cook request.
type Result int

const (
	// ResultSuccess means the artifact was (re)generated.
	ResultSuccess Result = iota
	// ResultUpToDate means the artifact is newer than its source.
	ResultUpToDate
	// ResultDisabled means cooking is switched off in this build.
	ResultDisabled
	// ResultMissingSupport means no cook rule covers the artifact type.
	ResultMissingSupport
	// ResultCannotCook means the rule refused the input.
	ResultCannotCook
	// ResultSourceNotFound means the source asset is absent.
	ResultSourceNotFound
	// ResultFailed means the cook ran and failed.
	ResultFailed
)

func (r Result) String() string {
	switch r {
	case ResultSuccess:
		return "success"
	case ResultUpToDate:
		return "up_to_date"
	case ResultDisabled:
		return "disabled"
	case ResultMissingSupport:
		return "missing_support"
	case ResultCannotCook:
		return "cannot_cook"
	case ResultSourceNotFound:
		return "source_not_found"
	case ResultFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Cooker regenerates cooked artifacts on demand. The pipeline's loaders call
// Cook right before reading an artifact; the call is advisory only, so a
// cook failure never alters the load state machine - the subsequent read
// fails (or not) on its own terms.
type Cooker interface {
	// Cook regenerates the artifact at path if needed. With checkTimestamp
	// set, an artifact newer than its source is left alone; without it the
	// cook is forced.
	Cook(ctx context.Context, path string, checkTimestamp bool) Result

	// SupportsCooking reports whether a cook rule exists for artifacts with
	// the given extension (including the dot).
	SupportsCooking(ext string) bool
}

// Disabled is the Cooker used in builds that ship cooked content only.
type Disabled struct{}

// Cook implements Cooker.
func (Disabled) Cook(context.Context, string, bool) Result { return ResultDisabled }

// SupportsCooking implements Cooker.
func (Disabled) SupportsCooking(string) bool { return false }
