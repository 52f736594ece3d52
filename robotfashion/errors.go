package robotfashion

import "github.com/pkg/errors"

// Error kinds surfaced by this package. Callers match them with errors.Is;
// every error returned from construction, provisioning or retrieval wraps
// exactly one of these.
var (
	ErrInvalidConfig    = errors.New("invalid dataset configuration")
	ErrProvisioning     = errors.New("dataset provisioning failed")
	ErrDataConsistency  = errors.New("dataset consistency violation")
	ErrAnnotationParse  = errors.New("annotation parse failure")
	ErrUnsupportedSplit = errors.New("split not supported")
)
