// internal/timeline/errors.go
package timeline

import (
	"fmt"

	"github.com/bedlam-render/sequencer/pkg/core"
)

// AssetResolutionError reports a scene asset that a sequence needs but
// the host registry cannot resolve.
type AssetResolutionError struct {
	Ref core.AssetRef
	Err error
}

func (e *AssetResolutionError) Error() string {
	return fmt.Sprintf("cannot resolve asset %s: %v", e.Ref.String(), e.Err)
}

func (e *AssetResolutionError) Unwrap() error {
	return e.Err
}

// HostStateError reports scene state the host was expected to provide,
// like the level camera actor or a template timeline.
type HostStateError struct {
	Expected string
	Err      error
}

func (e *HostStateError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("host is missing %s", e.Expected)
	}
	return fmt.Sprintf("host is missing %s: %v", e.Expected, e.Err)
}

func (e *HostStateError) Unwrap() error {
	return e.Err
}

// SequencingInvariantError reports a sequence whose timeline cannot be
// completed as configured.
type SequencingInvariantError struct {
	Sequence string
	Violated string
}

func (e *SequencingInvariantError) Error() string {
	return fmt.Sprintf("sequence %s: %s", e.Sequence, e.Violated)
}
