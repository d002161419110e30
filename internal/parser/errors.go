package parser

import "fmt"

// ConfigParseError reports a malformed scene descriptor row. Parsing is
// fail-fast: the first bad row aborts the run, because later rows may
// depend on state the bad row should have established.
type ConfigParseError struct {
	File string
	Line int
	Err  error
}

func (e *ConfigParseError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("%s:%d: %v", e.File, e.Line, e.Err)
}

func (e *ConfigParseError) Unwrap() error {
	return e.Err
}
