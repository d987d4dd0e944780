// Package diag defines the diagnostic conditions flint reports and the
// Reporter contract used to emit them.
package diag

import "fmt"

// Diagnostic is the closed set of reportable conditions. Callers dispatch on
// the concrete type; no variant exists outside this package.
type Diagnostic interface {
	diagnostic()
}

// IOFailure reports a source unit that could not be read. Msg carries the
// underlying cause only, not a decorated error string.
type IOFailure struct {
	Path string
	Msg  string
}

// DecodeFailure reports source bytes that are not valid UTF-8.
type DecodeFailure struct {
	Path string
}

// SyntaxFailure reports a parse failure at a specific line of a source unit.
// Offset is a 0-based byte offset into LineText used to place the caret; nil
// suppresses the caret line. Offsets recomputed across line boundaries can be
// negative and are kept as-is.
type SyntaxFailure struct {
	Path     string
	Msg      string
	Line     int
	Offset   *int
	LineText string
}

// Warning is an analyzer finding attributed to a line of a source unit.
type Warning struct {
	Path string
	Line int
	Msg  string
}

func (IOFailure) diagnostic()     {}
func (DecodeFailure) diagnostic() {}
func (SyntaxFailure) diagnostic() {}
func (Warning) diagnostic()       {}

// String renders the warning in "path:line: message" form.
func (w Warning) String() string {
	return fmt.Sprintf("%s:%d: %s", w.Path, w.Line, w.Msg)
}
