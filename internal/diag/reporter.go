package diag

import (
	"fmt"
	"io"
	"strings"
)

// Reporter consumes diagnostics as checking progresses. Methods return
// nothing; emitting a diagnostic never fails from the caller's point of view.
// Implementations: StreamReporter (production), Recorder (testing).
type Reporter interface {
	IOFailure(f IOFailure)
	DecodeFailure(f DecodeFailure)
	SyntaxFailure(f SyntaxFailure)
	Warning(w Warning)
}

// Compile-time assertion: *StreamReporter satisfies Reporter.
var _ Reporter = (*StreamReporter)(nil)

// StreamReporter renders diagnostics as plain text on a single stream.
// Write errors are ignored; the stream is assumed to be stderr or a buffer.
type StreamReporter struct {
	w io.Writer
}

// NewStreamReporter returns a reporter writing to w.
func NewStreamReporter(w io.Writer) *StreamReporter {
	return &StreamReporter{w: w}
}

// IOFailure writes "path: message" on one line.
func (r *StreamReporter) IOFailure(f IOFailure) {
	fmt.Fprintf(r.w, "%s: %s\n", f.Path, f.Msg)
}

// DecodeFailure writes the fixed decode complaint for the path.
func (r *StreamReporter) DecodeFailure(f DecodeFailure) {
	fmt.Fprintf(r.w, "%s: problem decoding source\n", f.Path)
}

// SyntaxFailure writes the location header, the offending source line and,
// when an offset is present, a caret line pointing at the failing column.
func (r *StreamReporter) SyntaxFailure(f SyntaxFailure) {
	fmt.Fprintf(r.w, "%s:%d: %s\n", f.Path, f.Line, f.Msg)
	fmt.Fprintf(r.w, "%s\n", f.LineText)
	if f.Offset != nil {
		fmt.Fprintf(r.w, "%s^\n", indent(*f.Offset+1))
	}
}

// Warning writes the warning's own text representation.
func (r *StreamReporter) Warning(w Warning) {
	fmt.Fprintf(r.w, "%s\n", w)
}

// indent yields n spaces, or the empty string when n is not positive.
func indent(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat(" ", n)
}

// Compile-time assertion: *Recorder satisfies Reporter.
var _ Reporter = (*Recorder)(nil)

// Recorder collects diagnostics in arrival order. It serves tests and any
// caller that post-processes diagnostics instead of streaming them.
type Recorder struct {
	Diagnostics []Diagnostic
}

func (r *Recorder) IOFailure(f IOFailure)         { r.Diagnostics = append(r.Diagnostics, f) }
func (r *Recorder) DecodeFailure(f DecodeFailure) { r.Diagnostics = append(r.Diagnostics, f) }
func (r *Recorder) SyntaxFailure(f SyntaxFailure) { r.Diagnostics = append(r.Diagnostics, f) }
func (r *Recorder) Warning(w Warning)             { r.Diagnostics = append(r.Diagnostics, w) }
