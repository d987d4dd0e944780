package check

import (
	"bytes"
	"cmp"
	"errors"
	"io/fs"
	"os"
	"slices"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/dusk-indust/flint/internal/diag"
	"github.com/dusk-indust/flint/internal/pyparse"
)

// Config carries the checker's collaborators. Analyzer and Reporter must be
// set; a nil Logger disables logging.
type Config struct {
	Analyzer Analyzer
	Reporter diag.Reporter
	Logger   hclog.Logger
}

// Checker runs source units through parsing and analysis and turns every
// outcome into diagnostics on the configured reporter. Failures never
// propagate as errors; they surface as diagnostics plus a count.
type Checker struct {
	analyzer Analyzer
	reporter diag.Reporter
	log      hclog.Logger
}

// NewChecker creates a Checker from cfg.
func NewChecker(cfg Config) *Checker {
	log := cfg.Logger
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Checker{
		analyzer: cfg.Analyzer,
		reporter: cfg.Reporter,
		log:      log,
	}
}

// Check parses src and reports what it finds under filename. The return
// value is the number of diagnostics emitted: one per warning on success, 1
// for a unit that fails to decode or parse.
func (c *Checker) Check(src []byte, filename string) int {
	tree, serr := pyparse.Parse(src)
	if serr != nil {
		return c.reportParseFailure(serr, filename)
	}
	defer tree.Close()

	findings := c.analyzer.Analyze(tree, filename)
	slices.SortStableFunc(findings, func(a, b Finding) int {
		return cmp.Compare(a.Line, b.Line)
	})

	for _, f := range findings {
		c.reporter.Warning(diag.Warning{Path: filename, Line: f.Line, Msg: f.Message})
	}
	c.log.Debug("checked unit", "path", filename, "warnings", len(findings))
	return len(findings)
}

// CheckPath reads the unit at path and checks it. Line endings are
// normalized to \n and one trailing newline is appended before parsing. A
// read failure becomes a single IOFailure diagnostic.
func (c *Checker) CheckPath(path string) int {
	src, err := os.ReadFile(path)
	if err != nil {
		c.log.Debug("read failed", "path", path, "error", err)
		c.reporter.IOFailure(diag.IOFailure{Path: path, Msg: readFailureCause(err)})
		return 1
	}
	return c.Check(normalizeSource(src), path)
}

// reportParseFailure renders a parse failure as a single diagnostic.
func (c *Checker) reportParseFailure(serr *pyparse.SyntaxError, filename string) int {
	if !serr.HasText {
		c.reporter.DecodeFailure(diag.DecodeFailure{Path: filename})
		return 1
	}

	line := lastLine(serr.Text)

	var offset *int
	if serr.HasOffset {
		// The parser's offset is relative to the whole failing text;
		// re-anchor it to the displayed line. The result can go negative and
		// is kept as-is.
		v := serr.Offset - (len(serr.Text) - len(line))
		offset = &v
	}

	c.reporter.SyntaxFailure(diag.SyntaxFailure{
		Path:     filename,
		Msg:      serr.Msg,
		Line:     serr.Line,
		Offset:   offset,
		LineText: line,
	})
	return 1
}

// lastLine returns the last physical line of text without its terminator.
func lastLine(text string) string {
	text = strings.TrimSuffix(text, "\n")
	text = strings.TrimSuffix(text, "\r")
	if i := strings.LastIndexAny(text, "\r\n"); i >= 0 {
		text = text[i+1:]
	}
	return text
}

// readFailureCause strips the operation and path decoration from a read
// error, leaving only the underlying cause.
func readFailureCause(err error) string {
	var perr *fs.PathError
	if errors.As(err, &perr) {
		return perr.Err.Error()
	}
	return err.Error()
}

// normalizeSource rewrites \r\n and bare \r line endings to \n and appends a
// final newline unconditionally.
func normalizeSource(src []byte) []byte {
	src = bytes.ReplaceAll(src, []byte("\r\n"), []byte("\n"))
	src = bytes.ReplaceAll(src, []byte("\r"), []byte("\n"))
	return append(src, '\n')
}
