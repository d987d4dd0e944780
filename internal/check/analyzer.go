package check

import "github.com/dusk-indust/flint/internal/pyparse"

// Finding is a single analyzer result attributed to a line of the checked
// unit.
type Finding struct {
	Line    int
	Message string
}

// Analyzer inspects a parsed source unit and returns its findings. Analyzers
// do not fail; a unit that parses is always analyzable.
// Implementations: rules.Engine (production), stub analyzers (testing).
type Analyzer interface {
	Analyze(tree *pyparse.Tree, filename string) []Finding
}
