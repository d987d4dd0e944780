package rules

import (
	"fmt"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/dusk-indust/flint/internal/check"
	"github.com/dusk-indust/flint/internal/pyparse"
)

// Compile-time assertion: *Engine satisfies check.Analyzer.
var _ check.Analyzer = (*Engine)(nil)

const (
	msgAssertTuple  = "assertion is always true, perhaps remove parentheses?"
	msgBareFString  = "f-string is missing placeholders"
	fmtStarImport   = "'from %s import *' used; unable to detect undefined names"
	fmtDuplicateArg = "duplicate argument '%s' in function definition"
)

// Engine is the built-in analyzer: single-pass syntactic checks over the
// parsed tree. It flags star imports, duplicate function arguments, asserts
// on tuple literals and f-strings with nothing to interpolate. An Engine
// keeps no state between calls.
type Engine struct{}

// NewEngine returns the built-in analyzer.
func NewEngine() *Engine {
	return &Engine{}
}

// Analyze walks the tree and returns findings in document order.
func (e *Engine) Analyze(tree *pyparse.Tree, _ string) []check.Finding {
	var findings []check.Finding

	cursor := tree.Root().Walk()
	defer cursor.Close()

	e.walk(cursor, tree.Source(), &findings)
	return findings
}

func (e *Engine) walk(cursor *tree_sitter.TreeCursor, source []byte, findings *[]check.Finding) {
	node := cursor.Node()

	switch node.Kind() {
	case "import_from_statement":
		if f := e.checkStarImport(node, source); f != nil {
			*findings = append(*findings, *f)
		}

	case "function_definition", "lambda":
		*findings = append(*findings, e.checkDuplicateArguments(node, source)...)

	case "assert_statement":
		if f := e.checkAssertTuple(node); f != nil {
			*findings = append(*findings, *f)
		}

	case "string":
		if f := e.checkFString(node, source); f != nil {
			*findings = append(*findings, *f)
		}
	}

	if cursor.GotoFirstChild() {
		e.walk(cursor, source, findings)
		for cursor.GotoNextSibling() {
			e.walk(cursor, source, findings)
		}
		cursor.GotoParent()
	}
}

// checkStarImport flags "from m import *", which hides undefined names from
// any later analysis.
func (e *Engine) checkStarImport(node *tree_sitter.Node, source []byte) *check.Finding {
	star := false
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child != nil && child.Kind() == "wildcard_import" {
			star = true
			break
		}
	}
	if !star {
		return nil
	}

	moduleNode := node.ChildByFieldName("module_name")
	if moduleNode == nil {
		// Fall back: look for a dotted_name or relative_import child.
		for i := uint(0); i < node.ChildCount(); i++ {
			child := node.Child(i)
			if child == nil {
				continue
			}
			if child.Kind() == "dotted_name" || child.Kind() == "relative_import" {
				moduleNode = child
				break
			}
		}
	}
	if moduleNode == nil {
		return nil
	}

	return &check.Finding{
		Line:    lineOf(node),
		Message: fmt.Sprintf(fmtStarImport, moduleNode.Utf8Text(source)),
	}
}

// checkDuplicateArguments flags parameter names bound more than once in a
// def or lambda, one finding per extra occurrence.
func (e *Engine) checkDuplicateArguments(node *tree_sitter.Node, source []byte) []check.Finding {
	params := node.ChildByFieldName("parameters")
	if params == nil {
		return nil
	}

	var findings []check.Finding
	seen := make(map[string]bool)
	for _, name := range parameterNames(params, source) {
		if seen[name] {
			findings = append(findings, check.Finding{
				Line:    lineOf(node),
				Message: fmt.Sprintf(fmtDuplicateArg, name),
			})
			continue
		}
		seen[name] = true
	}
	return findings
}

// checkAssertTuple flags asserting a non-empty tuple literal, which is
// always truthy, so the assertion can never fire.
func (e *Engine) checkAssertTuple(node *tree_sitter.Node) *check.Finding {
	cond := node.NamedChild(0)
	if cond == nil || cond.Kind() != "tuple" || cond.NamedChildCount() == 0 {
		return nil
	}
	return &check.Finding{Line: lineOf(node), Message: msgAssertTuple}
}

// checkFString flags f-strings that interpolate nothing.
func (e *Engine) checkFString(node *tree_sitter.Node, source []byte) *check.Finding {
	if !hasFStringPrefix(node.Utf8Text(source)) {
		return nil
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child != nil && child.Kind() == "interpolation" {
			return nil
		}
	}
	return &check.Finding{Line: lineOf(node), Message: msgBareFString}
}

// parameterNames lists the names bound by a parameter list, in order. Names
// inside annotations and default values do not bind parameters and are not
// included.
func parameterNames(params *tree_sitter.Node, source []byte) []string {
	var names []string
	for i := uint(0); i < params.ChildCount(); i++ {
		child := params.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "identifier":
			names = append(names, child.Utf8Text(source))

		case "default_parameter", "typed_default_parameter":
			if name := child.ChildByFieldName("name"); name != nil {
				names = append(names, patternNames(name, source)...)
			}

		case "typed_parameter":
			// The bound pattern comes first, the annotation after.
			if inner := child.Child(0); inner != nil {
				names = append(names, patternNames(inner, source)...)
			}

		case "list_splat_pattern", "dictionary_splat_pattern", "tuple_pattern":
			names = append(names, patternNames(child, source)...)
		}
	}
	return names
}

// patternNames collects the identifiers bound by a parameter pattern.
func patternNames(node *tree_sitter.Node, source []byte) []string {
	if node.Kind() == "identifier" {
		return []string{node.Utf8Text(source)}
	}

	var names []string
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "identifier", "list_splat_pattern", "dictionary_splat_pattern", "tuple_pattern":
			names = append(names, patternNames(child, source)...)
		}
	}
	return names
}

// hasFStringPrefix reports whether a string literal carries an f prefix. The
// scan stops at the opening quote.
func hasFStringPrefix(text string) bool {
	for _, r := range text {
		switch r {
		case '\'', '"':
			return false
		case 'f', 'F':
			return true
		}
	}
	return false
}

// lineOf returns the node's 1-based start line.
func lineOf(node *tree_sitter.Node) int {
	return int(node.StartPosition().Row) + 1
}
