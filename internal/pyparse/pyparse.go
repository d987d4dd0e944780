package pyparse

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
)

// language is shared across Parse calls. Tree-sitter languages are immutable.
var language = tree_sitter.NewLanguage(tree_sitter_python.Language())

// Tree is a successfully parsed Python source unit.
type Tree struct {
	inner *tree_sitter.Tree
	src   []byte
}

// Root returns the module node of the parsed unit.
func (t *Tree) Root() *tree_sitter.Node {
	return t.inner.RootNode()
}

// Source returns the bytes the tree was parsed from. Node text lookups need
// them back.
func (t *Tree) Source() []byte {
	return t.src
}

// Close releases the tree-sitter C memory. Callers own the close.
func (t *Tree) Close() {
	t.inner.Close()
}

// SyntaxError describes why a source unit failed to parse.
type SyntaxError struct {
	// Msg is the parser's complaint, e.g. "invalid syntax".
	Msg string

	// Line is the 1-based line on which the failure is reported. For a
	// failure spanning several lines this is the last of them.
	Line int

	// Offset is the 0-based byte offset of the failure start within Text,
	// meaningful only when HasOffset is set.
	Offset    int
	HasOffset bool

	// Text holds the physical source lines spanned by the failure,
	// including the trailing newline when the source has one. HasText is
	// false when the source bytes are not valid UTF-8.
	Text    string
	HasText bool
}

// Parse parses src as a Python module. Exactly one result is non-nil: the
// tree when src is well-formed, the syntax error otherwise. A new tree-sitter
// parser is created per call.
func Parse(src []byte) (*Tree, *SyntaxError) {
	if !utf8.Valid(src) {
		return nil, &SyntaxError{Msg: "invalid UTF-8", Line: 1}
	}

	parser := tree_sitter.NewParser()
	defer parser.Close()

	// The grammar and the binding are version-pinned together; a mismatch
	// here is a build defect, not a property of the input.
	if err := parser.SetLanguage(language); err != nil {
		panic(fmt.Errorf("pyparse: set python language: %w", err))
	}

	tree := parser.Parse(src, nil)
	if tree == nil {
		panic(fmt.Errorf("pyparse: tree-sitter returned nil tree"))
	}

	root := tree.RootNode()
	if !root.HasError() {
		return &Tree{inner: tree, src: src}, nil
	}
	defer tree.Close()

	node := firstErrorNode(root)
	if node == nil {
		node = root
	}
	return nil, syntaxErrorAt(node, src)
}

// firstErrorNode returns the first ERROR or MISSING node in a pre-order walk,
// or nil when the tree has none. Subtrees without the error bit are skipped.
func firstErrorNode(root *tree_sitter.Node) *tree_sitter.Node {
	cursor := root.Walk()
	defer cursor.Close()
	return findError(cursor)
}

func findError(cursor *tree_sitter.TreeCursor) *tree_sitter.Node {
	node := cursor.Node()
	if !node.HasError() && !node.IsMissing() {
		return nil
	}
	if node.IsError() || node.IsMissing() {
		return node
	}

	if cursor.GotoFirstChild() {
		for {
			if found := findError(cursor); found != nil {
				return found
			}
			if !cursor.GotoNextSibling() {
				break
			}
		}
		cursor.GotoParent()
	}
	return nil
}

// syntaxErrorAt builds the failure payload for the given error node.
func syntaxErrorAt(node *tree_sitter.Node, src []byte) *SyntaxError {
	startRow := int(node.StartPosition().Row)
	endRow := int(node.EndPosition().Row)
	if endRow > startRow && node.EndPosition().Column == 0 {
		// A node ending exactly on a line break does not span the next line.
		endRow--
	}

	// A zero-width node can sit just past the final newline; report the last
	// real line instead.
	if startRow == endRow && lineStart(src, startRow) >= len(src) && startRow > 0 {
		startRow--
		endRow--
	}

	textStart := lineStart(src, startRow)
	text := src[textStart:lineEnd(src, endRow)]

	msg := "invalid syntax"
	if node.IsMissing() {
		msg = fmt.Sprintf("missing %s", node.Kind())
	}

	return &SyntaxError{
		Msg:       msg,
		Line:      endRow + 1,
		Offset:    int(node.StartByte()) - textStart,
		HasOffset: true,
		Text:      string(text),
		HasText:   true,
	}
}

// lineStart returns the byte offset where the 0-based row begins, or len(src)
// when the row lies past the input.
func lineStart(src []byte, row int) int {
	off := 0
	for ; row > 0; row-- {
		i := bytes.IndexByte(src[off:], '\n')
		if i < 0 {
			return len(src)
		}
		off += i + 1
	}
	return off
}

// lineEnd returns the byte offset just past the 0-based row, including its
// newline when present.
func lineEnd(src []byte, row int) int {
	start := lineStart(src, row)
	i := bytes.IndexByte(src[start:], '\n')
	if i < 0 {
		return len(src)
	}
	return start + i + 1
}
