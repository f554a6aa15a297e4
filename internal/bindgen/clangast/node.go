package clangast

import (
	"slices"

	"github.com/goccy/go-json"
)

// bareLoc is a location as printed by clang's JSON dumper. File and line are only
// present when they differ from the previously printed location.
type bareLoc struct {
	File string `json:"file"`
	Line int    `json:"line"`
}

// sourceLoc is either a bare location or a macro spelling/expansion pair.
type sourceLoc struct {
	bareLoc
	SpellingLoc  *bareLoc `json:"spellingLoc"`
	ExpansionLoc *bareLoc `json:"expansionLoc"`
}

type sourceRange struct {
	Begin *sourceLoc `json:"begin"`
	End   *sourceLoc `json:"end"`
}

type qualType struct {
	QualType          string `json:"qualType"`
	DesugaredQualType string `json:"desugaredQualType"`
}

type declRef struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`
	Name string `json:"name"`
}

// node is the subset of a clang AST node the decoder reads.
type node struct {
	ID                 string          `json:"id"`
	Kind               string          `json:"kind"`
	Name               string          `json:"name"`
	Loc                *sourceLoc      `json:"loc"`
	Range              *sourceRange    `json:"range"`
	IsImplicit         bool            `json:"isImplicit"`
	Type               *qualType       `json:"type"`
	StorageClass       string          `json:"storageClass"`
	TagUsed            string          `json:"tagUsed"`
	CompleteDefinition bool            `json:"completeDefinition"`
	Variadic           bool            `json:"variadic"`
	Value              json.RawMessage `json:"value"`
	Opcode             string          `json:"opcode"`
	OwnedTagDecl       *declRef        `json:"ownedTagDecl"`
	Decl               *declRef        `json:"decl"`
	ReferencedDecl     *declRef        `json:"referencedDecl"`
	Inner              []*node         `json:"inner"`
}

func (n *node) qualType() string {
	if n.Type == nil {
		return ""
	}
	return n.Type.QualType
}

// locTracker replays clang's delta-encoded locations in print order.
type locTracker struct {
	file  string
	line  int
	files []string // distinct files in first-seen order
}

func (t *locTracker) bare(l *bareLoc) {
	if l == nil {
		return
	}
	if l.File != "" {
		if l.File != t.file && !slices.Contains(t.files, l.File) {
			t.files = append(t.files, l.File)
		}
		t.file = l.File
	}
	if l.Line > 0 {
		t.line = l.Line
	}
}

func (t *locTracker) loc(l *sourceLoc) {
	if l == nil {
		return
	}
	if l.SpellingLoc != nil || l.ExpansionLoc != nil {
		t.bare(l.SpellingLoc)
		t.bare(l.ExpansionLoc)
		return
	}
	t.bare(&l.bareLoc)
}

// visit walks n in dump order and returns the file and line of n's own location.
func (t *locTracker) visit(n *node) (string, int) {
	t.loc(n.Loc)
	file, line := t.file, t.line
	if n.Range != nil {
		t.loc(n.Range.Begin)
		t.loc(n.Range.End)
	}
	for _, c := range n.Inner {
		t.visit(c)
	}
	return file, line
}
