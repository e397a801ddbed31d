package diag

import "sort"

// File holds one source file's text and a precomputed index of line
// start offsets, letting a byte offset be mapped to a (line, column)
// pair in O(log N) instead of rescanning the source. The teacher's
// errors.go never needed this because callers always carried an
// already-resolved Position; SPEC_FULL's import-inlined files need the
// reverse direction too, since the interpreter and pattern VM both
// report diagnostics against byte offsets captured at parse time.
type File struct {
	Name       string
	Source     string
	lineStarts []int // byte offset of the first byte of each line; lineStarts[0] == 0
}

// NewFile builds a File and its line-start index.
func NewFile(name, source string) *File {
	f := &File{Name: name, Source: source, lineStarts: []int{0}}
	for i := 0; i < len(source); i++ {
		switch source[i] {
		case '\n':
			f.lineStarts = append(f.lineStarts, i+1)
		case '\r':
			if i+1 < len(source) && source[i+1] == '\n' {
				i++
			}
			f.lineStarts = append(f.lineStarts, i+1)
		}
	}
	return f
}

// Position maps a byte offset to a 1-based (line, column) pair.
func (f *File) Position(offset int) (line, col int) {
	idx := sort.Search(len(f.lineStarts), func(i int) bool {
		return f.lineStarts[i] > offset
	}) - 1
	if idx < 0 {
		idx = 0
	}
	line = idx + 1
	col = offset - f.lineStarts[idx] + 1
	return line, col
}

// Table is a set of source files keyed by name, used to
// resolve a file + offset pair back into line/column when a diagnostic
// is raised against a position captured purely as a byte offset (e.g.
// from an inlined import whose own Position.Line no longer matches the
// merged file).
type Table struct {
	files map[string]*File
}

// NewTable constructs an empty file Table.
func NewTable() *Table {
	return &Table{files: make(map[string]*File)}
}

// Add registers source text under name, replacing any prior entry.
func (t *Table) Add(name, source string) *File {
	f := NewFile(name, source)
	t.files[name] = f
	return f
}

// Get returns the named file, or nil if it was never added.
func (t *Table) Get(name string) *File {
	return t.files[name]
}

// Position resolves an offset within the named file, returning
// (0, 0) if the file is unknown.
func (t *Table) Position(name string, offset int) (line, col int) {
	f := t.files[name]
	if f == nil {
		return 0, 0
	}
	return f.Position(offset)
}
