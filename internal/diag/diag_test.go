package diag

import "testing"

func TestReporterHasErrors(t *testing.T) {
	r := NewReporter()
	if r.HasErrors() {
		t.Fatalf("new reporter should have no errors")
	}
	r.Warnf("main.wfl", 1, 1, 0, "ANALYZE-UNUSED", "variable %q is never read", "x")
	if r.HasErrors() {
		t.Fatalf("a warning must not count as an error")
	}
	r.Errorf("main.wfl", 2, 3, 10, "PARSE-UNEXPECTED-TOKEN", "expected %s, got %s", "as", "to")
	if !r.HasErrors() {
		t.Fatalf("expected HasErrors() to be true after an error-severity diagnostic")
	}
}

func TestReporterSortedOrder(t *testing.T) {
	r := NewReporter()
	r.Errorf("b.wfl", 5, 1, 0, "X", "late file")
	r.Errorf("a.wfl", 2, 1, 0, "X", "earlier line")
	r.Errorf("a.wfl", 1, 1, 0, "X", "earliest line")

	sorted := r.Sorted()
	if sorted[0].File != "a.wfl" || sorted[0].Line != 1 {
		t.Fatalf("expected a.wfl:1 first, got %s:%d", sorted[0].File, sorted[0].Line)
	}
	if sorted[1].File != "a.wfl" || sorted[1].Line != 2 {
		t.Fatalf("expected a.wfl:2 second, got %s:%d", sorted[1].File, sorted[1].Line)
	}
	if sorted[2].File != "b.wfl" {
		t.Fatalf("expected b.wfl last, got %s", sorted[2].File)
	}
	// Sorted() must not mutate the reporter's own insertion order.
	if r.Diagnostics[0].File != "b.wfl" {
		t.Fatalf("Sorted() mutated original insertion order")
	}
}

func TestFilePositionLineEndings(t *testing.T) {
	f := NewFile("t.wfl", "a\nb\r\nc\rd")
	cases := []struct {
		offset       int
		wantLine     int
		wantCol      int
	}{
		{0, 1, 1}, // 'a'
		{2, 2, 1}, // 'b'
		{5, 3, 1}, // 'c'
		{7, 4, 1}, // 'd'
	}
	for _, c := range cases {
		line, col := f.Position(c.offset)
		if line != c.wantLine || col != c.wantCol {
			t.Errorf("Position(%d) = (%d,%d), want (%d,%d)", c.offset, line, col, c.wantLine, c.wantCol)
		}
	}
}

func TestTableUnknownFile(t *testing.T) {
	tbl := NewTable()
	line, col := tbl.Position("missing.wfl", 0)
	if line != 0 || col != 0 {
		t.Fatalf("expected (0,0) for unknown file, got (%d,%d)", line, col)
	}
}
