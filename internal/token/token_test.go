package token

import "testing"

func TestLookupIdent(t *testing.T) {
	tests := []struct {
		input    string
		expected Type
	}{
		// Keywords
		{"store", STORE},
		{"create", CREATE},
		{"display", DISPLAY},
		{"if", IF},
		{"otherwise", OTHERWISE},
		{"count", COUNT},
		{"repeat", REPEAT},
		{"define", DEFINE},
		{"action", ACTION},
		{"give", GIVE},
		{"back", BACK},
		{"true", BOOLLIT},
		{"false", BOOLLIT},
		{"nothing", NOTHING},
		// Casing: keywords match only the exact lowercase form.
		{"Store", IDENT},
		{"IF", IDENT},
		{"Count", IDENT},
		// Non-keywords
		{"variable", IDENT},
		{"userId", IDENT},
		{"foo_bar", IDENT},
		{"", IDENT},
		{"unknownWord", IDENT},
	}

	for _, tt := range tests {
		result := LookupIdent(tt.input)
		if result != tt.expected {
			t.Errorf("LookupIdent(%q) = %v, want %v", tt.input, result, tt.expected)
		}
	}
}

func TestStructuralVsContextual(t *testing.T) {
	// "count" is contextual: it can form part of a variable name like
	// "store my count as 5" when not used to start a count loop.
	if Structural(COUNT) {
		t.Errorf("COUNT should not be structural")
	}
	if !Contextual(COUNT) {
		t.Errorf("COUNT should be contextual")
	}

	// "if" is always structural: it can never be part of an identifier.
	if !Structural(IF) {
		t.Errorf("IF should be structural")
	}
	if Contextual(IF) {
		t.Errorf("IF should not be contextual")
	}
}
