package querystring

import (
	"errors"
	"strings"
	"testing"

	"github.com/kailas-cloud/facetdex/internal/domain"
)

func TestEscape_Braces(t *testing.T) {
	got := Escape("a{b}c")
	if got != `a\{b\}c` {
		t.Errorf("Escape = %q, want %q", got, `a\{b\}c`)
	}
	if !strings.Contains(got, `\{`) || !strings.Contains(got, `\}`) {
		t.Errorf("expected escaped braces in %q", got)
	}
}

func TestEscape_ReservedSet(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"http://x", `http\:\/\/x`},
		{"[1-2]", `\[1\-2\]`},
		{`say "hi"`, `say \"hi\"`},
		{`back\slash`, `back\\slash`},
		{"plain text", "plain text"},
	}
	for _, tt := range tests {
		if got := Escape(tt.in); got != tt.want {
			t.Errorf("Escape(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFieldEquals(t *testing.T) {
	got := FieldEquals("dataset.title", "Budget 2017")
	if got != `dataset.title:"Budget 2017"` {
		t.Errorf("FieldEquals = %q", got)
	}
}

func TestJoin(t *testing.T) {
	got := Join(Or, `a:"1"`, "", `b:"2"`)
	if got != `a:"1" OR b:"2"` {
		t.Errorf("Join = %q", got)
	}
	if Join(And) != "" {
		t.Error("expected empty join for no clauses")
	}
}

func TestParseOperator(t *testing.T) {
	for in, want := range map[string]Operator{"": And, "and": And, " OR ": Or} {
		got, err := ParseOperator(in)
		if err != nil {
			t.Fatalf("ParseOperator(%q): %v", in, err)
		}
		if got != want {
			t.Errorf("ParseOperator(%q) = %q, want %q", in, got, want)
		}
	}

	_, err := ParseOperator("XOR")
	if !errors.Is(err, domain.ErrInvalidOperator) {
		t.Errorf("expected ErrInvalidOperator, got %v", err)
	}
}
