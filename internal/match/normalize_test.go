package match

import (
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "accents folded",
			text: "Développement évaluée",
			want: []string{"developpement", "evaluee"},
		},
		{
			name: "technology names survive",
			text: "C++ and C# with Node.js",
			want: []string{"c++", "and", "c#", "with", "node.js"},
		},
		{
			name: "punctuation separates",
			text: "react/vue (angular)",
			want: []string{"react", "vue", "angular"},
		},
		{
			name: "empty text",
			text: "",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		name   string
		tokens []string
		want   []string
	}{
		{
			name:   "front end pair merges",
			tokens: []string{"front", "end", "developer"},
			want:   []string{"frontend", "developer"},
		},
		{
			name:   "node.js maps to node",
			tokens: []string{"node.js"},
			want:   []string{"node"},
		},
		{
			name:   "reactjs maps to react",
			tokens: []string{"reactjs"},
			want:   []string{"react"},
		},
		{
			name:   "js and ts expand",
			tokens: []string{"js", "ts"},
			want:   []string{"javascript", "typescript"},
		},
		{
			name:   "unknown tokens pass through",
			tokens: []string{"kubernetes", "terraform"},
			want:   []string{"kubernetes", "terraform"},
		},
		{
			name:   "trailing front maps alone",
			tokens: []string{"back", "front"},
			want:   []string{"back", "frontend"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Canonicalize(tt.tokens)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Canonicalize(%v) = %v, want %v", tt.tokens, got, tt.want)
			}
		})
	}
}

func TestKeywordSet(t *testing.T) {
	set := KeywordSet([]string{"react", "and", "avec", "3", "c", "node", "react"})

	for _, want := range []string{"react", "node"} {
		if !set.Contains(want) {
			t.Errorf("expected %q in keyword set", want)
		}
	}
	for _, dropped := range []string{"and", "avec", "3", "c"} {
		if set.Contains(dropped) {
			t.Errorf("expected %q filtered from keyword set", dropped)
		}
	}
	if len(set) != 2 {
		t.Errorf("expected 2 keywords, got %d", len(set))
	}
}

func TestNormalizeCountsBeforeDedup(t *testing.T) {
	set, count := Normalize("React react REACT node.js")
	if count != 4 {
		t.Errorf("expected 4 canonical tokens, got %d", count)
	}
	if len(set) != 2 {
		t.Errorf("expected 2 unique keywords, got %d", len(set))
	}
}

func TestLexiconOverrides(t *testing.T) {
	lex := NewLexicon()
	lex.SetOverrides(map[string]string{"k8s": "kubernetes"})

	got := lex.Canonicalize([]string{"k8s", "node.js"})
	want := []string{"kubernetes", "node"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Canonicalize with overrides = %v, want %v", got, want)
	}

	// Clearing overrides restores the built-in table only.
	lex.SetOverrides(nil)
	got = lex.Canonicalize([]string{"k8s"})
	if !reflect.DeepEqual(got, []string{"k8s"}) {
		t.Errorf("expected override cleared, got %v", got)
	}
}
