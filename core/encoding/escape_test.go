package encoding

import "testing"

func TestEscapeText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"plain", "In the beginning", "In the beginning"},
		{"ampersand", "Aaron & Hur", "Aaron &amp; Hur"},
		{"angles", "a < b > c", "a &lt; b &gt; c"},
		{"quotes kept", `he said "Let there be light" and it's so`, `he said "Let there be light" and it's so`},
		{"already escaped", "&amp;", "&amp;amp;"},
		{"unicode", "¶ Ἐν ἀρχῇ & מִבְּרֵאשִׁית", "¶ Ἐν ἀρχῇ &amp; מִבְּרֵאשִׁית"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EscapeText(tt.input); got != tt.want {
				t.Errorf("EscapeText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestEscapeHTML(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{`"Let there be light"`, "&quot;Let there be light&quot;"},
		{"it's <b>", "it's &lt;b&gt;"},
	}
	for _, tt := range tests {
		if got := EscapeHTML(tt.input); got != tt.want {
			t.Errorf("EscapeHTML(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestSingleLine(t *testing.T) {
	if got := SingleLine("a\nb\r\nc\rd"); got != "a b c d" {
		t.Errorf("SingleLine() = %q", got)
	}
}
