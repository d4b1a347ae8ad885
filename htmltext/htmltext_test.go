package htmltext

import "testing"

func TestVisibleText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "strips script and style",
			in:   `<html><head><title>T</title><style>p{color:red}</style></head><body><p>Hello</p><script>var x = 1;</script><p>World</p></body></html>`,
			want: "Hello World",
		},
		{
			name: "collapses whitespace",
			in:   "<div>\n\n  Acme \t Plumbing  </div>",
			want: "Acme Plumbing",
		},
		{
			name: "decodes entities",
			in:   "<p>Fish &amp; Chips</p>",
			want: "Fish & Chips",
		},
		{
			name: "fragment without body",
			in:   "<p>just a fragment</p>",
			want: "just a fragment",
		},
		{
			name: "unclosed tags",
			in:   "<div><p>one<p>two",
			want: "one two",
		},
		{
			name: "empty",
			in:   "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := VisibleText(tt.in); got != tt.want {
				t.Errorf("VisibleText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTitle(t *testing.T) {
	if got := Title("<html><head><title>  Acme\n Plumbing </title></head></html>"); got != "Acme Plumbing" {
		t.Errorf("Title() = %q", got)
	}
	if got := Title("<html><body>no title</body></html>"); got != "" {
		t.Errorf("Title() = %q, want empty", got)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello", 3, "hel"},
		{"héllo", 2, "hé"},
		{"hello", 0, ""},
	}
	for _, tt := range tests {
		if got := Truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}
