package markdown

import "testing"

func TestFragment_StageOrder(t *testing.T) {
	want := []string{"newlines", "headers", "bold", "list-items", "lists", "paragraphs", "line-breaks", "wrap", "cleanup"}
	if len(Fragment) != len(want) {
		t.Fatalf("expected %d stages, got %d", len(want), len(Fragment))
	}
	for i, name := range want {
		if Fragment[i].Name != name {
			t.Errorf("stage %d = %q, want %q", i, Fragment[i].Name, name)
		}
	}
}

func TestPipeline_StageLookup(t *testing.T) {
	st, ok := Fragment.Stage("bold")
	if !ok {
		t.Fatal("expected bold stage")
	}
	if got := st.Apply("**x**"); got != "<strong>x</strong>" {
		t.Errorf("bold stage = %q", got)
	}
	if _, ok := Fragment.Stage("tables"); ok {
		t.Error("did not expect a tables stage")
	}
}

func TestHeaders(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"### A\n## B\n# C", "<h3>A</h3>\n<h2>B</h2>\n<h2>C</h2>"},
		{"#NoSpace", "#NoSpace"},
		{"text # not a header", "text # not a header"},
		{"#### deep", "#### deep"},
		{"intro\n## Mid\noutro", "intro\n<h2>Mid</h2>\noutro"},
	}
	for _, tt := range tests {
		if got := headers(tt.in); got != tt.want {
			t.Errorf("headers(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBold(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"**a** and **b**", "<strong>a</strong> and <strong>b</strong>"},
		{"**open", "**open"},
		{"**a\nb**", "**a\nb**"},
		{"****", "<strong></strong>"},
	}
	for _, tt := range tests {
		if got := bold(tt.in); got != tt.want {
			t.Errorf("bold(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestListItems(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"- a\n* b\n  - c", "<li>a</li>\n<li>b</li>\n<li>c</li>"},
		{"-no space", "-no space"},
		{"intro\n\n- a", "intro\n\n<li>a</li>"},
		{"a - b", "a - b"},
	}
	for _, tt := range tests {
		if got := listItems(tt.in); got != tt.want {
			t.Errorf("listItems(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLists(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"<li>a</li>\n<li>b</li>", "<ul><li>a</li><li>b</li></ul>"},
		{"<li>a</li>\n<li>b</li>\nafter", "<ul><li>a</li><li>b</li></ul>\nafter"},
		{"<li>a</li>\n\n<li>b</li>", "<ul><li>a</li></ul>\n\n<ul><li>b</li></ul>"},
		{"<li>a</li>\ntext\n<li>b</li>", "<ul><li>a</li></ul>\ntext\n<ul><li>b</li></ul>"},
		{"no items", "no items"},
	}
	for _, tt := range tests {
		if got := lists(tt.in); got != tt.want {
			t.Errorf("lists(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParagraphs(t *testing.T) {
	if got := paragraphs("a\n\nb"); got != "a</p><p>b" {
		t.Errorf("paragraphs = %q", got)
	}
	if got := paragraphs("a\n\n\nb"); got != "a</p><p>\nb" {
		t.Errorf("paragraphs = %q", got)
	}
}

func TestLineBreaks(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"a\nb\nc", "a<br>b<br>c"},
		{"<h2>x</h2>\ny", "<h2>x</h2>\ny"},
		{"x\n<ul>", "x\n<ul>"},
		{"\na\n", "\na\n"},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		if got := lineBreaks(tt.in); got != tt.want {
			t.Errorf("lineBreaks(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWrap(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"x<br>y", "<p>x<br>y</p>"},
		{"a</p><p>b", "<p>a</p><p>b</p>"},
		{"", "<p></p>"},
		{"<h2>H</h2>\nBody", "<h2>H</h2>\nBody"},
		{"<ul><li>x</li><li>y</li></ul>\nz", "<ul><li>x</li><li>y</li></ul>\nz"},
	}
	for _, tt := range tests {
		if got := wrap(tt.in); got != tt.want {
			t.Errorf("wrap(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNewlines(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"a\r\nb", "a\nb"},
		{"a\rb", "a\nb"},
		{"a\r\n\r\nb", "a\n\nb"},
		{"a\nb", "a\nb"},
	}
	for _, tt := range tests {
		if got := newlines(tt.in); got != tt.want {
			t.Errorf("newlines(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCleanup(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"<p></p>", ""},
		{"<p><h2>T</h2></p><p>B</p>", "<h2>T</h2><p>B</p>"},
		{"<p>\n<h3>T</h3>\n</p>", "<h3>T</h3>"},
		{"<p><ul><li>a</li></ul></p>", "<ul><li>a</li></ul>"},
		{"<p>keep</p>", "<p>keep</p>"},
	}
	for _, tt := range tests {
		if got := cleanup(tt.in); got != tt.want {
			t.Errorf("cleanup(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
