package analyzer

import (
	"strings"
	"testing"
)

func TestExtract_Kinds(t *testing.T) {
	src := `/**
 * Adds two numbers.
 */
int add(int a, int b) {
    /* inline block */
    // first
    // second
    return a + b;
}

/// SassDoc line
/// continues
@mixin foo($a) {`

	comments := NewCommentExtractor().Extract(src, "c")

	tests := []struct {
		start, end int
		typ        string
	}{
		{1, 3, TypeDoc},
		{5, 5, TypeBlock},
		{6, 7, TypeLine},
		{11, 12, TypeDoc},
	}

	if len(comments) != len(tests) {
		t.Fatalf("expected %d comments, got %d: %+v", len(tests), len(comments), comments)
	}
	for i, tt := range tests {
		c := comments[i]
		if c.StartLine != tt.start || c.EndLine != tt.end || c.Type != tt.typ {
			t.Errorf("comment %d: expected %d-%d %s, got %d-%d %s", i, tt.start, tt.end, tt.typ, c.StartLine, c.EndLine, c.Type)
		}
	}
	if comments[2].Text != "first\nsecond" {
		t.Errorf("expected merged line text, got %q", comments[2].Text)
	}
}

func TestExtract_EmptyBlockIsNotDoc(t *testing.T) {
	comments := NewCommentExtractor().Extract("/**/\nint x;", "c")
	if len(comments) != 1 || comments[0].Type != TypeBlock {
		t.Errorf("expected a plain block, got %+v", comments)
	}
}

func TestExtract_Unterminated(t *testing.T) {
	comments := NewCommentExtractor().Extract("/**\n * never closed\nint x;", "java")
	if len(comments) != 1 || comments[0].EndLine != 3 {
		t.Errorf("expected block to run to end of file, got %+v", comments)
	}
}

func TestExtract_PHPHashComments(t *testing.T) {
	comments := NewCommentExtractor().Extract("# note\n#[Route('/')]\nfunction index() {", "php")
	if len(comments) != 1 || comments[0].Text != "note" {
		t.Errorf("expected only the hash comment, got %+v", comments)
	}
}

func TestCommentIndex_Documented(t *testing.T) {
	tests := []struct {
		name string
		lang string
		src  string
		line int
		want bool
	}{
		{"doc block", "c", "/** Adds. */\nint add(int a, int b) {", 2, true},
		{"plain block", "c", "/* Adds. */\nint add(int a, int b) {", 2, false},
		{"line comment", "javascript", "// adds\nfunction add(a, b) {", 2, false},
		{"blank line between", "javascript", "/** adds */\n\nfunction add(a, b) {", 3, false},
		{"no comment", "c", "int x;\nint add(void) {", 2, false},
		{"first line", "c", "int add(void) {", 1, false},
		{"java annotation", "java", "/**\n * Runs.\n */\n@Override\npublic void run() {", 5, true},
		{"php attribute", "php", "/** Index. */\n#[Route('/')]\nfunction index() {", 3, true},
		{"c has no annotations", "c", "/** x */\n@Override\nint f(void) {", 3, false},
		{"sassdoc", "scss", "/// Pads.\n@mixin pad($n) {", 2, true},
	}

	e := NewCommentExtractor()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ix := e.Index(strings.Split(tt.src, "\n"), tt.lang)
			if got := ix.Documented(tt.line); got != tt.want {
				t.Errorf("Documented(%d) = %v, want %v", tt.line, got, tt.want)
			}
		})
	}
}

func TestCommentIndex_InComment(t *testing.T) {
	lines := strings.Split("int a;\n/*\n int b;\n*/\nint c; // trailing\n// int d;", "\n")
	ix := NewCommentExtractor().Index(lines, "c")

	want := map[int]bool{1: false, 2: true, 3: true, 4: true, 5: false, 6: true}
	for line, in := range want {
		if got := ix.InComment(line); got != in {
			t.Errorf("InComment(%d) = %v, want %v", line, got, in)
		}
	}
	if len(ix.Blocks()) != 2 {
		t.Errorf("expected 2 blocks, got %d", len(ix.Blocks()))
	}
}
