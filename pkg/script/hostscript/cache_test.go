package hostscript

import "testing"

func TestCacheCompileReturnsSameProgramForSameSource(t *testing.T) {
	c := NewCache(New())
	source := `console_log("a")`

	p1, err := c.Compile(source)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p2, err := c.Compile(source)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p1 != p2 {
		t.Fatal("expected identical source to hit the cache and return the same Program")
	}
}

func TestCacheCompileDistinguishesDifferentSource(t *testing.T) {
	c := NewCache(New())
	p1, err := c.Compile(`console_log("a")`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p2, err := c.Compile(`console_log("b")`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p1 == p2 {
		t.Fatal("expected different source bodies to compile to distinct programs")
	}
}

func TestCacheCompilePropagatesCompileError(t *testing.T) {
	c := NewCache(New())
	if _, err := c.Compile("{{ not valid"); err == nil {
		t.Fatal("expected a syntax error from the underlying runtime to propagate")
	}
}
