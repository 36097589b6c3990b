package tui

import "testing"

func TestWrapTextBreaksAtSpace(t *testing.T) {
	got := wrapText("one two three", 7)
	want := "one two\nthree"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestWrapTextHardBreaksLongWord(t *testing.T) {
	got := wrapText("abcdefgh", 3)
	want := "abc\ndef\ngh"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestWrapTextKeepsNewlines(t *testing.T) {
	got := wrapText("ab\ncd ef", 4)
	want := "ab\ncd\nef"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestWrapTextWideRunes(t *testing.T) {
	got := wrapText("日本語", 4)
	want := "日本\n語"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestWrapTextZeroWidth(t *testing.T) {
	if got := wrapText("unchanged", 0); got != "unchanged" {
		t.Fatalf("expected input back, got %q", got)
	}
}

func TestWrapTextFillsExactWidth(t *testing.T) {
	got := wrapText("one two three four", 7)
	want := "one two\nthree\nfour"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}
