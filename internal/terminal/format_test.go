package terminal

import "testing"

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Command", "Count"}
	rows := [][]string{
		{"help", "12"},
		{"experience", "3"},
	}
	lines := FormatTable(headers, rows, map[int]bool{1: true})
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Command     Count" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "help           12" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "experience      3" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestFormatTableWideRunes(t *testing.T) {
	lines := FormatTable(nil, [][]string{{"東京", "x"}, {"ab", "y"}}, nil)
	if lines[0] != "東京  x" || lines[1] != "ab    y" {
		t.Fatalf("unexpected wide-rune layout: %q", lines)
	}
}

func TestFormatTableEmpty(t *testing.T) {
	if lines := FormatTable(nil, nil, nil); lines != nil {
		t.Fatalf("expected nil, got %q", lines)
	}
}
