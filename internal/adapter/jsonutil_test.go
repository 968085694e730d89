package adapter

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReadBoundedMissingFile(t *testing.T) {
	data, err := ReadBounded(filepath.Join(t.TempDir(), "nope.json"), DefaultMaxFileSize)
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if data != nil {
		t.Fatalf("expected nil data for missing file")
	}
}

func TestReadBoundedTooLarge(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "big.json")
	if err := os.WriteFile(path, []byte("0123456789"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadBounded(path, 4); err != ErrTooLarge {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
}

func TestCheckJSONDepthWithinLimit(t *testing.T) {
	if err := CheckJSONDepth([]byte(`{"a":[1,2,{"b":3}]}`), 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCheckJSONDepthExceeded(t *testing.T) {
	nested := "1"
	for i := 0; i < 10; i++ {
		nested = "[" + nested + "]"
	}
	if err := CheckJSONDepth([]byte(nested), 3); err != ErrTooDeep {
		t.Fatalf("expected ErrTooDeep, got %v", err)
	}
}

func TestScanNDJSONSkipsBlankLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "x.ndjson")
	content := "{\"a\":1}\n\n{\"a\":2}\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	var lines []string
	err := ScanNDJSON(path, DefaultMaxFileSize, func(line []byte) error {
		lines = append(lines, string(line))
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("expected 2 non-blank lines, got %d: %v", len(lines), lines)
	}
}

func TestScanNDJSONMissingFile(t *testing.T) {
	called := false
	err := ScanNDJSON(filepath.Join(t.TempDir(), "nope.ndjson"), DefaultMaxFileSize, func(line []byte) error {
		called = true
		return nil
	})
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if called {
		t.Fatalf("fn should not be called for a missing file")
	}
}

func TestSetLimitsOverridesBoundsAndIgnoresNonPositive(t *testing.T) {
	defer SetLimits(DefaultMaxFileSize, DefaultMaxJSONDepth)

	SetLimits(1024, 8)
	if got := MaxFileSize(); got != 1024 {
		t.Fatalf("expected MaxFileSize 1024, got %d", got)
	}
	if got := MaxJSONDepth(); got != 8 {
		t.Fatalf("expected MaxJSONDepth 8, got %d", got)
	}

	SetLimits(0, -1)
	if got := MaxFileSize(); got != 1024 {
		t.Fatalf("non-positive SetLimits call should leave MaxFileSize unchanged, got %d", got)
	}
	if got := MaxJSONDepth(); got != 8 {
		t.Fatalf("non-positive SetLimits call should leave MaxJSONDepth unchanged, got %d", got)
	}
}

func TestGetStringAlternateKeys(t *testing.T) {
	m := map[string]interface{}{"repo_file_path": "a.tf"}
	if got := GetString(m, "file_path", "repo_file_path"); got != "a.tf" {
		t.Fatalf("expected a.tf, got %q", got)
	}
}

func TestFirstIntShapes(t *testing.T) {
	cases := []struct {
		in   interface{}
		want int
	}{
		{float64(12), 12},
		{"10-15", 10},
		{[]interface{}{float64(10), float64(12)}, 10},
		{"not a number", 0},
		{nil, 0},
	}
	for _, c := range cases {
		if got := FirstInt(c.in); got != c.want {
			t.Fatalf("FirstInt(%v) = %d, want %d", c.in, got, c.want)
		}
	}
}
