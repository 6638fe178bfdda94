package util

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "reserved characters", in: `inva:lid*name?<>"/\|`, want: "inva_lid_name_______"},
		{name: "plain title", in: "My Holiday Video", want: "My Holiday Video"},
		{name: "trailing dots and spaces", in: "Title. . ", want: "Title"},
		{name: "only dots", in: " ..", want: "video"},
		{name: "empty", in: "", want: "video"},
		{name: "control characters", in: "a\tb\nc", want: "a_b_c"},
		{name: "unicode kept", in: "Відео №1", want: "Відео №1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeFilename(tt.in); got != tt.want {
				t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSanitizeFilenameTruncates(t *testing.T) {
	got := SanitizeFilename(strings.Repeat("я", 300))
	if n := utf8.RuneCountInString(got); n != 200 {
		t.Errorf("rune count = %d, want 200", n)
	}
}

func TestUniquePath(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "clip.mp4")
	if got := UniquePath(first); got != first {
		t.Errorf("UniquePath() on free path = %q", got)
	}
	for _, name := range []string{"clip.mp4", "clip_1.mp4"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if got, want := UniquePath(first), filepath.Join(dir, "clip_2.mp4"); got != want {
		t.Errorf("UniquePath() = %q, want %q", got, want)
	}
}

func TestMoveFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.mp4")
	dst := filepath.Join(dir, "sub", "b.mp4")
	if err := os.WriteFile(src, []byte("payload"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := EnsureDir(filepath.Dir(dst)); err != nil {
		t.Fatal(err)
	}
	if err := MoveFile(src, dst); err != nil {
		t.Fatalf("MoveFile() error: %v", err)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Errorf("source still exists")
	}
	data, err := os.ReadFile(dst)
	if err != nil || string(data) != "payload" {
		t.Errorf("dst content = %q, err = %v", data, err)
	}
}

func TestRemoveIfExists(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "x")
	if err := RemoveIfExists(p); err != nil {
		t.Errorf("missing file: %v", err)
	}
	if err := os.WriteFile(p, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := RemoveIfExists(p); err != nil {
		t.Errorf("existing file: %v", err)
	}
	if _, err := os.Stat(p); !os.IsNotExist(err) {
		t.Errorf("file not removed")
	}
}
