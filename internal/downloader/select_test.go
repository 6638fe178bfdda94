package downloader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestSelectSourceFile(t *testing.T) {
	tests := []struct {
		name      string
		files     []string // Files to create in the job dir
		dirs      []string
		wantFile  string // Expected basename
		wantError bool
	}{
		{
			name:     "prefers mp4 over webm",
			files:    []string{"source.webm", "source.mp4"},
			wantFile: "source.mp4",
		},
		{
			name:     "mkv when no mp4",
			files:    []string{"source.mkv", "source.webm"},
			wantFile: "source.mkv",
		},
		{
			name:     "ignores partial downloads",
			files:    []string{"source.mp4.part", "source.webm.ytdl", "source.webm"},
			wantFile: "source.webm",
		},
		{
			name:     "ignores unrelated files",
			files:    []string{"other.mp4", "source.mov"},
			wantFile: "source.mov",
		},
		{
			name:      "template placeholder only",
			files:     []string{"source.%(ext)s"},
			wantError: true,
		},
		{
			name:      "directory named like a source",
			dirs:      []string{"source.mp4", "temp"},
			wantError: true,
		},
		{
			name:      "error when no files",
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for _, f := range tt.files {
				if err := os.WriteFile(filepath.Join(dir, f), []byte("test"), 0o644); err != nil {
					t.Fatalf("create %s: %v", f, err)
				}
			}
			for _, d := range tt.dirs {
				if err := os.Mkdir(filepath.Join(dir, d), 0o755); err != nil {
					t.Fatalf("mkdir %s: %v", d, err)
				}
			}

			got, err := SelectSourceFile(dir)
			if tt.wantError {
				if !errors.Is(err, ErrMissingSource) {
					t.Errorf("SelectSourceFile() err = %v, want ErrMissingSource", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("SelectSourceFile() unexpected error: %v", err)
			}
			if filepath.Base(got) != tt.wantFile {
				t.Errorf("SelectSourceFile() = %s, want %s", filepath.Base(got), tt.wantFile)
			}
		})
	}
}

func TestSelectSourceFileRemovesPlaceholder(t *testing.T) {
	dir := t.TempDir()
	placeholder := filepath.Join(dir, "source.%(ext)s")
	for _, p := range []string{placeholder, filepath.Join(dir, "source.mkv")} {
		if err := os.WriteFile(p, nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := SelectSourceFile(dir); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(placeholder); !os.IsNotExist(err) {
		t.Errorf("placeholder still present")
	}
}

func TestExtPriority(t *testing.T) {
	if !(extPriority(".MP4") < extPriority(".mkv") && extPriority(".mkv") < extPriority(".webm")) {
		t.Errorf("container order wrong")
	}
	if extPriority(".flv") >= extPriority(".m4a") {
		t.Errorf("video containers should beat audio-only files")
	}
}
