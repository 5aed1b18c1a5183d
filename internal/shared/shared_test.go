package shared

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNormalizeKey(t *testing.T) {
	tc := []struct {
		name   string
		album  string
		artist string
		want   string
	}{
		{
			name:   "basic normalization",
			album:  "Album Title",
			artist: "Artist Name",
			want:   "album title|artist name",
		},
		{
			name:   "extra whitespace",
			album:  "  Album   Title  ",
			artist: "  Artist   Name  ",
			want:   "album title|artist name",
		},
		{
			name:   "mixed case",
			album:  "AlBuM TiTlE",
			artist: "ArTiSt NaMe",
			want:   "album title|artist name",
		},
		{
			name:   "empty artist",
			album:  "Album",
			artist: "",
			want:   "album|",
		},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeKey(tt.album, tt.artist)
			if got != tt.want {
				t.Errorf("NormalizeKey() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStripSingleSuffix(t *testing.T) {
	tc := []struct {
		name  string
		album string
		want  string
	}{
		{name: "with suffix", album: "Houdini - Single", want: "Houdini"},
		{name: "without suffix", album: "Renaissance", want: "Renaissance"},
		{name: "suffix mid-name", album: "Not - Single Minded", want: "Not - Single Minded"},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripSingleSuffix(tt.album); got != tt.want {
				t.Errorf("StripSingleSuffix() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidateJSON(t *testing.T) {
	if err := ValidateJSON([]byte(`{"albums": []}`)); err != nil {
		t.Errorf("valid JSON should pass: %v", err)
	}
	if err := ValidateJSON([]byte(`{"albums": [`)); err == nil {
		t.Error("truncated JSON should fail")
	}
}

func TestWriteFileAtomic(t *testing.T) {
	tmpDir := t.TempDir()
	target := filepath.Join(tmpDir, "data.json")

	if err := WriteFileAtomic(target, []byte(`{"v":1}`), 0644); err != nil {
		t.Fatalf("initial write failed: %v", err)
	}
	if err := WriteFileAtomic(target, []byte(`{"v":2}`), 0644); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("failed to read target: %v", err)
	}
	if string(data) != `{"v":2}` {
		t.Errorf("expected second write to win, got %s", data)
	}

	entries, err := os.ReadDir(tmpDir)
	if err != nil {
		t.Fatalf("failed to list dir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("temp files should be cleaned up, found %d entries", len(entries))
	}
}

func TestVerifyAndReadFile(t *testing.T) {
	tmpDir := t.TempDir()

	if _, err := VerifyAndReadFile(""); err == nil {
		t.Error("empty path should fail")
	}
	if _, err := VerifyAndReadFile(tmpDir); err == nil {
		t.Error("directory path should fail")
	}

	path := filepath.Join(tmpDir, "events.csv")
	if err := os.WriteFile(path, []byte("Album Name\n"), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	data, err := VerifyAndReadFile(path)
	if err != nil {
		t.Fatalf("expected read to succeed: %v", err)
	}
	if string(data) != "Album Name\n" {
		t.Errorf("unexpected file contents: %s", data)
	}
}
