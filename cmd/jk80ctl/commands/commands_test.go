package commands

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestPreviewWritesPNG(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "receipt.png")

	root := newRootCmd()
	root.SetArgs([]string{"preview", "-o", out, "--config", filepath.Join(dir, "missing.yaml")})
	if err := root.Execute(); err != nil {
		t.Fatalf("preview: %v", err)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.Bounds().Dx() != 576 {
		t.Errorf("width = %d, want 576", img.Bounds().Dx())
	}
}

func TestBadConfigFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("transport: usb\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	root := newRootCmd()
	var stderr bytes.Buffer
	root.SetErr(&stderr)
	root.SetArgs([]string{"preview", "-o", filepath.Join(dir, "x.png"), "--config", path})
	if err := root.Execute(); err == nil {
		t.Fatal("expected config error")
	}
}
