package photos

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"stagelink/internal/models"
)

func photoPayload(encoded string) models.Photo {
	return models.Photo{Photo: models.Base64Image{Data: encoded}}
}

func pngFixture(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	return buf.Bytes()
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func waitForFiles(t *testing.T, dir string, want int) []string {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatalf("read dir: %v", err)
		}
		if len(entries) == want {
			names := make([]string, 0, len(entries))
			for _, entry := range entries {
				names = append(names, entry.Name())
			}
			return names
		}
		if time.Now().After(deadline) {
			t.Fatalf("expected %d files, found %d", want, len(entries))
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestSubmitPersistsPNG(t *testing.T) {
	dir := t.TempDir()
	processor, err := New(dir, WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("new processor: %v", err)
	}

	raw := pngFixture(t)
	processor.Submit(photoPayload(base64.StdEncoding.EncodeToString(raw)))
	if err := processor.Drain(context.Background()); err != nil {
		t.Fatalf("drain: %v", err)
	}

	names := waitForFiles(t, dir, 1)
	if !strings.HasSuffix(names[0], ".png") {
		t.Fatalf("expected .png suffix, got %q", names[0])
	}
	stored, err := os.ReadFile(filepath.Join(dir, names[0]))
	if err != nil {
		t.Fatalf("read stored photo: %v", err)
	}
	if !bytes.Equal(stored, raw) {
		t.Fatal("stored bytes differ from upload")
	}
}

func TestSubmitAcceptsDataURLPrefix(t *testing.T) {
	dir := t.TempDir()
	processor, err := New(dir, WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("new processor: %v", err)
	}

	encoded := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngFixture(t))
	processor.Submit(photoPayload(encoded))
	if err := processor.Drain(context.Background()); err != nil {
		t.Fatalf("drain: %v", err)
	}
	waitForFiles(t, dir, 1)
}

func TestSubmitDropsInvalidPayloads(t *testing.T) {
	dir := t.TempDir()
	processor, err := New(dir, WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("new processor: %v", err)
	}

	processor.Submit(photoPayload(""))
	processor.Submit(photoPayload("not-base64!!"))
	processor.Submit(photoPayload(base64.StdEncoding.EncodeToString([]byte("plain text"))))
	if err := processor.Drain(context.Background()); err != nil {
		t.Fatalf("drain: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no stored files, got %d", len(entries))
	}
}

func TestBoundedConcurrency(t *testing.T) {
	dir := t.TempDir()
	processor, err := New(dir, WithLogger(quietLogger()), WithMaxInFlight(2))
	if err != nil {
		t.Fatalf("new processor: %v", err)
	}

	encoded := base64.StdEncoding.EncodeToString(pngFixture(t))
	for i := 0; i < 10; i++ {
		processor.Submit(photoPayload(encoded))
	}
	if err := processor.Drain(context.Background()); err != nil {
		t.Fatalf("drain: %v", err)
	}
	waitForFiles(t, dir, 10)
}

func TestNewRequiresDirectory(t *testing.T) {
	if _, err := New("  "); err == nil {
		t.Fatal("expected error for blank directory")
	}
}
