package formatter

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/lyriq/internal/models"
	th "github.com/desertthunder/lyriq/internal/testing"
)

func testEntry(t *testing.T) *models.AnalyzedSong {
	t.Helper()

	entry := models.NewAnalyzedSong(1, models.TrackSnapshot{
		ID:     "track1",
		Title:  "Midnight City",
		Artist: "M83",
	}, *th.ValidDocument())
	entry.SetID("entry-1")

	return entry
}

func TestExportToMarkdown(t *testing.T) {
	entry := testEntry(t)

	data, err := ExportToMarkdown(entry, "")
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}

	md := string(data)
	for _, want := range []string{
		"# Midnight City",
		"**Artist**: M83",
		"## Overview",
		"### Verse 1",
		"## Metaphors",
		"## Core Message",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("expected markdown to contain %q", want)
		}
	}

	if strings.Contains(md, "![Cover]") {
		t.Error("expected no cover image without filename")
	}

	withImage, err := ExportToMarkdown(entry, "cover.jpg")
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if !strings.Contains(string(withImage), "![Cover](cover.jpg)") {
		t.Error("expected cover image reference")
	}
}

func TestExportToText(t *testing.T) {
	data, err := ExportToText(testEntry(t))
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}

	text := string(data)
	if !strings.Contains(text, "Song: M83 - Midnight City") {
		t.Errorf("expected header, got %q", text)
	}
	if !strings.Contains(text, "[Verse 1]") {
		t.Error("expected section labels")
	}
	if !strings.Contains(text, "Core message:") {
		t.Error("expected core message")
	}
}

func TestExportToCSV(t *testing.T) {
	data, err := ExportToCSV([]*models.AnalyzedSong{testEntry(t)})
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header and one record, got %d lines", len(lines))
	}
	if lines[0] != "ID,Title,Artist,Fingerprint,Created,Updated" {
		t.Errorf("unexpected header: %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "entry-1,Midnight City,M83,midnight-city_m83,") {
		t.Errorf("unexpected record: %q", lines[1])
	}
}

func TestWriteTextExport(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")

	got, err := WriteTextExport(testEntry(t), path)
	if err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if got != path {
		t.Errorf("expected %q, got %q", path, got)
	}

	th.AssertFileExists(t, path)
}

func TestWriteMarkdownExport(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "export")

	// No image URL on the snapshot, so only README.md is produced.
	result, err := WriteMarkdownExport(testEntry(t), dir)
	if err != nil {
		t.Fatalf("write failed: %v", err)
	}

	if result.Directory != dir {
		t.Errorf("unexpected directory: %q", result.Directory)
	}
	if result.CoverImage != "" {
		t.Errorf("expected no cover image, got %q", result.CoverImage)
	}

	readme := filepath.Join(dir, "README.md")
	th.AssertFileExists(t, readme)

	content, err := os.ReadFile(readme)
	if err != nil {
		t.Fatalf("failed to read README: %v", err)
	}
	if !strings.Contains(string(content), "# Midnight City") {
		t.Error("expected rendered markdown in README")
	}
}
