// package formatter provides functions to export analysis data to various formats (Markdown, plain text, CSV, JSON)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/desertthunder/lyriq/internal/models"
	"github.com/desertthunder/lyriq/internal/shared"
)

// ExportToMarkdown converts an analyzed song to Markdown format with optional cover image
func ExportToMarkdown(entry *models.AnalyzedSong, imageFilename string) ([]byte, error) {
	track := entry.Track()
	doc := entry.Document()

	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", track.Title))
	buf.WriteString(fmt.Sprintf("**Artist**: %s\n\n", track.Artist))

	if imageFilename != "" {
		buf.WriteString(fmt.Sprintf("![Cover](%s)\n\n", imageFilename))
	}

	buf.WriteString(fmt.Sprintf("**Vibe**: %s\n\n", doc.Vibe))
	buf.WriteString(fmt.Sprintf("## Overview\n\n%s\n\n", doc.Overview))

	buf.WriteString("## Analysis\n\n")
	for _, section := range doc.Analysis {
		buf.WriteString(fmt.Sprintf("### %s\n\n", section.Section))
		buf.WriteString(fmt.Sprintf("> %s\n\n", section.LyricsQuote))
		buf.WriteString(fmt.Sprintf("%s\n\n", section.Content))
	}

	if len(doc.Metaphors) > 0 {
		buf.WriteString("## Metaphors\n\n")
		for _, m := range doc.Metaphors {
			buf.WriteString(fmt.Sprintf("- **%s**: %s\n", m.Phrase, m.Meaning))
		}
		buf.WriteString("\n")
	}

	buf.WriteString(fmt.Sprintf("## Core Message\n\n%s\n", doc.CoreMessage))

	return buf.Bytes(), nil
}

// ExportToText converts an analyzed song to plain text format
func ExportToText(entry *models.AnalyzedSong) ([]byte, error) {
	track := entry.Track()
	doc := entry.Document()

	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Song: %s - %s\n", track.Artist, track.Title))
	buf.WriteString(fmt.Sprintf("Vibe: %s\n\n", doc.Vibe))
	buf.WriteString(fmt.Sprintf("%s\n\n", doc.Overview))

	for _, section := range doc.Analysis {
		buf.WriteString(fmt.Sprintf("[%s]\n", section.Section))
		buf.WriteString(fmt.Sprintf("  \"%s\"\n", section.LyricsQuote))
		buf.WriteString(fmt.Sprintf("  %s\n\n", section.Content))
	}

	buf.WriteString(fmt.Sprintf("Core message: %s\n", doc.CoreMessage))

	return buf.Bytes(), nil
}

// ExportToCSV converts a list of cache entries to CSV format with columns: ID, Title, Artist, Fingerprint, Created, Updated
func ExportToCSV(entries []*models.AnalyzedSong) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Artist", "Fingerprint", "Created", "Updated"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, entry := range entries {
		track := entry.Track()
		record := []string{
			entry.ID(),
			track.Title,
			track.Artist,
			entry.Fingerprint(),
			entry.CreatedAt().Format(time.RFC3339),
			entry.UpdatedAt().Format(time.RFC3339),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ToDocumentJSON generates a pretty-printed JSON representation of an analysis document
func ToDocumentJSON(doc *models.AnalysisDocument) ([]byte, error) {
	return shared.MarshalJSON(doc, true)
}

// DownloadImage downloads an image from the given URL and returns the raw bytes
func DownloadImage(url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("empty URL provided")
	}

	client := &http.Client{
		Timeout: 30 * time.Second,
	}

	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	return imageData, nil
}

// MarkdownExportResult contains information about files created by WriteMarkdownExport
type MarkdownExportResult struct {
	Directory  string
	Files      []string
	CoverImage string
}

// WriteMarkdownExport exports an analyzed song to Markdown format in a dedicated directory.
//
// Directory name defaults to the cache entry ID.
// Attempts to download the track's cover art; a download failure only skips the image.
// Creates a directory structure: {dir}/README.md and optionally {dir}/cover.jpg
func WriteMarkdownExport(entry *models.AnalyzedSong, outputDir string) (*MarkdownExportResult, error) {
	if outputDir == "" {
		outputDir = entry.ID()
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &MarkdownExportResult{
		Directory: outputDir,
		Files:     []string{},
	}

	var coverImageFilename string
	if imageURL := entry.Track().ImageURL; imageURL != "" {
		imageData, err := DownloadImage(imageURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to download cover image: %v\n", err)
		} else {
			coverImageFilename = "cover.jpg"
			coverImagePath := fmt.Sprintf("%s/%s", outputDir, coverImageFilename)
			if err := os.WriteFile(coverImagePath, imageData, 0644); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to save cover image: %v\n", err)
				coverImageFilename = ""
			} else {
				result.CoverImage = coverImagePath
				result.Files = append(result.Files, coverImagePath)
			}
		}
	}

	mdData, err := ExportToMarkdown(entry, coverImageFilename)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := fmt.Sprintf("%s/README.md", outputDir)
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}

	result.Files = append(result.Files, mdFile)

	return result, nil
}

// WriteTextExport exports an analyzed song to plain text format.
//
// Defaults to {entry.ID}_analysis.txt as the filename.
func WriteTextExport(entry *models.AnalyzedSong, filepath string) (string, error) {
	if filepath == "" {
		filepath = fmt.Sprintf("%s_analysis.txt", entry.ID())
	}

	textData, err := ExportToText(entry)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(filepath, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return filepath, nil
}
