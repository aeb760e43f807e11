package models

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// ValidationCode enumerates the ways an analysis document can fail validation.
type ValidationCode int

const (
	CodeMissingField ValidationCode = iota
	CodeEmptyAnalysis
	CodeInvalidSectionLabel
	CodeNotJSON
)

func (c ValidationCode) String() string {
	switch c {
	case CodeMissingField:
		return "missing required field"
	case CodeEmptyAnalysis:
		return "analysis has no sections"
	case CodeInvalidSectionLabel:
		return "section label outside closed vocabulary"
	case CodeNotJSON:
		return "payload is not valid JSON"
	default:
		return "invalid document"
	}
}

// ValidationError describes a single schema violation.
type ValidationError struct {
	Field string
	Index int // Element index for slice fields, -1 otherwise
	Code  ValidationCode
}

func (e *ValidationError) Error() string {
	if e.Index > 0 || strings.HasPrefix(e.Field, "analysis") || strings.HasPrefix(e.Field, "metaphors") {
		return fmt.Sprintf("%s[%d]: %s", e.Field, e.Index, e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Code)
}

// sectionLabelPattern is the closed section vocabulary. Verses are numbered;
// everything else is a fixed label.
var sectionLabelPattern = regexp.MustCompile(`^(Intro|Verse \d+|Pre-Chorus|Chorus|Post-Chorus|Bridge|Outro|Hook)$`)

// ValidSectionLabel reports whether a section name belongs to the closed vocabulary.
func ValidSectionLabel(label string) bool {
	return sectionLabelPattern.MatchString(label)
}

// Validate checks that every required field of the document is present and that
// section labels belong to the closed vocabulary. FullLyrics is the only
// optional field. The first violation found is returned.
func (d *AnalysisDocument) Validate() error {
	if strings.TrimSpace(d.Vibe) == "" {
		return &ValidationError{Field: "vibe", Index: -1, Code: CodeMissingField}
	}
	if strings.TrimSpace(d.Overview) == "" {
		return &ValidationError{Field: "overview", Index: -1, Code: CodeMissingField}
	}
	if strings.TrimSpace(d.CoreMessage) == "" {
		return &ValidationError{Field: "coreMessage", Index: -1, Code: CodeMissingField}
	}
	if len(d.Analysis) == 0 {
		return &ValidationError{Field: "analysis", Index: -1, Code: CodeEmptyAnalysis}
	}
	for i, section := range d.Analysis {
		if !ValidSectionLabel(section.Section) {
			return &ValidationError{Field: "analysis", Index: i, Code: CodeInvalidSectionLabel}
		}
		if strings.TrimSpace(section.Content) == "" {
			return &ValidationError{Field: "analysis.content", Index: i, Code: CodeMissingField}
		}
	}
	if d.Metaphors == nil {
		return &ValidationError{Field: "metaphors", Index: -1, Code: CodeMissingField}
	}
	for i, metaphor := range d.Metaphors {
		if strings.TrimSpace(metaphor.Phrase) == "" || strings.TrimSpace(metaphor.Meaning) == "" {
			return &ValidationError{Field: "metaphors", Index: i, Code: CodeMissingField}
		}
	}
	return nil
}

// ParseDocument decodes and validates a raw JSON payload as an [AnalysisDocument].
//
// A document failing either step is treated as "generation failed" by callers
// and never stored; partial or guessed documents are not produced.
func ParseDocument(raw []byte) (*AnalysisDocument, error) {
	var doc AnalysisDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, &ValidationError{Field: "document", Index: -1, Code: CodeNotJSON}
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}
