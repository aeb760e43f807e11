package models

import (
	"errors"
	"testing"
)

func validDocument() AnalysisDocument {
	return AnalysisDocument{
		Vibe:     "Triumphant stadium rock",
		Overview: "An anthem about persistence.",
		Analysis: []AnalysisSection{
			{Section: "Verse 1", LyricsQuote: "first light breaks", Content: "Sets the scene of struggle."},
			{Section: "Chorus", LyricsQuote: "we rise again", Content: "The central declaration of resilience."},
		},
		Metaphors: []Metaphor{
			{Phrase: "first light", Meaning: "A new beginning after hardship."},
		},
		CoreMessage: "Setbacks are temporary.",
	}
}

func assertValidationCode(t *testing.T, err error, field string, code ValidationCode) {
	t.Helper()

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected *ValidationError, got %T (%v)", err, err)
	}
	if vErr.Field != field {
		t.Errorf("expected field %q, got %q", field, vErr.Field)
	}
	if vErr.Code != code {
		t.Errorf("expected code %v, got %v", code, vErr.Code)
	}
}

func TestAnalysisDocumentValidate(t *testing.T) {
	t.Run("Valid Document", func(t *testing.T) {
		doc := validDocument()
		if err := doc.Validate(); err != nil {
			t.Errorf("expected valid document, got %v", err)
		}
	})

	t.Run("Full Lyrics Optional", func(t *testing.T) {
		doc := validDocument()
		doc.FullLyrics = ""
		if err := doc.Validate(); err != nil {
			t.Errorf("expected empty fullLyrics to be allowed, got %v", err)
		}
	})

	t.Run("Missing Vibe", func(t *testing.T) {
		doc := validDocument()
		doc.Vibe = "   "
		assertValidationCode(t, doc.Validate(), "vibe", CodeMissingField)
	})

	t.Run("Missing Overview", func(t *testing.T) {
		doc := validDocument()
		doc.Overview = ""
		assertValidationCode(t, doc.Validate(), "overview", CodeMissingField)
	})

	t.Run("Missing Core Message", func(t *testing.T) {
		doc := validDocument()
		doc.CoreMessage = ""
		assertValidationCode(t, doc.Validate(), "coreMessage", CodeMissingField)
	})

	t.Run("Empty Analysis", func(t *testing.T) {
		doc := validDocument()
		doc.Analysis = nil
		assertValidationCode(t, doc.Validate(), "analysis", CodeEmptyAnalysis)
	})

	t.Run("Invalid Section Label", func(t *testing.T) {
		doc := validDocument()
		doc.Analysis[1].Section = "Second Drop"
		err := doc.Validate()
		assertValidationCode(t, err, "analysis", CodeInvalidSectionLabel)

		var vErr *ValidationError
		errors.As(err, &vErr)
		if vErr.Index != 1 {
			t.Errorf("expected index 1, got %d", vErr.Index)
		}
	})

	t.Run("Nil Metaphors", func(t *testing.T) {
		doc := validDocument()
		doc.Metaphors = nil
		assertValidationCode(t, doc.Validate(), "metaphors", CodeMissingField)
	})

	t.Run("Empty Metaphors Slice Allowed", func(t *testing.T) {
		doc := validDocument()
		doc.Metaphors = []Metaphor{}
		if err := doc.Validate(); err != nil {
			t.Errorf("expected empty slice to be valid, got %v", err)
		}
	})

	t.Run("Blank Metaphor Entry", func(t *testing.T) {
		doc := validDocument()
		doc.Metaphors = append(doc.Metaphors, Metaphor{Phrase: "x", Meaning: ""})
		assertValidationCode(t, doc.Validate(), "metaphors", CodeMissingField)
	})
}

func TestValidSectionLabel(t *testing.T) {
	valid := []string{"Intro", "Verse 1", "Verse 12", "Pre-Chorus", "Chorus", "Post-Chorus", "Bridge", "Outro", "Hook"}
	for _, label := range valid {
		if !ValidSectionLabel(label) {
			t.Errorf("expected %q to be valid", label)
		}
	}

	invalid := []string{"", "verse 1", "Verse", "Verse one", "Drop", "Chorus 2", " Chorus", "Refrain"}
	for _, label := range invalid {
		if ValidSectionLabel(label) {
			t.Errorf("expected %q to be invalid", label)
		}
	}
}

func TestParseDocument(t *testing.T) {
	t.Run("Valid Payload", func(t *testing.T) {
		raw := []byte(`{
			"vibe": "Dreamy bedroom pop",
			"overview": "A song about late-night longing.",
			"analysis": [{"section": "Chorus", "lyricsQuote": "stay on the line", "content": "A plea to keep talking."}],
			"metaphors": [],
			"coreMessage": "Connection beats sleep."
		}`)

		doc, err := ParseDocument(raw)
		if err != nil {
			t.Fatalf("expected document, got %v", err)
		}
		if doc.Vibe != "Dreamy bedroom pop" {
			t.Errorf("unexpected vibe: %q", doc.Vibe)
		}
	})

	t.Run("Not JSON", func(t *testing.T) {
		_, err := ParseDocument([]byte("the song is about love"))
		assertValidationCode(t, err, "document", CodeNotJSON)
	})

	t.Run("Schema Violation", func(t *testing.T) {
		_, err := ParseDocument([]byte(`{"vibe": "x", "overview": "y", "analysis": [], "metaphors": [], "coreMessage": "z"}`))
		assertValidationCode(t, err, "analysis", CodeEmptyAnalysis)
	})
}
