// Gemini implementation of [Generator]
//
// Calls the generateContent endpoint with search grounding and URL context
// tools so the model reads real lyrics pages before analyzing.
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/lyriq/internal/models"
	"github.com/desertthunder/lyriq/internal/shared"
)

const (
	defaultGeminiBaseURL = "https://generativelanguage.googleapis.com"
	defaultGeminiModel   = "gemini-2.5-flash"
)

const analysisPrompt = `Task: analyze the song "%s" by "%s".

STEP 1 - FIND AND READ THE FULL LYRICS:
1. Use the Google Search tool to find the official lyrics for this song
2. Prefer authoritative sources: Genius.com, AZLyrics, or other lyrics sites
3. Use the URL context tool to read the ENTIRE lyrics page you found
4. Transcribe the lyrics VERBATIM from the source; never invent or alter lines
5. If no lyrics can be found, omit the fullLyrics field

STEP 2 - ANALYZE:
Act as a music critic fluent in contemporary slang and internet culture.
Only analyze lyrics you actually read from the web.

OUTPUT FORMAT:
- Return ONE raw JSON object, nothing else
- No markdown code fences, no text before or after the JSON
- Keep every field short and to the point

JSON structure:
{
  "fullLyrics": "complete lyrics copied verbatim from the source, preserving line breaks",
  "vibe": "dominant mood in 3-5 words",
  "overview": "what the song is about, 2-3 sentences",
  "analysis": [
    {
      "section": "section name - MUST be one of: Intro, Verse 1, Verse 2, Pre-Chorus, Chorus, Post-Chorus, Bridge, Outro, Hook",
      "lyricsQuote": "for short sections quote all lines; for long sections quote the 3-4 most important lines",
      "content": "what this section means, 2-3 sentences"
    }
  ],
  "metaphors": [
    { "phrase": "notable metaphor or slang term", "meaning": "plain-language explanation, 1-2 sentences" }
  ],
  "coreMessage": "the song's thesis in one sentence"
}

SECTION NAME RULES:
- Use only the standard names above; number verses Verse 1, Verse 2, Verse 3...
- Never invent section names
- List sections in the order they occur in the song`

var (
	fenceOpenPattern  = regexp.MustCompile("^```(?:json)?\\s*")
	fenceClosePattern = regexp.MustCompile("\\s*```$")
)

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiTool struct {
	GoogleSearch *struct{} `json:"google_search,omitempty"`
	URLContext   *struct{} `json:"url_context,omitempty"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
	Tools    []geminiTool    `json:"tools,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// GeminiService implements [Generator] against the Gemini API.
//
// The HTTP client carries no timeout: a single generation performs web search,
// page retrieval and reasoning inside the provider and routinely takes tens of
// seconds. Cancellation is the caller's ctx.
type GeminiService struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	logger     *log.Logger
}

// NewGeminiService creates a new Gemini analysis generator.
func NewGeminiService(apiKey, model string, logger *log.Logger) *GeminiService {
	if model == "" {
		model = defaultGeminiModel
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &GeminiService{
		apiKey:     apiKey,
		model:      model,
		baseURL:    defaultGeminiBaseURL,
		httpClient: &http.Client{},
		logger:     logger,
	}
}

// Name returns the service name.
func (g *GeminiService) Name() string {
	return "Gemini"
}

// Generate produces an analysis document for a song.
//
// Parse failures and schema mismatches both return an error with the raw
// payload logged for diagnosis; a partial or guessed document is never returned.
func (g *GeminiService) Generate(ctx context.Context, title, artist string) (*models.AnalysisDocument, error) {
	if g.apiKey == "" {
		return nil, fmt.Errorf("%w: missing gemini api_key", shared.ErrMissingCredentials)
	}

	payload := geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: fmt.Sprintf(analysisPrompt, title, artist)}}},
		},
		Tools: []geminiTool{
			{GoogleSearch: &struct{}{}},
			{URLContext: &struct{}{}},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	apiURL := fmt.Sprintf("%s/v1beta/models/%s:generateContent", g.baseURL, g.model)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	var response geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if response.Error != nil {
			return nil, fmt.Errorf("%w: gemini status %d: %s", shared.ErrAPIRequest, resp.StatusCode, response.Error.Message)
		}
		return nil, fmt.Errorf("%w: gemini status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	text := candidateText(response)
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: empty response", shared.ErrGenerationFailed)
	}

	doc, err := decodeDocument(text)
	if err != nil {
		g.logger.Error("unusable generator payload", "error", err, "raw", text)
		return nil, fmt.Errorf("%w: %v", shared.ErrGenerationFailed, err)
	}

	return doc, nil
}

// candidateText concatenates all text parts of the first candidate.
func candidateText(response geminiResponse) string {
	if len(response.Candidates) == 0 {
		return ""
	}

	var sb strings.Builder
	for _, part := range response.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	return sb.String()
}

// decodeDocument normalizes a raw model payload and parses it into a validated document.
//
// Models occasionally wrap output in markdown fences or emit a single-element
// array despite instructions; both shapes decode identically to a bare object.
func decodeDocument(text string) (*models.AnalysisDocument, error) {
	cleaned := stripFences(text)

	if strings.HasPrefix(cleaned, "[") {
		var elements []json.RawMessage
		if err := json.Unmarshal([]byte(cleaned), &elements); err != nil {
			return nil, &models.ValidationError{Field: "document", Index: -1, Code: models.CodeNotJSON}
		}
		if len(elements) == 0 {
			return nil, &models.ValidationError{Field: "document", Index: -1, Code: models.CodeNotJSON}
		}
		cleaned = string(elements[0])
	}

	return models.ParseDocument([]byte(cleaned))
}

// stripFences removes a markdown code-fence wrapper if present.
func stripFences(text string) string {
	cleaned := strings.TrimSpace(text)
	cleaned = fenceOpenPattern.ReplaceAllString(cleaned, "")
	cleaned = fenceClosePattern.ReplaceAllString(cleaned, "")
	return strings.TrimSpace(cleaned)
}
