package server

import (
	"encoding/json"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/lyriq/internal/models"
	"github.com/desertthunder/lyriq/internal/services"
	"github.com/desertthunder/lyriq/internal/tasks"
)

// writeJSON serializes v to the response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error body of the form {"error": message}.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// SearchHandler serves track search requests against the catalog provider.
type SearchHandler struct {
	search services.SearchService
	logger *log.Logger
}

// NewSearchHandler creates a [SearchHandler] backed by the given search service.
func NewSearchHandler(search services.SearchService, logger *log.Logger) *SearchHandler {
	return &SearchHandler{search: search, logger: logger}
}

// Routes returns the mux patterns this handler serves.
func (h *SearchHandler) Routes() []string {
	return []string{"GET /search"}
}

// ServeHTTP handles GET /search?q=<query>.
//
// Responds with {"songs": [...]} on success. A missing query is a 400; a
// provider failure is a 500 because without search results the client has
// nothing to work with.
func (h *SearchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "Query required")
		return
	}

	songs, err := h.search.Search(r.Context(), query)
	if err != nil {
		h.logger.Error("track search failed", "query", query, "error", err)
		writeError(w, http.StatusInternalServerError, "Track search failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string][]models.Track{"songs": songs})
}

// analyzeRequest is the POST /analyze request body.
type analyzeRequest struct {
	Song            *models.Track `json:"song"`
	ForceRegenerate bool          `json:"forceRegenerate"`
}

// analyzeResponse is the POST /analyze response body.
//
// Meaning is null when generation failed; YouTubeVideo serializes per
// [models.VideoResult] so video lookup failures stay distinguishable from
// absent videos.
type analyzeResponse struct {
	Meaning      *models.AnalysisDocument `json:"meaning"`
	YouTubeVideo models.VideoResult       `json:"youtubeVideo"`
	FromCache    bool                     `json:"fromCache"`
}

// AnalyzeHandler serves lyric analysis requests through the [tasks.AnalysisEngine].
type AnalyzeHandler struct {
	engine *tasks.AnalysisEngine
	logger *log.Logger
}

// NewAnalyzeHandler creates an [AnalyzeHandler] backed by the given engine.
func NewAnalyzeHandler(engine *tasks.AnalysisEngine, logger *log.Logger) *AnalyzeHandler {
	return &AnalyzeHandler{engine: engine, logger: logger}
}

// Routes returns the mux patterns this handler serves.
func (h *AnalyzeHandler) Routes() []string {
	return []string{"POST /analyze"}
}

// ServeHTTP handles POST /analyze.
//
// Generation failures do not fail the request: the response carries a null
// meaning and the client decides how to present it.
func (h *AnalyzeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Song == nil || req.Song.Title == "" || req.Song.Artist == "" {
		writeError(w, http.StatusBadRequest, "Song data required")
		return
	}

	outcome, err := h.engine.Analyze(r.Context(), *req.Song, req.ForceRegenerate)
	if err != nil {
		h.logger.Error("analysis request failed", "title", req.Song.Title, "artist", req.Song.Artist, "error", err)
		writeError(w, http.StatusInternalServerError, "Analysis failed")
		return
	}

	writeJSON(w, http.StatusOK, analyzeResponse{
		Meaning:      outcome.Document,
		YouTubeVideo: outcome.Video,
		FromCache:    outcome.FromCache,
	})
}

// HealthHandler serves liveness checks.
type HealthHandler struct{}

// Routes returns the mux patterns this handler serves.
func (h *HealthHandler) Routes() []string {
	return []string{"GET /health"}
}

// ServeHTTP responds with {"status": "ok"}.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
