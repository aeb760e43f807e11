// Package services defines the provider interfaces consumed by the analysis
// pipeline and implements them for Spotify, YouTube and Gemini.
//
// # Interfaces
//
// Three narrow capabilities, one per external collaborator:
//   - [SearchService] : free-text track catalog search (primary, user-visible; errors propagate)
//   - [VideoService] : best-match video lookup by title and artist (degradable; errors never escalate past the engine)
//   - [Generator] : AI lyric analysis (long-running; callers impose no short timeout)
//
// # Spotify Implementation
//
// [SpotifyService] uses the OAuth2 client-credentials flow. Access tokens are
// held by an injected [TokenManager] that refreshes lazily one minute before
// expiry with a compare-and-swap update, so concurrent callers never block on
// a mutex; a double refresh under contention is benign since both tokens are valid.
//
// # YouTube Implementation
//
// [YouTubeService] queries the YouTube Data API v3 search endpoint restricted to
// embeddable music videos, preferring results whose title contains "official"
// or "lyrics".
//
// # Gemini Implementation
//
// [GeminiService] calls the generateContent endpoint with the google_search and
// url_context tools enabled so the model can locate and read authoritative
// lyrics pages before analyzing. The response contract is a single raw JSON
// object; the service strips markdown fences, unwraps single-element arrays,
// and validates the schema before returning a document. Anything else is a
// generation failure with the raw payload logged for diagnosis.
//
// # Error Handling
//
// Services use typed errors from the shared package:
//   - [shared.ErrRefreshFailed] : client-credentials token exchange failed
//   - [shared.ErrAPIRequest] : HTTP request failed
//   - [shared.ErrGenerationFailed] : generator output unparseable or schema-invalid
package services
