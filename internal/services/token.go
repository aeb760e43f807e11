package services

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/desertthunder/lyriq/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// refreshWindow is how long before expiry a cached token is considered stale.
const refreshWindow = time.Minute

// TokenManager caches a client-credentials access token and refreshes it
// lazily one minute before expiry.
//
// The cached token is held in an [atomic.Pointer] rather than behind a mutex:
// concurrent callers racing through a refresh each perform their own exchange
// and the last store wins. Both tokens are valid, so the race is benign.
type TokenManager struct {
	conf *clientcredentials.Config
	tok  atomic.Pointer[oauth2.Token]
}

// NewTokenManager creates a TokenManager for the given client credentials and token endpoint.
func NewTokenManager(clientID, clientSecret, tokenURL string) *TokenManager {
	return &TokenManager{
		conf: &clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     tokenURL,
		},
	}
}

// Token returns a valid access token, performing the client-credentials
// exchange when no usable cached token exists.
func (m *TokenManager) Token(ctx context.Context) (*oauth2.Token, error) {
	if tok := m.tok.Load(); tok != nil && time.Until(tok.Expiry) > refreshWindow {
		return tok, nil
	}

	fresh, err := m.conf.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrRefreshFailed, err)
	}

	m.tok.Store(fresh)
	return fresh, nil
}
