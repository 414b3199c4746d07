package catalog

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/ewilliams-labs/segue/internal/core/ports"
)

// tokenExpiryMargin is how long before the reported expiry a token is
// considered stale and refreshed.
const tokenExpiryMargin = 30 * time.Second

// TokenProvider supplies a bearer token for catalog calls.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// TokenManager owns the client-credentials token lifecycle: acquisition,
// caching with an expiry margin, and refresh. All mutability of the
// adapter's auth state is confined here, behind the lock.
type TokenManager struct {
	conf       *clientcredentials.Config
	httpClient *http.Client

	mu    sync.Mutex
	token *oauth2.Token
}

var _ TokenProvider = (*TokenManager)(nil)

// NewTokenManager constructs a TokenManager for the given credentials.
// httpClient may be nil to use http.DefaultClient.
func NewTokenManager(httpClient *http.Client, tokenURL, clientID, clientSecret string) *TokenManager {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &TokenManager{
		conf: &clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     tokenURL,
		},
		httpClient: httpClient,
	}
}

// Token returns a valid access token, fetching a fresh one when the cached
// token is missing or within the expiry margin.
func (m *TokenManager) Token(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.token != nil && m.token.AccessToken != "" {
		if m.token.Expiry.IsZero() || time.Until(m.token.Expiry) > tokenExpiryMargin {
			return m.token.AccessToken, nil
		}
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, m.httpClient)
	token, err := m.conf.Token(ctx)
	if err != nil {
		return "", fmt.Errorf("catalog adapter: token request failed: %v: %w", err, ports.ErrUpstreamUnavailable)
	}

	m.token = token
	return token.AccessToken, nil
}
