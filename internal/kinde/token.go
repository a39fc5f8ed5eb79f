package kinde

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// expirySkew is subtracted from the reported token lifetime so a token
// is considered expired shortly before the server would reject it.
const expirySkew = 60 * time.Second

// TokenSource acquires and caches an M2M bearer token via the OAuth2
// client-credentials grant. The cached value is reused for every request
// until it expires or a caller forces a refresh after an observed 401.
//
// TokenSource is not safe for concurrent use; the purge flows are
// strictly sequential, so the cache is simply overwritten on refresh.
type TokenSource struct {
	cfg        clientcredentials.Config
	httpClient *http.Client
	logger     *slog.Logger
	now        func() time.Time

	token   string
	expires time.Time
}

// NewTokenSource creates a token source for the business at host using
// the given M2M application credentials.
func NewTokenSource(host, clientID, clientSecret, audience string, httpClient *http.Client, logger *slog.Logger) *TokenSource {
	return &TokenSource{
		cfg: clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     host + "/oauth2/token",
			EndpointParams: url.Values{
				"audience": {audience},
			},
			// The management API expects credentials in the form body,
			// not a basic auth header.
			AuthStyle: oauth2.AuthStyleInParams,
		},
		httpClient: httpClient,
		logger:     logger,
		now:        time.Now,
	}
}

// Token returns a bearer token for the management API. A cached,
// unexpired token is returned without a network call unless force is
// set, in which case a fresh exchange is always performed.
func (s *TokenSource) Token(ctx context.Context, force bool) (string, error) {
	if !force && s.token != "" && s.now().Before(s.expires) {
		return s.token, nil
	}

	// Route the exchange through our HTTP client. Building a fresh
	// library token source per acquisition drops its internal cache, so
	// a forced refresh always hits the network.
	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
	tok, err := s.cfg.TokenSource(ctx).Token()
	if err != nil {
		var rerr *oauth2.RetrieveError
		if errors.As(err, &rerr) {
			return "", fmt.Errorf("%w: %s", ErrAuth, newAPIError(rerr.Response.StatusCode, rerr.Body))
		}
		return "", fmt.Errorf("%w: %v", ErrAuth, err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("%w: token response missing access_token", ErrAuth)
	}

	now := s.now()
	expires := tok.Expiry.Add(-expirySkew)
	if tok.Expiry.IsZero() || expires.Before(now) {
		// A token with no or near-zero lifetime is re-acquired on the
		// next call rather than cached.
		expires = now
	}

	s.token = tok.AccessToken
	s.expires = expires
	s.logger.Debug("access token acquired",
		slog.Time("expires_at", expires),
		slog.Bool("forced", force),
	)

	return s.token, nil
}
