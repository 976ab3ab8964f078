package strava

import (
	"context"
	"net/http"
	"sync"

	"golang.org/x/oauth2"

	"github.com/dnguyen800/ha-strava/pkg/logger"
)

// Endpoint is Strava's OAuth2 endpoint pair.
var Endpoint = oauth2.Endpoint{
	AuthURL:  "https://www.strava.com/oauth/authorize",
	TokenURL: "https://www.strava.com/oauth/token",
}

// TokenSaver persists a refreshed token back into the config record.
type TokenSaver func(ctx context.Context, tok *oauth2.Token) error

// NewAuthClient builds a bearer-authenticated HTTP client around the
// stored token. The token auto-refreshes through the OAuth2 endpoint and
// every refresh is handed to save so the record stays current.
func NewAuthClient(ctx context.Context, creds Credentials, tok *oauth2.Token, save TokenSaver) *http.Client {
	conf := &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Endpoint:     Endpoint,
	}

	src := &persistingTokenSource{
		ctx:  ctx,
		src:  conf.TokenSource(ctx, tok),
		save: save,
		last: tok,
	}
	return oauth2.NewClient(ctx, src)
}

// persistingTokenSource saves tokens whenever the wrapped source rotates
// the access token.
type persistingTokenSource struct {
	ctx  context.Context
	src  oauth2.TokenSource
	save TokenSaver

	mu   sync.Mutex
	last *oauth2.Token
}

func (p *persistingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := p.src.Token()
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.save != nil && (p.last == nil || tok.AccessToken != p.last.AccessToken) {
		if err := p.save(p.ctx, tok); err != nil {
			// Auth still works with the in-memory token; the record is
			// simply stale until the next successful save.
			logger.Named("strava").Warn(p.ctx, "could not persist refreshed token", logger.Error(err))
		}
		p.last = tok
	}
	return tok, nil
}
