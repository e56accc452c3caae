// Package auth loads, refreshes and persists OAuth2 tokens for the tools
// that talk to Google and Spotify.
package auth

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/oauth2"

	"github.com/soyeahso/reactor/internal/logging"
)

// ErrNoToken is returned when the token file does not exist yet.
var ErrNoToken = errors.New("no stored token")

// LoadToken reads a JSON-encoded token.
func LoadToken(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w at %s", ErrNoToken, path)
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tok := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		return nil, fmt.Errorf("decoding token %s: %w", path, err)
	}
	return tok, nil
}

// SaveToken writes tok as JSON, readable only by the owner.
func SaveToken(path string, tok *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating token directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("unable to cache oauth token: %w", err)
	}
	if err := json.NewEncoder(f).Encode(tok); err != nil {
		f.Close()
		return fmt.Errorf("encoding token: %w", err)
	}
	return f.Close()
}

// FileTokenSource hands out tokens from an underlying refreshing source and
// writes the token back to disk each time it changes.
type FileTokenSource struct {
	mu   sync.Mutex
	base oauth2.TokenSource
	path string
	last string
	log  *logging.Logger
}

// NewFileTokenSource loads the token at path and refreshes it with cfg.
func NewFileTokenSource(ctx context.Context, cfg *oauth2.Config, path string, log *logging.Logger) (*FileTokenSource, error) {
	tok, err := LoadToken(path)
	if err != nil {
		return nil, err
	}
	return &FileTokenSource{
		base: cfg.TokenSource(ctx, tok),
		path: path,
		last: tok.AccessToken,
		log:  log.Sub("auth"),
	}, nil
}

// Token implements oauth2.TokenSource.
func (s *FileTokenSource) Token() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tok, err := s.base.Token()
	if err != nil {
		return nil, fmt.Errorf("refreshing token: %w", err)
	}
	if tok.AccessToken != s.last {
		if err := SaveToken(s.path, tok); err != nil {
			s.log.Warn().Err(err).Str("path", s.path).Msg("failed to persist refreshed token")
		} else {
			s.log.Debug().Str("path", s.path).Time("expiry", tok.Expiry).Msg("token refreshed")
			s.last = tok.AccessToken
		}
	}
	return tok, nil
}

// Client returns an HTTP client authorised with the token stored at path.
func Client(ctx context.Context, cfg *oauth2.Config, path string, log *logging.Logger) (*http.Client, error) {
	src, err := NewFileTokenSource(ctx, cfg, path, log)
	if err != nil {
		return nil, err
	}
	return oauth2.NewClient(ctx, src), nil
}

// Authorize runs the manual consent flow: print the consent URL to out, read
// the authorization code from in and exchange it for a token. The pasted
// value may also be the full redirect URL carrying a code parameter.
func Authorize(ctx context.Context, cfg *oauth2.Config, in io.Reader, out io.Writer) (*oauth2.Token, error) {
	authURL := cfg.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	fmt.Fprintf(out, "Go to the following link in your browser then type the authorization code:\n%v\n", authURL)

	code, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("unable to read authorization code: %w", err)
	}
	code = strings.TrimSpace(code)
	if u, err := url.Parse(code); err == nil && u.Query().Get("code") != "" {
		code = u.Query().Get("code")
	}
	if code == "" {
		return nil, errors.New("no authorization code entered")
	}

	tok, err := cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve token from web: %w", err)
	}
	return tok, nil
}
