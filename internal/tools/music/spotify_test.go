package music

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soyeahso/reactor/internal/logging"
)

type fakeSpotify struct {
	devices  string
	playCode int
	played   []string
	device   string
}

func (f *fakeSpotify) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/search":
			assert.Equal(t, "track", r.URL.Query().Get("type"))
			if r.URL.Query().Get("q") == "nothing" {
				w.Write([]byte(`{"tracks":{"items":[]}}`))
				return
			}
			w.Write([]byte(`{"tracks":{"items":[{"name":"Bohemian Rhapsody","uri":"spotify:track:abc","artists":[{"name":"Queen"}]}]}}`))
		case "/me/player/devices":
			w.Write([]byte(f.devices))
		case "/me/player/play":
			assert.Equal(t, http.MethodPut, r.Method)
			var body struct {
				URIs []string `json:"uris"`
			}
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			f.played = append(f.played, body.URIs...)
			f.device = r.URL.Query().Get("device_id")
			if f.playCode != 0 {
				w.WriteHeader(f.playCode)
				w.Write([]byte(`{"error":{"status":403,"message":"Player command failed: Premium required"}}`))
				return
			}
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}
}

func newTestPlayer(t *testing.T, f *fakeSpotify) *Player {
	t.Helper()
	srv := httptest.NewServer(f.handler(t))
	t.Cleanup(srv.Close)
	return NewPlayer(srv.Client(), srv.URL, logging.New(nil, "silent"))
}

func TestPlayer_PlaysOnActiveDevice(t *testing.T) {
	f := &fakeSpotify{devices: `{"devices":[{"id":"d1","name":"Phone"},{"id":"d2","name":"Laptop","is_active":true}]}`}
	p := newTestPlayer(t, f)

	out, err := p.Invoke(context.Background(), []string{"bohemian rhapsody queen"})
	require.NoError(t, err)
	assert.Equal(t, "Now playing: Bohemian Rhapsody by Queen", out)
	assert.Equal(t, []string{"spotify:track:abc"}, f.played)
	assert.Equal(t, "d2", f.device)
}

func TestPlayer_FallsBackToFirstDevice(t *testing.T) {
	f := &fakeSpotify{devices: `{"devices":[{"id":"d1","name":"Phone"}]}`}
	p := newTestPlayer(t, f)

	_, err := p.Invoke(context.Background(), []string{"bohemian rhapsody"})
	require.NoError(t, err)
	assert.Equal(t, "d1", f.device)
}

func TestPlayer_NoDevice(t *testing.T) {
	f := &fakeSpotify{devices: `{"devices":[]}`}
	p := newTestPlayer(t, f)

	out, err := p.Invoke(context.Background(), []string{"bohemian rhapsody"})
	require.NoError(t, err)
	assert.Equal(t, NoDeviceMessage, out)
	assert.Empty(t, f.played)
}

func TestPlayer_NoTracks(t *testing.T) {
	p := newTestPlayer(t, &fakeSpotify{})

	out, err := p.Invoke(context.Background(), []string{"nothing"})
	require.NoError(t, err)
	assert.Equal(t, "No tracks found for 'nothing'.", out)
}

func TestPlayer_PlaybackRejected(t *testing.T) {
	f := &fakeSpotify{devices: `{"devices":[{"id":"d1"}]}`, playCode: http.StatusForbidden}
	p := newTestPlayer(t, f)

	out, err := p.Invoke(context.Background(), []string{"bohemian rhapsody"})
	require.NoError(t, err)
	assert.Equal(t, "Spotify API error (status 403): Player command failed: Premium required", out)
}

func TestOAuthConfig(t *testing.T) {
	cfg := OAuthConfig("id", "secret")
	assert.Equal(t, Endpoint, cfg.Endpoint)
	assert.Contains(t, cfg.Scopes, "user-modify-playback-state")
}
