// Package music implements the play_music tool using the Spotify Web API.
package music

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"

	"github.com/soyeahso/reactor/internal/agent"
	"github.com/soyeahso/reactor/internal/logging"
	"github.com/soyeahso/reactor/internal/version"
)

// DefaultAPIBase is the Spotify Web API root.
const DefaultAPIBase = "https://api.spotify.com/v1"

// Endpoint is Spotify's OAuth2 endpoint.
var Endpoint = oauth2.Endpoint{
	AuthURL:  "https://accounts.spotify.com/authorize",
	TokenURL: "https://accounts.spotify.com/api/token",
}

// Scopes needed to search and control playback.
var Scopes = []string{"user-library-read", "user-read-playback-state", "user-modify-playback-state"}

// NoDeviceMessage is returned when no Spotify client is available to play on.
const NoDeviceMessage = "Failed to find an active device. Please ensure Spotify is running and a device is active."

// OAuthConfig returns the OAuth2 config for a Spotify app.
func OAuthConfig(clientID, clientSecret string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     Endpoint,
		RedirectURL:  "http://localhost:8888/callback",
		Scopes:       Scopes,
	}
}

type track struct {
	Name    string `json:"name"`
	URI     string `json:"uri"`
	Artists []struct {
		Name string `json:"name"`
	} `json:"artists"`
}

func (t track) display() string {
	if len(t.Artists) == 0 {
		return t.Name
	}
	names := make([]string, len(t.Artists))
	for i, a := range t.Artists {
		names[i] = a.Name
	}
	return t.Name + " by " + strings.Join(names, ", ")
}

type device struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	IsActive bool   `json:"is_active"`
}

// Player is the play_music tool. The HTTP client must carry Spotify
// credentials (see auth.Client).
type Player struct {
	client  *http.Client
	baseURL string
	log     *logging.Logger
}

// NewPlayer creates the tool. An empty baseURL uses DefaultAPIBase.
func NewPlayer(client *http.Client, baseURL string, log *logging.Logger) *Player {
	if baseURL == "" {
		baseURL = DefaultAPIBase
	}
	return &Player{client: client, baseURL: strings.TrimRight(baseURL, "/"), log: log.Sub("music")}
}

func (p *Player) Descriptor() agent.ToolDescriptor {
	return agent.ToolDescriptor{
		Name:          "play_music",
		ArgumentNames: []string{"spotify_query"},
		Description:   "Search and play a song on Spotify. Input should be a song name followed by the artist.",
	}
}

func (p *Player) Invoke(ctx context.Context, args []string) (string, error) {
	query := strings.TrimSpace(strings.Join(args, " "))
	if query == "" {
		return "Please provide a song to search for.", nil
	}

	var search struct {
		Tracks struct {
			Items []track `json:"items"`
		} `json:"tracks"`
	}
	params := url.Values{}
	params.Set("q", query)
	params.Set("type", "track")
	params.Set("limit", "1")
	if msg, err := p.call(ctx, http.MethodGet, "/search?"+params.Encode(), nil, &search); err != nil || msg != "" {
		return msg, err
	}
	if len(search.Tracks.Items) == 0 {
		return fmt.Sprintf("No tracks found for '%s'.", query), nil
	}
	found := search.Tracks.Items[0]
	p.log.Debug().Str("query", query).Str("track", found.display()).Msg("track found")

	var devices struct {
		Devices []device `json:"devices"`
	}
	if msg, err := p.call(ctx, http.MethodGet, "/me/player/devices", nil, &devices); err != nil || msg != "" {
		return msg, err
	}
	target, ok := pickDevice(devices.Devices)
	if !ok {
		return NoDeviceMessage, nil
	}

	body := map[string]any{"uris": []string{found.URI}}
	path := "/me/player/play?device_id=" + url.QueryEscape(target.ID)
	if msg, err := p.call(ctx, http.MethodPut, path, body, nil); err != nil || msg != "" {
		return msg, err
	}

	p.log.Info().Str("track", found.display()).Str("device", target.Name).Msg("playback started")
	return "Now playing: " + found.display(), nil
}

// pickDevice prefers the active device, then the first one listed.
func pickDevice(devices []device) (device, bool) {
	for _, d := range devices {
		if d.IsActive {
			return d, true
		}
	}
	if len(devices) == 0 {
		return device{}, false
	}
	return devices[0], true
}

// call performs a Spotify API request. A non-2xx response is reported as a
// message for the model rather than an error.
func (p *Player) call(ctx context.Context, method, path string, in, out any) (string, error) {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return "", fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, body)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("spotify request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read spotify response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		p.log.Warn().Int("status", resp.StatusCode).Str("path", path).Msg("spotify API error")
		return fmt.Sprintf("Spotify API error (status %d): %s", resp.StatusCode, apiMessage(data)), nil
	}
	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return "", fmt.Errorf("failed to parse spotify response: %w", err)
		}
	}
	return "", nil
}

func apiMessage(body []byte) string {
	var e struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &e) == nil && e.Error.Message != "" {
		return e.Error.Message
	}
	return strings.TrimSpace(string(body))
}
