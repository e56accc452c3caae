// Package tools assembles the agent's tool set from configuration.
package tools

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/soyeahso/reactor/internal/agent"
	"github.com/soyeahso/reactor/internal/config"
	"github.com/soyeahso/reactor/internal/logging"
	"github.com/soyeahso/reactor/internal/tools/auth"
	"github.com/soyeahso/reactor/internal/tools/calendar"
	"github.com/soyeahso/reactor/internal/tools/email"
	"github.com/soyeahso/reactor/internal/tools/music"
	"github.com/soyeahso/reactor/internal/tools/search"
	"github.com/soyeahso/reactor/internal/tools/weather"
)

// Deps carries the resources tools share with the rest of the application.
type Deps struct {
	// Drafts backs the email draft tools. Nil disables them and send_email.
	Drafts email.DraftRepository

	// HTTPClient is used by the API-key tools. Nil gives each tool its own
	// client with a 30s timeout.
	HTTPClient *http.Client

	// GoogleOptions are appended when building Gmail and Calendar services.
	GoogleOptions []option.ClientOption
}

// Build returns the tools whose credentials are configured, in a stable
// order. Missing credentials skip a tool; malformed credentials are errors.
func Build(ctx context.Context, cfg *config.Config, deps Deps, log *logging.Logger) ([]agent.Tool, error) {
	log = log.Sub("tools")
	var out []agent.Tool
	tc := cfg.Tools

	if tc.Search.APIKey != "" {
		out = append(out, search.New(tc.Search, deps.HTTPClient, log))
	} else {
		log.Debug().Str("tool", "internet_search").Msg("skipped: no API key")
	}

	if tc.Weather.APIKey != "" {
		out = append(out, weather.New(tc.Weather, deps.HTTPClient, log))
	} else {
		log.Debug().Str("tool", "get_weather").Msg("skipped: no API key")
	}

	if tc.Music.ClientID != "" {
		client, err := auth.Client(ctx, music.OAuthConfig(tc.Music.ClientID, tc.Music.ClientSecret), tc.Music.TokenFile, log)
		switch {
		case errors.Is(err, auth.ErrNoToken):
			log.Warn().Str("tool", "play_music").Msg("skipped: run 'reactor auth spotify' first")
		case err != nil:
			return nil, fmt.Errorf("spotify credentials: %w", err)
		default:
			out = append(out, music.NewPlayer(client, "", log))
		}
	}

	if deps.Drafts != nil && !tc.Email.Disabled {
		out = append(out, email.DraftTools(deps.Drafts, log)...)
	}

	google, err := googleServices(ctx, tc.Google, deps.GoogleOptions, log)
	if err != nil {
		return nil, err
	}
	if google != nil {
		if deps.Drafts != nil && !tc.Email.Disabled {
			out = append(out, email.SendTool(deps.Drafts, email.NewGmailSender(google.gmail, tc.Email.From), log))
		}
		out = append(out, calendar.New(google.calendar, tc.Google.CalendarID, nil, log).Tools()...)
	}

	if tc.IMAP != nil && tc.IMAP.Host != "" {
		out = append(out, email.InboxTool(email.NewIMAPMailbox(*tc.IMAP, log), log))
	}

	names := make([]string, len(out))
	for i, t := range out {
		names[i] = t.Descriptor().Name
	}
	log.Info().Strs("tools", names).Msg("tools ready")
	return out, nil
}

type googleClients struct {
	gmail    *gmail.Service
	calendar *gcal.Service
}

// googleServices returns nil when Google is not set up yet.
func googleServices(ctx context.Context, gc config.GoogleConfig, extra []option.ClientOption, log *logging.Logger) (*googleClients, error) {
	if gc.CredentialsFile == "" {
		return nil, nil
	}
	if _, err := os.Stat(gc.CredentialsFile); errors.Is(err, os.ErrNotExist) {
		log.Debug().Str("path", gc.CredentialsFile).Msg("google tools skipped: no credentials file")
		return nil, nil
	}

	oauthCfg, err := auth.GoogleConfig(gc.CredentialsFile)
	if err != nil {
		return nil, err
	}
	client, err := auth.Client(ctx, oauthCfg, gc.TokenFile, log)
	if errors.Is(err, auth.ErrNoToken) {
		log.Warn().Msg("google tools skipped: run 'reactor auth google' first")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("google credentials: %w", err)
	}

	opts := append([]option.ClientOption{option.WithHTTPClient(client)}, extra...)
	gm, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create gmail service: %w", err)
	}
	cal, err := gcal.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create calendar service: %w", err)
	}
	return &googleClients{gmail: gm, calendar: cal}, nil
}
