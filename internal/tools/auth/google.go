package auth

import (
	"fmt"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/gmail/v1"
)

// GoogleScopes cover sending mail and managing calendar events.
var GoogleScopes = []string{gmail.GmailSendScope, calendar.CalendarEventsScope}

// GoogleConfig reads an OAuth client credentials file downloaded from the
// Google Cloud console.
func GoogleConfig(credentialsFile string, scopes ...string) (*oauth2.Config, error) {
	if len(scopes) == 0 {
		scopes = GoogleScopes
	}
	b, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read client secret file: %w", err)
	}
	cfg, err := google.ConfigFromJSON(b, scopes...)
	if err != nil {
		return nil, fmt.Errorf("unable to parse client secret file to config: %w", err)
	}
	return cfg, nil
}
