// Package weather implements the get_weather tool against the
// OpenWeatherMap current weather API.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/soyeahso/reactor/internal/agent"
	"github.com/soyeahso/reactor/internal/config"
	"github.com/soyeahso/reactor/internal/logging"
	"github.com/soyeahso/reactor/internal/version"
)

// DefaultEndpoint is the OpenWeatherMap current weather endpoint.
const DefaultEndpoint = "https://api.openweathermap.org/data/2.5/weather"

// CurrentResponse is the subset of the current weather payload the tool reads.
type CurrentResponse struct {
	Name    string `json:"name"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Message string `json:"message,omitempty"`
}

// OpenWeather is the get_weather tool.
type OpenWeather struct {
	apiKey   string
	units    string
	endpoint string
	client   *http.Client
	log      *logging.Logger
}

// New creates the weather tool from config. A nil client gets a 30s timeout.
func New(cfg config.WeatherConfig, client *http.Client, log *logging.Logger) *OpenWeather {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	units := cfg.Units
	if units == "" {
		units = "metric"
	}
	return &OpenWeather{
		apiKey:   cfg.APIKey,
		units:    units,
		endpoint: endpoint,
		client:   client,
		log:      log.Sub("weather"),
	}
}

func (o *OpenWeather) Descriptor() agent.ToolDescriptor {
	return agent.ToolDescriptor{
		Name:          "get_weather",
		ArgumentNames: []string{"city_name"},
		Description:   "Retrieves weather information for a specific city. Input should be a city name.",
	}
}

func (o *OpenWeather) Invoke(ctx context.Context, args []string) (string, error) {
	city := strings.TrimSpace(strings.Join(args, ", "))
	if city == "" {
		return "Please provide a city name.", nil
	}

	params := url.Values{}
	params.Set("q", city)
	params.Set("appid", o.apiKey)
	params.Set("units", o.units)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("weather request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read weather response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Sprintf("City '%s' not found.", city), nil
	case resp.StatusCode != http.StatusOK:
		o.log.Warn().Int("status", resp.StatusCode).Str("city", city).Msg("weather API error")
		return fmt.Sprintf("Error getting weather information: API error (status %d): %s",
			resp.StatusCode, strings.TrimSpace(string(body))), nil
	}

	var data CurrentResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return "", fmt.Errorf("failed to parse weather response: %w", err)
	}
	if len(data.Weather) == 0 {
		return fmt.Sprintf("No weather data available for %s.", city), nil
	}

	return fmt.Sprintf("Weather in %s: %s, %s%s",
		city, data.Weather[0].Description, formatTemp(data.Main.Temp), unitSymbol(o.units)), nil
}

func formatTemp(t float64) string {
	s := fmt.Sprintf("%.2f", t)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

func unitSymbol(units string) string {
	switch units {
	case "imperial":
		return "°F"
	case "standard":
		return "K"
	default:
		return "°C"
	}
}
