// Package search implements the internet_search tool on top of the Brave
// Search API.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/soyeahso/reactor/internal/agent"
	"github.com/soyeahso/reactor/internal/config"
	"github.com/soyeahso/reactor/internal/logging"
	"github.com/soyeahso/reactor/internal/version"
)

// DefaultEndpoint is the Brave web search endpoint.
const DefaultEndpoint = "https://api.search.brave.com/res/v1/web/search"

const defaultCount = 3

// Response is the subset of the Brave web search response the tool reads.
type Response struct {
	Query struct {
		Original string `json:"original"`
	} `json:"query"`
	Web struct {
		Results []Result `json:"results"`
	} `json:"web"`
}

// Result is a single web result.
type Result struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Age         string `json:"age,omitempty"`
}

// Brave is the internet_search tool.
type Brave struct {
	apiKey   string
	endpoint string
	count    int
	client   *http.Client
	log      *logging.Logger
}

// New creates the search tool from config. A nil client gets a 30s timeout.
func New(cfg config.SearchConfig, client *http.Client, log *logging.Logger) *Brave {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	count := cfg.Count
	if count <= 0 {
		count = defaultCount
	}
	return &Brave{
		apiKey:   cfg.APIKey,
		endpoint: endpoint,
		count:    count,
		client:   client,
		log:      log.Sub("search"),
	}
}

func (b *Brave) Descriptor() agent.ToolDescriptor {
	return agent.ToolDescriptor{
		Name:          "internet_search",
		ArgumentNames: []string{"query"},
		Description:   "Searches the internet for information. Input should be a search query.",
	}
}

func (b *Brave) Invoke(ctx context.Context, args []string) (string, error) {
	query := strings.TrimSpace(strings.Join(args, ", "))
	if query == "" {
		return "Please provide a search query.", nil
	}

	resp, status, err := b.search(ctx, query)
	if err != nil {
		return "", err
	}
	if status != "" {
		return "Error performing internet search: " + status, nil
	}

	b.log.Debug().Str("query", query).Int("results", len(resp.Web.Results)).Msg("search complete")
	return formatResults(query, resp.Web.Results), nil
}

// search returns the decoded response, or a non-empty status describing an
// API-level failure.
func (b *Brave) search(ctx context.Context, query string) (*Response, string, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("count", strconv.Itoa(b.count))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", b.apiKey)
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read search response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		b.log.Warn().Int("status", resp.StatusCode).Str("query", query).Msg("search API error")
		return nil, fmt.Sprintf("API error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body))), nil
	}

	var out Response
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, "", fmt.Errorf("failed to parse search response: %w", err)
	}
	return &out, "", nil
}

func formatResults(query string, results []Result) string {
	if len(results) == 0 {
		return fmt.Sprintf("No results found for '%s'.", query)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Search results for '%s':\n\n", query)
	for i, r := range results {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, r.Title)
		fmt.Fprintf(&sb, "   URL: %s\n", r.URL)
		if r.Age != "" {
			fmt.Fprintf(&sb, "   Age: %s\n", r.Age)
		}
		fmt.Fprintf(&sb, "   %s\n\n", r.Description)
	}
	return strings.TrimRight(sb.String(), "\n")
}
