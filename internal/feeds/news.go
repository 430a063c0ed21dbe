package feeds

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultNewsBaseURL is the newsapi.org endpoint.
const DefaultNewsBaseURL = "https://newsapi.org"

const defaultPageSize = 10

// Article is one headline.
type Article struct {
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	Description string    `json:"description,omitempty"`
	PublishedAt time.Time `json:"published_at"`
}

// NewsClient searches recent headlines.
type NewsClient struct {
	client
	pageSize int
}

// NewNewsClient creates a NewsClient. An empty apiKey yields a client whose
// Search always returns ErrMissingCredentials.
func NewNewsClient(apiKey string, opts ...Option) *NewsClient {
	return &NewsClient{
		client:   newClient(DefaultNewsBaseURL, apiKey, opts),
		pageSize: defaultPageSize,
	}
}

type newsResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Articles []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
		PublishedAt string `json:"publishedAt"`
	} `json:"articles"`
}

// Search returns the newest English articles matching query.
func (n *NewsClient) Search(ctx context.Context, query string) ([]Article, error) {
	if !n.Configured() {
		return nil, ErrMissingCredentials
	}
	query = strings.TrimSpace(query)
	if query == "" {
		query = "technology"
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("sortBy", "publishedAt")
	params.Set("language", "en")
	params.Set("pageSize", strconv.Itoa(n.pageSize))

	header := http.Header{}
	header.Set("X-Api-Key", n.apiKey)

	var payload newsResponse
	if err := n.getJSON(ctx, "/v2/everything", params, header, &payload); err != nil {
		return nil, err
	}
	if payload.Status == "error" {
		return nil, &StatusError{Code: http.StatusOK, Body: payload.Message}
	}

	articles := make([]Article, 0, len(payload.Articles))
	for _, a := range payload.Articles {
		// newsapi marks deleted items with this placeholder title.
		if a.Title == "" || a.Title == "[Removed]" {
			continue
		}
		published, _ := time.Parse(time.RFC3339, a.PublishedAt)
		articles = append(articles, Article{
			Title:       strings.TrimSpace(a.Title),
			URL:         a.URL,
			Source:      a.Source.Name,
			Description: strings.TrimSpace(a.Description),
			PublishedAt: published,
		})
	}
	return articles, nil
}
