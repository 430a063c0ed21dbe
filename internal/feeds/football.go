package feeds

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultFootballBaseURL is the Football-Data.org v4 endpoint.
	DefaultFootballBaseURL = "https://api.football-data.org/v4"

	// DefaultCompetition is the Premier League.
	DefaultCompetition = "PL"

	// NoMatches is shown when there are no fixtures today.
	NoMatches = "No matches found."
)

// Team is one side of a fixture.
type Team struct {
	Name      string `json:"name"`
	ShortName string `json:"shortName"`
	Crest     string `json:"crest"`
}

// Display prefers the short name.
func (t Team) Display() string {
	if t.ShortName != "" {
		return t.ShortName
	}
	return t.Name
}

// Match is one fixture.
type Match struct {
	ID          int       `json:"id"`
	UTCDate     time.Time `json:"utcDate"`
	Status      string    `json:"status"`
	Competition string    `json:"competition"`
	Home        Team      `json:"homeTeam"`
	Away        Team      `json:"awayTeam"`
	HomeScore   *int      `json:"homeScore,omitempty"`
	AwayScore   *int      `json:"awayScore,omitempty"`
}

// Score renders the full-time score, or "vs" before kick-off.
func (m Match) Score() string {
	if m.HomeScore == nil || m.AwayScore == nil {
		return "vs"
	}
	return strconv.Itoa(*m.HomeScore) + " - " + strconv.Itoa(*m.AwayScore)
}

// Kickoff renders the kick-off time as HH:MM in loc.
func (m Match) Kickoff(loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return m.UTCDate.In(loc).Format("15:04")
}

// FootballClient lists fixtures.
type FootballClient struct {
	client
	now func() time.Time
}

// NewFootballClient creates a FootballClient.
func NewFootballClient(apiKey string, opts ...Option) *FootballClient {
	return &FootballClient{
		client: newClient(DefaultFootballBaseURL, apiKey, opts),
		now:    time.Now,
	}
}

type matchesResponse struct {
	Matches []struct {
		ID          int    `json:"id"`
		UTCDate     string `json:"utcDate"`
		Status      string `json:"status"`
		Competition struct {
			Name string `json:"name"`
		} `json:"competition"`
		HomeTeam Team `json:"homeTeam"`
		AwayTeam Team `json:"awayTeam"`
		Score    struct {
			FullTime struct {
				Home *int `json:"home"`
				Away *int `json:"away"`
			} `json:"fullTime"`
		} `json:"score"`
	} `json:"matches"`
}

// Today returns today's (UTC) fixtures for competition. An empty
// competition uses DefaultCompetition. No fixtures is an empty slice, not
// an error.
func (f *FootballClient) Today(ctx context.Context, competition string) ([]Match, error) {
	if !f.Configured() {
		return nil, ErrMissingCredentials
	}
	competition = strings.ToUpper(strings.TrimSpace(competition))
	if competition == "" {
		competition = DefaultCompetition
	}
	today := f.now().UTC().Format(time.DateOnly)

	params := url.Values{}
	params.Set("competitions", competition)
	params.Set("dateFrom", today)
	params.Set("dateTo", today)

	header := http.Header{}
	header.Set("X-Auth-Token", f.apiKey)

	var payload matchesResponse
	if err := f.getJSON(ctx, "/matches", params, header, &payload); err != nil {
		return nil, err
	}

	matches := make([]Match, 0, len(payload.Matches))
	for _, m := range payload.Matches {
		kickoff, _ := time.Parse(time.RFC3339, m.UTCDate)
		matches = append(matches, Match{
			ID:          m.ID,
			UTCDate:     kickoff,
			Status:      m.Status,
			Competition: m.Competition.Name,
			Home:        m.HomeTeam,
			Away:        m.AwayTeam,
			HomeScore:   m.Score.FullTime.Home,
			AwayScore:   m.Score.FullTime.Away,
		})
	}
	return matches, nil
}
