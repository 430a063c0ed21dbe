package feeds

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// DefaultStockBaseURL is the Alpha Vantage endpoint.
const DefaultStockBaseURL = "https://www.alphavantage.co"

const dailySeriesKey = "Time Series (Daily)"

// ErrEmptyTicker is returned when Daily is called without a symbol.
var ErrEmptyTicker = errors.New("feeds: ticker cannot be empty")

// PricePoint is one trading day.
type PricePoint struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// Value is the closing price, the figure charted on the dashboard.
func (p PricePoint) Value() float64 { return p.Close }

// StockClient fetches daily price series.
type StockClient struct {
	client
}

// NewStockClient creates a StockClient.
func NewStockClient(apiKey string, opts ...Option) *StockClient {
	return &StockClient{client: newClient(DefaultStockBaseURL, apiKey, opts)}
}

// Daily returns the compact daily series for ticker, oldest first.
func (s *StockClient) Daily(ctx context.Context, ticker string) ([]PricePoint, error) {
	if !s.Configured() {
		return nil, ErrMissingCredentials
	}
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return nil, ErrEmptyTicker
	}

	params := url.Values{}
	params.Set("function", "TIME_SERIES_DAILY")
	params.Set("symbol", ticker)
	params.Set("apikey", s.apiKey)

	var payload map[string]any
	if err := s.getJSON(ctx, "/query", params, nil, &payload); err != nil {
		return nil, err
	}

	// Alpha Vantage reports quota and symbol problems with a 200.
	for _, key := range []string{"Error Message", "Note", "Information"} {
		if msg, ok := payload[key].(string); ok && msg != "" {
			return nil, &StatusError{Code: http.StatusOK, Body: msg}
		}
	}

	series, ok := payload[dailySeriesKey].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: missing %q", ErrMalformedResponse, dailySeriesKey)
	}

	points := make([]PricePoint, 0, len(series))
	for day, raw := range series {
		p, err := parseDay(day, raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
		points = append(points, p)
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Time.Before(points[j].Time) })
	return points, nil
}

func parseDay(day string, raw any) (PricePoint, error) {
	t, err := time.Parse(time.DateOnly, day)
	if err != nil {
		return PricePoint{}, fmt.Errorf("date %q: %w", day, err)
	}
	fields, ok := raw.(map[string]any)
	if !ok {
		return PricePoint{}, fmt.Errorf("date %q: unexpected entry", day)
	}

	num := func(key string) (float64, error) {
		s, _ := fields[key].(string)
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("date %q field %q: %w", day, key, err)
		}
		return v, nil
	}

	p := PricePoint{Time: t}
	if p.Open, err = num("1. open"); err != nil {
		return PricePoint{}, err
	}
	if p.High, err = num("2. high"); err != nil {
		return PricePoint{}, err
	}
	if p.Low, err = num("3. low"); err != nil {
		return PricePoint{}, err
	}
	if p.Close, err = num("4. close"); err != nil {
		return PricePoint{}, err
	}
	if vol, ok := fields["5. volume"].(string); ok {
		p.Volume, _ = strconv.ParseInt(vol, 10, 64)
	}
	return p, nil
}
