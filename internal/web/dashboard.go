package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bimmerbailey/surprise/internal/feeds"
	"github.com/bimmerbailey/surprise/internal/prompt"
)

const (
	defaultQuery  = "technology"
	defaultTicker = "IBM"
	chartWidth    = 600
	chartHeight   = 160
)

// feedError renders a feed failure, naming the key to set when it is
// missing.
func feedError(err error, envVar string) string {
	if errors.Is(err, feeds.ErrMissingCredentials) {
		return "API key not configured. Set " + envVar + " or add it to the secrets file."
	}
	return errorMessage(err)
}

// sparkline maps closing prices onto an SVG polyline "x,y x,y ..." string.
func sparkline(points []feeds.PricePoint, width, height float64) string {
	if len(points) == 0 {
		return ""
	}
	lo, hi := points[0].Close, points[0].Close
	for _, p := range points {
		lo = min(lo, p.Close)
		hi = max(hi, p.Close)
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}

	step := 0.0
	if len(points) > 1 {
		step = width / float64(len(points)-1)
	}
	coords := make([]string, len(points))
	for i, p := range points {
		x := float64(i) * step
		y := height - (p.Close-lo)/span*height
		coords[i] = fmt.Sprintf("%.1f,%.1f", x, y)
	}
	return strings.Join(coords, " ")
}

type dashboard struct {
	Query     string
	Ticker    string
	Articles  []feeds.Article
	NewsError string
	Prices    []feeds.PricePoint
	Latest    *feeds.PricePoint
	Chart     string
	StockErr  string
}

// loadDashboard fetches headlines and prices. Each feed fails on its own.
func (s *Server) loadDashboard(ctx context.Context, query, ticker string) dashboard {
	d := dashboard{Query: query, Ticker: strings.ToUpper(ticker)}

	articles, err := s.feeds.News.Search(ctx, query)
	if err != nil {
		s.logger.Warn("news feed failed", "error", err)
		d.NewsError = feedError(err, "NEWS_API_KEY")
	}
	d.Articles = articles

	prices, err := s.feeds.Stocks.Daily(ctx, ticker)
	if err != nil {
		s.logger.Warn("stock feed failed", "error", err)
		d.StockErr = feedError(err, "ALPHAVANTAGE_API_KEY")
	}
	d.Prices = prices
	if len(prices) > 0 {
		d.Latest = &prices[len(prices)-1]
		d.Chart = sparkline(prices, chartWidth, chartHeight)
	}
	return d
}

func (s *Server) dashboardParams(c *gin.Context) (string, string) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		query = s.cfg.Feeds.Query
	}
	if query == "" {
		query = defaultQuery
	}
	ticker := strings.TrimSpace(c.Query("ticker"))
	if ticker == "" {
		ticker = s.cfg.Feeds.Ticker
	}
	if ticker == "" {
		ticker = defaultTicker
	}
	return query, ticker
}

func (s *Server) handleDashboard(c *gin.Context) {
	query, ticker := s.dashboardParams(c)
	d := s.loadDashboard(c.Request.Context(), query, ticker)

	data := gin.H{"D": d, "Width": chartWidth, "Height": chartHeight}
	if c.Query("brief") != "" {
		brief := s.generate(c, "dashboard", prompt.VariantMarketBrief, promptForm{
			Subject: d.Ticker,
			Detail:  marketDigest(d),
		})
		data["Brief"] = brief.Output
		data["Error"] = brief.Error
	}
	s.render(c, http.StatusOK, "dashboard.html", "Dashboard", data)
}

// marketDigest summarises the dashboard for the market brief prompt.
func marketDigest(d dashboard) string {
	var sb strings.Builder
	if d.Latest != nil {
		first := d.Prices[0]
		fmt.Fprintf(&sb, "%s closed at %.2f on %s (from %.2f on %s).\n",
			d.Ticker, d.Latest.Close, d.Latest.Time.Format(time.DateOnly),
			first.Close, first.Time.Format(time.DateOnly))
	}
	for i, a := range d.Articles {
		if i == 5 {
			break
		}
		fmt.Fprintf(&sb, "- %s (%s)\n", a.Title, a.Source)
	}
	return strings.TrimSpace(sb.String())
}

func (s *Server) handleMatches(c *gin.Context) {
	competition := strings.TrimSpace(c.Query("competition"))
	if competition == "" {
		competition = s.cfg.Feeds.Competition
	}

	data := gin.H{"Competition": competition, "Empty": feeds.NoMatches}
	matches, err := s.feeds.Football.Today(c.Request.Context(), competition)
	if err != nil {
		s.logger.Warn("football feed failed", "error", err)
		data["Error"] = feedError(err, "FOOTBALL_DATA_API_KEY")
	}
	data["Matches"] = matches
	s.render(c, http.StatusOK, "matches.html", "Matches", data)
}
