// Package output renders command results as text, JSON or aligned tables.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/bimmerbailey/surprise/internal/feeds"
	"github.com/bimmerbailey/surprise/internal/logtail"
)

// Format represents an output format type.
type Format string

const (
	FormatText  Format = "text"
	FormatJSON  Format = "json"
	FormatTable Format = "table"
)

// ParseFormat converts a string to a Format, defaulting to text.
func ParseFormat(s string) Format {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON
	case "table":
		return FormatTable
	default:
		return FormatText
	}
}

// Writer handles writing formatted output.
type Writer struct {
	w      io.Writer
	format Format
}

// New creates a new output Writer.
func New(w io.Writer, format Format) *Writer {
	return &Writer{w: w, format: format}
}

// Format returns the configured format.
func (wr *Writer) Format() Format { return wr.format }

// WriteJSON outputs any value as indented JSON.
func (wr *Writer) WriteJSON(v any) error {
	enc := json.NewEncoder(wr.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteText outputs a block of generated text. In JSON mode it is wrapped
// as {"text": ...}.
func (wr *Writer) WriteText(text string) error {
	if wr.format == FormatJSON {
		return wr.WriteJSON(struct {
			Text string `json:"text"`
		}{text})
	}
	_, err := fmt.Fprintln(wr.w, strings.TrimRight(text, "\n"))
	return err
}

// WriteArticles outputs news headlines.
func (wr *Writer) WriteArticles(articles []feeds.Article) error {
	switch wr.format {
	case FormatJSON:
		return wr.WriteJSON(nonNil(articles))
	case FormatTable:
		tw := newTable(wr.w, "PUBLISHED", "SOURCE", "TITLE")
		for _, a := range articles {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", stamp(a.PublishedAt.IsZero(), a.PublishedAt.Format("2006-01-02 15:04")), a.Source, truncate(a.Title, 80))
		}
		return tw.Flush()
	default:
		if len(articles) == 0 {
			_, err := fmt.Fprintln(wr.w, "No articles found.")
			return err
		}
		for _, a := range articles {
			fmt.Fprintf(wr.w, "- %s (%s)\n  %s\n", a.Title, a.Source, a.URL)
		}
		return nil
	}
}

// WritePrices outputs a daily price series.
func (wr *Writer) WritePrices(ticker string, points []feeds.PricePoint) error {
	switch wr.format {
	case FormatJSON:
		return wr.WriteJSON(struct {
			Ticker string             `json:"ticker"`
			Points []feeds.PricePoint `json:"points"`
		}{ticker, nonNil(points)})
	case FormatTable:
		tw := newTable(wr.w, "DATE", "OPEN", "HIGH", "LOW", "CLOSE", "VOLUME")
		for _, p := range points {
			fmt.Fprintf(tw, "%s\t%.2f\t%.2f\t%.2f\t%.2f\t%d\n",
				p.Time.Format("2006-01-02"), p.Open, p.High, p.Low, p.Close, p.Volume)
		}
		return tw.Flush()
	default:
		if len(points) == 0 {
			_, err := fmt.Fprintf(wr.w, "No prices for %s.\n", ticker)
			return err
		}
		first, last := points[0], points[len(points)-1]
		change := 0.0
		if first.Close != 0 {
			change = (last.Close - first.Close) / first.Close * 100
		}
		_, err := fmt.Fprintf(wr.w, "%s %.2f (%+.2f%% since %s, %d days)\n",
			ticker, last.Close, change, first.Time.Format("2006-01-02"), len(points))
		return err
	}
}

// WriteMatches outputs today's fixtures.
func (wr *Writer) WriteMatches(matches []feeds.Match) error {
	switch wr.format {
	case FormatJSON:
		return wr.WriteJSON(nonNil(matches))
	case FormatTable:
		tw := newTable(wr.w, "KICKOFF", "HOME", "SCORE", "AWAY", "STATUS")
		for _, m := range matches {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", m.Kickoff(nil), m.Home.Display(), m.Score(), m.Away.Display(), m.Status)
		}
		return tw.Flush()
	default:
		if len(matches) == 0 {
			_, err := fmt.Fprintln(wr.w, feeds.NoMatches)
			return err
		}
		for _, m := range matches {
			fmt.Fprintf(wr.w, "%s %s %s  [%s • %s]\n",
				m.Home.Display(), m.Score(), m.Away.Display(), m.Status, m.Kickoff(nil))
		}
		return nil
	}
}

// WriteLines outputs tailed log lines.
func (wr *Writer) WriteLines(lines []logtail.Line) error {
	switch wr.format {
	case FormatJSON:
		return wr.WriteJSON(nonNil(lines))
	case FormatTable:
		tw := newTable(wr.w, "LINE", "LEVEL", "MESSAGE")
		for _, l := range lines {
			fmt.Fprintf(tw, "%d\t%s\t%s\n", l.Number, l.Level, truncate(l.Text, 80))
		}
		return tw.Flush()
	default:
		for _, l := range lines {
			fmt.Fprintln(wr.w, l.Text)
		}
		return nil
	}
}

func newTable(w io.Writer, headers ...string) *tabwriter.Writer {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	rule := make([]string, len(headers))
	for i, h := range headers {
		rule[i] = strings.Repeat("-", len(h))
	}
	fmt.Fprintln(tw, strings.Join(headers, "\t"))
	fmt.Fprintln(tw, strings.Join(rule, "\t"))
	return tw
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n-3] + "..."
	}
	return s
}

func stamp(zero bool, s string) string {
	if zero {
		return "-"
	}
	return s
}

// nonNil keeps empty results encoding as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
