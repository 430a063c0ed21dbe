package feeds

import (
	"github.com/bimmerbailey/surprise/internal/config"
)

// Clients bundles the three feeds built from one configuration.
type Clients struct {
	News     *NewsClient
	Stocks   *StockClient
	Football *FootballClient
}

// FromConfig builds every client from cfg. Clients without a key are still
// returned; their calls fail with ErrMissingCredentials.
func FromConfig(cfg config.FeedsConfig, opts ...Option) *Clients {
	with := func(base string) []Option {
		all := []Option{WithTimeout(cfg.Timeout)}
		all = append(all, opts...)
		return append(all, WithBaseURL(base))
	}
	return &Clients{
		News:     NewNewsClient(cfg.NewsAPIKey, with(cfg.NewsBaseURL)...),
		Stocks:   NewStockClient(cfg.StockAPIKey, with(cfg.StockBaseURL)...),
		Football: NewFootballClient(cfg.FootballAPIKey, with(cfg.FootballURL)...),
	}
}
