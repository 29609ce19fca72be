package driver

import (
	"log/slog"

	"github.com/virtualtd/league-engine/internal/clock"
	"github.com/virtualtd/league-engine/internal/domain/league"
	"github.com/virtualtd/league-engine/internal/domain/players"
	"github.com/virtualtd/league-engine/internal/market"
	"github.com/virtualtd/league-engine/internal/season"
)

// loggedDecisions decorates a Decisions policy with per-call volume logging,
// so a run's log shows what the policy fed into each stage.
type loggedDecisions struct {
	inner  Decisions
	logger *slog.Logger
}

// LogDecisions wraps a policy so every decision batch is logged. A nil
// logger returns the policy unwrapped.
func LogDecisions(inner Decisions, logger *slog.Logger) Decisions {
	if logger == nil {
		return inner
	}
	return &loggedDecisions{inner: inner, logger: logger}
}

func (d *loggedDecisions) MinutesAllocation(seasonN int, half clock.Half, l *league.League) season.Allocations {
	alloc := d.inner.MinutesAllocation(seasonN, half, l)
	d.logger.Debug("minutes decided", "season", seasonN, "half", half.String(), "teams", len(alloc))
	return alloc
}

func (d *loggedDecisions) Listings(seasonN int, window clock.Window, l *league.League, pool *market.Pool) []market.Listing {
	listings := d.inner.Listings(seasonN, window, l, pool)
	d.logger.Debug("listings decided", "season", seasonN, "window", window.String(), "listings", len(listings))
	return listings
}

func (d *loggedDecisions) Bids(seasonN int, window clock.Window, l *league.League, pool *market.Pool, listings []market.Listing) []market.Offer {
	offers := d.inner.Bids(seasonN, window, l, pool, listings)
	d.logger.Debug("bids decided", "season", seasonN, "window", window.String(), "offers", len(offers))
	return offers
}

func (d *loggedDecisions) ContractExtensions(seasonN int, window clock.Window, l *league.League) map[string]players.Contract {
	ext := d.inner.ContractExtensions(seasonN, window, l)
	if len(ext) > 0 {
		d.logger.Debug("extensions decided", "season", seasonN, "window", window.String(), "extensions", len(ext))
	}
	return ext
}
