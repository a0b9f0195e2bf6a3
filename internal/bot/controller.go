// Package bot turns chat messages into ledger operations and replies.
package bot

import (
	"context"
	"errors"
	"time"
	"unicode/utf8"

	"ledgerbot/internal/core"
	"ledgerbot/internal/log"

	"github.com/agnivade/levenshtein"
)

// Ledger is the persistence the controller appends to and summarizes from.
type Ledger interface {
	Append(ctx context.Context, rec core.PricedRecord) error
	Summarize(ctx context.Context, q core.SummaryQuery) (core.Summary, error)
}

// Controller holds no per-conversation state; every call is independent.
// All methods return a reply and never an error.
type Controller struct {
	ledger  Ledger
	catalog *core.Catalog
	now     func() time.Time
	loc     *time.Location
	logger  *log.Logger
}

type Option func(*Controller)

func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithLocation sets the zone whose calendar day stamps new records.
func WithLocation(loc *time.Location) Option {
	return func(c *Controller) { c.loc = loc }
}

func WithLogger(logger *log.Logger) Option {
	return func(c *Controller) { c.logger = logger }
}

func NewController(ledger Ledger, catalog *core.Catalog, opts ...Option) *Controller {
	c := &Controller{
		ledger:  ledger,
		catalog: catalog,
		now:     time.Now,
		loc:     time.UTC,
	}
	for _, o := range opts {
		o(c)
	}
	if c.logger == nil {
		c.logger = log.Default().WithComponent(log.ComponentBot)
	}
	return c
}

func (c *Controller) Start() string { return msgGreeting + "\n" + msgUsage }

func (c *Controller) Help() string { return helpText(c.catalog) }

func (c *Controller) Prices() string { return pricesText(c.catalog) }

// Today is the current calendar day in the controller's zone.
func (c *Controller) Today() core.Date {
	return core.DateOf(c.now().In(c.loc))
}

// HandleText records "<quantity> <action>" sent by sender.
func (c *Controller) HandleText(ctx context.Context, sender, text string) string {
	parsed, err := core.ParseAction(text)
	if err != nil {
		var pf *core.ParseFailure
		if errors.As(err, &pf) {
			c.logger.InfoContext(ctx, "Rejected message", log.FieldOperation, log.OpParse, log.FieldUser, sender, log.FieldReason, string(pf.Reason))
			return parseFailureText(pf)
		}
		return msgNotTwoTokens + "\n" + msgUsage
	}

	line, err := core.Price(parsed, c.catalog)
	if err != nil {
		var pf *core.PriceFailure
		if errors.As(err, &pf) && pf.Reason == core.TotalOverflow {
			return msgOverflow
		}
		suggestion := c.suggest(parsed.ActionName)
		c.logger.InfoContext(ctx, "Unknown action", log.FieldOperation, log.OpPrice, log.FieldUser, sender, log.FieldAction, parsed.ActionName)
		return unknownActionText(parsed.ActionName, suggestion, c.catalog)
	}

	rec := core.PricedRecord{
		Date:       c.Today(),
		User:       sender,
		ActionName: parsed.ActionName,
		Quantity:   parsed.Quantity,
		UnitPrice:  line.UnitPrice,
		Total:      line.Total,
	}
	if err := c.ledger.Append(ctx, rec); err != nil {
		c.logger.DebugContext(ctx, "Append rejected", log.FieldOperation, log.OpAppend, log.FieldUser, sender, log.FieldError, err)
		return msgAppendFailed
	}
	return confirmationText(rec)
}

// HandleSummary answers a summary request. With allUsers false only the
// sender's records count; arg is the optional period keyword.
func (c *Controller) HandleSummary(ctx context.Context, sender, arg string, allUsers bool) string {
	period, err := core.ParsePeriod(arg)
	if err != nil {
		return msgSummaryUsage
	}

	q := core.SummaryQuery{WindowStart: period.WindowStart(c.Today())}
	if !allUsers {
		q.User = sender
	}

	s, err := c.ledger.Summarize(ctx, q)
	if err != nil {
		c.logger.ErrorContext(ctx, "Summary read failed", log.FieldOperation, log.OpSummarize, log.FieldError, err)
		return msgReadFailed
	}
	return summaryText(s, period, q.User)
}

// suggest returns the catalog name closest to name when it is a likely typo.
// It is only a hint in the reply and is never applied.
func (c *Controller) suggest(name string) string {
	best, bestDist := "", -1
	for _, candidate := range c.catalog.Names() {
		d := levenshtein.ComputeDistance(name, candidate)
		if bestDist < 0 || d < bestDist {
			best, bestDist = candidate, d
		}
	}
	limit := utf8.RuneCountInString(name) / 3
	if limit < 1 {
		limit = 1
	}
	if bestDist < 0 || bestDist > limit {
		return ""
	}
	return best
}
