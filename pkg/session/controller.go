// Package session owns the single cached ParameterSet of one wizard session
// and invalidates it when the report definition changes.
package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"time"

	"github.com/dsasoftware/Pentaho-reports-for-OpenERP/pkg/report"
)

// FetchFunc retrieves raw parameter metadata from the reporting server.
type FetchFunc func(ctx context.Context) ([]report.RawParamRecord, error)

// Fingerprint identifies a report definition payload.
func Fingerprint(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// Controller resolves and caches the parameter set of one session. It is not
// safe for concurrent use; Manager serialises access per session.
type Controller struct {
	parser *report.Parser
	cache  Cache
	clock  func() time.Time
	logger *slog.Logger
}

// NewController creates a controller. A nil cache keeps the entry in memory.
func NewController(parser *report.Parser, cache Cache) *Controller {
	if cache == nil {
		cache = &MemoryCache{}
	}
	return &Controller{
		parser: parser,
		cache:  cache,
		clock:  time.Now,
		logger: slog.Default().With("component", "session"),
	}
}

// Parser returns the parser used for resolution.
func (c *Controller) Parser() *report.Parser { return c.parser }

// Resolve returns the cached set when reportID and fingerprint match the last
// resolution. Otherwise it fetches, reparses and replaces the cache. A failed
// fetch never falls back to a stale entry.
func (c *Controller) Resolve(ctx context.Context, reportID, fingerprint string, fetch FetchFunc) (*report.ParameterSet, error) {
	cached, err := c.cache.Get(ctx)
	if err != nil {
		c.logger.WarnContext(ctx, "session cache read failed, resolving afresh", "error", err)
		cached = nil
	}
	if cached.Matches(reportID, fingerprint) {
		c.logger.DebugContext(ctx, "parameter cache hit", "report_id", reportID, "fingerprint", fingerprint)
		return cached, nil
	}

	records, err := fetch(ctx)
	if err != nil {
		c.logger.ErrorContext(ctx, "parameter metadata fetch failed", "report_id", reportID, "error", err)
		if errors.Is(err, report.ErrRemoteService) {
			return nil, err
		}
		return nil, report.RemoteError("fetch parameter info", err)
	}

	params, err := c.parser.Parse(records)
	if err != nil {
		return nil, err
	}

	set := &report.ParameterSet{
		ReportID:    reportID,
		Fingerprint: fingerprint,
		Parameters:  params,
		ResolvedAt:  c.clock().UTC(),
	}
	if err := c.cache.Put(ctx, set); err != nil {
		c.logger.WarnContext(ctx, "session cache write failed", "report_id", reportID, "error", err)
	}
	c.logger.InfoContext(ctx, "parameter set resolved",
		"report_id", reportID,
		"fingerprint", fingerprint,
		"parameters", len(params),
		"replaced", cached != nil,
	)
	return set, nil
}

// Current returns the cached set, if any.
func (c *Controller) Current(ctx context.Context) (*report.ParameterSet, error) {
	return c.cache.Get(ctx)
}

// Invalidate drops the cached set.
func (c *Controller) Invalidate(ctx context.Context) error {
	return c.cache.Clear(ctx)
}
