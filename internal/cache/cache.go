// Package cache owns the client-side invoice state: the cached list, the
// current-invoice slot, derived views, and the reconciliation of feedback
// echoes. It is the only component that mutates invoice copies; everything
// else reads derived snapshots.
package cache

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"go.uber.org/zap"

	facturio "github.com/facturio/facturio-go"
)

// Gateway is the slice of the API client the cache depends on.
type Gateway interface {
	Upload(ctx context.Context, fileName string, r io.Reader) (*facturio.UploadAck, error)
	ListInvoices(ctx context.Context, opts *facturio.ListOptions) (*facturio.InvoiceList, error)
	GetInvoice(ctx context.Context, id string) (*facturio.Invoice, error)
	GetDownloadURL(ctx context.Context, id string) (*facturio.DownloadURL, error)
	SubmitFeedback(ctx context.Context, id, fieldName, vote string) (*facturio.Invoice, error)
	GetStatistics(ctx context.Context) (*facturio.Statistics, error)
}

// Cache holds the invoices for one session. It is constructed explicitly and
// passed to whoever needs it; there is no package-level instance.
//
// A mutex guards the state, but network calls run outside it, so in-flight
// requests may overlap. When two list fetches race, whichever response locks
// last wins the list slot, which may not be the request issued last.
type Cache struct {
	gw  Gateway
	log *zap.Logger

	mu      sync.Mutex
	list    []facturio.Invoice
	total   int
	current *facturio.Invoice
	stats   *facturio.Statistics
	pending int
	lastErr string
}

// New creates a Cache backed by gw. A nil logger disables logging.
func New(gw Gateway, log *zap.Logger) *Cache {
	if log == nil {
		log = zap.NewNop()
	}
	return &Cache{gw: gw, log: log}
}

// FetchList replaces the cached list and total with the server's response.
// A failed fetch leaves the previous list untouched, records the error, and
// returns it.
func (c *Cache) FetchList(ctx context.Context, opts *facturio.ListOptions) error {
	c.begin()
	defer c.end()

	res, err := c.gw.ListInvoices(ctx, opts)
	if err != nil {
		return c.fail("load invoices", err)
	}

	c.mu.Lock()
	c.list = res.Invoices
	c.total = res.Total
	c.mu.Unlock()

	c.log.Debug("invoice list refreshed",
		zap.Int("count", len(res.Invoices)),
		zap.Int("total", res.Total))
	return nil
}

// Upload sends a file to the platform and, once the upload is acknowledged,
// refreshes the list with default ordering. The ack is returned as soon as
// the upload itself succeeded, even if the follow-up refresh fails; in that
// case the refresh error is returned alongside it.
func (c *Cache) Upload(ctx context.Context, fileName string, r io.Reader) (*facturio.UploadAck, error) {
	c.begin()
	defer c.end()

	ack, err := c.gw.Upload(ctx, fileName, r)
	if err != nil {
		return nil, c.fail("upload invoice", err)
	}

	c.log.Info("invoice uploaded",
		zap.String("invoiceId", ack.InvoiceID),
		zap.String("fileName", ack.FileName),
		zap.String("status", ack.Status))

	if err := c.FetchList(ctx, nil); err != nil {
		return ack, err
	}
	return ack, nil
}

// FetchDetail loads one invoice and replaces the current-invoice slot
// wholesale with the response.
func (c *Cache) FetchDetail(ctx context.Context, id string) (*facturio.Invoice, error) {
	c.begin()
	defer c.end()

	inv, err := c.gw.GetInvoice(ctx, id)
	if err != nil {
		return nil, c.fail("load invoice", err)
	}

	c.mu.Lock()
	c.current = inv
	c.mu.Unlock()

	return cloneInvoice(inv), nil
}

// DownloadURL fetches a signed URL for the stored PDF. Pure pass-through; no
// cache state changes on success.
func (c *Cache) DownloadURL(ctx context.Context, id string) (*facturio.DownloadURL, error) {
	c.begin()
	defer c.end()

	u, err := c.gw.GetDownloadURL(ctx, id)
	if err != nil {
		return nil, c.fail("get download URL", err)
	}
	return u, nil
}

// SubmitFeedback sends a vote for one extracted field and merges the server's
// echoed invoice into every slot that holds the id. Precondition failures are
// logged and returned without touching the error slot or the network.
func (c *Cache) SubmitFeedback(ctx context.Context, id, fieldName, vote string) (*facturio.Invoice, error) {
	if err := c.checkFeedback(id, fieldName, vote); err != nil {
		c.log.Warn("feedback rejected locally",
			zap.String("invoiceId", id),
			zap.String("field", fieldName),
			zap.String("vote", vote),
			zap.Error(err))
		return nil, err
	}

	c.begin()
	defer c.end()

	echo, err := c.gw.SubmitFeedback(ctx, id, fieldName, vote)
	if err != nil {
		return nil, c.fail("submit feedback", err)
	}
	if echo == nil || echo.ID != id {
		err := &facturio.Error{
			Kind:    facturio.KindProtocol,
			Op:      "SubmitFeedback",
			Message: fmt.Sprintf("feedback response does not match invoice %q", id),
		}
		return nil, c.fail("submit feedback", err)
	}

	c.mu.Lock()
	c.list, c.current = reconcile(c.list, c.current, *echo)
	c.mu.Unlock()

	c.log.Debug("feedback reconciled",
		zap.String("invoiceId", id),
		zap.String("field", fieldName),
		zap.String("vote", vote))
	return cloneInvoice(echo), nil
}

// checkFeedback validates the vote locally before any network traffic. The
// field check only applies when a cached copy is available to check against;
// an invoice held in neither slot is left to the server to validate.
func (c *Cache) checkFeedback(id, fieldName, vote string) error {
	if id == "" || fieldName == "" {
		return &facturio.Error{
			Kind:    facturio.KindValidation,
			Message: "an invoice id and field name are required",
		}
	}
	if !facturio.ValidVote(vote) {
		return &facturio.Error{
			Kind:    facturio.KindValidation,
			Message: fmt.Sprintf("unknown vote %q", vote),
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	local := c.lookupLocked(id)
	if local != nil && vote != facturio.VoteRemove && !local.HasExtractedField(fieldName) {
		return &facturio.Error{
			Kind:    facturio.KindValidation,
			Message: fmt.Sprintf("invoice %s has no extracted field %q", id, fieldName),
		}
	}
	return nil
}

// RefreshStatistics replaces the platform statistics snapshot with a fresh
// one. The snapshot swaps atomically; a failed fetch keeps the old one.
func (c *Cache) RefreshStatistics(ctx context.Context) error {
	c.begin()
	defer c.end()

	stats, err := c.gw.GetStatistics(ctx)
	if err != nil {
		return c.fail("load statistics", err)
	}

	c.mu.Lock()
	c.stats = stats
	c.mu.Unlock()
	return nil
}

// ClearError resets the error slot. Local only.
func (c *Cache) ClearError() {
	c.mu.Lock()
	c.lastErr = ""
	c.mu.Unlock()
}

// ClearCurrent discards the current-invoice slot. Local only.
func (c *Cache) ClearCurrent() {
	c.mu.Lock()
	c.current = nil
	c.mu.Unlock()
}

// Invoices returns a copy of the cached list in server order.
func (c *Cache) Invoices() []facturio.Invoice {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneList(c.list)
}

// SortedList returns the cached list ordered by upload time, newest first.
// This client-side view is layered on whatever order the server returned.
func (c *Cache) SortedList() []facturio.Invoice {
	c.mu.Lock()
	out := cloneList(c.list)
	c.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UploadedAt.After(out[j].UploadedAt)
	})
	return out
}

// CountByStatus counts cached-list entries with the given status. This is a
// session-local number derived from whatever happens to be cached; it is not
// the platform-wide figure from Statistics.
func (c *Cache) CountByStatus(status string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for i := range c.list {
		if c.list[i].Status == status {
			n++
		}
	}
	return n
}

// StatusCounts tallies the cached list by status.
func (c *Cache) StatusCounts() map[string]int {
	c.mu.Lock()
	defer c.mu.Unlock()

	counts := make(map[string]int, 3)
	for i := range c.list {
		counts[c.list[i].Status]++
	}
	return counts
}

// Total returns the server-reported total from the last successful list
// fetch, which may exceed the number of cached entries when paginating.
func (c *Cache) Total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total
}

// Current returns a copy of the current-invoice slot, or nil when empty.
func (c *Cache) Current() *facturio.Invoice {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneInvoice(c.current)
}

// Statistics returns the last platform snapshot, or nil before the first
// successful RefreshStatistics.
func (c *Cache) Statistics() *facturio.Statistics {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stats == nil {
		return nil
	}
	out := *c.stats
	return &out
}

// Loading reports whether any operation is in flight.
func (c *Cache) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending > 0
}

// LastError returns the recorded message from the most recent failure, or ""
// when the last operation succeeded or the slot was cleared.
func (c *Cache) LastError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// begin marks an operation in flight and resets the error slot, mirroring a
// UI that clears its banner when the user retries.
func (c *Cache) begin() {
	c.mu.Lock()
	c.pending++
	c.lastErr = ""
	c.mu.Unlock()
}

func (c *Cache) end() {
	c.mu.Lock()
	c.pending--
	c.mu.Unlock()
}

// fail records a human-readable message, logs the failure, and hands the
// error back for the caller to react to. Errors are never swallowed here.
func (c *Cache) fail(action string, err error) error {
	msg := fmt.Sprintf("failed to %s: %v", action, err)

	c.mu.Lock()
	c.lastErr = msg
	c.mu.Unlock()

	c.log.Error(msg, zap.Error(err))
	return err
}

// lookupLocked finds a cached copy of id, preferring the current slot.
// Callers must hold c.mu.
func (c *Cache) lookupLocked(id string) *facturio.Invoice {
	if c.current != nil && c.current.ID == id {
		return c.current
	}
	for i := range c.list {
		if c.list[i].ID == id {
			return &c.list[i]
		}
	}
	return nil
}
