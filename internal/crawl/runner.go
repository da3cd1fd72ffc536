package crawl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"replayvault/internal/fetch"
	"replayvault/internal/logging"
)

// Fetcher retrieves one replay by ID.
type Fetcher interface {
	Fetch(ctx context.Context, replayID int64) (fetch.Result, error)
}

// ContentPlacer promotes a fetched temp file into the content store.
type ContentPlacer interface {
	Place(tempPath, sha256hex, ext string) (string, error)
}

// StateStore is the subset of the replay store the driver needs.
type StateStore interface {
	MaxReplayID(ctx context.Context) (int64, bool, error)
	UpsertResolved(ctx context.Context, replayID int64, sha256hex string, size int64) error
	MarkAbsent(ctx context.Context, replayID int64) error
}

// Summary reports what one crawl run did.
type Summary struct {
	Start     int64
	End       int64
	Fetched   int64
	Absent    int64
	Failed    int64
	Cancelled bool
}

// Attempted returns the number of IDs the run processed.
func (s Summary) Attempted() int64 {
	return s.Fetched + s.Absent + s.Failed
}

// Runner drives the sequential crawl across a contiguous ID range.
type Runner struct {
	store          StateStore
	fetcher        Fetcher
	content        ContentPlacer
	logger         *slog.Logger
	notFoundStatus int
	onProgress     func(replayID int64)
}

// Option configures optional Runner behavior.
type Option func(*Runner)

// WithProgress registers a callback invoked after each processed ID.
func WithProgress(fn func(replayID int64)) Option {
	return func(r *Runner) {
		r.onProgress = fn
	}
}

// New constructs a crawl runner. notFoundStatus is the HTTP status the
// source uses to signal a nonexistent ID; any other non-200 outcome is
// treated as transient and recorded nowhere.
func New(store StateStore, fetcher Fetcher, content ContentPlacer, notFoundStatus int, logger *slog.Logger, opts ...Option) (*Runner, error) {
	if store == nil || fetcher == nil || content == nil {
		return nil, errors.New("crawl runner requires store, fetcher, and content store")
	}
	runner := &Runner{
		store:          store,
		fetcher:        fetcher,
		content:        content,
		logger:         logging.NewComponentLogger(logger, "crawl"),
		notFoundStatus: notFoundStatus,
	}
	for _, opt := range opts {
		opt(runner)
	}
	return runner, nil
}

// ResumePoint determines where the crawl starts: when the store already holds
// IDs at or beyond the requested start, the run resumes one past the highest
// known ID, making re-invocation strictly additive.
func (r *Runner) ResumePoint(ctx context.Context, requestedStart int64) (int64, error) {
	max, ok, err := r.store.MaxReplayID(ctx)
	if err != nil {
		return 0, fmt.Errorf("determine resume point: %w", err)
	}
	if ok && max >= requestedStart {
		return max + 1, nil
	}
	return requestedStart, nil
}

// Run crawls IDs from start through maxID inclusive, one fetch in flight at
// a time. Cancellation is cooperative: the context is checked at each
// iteration boundary, the in-flight ID finishes its fetch and persist steps,
// and the loop exits cleanly. Both exhaustion and cancellation are
// non-error exits.
func (r *Runner) Run(ctx context.Context, requestedStart, maxID int64) (Summary, error) {
	start, err := r.ResumePoint(ctx, requestedStart)
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{Start: start, End: maxID}
	if start > maxID {
		r.logger.Info("nothing to do",
			logging.Int64("start", start),
			logging.Int64("max_id", maxID))
		return summary, nil
	}

	r.logger.Info("starting crawl",
		logging.Int64("start", start),
		logging.Int64("max_id", maxID),
		logging.Int64("total", maxID-start+1))

	for id := start; id <= maxID; id++ {
		if ctx.Err() != nil {
			r.logger.Info("crawl cancelled", logging.Int64("next_id", id))
			summary.Cancelled = true
			return summary, nil
		}

		r.processOne(ctx, id, &summary)
		if r.onProgress != nil {
			r.onProgress(id)
		}
	}

	r.logger.Info("crawl complete",
		logging.Int64("fetched", summary.Fetched),
		logging.Int64("absent", summary.Absent),
		logging.Int64("failed", summary.Failed))
	return summary, nil
}

func (r *Runner) processOne(ctx context.Context, id int64, summary *Summary) {
	// Cancellation is observed only at the iteration boundary in Run: the
	// in-flight ID must fetch and persist completely or not at all, so the
	// whole attempt is shielded from the caller's cancel. The HTTP client's
	// timeout still bounds the request.
	ctx = context.WithoutCancel(ctx)

	res, err := r.fetcher.Fetch(ctx, id)
	switch {
	case res.OK:
		finalPath, placeErr := r.content.Place(res.TempPath, res.SHA256, res.Extension)
		if placeErr != nil {
			summary.Failed++
			r.logger.Error("store replay failed",
				logging.Int64("replay_id", id),
				logging.Error(placeErr))
			return
		}
		if upsertErr := r.store.UpsertResolved(ctx, id, res.SHA256, res.Size); upsertErr != nil {
			summary.Failed++
			r.logger.Error("record replay failed",
				logging.Int64("replay_id", id),
				logging.Error(upsertErr))
			return
		}
		summary.Fetched++
		r.logger.Info("stored replay",
			logging.Int64("replay_id", id),
			logging.String("sha256", res.SHA256),
			logging.Int64("size", res.Size),
			logging.String("path", finalPath))

	case res.StatusCode == r.notFoundStatus:
		if markErr := r.store.MarkAbsent(ctx, id); markErr != nil {
			summary.Failed++
			r.logger.Error("record absence failed",
				logging.Int64("replay_id", id),
				logging.Error(markErr))
			return
		}
		summary.Absent++
		r.logger.Warn("replay does not exist upstream",
			logging.Int64("replay_id", id),
			logging.Int("status", res.StatusCode))

	default:
		// Transient: nothing is persisted so a later run can retry the ID.
		summary.Failed++
		attrs := []logging.Attr{
			logging.Int64("replay_id", id),
			logging.Int("status", res.StatusCode),
		}
		if err != nil {
			attrs = append(attrs, logging.Error(err))
		}
		r.logger.Warn("download failed", logging.Args(attrs...)...)
	}
}
