package enrich

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"replayvault/internal/logging"
	"replayvault/internal/mcpr"
	"replayvault/internal/store"
)

// MetadataStore is the subset of the replay store the pass needs.
type MetadataStore interface {
	StreamRange(ctx context.Context, startID, endID int64, fn func(store.Replay) error) error
	HasMetadata(ctx context.Context, replayID int64) (bool, error)
	UpsertMetadata(ctx context.Context, replayID int64, meta store.Metadata) error
	ReplacePlayers(ctx context.Context, replayID int64, players []string) error
}

// ContentLocator resolves a stored replay file by its hash.
type ContentLocator interface {
	Lookup(sha256hex string) (string, bool)
}

// MetadataExtractor reads metadata out of a replay archive on disk.
type MetadataExtractor interface {
	Extract(ctx context.Context, path string) (*mcpr.Metadata, error)
}

// Summary reports what one metadata pass did.
type Summary struct {
	Scanned   int64
	Extracted int64
	Skipped   int64
	Failed    int64
	Cancelled bool
}

// Pass walks stored replays and backfills metadata extracted from their
// archive files. It is decoupled from downloading so it can be re-run over
// an existing archive after schema or parser changes.
type Pass struct {
	store      MetadataStore
	content    ContentLocator
	extractor  MetadataExtractor
	logger     *slog.Logger
	reextract  bool
	onProgress func(replayID int64)
}

// Option configures optional Pass behavior.
type Option func(*Pass)

// WithReextract makes the pass reprocess replays that already have metadata.
func WithReextract() Option {
	return func(p *Pass) {
		p.reextract = true
	}
}

// WithProgress registers a callback invoked after each scanned replay.
func WithProgress(fn func(replayID int64)) Option {
	return func(p *Pass) {
		p.onProgress = fn
	}
}

// New constructs a metadata pass.
func New(st MetadataStore, content ContentLocator, extractor MetadataExtractor, logger *slog.Logger, opts ...Option) (*Pass, error) {
	if st == nil || content == nil || extractor == nil {
		return nil, errors.New("metadata pass requires store, content store, and extractor")
	}
	pass := &Pass{
		store:     st,
		content:   content,
		extractor: extractor,
		logger:    logging.NewComponentLogger(logger, "enrich"),
	}
	for _, opt := range opts {
		opt(pass)
	}
	return pass, nil
}

// Run scans replay IDs from startID through endID inclusive; endID < 0 means
// everything currently recorded. Per-replay failures are logged and counted,
// never fatal, so one damaged archive cannot stop a backfill. Cancellation is
// cooperative between replays.
func (p *Pass) Run(ctx context.Context, startID, endID int64) (Summary, error) {
	var summary Summary

	err := p.store.StreamRange(ctx, startID, endID, func(replay store.Replay) error {
		if ctx.Err() != nil {
			summary.Cancelled = true
			return context.Canceled
		}
		summary.Scanned++
		p.processOne(ctx, replay, &summary)
		if p.onProgress != nil {
			p.onProgress(replay.ReplayID)
		}
		return nil
	})
	if err != nil && !summary.Cancelled {
		return summary, fmt.Errorf("scan replays: %w", err)
	}

	p.logger.Info("metadata pass complete",
		logging.Int64("scanned", summary.Scanned),
		logging.Int64("extracted", summary.Extracted),
		logging.Int64("skipped", summary.Skipped),
		logging.Int64("failed", summary.Failed),
		logging.Bool("cancelled", summary.Cancelled))
	return summary, nil
}

func (p *Pass) processOne(ctx context.Context, replay store.Replay, summary *Summary) {
	if !replay.Resolved() {
		summary.Skipped++
		return
	}
	if !p.reextract {
		has, err := p.store.HasMetadata(ctx, replay.ReplayID)
		if err != nil {
			summary.Failed++
			p.logger.Error("metadata lookup failed",
				logging.Int64("replay_id", replay.ReplayID),
				logging.Error(err))
			return
		}
		if has {
			summary.Skipped++
			return
		}
	}

	path, ok := p.content.Lookup(replay.SHA256)
	if !ok {
		summary.Failed++
		p.logger.Warn("replay file missing from content store",
			logging.Int64("replay_id", replay.ReplayID),
			logging.String("sha256", replay.SHA256))
		return
	}

	meta, err := p.extractor.Extract(ctx, path)
	if err != nil {
		summary.Failed++
		p.logger.Warn("metadata extraction failed",
			logging.Int64("replay_id", replay.ReplayID),
			logging.String("path", path),
			logging.Error(err))
		return
	}

	record := store.Metadata{
		Singleplayer: meta.Singleplayer,
		ServerName:   meta.ServerName,
		Generator:    meta.Generator,
		MCVersion:    meta.MCVersion,
		DurationMS:   meta.DurationMS,
		RecordedAtMS: meta.RecordedAtMS,
	}
	if err := p.store.UpsertMetadata(ctx, replay.ReplayID, record); err != nil {
		summary.Failed++
		p.logger.Error("record metadata failed",
			logging.Int64("replay_id", replay.ReplayID),
			logging.Error(err))
		return
	}
	if err := p.store.ReplacePlayers(ctx, replay.ReplayID, meta.Players); err != nil {
		summary.Failed++
		p.logger.Error("record players failed",
			logging.Int64("replay_id", replay.ReplayID),
			logging.Error(err))
		return
	}

	summary.Extracted++
	p.logger.Info("metadata extracted",
		logging.Int64("replay_id", replay.ReplayID),
		logging.String("server", record.ServerName),
		logging.Int("players", len(meta.Players)))
}
