package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"projecthub/internal/amqp"
	"projecthub/internal/log"
	"projecthub/internal/storage"
)

// PendingJournal lists entries the relay has not finished.
type PendingJournal interface {
	ListUnsynced(ctx context.Context, idle time.Duration, maxAttempts, limit int) ([]storage.Entry, error)
	MarkPublished(ctx context.Context, eventID string) error
}

// EntrySyncer writes an entry straight to the ledger.
type EntrySyncer interface {
	SyncEntry(ctx context.Context, e storage.Entry) error
}

// RelayProcessorConfig holds configuration for the relay processor
type RelayProcessorConfig struct {
	// Interval is how often unsynced entries are checked (default: 1m)
	Interval time.Duration

	// BatchSize is the max number of entries per pass (default: 20)
	BatchSize int

	// IdleAfter is how long an entry must sit untouched before it is
	// retried (default: Interval)
	IdleAfter time.Duration

	// MaxAttempts stops retrying entries that failed this many times
	// (default: 10, 0 disables the limit)
	MaxAttempts int
}

func DefaultRelayProcessorConfig() RelayProcessorConfig {
	return RelayProcessorConfig{
		Interval:    time.Minute,
		BatchSize:   20,
		IdleAfter:   time.Minute,
		MaxAttempts: 10,
	}
}

// RelayProcessor periodically re-publishes journal entries that never
// reached the ledger. Without a publisher it syncs them directly.
type RelayProcessor struct {
	journal   PendingJournal
	publisher Publisher
	syncer    EntrySyncer
	config    RelayProcessorConfig
	logger    *log.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewRelayProcessor(journal PendingJournal, publisher Publisher, syncer EntrySyncer, config RelayProcessorConfig, logger *log.Logger) *RelayProcessor {
	if config.Interval <= 0 {
		config.Interval = time.Minute
	}
	if config.BatchSize <= 0 {
		config.BatchSize = 20
	}
	if config.IdleAfter <= 0 {
		config.IdleAfter = config.Interval
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &RelayProcessor{
		journal:   journal,
		publisher: publisher,
		syncer:    syncer,
		config:    config,
		logger:    logger.WithComponent(log.ComponentWorker),
	}
}

// Start begins the processing loop. Returns an error if already running.
func (p *RelayProcessor) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return fmt.Errorf("relay processor is already running")
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})

	go p.runLoop(ctx, p.stopCh, p.doneCh)

	p.logger.InfoContext(ctx, "Relay processor started",
		"interval", p.config.Interval.String(),
		"batch_size", p.config.BatchSize)
	return nil
}

// Stop signals the loop and waits for the current pass to finish.
func (p *RelayProcessor) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	stopCh, doneCh := p.stopCh, p.doneCh
	p.running = false
	p.mu.Unlock()

	close(stopCh)
	select {
	case <-doneCh:
		p.logger.InfoContext(ctx, "Relay processor stopped")
		return nil
	case <-ctx.Done():
		p.logger.WarnContext(ctx, "Relay processor stop timed out")
		return ctx.Err()
	}
}

func (p *RelayProcessor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *RelayProcessor) runLoop(ctx context.Context, stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(p.config.Interval)
	defer ticker.Stop()

	p.runPass(ctx)
	for {
		select {
		case <-stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.runPass(ctx)
		}
	}
}

func (p *RelayProcessor) runPass(ctx context.Context) {
	if _, err := p.ProcessBatch(ctx); err != nil {
		p.logger.ErrorContext(ctx, "Relay pass failed",
			log.FieldOperation, log.OpSync,
			log.FieldErrorType, log.ErrorTypeDatabase,
			log.FieldError, err)
	}
}

// ProcessBatch handles one batch of idle unsynced entries and returns how
// many were relayed.
func (p *RelayProcessor) ProcessBatch(ctx context.Context) (int, error) {
	entries, err := p.journal.ListUnsynced(ctx, p.config.IdleAfter, p.config.MaxAttempts, p.config.BatchSize)
	if err != nil {
		return 0, err
	}
	if len(entries) == 0 {
		return 0, nil
	}

	p.logger.DebugContext(ctx, "Relaying unsynced entries", log.FieldCount, len(entries))

	relayed := 0
	for _, e := range entries {
		if ctx.Err() != nil {
			return relayed, ctx.Err()
		}
		if err := p.relay(ctx, e); err != nil {
			p.logger.WarnContext(ctx, "Failed to relay entry",
				log.FieldEventID, e.EventID,
				log.FieldError, err)
			continue
		}
		relayed++
	}
	return relayed, nil
}

func (p *RelayProcessor) relay(ctx context.Context, e storage.Entry) error {
	if p.publisher == nil {
		if p.syncer == nil {
			return fmt.Errorf("no publisher or ledger configured")
		}
		return p.syncer.SyncEntry(ctx, e)
	}
	msg := amqp.NewRecordCreatedMessage(e.EventID, e.Action, e.EntityID)
	if err := p.publisher.PublishRecordCreated(ctx, msg); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return p.journal.MarkPublished(ctx, e.EventID)
}
