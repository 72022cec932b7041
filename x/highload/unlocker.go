package highload

import (
	"context"
	"time"

	"github.com/iov-one/hlwallet"
	"github.com/iov-one/hlwallet/errors"
	"github.com/tendermint/tendermint/libs/log"
)

const (
	// DefaultUnlockInterval is how often the unlocker asks for a cleanup.
	DefaultUnlockInterval = 10 * time.Second
	// DefaultUnlockLimit is the cleanup limit used by the unlocker.
	DefaultUnlockLimit = 150
)

// CleanupSender delivers a cleanup request to a wallet and returns its
// acknowledgment.
type CleanupSender interface {
	SendCleanup(ctx context.Context, msg CleanupQueueMsg) (*ExcessesMsg, error)
}

// Unlocker keeps a wallet ledger small by periodically requesting a cleanup.
// Delivery is best effort. A failed request is logged and the next one is
// sent after the usual interval.
type Unlocker struct {
	sender   CleanupSender
	interval time.Duration
	limit    uint32
	logger   log.Logger
}

// NewUnlocker returns an unlocker using given sender. Zero interval and
// limit are replaced with defaults.
func NewUnlocker(sender CleanupSender, interval time.Duration, limit uint32, logger log.Logger) *Unlocker {
	if interval <= 0 {
		interval = DefaultUnlockInterval
	}
	if limit == 0 {
		limit = DefaultUnlockLimit
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Unlocker{
		sender:   sender,
		interval: interval,
		limit:    limit,
		logger:   logger.With("module", "unlocker"),
	}
}

// Run sends cleanup requests until given context is cancelled. The first
// request is sent immediately. It always returns the context error.
func (u *Unlocker) Run(ctx context.Context) error {
	ticker := time.NewTicker(u.interval)
	defer ticker.Stop()

	var correlation uint64
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		correlation++
		u.unlock(ctx, correlation)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (u *Unlocker) unlock(ctx context.Context, correlation uint64) {
	msg := CleanupQueueMsg{Limit: u.limit, CorrelationID: correlation}
	ack, err := u.sender.SendCleanup(ctx, msg)
	switch {
	case err != nil:
		u.logger.Error("cleanup request failed", "correlation", correlation, "err", err)
	case ack.CorrelationID != correlation:
		u.logger.Error("unexpected acknowledgment", "want", correlation, "got", ack.CorrelationID)
	default:
		u.logger.Info("unlocking wallet", "correlation", correlation, "limit", u.limit)
	}
}

// LocalCleanupSender delivers cleanup requests to a wallet kept in a local
// store. Every successful request is committed.
type LocalCleanupSender struct {
	Wallet *Wallet
	Store  hlwallet.CommitKVStore
	// Clock returns the current time, time.Now when nil.
	Clock  func() time.Time
	Logger log.Logger
}

var _ CleanupSender = (*LocalCleanupSender)(nil)

// SendCleanup implements CleanupSender.
func (s *LocalCleanupSender) SendCleanup(ctx context.Context, msg CleanupQueueMsg) (*ExcessesMsg, error) {
	body, err := msg.Marshal()
	if err != nil {
		return nil, err
	}
	now := time.Now
	if s.Clock != nil {
		now = s.Clock
	}
	ctx = hlwallet.WithBlockTime(ctx, now())
	if s.Logger != nil {
		ctx = hlwallet.WithLogger(ctx, s.Logger)
	}

	cache := s.Store.CacheWrap()
	res, err := s.Wallet.HandleInternal(ctx, cache, body)
	if err != nil {
		cache.Discard()
		return nil, err
	}
	if err := cache.Write(); err != nil {
		return nil, errors.Wrap(err, "cannot write cache")
	}
	if _, err := s.Store.Commit(); err != nil {
		return nil, errors.Wrap(err, "commit")
	}

	var ack ExcessesMsg
	if err := ack.Unmarshal(res.Reply); err != nil {
		return nil, errors.Wrap(err, "acknowledgment")
	}
	return &ack, nil
}
