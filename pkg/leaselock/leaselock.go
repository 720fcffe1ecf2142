// Package leaselock implements expiring job leases on top of a PostgreSQL
// table. A lease has one holder at a time and is renewed in the background
// until it is released or the holder stops renewing it.
package leaselock

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/eldarhac/GraphMind/pkg/logger"
)

var (
	ErrBusy = errors.New("lease is held by another worker")
	ErrLost = errors.New("lease was lost")
)

type dbConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Locker struct {
	db    dbConn
	owner string

	ttl        time.Duration
	renewEvery time.Duration
	wait       time.Duration
	poll       time.Duration
}

type Option func(*Locker)

// WithTTL sets how long a lease survives without renewal.
func WithTTL(ttl time.Duration) Option {
	return func(l *Locker) {
		if ttl > 0 {
			l.ttl = ttl
		}
	}
}

// WithWait makes Do wait up to d for a busy lease instead of failing with
// ErrBusy right away.
func WithWait(d time.Duration) Option {
	return func(l *Locker) {
		if d > 0 {
			l.wait = d
		}
	}
}

// New creates a Locker. owner prefixes the holder token so the table shows
// which process holds a lease.
func New(db dbConn, owner string, opts ...Option) *Locker {
	l := &Locker{
		db:    db,
		owner: owner,
		ttl:   5 * time.Minute,
		poll:  250 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.renewEvery = max(l.ttl/2, time.Second)
	if l.renewEvery >= l.ttl {
		l.renewEvery = l.ttl / 2
	}
	return l
}

// Do runs fn while holding the lease for key. The context passed to fn is
// cancelled with ErrLost if the lease cannot be renewed.
func (l *Locker) Do(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	if key == "" {
		return errors.New("lease key is empty")
	}
	token := l.owner + ":" + gonanoid.Must()

	if err := l.acquire(ctx, key, token); err != nil {
		return err
	}

	leaseCtx, cancel := context.WithCancelCause(ctx)
	done := make(chan struct{})
	go l.keepAlive(leaseCtx, cancel, key, token, done)

	err := fn(leaseCtx)

	close(done)
	cancel(context.Canceled)
	if _, relErr := l.db.Exec(context.WithoutCancel(ctx), releaseSQL, key, token); relErr != nil {
		logger.Warn("[Lease] Failed to release lease", "key", key, "err", relErr)
	}
	if err == nil && errors.Is(context.Cause(leaseCtx), ErrLost) {
		return fmt.Errorf("%s: %w", key, ErrLost)
	}
	return err
}

func (l *Locker) acquire(ctx context.Context, key, token string) error {
	deadline := time.Now().Add(l.wait)
	for {
		var got string
		err := l.db.QueryRow(ctx, acquireSQL, key, token, l.ttl.Milliseconds()).Scan(&got)
		switch {
		case err == nil:
			logger.Debug("[Lease] Acquired", "key", key)
			return nil
		case !errors.Is(err, pgx.ErrNoRows):
			return fmt.Errorf("failed to acquire lease %s: %w", key, err)
		}

		if l.wait <= 0 || time.Now().After(deadline) {
			return fmt.Errorf("%s: %w", key, ErrBusy)
		}
		if err := sleep(ctx, l.poll+time.Duration(rand.Int64N(int64(l.poll)+1))); err != nil {
			return err
		}
	}
}

func (l *Locker) keepAlive(ctx context.Context, cancel context.CancelCauseFunc, key, token string, done <-chan struct{}) {
	t := time.NewTicker(l.renewEvery)
	defer t.Stop()

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-t.C:
			var got string
			err := l.db.QueryRow(ctx, renewSQL, key, token, l.ttl.Milliseconds()).Scan(&got)
			if errors.Is(err, pgx.ErrNoRows) {
				logger.Warn("[Lease] Lost lease", "key", key)
				cancel(ErrLost)
				return
			}
			if err != nil {
				// A failed renewal is retried on the next tick; the lease
				// only expires after a full TTL.
				logger.Warn("[Lease] Failed to renew lease", "key", key, "err", err)
			}
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

const acquireSQL = `
INSERT INTO job_leases (lease_key, holder, expires_at)
VALUES ($1, $2, now() + ($3::bigint * interval '1 millisecond'))
ON CONFLICT (lease_key) DO UPDATE
SET holder = EXCLUDED.holder,
    expires_at = EXCLUDED.expires_at
WHERE job_leases.expires_at < now()
RETURNING lease_key`

const renewSQL = `
UPDATE job_leases
SET expires_at = now() + ($3::bigint * interval '1 millisecond')
WHERE lease_key = $1 AND holder = $2
RETURNING lease_key`

const releaseSQL = `DELETE FROM job_leases WHERE lease_key = $1 AND holder = $2`
