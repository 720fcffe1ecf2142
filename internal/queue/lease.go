package queue

import "context"

// Processor handles the body of one queue message.
type Processor interface {
	ProcessMessage(ctx context.Context, body []byte) error
}

// Locker runs fn while holding an exclusive lease for key.
type Locker interface {
	Do(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

// Leased runs Next only while holding the lease for Key, so replicas of
// the worker never run the same kind of job concurrently. A busy lease is
// an ordinary processing error and the message goes to the retry queue.
type Leased struct {
	Locks Locker
	Key   string
	Next  Processor
}

func (l *Leased) ProcessMessage(ctx context.Context, body []byte) error {
	return l.Locks.Do(ctx, l.Key, func(ctx context.Context) error {
		return l.Next.ProcessMessage(ctx, body)
	})
}
