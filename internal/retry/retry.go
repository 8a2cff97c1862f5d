// Package retry содержит утилиты повторных попыток.
package retry

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// Backoff рассчитывает экспоненциальные задержки: Base, 2*Base, 4*Base ... не больше Cap.
type Backoff struct {
	Base   time.Duration
	Cap    time.Duration
	Jitter bool

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewBackoff создает Backoff с собственным генератором случайных чисел.
func NewBackoff(base, capDur time.Duration, jitter bool) *Backoff {
	if capDur > 0 && base > capDur {
		base = capDur
	}
	return &Backoff{
		Base:   base,
		Cap:    capDur,
		Jitter: jitter,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Delay возвращает задержку перед повтором номер attempt (0-базовый).
// С Jitter задержка выбирается равномерно из [0, delay].
func (b *Backoff) Delay(attempt int) time.Duration {
	if b == nil || b.Base <= 0 || attempt < 0 {
		return 0
	}

	delay := b.Base
	for i := 0; i < attempt; i++ {
		next := delay * 2
		if next <= delay {
			// переполнение
			delay = b.ceiling()
			break
		}
		delay = next
		if b.Cap > 0 && delay >= b.Cap {
			break
		}
	}
	if b.Cap > 0 && delay > b.Cap {
		delay = b.Cap
	}

	if !b.Jitter {
		return delay
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.rnd == nil {
		b.rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return time.Duration(b.rnd.Int63n(int64(delay) + 1))
}

func (b *Backoff) ceiling() time.Duration {
	if b.Cap > 0 {
		return b.Cap
	}
	return time.Duration(1<<63 - 1)
}

// Policy задает правила повторов.
type Policy struct {
	MaxRetries  int
	Backoff     *Backoff
	ShouldRetry func(err error) bool
	// OnRetry вызывается перед ожиданием очередного повтора (attempt 1-базовый).
	OnRetry func(err error, attempt int, wait time.Duration)
}

// Do выполняет op, повторяя её не более MaxRetries раз, пока ShouldRetry разрешает.
func Do(ctx context.Context, policy Policy, op func(ctx context.Context) error) error {
	retries := max(policy.MaxRetries, 0)

	var err error
	for attempt := 0; ; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if err = op(ctx); err == nil {
			return nil
		}
		if attempt >= retries || !policy.retriable(err) {
			return err
		}

		wait := policy.Backoff.Delay(attempt)
		if policy.OnRetry != nil {
			policy.OnRetry(err, attempt+1, wait)
		}
		if wait <= 0 {
			continue
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (p Policy) retriable(err error) bool {
	return p.ShouldRetry == nil || p.ShouldRetry(err)
}
