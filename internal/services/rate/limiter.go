package rate

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

const (
	interestsMinuteWindow = time.Minute
	messagesMinuteWindow  = time.Minute
	messages10SecWindow   = 10 * time.Second
)

type WindowStore interface {
	IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

// LimitedError carries how long the caller must wait, in whole seconds,
// before the busiest window frees up. Services wrap it under their own
// rate-limit sentinel so handlers can surface a Retry-After header.
type LimitedError struct {
	RetryAfterSec int64
}

func (e *LimitedError) Error() string {
	return fmt.Sprintf("rate limited, retry after %ds", e.RetryAfterSec)
}

type Limiter struct {
	store              WindowStore
	interestsPerMinute int
	messagesPerMinute  int
	messagesPer10Sec   int
}

func NewLimiter(store WindowStore, interestsPerMinute, messagesPerMinute, messagesPer10Sec int) *Limiter {
	if interestsPerMinute < 0 {
		interestsPerMinute = 0
	}
	if messagesPerMinute < 0 {
		messagesPerMinute = 0
	}
	if messagesPer10Sec < 0 {
		messagesPer10Sec = 0
	}

	return &Limiter{
		store:              store,
		interestsPerMinute: interestsPerMinute,
		messagesPerMinute:  messagesPerMinute,
		messagesPer10Sec:   messagesPer10Sec,
	}
}

// AllowInterest enforces the per-minute interest window. The returned
// retry-after is the remaining window in whole seconds, zero when allowed.
func (l *Limiter) AllowInterest(ctx context.Context, userID int64) (int64, bool, error) {
	if userID <= 0 {
		return 0, false, fmt.Errorf("invalid user id")
	}
	if l.store == nil {
		return 0, false, fmt.Errorf("rate limiter store is nil")
	}
	if l.interestsPerMinute <= 0 {
		return 0, true, nil
	}

	count, ttl, err := l.store.IncrementWindow(ctx, interestMinuteKey(userID), interestsMinuteWindow)
	if err != nil {
		return 0, false, err
	}
	if count > int64(l.interestsPerMinute) {
		return ceilSeconds(ttl), false, nil
	}

	return 0, true, nil
}

// AllowMessage enforces both the burst and the sustained message windows.
// The returned retry-after is the longer remaining window in whole seconds.
func (l *Limiter) AllowMessage(ctx context.Context, userID int64) (int64, bool, error) {
	if userID <= 0 {
		return 0, false, fmt.Errorf("invalid user id")
	}
	if l.store == nil {
		return 0, false, fmt.Errorf("rate limiter store is nil")
	}

	retryAfterSec := int64(0)

	if l.messagesPerMinute > 0 {
		count, ttl, err := l.store.IncrementWindow(ctx, messageMinuteKey(userID), messagesMinuteWindow)
		if err != nil {
			return 0, false, err
		}
		if count > int64(l.messagesPerMinute) {
			retryAfterSec = maxInt64(retryAfterSec, ceilSeconds(ttl))
		}
	}

	if l.messagesPer10Sec > 0 {
		count, ttl, err := l.store.IncrementWindow(ctx, messageTenSecKey(userID), messages10SecWindow)
		if err != nil {
			return 0, false, err
		}
		if count > int64(l.messagesPer10Sec) {
			retryAfterSec = maxInt64(retryAfterSec, ceilSeconds(ttl))
		}
	}

	if retryAfterSec > 0 {
		return retryAfterSec, false, nil
	}

	return 0, true, nil
}

func interestMinuteKey(userID int64) string {
	return "rate:interests:min:" + strconv.FormatInt(userID, 10)
}

func messageMinuteKey(userID int64) string {
	return "rate:messages:min:" + strconv.FormatInt(userID, 10)
}

func messageTenSecKey(userID int64) string {
	return "rate:messages:10s:" + strconv.FormatInt(userID, 10)
}

func ceilSeconds(d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	sec := int64(d / time.Second)
	if d%time.Second != 0 {
		sec++
	}
	if sec <= 0 {
		sec = 1
	}
	return sec
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
