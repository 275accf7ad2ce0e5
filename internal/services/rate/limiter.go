package rate

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

const (
	minuteWindow = time.Minute
	tenSecWindow = 10 * time.Second

	actionRating  = "ratings"
	actionMessage = "messages"
)

type WindowStore interface {
	IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
	WindowState(ctx context.Context, key string) (int64, time.Duration, error)
}

// Limiter throttles write actions per user over two sliding windows.
// A zero limit disables the corresponding window.
type Limiter struct {
	store     WindowStore
	perMinute int
	perTenSec int
}

func NewLimiter(store WindowStore, perMinute, perTenSec int) *Limiter {
	if perMinute < 0 {
		perMinute = 0
	}
	if perTenSec < 0 {
		perTenSec = 0
	}

	return &Limiter{
		store:     store,
		perMinute: perMinute,
		perTenSec: perTenSec,
	}
}

// AllowRating reports whether the user may submit another rating now.
// On block it returns the seconds to wait before retrying.
func (l *Limiter) AllowRating(ctx context.Context, userID int64) (int64, bool, error) {
	return l.allow(ctx, actionRating, userID)
}

// AllowMessage reports whether the user may send another message now.
func (l *Limiter) AllowMessage(ctx context.Context, userID int64) (int64, bool, error) {
	return l.allow(ctx, actionMessage, userID)
}

func (l *Limiter) RetryAfterRating(ctx context.Context, userID int64) (int64, error) {
	return l.retryAfter(ctx, actionRating, userID)
}

func (l *Limiter) allow(ctx context.Context, action string, userID int64) (int64, bool, error) {
	if userID <= 0 {
		return 0, false, fmt.Errorf("invalid user id")
	}
	if l.store == nil {
		return 0, false, fmt.Errorf("rate limiter store is nil")
	}

	retryAfterSec := int64(0)

	if l.perMinute > 0 {
		count, ttl, err := l.store.IncrementWindow(ctx, minuteKey(action, userID), minuteWindow)
		if err != nil {
			return 0, false, err
		}
		if count > int64(l.perMinute) {
			retryAfterSec = maxInt64(retryAfterSec, ceilSeconds(ttl))
		}
	}

	if l.perTenSec > 0 {
		count, ttl, err := l.store.IncrementWindow(ctx, tenSecKey(action, userID), tenSecWindow)
		if err != nil {
			return 0, false, err
		}
		if count > int64(l.perTenSec) {
			retryAfterSec = maxInt64(retryAfterSec, ceilSeconds(ttl))
		}
	}

	if retryAfterSec > 0 {
		return retryAfterSec, false, nil
	}

	return 0, true, nil
}

func (l *Limiter) retryAfter(ctx context.Context, action string, userID int64) (int64, error) {
	if userID <= 0 {
		return 0, fmt.Errorf("invalid user id")
	}
	if l.store == nil {
		return 0, fmt.Errorf("rate limiter store is nil")
	}

	retryAfterSec := int64(0)

	if l.perMinute > 0 {
		count, ttl, err := l.store.WindowState(ctx, minuteKey(action, userID))
		if err != nil {
			return 0, err
		}
		if count >= int64(l.perMinute) {
			retryAfterSec = maxInt64(retryAfterSec, ceilSeconds(ttl))
		}
	}

	if l.perTenSec > 0 {
		count, ttl, err := l.store.WindowState(ctx, tenSecKey(action, userID))
		if err != nil {
			return 0, err
		}
		if count >= int64(l.perTenSec) {
			retryAfterSec = maxInt64(retryAfterSec, ceilSeconds(ttl))
		}
	}

	return retryAfterSec, nil
}

func minuteKey(action string, userID int64) string {
	return "rate:" + action + ":min:" + strconv.FormatInt(userID, 10)
}

func tenSecKey(action string, userID int64) string {
	return "rate:" + action + ":10s:" + strconv.FormatInt(userID, 10)
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
