package retry

import "time"

// MaxDelay caps backoff growth so late attempts against a long-dead
// dependency do not wait for minutes.
const MaxDelay = 30 * time.Second

// Backoff returns the delay before the given attempt, doubling from
// base and capped at MaxDelay.
func Backoff(attempt int, base time.Duration) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	d := base
	for i := 0; i < attempt; i++ {
		d *= 2
		if d >= MaxDelay {
			return MaxDelay
		}
	}
	return d
}
