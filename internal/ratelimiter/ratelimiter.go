package ratelimiter

import "time"

// Limiter throttles requests per client IP. Used on the public review
// submission route, which is the only unauthenticated mutation.
type Limiter interface {
	Allow(ip string) (bool, time.Duration)
}

type Config struct {
	RequestsPerTimeFrame int
	TimeFrame            time.Duration
	Enabled              bool
}
