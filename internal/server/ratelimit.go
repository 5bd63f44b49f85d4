package server

import (
	"sync"

	"golang.org/x/time/rate"
)

// maxTrackedClients bounds the per-client limiter map. When a new client
// would exceed it the map is reset wholesale; an evicted client starts over
// with a full bucket.
const maxTrackedClients = 4096

// RateLimiter enforces per-client and global request rate limits using
// token buckets. Clients are keyed by whatever string the caller passes;
// the HTTP middleware uses RemoteAddr, so deployments behind a reverse
// proxy should terminate rate limiting at the proxy or rewrite the key
// from X-Forwarded-For before it reaches this process.
type RateLimiter struct {
	mu        sync.Mutex
	global    *rate.Limiter
	clients   map[string]*rate.Limiter
	perClient rate.Limit
	burst     int
}

// NewRateLimiter creates a rate limiter. globalRPM is the total
// requests/minute across all clients; perClientRPM is per client.
func NewRateLimiter(globalRPM, perClientRPM int) *RateLimiter {
	globalRate := rate.Limit(float64(globalRPM) / 60.0)
	clientRate := rate.Limit(float64(perClientRPM) / 60.0)
	globalBurst := globalRPM
	if globalBurst < 1 {
		globalBurst = 1
	}
	clientBurst := perClientRPM
	if clientBurst < 1 {
		clientBurst = 1
	}
	return &RateLimiter{
		global:    rate.NewLimiter(globalRate, globalBurst),
		clients:   make(map[string]*rate.Limiter),
		perClient: clientRate,
		burst:     clientBurst,
	}
}

// Allow checks whether a request from the given client is allowed.
func (rl *RateLimiter) Allow(client string) bool {
	if !rl.global.Allow() {
		return false
	}
	rl.mu.Lock()
	limiter, ok := rl.clients[client]
	if !ok {
		if len(rl.clients) >= maxTrackedClients {
			rl.clients = make(map[string]*rate.Limiter)
		}
		limiter = rate.NewLimiter(rl.perClient, rl.burst)
		rl.clients[client] = limiter
	}
	rl.mu.Unlock()
	return limiter.Allow()
}

// TrackedClients reports how many distinct clients currently hold a bucket.
func (rl *RateLimiter) TrackedClients() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.clients)
}
