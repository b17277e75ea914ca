// Package ratelimit provides per-client request throttling for the HTTP server.
package ratelimit

import (
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Info describes the limit state after a request.
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

type clientLimiter struct {
	limiter  *rate.Limiter
	burst    int
	lastSeen time.Time
}

// Limiter keeps one token bucket per client and endpoint.
type Limiter struct {
	config *Config
	now    func() time.Time

	mu      sync.Mutex
	clients map[string]*clientLimiter

	cleanupStop chan struct{}
	stopOnce    sync.Once
}

// NewLimiter creates a limiter. A nil config disables limiting.
func NewLimiter(config *Config) *Limiter {
	if config == nil {
		config = &Config{Enabled: false}
	}

	l := &Limiter{
		config:  config,
		now:     time.Now,
		clients: make(map[string]*clientLimiter),
	}

	if config.Enabled && config.CleanupInterval > 0 {
		l.cleanupStop = make(chan struct{})
		go l.cleanup(config.CleanupInterval)
	}

	return l
}

// Allow consumes one token for clientID on endpoint and reports whether the request may
// proceed.
func (l *Limiter) Allow(clientID string, endpoint string, method string) (bool, Info) {
	if !l.config.Enabled || l.config.Whitelist[clientID] {
		return true, Info{Allowed: true}
	}
	if l.config.Blacklist[clientID] {
		return false, Info{Allowed: false}
	}

	endpointConfig := MatchEndpoint(endpoint, method, l.config.EndpointConfigs)
	if endpointConfig == nil {
		endpointConfig = &EndpointConfig{RPS: l.config.RPS, Burst: l.config.Burst}
	}
	if endpointConfig.RPS <= 0 {
		return true, Info{Allowed: true}
	}

	now := l.now()
	client := l.get(clientID+":"+method+":"+endpoint, endpointConfig, now)

	allowed := client.limiter.AllowN(now, 1)
	tokens := client.limiter.TokensAt(now)

	info := Info{
		Allowed:   allowed,
		Limit:     client.burst,
		Remaining: max(int(math.Floor(tokens)), 0),
		ResetTime: now.Add(refillTime(float64(client.burst)-tokens, endpointConfig.RPS)),
	}
	if !allowed {
		info.RetryAfter = refillTime(1-tokens, endpointConfig.RPS)
	}
	return allowed, info
}

// Clients reports how many client limiters are live.
func (l *Limiter) Clients() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

// Stop ends the cleanup goroutine. It is safe to call more than once.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() {
		if l.cleanupStop != nil {
			close(l.cleanupStop)
		}
	})
}

func (l *Limiter) get(key string, cfg *EndpointConfig, now time.Time) *clientLimiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if client, ok := l.clients[key]; ok {
		client.lastSeen = now
		return client
	}

	burst := cfg.Burst
	if burst <= 0 {
		burst = int(math.Ceil(cfg.RPS))
	}
	// Buckets start full
	client := &clientLimiter{
		limiter:  rate.NewLimiter(rate.Limit(cfg.RPS), burst),
		burst:    burst,
		lastSeen: now,
	}
	l.clients[key] = client
	return client
}

func (l *Limiter) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.evictIdle()
		case <-l.cleanupStop:
			return
		}
	}
}

func (l *Limiter) evictIdle() {
	ttl := l.config.IdleTTL
	if ttl <= 0 {
		return
	}
	cutoff := l.now().Add(-ttl)

	l.mu.Lock()
	defer l.mu.Unlock()
	for key, client := range l.clients {
		if client.lastSeen.Before(cutoff) {
			delete(l.clients, key)
		}
	}
}

func refillTime(tokens, rps float64) time.Duration {
	if tokens <= 0 || rps <= 0 {
		return 0
	}
	return time.Duration(tokens / rps * float64(time.Second))
}
