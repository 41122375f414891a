// Package ratelimit provides rate limiting for login-link delivery.
package ratelimit

import (
	"crypto/sha256"
	"encoding/hex"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Clock interface for testing time-dependent behavior.
type Clock interface {
	Now() time.Time
}

// realClock implements Clock using the system time.
type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Config holds rate limit configuration.
type Config struct {
	SendCooldown     time.Duration // Minimum time between link sends per identifier (default: 60s)
	SendMaxPerHour   int           // Max link sends per identifier per hour (default: 5)
	SendMaxIPPerHour int           // Max link sends per IP per hour (default: 20)

	// Clock for testing (nil uses real time)
	Clock Clock
}

// DefaultConfig returns production-ready defaults.
func DefaultConfig() *Config {
	return &Config{
		SendCooldown:     60 * time.Second,
		SendMaxPerHour:   5,
		SendMaxIPPerHour: 20,
	}
}

// LimitResult contains the result of a rate limit check.
type LimitResult struct {
	Allowed    bool
	RetryAfter time.Duration
	Reason     string // For logging
}

// entry tracks request counts and timestamps.
type entry struct {
	count   int
	firstAt time.Time // First request in window
	lastAt  time.Time // Most recent request (for cooldown)
}

// Limiter tracks login-link sends per identifier and per IP.
type Limiter struct {
	config *Config
	clock  Clock
	mu     sync.Mutex
	// Keyed by hash of identifier or IP
	sendByID map[string]*entry
	sendByIP map[string]*entry
}

// New creates a new rate limiter with the given config.
func New(cfg *Config) *Limiter {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = realClock{}
	}
	return &Limiter{
		config:   cfg,
		clock:    clock,
		sendByID: make(map[string]*entry),
		sendByIP: make(map[string]*entry),
	}
}

// CheckLinkSend checks if a login-link send is allowed.
// Does NOT record the attempt - call RecordLinkSend once the send goes out.
func (l *Limiter) CheckLinkSend(identifier, ip string) LimitResult {
	now := l.clock.Now()
	idKey := hashKey("send:id:", normalizeIdentifier(identifier))
	ipKey := hashKey("send:ip:", ip)

	l.mu.Lock()
	defer l.mu.Unlock()

	l.pruneLocked(now)

	// Per-identifier cooldown
	if e := l.sendByID[idKey]; e != nil {
		elapsed := now.Sub(e.lastAt)
		if elapsed < l.config.SendCooldown {
			return LimitResult{
				Allowed:    false,
				RetryAfter: l.config.SendCooldown - elapsed,
				Reason:     "cooldown",
			}
		}

		if now.Sub(e.firstAt) < time.Hour && e.count >= l.config.SendMaxPerHour {
			return LimitResult{
				Allowed:    false,
				RetryAfter: time.Hour - now.Sub(e.firstAt),
				Reason:     "hourly_limit",
			}
		}
	}

	// Per-IP hourly limit
	if e := l.sendByIP[ipKey]; e != nil {
		if now.Sub(e.firstAt) < time.Hour && e.count >= l.config.SendMaxIPPerHour {
			return LimitResult{
				Allowed:    false,
				RetryAfter: time.Hour - now.Sub(e.firstAt),
				Reason:     "ip_hourly_limit",
			}
		}
	}

	return LimitResult{Allowed: true}
}

// RecordLinkSend records a login-link send against both windows.
func (l *Limiter) RecordLinkSend(identifier, ip string) {
	now := l.clock.Now()
	idKey := hashKey("send:id:", normalizeIdentifier(identifier))
	ipKey := hashKey("send:ip:", ip)

	l.mu.Lock()
	defer l.mu.Unlock()

	record(l.sendByID, idKey, now)
	record(l.sendByIP, ipKey, now)
}

func record(m map[string]*entry, key string, now time.Time) {
	e := m[key]
	if e == nil || now.Sub(e.firstAt) >= time.Hour {
		m[key] = &entry{count: 1, firstAt: now, lastAt: now}
		return
	}
	e.count++
	e.lastAt = now
}

// pruneLocked drops entries whose hourly window has fully elapsed. Callers
// must hold l.mu.
func (l *Limiter) pruneLocked(now time.Time) {
	for key, e := range l.sendByID {
		if now.Sub(e.lastAt) >= time.Hour {
			delete(l.sendByID, key)
		}
	}
	for key, e := range l.sendByIP {
		if now.Sub(e.lastAt) >= time.Hour {
			delete(l.sendByIP, key)
		}
	}
}

func hashKey(prefix, value string) string {
	sum := sha256.Sum256([]byte(prefix + value))
	return hex.EncodeToString(sum[:])
}

func normalizeIdentifier(identifier string) string {
	return strings.ToLower(strings.TrimSpace(identifier))
}

// GetClientIP extracts the client IP from a request.
// When trustProxy is true, uses the rightmost IP from X-Forwarded-For (added
// by your proxy). When trustProxy is false, ignores X-Forwarded-For entirely
// (prevents spoofing).
func GetClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			parts := strings.Split(xff, ",")
			candidate := strings.TrimSpace(parts[len(parts)-1])
			if net.ParseIP(candidate) != nil {
				return candidate
			}
		}
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		if net.ParseIP(r.RemoteAddr) != nil {
			return r.RemoteAddr
		}
		return r.RemoteAddr
	}
	return ip
}

// SanitizeIdentifier masks an identifier for logging.
func SanitizeIdentifier(identifier string) string {
	identifier = normalizeIdentifier(identifier)
	if strings.Contains(identifier, "@") {
		parts := strings.Split(identifier, "@")
		if len(parts[0]) > 2 {
			return parts[0][:2] + "***@" + parts[1]
		}
		return "***@" + parts[1]
	}
	if len(identifier) >= 4 {
		return "***" + identifier[len(identifier)-4:]
	}
	return "***"
}

// LogRateLimitExceeded logs a rate limit event with sanitized identifier.
func LogRateLimitExceeded(limitType, identifier, ip, reason string) {
	log.Warn().
		Str("event", "rate_limit_exceeded").
		Str("type", limitType).
		Str("identifier", SanitizeIdentifier(identifier)).
		Str("ip", ip).
		Str("reason", reason).
		Msg("Login link rate limit exceeded")
}
