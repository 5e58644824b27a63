// Package userstate tracks per-user bot state: fixed-window rate-limit
// counters, per-action cooldown timestamps, and per-(user,command) in-flight
// locks. All state is in-memory and disposable.
package userstate

import (
	"sync"
	"time"
)

// ActionType identifies a cooldown class. Each action carries its own
// cooldown duration.
type ActionType string

// Known action types.
const (
	ActionGeneral  ActionType = "general"
	ActionVideo    ActionType = "video"
	ActionCommands ActionType = "commands"
	ActionSports   ActionType = "sports"
)

// Config configures a Manager instance.
type Config struct {
	// MaxRequests is the number of commands allowed per window.
	MaxRequests int

	// Window is the rate-limit window length. The background sweep runs on
	// the same interval.
	Window time.Duration

	// Cooldowns maps each action type to its cooldown duration.
	Cooldowns map[ActionType]time.Duration
}

// cooldownKey is a composite key for cooldown records. A struct key avoids
// the collision risk of interpolated string keys.
type cooldownKey struct {
	userID string
	action ActionType
}

// lockKey is a composite key for in-flight command locks.
type lockKey struct {
	userID  string
	command string
}

// rateLimitEntry is one user's fixed-window counter.
type rateLimitEntry struct {
	count       int
	windowStart time.Time
}

// Manager owns all per-user bot state behind a single mutex. Every operation
// touches exactly one key, so one lock is enough; no cross-key transactions
// exist.
type Manager struct {
	mu         sync.Mutex
	rateLimits map[string]*rateLimitEntry
	cooldowns  map[cooldownKey]time.Time
	locks      map[lockKey]struct{}

	cfg         Config
	maxCooldown time.Duration

	now      func() time.Time
	onUpdate func(count int) // called after each sweep with the active user count

	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewManager creates a state manager and starts its background sweep.
// Call Stop to shut the sweep down.
func NewManager(cfg Config) *Manager {
	m := &Manager{
		rateLimits: make(map[string]*rateLimitEntry),
		cooldowns:  make(map[cooldownKey]time.Time),
		locks:      make(map[lockKey]struct{}),
		cfg:        cfg,
		now:        time.Now,
		stopCh:     make(chan struct{}),
	}
	for _, d := range cfg.Cooldowns {
		if d > m.maxCooldown {
			m.maxCooldown = d
		}
	}

	go m.sweepLoop()

	return m
}

// OnUpdate sets a callback invoked after each sweep with the number of users
// that still hold rate-limit state.
func (m *Manager) OnUpdate(fn func(count int)) {
	m.onUpdate = fn
}

// IsRateLimited counts the current request against the user's fixed window
// and reports whether the limit is exceeded. The record is mutated on every
// call: rejected attempts still count, so hammering the bot extends the
// lockout rather than slipping through.
func (m *Manager) IsRateLimited(userID string) bool {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.rateLimits[userID]
	if !ok || now.Sub(entry.windowStart) > m.cfg.Window {
		m.rateLimits[userID] = &rateLimitEntry{count: 1, windowStart: now}
		return 1 > m.cfg.MaxRequests
	}

	entry.count++
	return entry.count > m.cfg.MaxRequests
}

// CheckCooldown reports whether the action cooldown is still active for the
// user. It never mutates state.
func (m *Manager) CheckCooldown(userID string, action ActionType) bool {
	m.mu.Lock()
	last, ok := m.cooldowns[cooldownKey{userID, action}]
	m.mu.Unlock()

	if !ok {
		return false
	}
	return m.now().Sub(last) < m.cfg.Cooldowns[action]
}

// SetCooldown records now as the last fire time for the (user, action) pair.
// Call it only after the guarded work succeeded.
func (m *Manager) SetCooldown(userID string, action ActionType) {
	now := m.now()

	m.mu.Lock()
	m.cooldowns[cooldownKey{userID, action}] = now
	m.mu.Unlock()
}

// TryLock attempts to mark the (user, command) pair as in flight. It returns
// false when the pair is already held; callers must drop the request, never
// wait. This is a compare-and-set flag, not a queueing mutex, and upgrading
// it to one would change observable behaviour.
func (m *Manager) TryLock(userID, command string) bool {
	key := lockKey{userID, command}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, held := m.locks[key]; held {
		return false
	}
	m.locks[key] = struct{}{}
	return true
}

// Unlock releases the in-flight flag for the (user, command) pair.
func (m *Manager) Unlock(userID, command string) {
	m.mu.Lock()
	delete(m.locks, lockKey{userID, command})
	m.mu.Unlock()
}

// ActiveUsers returns the number of users holding rate-limit state.
func (m *Manager) ActiveUsers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rateLimits)
}

// sweepLoop periodically expires stale state. The interval equals the
// rate-limit window, so an entry survives at most two windows.
func (m *Manager) sweepLoop() {
	ticker := time.NewTicker(m.cfg.Window)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopCh:
			return
		case <-ticker.C:
			active := m.sweep()
			if m.onUpdate != nil {
				m.onUpdate(active)
			}
		}
	}
}

// sweep removes rate-limit entries whose window has elapsed and cooldown
// entries past the longest configured cooldown. A cooldown record is only
// ever consulted within its own duration, so dropping it after the maximum
// is safe and reclaims state for departed users. Lock records are not swept;
// they live exactly as long as one invocation.
func (m *Manager) sweep() int {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	for userID, entry := range m.rateLimits {
		if now.Sub(entry.windowStart) > m.cfg.Window {
			delete(m.rateLimits, userID)
		}
	}
	for key, last := range m.cooldowns {
		if now.Sub(last) > m.maxCooldown {
			delete(m.cooldowns, key)
		}
	}

	return len(m.rateLimits)
}

// Stop shuts down the background sweep. Safe to call multiple times.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopCh)
	})
}
