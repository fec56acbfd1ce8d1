// Package dedupe suppresses redundant copies of inbound traffic. The three
// transports can each independently deliver the same logical message, so
// application must be idempotent. A fingerprint set with a hard size cap
// covers chat messages; a short per-(event, peer) time window covers
// transient duplicate control signals without suppressing legitimate
// repeats later on.
package dedupe

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"io"
	"sync"
	"time"
)

const (
	// DefaultMaxSeen bounds the message fingerprint set. Exceeding it clears
	// the whole set: coarse, but memory stays bounded and a false negative
	// only costs a harmless duplicate entry.
	DefaultMaxSeen = 1000

	// DefaultControlWindow suppresses repeated control signals from
	// overlapping transport paths.
	DefaultControlWindow = 3 * time.Second
)

// Key derives the dedupe fingerprint for a message: sender identifier,
// timestamp, and a hash of the content.
func Key(sender string, ts time.Time, content string) string {
	ch := sha256.Sum256([]byte(content))

	h := sha256.New()
	io.WriteString(h, sender)
	var ms [8]byte
	binary.BigEndian.PutUint64(ms[:], uint64(ts.UnixMilli()))
	h.Write(ms[:])
	h.Write(ch[:])
	return hex.EncodeToString(h.Sum(nil)[:16])
}

// Cache is safe for use from a single processing context; it carries its own
// lock so redundant transports may also probe it directly.
type Cache struct {
	mu      sync.Mutex
	seen    map[string]struct{}
	maxSeen int
	window  time.Duration
	control map[string]time.Time

	now func() time.Time
}

func New(maxSeen int, window time.Duration) *Cache {
	if maxSeen <= 0 {
		maxSeen = DefaultMaxSeen
	}
	if window <= 0 {
		window = DefaultControlWindow
	}
	return &Cache{
		seen:    make(map[string]struct{}),
		maxSeen: maxSeen,
		window:  window,
		control: make(map[string]time.Time),
		now:     time.Now,
	}
}

// IsDuplicate reports whether key has been seen before.
func (c *Cache) IsDuplicate(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.seen[key]
	return ok
}

// MarkSeen records key. Once the set outgrows the cap it is cleared
// entirely before the new key is recorded.
func (c *Cache) MarkSeen(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.seen) >= c.maxSeen {
		c.seen = make(map[string]struct{})
	}
	c.seen[key] = struct{}{}
}

// ControlDuplicate reports whether the same (event, peer) control signal was
// seen within the window, recording this occurrence either way.
func (c *Cache) ControlDuplicate(event, peer string) bool {
	now := c.now()
	key := event + "\x00" + peer

	c.mu.Lock()
	defer c.mu.Unlock()
	c.pruneControlLocked(now)

	last, ok := c.control[key]
	c.control[key] = now
	return ok && now.Sub(last) < c.window
}

func (c *Cache) pruneControlLocked(now time.Time) {
	cutoff := now.Add(-c.window)
	for k, ts := range c.control {
		if ts.Before(cutoff) {
			delete(c.control, k)
		}
	}
}
