// Package unlock implements the hidden keystroke trigger that reveals the
// admin UI route. Matching a phrase grants no permission; authorization is
// enforced separately by the admin claim on the access token.
package unlock

import (
	"strings"
	"time"
)

// IdleTimeout clears the rolling buffer when the gap between two
// consecutive keystrokes exceeds it.
const IdleTimeout = time.Second

// Detector matches a trigger phrase against a rolling buffer of typed
// characters. Matching is case-insensitive and the phrase must appear as
// a contiguous substring. Not safe for concurrent use; each connection
// owns its own detector.
type Detector struct {
	phrase  string
	buffer  string
	lastKey time.Time
}

// NewDetector creates a detector for the given trigger phrase.
func NewDetector(phrase string) *Detector {
	return &Detector{phrase: strings.ToLower(phrase)}
}

// Feed appends one keystroke to the buffer and reports whether the
// trigger phrase was completed. The buffer is cleared on an idle gap
// exceeding IdleTimeout and after every successful match, so a held-down
// key cannot fire twice from one completion.
func (d *Detector) Feed(key string, now time.Time) bool {
	if d.phrase == "" {
		return false
	}

	if !d.lastKey.IsZero() && now.Sub(d.lastKey) > IdleTimeout {
		d.buffer = ""
	}
	d.lastKey = now

	d.buffer += strings.ToLower(key)
	// Only the tail can still complete the phrase; cap the buffer so a
	// long idle-free typing session does not grow it without bound.
	if over := len(d.buffer) - 2*len(d.phrase); over > 0 {
		d.buffer = d.buffer[over:]
	}

	if strings.Contains(d.buffer, d.phrase) {
		d.buffer = ""
		return true
	}

	return false
}

// Reset clears the rolling buffer.
func (d *Detector) Reset() {
	d.buffer = ""
	d.lastKey = time.Time{}
}
