// Package debuglog is the engine's diagnostic channel. Every failure path
// that degrades to a no-op (dropped duplicates, failed decrypts, rejected
// trust toggles) reports here instead of returning an error upward.
//
// Output is buffered and dropped on saturation so transport callbacks never
// block on logging. Verbose output is gated on MESHTALK_DEBUG=1.
package debuglog

import (
	"fmt"
	"os"
	"sync"
)

const queueSize = 1024

type logger struct {
	once sync.Once
	ch   chan string
}

var global logger

func enabled() bool {
	return os.Getenv("MESHTALK_DEBUG") == "1"
}

func (l *logger) start() {
	l.once.Do(func() {
		l.ch = make(chan string, queueSize)
		go func() {
			for msg := range l.ch {
				_, _ = os.Stderr.WriteString(msg)
			}
		}()
	})
}

// Logf always writes. When debug mode is on it goes through the buffered
// writer; when saturated the line is dropped rather than blocking.
func Logf(format string, args ...any) {
	msg := fmt.Sprintf(format+"\n", args...)
	if !enabled() {
		_, _ = os.Stderr.WriteString(msg)
		return
	}
	global.start()
	select {
	case global.ch <- msg:
	default:
	}
}

// Debugf writes only when MESHTALK_DEBUG=1.
func Debugf(format string, args ...any) {
	if !enabled() {
		return
	}
	Logf(format, args...)
}
