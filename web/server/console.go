package server

import (
	"strings"
	"sync"
	"time"
)

// ConsoleMessage represents a console message with timestamp
type ConsoleMessage struct {
	Seq       int64     `json:"seq"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"` // "debug", "info", "notice", "warning", "error"
}

var consoleLevels = []string{"DEBUG", "INFO", "NOTICE", "WARNING", "ERROR", "CRITICAL"}

// ConsoleBuffer keeps the most recent log lines for the web console. It is an
// io.Writer so it can be installed with log.AddMirror.
type ConsoleBuffer struct {
	mu       sync.Mutex
	capacity int
	messages []ConsoleMessage
	nextSeq  int64
	now      func() time.Time
}

// NewConsoleBuffer creates a buffer holding up to capacity messages
func NewConsoleBuffer(capacity int) *ConsoleBuffer {
	if capacity <= 0 {
		capacity = 200
	}
	return &ConsoleBuffer{capacity: capacity, nextSeq: 1, now: time.Now}
}

// Write records every non-empty line of p as a message
func (c *ConsoleBuffer) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, line := range strings.Split(string(p), "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		c.messages = append(c.messages, ConsoleMessage{
			Seq:       c.nextSeq,
			Message:   line,
			Timestamp: c.now(),
			Level:     parseLevel(line),
		})
		c.nextSeq++
	}
	if over := len(c.messages) - c.capacity; over > 0 {
		c.messages = append(c.messages[:0], c.messages[over:]...)
	}
	return len(p), nil
}

// Since returns the buffered messages with a sequence number above seq
func (c *ConsoleBuffer) Since(seq int64) []ConsoleMessage {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := []ConsoleMessage{}
	for _, msg := range c.messages {
		if msg.Seq > seq {
			out = append(out, msg)
		}
	}
	return out
}

// LastSeq returns the sequence number of the newest message, 0 if none
func (c *ConsoleBuffer) LastSeq() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nextSeq - 1
}

// parseLevel finds the [LEVEL] tag written by the log package
func parseLevel(line string) string {
	for _, level := range consoleLevels {
		if strings.Contains(line, "["+level+"]") {
			if level == "CRITICAL" {
				return "error"
			}
			return strings.ToLower(level)
		}
	}
	return "info"
}
