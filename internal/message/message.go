// Package message carries player notifications out of the simulation.
package message

import (
	"log/slog"
	"sync"
)

// Category classifies a player message.
type Category int

const (
	Standard Category = iota
	Info
	Installation
	BaseAttack
	CrashSite
	Battle
)

var categoryNames = map[Category]string{
	Standard:     "standard",
	Info:         "info",
	Installation: "installation",
	BaseAttack:   "baseattack",
	CrashSite:    "crashsite",
	Battle:       "battle",
}

func (c Category) String() string {
	if n, ok := categoryNames[c]; ok {
		return n
	}
	return "unknown"
}

// Messenger posts a message to the player. Posting never fails.
type Messenger interface {
	Post(title, body string, category Category)
}

// Message is one posted notification.
type Message struct {
	Title    string
	Body     string
	Category Category
}

// LogMessenger writes every message to a slog logger.
type LogMessenger struct {
	logger *slog.Logger
}

// NewLogMessenger creates a messenger logging through logger (slog.Default when nil).
func NewLogMessenger(logger *slog.Logger) *LogMessenger {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogMessenger{logger: logger}
}

// Post logs the message at info level.
func (m *LogMessenger) Post(title, body string, category Category) {
	m.logger.Info(body, "title", title, "category", category.String())
}

// Recorder keeps posted messages in memory, in order.
type Recorder struct {
	mu       sync.Mutex
	messages []Message
}

// Post records the message.
func (r *Recorder) Post(title, body string, category Category) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, Message{Title: title, Body: body, Category: category})
}

// Messages returns a copy of everything posted so far.
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Message, len(r.messages))
	copy(out, r.messages)
	return out
}

// Bodies returns the bodies of everything posted so far.
func (r *Recorder) Bodies() []string {
	msgs := r.Messages()
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.Body
	}
	return out
}

// Fanout posts every message to all of its messengers.
type Fanout []Messenger

// Post forwards the message.
func (f Fanout) Post(title, body string, category Category) {
	for _, m := range f {
		if m != nil {
			m.Post(title, body, category)
		}
	}
}
