// Package chatlog records assistant conversations as NDJSON, one file per
// session, for offline review and NLU training data collection.
package chatlog

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Event is one logged conversation message.
type Event struct {
	Timestamp string         `json:"ts"`
	Username  string         `json:"username"`
	Session   string         `json:"session"`
	Direction string         `json:"direction"` // "user" or "assistant"
	Content   string         `json:"content"`
	Meta      map[string]any `json:"meta,omitempty"`
}

// Logger accepts conversation events. Log must never block the request path.
type Logger interface {
	Log(event Event)
	Close() error
}

// Noop discards all events.
type Noop struct{}

func (Noop) Log(Event) {}

func (Noop) Close() error { return nil }

// Config controls NDJSON conversation logging.
type Config struct {
	Enabled   bool
	Dir       string
	QueueSize int
}

// FileLogger writes events asynchronously through a bounded queue. When the
// queue is full events are dropped and counted rather than blocking a turn.
type FileLogger struct {
	cfg    Config
	logger *slog.Logger

	queue chan Event
	done  chan struct{}
	wg    sync.WaitGroup

	mu      sync.Mutex
	files   map[string]*os.File
	dropped int64
}

// New creates a conversation logger. When cfg.Enabled is false it returns a
// Noop logger.
func New(cfg Config, logger *slog.Logger) (Logger, error) {
	if !cfg.Enabled {
		return Noop{}, nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1000
	}
	if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
		return nil, fmt.Errorf("create conversation log dir: %w", err)
	}

	l := &FileLogger{
		cfg:    cfg,
		logger: logger,
		queue:  make(chan Event, cfg.QueueSize),
		done:   make(chan struct{}),
		files:  map[string]*os.File{},
	}
	l.wg.Add(1)
	go l.writeLoop()
	return l, nil
}

// Log enqueues an event, dropping it when the queue is full.
func (l *FileLogger) Log(event Event) {
	event.Content = sanitize(event.Content)
	select {
	case l.queue <- event:
	default:
		l.mu.Lock()
		l.dropped++
		dropped := l.dropped
		l.mu.Unlock()
		l.logger.Warn("conversation log queue full, dropping event", "dropped_total", dropped)
	}
}

// Close drains the queue and closes all open files.
func (l *FileLogger) Close() error {
	close(l.done)
	l.wg.Wait()

	l.mu.Lock()
	defer l.mu.Unlock()
	var firstErr error
	for path, f := range l.files {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close conversation log %s: %w", path, err)
		}
	}
	l.files = map[string]*os.File{}
	return firstErr
}

func (l *FileLogger) writeLoop() {
	defer l.wg.Done()
	for {
		select {
		case event := <-l.queue:
			l.write(event)
		case <-l.done:
			// Drain whatever is queued before exiting.
			for {
				select {
				case event := <-l.queue:
					l.write(event)
				default:
					return
				}
			}
		}
	}
}

func (l *FileLogger) write(event Event) {
	f, err := l.file(event.Username, event.Session)
	if err != nil {
		l.logger.Warn("failed to open conversation log file", "error", err)
		return
	}

	line, err := json.Marshal(event)
	if err != nil {
		l.logger.Warn("failed to marshal conversation event", "error", err)
		return
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		l.logger.Warn("failed to write conversation event", "error", err)
	}
}

func (l *FileLogger) file(username, session string) (*os.File, error) {
	path := filepath.Join(l.cfg.Dir, safeName(username), safeName(session)+".ndjson")

	l.mu.Lock()
	defer l.mu.Unlock()
	if f, ok := l.files[path]; ok {
		return f, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	l.files[path] = f
	return f, nil
}

// safeName keeps file names to a conservative character set.
func safeName(s string) string {
	if s == "" {
		return "unknown"
	}
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

// sanitize drops control characters so log lines stay one line each.
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 && r != '\t' {
			return ' '
		}
		return r
	}, s)
}
