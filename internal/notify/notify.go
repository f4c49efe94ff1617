package notify

import (
	"context"
	"log/slog"
	"sync"

	"github.com/thehopecrystal/verify-properties/internal/models"
)

// Notifier receives the outcome of every state-changing operation.
type Notifier interface {
	Notify(ctx context.Context, n models.Notification)
}

type Func func(ctx context.Context, n models.Notification)

func (f Func) Notify(ctx context.Context, n models.Notification) { f(ctx, n) }

// Multi fans a notification out to every sink in order.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, n models.Notification) {
	for _, sink := range m {
		if sink != nil {
			sink.Notify(ctx, n)
		}
	}
}

type Logger struct {
	Log *slog.Logger
}

func NewLogger(log *slog.Logger) *Logger {
	if log == nil {
		log = slog.Default()
	}
	return &Logger{Log: log}
}

func (l *Logger) Notify(ctx context.Context, n models.Notification) {
	switch n.Level {
	case models.LevelError:
		l.Log.WarnContext(ctx, n.Message, "level", n.Level)
	default:
		l.Log.InfoContext(ctx, n.Message, "level", n.Level)
	}
}

// Recorder keeps every notification it receives.
type Recorder struct {
	mu    sync.Mutex
	items []models.Notification
}

func (r *Recorder) Notify(_ context.Context, n models.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
}

func (r *Recorder) All() []models.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]models.Notification, len(r.items))
	copy(out, r.items)
	return out
}

func (r *Recorder) Last() (models.Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.items) == 0 {
		return models.Notification{}, false
	}
	return r.items[len(r.items)-1], true
}
