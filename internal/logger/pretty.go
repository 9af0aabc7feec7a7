package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"
)

const (
	ansiReset  = "\033[0m"
	ansiRed    = "\033[31m"
	ansiYellow = "\033[33m"
	ansiBlue   = "\033[34m"
	ansiGray   = "\033[90m"
	ansiCyan   = "\033[36m"
)

// PrettyHandler is a slog.Handler with colored, human-oriented output
// for the CLI: "[time] LEVEL message key=value ...".
type PrettyHandler struct {
	level slog.Level
	w     io.Writer
	mu    *sync.Mutex
	attrs []slog.Attr
	group string
}

// NewPrettyHandler creates a PrettyHandler writing to w.
func NewPrettyHandler(w io.Writer, level slog.Level) *PrettyHandler {
	return &PrettyHandler{level: level, w: w, mu: &sync.Mutex{}}
}

func (h *PrettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	var sb strings.Builder
	sb.Grow(256)

	sb.WriteString(ansiGray)
	sb.WriteByte('[')
	sb.WriteString(r.Time.Format(time.DateTime))
	sb.WriteByte(']')
	sb.WriteString(ansiReset)
	sb.WriteByte(' ')

	sb.WriteString(prettyLevelColor(r.Level))
	fmt.Fprintf(&sb, "%-5s", r.Level.String())
	sb.WriteString(ansiReset)
	sb.WriteByte(' ')

	sb.WriteString(r.Message)

	writeAttr := func(a slog.Attr) {
		sb.WriteByte(' ')
		sb.WriteString(ansiCyan)
		key := a.Key
		if h.group != "" {
			key = h.group + "." + key
		}
		sb.WriteString(key)
		sb.WriteByte('=')
		val := a.Value.String()
		if strings.ContainsAny(val, " \t\n\"") {
			fmt.Fprintf(&sb, "%q", val)
		} else {
			sb.WriteString(val)
		}
		sb.WriteString(ansiReset)
	}
	for _, a := range h.attrs {
		writeAttr(a)
	}
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(a)
		return true
	})
	sb.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, sb.String())
	return err
}

func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	h2 := *h
	h2.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &h2
}

func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	h2 := *h
	if h.group != "" {
		h2.group = h.group + "." + name
	} else {
		h2.group = name
	}
	return &h2
}

func prettyLevelColor(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return ansiRed
	case level >= slog.LevelWarn:
		return ansiYellow
	case level >= slog.LevelInfo:
		return ansiBlue
	default:
		return ansiGray
	}
}
