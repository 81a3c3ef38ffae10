// Package log provides the colored console slog handler used by the CLI.
package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/goccy/go-json"
)

// ModuleKey tags records with the component that emitted them.
const ModuleKey = "module"

// Handler renders records as
//
//	15:04:05.000 WARN [driver] message key=value
//
// It delegates attribute handling to an inner JSON handler and decodes its
// output, so groups and WithAttrs behave exactly like the stdlib handlers.
type Handler struct {
	sub   slog.Handler
	buf   *bytes.Buffer
	mu    *sync.Mutex
	out   io.Writer
	times bool
}

// Options configures NewHandler.
type Options struct {
	Level     slog.Leveler
	NoTime    bool
	AddSource bool
}

// NewHandler builds a Handler writing to out.
func NewHandler(out io.Writer, opts *Options) *Handler {
	if opts == nil {
		opts = &Options{}
	}
	b := &bytes.Buffer{}
	return &Handler{
		sub: slog.NewJSONHandler(b, &slog.HandlerOptions{
			Level:     opts.Level,
			AddSource: opts.AddSource,
		}),
		buf:   b,
		mu:    &sync.Mutex{},
		out:   out,
		times: !opts.NoTime,
	}
}

func (h *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.sub.Enabled(ctx, level)
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &Handler{sub: h.sub.WithAttrs(attrs), buf: h.buf, mu: h.mu, out: h.out, times: h.times}
}

func (h *Handler) WithGroup(name string) slog.Handler {
	return &Handler{sub: h.sub.WithGroup(name), buf: h.buf, mu: h.mu, out: h.out, times: h.times}
}

var (
	timeColor   = color.New(color.FgHiBlack)
	moduleColor = color.New(color.FgWhite)
	keyColor    = color.New(color.FgHiBlack)
	levelColors = map[slog.Level]*color.Color{
		slog.LevelDebug: color.New(color.FgHiBlack),
		slog.LevelInfo:  color.New(color.FgCyan),
		slog.LevelWarn:  color.New(color.FgHiYellow),
		slog.LevelError: color.New(color.FgHiRed),
	}
)

func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	attrs, err := h.parseAttributes(ctx, r)
	if err != nil {
		return err
	}

	var line strings.Builder
	if h.times && !r.Time.IsZero() {
		line.WriteString(timeColor.Sprint(r.Time.Format("15:04:05.000")))
		line.WriteByte(' ')
	}
	level := fmt.Sprintf("%-5s", r.Level.String())
	if c, ok := levelColors[r.Level]; ok {
		level = c.Sprint(level)
	}
	line.WriteString(level)
	line.WriteByte(' ')
	if m, ok := attrs[ModuleKey]; ok {
		line.WriteString(moduleColor.Sprintf("[%v] ", m))
		delete(attrs, ModuleKey)
	}
	line.WriteString(r.Message)

	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		line.WriteByte(' ')
		line.WriteString(keyColor.Sprint(k + "="))
		line.WriteString(formatValue(attrs[k]))
	}
	line.WriteByte('\n')

	_, err = io.WriteString(h.out, line.String())
	return err
}

// parseAttributes runs the inner handler and returns the record attributes
// without the time, level and msg keys. Caller holds h.mu.
func (h *Handler) parseAttributes(ctx context.Context, r slog.Record) (map[string]any, error) {
	defer h.buf.Reset()
	if err := h.sub.Handle(ctx, r); err != nil {
		return nil, fmt.Errorf("error when calling inner handler's Handle: %w", err)
	}

	var attrs map[string]any
	if err := json.Unmarshal(h.buf.Bytes(), &attrs); err != nil {
		return nil, fmt.Errorf("error when unmarshaling inner handler's Handle result: %w", err)
	}
	delete(attrs, slog.TimeKey)
	delete(attrs, slog.LevelKey)
	delete(attrs, slog.MessageKey)
	return attrs, nil
}

func formatValue(v any) string {
	switch val := v.(type) {
	case string:
		if val == "" || strings.ContainsAny(val, " \t\n\"=") {
			return fmt.Sprintf("%q", val)
		}
		return val
	case map[string]any, []any:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(data)
	}
	return fmt.Sprint(v)
}

// ParseLevel maps a --log-level value to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(strings.TrimSpace(s)))); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
	return lvl, nil
}

// New returns a logger backed by a Handler.
func New(out io.Writer, level slog.Leveler) *slog.Logger {
	return slog.New(NewHandler(out, &Options{Level: level}))
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

// Module returns a child logger tagged with the component name.
func Module(l *slog.Logger, name string) *slog.Logger {
	if l == nil {
		l = Discard()
	}
	return l.With(ModuleKey, name)
}
