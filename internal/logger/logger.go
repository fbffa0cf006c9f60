// Package logger configures slog for the reychango binaries: JSON records in
// production and a compact colored line format on a terminal.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	domainerrors "github.com/reychango/reychango-server/internal/errors"
)

const (
	formatJSON   = "json"
	formatPretty = "pretty"
)

// componentKey is lifted out of the attribute list by the pretty handler and shown
// as a tag in front of the message.
const componentKey = "component"

// ANSI escapes.
const (
	colorReset   = "\033[0m"
	colorRed     = "\033[31m"
	colorGreen   = "\033[32m"
	colorYellow  = "\033[33m"
	colorBlue    = "\033[34m"
	colorMagenta = "\033[35m"
	colorCyan    = "\033[36m"
	colorGray    = "\033[37m"
	colorBold    = "\033[1m"
	colorDim     = "\033[2m"
)

// Logger is a slog.Logger with field helpers.
type Logger struct {
	*slog.Logger
}

// Config holds logger configuration.
type Config struct {
	Writer      io.Writer
	Format      string // "json" or "pretty"; empty picks by Environment
	Environment string
	Service     string // added to every JSON record
	Level       slog.Level
	AddSource   bool
}

func (cfg Config) format() string {
	switch {
	case cfg.Format != "":
		return cfg.Format
	case cfg.Environment == "production":
		return formatJSON
	default:
		return formatPretty
	}
}

// New creates a logger for cfg.
func New(cfg Config) *Logger {
	w := cfg.Writer
	if w == nil {
		w = os.Stdout
	}

	opts := &slog.HandlerOptions{
		Level:       cfg.Level,
		AddSource:   cfg.AddSource,
		ReplaceAttr: shortSource,
	}

	if cfg.format() != formatJSON {
		return &Logger{Logger: slog.New(NewPrettyHandler(w, opts))}
	}

	var handler slog.Handler = slog.NewJSONHandler(w, opts)
	if cfg.Service != "" {
		handler = handler.WithAttrs([]slog.Attr{slog.String("service", cfg.Service)})
	}
	return &Logger{Logger: slog.New(handler)}
}

func shortSource(_ []string, a slog.Attr) slog.Attr {
	if a.Key != slog.SourceKey {
		return a
	}
	if src, ok := a.Value.Any().(*slog.Source); ok {
		src.File = filepath.Base(src.File)
	}
	return a
}

// ParseLevel maps LOG_LEVEL values to slog levels. Anything unrecognised is info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// PrettyHandler writes one colored line per record:
//
//	15:04:05 INF [store] album renamed from=Viajes to="Viajes 2024" photos=12
//
// Keys inside groups are dotted. Handlers derived with WithAttrs or WithGroup share
// the writer lock.
type PrettyHandler struct {
	opts      *slog.HandlerOptions
	mu        *sync.Mutex
	writer    io.Writer
	component string
	prefix    string // open groups joined with "." and a trailing dot
	attrs     []byte // pre-rendered " key=value" pairs from WithAttrs
}

// NewPrettyHandler creates a pretty handler writing to w.
func NewPrettyHandler(w io.Writer, opts *slog.HandlerOptions) *PrettyHandler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	return &PrettyHandler{opts: opts, mu: &sync.Mutex{}, writer: w}
}

// Enabled reports whether level is at or above the configured minimum.
func (h *PrettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	if h.opts.Level == nil {
		return level >= slog.LevelInfo
	}
	return level >= h.opts.Level.Level()
}

// Handle writes r.
func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	line := make([]byte, 0, 256+len(h.attrs))

	line = paint(line, colorDim, r.Time.Format(time.TimeOnly))
	line = append(line, ' ')
	tag, color := formatLevel(r.Level)
	line = paint(line, color, tag)
	line = append(line, ' ')

	if h.opts.AddSource && r.PC != 0 {
		frame, _ := runtime.CallersFrames([]uintptr{r.PC}).Next()
		line = paint(line, colorDim, filepath.Base(frame.File)+":"+strconv.Itoa(frame.Line))
		line = append(line, ' ')
	}

	component := h.component
	var pairs []byte
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == componentKey && h.prefix == "" {
			component = a.Value.String()
			return true
		}
		pairs = appendAttr(pairs, h.prefix, a)
		return true
	})
	if component != "" {
		line = paint(line, colorBlue, "["+component+"]")
		line = append(line, ' ')
	}

	line = paint(line, colorBold, r.Message)
	if len(h.attrs)+len(pairs) > 0 {
		line = append(line, colorCyan...)
		line = append(line, h.attrs...)
		line = append(line, pairs...)
		line = append(line, colorReset...)
	}
	line = append(line, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.writer.Write(line)
	return err
}

// WithAttrs returns a handler that adds attrs to every record.
func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = append([]byte(nil), h.attrs...)
	for _, a := range attrs {
		if a.Key == componentKey && h.prefix == "" {
			next.component = a.Value.String()
			continue
		}
		next.attrs = appendAttr(next.attrs, h.prefix, a)
	}
	return &next
}

// WithGroup returns a handler that nests later keys under name.
func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.prefix = h.prefix + name + "."
	return &next
}

func paint(b []byte, color, s string) []byte {
	b = append(b, color...)
	b = append(b, s...)
	return append(b, colorReset...)
}

// appendAttr renders a as " key=value", flattening nested groups.
func appendAttr(b []byte, prefix string, a slog.Attr) []byte {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return b
	}
	if a.Value.Kind() == slog.KindGroup {
		if a.Key != "" {
			prefix += a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			b = appendAttr(b, prefix, ga)
		}
		return b
	}
	b = append(b, ' ')
	b = append(b, prefix...)
	b = append(b, a.Key...)
	b = append(b, '=')
	return append(b, formatValue(a.Value)...)
}

var levelTags = map[slog.Level][2]string{
	slog.LevelDebug: {"DBG", colorMagenta},
	slog.LevelInfo:  {"INF", colorGreen},
	slog.LevelWarn:  {"WRN", colorYellow},
	slog.LevelError: {"ERR", colorRed},
}

func formatLevel(level slog.Level) (tag, color string) {
	if t, ok := levelTags[level]; ok {
		return t[0], t[1]
	}
	return level.String(), colorGray
}

func formatValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindTime:
		return v.Time().Format(time.RFC3339)
	case slog.KindDuration:
		return v.Duration().Round(time.Microsecond).String()
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return quoteIfSpaced(err.Error())
		}
	case slog.KindString:
		return quoteIfSpaced(v.String())
	}
	return v.String()
}

func quoteIfSpaced(s string) string {
	if s == "" || strings.ContainsAny(s, " \t\n\"") {
		return strconv.Quote(s)
	}
	return s
}

// Component returns a logger whose records carry component=name.
func (l *Logger) Component(name string) *slog.Logger {
	return l.With(slog.String(componentKey, name))
}

// WithError adds an error attribute. Domain errors also add error_code.
func (l *Logger) WithError(err error) *Logger {
	args := []any{slog.String("error", err.Error())}
	var domainErr *domainerrors.Error
	if domainerrors.As(err, &domainErr) {
		args = append(args, slog.String("error_code", string(domainErr.Code)))
	}
	return &Logger{Logger: l.With(args...)}
}

// WithField adds a single field.
func (l *Logger) WithField(key string, value any) *Logger {
	return &Logger{Logger: l.With(key, value)}
}

// WithFields adds every entry of fields.
func (l *Logger) WithFields(fields map[string]any) *Logger {
	args := make([]any, 0, len(fields))
	for k, v := range fields {
		args = append(args, slog.Any(k, v))
	}
	return &Logger{Logger: l.With(args...)}
}

// Fatal logs at error level and exits with status 1.
func (l *Logger) Fatal(msg string, args ...any) {
	l.Error(msg, args...)
	os.Exit(1)
}
