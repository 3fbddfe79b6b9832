package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

// consoleHandler writes one human-readable line per record:
//
//	15:04:05 WARN  [fetch] Show #42 · Ep 3 – episode skipped path=/out/x.mp3 (hint: install ffmpeg)
//
// The show and episode come from context fields; error_hint trails the line
// for warnings and errors.
type consoleHandler struct {
	mu        *sync.Mutex
	w         io.Writer
	level     slog.Leveler
	addSource bool
	prefix    string
	preset    []field
}

type field struct {
	key   string
	value slog.Value
}

func newPrettyHandler(w io.Writer, lvl *slog.LevelVar, addSource bool) slog.Handler {
	return &consoleHandler{mu: new(sync.Mutex), w: w, level: lvl, addSource: addSource}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.preset = appendFields(append([]field(nil), h.preset...), h.prefix, attrs)
	return &next
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.prefix = h.prefix + name + "."
	return &next
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	fields := append([]field(nil), h.preset...)
	record.Attrs(func(attr slog.Attr) bool {
		fields = appendFields(fields, h.prefix, []slog.Attr{attr})
		return true
	})
	line := lineParts{level: record.Level}
	line.absorb(lastWins(fields))

	ts := record.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	var b strings.Builder
	b.WriteString(ts.Local().Format("15:04:05"))
	fmt.Fprintf(&b, " %-5s", levelName(record.Level))
	if line.component != "" {
		b.WriteString(" [" + line.component + "]")
	}
	if subject := line.subject(); subject != "" {
		b.WriteString(" " + subject)
	}
	msg := strings.TrimSpace(record.Message)
	if msg == "" {
		msg = "(no message)"
	}
	b.WriteString(" – " + msg)
	if h.addSource {
		if src := record.Source(); src != nil {
			b.WriteString(" [" + filepath.Base(src.File) + ":" + strconv.Itoa(src.Line) + "]")
		}
	}
	for _, f := range line.rest {
		b.WriteString(" " + f.key + "=" + renderValue(f.value))
	}
	if line.hint != "" {
		b.WriteString(" (hint: " + line.hint + ")")
	}
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, b.String())
	return err
}

// lineParts splits record fields into the pieces the console line renders
// specially and the remaining key=value pairs.
type lineParts struct {
	level     slog.Level
	component string
	show      string
	episode   string
	hint      string
	rest      []field
}

func (p *lineParts) absorb(fields []field) {
	for _, f := range fields {
		switch f.key {
		case FieldComponent:
			p.component = plain(f.value)
		case FieldShowID:
			p.show = plain(f.value)
		case FieldEpisode:
			p.episode = plain(f.value)
		case FieldErrorHint:
			if p.level >= slog.LevelWarn {
				p.hint = plain(f.value)
			}
		case FieldRunID:
			if p.level < slog.LevelInfo {
				p.rest = append(p.rest, f)
			}
		default:
			p.rest = append(p.rest, f)
		}
	}
}

func (p lineParts) subject() string {
	switch {
	case p.show != "" && p.episode != "":
		return "Show #" + p.show + " · Ep " + p.episode
	case p.show != "":
		return "Show #" + p.show
	case p.episode != "":
		return "Ep " + p.episode
	}
	return ""
}

func appendFields(dst []field, prefix string, attrs []slog.Attr) []field {
	for _, attr := range attrs {
		if attr.Equal(slog.Attr{}) {
			continue
		}
		value := attr.Value.Resolve()
		if value.Kind() == slog.KindGroup {
			inner := prefix
			if attr.Key != "" {
				inner = prefix + attr.Key + "."
			}
			dst = appendFields(dst, inner, value.Group())
			continue
		}
		dst = append(dst, field{key: prefix + attr.Key, value: value})
	}
	return dst
}

// lastWins drops earlier duplicates of a key, keeping the position of the
// first occurrence and the value of the last.
func lastWins(fields []field) []field {
	pos := make(map[string]int, len(fields))
	out := fields[:0:0]
	for _, f := range fields {
		if i, ok := pos[f.key]; ok {
			out[i] = f
			continue
		}
		pos[f.key] = len(out)
		out = append(out, f)
	}
	return out
}

func plain(v slog.Value) string {
	if v.Kind() == slog.KindString {
		return v.String()
	}
	return strings.Trim(renderValue(v), `"`)
}

func renderValue(v slog.Value) string {
	var s string
	switch v.Kind() {
	case slog.KindString:
		s = v.String()
	case slog.KindTime:
		return v.Time().UTC().Format(time.RFC3339)
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			s = err.Error()
		} else {
			s = fmt.Sprint(v.Any())
		}
	default:
		return v.String()
	}
	if s == "" || strings.ContainsAny(s, " \t\n\"=") {
		return strconv.Quote(s)
	}
	return s
}

func levelName(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	}
	return "DEBUG"
}
