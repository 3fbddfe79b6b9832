package logs

import (
	"encoding/json"
	"log/slog"
	"strings"

	"vistopia/internal/logging"
)

// Filter narrows JSON log lines to a minimum level and, optionally, one show.
// The zero Filter keeps every line.
type Filter struct {
	MinLevel string
	ShowID   int64
}

func (f Filter) empty() bool {
	return strings.TrimSpace(f.MinLevel) == "" && f.ShowID == 0
}

// Match reports whether line passes the filter. Lines that are not JSON
// records only pass an empty filter.
func (f Filter) Match(line string) bool {
	if f.empty() {
		return true
	}
	var record struct {
		Level  string `json:"level"`
		ShowID *int64 `json:"show_id"`
	}
	if err := json.Unmarshal([]byte(line), &record); err != nil {
		return false
	}
	if strings.TrimSpace(f.MinLevel) != "" && levelOf(record.Level) < logging.ParseLevel(f.MinLevel) {
		return false
	}
	if f.ShowID != 0 && (record.ShowID == nil || *record.ShowID != f.ShowID) {
		return false
	}
	return true
}

func levelOf(name string) slog.Level {
	if strings.TrimSpace(name) == "" {
		return slog.LevelInfo
	}
	return logging.ParseLevel(name)
}
