// Package debug provides category-based debug logging for the alchemy client
// and its binaries.
//
// What is logged is chosen by category (ALCHEMY_DEBUG, comma separated) and
// how much by level (ALCHEMY_LOG_LEVEL). At TRACE, raw request parameters
// (with the API key redacted) and raw response bodies are written to stderr.
//
//	debug.Log("client", "request", "path", path)
//	if debug.Enabled("client") { /* expensive formatting */ }
//
// Categories: client, config, mock, cli, all.
// Levels: ERROR, WARN, INFO, DEBUG, TRACE.
package debug

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"unicode/utf8"
)

// LevelTrace is below slog.LevelDebug for maximum verbosity.
const LevelTrace = slog.LevelDebug - 4

// Settings configures Init. Environment variables take precedence.
type Settings struct {
	Categories string // comma separated
	Level      string // TRACE, DEBUG, INFO, WARN, ERROR
	Format     string // "text" (default) or "json"
}

// categories is replaced wholesale by Init and only read afterwards.
var categories map[string]bool

// rawOut receives Raw output.
var rawOut io.Writer = os.Stderr

func init() {
	categories = parseCategories(os.Getenv("ALCHEMY_DEBUG"))
}

// Init installs the default slog logger and the enabled categories.
func Init(s Settings) {
	cats := os.Getenv("ALCHEMY_DEBUG")
	if cats == "" {
		cats = s.Categories
	}
	categories = parseCategories(cats)

	level := os.Getenv("ALCHEMY_LOG_LEVEL")
	if level == "" {
		level = s.Level
	}

	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	var h slog.Handler
	if strings.EqualFold(s.Format, "json") {
		h = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		h = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(h))
}

// Enabled reports whether the category is active.
func Enabled(category string) bool {
	return categories["all"] || categories[category]
}

// Log emits a debug-level record tagged with the category.
func Log(category, msg string, args ...any) {
	if !Enabled(category) {
		return
	}
	slog.Debug(msg, append([]any{"debug", category}, args...)...)
}

// Trace emits a trace-level record tagged with the category.
func Trace(category, msg string, args ...any) {
	if !Enabled(category) {
		return
	}
	slog.Log(context.Background(), LevelTrace, msg, append([]any{"debug", category}, args...)...)
}

// TraceIsEnabled reports whether the category is active at TRACE level.
func TraceIsEnabled(category string) bool {
	return Enabled(category) && slog.Default().Enabled(context.Background(), LevelTrace)
}

// Raw writes text unformatted, for copy-paste-ready bodies. Only emitted at
// TRACE for an enabled category.
func Raw(category, text string) {
	if !TraceIsEnabled(category) {
		return
	}
	fmt.Fprintln(rawOut, text)
}

// ParseLevel converts a level name to a slog.Level. Unknown names map to INFO.
func ParseLevel(s string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRACE":
		return LevelTrace
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Categories returns the enabled categories, sorted.
func Categories() []string {
	out := make([]string, 0, len(categories))
	for k := range categories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Truncate shortens s to at most maxLen bytes, appending "..." when cut.
// The cut never splits a UTF-8 sequence.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

func parseCategories(s string) map[string]bool {
	m := make(map[string]bool)
	for _, cat := range strings.Split(s, ",") {
		cat = strings.ToLower(strings.TrimSpace(cat))
		if cat != "" {
			m[cat] = true
		}
	}
	return m
}
