// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package log

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
)

// 🎨 Display configuration
const (
	copyIndent = 4 // spaces to indent copy entries
)

// 🎯 CopyEntry represents a file copy for logging
type CopyEntry struct {
	Source      string // Manifest-side file
	Destination string // Repository-side file
	DryRun      bool   // Whether the copy was only planned
	Replaced    bool   // Whether the destination existed before
}

// 🎯 Logger prints user-facing console output and mirrors it to zerolog at debug level
type Logger struct {
	zlog    zerolog.Logger
	console io.Writer
	mu      sync.Mutex
}

// 🏭 New creates a console logger. Structured output goes to the zerolog logger in ctx.
func New(ctx context.Context, console io.Writer) *Logger {
	return &Logger{
		zlog:    *zerolog.Ctx(ctx),
		console: console,
	}
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// 🎯 FromContext gets the logger from context. Without one, output is discarded.
func FromContext(ctx context.Context) *Logger {
	logger, ok := ctx.Value(contextKey{}).(*Logger)
	if !ok {
		return New(ctx, io.Discard)
	}
	return logger
}

// 🎯 NewContext adds the logger to context
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// 📝 formatCopy formats a copy entry for display
func (l *Logger) formatCopy(entry CopyEntry) string {
	var symbol rune
	var symbolColor color.Attribute
	switch {
	case entry.DryRun:
		symbol = '•'
		symbolColor = color.FgCyan
	case entry.Replaced:
		symbol = '⟳'
		symbolColor = color.FgBlue
	default:
		symbol = '✓'
		symbolColor = color.FgGreen
	}

	return fmt.Sprintf("%s%s Copy %s -> %s",
		strings.Repeat(" ", copyIndent),
		color.New(symbolColor).Sprint(string(symbol)),
		entry.Source,
		color.New(color.Bold).Sprint(entry.Destination))
}

// 📝 LogCopy logs a planned or performed copy
func (l *Logger) LogCopy(entry CopyEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	fmt.Fprintln(l.console, l.formatCopy(entry))

	l.zlog.Debug().
		Str("source", entry.Source).
		Str("destination", entry.Destination).
		Bool("dry_run", entry.DryRun).
		Bool("replaced", entry.Replaced).
		Msg("copy")
}

// 📝 Table renders rows under header as an aligned table
func (l *Logger) Table(header []string, rows [][]string) error {
	data := make(pterm.TableData, 0, len(rows)+1)
	data = append(data, header)
	data = append(data, rows...)

	out, err := pterm.DefaultTable.
		WithHasHeader().
		WithSeparator(" | ").
		WithData(data).
		Srender()
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console, strings.TrimRight(out, "\n"))
	return nil
}

// 📝 Println writes a plain line
func (l *Logger) Println(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console, msg)
}

// 📝 LogNewline logs a newline
func (l *Logger) LogNewline() {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console)
}

// 📝 Header logs a header
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	gwmText := color.New(color.Bold, color.FgCyan).Sprint("gwm")
	fmt.Fprintf(l.console, "\n%s %s\n\n", gwmText, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Debug().Str("console", "info").Msg(msg)
}

// 📝 Success logs a success message
func (l *Logger) Success(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "✅ %s\n", color.New(color.FgGreen).Sprint(msg))
	l.zlog.Debug().Str("console", "info").Msg(msg)
}

// 📝 Warning logs a warning message
func (l *Logger) Warning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint(msg))
	l.zlog.Debug().Str("console", "warn").Msg(msg)
}

// 📝 Error logs an error message
func (l *Logger) Error(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "❌ %s\n", color.New(color.FgRed).Sprint(msg))
	l.zlog.Debug().Str("console", "error").Msg(msg)
}

// 📝 Info logs an info message
func (l *Logger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "ℹ️  %s\n", color.New(color.FgCyan).Sprint(msg))
	l.zlog.Debug().Str("console", "info").Msg(msg)
}

// 📝 Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.Info(fmt.Sprintf(format, args...))
}

// 📝 Warningf logs a formatted warning message
func (l *Logger) Warningf(format string, args ...interface{}) {
	l.Warning(fmt.Sprintf(format, args...))
}

// 📝 Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.Error(fmt.Sprintf(format, args...))
}

// 📝 Successf logs a formatted success message
func (l *Logger) Successf(format string, args ...interface{}) {
	l.Success(fmt.Sprintf(format, args...))
}
