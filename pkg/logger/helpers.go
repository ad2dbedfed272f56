package logger

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
)

// Icons and symbols for different log types
const (
	IconSuccess   = "✅"
	IconError     = "❌"
	IconWarning   = "⚠️"
	IconInfo      = "ℹ️"
	IconRocket    = "🚀"
	IconConfig    = "⚙️"
	IconTime      = "⏱️"
	IconFolder    = "📁"
	IconRefresh   = "🔄"
	IconSword     = "⚔️"
	IconShield    = "🛡️"
	IconFlag      = "🚩"
	IconSkull     = "💀"
	IconFormation = "🔲"
	IconCheck     = "✓"
	IconCross     = "✗"
	IconDot       = "•"
	IconArrow     = "→"
)

var (
	sectionColor    = color.New(color.FgCyan, color.Bold)
	sectionRule     = color.New(color.FgCyan)
	subsectionColor = color.New(color.FgHiBlack)
	keyColor        = color.New(color.FgCyan)
)

// Success logs a success message with a green checkmark
func Success(args ...interface{}) {
	defaultLogger.Info(IconSuccess + " " + fmt.Sprint(args...))
}

// Successf logs a formatted success message
func Successf(format string, args ...interface{}) {
	Success(fmt.Sprintf(format, args...))
}

// Progress logs a progress message with a refresh icon
func Progress(args ...interface{}) {
	defaultLogger.Info(IconRefresh + " " + fmt.Sprint(args...))
}

// Progressf logs a formatted progress message
func Progressf(format string, args ...interface{}) {
	Progress(fmt.Sprintf(format, args...))
}

// Combatf logs a formatted combat event
func Combatf(format string, args ...interface{}) {
	defaultLogger.Info(IconSword + " " + fmt.Sprintf(format, args...))
}

func helperOutput() (io.Writer, bool) {
	out := defaultOutput()
	out.mu.Lock()
	defer out.mu.Unlock()
	return out.writer, out.noColor
}

func rule(title, char string, width int, titleColor, lineColor *color.Color) {
	w, noColor := helperOutput()
	line := strings.Repeat(char, width)
	_, _ = fmt.Fprintln(w, paint(lineColor, noColor, line))
	_, _ = fmt.Fprintln(w, paint(titleColor, noColor, title))
	_, _ = fmt.Fprintln(w, paint(lineColor, noColor, line))
}

// LogSection creates a visual section separator
func LogSection(title string) {
	rule(title, "=", 50, sectionColor, sectionRule)
}

// LogSubSection creates a visual subsection separator
func LogSubSection(title string) {
	rule(title, "-", 40, subsectionColor, subsectionColor)
}

// LogList logs a list of items with bullets
func LogList(title string, items []string) {
	Info(title)
	w, _ := helperOutput()
	for _, item := range items {
		_, _ = fmt.Fprintf(w, "  %s %s\n", IconDot, item)
	}
}

// LogKeyValue logs a key-value pair with nice formatting
func LogKeyValue(key string, value interface{}) {
	w, noColor := helperOutput()
	_, _ = fmt.Fprintf(w, "%s %v\n", paint(keyColor, noColor, key+":"), value)
}

// LogKeyValues logs multiple key-value pairs in key order
func LogKeyValues(pairs map[string]interface{}) {
	keys := make([]string, 0, len(pairs))
	for k := range pairs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		LogKeyValue(k, pairs[k])
	}
}

// Table represents a simple table for logging
type Table struct {
	headers []string
	rows    [][]string
}

// NewTable creates a new table
func NewTable(headers ...string) *Table {
	return &Table{
		headers: headers,
		rows:    [][]string{},
	}
}

// AddRow adds a row to the table
func (t *Table) AddRow(values ...string) {
	t.rows = append(t.rows, values)
}

// Print prints the table to the logger output
func (t *Table) Print() {
	w, _ := helperOutput()
	t.Fprint(w)
}

// Fprint writes the table to w
func (t *Table) Fprint(w io.Writer) {
	if len(t.headers) == 0 {
		return
	}

	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = len(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var b strings.Builder
	for i, h := range t.headers {
		fmt.Fprintf(&b, "%-*s  ", widths[i], h)
	}
	b.WriteString("\n")
	for i := range t.headers {
		b.WriteString(strings.Repeat("-", widths[i]) + "  ")
	}
	b.WriteString("\n")
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) {
				fmt.Fprintf(&b, "%-*s  ", widths[i], cell)
			}
		}
		b.WriteString("\n")
	}
	_, _ = io.WriteString(w, b.String())
}
