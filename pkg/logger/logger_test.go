package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestLogger(buf *bytes.Buffer, level Level) Logger {
	return NewWithConfig(Config{Level: level, Writer: buf, NoColor: true})
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(&buf, WarnLevel)

	l.Debug("hidden")
	l.Info("hidden")
	l.Warnf("spawned %d of %d", 2, 6)
	l.Error("broken")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, []string{"WARN  spawned 2 of 6", "ERROR broken"}, lines)
}

func TestPrefixAndFields(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(&buf, DebugLevel).
		WithPrefix("battalion").
		WithFields(map[string]interface{}{"tick": 3, "battalion": 7}).
		WithField("attack", "Melee")

	l.Debug("assembled")

	assert.Equal(t, "DEBUG [battalion] attack=Melee battalion=7 tick=3 assembled\n", buf.String())
}

func TestDerivedLoggersShareLevel(t *testing.T) {
	var buf bytes.Buffer
	root := newTestLogger(&buf, InfoLevel)
	child := root.WithPrefix("world")

	root.(*logger).out.level = DebugLevel
	child.Debug("visible")

	assert.Contains(t, buf.String(), "[world] visible")
}

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"debug":   DebugLevel,
		"INFO":    InfoLevel,
		"warning": WarnLevel,
		"warn":    WarnLevel,
		"error":   ErrorLevel,
		"fatal":   FatalLevel,
		"bogus":   InfoLevel,
	}
	for in, expected := range tests {
		assert.Equal(t, expected, ParseLevel(in), in)
	}
}

func TestTable(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable("NAME", "UNITS")
	table.AddRow("units/athen_battalion_spearmen", "6")
	table.AddRow("units/spart_battalion", "12")
	table.Fprint(&buf)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Len(t, lines, 4)
	assert.Equal(t, 32, strings.Index(lines[0], "UNITS"))
	assert.Equal(t, 32, strings.Index(lines[2], "6"))
	assert.Equal(t, 32, strings.Index(lines[3], "12"))
}
