// Package reporting records battle events of a simulation run and prints a
// colored event stream and an end of run summary.
package reporting

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"

	"github.com/picogrid/legion-battalions/pkg/engine"
	"github.com/picogrid/legion-battalions/pkg/logger"
)

// Event types
const (
	EventTypeSpawn     = "spawn"
	EventTypeFormation = "formation"
	EventTypeCasualty  = "casualty"
	EventTypeCapture   = "capture"
	EventTypeDepleted  = "depleted"
	EventTypeRange     = "range"
	EventTypeStatus    = "status"
	EventTypeSystem    = "system"
)

// Severity constants
const (
	SeverityDebug   = "debug"
	SeverityInfo    = "info"
	SeverityWarning = "warning"
	SeverityError   = "error"
)

const maxEvents = 10000

var (
	colorDebug   = color.New(color.FgHiBlack)
	colorInfo    = color.New(color.FgCyan)
	colorWarning = color.New(color.FgYellow)
	colorError   = color.New(color.FgRed)
	colorSuccess = color.New(color.FgGreen)

	playerColors = []*color.Color{
		color.New(color.FgBlue, color.Bold),
		color.New(color.FgRed, color.Bold),
		color.New(color.FgGreen, color.Bold),
		color.New(color.FgMagenta, color.Bold),
	}
)

// Event is one recorded battle event
type Event struct {
	Timestamp time.Time
	Tick      int
	Type      string
	Severity  string
	Player    string
	Entity    engine.EntityID
	Message   string
	Details   map[string]interface{}
}

// Metric is the latest value of a tracked quantity
type Metric struct {
	Name        string
	Value       float64
	Unit        string
	LastUpdated time.Time
}

// Summary aggregates a run
type Summary struct {
	RunID        string
	StartTime    time.Time
	Duration     time.Duration
	TotalEvents  int
	EventCounts  map[string]int
	PlayerEvents map[string]map[string]int
	Metrics      map[string]Metric
}

// Reporter records events and echoes them to its writer
type Reporter struct {
	runID     string
	startTime time.Time
	out       io.Writer
	quiet     bool
	players   map[string]*color.Color

	mu      sync.RWMutex
	tick    int
	events  []Event
	metrics map[string]Metric
}

// NewReporter creates a reporter with a fresh run id writing to stdout
func NewReporter() *Reporter {
	return NewReporterWithWriter(os.Stdout)
}

// NewReporterWithWriter creates a reporter writing to w
func NewReporterWithWriter(w io.Writer) *Reporter {
	return &Reporter{
		runID:     uuid.New().String(),
		startTime: time.Now(),
		out:       w,
		players:   make(map[string]*color.Color),
		metrics:   make(map[string]Metric),
	}
}

// RunID returns the id of this run
func (r *Reporter) RunID() string {
	return r.runID
}

// SetQuiet stops echoing events; they are still recorded
func (r *Reporter) SetQuiet(quiet bool) {
	r.mu.Lock()
	r.quiet = quiet
	r.mu.Unlock()
}

// SetTick stamps subsequent events with tick
func (r *Reporter) SetTick(tick int) {
	r.mu.Lock()
	r.tick = tick
	r.mu.Unlock()
}

// LogSpawn records a battalion receiving its roster
func (r *Reporter) LogSpawn(player string, leader engine.EntityID, template string, units int) {
	r.record(Event{
		Type:     EventTypeSpawn,
		Severity: SeverityInfo,
		Player:   player,
		Entity:   leader,
		Message:  fmt.Sprintf("Battalion %d raised %d x %s", leader, units, template),
		Details:  map[string]interface{}{"template": template, "units": units},
	})
}

// LogFormation records a battalion binding its formation controller
func (r *Reporter) LogFormation(player string, leader, formation engine.EntityID, members int) {
	r.record(Event{
		Type:     EventTypeFormation,
		Severity: SeverityInfo,
		Player:   player,
		Entity:   leader,
		Message:  fmt.Sprintf("%s Battalion %d formed up as %d with %d members", logger.IconFormation, leader, formation, members),
		Details:  map[string]interface{}{"formation": formation, "members": members},
	})
}

// LogCasualty records the death of a member
func (r *Reporter) LogCasualty(player string, leader, member engine.EntityID, remaining int) {
	r.record(Event{
		Type:     EventTypeCasualty,
		Severity: SeverityWarning,
		Player:   player,
		Entity:   member,
		Message:  fmt.Sprintf("%s Unit %d of battalion %d fell, %d left", logger.IconSkull, member, leader, remaining),
		Details:  map[string]interface{}{"leader": leader, "remaining": remaining},
	})
}

// LogCapture records a member changing sides
func (r *Reporter) LogCapture(player, captor string, leader, member engine.EntityID, remaining int) {
	r.record(Event{
		Type:     EventTypeCapture,
		Severity: SeverityWarning,
		Player:   player,
		Entity:   member,
		Message: fmt.Sprintf("%s Unit %d of battalion %d captured by %s, %d left",
			logger.IconFlag, member, leader, r.playerColor(captor).Sprint(captor), remaining),
		Details: map[string]interface{}{"leader": leader, "captor": captor, "remaining": remaining},
	})
}

// LogDepleted records a battalion losing its last member
func (r *Reporter) LogDepleted(player string, leader engine.EntityID) {
	r.record(Event{
		Type:     EventTypeDepleted,
		Severity: SeverityWarning,
		Player:   player,
		Entity:   leader,
		Message:  fmt.Sprintf("%s Battalion %d has no members left, leader unshielded", logger.IconShield, leader),
	})
}

// LogRange records the aggregated engagement answers of a formation
func (r *Reporter) LogRange(player string, leader engine.EntityID, rng engine.Range, preference int, hasPreference, asFormation bool) {
	maxRange := "unbounded"
	if rng.Bounded() {
		maxRange = fmt.Sprintf("%.1f", rng.Max)
	}
	pref := "none"
	if hasPreference {
		pref = fmt.Sprintf("%d", preference)
	}
	r.record(Event{
		Type:     EventTypeRange,
		Severity: SeverityDebug,
		Player:   player,
		Entity:   leader,
		Message: fmt.Sprintf("%s Battalion %d range %.1f-%s preference %s formation attack %t",
			logger.IconSword, leader, rng.Min, maxRange, pref, asFormation),
		Details: map[string]interface{}{
			"min":            rng.Min,
			"max":            rng.Max,
			"preference":     pref,
			"as_formation":   asFormation,
			"has_preference": hasPreference,
		},
	})
}

// LogStatus records the strength of a player
func (r *Reporter) LogStatus(player string, battalions, members, lost int) {
	r.record(Event{
		Type:     EventTypeStatus,
		Severity: SeverityInfo,
		Player:   player,
		Message:  fmt.Sprintf("%d battalions, %d members, %d lost", battalions, members, lost),
		Details:  map[string]interface{}{"battalions": battalions, "members": members, "lost": lost},
	})
}

// LogError records an error
func (r *Reporter) LogError(message string, err error) {
	r.record(Event{
		Type:     EventTypeSystem,
		Severity: SeverityError,
		Message:  fmt.Sprintf("%s: %v", message, err),
		Details:  map[string]interface{}{"error": err.Error()},
	})
}

// UpdateMetric sets a metric value
func (r *Reporter) UpdateMetric(name string, value float64, unit string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.metrics[name] = Metric{Name: name, Value: value, Unit: unit, LastUpdated: time.Now()}
}

// Events returns a copy of the recorded events
func (r *Reporter) Events() []Event {
	r.mu.RLock()
	defer r.mu.RUnlock()
	events := make([]Event, len(r.events))
	copy(events, r.events)
	return events
}

// EventsOfType returns the recorded events of one type
func (r *Reporter) EventsOfType(eventType string) []Event {
	var events []Event
	for _, e := range r.Events() {
		if e.Type == eventType {
			events = append(events, e)
		}
	}
	return events
}

func (r *Reporter) record(event Event) {
	r.mu.Lock()
	event.Timestamp = time.Now()
	event.Tick = r.tick
	r.events = append(r.events, event)
	if len(r.events) > maxEvents {
		r.events = r.events[len(r.events)-maxEvents:]
	}
	quiet := r.quiet
	r.mu.Unlock()

	if !quiet {
		r.print(event)
	}
}

func (r *Reporter) print(event Event) {
	var severityColor *color.Color
	switch event.Severity {
	case SeverityDebug:
		if logger.GetLevel() > logger.DebugLevel {
			return
		}
		severityColor = colorDebug
	case SeverityWarning:
		severityColor = colorWarning
	case SeverityError:
		severityColor = colorError
	default:
		severityColor = colorInfo
	}

	player := ""
	if event.Player != "" {
		player = r.playerColor(event.Player).Sprint(event.Player) + " | "
	}
	_, _ = fmt.Fprintf(r.out, "[tick %3d] %s %s%s\n",
		event.Tick,
		severityColor.Sprint(fmt.Sprintf("%-8s", event.Severity)),
		player,
		event.Message)
}

// playerColor assigns colors to players in order of first appearance
func (r *Reporter) playerColor(player string) *color.Color {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.players[player]
	if !ok {
		c = playerColors[len(r.players)%len(playerColors)]
		r.players[player] = c
	}
	return c
}

// GetSummary aggregates the recorded events
func (r *Reporter) GetSummary() Summary {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[string]int)
	perPlayer := make(map[string]map[string]int)
	for _, e := range r.events {
		counts[e.Type]++
		if e.Player == "" {
			continue
		}
		if perPlayer[e.Player] == nil {
			perPlayer[e.Player] = make(map[string]int)
		}
		perPlayer[e.Player][e.Type]++
	}

	metrics := make(map[string]Metric, len(r.metrics))
	for k, v := range r.metrics {
		metrics[k] = v
	}

	return Summary{
		RunID:        r.runID,
		StartTime:    r.startTime,
		Duration:     time.Since(r.startTime),
		TotalEvents:  len(r.events),
		EventCounts:  counts,
		PlayerEvents: perPlayer,
		Metrics:      metrics,
	}
}

// PrintSummary prints a formatted summary
func (r *Reporter) PrintSummary() {
	summary := r.GetSummary()
	rule := strings.Repeat("=", 56)

	_, _ = colorSuccess.Fprintln(r.out, "\n"+rule)
	_, _ = colorSuccess.Fprintf(r.out, "  BATTLE SUMMARY - %s\n", summary.RunID[:8])
	_, _ = colorSuccess.Fprintln(r.out, rule)

	_, _ = fmt.Fprintf(r.out, "\n%s Duration: %v | Total Events: %d\n",
		logger.IconTime, summary.Duration.Round(time.Millisecond), summary.TotalEvents)

	_, _ = fmt.Fprintln(r.out, "\nEvent Distribution:")
	for _, eventType := range sortedKeys(summary.EventCounts) {
		_, _ = fmt.Fprintf(r.out, "   %-12s: %d\n", eventType, summary.EventCounts[eventType])
	}

	_, _ = fmt.Fprintln(r.out, "\nPlayers:")
	players := make([]string, 0, len(summary.PlayerEvents))
	for p := range summary.PlayerEvents {
		players = append(players, p)
	}
	sort.Strings(players)
	for _, p := range players {
		_, _ = fmt.Fprintf(r.out, "\n   %s:\n", r.playerColor(p).Sprint(p))
		for _, eventType := range sortedKeys(summary.PlayerEvents[p]) {
			_, _ = fmt.Fprintf(r.out, "      %-10s: %d\n", eventType, summary.PlayerEvents[p][eventType])
		}
	}

	if len(summary.Metrics) > 0 {
		_, _ = fmt.Fprintln(r.out, "\nMetrics:")
		names := make([]string, 0, len(summary.Metrics))
		for name := range summary.Metrics {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			m := summary.Metrics[name]
			_, _ = fmt.Fprintf(r.out, "   %-20s: %.2f %s\n", name, m.Value, m.Unit)
		}
	}

	_, _ = colorSuccess.Fprintln(r.out, rule)
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
