package main

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/anggasct/signalgrid"
	"github.com/anggasct/signalgrid/pkg/observers"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))
	alertStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF5F87"))

	phaseStyles = map[signalgrid.Phase]lipgloss.Style{
		signalgrid.PhaseGreen: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#04B575")),
		signalgrid.PhaseAmber: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFB86C")),
		signalgrid.PhaseRed:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF5555")),
	}
)

// table renders rows with columns sized to their widest cell
type table struct {
	headers []string
	rows    [][]string
}

func (t *table) add(cells ...string) {
	t.rows = append(t.rows, cells)
}

func (t *table) render() string {
	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], lipgloss.Width(cell))
			}
		}
	}
	// Width includes padding
	for i := range widths {
		widths[i] += 2
	}

	var sb strings.Builder
	for i, h := range t.headers {
		sb.WriteString(headerStyle.Width(widths[i]).Render(h))
	}
	sb.WriteString("\n")
	for i := range widths {
		sb.WriteString(mutedStyle.Render(strings.Repeat("─", widths[i])))
	}
	for _, row := range t.rows {
		sb.WriteString("\n")
		for i, cell := range row {
			if i < len(widths) {
				sb.WriteString(cellStyle.Width(widths[i]).Render(cell))
			}
		}
	}
	return sb.String()
}

// renderPhase renders a phase name in its signal color
func renderPhase(p signalgrid.Phase) string {
	style, ok := phaseStyles[p]
	if !ok {
		return string(p)
	}
	return style.Render(strings.ToUpper(string(p)))
}

// renderSummary renders the one-line fleet overview
func renderSummary(s signalgrid.FleetSummary) string {
	flags := []string{"mode " + string(s.Mode.Control)}
	if s.Mode.EmergencyActive {
		flags = append(flags, alertStyle.Render("EMERGENCY"))
	}
	if s.Mode.PeakHourActive {
		flags = append(flags, "peak hour")
	}
	if s.Mode.EventModeActive {
		flags = append(flags, "event mode")
	}

	parts := []string{
		titleStyle.Render(fmt.Sprintf("tick %d", s.Ticks)),
		strings.Join(flags, ", "),
		fmt.Sprintf("%d/%d online", s.Online, s.Intersections),
		fmt.Sprintf("%d vehicles", s.TotalVehicles),
		fmt.Sprintf("queue %d", s.TotalQueue),
		fmt.Sprintf("confidence %.1f%%", s.AverageConfidence),
	}
	if s.Emergencies > 0 {
		parts = append(parts, alertStyle.Render(fmt.Sprintf("%d emergency", s.Emergencies)))
	}
	return strings.Join(parts, mutedStyle.Render(" │ "))
}

// renderFleet renders one row per intersection
func renderFleet(fleet []signalgrid.Intersection) string {
	t := &table{headers: []string{"ID", "INTERSECTION", "PHASE", "TIMER", "QUEUE", "VEHICLES", "STATUS", "LAST DECISION"}}
	for _, in := range fleet {
		status := string(in.Status)
		if in.EmergencyVehiclePresent {
			status += " " + alertStyle.Render("!")
		}
		t.add(
			fmt.Sprint(in.ID),
			in.Name,
			renderPhase(in.Phase),
			fmt.Sprintf("%d/%ds", in.Timer, in.PhaseBudget),
			fmt.Sprintf("%d %s", in.QueueLength, in.Congestion),
			fmt.Sprint(in.TotalVehicles()),
			status,
			fmt.Sprintf("%s (%d%%)", in.LastDecisionLabel, in.Confidence),
		)
	}
	return t.render()
}

// renderDecisions renders decision log entries, newest first
func renderDecisions(decisions []signalgrid.Decision) string {
	if len(decisions) == 0 {
		return mutedStyle.Render("no decisions yet")
	}
	t := &table{headers: []string{"SEQ", "TIME", "ID", "TYPE", "ACTION", "CONF", "REASON"}}
	for _, d := range decisions {
		reason := d.Reason
		if d.Operator != "" {
			reason += " by " + d.Operator
		}
		t.add(
			fmt.Sprint(d.Seq),
			d.Timestamp.Format("15:04:05"),
			fmt.Sprint(d.IntersectionID),
			string(d.Type),
			string(d.Action),
			fmt.Sprintf("%d%%", d.Confidence),
			reason,
		)
	}
	return t.render()
}

// printMetrics writes the counters collected during a run
func printMetrics(out io.Writer, m *observers.MetricsObserver) {
	fmt.Fprintln(out, titleStyle.Render("run metrics"))
	fmt.Fprintf(out, "ticks %d, decisions %d, emergencies %d, errors %d, average confidence %.1f%%\n",
		m.GetTickCount(), m.GetDecisionCount(), m.GetEmergencyCount(), m.GetErrorCount(), m.GetAverageConfidence())

	writeCounts(out, "actions", m.GetActionCounts())
	writeCounts(out, "decision types", m.GetDecisionTypeCounts())
	writeCounts(out, "transitions", m.GetTransitionCounts())
	writeCounts(out, "suppressed", m.GetSuppressionCounts())
}

func writeCounts[K ~string](out io.Writer, label string, counts map[K]int) {
	if len(counts) == 0 {
		return
	}
	keys := slices.Sorted(maps.Keys(counts))
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d", k, counts[k]))
	}
	fmt.Fprintf(out, "%s %s\n", mutedStyle.Render(label+":"), strings.Join(parts, " "))
}
