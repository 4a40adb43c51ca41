package visualization

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"slices"
	"strings"

	"github.com/anggasct/signalgrid"
)

// DOTGenerator generates Graphviz DOT representations of the signal cycle
// and of a fleet snapshot
type DOTGenerator struct {
	options DOTOptions
}

// DOTOptions configures the DOT generation
type DOTOptions struct {
	ShowTimers       bool
	ShowCounts       bool
	ShowDecisions    bool
	PinCoordinates   bool    // emit pos="x,y!" for neato/fdp layouts
	CoordinateScale  float64 // map units per inch
	RankDirection    string  // "TB", "LR", "BT", "RL"
	NodeShape        string
	OfflineStyle     string
	EmergencyPenSize int
}

// DefaultDOTOptions returns sensible default options for DOT generation
func DefaultDOTOptions() DOTOptions {
	return DOTOptions{
		ShowTimers:       true,
		ShowCounts:       true,
		ShowDecisions:    false,
		PinCoordinates:   true,
		CoordinateScale:  10,
		RankDirection:    "LR",
		NodeShape:        "box",
		OfflineStyle:     "dashed,filled",
		EmergencyPenSize: 3,
	}
}

// NewDOTGenerator creates a new DOT generator
func NewDOTGenerator(options ...DOTOptions) *DOTGenerator {
	opts := DefaultDOTOptions()
	if len(options) > 0 {
		opts = options[0]
	}
	if opts.CoordinateScale <= 0 {
		opts.CoordinateScale = 1
	}

	return &DOTGenerator{
		options: opts,
	}
}

// phaseColor is the fill color of a phase
func phaseColor(p signalgrid.Phase) string {
	switch p {
	case signalgrid.PhaseGreen:
		return "palegreen"
	case signalgrid.PhaseAmber:
		return "gold"
	case signalgrid.PhaseRed:
		return "lightcoral"
	default:
		return "lightgray"
	}
}

// GenerateCycle creates a DOT representation of the natural phase cycle
func (g *DOTGenerator) GenerateCycle() string {
	var dot strings.Builder

	dot.WriteString("digraph PhaseCycle {\n")
	dot.WriteString(fmt.Sprintf("  rankdir=%s;\n", g.options.RankDirection))
	dot.WriteString("  node [shape=circle style=filled];\n")
	dot.WriteString("  edge [fontsize=10];\n\n")

	dot.WriteString("  // Phases\n")
	for _, t := range signalgrid.Cycle() {
		dot.WriteString(fmt.Sprintf("  \"%s\" [fillcolor=%s];\n", t.Source, phaseColor(t.Source)))
	}

	dot.WriteString("  // Transitions\n")
	for _, t := range signalgrid.Cycle() {
		dot.WriteString(fmt.Sprintf("  \"%s\" -> \"%s\" [label=\"timer expired\\n%ds\"];\n", t.Source, t.Target, t.Duration))
	}

	dot.WriteString("}\n")
	return dot.String()
}

// GenerateFleet creates a DOT representation of a fleet snapshot, one node
// per intersection ordered by id
func (g *DOTGenerator) GenerateFleet(fleet []signalgrid.Intersection) (string, error) {
	ordered := slices.Clone(fleet)
	slices.SortFunc(ordered, func(a, b signalgrid.Intersection) int { return a.ID - b.ID })

	var dot strings.Builder
	dot.WriteString("graph Fleet {\n")
	dot.WriteString(fmt.Sprintf("  node [shape=%s];\n\n", g.options.NodeShape))
	dot.WriteString("  // Intersections\n")

	for i, in := range ordered {
		if i > 0 && ordered[i-1].ID == in.ID {
			return "", fmt.Errorf("failed to generate fleet: duplicate intersection id %d", in.ID)
		}
		g.generateIntersectionNode(&dot, in)
	}

	dot.WriteString("}\n")
	return dot.String(), nil
}

// generateIntersectionNode generates a DOT node for a single intersection
func (g *DOTGenerator) generateIntersectionNode(dot *strings.Builder, in signalgrid.Intersection) {
	lines := []string{escape(in.Name), strings.ToUpper(string(in.Phase))}
	if g.options.ShowTimers {
		lines[1] += fmt.Sprintf(" %d/%ds", in.Timer, in.PhaseBudget)
	}
	if g.options.ShowCounts {
		lines = append(lines, fmt.Sprintf("queue %d (%s) vehicles %d", in.QueueLength, signalgrid.ClassifyCongestion(in.QueueLength), in.TotalVehicles()))
	}
	if g.options.ShowDecisions && in.LastDecisionLabel != "" {
		lines = append(lines, escape(in.LastDecisionLabel))
	}
	if !in.Online() {
		lines = append(lines, "["+string(in.Status)+"]")
	}

	style := "filled"
	if !in.Online() {
		style = g.options.OfflineStyle
	}

	attrs := []string{
		fmt.Sprintf("label=\"%s\"", strings.Join(lines, "\\n")),
		fmt.Sprintf("style=\"%s\"", style),
		fmt.Sprintf("fillcolor=%s", phaseColor(in.Phase)),
	}
	if in.EmergencyVehiclePresent {
		attrs = append(attrs, "color=red", fmt.Sprintf("penwidth=%d", g.options.EmergencyPenSize))
	}
	if g.options.PinCoordinates {
		scale := g.options.CoordinateScale
		attrs = append(attrs, fmt.Sprintf("pos=\"%g,%g!\"", in.Coordinates.X/scale, in.Coordinates.Y/scale))
	}

	dot.WriteString(fmt.Sprintf("  \"%d\" [%s];\n", in.ID, strings.Join(attrs, " ")))
}

// escape quotes a string for use inside a DOT label
func escape(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}

// WriteFile writes DOT content to a file
func WriteFile(filename, content string) error {
	return os.WriteFile(filename, []byte(content), 0644)
}

// RenderSVG converts DOT content to SVG by calling Graphviz. engine selects
// the layout program; use "neato" for fleets with pinned coordinates.
func RenderSVG(engine, content string) (string, error) {
	if engine == "" {
		engine = "dot"
	}
	cmd := exec.Command(engine, "-Tsvg")
	cmd.Stdin = strings.NewReader(content)

	var out bytes.Buffer
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("failed to execute %s command: %w (make sure Graphviz is installed)", engine, err)
	}

	return out.String(), nil
}
