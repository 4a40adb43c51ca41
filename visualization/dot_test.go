package visualization_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anggasct/signalgrid"
	"github.com/anggasct/signalgrid/visualization"
)

func TestCycleGeneration(t *testing.T) {
	dot := visualization.NewDOTGenerator().GenerateCycle()

	assert.Contains(t, dot, "digraph PhaseCycle")
	assert.Contains(t, dot, "rankdir=LR;")
	assert.Contains(t, dot, `"green" -> "amber" [label="timer expired\n5s"]`)
	assert.Contains(t, dot, `"amber" -> "red" [label="timer expired\n30s"]`)
	assert.Contains(t, dot, `"red" -> "green" [label="timer expired\n45s"]`)
	assert.Equal(t, 3, strings.Count(dot, "->"))

	t.Logf("Generated DOT content:\n%s", dot)
}

func TestFleetGeneration(t *testing.T) {
	fleet := signalgrid.DemoFleet()
	fleet[1].Status = signalgrid.StatusOffline
	fleet[0], fleet[3] = fleet[3], fleet[0]

	dot, err := visualization.NewDOTGenerator().GenerateFleet(fleet)
	require.NoError(t, err)

	assert.Contains(t, dot, "graph Fleet")
	assert.Contains(t, dot, `Main St & 1st Ave\nGREEN 45/60s`)
	assert.Contains(t, dot, `pos="3,4!"`)
	assert.Contains(t, dot, "[offline]")
	assert.Contains(t, dot, "dashed,filled")
	assert.Equal(t, 1, strings.Count(dot, "penwidth=3"))
	assert.Less(t, strings.Index(dot, `"1" [`), strings.Index(dot, `"4" [`))

	t.Logf("Generated DOT content:\n%s", dot)
}

func TestFleetGenerationOptions(t *testing.T) {
	opts := visualization.DefaultDOTOptions()
	opts.ShowTimers = false
	opts.ShowCounts = false
	opts.ShowDecisions = true
	opts.PinCoordinates = false

	fleet := []signalgrid.Intersection{{
		ID:                1,
		Name:              `The "Y" junction`,
		Phase:             signalgrid.PhaseAmber,
		Status:            signalgrid.StatusOnline,
		LastDecisionLabel: "EXTEND GREEN",
	}}
	dot, err := visualization.NewDOTGenerator(opts).GenerateFleet(fleet)
	require.NoError(t, err)

	assert.Contains(t, dot, `label="The \"Y\" junction\nAMBER\nEXTEND GREEN"`)
	assert.Contains(t, dot, "fillcolor=gold")
	assert.NotContains(t, dot, "pos=")
	assert.NotContains(t, dot, "queue")
}

func TestFleetGenerationDuplicate(t *testing.T) {
	fleet := signalgrid.DemoFleet()
	fleet = append(fleet, fleet[2])

	_, err := visualization.NewDOTGenerator().GenerateFleet(fleet)
	assert.Error(t, err)
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cycle.dot")
	content := visualization.NewDOTGenerator().GenerateCycle()

	require.NoError(t, visualization.WriteFile(path, content))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, string(data))
}

func TestRenderSVG(t *testing.T) {
	if _, err := exec.LookPath("dot"); err != nil {
		t.Skip("Graphviz not installed")
	}

	svg, err := visualization.RenderSVG("", visualization.NewDOTGenerator().GenerateCycle())
	require.NoError(t, err)
	assert.Contains(t, svg, "<svg")
}
