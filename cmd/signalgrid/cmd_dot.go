package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/anggasct/signalgrid/visualization"
)

var (
	dotOutput string
	dotSVG    bool
)

// dotCmd exports Graphviz diagrams
var dotCmd = &cobra.Command{
	Use:       "dot <cycle|fleet>",
	Short:     "Export the phase cycle or the fleet layout as Graphviz DOT",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"cycle", "fleet"},
	RunE:      runDot,
}

func init() {
	dotCmd.Flags().StringVarP(&dotOutput, "output", "o", "", "Write to a file instead of stdout")
	dotCmd.Flags().BoolVar(&dotSVG, "svg", false, "Render SVG with Graphviz")
}

func runDot(cmd *cobra.Command, args []string) error {
	gen := visualization.NewDOTGenerator()

	var content, engine string
	switch args[0] {
	case "cycle":
		content, engine = gen.GenerateCycle(), "dot"
	case "fleet":
		fleet, err := cfg.Fleet()
		if err != nil {
			return err
		}
		if content, err = gen.GenerateFleet(fleet); err != nil {
			return err
		}
		engine = "neato"
	}

	if dotSVG {
		svg, err := visualization.RenderSVG(engine, content)
		if err != nil {
			return err
		}
		content = svg
	}

	if dotOutput == "" {
		_, err := fmt.Fprint(cmd.OutOrStdout(), content)
		return err
	}
	if err := visualization.WriteFile(dotOutput, content); err != nil {
		return err
	}
	logger.Info("diagram written", "path", dotOutput, "kind", args[0])
	return nil
}
