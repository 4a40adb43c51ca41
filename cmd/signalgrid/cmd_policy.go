package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/anggasct/signalgrid"
)

// policyCmd shows the decision rules and what they propose for the fleet
var policyCmd = &cobra.Command{
	Use:   "policy",
	Short: "Show the decision rules and evaluate them against the configured fleet",
	Args:  cobra.NoArgs,
	RunE:  runPolicy,
}

func runPolicy(cmd *cobra.Command, args []string) error {
	fleet, err := cfg.Fleet()
	if err != nil {
		return err
	}
	policy := signalgrid.DefaultPolicy()
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, titleStyle.Render("rules, in priority order"))
	for i, name := range policy.Rules() {
		fmt.Fprintf(out, "  %d. %s\n", i+1, name)
	}
	fmt.Fprintln(out)

	t := &table{headers: []string{"ID", "INTERSECTION", "PHASE", "LOAD", "QUEUE", "RULE", "ACTION", "CONF"}}
	for _, in := range fleet {
		p := policy.Evaluate(in)
		t.add(
			fmt.Sprint(in.ID),
			in.Name,
			renderPhase(in.Phase),
			fmt.Sprint(in.WeightedLoad()),
			fmt.Sprint(in.QueueLength),
			p.Rule,
			string(p.Action),
			fmt.Sprintf("%d%%", p.Confidence),
		)
	}
	fmt.Fprintln(out, t.render())
	return nil
}
