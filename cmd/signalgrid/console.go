package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/anggasct/signalgrid"
)

// execCommand runs one operator console command and returns its output
func execCommand(ctx context.Context, c *signalgrid.Controller, line string) (string, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil
	}

	switch cmd, args := strings.ToLower(fields[0]), fields[1:]; cmd {
	case "force":
		if len(args) < 2 {
			return "", fmt.Errorf("usage: force <id> <red|amber|green> [operator]")
		}
		id, err := parseID(args[0])
		if err != nil {
			return "", err
		}
		phase, err := signalgrid.ParsePhase(args[1])
		if err != nil {
			return "", err
		}
		operator := signalgrid.DefaultOperator
		if len(args) > 2 {
			operator = strings.Join(args[2:], " ")
		}
		out, err := c.ForceSignal(ctx, id, phase, operator)
		if err != nil {
			return "", err
		}
		return describeOutcome(out), nil

	case "decide":
		if len(args) != 1 {
			return "", fmt.Errorf("usage: decide <id>")
		}
		id, err := parseID(args[0])
		if err != nil {
			return "", err
		}
		out, err := c.ApplyAIDecision(ctx, id)
		if err != nil {
			return "", err
		}
		return describeOutcome(out), nil

	case "mode":
		if len(args) != 1 {
			return "", fmt.Errorf("usage: mode <auto|semi|manual>")
		}
		mode, err := signalgrid.ParseControlMode(args[0])
		if err != nil {
			return "", err
		}
		if err := c.SetControlMode(ctx, mode); err != nil {
			return "", err
		}
		return "control mode " + string(mode), nil

	case "flag":
		if len(args) != 2 {
			return "", fmt.Errorf("usage: flag <emergency|peak_hour|event_mode> <on|off>")
		}
		flag, err := parseFlag(args[0])
		if err != nil {
			return "", err
		}
		on, err := parseSwitch(args[1])
		if err != nil {
			return "", err
		}
		if err := c.SetFlag(ctx, flag, on); err != nil {
			return "", err
		}
		return fmt.Sprintf("%s %s", flag, args[1]), nil

	case "status":
		if len(args) != 2 {
			return "", fmt.Errorf("usage: status <id> <online|offline|maintenance>")
		}
		id, err := parseID(args[0])
		if err != nil {
			return "", err
		}
		status, err := signalgrid.ParseStatus(args[1])
		if err != nil {
			return "", err
		}
		if err := c.SetStatus(ctx, id, status); err != nil {
			return "", err
		}
		return fmt.Sprintf("intersection %d %s", id, status), nil

	case "pause":
		return "paused", c.Pause(ctx)

	case "resume":
		return "resumed", c.Resume(ctx)

	case "tick":
		return "", c.Tick(ctx)

	case "log":
		limit := 10
		if len(args) > 0 {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return "", signalgrid.NewArgumentError("limit", args[0], "must be an integer")
			}
			limit = n
		}
		decisions, err := c.DecisionLog(ctx, limit)
		if err != nil {
			return "", err
		}
		return renderDecisions(decisions), nil

	case "show":
		snap, err := c.Snapshot(ctx)
		if err != nil {
			return "", err
		}
		summary, err := c.Summary(ctx)
		if err != nil {
			return "", err
		}
		return renderSummary(summary) + "\n" + renderFleet(snap), nil

	default:
		return "", fmt.Errorf("unknown command %q", cmd)
	}
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil {
		return 0, signalgrid.NewArgumentError("id", s, "must be an integer")
	}
	return id, nil
}

func parseFlag(s string) (signalgrid.ModeFlag, error) {
	for _, f := range []signalgrid.ModeFlag{signalgrid.FlagEmergency, signalgrid.FlagPeakHour, signalgrid.FlagEventMode} {
		if strings.EqualFold(s, f.String()) {
			return f, nil
		}
	}
	return 0, signalgrid.NewArgumentError("flag", s, "must be one of emergency, peak_hour, event_mode")
}

func parseSwitch(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "true", "1":
		return true, nil
	case "off", "false", "0":
		return false, nil
	}
	return false, signalgrid.NewArgumentError("switch", s, "must be on or off")
}

func describeOutcome(out *signalgrid.Outcome) string {
	if out.Suppressed {
		return fmt.Sprintf("intersection %d: suppressed (%s)", out.IntersectionID, out.SuppressReason)
	}
	d := out.Decision
	return fmt.Sprintf("intersection %d: %s -> %s, %s (%d%%)", out.IntersectionID, out.PreviousPhase, out.CurrentPhase, d.Action, d.Confidence)
}
