package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/anggasct/signalgrid"
	"github.com/anggasct/signalgrid/pkg/observers"
)

var (
	runDuration    time.Duration
	reportInterval time.Duration
	runConsole     bool
	runValidate    bool
)

// runCmd starts the control loop
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the control loop until interrupted",
	Long: `Run the control loop with periodic fleet reports.

With --console, operator commands are read from stdin, one per line:
  force <id> <red|amber|green> [operator]   decide <id>
  mode <auto|semi|manual>                   flag <emergency|peak_hour|event_mode> <on|off>
  status <id> <online|offline|maintenance>  pause | resume | tick
  log [n]                                   show`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().DurationVar(&runDuration, "duration", 0, "Stop after this long (0 runs until interrupted)")
	runCmd.Flags().DurationVar(&reportInterval, "report-interval", 5*time.Second, "Interval between fleet reports")
	runCmd.Flags().BoolVar(&runConsole, "console", false, "Read operator commands from stdin")
	runCmd.Flags().BoolVar(&runValidate, "validate", false, "Check phase cycle invariants while running")
}

// newController builds a controller from the loaded configuration
func newController() (*signalgrid.Controller, error) {
	opts, err := cfg.Options()
	if err != nil {
		return nil, err
	}
	opts.Logger = logger
	fleet, err := cfg.Fleet()
	if err != nil {
		return nil, err
	}
	return signalgrid.NewController(fleet, opts)
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if runDuration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, runDuration)
		defer cancel()
	}

	c, err := newController()
	if err != nil {
		return err
	}
	metrics := observers.NewMetricsObserver()
	c.AddObserver(observers.NewDefaultLoggingObserver(logger))
	c.AddObserver(metrics)

	var validation *observers.ValidationObserver
	if runValidate {
		opts, _ := cfg.Options()
		validation = observers.NewValidationObserver(opts.Mode)
		c.AddObserver(validation)
	}

	if err := c.Start(); err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return reportLoop(egCtx, out, c, reportInterval)
	})
	if runConsole {
		lines := scanLines(cmd.InOrStdin())
		eg.Go(func() error {
			return consoleLoop(egCtx, out, c, lines)
		})
	}

	runErr := eg.Wait()
	if err := c.Stop(); err != nil && runErr == nil {
		runErr = err
	}

	printMetrics(out, metrics)
	if validation != nil && validation.HasViolations() {
		for _, v := range validation.GetViolations() {
			logger.Error("invariant violated", "violation", v)
		}
		if runErr == nil {
			runErr = fmt.Errorf("%d invariant violations", len(validation.GetViolations()))
		}
	}
	return runErr
}

// reportLoop prints a fleet table every interval until ctx is done
func reportLoop(ctx context.Context, out io.Writer, c *signalgrid.Controller, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := printReport(ctx, out, c); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
		}
	}
}

func printReport(ctx context.Context, out io.Writer, c *signalgrid.Controller) error {
	snap, err := c.Snapshot(ctx)
	if err != nil {
		return err
	}
	summary, err := c.Summary(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, renderSummary(summary))
	fmt.Fprintln(out, renderFleet(snap))
	return nil
}

// scanLines feeds stdin lines into a channel that is closed at EOF. The
// reading goroutine ends with the process when stdin stays open.
func scanLines(r io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()
	return lines
}

// consoleLoop executes operator commands until ctx is done or input ends
func consoleLoop(ctx context.Context, out io.Writer, c *signalgrid.Controller, lines <-chan string) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			result, err := execCommand(ctx, c, line)
			switch {
			case err != nil:
				fmt.Fprintf(out, "error: %v\n", err)
			case result != "":
				fmt.Fprintln(out, result)
			}
		}
	}
}
