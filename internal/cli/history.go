package cli

import (
	"fmt"
	"time"

	"cortexprobe/internal/config"
	"cortexprobe/internal/core"
	"cortexprobe/internal/storage"

	"github.com/spf13/cobra"
)

func newHistoryCommand(opts *rootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print recorded probe runs, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			v, err := opts.viper()
			if err != nil {
				return err
			}

			store := storage.InitStorage(config.LoadHistoryConfig(v), opts.logger)
			defer func() { _ = store.Close() }()

			if _, disabled := store.(*core.NopRunStore); disabled {
				_, _ = fmt.Fprintf(out, "Run history is disabled; set %s or %s\n", core.EnvRunHistoryPath, core.EnvRedisURL)
				return nil
			}

			history, err := store.LoadRuns()
			if err != nil {
				return fmt.Errorf("failed to load run history: %w", err)
			}

			runs := history.Runs
			if limit > 0 && len(runs) > limit {
				runs = runs[len(runs)-limit:]
			}
			for _, run := range runs {
				_, _ = fmt.Fprintln(out, formatRun(run))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "number of most recent runs to print; 0 prints all")
	return cmd
}

func formatRun(run core.RunRecord) string {
	line := fmt.Sprintf("%s  %-6s  %-12s  %8s", run.StartedAt.Local().Format(core.TimeFormatDateTime), run.Command, run.Outcome, run.Duration.Round(time.Millisecond))
	switch run.Command {
	case core.CommandSearch:
		line += fmt.Sprintf("  rows=%d", run.Rows)
	default:
		line += fmt.Sprintf("  status=%d events=%d unparsable=%d", run.StatusCode, run.Events, run.Unparsable)
	}
	line += "  " + run.Target
	if run.Error != "" {
		line += "  error=" + run.Error
	}
	return line
}
