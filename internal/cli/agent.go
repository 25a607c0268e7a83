package cli

import (
	"fmt"

	"cortexprobe/internal/agent"
	"cortexprobe/internal/config"
	"cortexprobe/internal/storage"

	"github.com/spf13/cobra"
)

func newAgentCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "agent",
		Short: "Send the sample sales-by-region request to the Cortex Agent API and print the event stream",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			v, err := opts.viper()
			if err != nil {
				return err
			}
			cfg, err := config.LoadAgentConfig(v)
			if err != nil {
				reportMissing(out, err)
				return err
			}

			agent.PrintConfiguration(out, cfg)
			_, _ = fmt.Fprintln(out, "\nStarting Cortex Agent API test...")

			store := storage.InitStorage(config.LoadHistoryConfig(v), opts.logger)
			defer func() { _ = store.Close() }()

			probe := &agent.Probe{
				Client: agent.NewClient(cfg, nil, opts.logger),
				Out:    out,
				Logger: opts.logger,
				Store:  store,
			}
			probe.Execute(cmd.Context(), agent.NewSampleRequest(cfg))
			return nil
		},
	}
}
