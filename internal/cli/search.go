package cli

import (
	"cortexprobe/internal/config"
	"cortexprobe/internal/search"
	"cortexprobe/internal/storage"

	"github.com/spf13/cobra"
)

func newSearchCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "search",
		Short: "Scan a Cortex Search service over SQL and print every row",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			v, err := opts.viper()
			if err != nil {
				return err
			}
			// Configuration problems are reported like any other search failure.
			var connect search.ConnectFunc
			cfg, err := config.LoadSearchConfig(v)
			if err == nil {
				connect, err = search.SnowflakeConnector(cfg)
			}
			if err != nil {
				connect = search.Unavailable(err)
			}

			store := storage.InitStorage(config.LoadHistoryConfig(v), opts.logger)
			defer func() { _ = store.Close() }()

			runner := &search.Runner{
				Connect: connect,
				Out:     out,
				Logger:  opts.logger,
				Store:   store,
			}
			runner.Execute(cmd.Context(), search.ScanQuery(cfg.SearchService), cfg.SearchService)
			return nil
		},
	}
}
