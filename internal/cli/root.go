// Package cli wires the cortexprobe command tree.
package cli

import (
	"errors"
	"fmt"
	"io"

	"cortexprobe/internal/config"
	"cortexprobe/internal/core"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type rootOptions struct {
	configFile string
	logger     core.Logger
}

// NewRootCommand builds the command tree. Subcommands print their own results;
// a returned error means the process should exit with status 1.
func NewRootCommand(logger core.Logger) *cobra.Command {
	if logger == nil {
		logger = &core.NopLogger{}
	}
	opts := &rootOptions{logger: logger}

	rootCmd := &cobra.Command{
		Use:           "cortexprobe",
		Short:         "Debugging probes for Cortex Search and the Cortex Agent API",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file (yaml, json, toml or .env) read on top of the environment")

	rootCmd.AddCommand(
		newAgentCommand(opts),
		newSearchCommand(opts),
		newMockCommand(opts),
		newHistoryCommand(opts),
	)
	return rootCmd
}

func (o *rootOptions) viper() (*viper.Viper, error) {
	return config.NewViper(o.configFile)
}

// reportMissing prints the missing configuration notice when err is a *config.MissingEnvError.
func reportMissing(w io.Writer, err error) {
	var missing *config.MissingEnvError
	if errors.As(err, &missing) {
		_, _ = fmt.Fprintf(w, "Error: %s\n", missing.Error())
		_, _ = fmt.Fprintln(w, "Please make sure these are set in your .env file")
	}
}
