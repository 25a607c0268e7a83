package cli

import (
	"net"
	"time"

	"cortexprobe/internal/core"
	"cortexprobe/internal/log"
	"cortexprobe/internal/mockserver"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

func newMockCommand(opts *rootOptions) *cobra.Command {
	var (
		port   string
		token  string
		status int
		delay  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "mock",
		Short: "Serve a local fake Cortex agent endpoint for offline runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := opts.viper()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("port") {
				port = v.GetString(core.EnvMockPort)
			}

			if log.IsDebug() {
				gin.SetMode(gin.DebugMode)
			} else {
				gin.SetMode(gin.ReleaseMode)
			}

			return mockserver.Run(cmd.Context(), net.JoinHostPort("127.0.0.1", port), mockserver.Options{
				Token:     token,
				Status:    status,
				LineDelay: delay,
				Logger:    opts.logger,
			})
		},
	}

	cmd.Flags().StringVar(&port, "port", core.DefaultMockPort, "listen port (default from MOCK_PORT)")
	cmd.Flags().StringVar(&token, "token", "", "accepted PAT; empty accepts any bearer token")
	cmd.Flags().IntVar(&status, "status", 0, "answer every run with this HTTP status instead of streaming")
	cmd.Flags().DurationVar(&delay, "delay", 200*time.Millisecond, "pause between streamed lines")
	return cmd
}
