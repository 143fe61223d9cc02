package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/yildizm/ChatLens/internal/analysis"
	"github.com/yildizm/ChatLens/internal/emoji"
	"github.com/yildizm/ChatLens/internal/logger"
)

func newPingCommand() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "ping",
		Short: "Check that the analysis service is reachable",
		Long: `Call the health route of the configured analysis service and report
whether it answered with status "ok".

Examples:
  chatlens ping
  chatlens ping --server http://analysis.internal:8000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadGlobalConfig()
			if err != nil {
				return err
			}
			if !cmd.Flag("timeout").Changed {
				timeout = cfg.Service.HealthTimeout
			}

			client, err := analysis.NewClient(analysis.ClientConfig{BaseURL: cfg.Service.URL})
			if err != nil {
				return fmt.Errorf("failed to create service client: %w", err)
			}

			log := newLogger(cmd.ErrOrStderr()).WithComponent("ping")
			return runPing(cmd.Context(), client, timeout, log, cmd.OutOrStdout())
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "health check timeout (0 waits forever)")

	return cmd
}

// healthChecker is the part of the client ping needs
type healthChecker interface {
	HealthCheck(ctx context.Context) error
	BaseURL() string
}

func runPing(ctx context.Context, client healthChecker, timeout time.Duration, log *logger.Logger, out io.Writer) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	err := client.HealthCheck(ctx)
	elapsed := time.Since(start)

	if err != nil {
		log.WarnWithFields("health check failed", []logger.Field{logger.Status("down"), logger.Duration(elapsed), logger.Error(err)})
		return fmt.Errorf("%s %s", emoji.GetEmoji("error"), analysis.UserMessage(err))
	}

	log.InfoWithFields("health check passed", []logger.Field{logger.Status("ok"), logger.Duration(elapsed)})
	fmt.Fprintf(out, "%s %s is up (%s)\n", emoji.GetEmoji("success"), client.BaseURL(), elapsed.Round(time.Millisecond))
	return nil
}
