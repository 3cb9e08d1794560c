// Package servecmd wires the Slack transport, the correlation engine,
// and the MCP stdio server into the serve command.
package servecmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/quailyquaily/humanloop/internal/configutil"
	"github.com/quailyquaily/humanloop/internal/correlate"
	"github.com/quailyquaily/humanloop/internal/healthcheck"
	"github.com/quailyquaily/humanloop/internal/logutil"
	"github.com/quailyquaily/humanloop/internal/mcpsrv"
	slackrt "github.com/quailyquaily/humanloop/internal/slack"
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Bridge MCP ask_human calls to a Slack responder",
		RunE: func(cmd *cobra.Command, args []string) error {
			botToken := strings.TrimSpace(configutil.FlagOrViperString(cmd, "slack-bot-token", "slack.bot_token"))
			if botToken == "" {
				return fmt.Errorf("missing slack.bot_token (set via --slack-bot-token or HUMANLOOP_SLACK_BOT_TOKEN)")
			}
			appToken := strings.TrimSpace(configutil.FlagOrViperString(cmd, "slack-app-token", "slack.app_token"))
			if appToken == "" {
				return fmt.Errorf("missing slack.app_token (set via --slack-app-token or HUMANLOOP_SLACK_APP_TOKEN)")
			}
			channelID := strings.TrimSpace(configutil.FlagOrViperString(cmd, "slack-channel-id", "slack.channel_id"))
			if channelID == "" {
				return fmt.Errorf("missing slack.channel_id (set via --slack-channel-id or HUMANLOOP_SLACK_CHANNEL_ID)")
			}
			userID := strings.TrimSpace(configutil.FlagOrViperString(cmd, "slack-user-id", "slack.user_id"))
			if userID == "" {
				return fmt.Errorf("missing slack.user_id (set via --slack-user-id or HUMANLOOP_SLACK_USER_ID)")
			}

			logger, err := logutil.NewLoggerFromViper()
			if err != nil {
				return err
			}
			slog.SetDefault(logger)

			httpClient := &http.Client{Timeout: 30 * time.Second}
			api := slackrt.NewAPI(httpClient, "https://slack.com/api", botToken, appToken)
			auth, err := api.AuthTest(cmd.Context())
			if err != nil {
				return fmt.Errorf("slack auth.test: %w", err)
			}
			botUserID := strings.TrimSpace(auth.UserID)
			if botUserID == "" {
				return fmt.Errorf("slack auth.test returned empty user_id")
			}
			if botUserID == userID {
				return fmt.Errorf("slack.user_id is the bot's own id %s; configure a human responder", botUserID)
			}

			responseTimeout := configutil.FlagOrViperDuration(cmd, "response-timeout", "ask.timeout")
			if responseTimeout <= 0 {
				responseTimeout = correlate.DefaultResponseTimeout
			}

			// The engine posts through the client and the client feeds
			// events back into the engine; the handler closure breaks the
			// cycle. It never fires before Start, so engine is set by then.
			var engine *correlate.Engine
			client, err := slackrt.NewClient(slackrt.ClientOptions{
				API:    api,
				Logger: logger,
				Handler: func(ev slackrt.Event) {
					engine.HandleEvent(correlate.Event{
						User:     ev.User,
						ThreadTS: ev.ThreadTS,
						Text:     ev.Text,
					})
				},
			})
			if err != nil {
				return err
			}

			engine, err = correlate.NewEngine(correlate.EngineOptions{
				Poster:          client,
				ChannelID:       channelID,
				ResponderID:     userID,
				ResponseTimeout: responseTimeout,
				Logger:          logger,
			})
			if err != nil {
				return err
			}

			if healthListen := healthcheck.NormalizeListen(configutil.FlagOrViperString(cmd, "health-listen", "health.listen")); healthListen != "" {
				healthServer, err := healthcheck.StartServer(logger, healthListen, "humanloop")
				if err != nil {
					logger.Warn("health_server_start_error", "addr", healthListen, "error", err.Error())
				} else {
					defer func() {
						shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
						_ = healthServer.Shutdown(shutdownCtx)
						cancel()
					}()
				}
			}

			mcpServer, err := mcpsrv.NewServer(mcpsrv.ServerOptions{
				Engine: engine,
				Logger: logger,
			})
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			var wg sync.WaitGroup
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := client.Start(ctx); err != nil {
					logger.Error("slack_client_error", "error", err.Error())
					cancel()
				}
			}()

			logger.Info("humanloop_ready",
				"bot_user_id", botUserID,
				"channel_id", channelID,
				"responder_id", userID,
				"response_timeout", responseTimeout.String(),
			)
			runErr := mcpServer.Run(ctx)

			client.Stop()
			cancel()
			wg.Wait()
			logger.Info("humanloop_stopped")
			return runErr
		},
	}

	cmd.Flags().String("slack-bot-token", "", "Slack bot token (xoxb-...).")
	cmd.Flags().String("slack-app-token", "", "Slack app-level token for Socket Mode (xapp-...).")
	cmd.Flags().String("slack-channel-id", "", "Slack channel id where questions are posted.")
	cmd.Flags().String("slack-user-id", "", "Slack user id of the human responder to mention.")
	cmd.Flags().Duration("response-timeout", 0, "How long to wait for a human reply (0 uses the 10m default).")
	cmd.Flags().String("health-listen", "", "Optional listen address for the /healthz endpoint.")

	return cmd
}
