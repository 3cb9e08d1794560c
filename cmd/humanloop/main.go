// humanloop bridges an MCP agent on stdio to a human responder in a
// Slack channel.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/quailyquaily/humanloop/cmd/humanloop/servecmd"
)

var version = "0.1.0"

var cfgFile string

func main() {
	cobra.OnInitialize(initConfig)

	root := &cobra.Command{
		Use:           "humanloop",
		Short:         "Human-in-the-loop MCP server backed by Slack",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default searches ./humanloop.yaml, ~/.config/humanloop/humanloop.yaml).")
	root.PersistentFlags().String("log-level", "info", "Log level: debug|info|warn|error.")
	root.PersistentFlags().String("log-format", "text", "Log format: text|json.")
	_ = viper.BindPFlag("log.level", root.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log.format", root.PersistentFlags().Lookup("log-format"))

	root.AddCommand(servecmd.NewCommand())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("HUMANLOOP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("humanloop")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "humanloop"))
		}
	}
	_ = viper.ReadInConfig()
}
