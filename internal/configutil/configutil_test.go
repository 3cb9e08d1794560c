package configutil

import (
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newTestCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "test", RunE: func(cmd *cobra.Command, args []string) error { return nil }}
	cmd.Flags().String("name", "default-name", "")
	cmd.Flags().Bool("enabled", false, "")
	cmd.Flags().Int("count", 0, "")
	cmd.Flags().Duration("timeout", 0, "")
	return cmd
}

func TestFlagOrViperStringPrecedence(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cmd := newTestCommand()
	if got := FlagOrViperString(cmd, "name", "app.name"); got != "default-name" {
		t.Fatalf("default fallback = %q", got)
	}

	viper.Set("app.name", "from-viper")
	if got := FlagOrViperString(cmd, "name", "app.name"); got != "from-viper" {
		t.Fatalf("viper value = %q", got)
	}

	if err := cmd.Flags().Set("name", "from-flag"); err != nil {
		t.Fatalf("set flag: %v", err)
	}
	if got := FlagOrViperString(cmd, "name", "app.name"); got != "from-flag" {
		t.Fatalf("changed flag = %q, want it to win over viper", got)
	}
}

func TestFlagOrViperStringIgnoresBlankViperValue(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("app.name", "   ")
	cmd := newTestCommand()
	if got := FlagOrViperString(cmd, "name", "app.name"); got != "default-name" {
		t.Fatalf("got %q, want the flag default when viper holds whitespace", got)
	}
}

func TestFlagOrViperBool(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cmd := newTestCommand()
	if FlagOrViperBool(cmd, "enabled", "app.enabled") {
		t.Fatalf("got true with nothing set")
	}
	viper.Set("app.enabled", true)
	if !FlagOrViperBool(cmd, "enabled", "app.enabled") {
		t.Fatalf("got false, want viper value")
	}
}

func TestFlagOrViperDuration(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cmd := newTestCommand()
	if got := FlagOrViperDuration(cmd, "timeout", "app.timeout"); got != 0 {
		t.Fatalf("got %v with nothing set", got)
	}
	viper.Set("app.timeout", "90s")
	if got := FlagOrViperDuration(cmd, "timeout", "app.timeout"); got != 90*time.Second {
		t.Fatalf("got %v, want 90s from viper", got)
	}
	if err := cmd.Flags().Set("timeout", "15s"); err != nil {
		t.Fatalf("set flag: %v", err)
	}
	if got := FlagOrViperDuration(cmd, "timeout", "app.timeout"); got != 15*time.Second {
		t.Fatalf("got %v, want the changed flag to win", got)
	}
}

func TestFlagOrViperIntViperFallback(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cmd := newTestCommand()
	viper.Set("app.count", 7)
	if got := FlagOrViperInt(cmd, "count", "app.count"); got != 7 {
		t.Fatalf("got %d, want 7", got)
	}
}
