// Package configutil resolves settings that can arrive either as a
// command flag or as a viper key (config file / environment). An
// explicitly set flag always wins; the flag default is the last resort.
package configutil

import (
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func FlagOrViperString(cmd *cobra.Command, flagName, viperKey string) string {
	if cmd != nil && flagName != "" && cmd.Flags().Changed(flagName) {
		v, _ := cmd.Flags().GetString(flagName)
		return v
	}
	if viperKey != "" {
		if v := viper.GetString(viperKey); strings.TrimSpace(v) != "" {
			return v
		}
	}
	if cmd != nil && flagName != "" {
		v, _ := cmd.Flags().GetString(flagName)
		return v
	}
	return ""
}

func FlagOrViperBool(cmd *cobra.Command, flagName, viperKey string) bool {
	if cmd != nil && flagName != "" && cmd.Flags().Changed(flagName) {
		v, _ := cmd.Flags().GetBool(flagName)
		return v
	}
	if viperKey != "" && viper.GetBool(viperKey) {
		return true
	}
	if cmd != nil && flagName != "" {
		v, _ := cmd.Flags().GetBool(flagName)
		return v
	}
	return false
}

func FlagOrViperInt(cmd *cobra.Command, flagName, viperKey string) int {
	if cmd != nil && flagName != "" && cmd.Flags().Changed(flagName) {
		v, _ := cmd.Flags().GetInt(flagName)
		return v
	}
	if viperKey != "" {
		if v := viper.GetInt(viperKey); v != 0 {
			return v
		}
	}
	if cmd != nil && flagName != "" {
		v, _ := cmd.Flags().GetInt(flagName)
		return v
	}
	return 0
}

func FlagOrViperDuration(cmd *cobra.Command, flagName, viperKey string) time.Duration {
	if cmd != nil && flagName != "" && cmd.Flags().Changed(flagName) {
		v, _ := cmd.Flags().GetDuration(flagName)
		return v
	}
	if viperKey != "" {
		if v := viper.GetDuration(viperKey); v != 0 {
			return v
		}
	}
	if cmd != nil && flagName != "" {
		v, _ := cmd.Flags().GetDuration(flagName)
		return v
	}
	return 0
}
