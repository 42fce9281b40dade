package cli

import (
	"runtime/debug"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version and build information",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("vaultsync version %s%s\n", version, buildSuffix())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// buildSuffix recovers the VCS revision from the build info, covering
// binaries built straight from a checkout without -ldflags.
func buildSuffix() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, setting := range info.Settings {
		if setting.Key == "vcs.revision" && len(setting.Value) >= 8 {
			return " (" + setting.Value[:8] + ")"
		}
	}
	return ""
}
