package cmd

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X github.com/spigell/recruitai/cmd.version=...".
var version = "unknown"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version and build metadata",
	Run: func(cmd *cobra.Command, _ []string) {
		info := buildInfo()
		fmt.Fprintf(cmd.OutOrStdout(), "%s version: %s\n", app, info.Version)
		if info.Revision != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "commit: %s\n", info.Revision)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "go: %s\n", info.GoVersion)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

type build struct {
	Version   string
	Revision  string
	GoVersion string
}

// buildInfo falls back to the module version and VCS stamp embedded by the
// toolchain when no version was injected.
func buildInfo() build {
	b := build{Version: version, GoVersion: "unknown"}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return b
	}

	b.GoVersion = info.GoVersion
	if b.Version == "unknown" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		b.Version = info.Main.Version
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" {
			b.Revision = s.Value
			if len(b.Revision) > 12 {
				b.Revision = b.Revision[:12]
			}
		}
	}

	return b
}
