package cmd

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Set with -ldflags "-X github.com/farol-inclusivo/farol-matcher/cmd.version=...".
var version = "unknown"

// revision is the vcs commit stamped by the go toolchain, if any.
func revision() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, setting := range info.Settings {
		if setting.Key == "vcs.revision" && len(setting.Value) >= 7 {
			return setting.Value[:7]
		}
	}
	return ""
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the farol-matcher version and build details",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		out := fmt.Sprintf("%s %s", app, version)
		if rev := revision(); rev != "" {
			out += " (" + rev + ")"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s/%s %s\n", out, runtime.GOOS, runtime.GOARCH, runtime.Version())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
