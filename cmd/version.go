package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	consts "github.com/pohxiang0219/Hiredly-Web-Crawler/internal/shared/constants"
)

// Build metadata, set with -ldflags "-X .../cmd.Version=..."
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the corscheck version",
	Long:  "Print the corscheck version. With --verbose also show build metadata and the built-in run defaults.",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		verbose, _ := cmd.Flags().GetBool("verbose")
		if !verbose {
			fmt.Fprintf(out, "corscheck %s (%s)\n", Version, shortCommit(GitCommit))
			return
		}

		fmt.Fprintf(out, "corscheck %s\n", Version)
		fmt.Fprintf(out, "  commit:       %s\n", GitCommit)
		fmt.Fprintf(out, "  built:        %s\n", BuildDate)
		fmt.Fprintf(out, "  go:           %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
		fmt.Fprintln(out, "defaults:")
		fmt.Fprintf(out, "  page url:     %s\n", consts.DefaultPageURL)
		fmt.Fprintf(out, "  origin:       %s\n", consts.DefaultOrigin)
		fmt.Fprintf(out, "  target host:  %s\n", consts.DefaultTargetHost)
		fmt.Fprintf(out, "  navigation:   %d attempt(s), %s apart, %s each\n",
			consts.DefaultNavigationAttempts, consts.DefaultRetryDelay, consts.DefaultNavigationTimeout)
	},
}

// shortCommit trims a full git hash to the usual seven characters.
func shortCommit(commit string) string {
	if len(commit) > 7 && commit != "unknown" {
		return commit[:7]
	}
	return commit
}

func init() {
	versionCmd.Flags().BoolP("verbose", "v", false, "also print build metadata and run defaults")
}
