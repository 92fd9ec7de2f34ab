package main

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"twtimg/pkg/ui"
)

var (
	// Version information, set with -ldflags
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile string
	logLevel   string
	logFile    string
	quiet      bool
	verbose    bool
)

// rootCmd downloads images when called with a user id
var rootCmd = &cobra.Command{
	Use:   "twtimg [flags] <user_id>",
	Short: "Download the images posted on a Twitter timeline",
	Long: `twtimg downloads every image attached to the tweets of a user.

Images are named after the time their tweet was posted
(YYYY-MM-DD-HH-MM-SS, with _1, _2, ... for further images of the same tweet)
and saved into a directory named after the user. Files that already exist are
skipped, so running twtimg again only fetches new images.

Credentials are an app's API key and secret, taken from (in order):
  - a JSON file given with -c/--confidentials
  - the configuration file, TWTIMG_API_KEY/TWTIMG_API_SECRET or a .env file
  - a stored account (see 'twtimg auth login')`,
	Example: `  twtimg -c keys.json nasa
  twtimg -c keys.json -d ~/Pictures/nasa -s orig -l 500 nasa
  twtimg --resume nasa`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runDownload,
}

// Execute runs the command tree under ctx
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		ui.Output = os.Stderr
		ui.PrintError("Error", err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is ./.twtimg.yaml or ~/.config/twtimg/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "also write logs to this file, rotated")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress all output except errors")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "show log output on the console")

	addDownloadFlags(rootCmd)

	rootCmd.SetVersionTemplate(`twtimg {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
