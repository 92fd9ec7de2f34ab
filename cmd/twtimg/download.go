package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"twtimg/pkg/auth"
	"twtimg/pkg/checkpoint"
	"twtimg/pkg/config"
	"twtimg/pkg/downloader"
	errs "twtimg/pkg/errors"
	"twtimg/pkg/logger"
	"twtimg/pkg/ratelimit"
	"twtimg/pkg/storage"
	"twtimg/pkg/ui"
)

var (
	confidentialsFile string
	destDir           string
	imageSize         string
	tweetLimit        int
	includeRetweets   bool
	resumeDownload    bool
	accountName       string
	retryAttempts     int
	requestTimeout    time.Duration
	timezone          string
	baseDirectory     string
	notify            bool
)

func addDownloadFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&confidentialsFile, "confidentials", "c", "", `JSON file holding {"api_key": ..., "api_secret": ...}`)
	flags.StringVarP(&destDir, "dest", "d", "", "directory to save images in; must exist (default: a new directory named after the user)")
	flags.StringVarP(&imageSize, "size", "s", downloader.DefaultSize, "image size: "+strings.Join(config.ValidSizes, ", "))
	flags.IntVarP(&tweetLimit, "limit", "l", downloader.DefaultLimit, "maximum number of tweets to inspect")
	flags.BoolVar(&includeRetweets, "rts", false, "include retweets")
	flags.BoolVar(&resumeDownload, "resume", false, "continue from where the last interrupted run for this user stopped")
	flags.StringVarP(&accountName, "account", "a", "", "use a stored account")
	flags.IntVar(&retryAttempts, "retry", 1, "attempts per image on network errors (1 = no retry)")
	flags.DurationVar(&requestTimeout, "timeout", 30*time.Second, "HTTP request timeout")
	flags.StringVar(&timezone, "timezone", "", "timezone used to name files (default: local time)")
	flags.StringVarP(&baseDirectory, "output", "o", "", "parent directory for the default per-user directory")
	flags.BoolVar(&notify, "notify", false, "send a desktop notification when the download ends")
}

// commandLineFlags collects the flags the user actually set, keyed for config.MergeCommandLineFlags
func commandLineFlags(cmd *cobra.Command) map[string]interface{} {
	flags := make(map[string]interface{})
	changed := cmd.Flags().Changed

	if changed("size") {
		flags["size"] = imageSize
	}
	if changed("limit") {
		flags["limit"] = tweetLimit
	}
	if changed("rts") {
		flags["rts"] = includeRetweets
	}
	if changed("retry") {
		flags["retry"] = retryAttempts
	}
	if changed("timeout") {
		flags["timeout"] = requestTimeout
	}
	if changed("timezone") {
		flags["timezone"] = timezone
	}
	if changed("output") {
		flags["output"] = baseDirectory
	}
	if changed("log-file") {
		flags["log-file"] = logFile
	}

	switch {
	case changed("log-level"):
		flags["log-level"] = logLevel
	case !verbose:
		// Console logs would interleave with the status line; the log file keeps its level
		flags["console-level"] = "error"
	}
	return flags
}

func runDownload(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	user := strings.TrimPrefix(strings.TrimSpace(args[0]), "@")

	cfg, err := config.Load(configFile, commandLineFlags(cmd))
	if err != nil {
		return errs.New(errs.ErrorTypeConfig, 0, err, "failed to load configuration")
	}

	logger.Version = version
	if err := logger.Initialize(&cfg.Logging); err != nil {
		return errs.New(errs.ErrorTypeConfig, 0, err, "failed to initialize logging")
	}
	log := logger.WithField("user", user)
	log.Info("twtimg starting")

	creds, source, err := resolveCredentials(cfg, confidentialsFile, accountName, openAccountStore)
	if err != nil {
		log.WithError(err).Error("no usable credentials")
		return err
	}
	log.WithField("source", source).Debug("credentials resolved")

	dest := destDir
	if dest == "" {
		dest = cfg.DestinationFor(user)
		if err := storage.EnsureDir(dest); err != nil {
			return errs.New(errs.ErrorTypeFilesystem, 0, errs.ErrInvalidDownloadPath, "%v", err)
		}
	}

	location, err := cfg.Location()
	if err != nil {
		return errs.New(errs.ErrorTypeConfig, 0, err, "invalid timezone")
	}

	if !quiet && ui.IsTerminal(os.Stdout) {
		ui.PrintLogo()
	}

	tracker := ui.NewStatusTracker(os.Stdout, quiet)
	tracker.Wait("requesting bearer token")

	d, err := downloader.New(ctx, creds, downloader.Options{
		BaseURL:       cfg.Twitter.APIBaseURL,
		UserAgent:     cfg.Twitter.UserAgent,
		Timeout:       cfg.Download.Timeout,
		Limiter:       ratelimit.New(cfg.RateLimit.RequestsPerWindow, cfg.RateLimit.Window),
		Logger:        logger.GetLogger(),
		Reporter:      tracker,
		CheckpointDir: checkpointDir(log),
		Location:      location,
		RetryAttempts: cfg.Download.RetryAttempts,
		PageSize:      cfg.Download.PageSize,
	})
	tracker.Spinner().Stop()
	if err != nil {
		return err
	}

	summary, err := d.DownloadImages(ctx, downloader.Request{
		User:            user,
		Dest:            dest,
		Size:            cfg.Download.Size,
		Limit:           cfg.Download.Limit,
		IncludeRetweets: cfg.Download.IncludeRetweets,
		Resume:          resumeDownload,
	})
	if notify {
		if nerr := ui.NewNotifier().RunFinished(summary); nerr != nil {
			log.WithError(nerr).Debug("desktop notification failed")
		}
	}
	if err != nil {
		if errors.Is(err, ctx.Err()) && summary != nil {
			return fmt.Errorf("interrupted after %d tweets; run again with --resume to continue", summary.TotalChecked())
		}
		return err
	}

	log.WithFields(map[string]interface{}{
		"reason": summary.Reason,
		"saved":  summary.Saved,
	}).Info("twtimg finished")
	return nil
}

// checkpointDir returns the checkpoint location, or "" to run without checkpoints
func checkpointDir(log logger.Logger) string {
	dataDir, err := checkpoint.DataDirectory()
	if err != nil {
		log.WithError(err).Warn("resume support disabled")
		return ""
	}
	return filepath.Join(dataDir, "checkpoints")
}

// accountStore is the part of auth.Manager used to look up stored credentials
type accountStore interface {
	Retrieve(name string) (*auth.Account, error)
	RetrieveDefault() (*auth.Account, error)
}

func openAccountStore() (accountStore, error) {
	return auth.NewManager()
}

// resolveCredentials picks the API key pair: the confidentials file, then the
// configuration, then a stored account. It returns where the pair came from.
func resolveCredentials(cfg *config.Config, file, account string, open func() (accountStore, error)) (auth.Credentials, string, error) {
	if file != "" {
		creds, err := auth.LoadFile(file)
		if err != nil {
			return auth.Credentials{}, "", err
		}
		return creds, "file", nil
	}

	fromConfig := auth.Credentials{APIKey: cfg.Twitter.APIKey, APISecret: cfg.Twitter.APISecret}
	if account == "" && fromConfig.Validate() == nil {
		return fromConfig, "config", nil
	}

	store, err := open()
	if err != nil {
		return auth.Credentials{}, "", errs.New(errs.ErrorTypeConfig, 0, errs.ErrConfidentialsNotSupplied, "credential store unavailable: %v", err)
	}

	var stored *auth.Account
	if account != "" {
		stored, err = store.Retrieve(account)
	} else {
		stored, err = store.RetrieveDefault()
	}
	if err != nil {
		return auth.Credentials{}, "", errs.New(errs.ErrorTypeConfig, 0, errs.ErrConfidentialsNotSupplied,
			"no credentials found; pass -c <file> or run 'twtimg auth login'")
	}

	creds := stored.Credentials()
	if err := creds.Validate(); err != nil {
		return auth.Credentials{}, "", err
	}
	return creds, "account:" + stored.Name, nil
}
