package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"article2pdf/config"
	"article2pdf/downloader"
	"article2pdf/logging"
	"article2pdf/ui"

	"github.com/spf13/cobra"
)

type rootFlags struct {
	output      string
	name        string
	configPath  string
	concurrency int
	timeout     time.Duration
	logLevel    string
	logFormat   string
	noProgress  bool
}

func newRootCmd() *cobra.Command {
	var flags rootFlags

	cmd := &cobra.Command{
		Use:   "article2pdf [flags] <url>",
		Short: "Save the images of a web article as a PDF",
		Long: `article2pdf renders an article in headless Chrome, scrolls it so lazy
images load, downloads every content image and writes them, in page order,
to a PDF with one image per page. When no image can be downloaded the
article is captured as a series of screenshots instead.

Usage:
  article2pdf https://mp.weixin.qq.com/s/xxxx
  article2pdf -o ~/articles -n notes.pdf https://example.com/post`,
		Args:          cobra.ExactArgs(1),
		Version:       config.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, args[0], flags)
		},
	}
	cmd.SetVersionTemplate(config.VersionString() + "\n")

	f := cmd.Flags()
	f.StringVarP(&flags.output, "output", "o", "output", "Directory for the PDF and the extracted images")
	f.StringVarP(&flags.name, "name", "n", "", "PDF file name (default: derived from the article title)")
	f.StringVar(&flags.configPath, "config", "", "Path to a YAML config file (default: ~/.config/article2pdf/config.yaml)")
	f.IntVar(&flags.concurrency, "concurrency", 0, "Parallel image downloads (overrides config)")
	f.DurationVar(&flags.timeout, "timeout", 0, "Deadline for the whole run, e.g. 5m (0 = none)")
	f.StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")
	f.StringVar(&flags.logFormat, "log-format", "", "Log format: console or json (overrides config)")
	f.BoolVar(&flags.noProgress, "no-progress", false, "Disable the progress bar")

	return cmd
}

func runConvert(cmd *cobra.Command, url string, flags rootFlags) error {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return err
	}
	if flags.concurrency > 0 {
		cfg.FetchConcurrency = flags.concurrency
	}
	if flags.logLevel != "" {
		cfg.LogLevel = flags.logLevel
	}
	if flags.logFormat != "" {
		cfg.LogFormat = flags.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	logger := logging.New(logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Output: cmd.ErrOrStderr(),
	})

	if err := os.MkdirAll(flags.output, 0755); err != nil {
		return fmt.Errorf("error creating directory %s: %w", flags.output, err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if flags.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, flags.timeout)
		defer cancel()
	}

	var opts []downloader.ManagerOption
	if !flags.noProgress {
		progress := ui.NewStageProgress(cmd.ErrOrStderr())
		defer progress.Finish()
		opts = append(opts, downloader.WithProgress(progress.Update))
	}

	result, err := downloader.NewManager(cfg, logger, opts...).Run(ctx, downloader.RunRequest{
		URL:          url,
		OutputDir:    flags.output,
		DocumentName: flags.name,
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), result.OutputDocumentPath)
	return nil
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
