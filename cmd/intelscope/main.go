package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/go-pkgz/lgr"
	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"

	"github.com/intelscope/intelscope/pkg/config"
	"github.com/intelscope/intelscope/pkg/dedup"
	"github.com/intelscope/intelscope/pkg/feed"
	"github.com/intelscope/intelscope/pkg/feedback"
	"github.com/intelscope/intelscope/pkg/gnews"
	"github.com/intelscope/intelscope/pkg/processor"
	"github.com/intelscope/intelscope/pkg/scheduler"
	"github.com/intelscope/intelscope/pkg/seen"
	"github.com/intelscope/intelscope/pkg/triage"
	"github.com/intelscope/intelscope/server"
)

// Opts with all CLI options
type Opts struct {
	Config    string `short:"f" long:"config" env:"CONFIG" default:"config.yml" description:"config file path"`
	SinceDays int    `long:"since-days" env:"SINCE_DAYS" description:"override reporting window in days"`
	Server    bool   `short:"s" long:"server" description:"run the rating server with periodic collection"`

	// Common options
	Debug   bool `long:"dbg" env:"DEBUG" description:"debug mode"`
	Version bool `short:"V" long:"version" description:"show version info"`
	NoColor bool `long:"no-color" env:"NO_COLOR" description:"disable color output"`
}

var revision = "unknown"

func main() {
	// .env is optional, used for GNEWS_API_KEY and friends
	_ = godotenv.Load()

	var opts Opts
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if opts.Version {
		fmt.Printf("Version: %s\nGolang: %s\n", revision, runtime.Version())
		os.Exit(0)
	}

	setupLog(opts.Debug, opts.NoColor)

	log.Printf("[INFO] starting intelscope version %s", revision)

	cfg, err := config.Load(opts.Config)
	if err != nil {
		log.Printf("[ERROR] can't load config: %v", err)
		os.Exit(1)
	}
	if opts.SinceDays > 0 {
		cfg.Report.SinceDays = opts.SinceDays
	}

	ctx, cancel := context.WithCancel(context.Background())

	// handle termination signals
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		log.Print("[INFO] termination signal received")
		cancel()
	}()

	if err := run(ctx, cfg, opts); err != nil {
		log.Printf("[ERROR] %v", err)
		cancel()
		os.Exit(1)
	}
	cancel()
	log.Print("[INFO] shutdown complete")
}

func run(ctx context.Context, cfg *config.Config, opts Opts) error {
	store := feedback.NewStore(cfg.Storage.FeedbackFile)
	proc := buildProcessor(cfg, store)

	if !opts.Server {
		result, err := proc.Run(ctx)
		if err != nil {
			return fmt.Errorf("collection run failed: %w", err)
		}
		log.Printf("[INFO] report saved to %s, %d articles", result.ReportPath, result.Total)
		return nil
	}

	sched := scheduler.NewScheduler(proc, cfg.Schedule.Interval)
	sched.Start(ctx)
	defer sched.Stop()

	srv := server.New(store, feedback.NewAnalyzer(feedback.DefaultOptions()), server.Config{
		Listen:  cfg.Server.Listen,
		Timeout: cfg.Server.Timeout,
		Version: revision,
		Debug:   opts.Debug,
	})
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

func buildProcessor(cfg *config.Config, store *feedback.Store) *processor.Processor {
	var news processor.NewsSearcher
	if key := cfg.Sources.GNews.APIKey; key != "" {
		news = gnews.NewClient(key, cfg.Sources.Timeout)
	} else {
		log.Print("[WARN] no gnews api key, running with rss feeds only")
	}

	since := time.Now().AddDate(0, 0, -cfg.Report.SinceDays)
	return processor.New(
		triage.New(cfg.TriageRules()),
		dedup.New(cfg.DedupConfig()),
		feed.NewParser(cfg.Sources.Timeout, cfg.Sources.UserAgent),
		news,
		seen.NewTracker(cfg.Storage.SeenFile, cfg.SeenWindow()),
		store,
		processor.Config{
			Feeds:          cfg.Sources.Feeds,
			Queries:        cfg.Queries(),
			Since:          since,
			SinceLabel:     since.Format("2006-01-02"),
			MaxPerFeed:     cfg.Sources.MaxPerFeed,
			MaxPerCategory: cfg.Report.MaxPerCategory,
			OutputDir:      cfg.Report.OutputDir,
		},
	)
}

func setupLog(dbg, noColor bool) {
	logOpts := []lgr.Option{lgr.Msec, lgr.LevelBraces}
	if dbg {
		logOpts = []lgr.Option{lgr.Debug, lgr.Msec, lgr.LevelBraces, lgr.StackTraceOnError}
	}

	if !noColor {
		colorizer := lgr.Mapper{
			ErrorFunc:  func(s string) string { return color.New(color.FgHiRed).Sprint(s) },
			WarnFunc:   func(s string) string { return color.New(color.FgRed).Sprint(s) },
			InfoFunc:   func(s string) string { return color.New(color.FgYellow).Sprint(s) },
			DebugFunc:  func(s string) string { return color.New(color.FgWhite).Sprint(s) },
			CallerFunc: func(s string) string { return color.New(color.FgBlue).Sprint(s) },
			TimeFunc:   func(s string) string { return color.New(color.FgCyan).Sprint(s) },
		}
		logOpts = append(logOpts, lgr.Map(colorizer))
	}

	lgr.SetupStdLogger(logOpts...)
	lgr.Setup(logOpts...)
}
