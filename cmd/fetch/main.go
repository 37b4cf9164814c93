package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/schollz/progressbar/v3"

	"GovTracker/internal/di"
	"GovTracker/internal/domain/models"
	"GovTracker/pkg/config"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	quiet := flag.Bool("quiet", false, "disable the progress bar")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	if err := cfg.ValidateFetch(); err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := os.MkdirAll(cfg.Snapshots.Dir, 0o755); err != nil {
		log.Fatalf("snapshot dir: %v", err)
	}

	job, cleanup, err := di.InitializeFetchJob(cfg)
	if err != nil {
		log.Fatalf("fetch initialization failed: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	var bar *progressbar.ProgressBar
	if !*quiet {
		bar = progressbar.NewOptions(len(job.Keys()),
			progressbar.OptionSetDescription("Fetching"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	rep := job.Run(ctx, func(done, total int, key models.SeriesKey, outcome string) {
		if bar == nil {
			return
		}
		bar.Describe(fmt.Sprintf("%-8s %s", key.String(), outcome))
		_ = bar.Set(done)
	})
	if bar != nil {
		_ = bar.Finish()
	}
	stop()
	cleanup()

	fmt.Fprintf(os.Stderr, "snapshots: %d ok, %d empty, %d failed of %d in %s\n",
		rep.OK, rep.Empty, rep.Failed, rep.Total, rep.Duration.Round(time.Millisecond))
	for _, f := range rep.Failures {
		fmt.Fprintf(os.Stderr, "  %s: %v\n", f.Key, f.Err)
	}

	if rep.AllFailed() {
		os.Exit(1)
	}
}
