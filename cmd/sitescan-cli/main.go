package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/use-agent/sitescan/classifier"
	"github.com/use-agent/sitescan/config"
	"github.com/use-agent/sitescan/engine"
	"github.com/use-agent/sitescan/ioformats"
	"github.com/use-agent/sitescan/models"
	"github.com/use-agent/sitescan/pipeline"
	"github.com/use-agent/sitescan/scraper"
)

func main() {
	in := flag.String("input", "", "input file (csv with url/name/category/phone columns, or ndjson)")
	out := flag.String("output", "", "output NDJSON file (default stdout)")
	workers := flag.Int("workers", 0, "businesses analyzed at once (default SITESCAN_WORKERS)")
	rawHTML := flag.Bool("include-raw-html", false, "keep the raw markup in each profile")
	summary := flag.Bool("summary", true, "print a summary table to stderr")
	taxonomy := flag.String("taxonomy", "", "YAML taxonomy override (default SITESCAN_TAXONOMY_FILE)")
	flag.Parse()

	if *in == "" {
		fmt.Fprintln(os.Stderr, "missing -input")
		os.Exit(2)
	}

	cfg := config.Load()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	businesses, err := ioformats.ReadFile(*in)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read input:", err)
		os.Exit(1)
	}

	cl := classifier.Default()
	if path := firstNonEmpty(*taxonomy, cfg.Classifier.TaxonomyFile); path != "" {
		categories, err := classifier.LoadTaxonomyFile(path)
		if err != nil {
			fmt.Fprintln(os.Stderr, "load taxonomy:", err)
			os.Exit(1)
		}
		cl = classifier.New(categories)
	}

	httpEngine, err := engine.NewHTTPEngine(engine.HTTPOptions{
		UserAgent:    cfg.Fetch.UserAgent,
		MaxBodyBytes: cfg.Fetch.MaxBodyBytes,
		Proxy:        cfg.Fetch.Proxy,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "http engine:", err)
		os.Exit(1)
	}
	dispatcher := engine.NewDispatcher([]engine.Engine{httpEngine}, nil, nil)
	pl := pipeline.New(scraper.New(dispatcher, httpEngine, cfg.Fetch), cl, cfg.Pipeline.Deadline)

	n := *workers
	if n <= 0 {
		n = cfg.Pipeline.Workers
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	profiles := pl.RunBatch(ctx, businesses, n)

	var w io.Writer = os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			fmt.Fprintln(os.Stderr, "create output:", err)
			os.Exit(1)
		}
		defer f.Close()
		w = f
	}
	if err := ioformats.WriteNDJSON(w, profiles, *rawHTML); err != nil {
		fmt.Fprintln(os.Stderr, "write output:", err)
		os.Exit(1)
	}

	if *summary {
		printSummary(os.Stderr, profiles, time.Since(start))
	}
}

func printSummary(w io.Writer, profiles []*models.Profile, elapsed time.Duration) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "BUSINESS\tTYPE\tSCRAPED\tSCORE\tMS")
	scraped := 0
	for _, p := range profiles {
		label := firstNonEmpty(p.Business.Name, p.Business.Website, p.Business.Category)
		score := "-"
		if p.Scraped {
			scraped++
			score = fmt.Sprintf("%d", p.Gaps.OverallScore)
		}
		fmt.Fprintf(tw, "%s\t%s\t%v\t%s\t%d\n", label, p.Classification.PrimaryType, p.Scraped, score, p.Timing.TotalMs)
	}
	tw.Flush()
	fmt.Fprintf(w, "\n%d/%d scraped in %s\n", scraped, len(profiles), elapsed.Round(time.Millisecond))
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
