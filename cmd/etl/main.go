package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"listingetl/internal/config"
	"listingetl/internal/metrics"
	"listingetl/internal/metrics/datadog"
	"listingetl/internal/metrics/prompush"

	// register all backends with the storage factory.
	// config specifies which to use but we need to build in support for all of them.
	_ "listingetl/internal/storage/all"
)

// defaultEnvFile is loaded when present; an explicit -env-file must exist.
const defaultEnvFile = ".env"

// main is the entry point for the listing seeder. It loads the pipeline
// config, optionally initializes a metrics backend, and executes one mode.
func main() {
	var (
		cfgPath           string
		mode              string
		envFile           string
		metricsBackendFlg string
		pushGatewayURLFlg string
		dogstatsdAddrFlg  string
		validate          bool
	)

	flag.StringVar(&cfgPath, "config", "configs/pipelines/cars.yaml", "pipeline config path (.json, .yaml or .yml)")
	flag.StringVar(&mode, "mode", config.ModeGenerate, "run mode: generate, rewrite or update")
	flag.StringVar(&envFile, "env-file", defaultEnvFile, "KEY=VALUE file loaded into the environment before the config")
	flag.StringVar(&metricsBackendFlg, "metrics-backend", "", "metrics backend to use: pushgateway, datadog or none (overrides env METRICS_BACKEND)")
	flag.StringVar(&pushGatewayURLFlg, "pushgateway-url", "", "Pushgateway base URL (overrides env PUSHGATEWAY_URL)")
	flag.StringVar(&dogstatsdAddrFlg, "dogstatsd-addr", "", "DogStatsD address (overrides env DD_DOGSTATSD_ADDR)")
	flag.BoolVar(&validate, "validate", false, "validate the configuration and exit")
	verbose := flag.Bool("v", false, "enable verbose logs")

	flag.Parse()

	if err := config.LoadEnvFile(envFile, envFile == defaultEnvFile); err != nil {
		fatalf("%v", err)
	}

	p, err := config.Load(cfgPath)
	if err != nil {
		fatalf("%v", err)
	}

	issues := config.ValidateFor(p, mode)
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasErrors(issues) {
		log.Printf("Configuration is invalid: %v", cfgPath)
		os.Exit(1)
	}

	if validate {
		log.Printf("Configuration is valid: %v (mode=%s)", cfgPath, mode)
		os.Exit(0)
	}

	if flush := setupMetrics(p.Job, metricsBackendFlg, pushGatewayURLFlg, dogstatsdAddrFlg, *verbose); flush != nil {
		defer flush()
	}

	ctx := context.Background()
	start := time.Now()

	if *verbose {
		log.Printf("pipeline: job=%s mode=%s dataset=%s source=%s storage=%s",
			p.Job, mode, p.Dataset, p.Source.File.Path, p.Storage.Kind)
	}

	if err := run(ctx, mode, p); err != nil {
		// Flush before exiting so failed runs are visible too.
		_ = metrics.Flush()
		fatalf("%s: %v", mode, err)
	}

	log.Printf("completed mode=%s in %s", mode, time.Since(start).Truncate(time.Millisecond))
}

// setupMetrics installs the selected backend and returns its flush function,
// or nil when metrics stay disabled. Selection order: flag, env, none.
func setupMetrics(job, backendName, gwURL, ddAddr string, verbose bool) func() {
	if backendName == "" {
		backendName = os.Getenv("METRICS_BACKEND")
	}
	if job == "" {
		job = "listingetl"
	}

	var (
		b   metrics.Backend
		err error
	)
	switch backendName {
	case "pushgateway":
		if gwURL == "" {
			gwURL = os.Getenv("PUSHGATEWAY_URL")
		}
		if gwURL == "" {
			gwURL = "http://localhost:9091"
		}
		b, err = prompush.NewBackend(job, gwURL)
		if err == nil {
			log.Printf("metrics: url=%v, backend=%v, job_name=%v", gwURL, backendName, job)
		}

	case "datadog":
		if ddAddr == "" {
			ddAddr = os.Getenv("DD_DOGSTATSD_ADDR")
		}
		if ddAddr == "" {
			ddAddr = "127.0.0.1:8125"
		}
		b, err = datadog.NewBackend(datadog.Config{Addr: ddAddr, GlobalTags: []string{"job:" + job}})
		if err == nil {
			log.Printf("metrics: addr=%v, backend=%v, job_name=%v", ddAddr, backendName, job)
		}

	case "", "none":
		if verbose {
			log.Printf("metrics: disabled (backend=%q)", backendName)
		}
		return nil

	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", backendName)
		return nil
	}

	if err != nil {
		log.Printf("metrics: failed to init %s backend: %v; using nop", backendName, err)
		return nil
	}
	metrics.SetBackend(b)
	return func() {
		if err := metrics.Flush(); err != nil {
			log.Printf("metrics: flush error: %v", err)
		}
	}
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
