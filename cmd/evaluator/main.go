/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package main runs the transcript evaluation worker. It consumes
// transcript:evaluate tasks from Redis, accepts storage notifications over
// HTTP and serves Prometheus metrics.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"chainguard.dev/crisiseval/agents/agenttrace"
	"chainguard.dev/crisiseval/agents/judge"
	"chainguard.dev/crisiseval/pipeline"
	"chainguard.dev/crisiseval/rubric"
	"chainguard.dev/crisiseval/storage"
	"chainguard.dev/crisiseval/workqueue"
	"cloud.google.com/go/compute/metadata"
	"github.com/chainguard-dev/clog"
	_ "github.com/chainguard-dev/clog/gcp/init"
	"github.com/chainguard-dev/terraform-infra-common/pkg/httpmetrics"
	"github.com/chainguard-dev/terraform-infra-common/pkg/profiler"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sethvargo/go-envconfig"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/option"
)

type config struct {
	Port        int           `env:"PORT,default=8080"`
	MetricsPort int           `env:"METRICS_PORT,default=2112"`
	RedisAddr   string        `env:"REDIS_ADDR,default=localhost:6379"`
	Concurrency int           `env:"CONCURRENCY,default=4"`
	TaskTimeout time.Duration `env:"TASK_TIMEOUT,default=5m"`
	MaxRetry    int           `env:"MAX_RETRY,default=5"`

	// Judge configuration
	JudgeModel       string  `env:"JUDGE_MODEL,default=claude-sonnet-4@20250514"`
	JudgeRegion      string  `env:"JUDGE_REGION"`  // Defaults to detected GCP region
	JudgeProject     string  `env:"JUDGE_PROJECT"` // Defaults to detected GCP project
	JudgeBaseURL     string  `env:"JUDGE_BASE_URL"`
	JudgeTemperature float64 `env:"JUDGE_TEMPERATURE,default=0.1"`
	JudgeTopP        float64 `env:"JUDGE_TOP_P,default=0.9"`
	JudgeMaxTokens   int64   `env:"JUDGE_MAX_TOKENS,default=8192"`
	AnthropicAPIKey  string  `env:"ANTHROPIC_API_KEY"`
	OpenAIAPIKey     string  `env:"OPENAI_API_KEY"`
	GeminiAPIKey     string  `env:"GEMINI_API_KEY"`

	// Storage configuration
	StorageBackend     string `env:"STORAGE_BACKEND,default=gcs"`
	GCSEndpoint        string `env:"GCS_ENDPOINT"`
	S3Endpoint         string `env:"S3_ENDPOINT"`
	S3Region           string `env:"S3_REGION"`
	S3AccessKeyID      string `env:"S3_ACCESS_KEY_ID"`
	S3SecretAccessKey  string `env:"S3_SECRET_ACCESS_KEY"`
	S3PathStyle        bool   `env:"S3_PATH_STYLE,default=false"`
	OutputBucket       string `env:"OUTPUT_BUCKET"`
	DefaultInputBucket string `env:"DEFAULT_INPUT_BUCKET"`
	DefaultInputKey    string `env:"DEFAULT_INPUT_KEY"`

	// Rubric and output naming
	RubricPath       string `env:"RUBRIC_PATH"`
	InputDirSegment  string `env:"INPUT_DIR_SEGMENT,default=formatted_transcripts"`
	OutputDirSegment string `env:"OUTPUT_DIR_SEGMENT,default=analysis_results"`
	InputFilePrefix  string `env:"INPUT_FILE_PREFIX,default=formatted_"`
	OutputFilePrefix string `env:"OUTPUT_FILE_PREFIX,default=analysis_"`
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go httpmetrics.ScrapeDiskUsage(ctx)
	profiler.SetupProfiler()
	defer httpmetrics.SetupTracer(ctx)()

	log := clog.FromContext(ctx)

	var cfg config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		clog.FatalContextf(ctx, "failed to process config: %v", err)
	}

	r := rubric.Default()
	if cfg.RubricPath != "" {
		var err error
		if r, err = rubric.Load(cfg.RubricPath); err != nil {
			clog.FatalContextf(ctx, "failed to load rubric: %v", err)
		}
	}
	log.With("version", r.Version, "criteria", len(r.Criteria())).Info("Loaded rubric")

	store, err := newStore(ctx, cfg)
	if err != nil {
		clog.FatalContextf(ctx, "failed to create store: %v", err)
	}

	j, err := newJudge(ctx, cfg)
	if err != nil {
		clog.FatalContextf(ctx, "failed to create judge: %v", err)
	}

	opts := []pipeline.Option{
		pipeline.WithModelName(cfg.JudgeModel),
		pipeline.WithOutputBucket(cfg.OutputBucket),
		pipeline.WithKeyMapping(pipeline.KeyMapping{
			InputDir:     cfg.InputDirSegment,
			OutputDir:    cfg.OutputDirSegment,
			InputPrefix:  cfg.InputFilePrefix,
			OutputPrefix: cfg.OutputFilePrefix,
		}),
	}
	if cfg.DefaultInputBucket != "" || cfg.DefaultInputKey != "" {
		opts = append(opts, pipeline.WithDefaultInput(storage.Location{
			Bucket: cfg.DefaultInputBucket,
			Key:    cfg.DefaultInputKey,
		}))
	}
	orchestrator, err := pipeline.New(store, j, r, opts...)
	if err != nil {
		clog.FatalContextf(ctx, "failed to create pipeline: %v", err)
	}

	// One logging tracer serves every judge call the worker makes.
	workerCtx := agenttrace.WithTracer(ctx, agenttrace.NewDefaultTracer(ctx))

	redis := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	srv := asynq.NewServer(redis, asynq.Config{
		Concurrency: cfg.Concurrency,
		BaseContext: func() context.Context { return workerCtx },
	})
	mux := asynq.NewServeMux()
	mux.Use(withTimeout(cfg.TaskTimeout))
	workqueue.NewHandler(orchestrator).Register(mux)

	client := asynq.NewClient(redis)
	defer client.Close()

	api := http.NewServeMux()
	api.Handle("/notify", workqueue.NotificationHandler(client, asynq.MaxRetry(cfg.MaxRetry)))
	api.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		if err := srv.Start(mux); err != nil {
			return fmt.Errorf("starting asynq server: %w", err)
		}
		log.With("concurrency", cfg.Concurrency, "redis", cfg.RedisAddr).Info("Worker started")
		<-ctx.Done()
		srv.Shutdown()
		return nil
	})
	eg.Go(func() error { return serve(ctx, cfg.Port, api) })
	eg.Go(func() error { return serve(ctx, cfg.MetricsPort, metricsMux) })

	if err := eg.Wait(); err != nil {
		clog.FatalContextf(ctx, "worker exited: %v", err)
	}
}

// serve runs an HTTP server until ctx is done.
func serve(ctx context.Context, port int, h http.Handler) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	clog.InfoContextf(ctx, "Listening on :%d", port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// withTimeout bounds each task with the run-level deadline.
func withTimeout(d time.Duration) asynq.MiddlewareFunc {
	return func(next asynq.Handler) asynq.Handler {
		return asynq.HandlerFunc(func(ctx context.Context, t *asynq.Task) error {
			if d <= 0 {
				return next.ProcessTask(ctx, t)
			}
			ctx, cancel := context.WithTimeout(ctx, d)
			defer cancel()
			return next.ProcessTask(ctx, t)
		})
	}
}

func newStore(ctx context.Context, cfg config) (storage.Store, error) {
	switch cfg.StorageBackend {
	case "gcs":
		var opts []option.ClientOption
		if cfg.GCSEndpoint != "" {
			opts = append(opts, option.WithEndpoint(cfg.GCSEndpoint), option.WithoutAuthentication())
		}
		return storage.NewGCS(ctx, opts...)
	case "s3":
		return storage.NewS3(ctx, storage.S3Config{
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			PathStyle:       cfg.S3PathStyle,
		})
	}
	return nil, fmt.Errorf("unknown storage backend %q (expected gcs or s3)", cfg.StorageBackend)
}

func newJudge(ctx context.Context, cfg config) (judge.Interface, error) {
	opts := []judge.Option{
		judge.WithTemperature(cfg.JudgeTemperature),
		judge.WithTopP(cfg.JudgeTopP),
		judge.WithMaxTokens(cfg.JudgeMaxTokens),
		judge.WithAttributeEnricher(agenttrace.Enricher),
	}
	if cfg.JudgeBaseURL != "" {
		opts = append(opts, judge.WithBaseURL(cfg.JudgeBaseURL))
	}

	model := strings.ToLower(cfg.JudgeModel)
	var apiKey string
	switch {
	case strings.HasPrefix(model, "claude-"):
		apiKey = cfg.AnthropicAPIKey
	case strings.HasPrefix(model, "gemini-"):
		apiKey = cfg.GeminiAPIKey
	default:
		apiKey = cfg.OpenAIAPIKey
	}
	if apiKey != "" {
		return judge.New(ctx, cfg.JudgeModel, append(opts, judge.WithAPIKey(apiKey))...)
	}

	project, region, err := detectVertex(ctx, cfg)
	if err != nil {
		return nil, err
	}
	clog.FromContext(ctx).With("model", cfg.JudgeModel, "project_id", project, "region", region).
		Info("Using Vertex AI judge")
	return judge.New(ctx, cfg.JudgeModel, append(opts, judge.WithVertex(project, region))...)
}

// detectVertex fills the judge project and region from the GCP metadata
// server when they are not configured.
func detectVertex(ctx context.Context, cfg config) (project, region string, err error) {
	project, region = cfg.JudgeProject, cfg.JudgeRegion
	if project != "" && region != "" {
		return project, region, nil
	}
	if !metadata.OnGCE() {
		return "", "", errors.New("no api key configured and not running on GCP: set JUDGE_PROJECT and JUDGE_REGION")
	}
	if project == "" {
		if project, err = metadata.ProjectIDWithContext(ctx); err != nil {
			return "", "", fmt.Errorf("failed to detect project ID: %w", err)
		}
	}
	if region == "" {
		zone, err := metadata.ZoneWithContext(ctx)
		if err != nil {
			return "", "", fmt.Errorf("failed to get zone from metadata: %w", err)
		}
		i := strings.LastIndex(zone, "-")
		if i <= 0 {
			return "", "", fmt.Errorf("unexpected zone %q", zone)
		}
		region = zone[:i]
	}
	return project, region, nil
}
