package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ardanlabs/conf/v3"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/undothis/Moodling-sub000/business/insight"
	"github.com/undothis/Moodling-sub000/business/pipeline"
	"github.com/undothis/Moodling-sub000/foundation/config"
	"github.com/undothis/Moodling-sub000/foundation/external/acoustic"
	"github.com/undothis/Moodling-sub000/foundation/external/asr"
	"github.com/undothis/Moodling-sub000/foundation/external/diarizer"
	"github.com/undothis/Moodling-sub000/foundation/external/groq"
	"github.com/undothis/Moodling-sub000/foundation/external/media"
	"github.com/undothis/Moodling-sub000/foundation/external/vision"
	"github.com/undothis/Moodling-sub000/foundation/logger"
	"github.com/undothis/Moodling-sub000/foundation/pool"
	"github.com/undothis/Moodling-sub000/foundation/pubsub"
	"github.com/undothis/Moodling-sub000/foundation/redis"
	"github.com/undothis/Moodling-sub000/foundation/state"
)

var (
	version   string
	buildTime string
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
		os.Exit(1)
	}
}

func run() error {
	// =================================================================================================================
	// Configuration

	_ = godotenv.Load()

	cfg := struct {
		conf.Version
		Args     conf.Args
		Pipeline struct {
			ConfigFilePath string `conf:"default:config.yaml"`
		}
		Groq struct {
			ApiKey string `conf:"env:GROQ_API_KEY,noprint"`
		}
		Redis struct {
			Address       string `conf:"default:"`
			Password      string `conf:"noprint"`
			JobChannel    string `conf:"default:moodling:jobs"`
			ExportChannel string `conf:"default:moodling:training"`
		}
		Logger struct {
			LogDirectory string `conf:"default:,noprint"`
		}
	}{
		Version: conf.Version{
			Build: version,
			Desc:  buildTime,
		},
	}

	help, err := conf.Parse("PIPELINE", &cfg)
	if err != nil {
		if err == conf.ErrHelpWanted {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	displayVersion := flag.Bool("version", false, "Display version and exit")
	flag.Parse()
	if *displayVersion {
		fmt.Printf("Version:\t%s\n", version)
		fmt.Printf("Build time:\t%s\n", buildTime)
		return nil
	}

	videoIDs := []string(cfg.Args)
	if len(videoIDs) == 0 {
		return fmt.Errorf("no video IDs given")
	}

	// =================================================================================================================
	// Application Logger

	runID := uuid.NewString()

	log, err := logger.New(cfg.Logger.LogDirectory, runID)
	if err != nil {
		return fmt.Errorf("constructing logger: %w", err)
	}
	defer log.Sync()

	log.Infow("startup", "runID", runID, "videos", len(videoIDs))
	defer log.Infow("shutdown", "runID", runID)

	// =================================================================================================================
	// Pipeline Configuration

	pc, err := config.Load(cfg.Pipeline.ConfigFilePath)
	if err != nil {
		return fmt.Errorf("loading %s: %w", cfg.Pipeline.ConfigFilePath, err)
	}
	log.Infow("startup", "pipeline", pc.Pipeline.Name, "language", pc.Pipeline.Language)

	// =================================================================================================================
	// Collaborator Clients

	gen := groq.New(cfg.Groq.ApiKey, pc.Extraction.Model, pc.Extraction.Temperature)
	extractor := insight.NewExtractor(gen, pc.Extraction.TranscriptCharBudget, pc.Extraction.MaxInsights, log)

	// =================================================================================================================
	// Event Sink

	// The broker only has listeners when a Redis sink exists to bridge
	// job events out of the process.
	var sink pipeline.EventSink
	var broker *pubsub.Broker[pipeline.JobEvent]
	if cfg.Redis.Address != "" {
		r, err := redis.New(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.JobChannel, cfg.Redis.ExportChannel, log)
		if err != nil {
			return fmt.Errorf("connecting redis: %w", err)
		}
		defer r.Close()
		sink = r
		broker = pubsub.NewBroker[pipeline.JobEvent]()
	} else {
		log.Infow("startup", "redis", "disabled")
	}

	// =================================================================================================================
	// Pipeline

	workers := pool.New(pc.Analysis.PoolWorkers)
	defer workers.Shutdown()

	p := pipeline.New(pipeline.Settings{
		Config: pipeline.Config{
			Language: pc.Pipeline.Language,
			Thresholds: insight.Thresholds{
				MinQuality:      pc.Scoring.MinQuality,
				MinSafety:       pc.Scoring.MinSafety,
				ReviewThreshold: pc.Scoring.ReviewThreshold,
			},
			MinSpeakers:     pc.Analysis.MinSpeakers,
			MaxSpeakers:     pc.Analysis.MaxSpeakers,
			FrameSampleRate: pc.Analysis.FrameSampleRate,
			MaxJobs:         pc.Batch.MaxJobs,
			JobDelay:        time.Duration(pc.Batch.JobDelaySeconds) * time.Second,
			FailureDelay:    time.Duration(pc.Batch.FailureDelaySeconds) * time.Second,
			MaxAttempts:     pc.Batch.MaxAttempts,
		},
		Logger:    log,
		Media:     media.New(pc.Services.Media),
		ASR:       asr.New(pc.Services.ASR),
		Diarizer:  diarizer.New(pc.Services.Diarizer),
		Acoustic:  acoustic.New(pc.Services.Acoustic),
		Vision:    vision.New(pc.Services.Vision),
		Extractor: extractor,
		Pool:      workers,
		State:     state.NewState(),
		Broker:    broker,
		Sink:      sink,
	})

	// =================================================================================================================
	// Run Batch

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	result := p.RunBatch(ctx, videoIDs)

	log.Infow("batch result",
		"completed", len(result.Outcomes),
		"failed", len(result.Failed),
		"skipped", result.Skipped,
		"cancelled", result.Cancelled,
	)
	for _, out := range result.Outcomes {
		log.Infow("video done",
			"videoID", out.Job.VideoID,
			"speakers", len(out.Stats),
			"interviewer", out.Interviewer,
			"insights", len(out.Insights),
		)
	}
	for _, job := range result.Failed {
		log.Errorw("video failed",
			"ERROR", job.LastError,
			"videoID", job.VideoID,
			"stage", job.FailedStage,
			"kind", job.ErrorKind,
			"attempts", job.AttemptCount,
		)
	}

	if len(result.Failed) > 0 {
		return fmt.Errorf("%d of %d jobs failed", len(result.Failed), len(videoIDs))
	}
	return nil
}
