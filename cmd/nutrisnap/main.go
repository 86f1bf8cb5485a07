package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsrekognition "github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"nutrisnap/internal/adapter/bedrock"
	"nutrisnap/internal/adapter/dynamo"
	adapthttp "nutrisnap/internal/adapter/http"
	"nutrisnap/internal/adapter/memory"
	"nutrisnap/internal/adapter/postgres"
	"nutrisnap/internal/adapter/rekognition"
	"nutrisnap/internal/adapter/s3store"
	"nutrisnap/internal/app"
	"nutrisnap/internal/config"
	"nutrisnap/internal/domain"
	"nutrisnap/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	lg, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer lg.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var awsCfg aws.Config
	if cfg.UsesAWS() {
		awsCfg, err = awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			lg.Fatal("aws config", "error", err)
		}
	}

	repo, closeRepo, err := openStore(cfg, awsCfg)
	if err != nil {
		lg.Fatal("store open", "store", cfg.Store, "error", err)
	}
	defer closeRepo()

	var (
		images    domain.ImageStore         = unconfigured{}
		labeler   domain.FoodLabeler        = unconfigured{}
		estimator domain.NutritionEstimator = unconfigured{}
	)
	if cfg.UsesAWS() {
		images = s3store.New(s3.NewFromConfig(awsCfg), cfg.S3Bucket)
		labeler = rekognition.New(awsrekognition.NewFromConfig(awsCfg))
		estimator = bedrock.New(bedrockruntime.NewFromConfig(awsCfg), cfg.BedrockModelID)
	} else {
		lg.Warn("AWS_REGION not set; meal analysis is disabled")
	}

	mealSvc := app.NewMealService(repo, images, labeler, estimator, cfg.UpstreamTimeout, lg)
	insightsSvc := app.NewInsightsService(repo, app.InsightsOptions{
		DefaultWindowDays: cfg.WindowDays,
		MaxWindowDays:     cfg.MaxWindowDays,
		FetchLimit:        cfg.FetchLimit,
		FetchTimeout:      cfg.FetchTimeout,
	}, lg)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           adapthttp.New(mealSvc, insightsSvc, lg).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	lg.Info("listening", "addr", cfg.Addr, "store", cfg.Store)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		lg.Fatal("serve", "error", err)
	}
}

func openStore(cfg config.Config, awsCfg aws.Config) (domain.MealRepository, func(), error) {
	switch cfg.Store {
	case config.StorePostgres:
		db, err := postgres.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return db, func() { _ = db.Close() }, nil
	case config.StoreDynamo:
		return dynamo.New(dynamodb.NewFromConfig(awsCfg), cfg.DynamoTable), func() {}, nil
	case config.StoreMemory:
		return memory.New(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}

// unconfigured stands in for the AWS collaborators when no region is set.
type unconfigured struct{}

var errUnconfigured = errors.New("AWS_REGION is not configured")

func (unconfigured) Put(context.Context, string, []byte, string) (string, error) {
	return "", errUnconfigured
}

func (unconfigured) DetectLabels(context.Context, []byte) ([]domain.Label, error) {
	return nil, errUnconfigured
}

func (unconfigured) Estimate(context.Context, []string) (*domain.Estimate, error) {
	return nil, errUnconfigured
}
