package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"collector-service/config"
	"collector-service/constant"
	"collector-service/handler"
	"collector-service/outbox"
	"collector-service/pkg/rabbitmq"
	"collector-service/pkg/storage"
	"collector-service/relayer"
	"collector-service/repository"
	"collector-service/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func RunHttp(cfg *config.Config) {
	ctx, cancel := signal.NotifyContext(setupLogger(cfg), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	zerolog.Ctx(ctx).Info().Str("env", cfg.App.Environment).Bool("isProduction", cfg.App.Environment == constant.EnvironmentProduction.String()).Send()
	if cfg.App.Environment == constant.EnvironmentProduction.String() {
		gin.SetMode(gin.ReleaseMode)
	}

	conn, err := config.NewRabbitMQConn(ctx, cfg.Queue)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("NewRabbitMQConn")
	}

	repo := repository.NewRepo(cfg.DB)
	if err := repo.Migrate(); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("database migration failed")
	}

	publisher := outbox.NewPublisher(repo)
	mediaStore := storage.NewMinioStore(cfg.Storage, cfg.MinIOBucket)
	ingestService := service.NewMediaIngestService(repo, publisher, mediaStore, cfg.Media.MaxFileSizeBytes)

	sessionIndex := service.NewActiveSessionIndex()
	if err := sessionIndex.Rebuild(ctx, repo); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to rebuild active session index")
	}
	voiceSessionService := service.NewVoiceSessionService(repo, publisher, sessionIndex)

	serviceDeps := handler.ServiceDependencies{
		IngestService:       ingestService,
		VoiceSessionService: voiceSessionService,
		MessageService:      service.NewMessageService(repo, publisher),
		AudioMessageService: service.NewAudioMessageService(repo, publisher),
	}

	// Outbox relayer, the only broker writer.
	brokerPublisher, err := rabbitmq.NewPublisher(conn, cfg.Queue)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to open broker publisher channel")
	} else {
		outboxRelayer := relayer.NewRelayer(repo, brokerPublisher,
			time.Duration(cfg.Relayer.IntervalSeconds)*time.Second, cfg.Relayer.BatchSize)
		go outboxRelayer.Run(ctx)
	}

	// Media status reports from the processing pipeline.
	statusConsumer := rabbitmq.NewConsumer(conn, cfg.Queue, rabbitmq.MediaStatusBinding, cfg.Server.Workers, handler.MediaStatusHandler)
	go func() {
		err := statusConsumer.Consume(ctx, serviceDeps)
		if err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Msg("media status consumer error")
		}
	}()

	// Captured platform facts from the gateways.
	eventsConsumer := rabbitmq.NewConsumer(conn, cfg.Queue, rabbitmq.PlatformEventsBinding, cfg.Server.Workers, handler.PlatformEventHandler)
	go func() {
		err := eventsConsumer.Consume(ctx, serviceDeps)
		if err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Msg("platform events consumer error")
		}
	}()

	r := gin.Default()
	r.Use(requestLogger(ctx))
	addHealth(r)
	handler.NewMediaHandler(ingestService).Register(r)

	srv := http.Server{
		Handler:           r,
		Addr:              fmt.Sprintf(":%s", cfg.Server.HttpPort),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zerolog.Ctx(ctx).Info().Str("env", cfg.App.Environment).Msg("start http server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zerolog.Ctx(ctx).Error().Str("env", cfg.App.Environment).Msg(err.Error())
		}
	}()

	<-ctx.Done()
	zerolog.Ctx(ctx).Info().Msg("shutting down server")
	if err := srv.Shutdown(ctx); err != nil {
		zerolog.Ctx(ctx).Error().Str("env", cfg.App.Environment).Msg(err.Error())
	}

	zerolog.Ctx(ctx).Info().Str("env", cfg.App.Environment).Msg("server shutdown")
}

func addHealth(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})
}

// requestLogger puts the service logger into each request context so services
// can use zerolog.Ctx.
func requestLogger(ctx context.Context) gin.HandlerFunc {
	logger := zerolog.Ctx(ctx)
	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context()))
		c.Next()
	}
}

func setupLogger(cfg *config.Config) context.Context {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if cfg.App.Environment == constant.EnvironmentDevelop.String() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	ctx := logger.WithContext(context.Background())

	return ctx
}
