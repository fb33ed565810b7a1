package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/minio/minio-go/v7"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/lestercardoz11/haven/internal/config"
	s3infra "github.com/lestercardoz11/haven/internal/infra/s3"
	pgrepo "github.com/lestercardoz11/haven/internal/repo/postgres"
	redrepo "github.com/lestercardoz11/haven/internal/repo/redis"
	authsvc "github.com/lestercardoz11/haven/internal/services/auth"
	candidatesvc "github.com/lestercardoz11/haven/internal/services/candidates"
	interestsvc "github.com/lestercardoz11/haven/internal/services/interests"
	matchessvc "github.com/lestercardoz11/haven/internal/services/matches"
	mediasvc "github.com/lestercardoz11/haven/internal/services/media"
	messagingsvc "github.com/lestercardoz11/haven/internal/services/messaging"
	ratesvc "github.com/lestercardoz11/haven/internal/services/rate"
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	postgres   *pgxpool.Pool
	redis      *goredis.Client
	s3         *minio.Client
	httpRouter http.Handler
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log)

	var pool *pgxpool.Pool
	if p, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN); err != nil {
		log.Warn("postgres init failed, continuing in degraded mode", zap.Error(err))
	} else {
		pool = p
	}

	redisClient := redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	rateRepo := redrepo.NewRateRepo(redisClient)
	pubsubRepo := redrepo.NewPubSubRepo(redisClient)

	profileRepo := pgrepo.NewProfileRepo(pool)
	matchRepo := pgrepo.NewMatchRepo(pool)
	interestRepo := pgrepo.NewInterestRepo(pool)
	conversationRepo := pgrepo.NewConversationRepo(pool)
	messageRepo := pgrepo.NewMessageRepo(pool)
	blockRepo := pgrepo.NewBlockRepo(pool)
	reportRepo := pgrepo.NewReportRepo(pool)
	profileViewRepo := pgrepo.NewProfileViewRepo(pool)

	jwtManager := authsvc.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTAccessTTL)
	rateLimiter := ratesvc.NewLimiter(
		rateRepo,
		cfg.Limits.InterestsPerMinute,
		cfg.Limits.MessagesPerMinute,
		cfg.Limits.MessagesPer10Sec,
	)

	candidateService := candidatesvc.NewService(candidatesvc.Dependencies{
		Profiles: profileRepo,
		Matches:  matchRepo,
		Blocks:   blockRepo,
		Views:    profileViewRepo,
	}, candidatesvc.Config{
		DefaultAgeMin:   cfg.Matching.DefaultAgeMin,
		DefaultAgeMax:   cfg.Matching.DefaultAgeMax,
		DefaultRadiusKM: cfg.Matching.DefaultRadiusKM,
		MaxRadiusKM:     cfg.Matching.MaxRadiusKM,
		MaxCandidates:   cfg.Matching.MaxCandidates,
	})
	interestService := interestsvc.NewService(interestsvc.Dependencies{
		Pool:          pool,
		Interests:     interestRepo,
		Matches:       matchRepo,
		Conversations: conversationRepo,
		Profiles:      profileRepo,
		Blocks:        blockRepo,
		Limiter:       rateLimiter,
	}, interestsvc.Config{})
	matchesService := matchessvc.NewService(matchessvc.Dependencies{
		MatchStore:  matchRepo,
		BlockStore:  blockRepo,
		ReportStore: reportRepo,
	})

	var s3Client *minio.Client
	if c, err := s3infra.NewClient(s3infra.Config{
		Endpoint:  cfg.S3.Endpoint,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
		UseSSL:    cfg.S3.UseSSL,
	}); err != nil {
		log.Warn("s3 init failed, continuing in degraded mode", zap.Error(err))
	} else {
		s3Client = c
	}

	mediaStorage := mediasvc.NewS3Storage(s3Client, cfg.S3.Bucket)
	if s3Client != nil {
		if err := mediaStorage.EnsureBucket(ctx); err != nil {
			log.Warn("s3 bucket check failed, continuing in degraded mode", zap.Error(err))
		}
	}
	mediaService := mediasvc.NewService(mediaStorage, mediasvc.Config{
		UploadTTL:   cfg.Messaging.ImageURLTTL,
		DownloadTTL: cfg.Messaging.ImageURLTTL,
	})
	messagingService := messagingsvc.NewService(messagingsvc.Dependencies{
		Pool:          pool,
		Conversations: conversationRepo,
		Messages:      messageRepo,
		Publisher:     pubsubRepo,
		Images:        mediaService,
		Limiter:       rateLimiter,
		Logger:        log,
	}, messagingsvc.Config{
		MaxMessageLen: cfg.Messaging.MaxMessageLen,
		PreviewLen:    cfg.Messaging.PreviewLen,
	})

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	RegisterRoutes(r, Dependencies{
		JWTManager:       jwtManager,
		CandidateService: candidateService,
		InterestService:  interestService,
		MatchService:     matchesService,
		MessagingService: messagingService,
		MediaService:     mediaService,
		LocationStore:    profileRepo,
		Subscriber:       pubsubRepo,
		Logger:           log,
		Config:           cfg,
	})

	return &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		postgres:   pool,
		redis:      redisClient,
		s3:         s3Client,
		httpRouter: r,
	}, nil
}

func (a *App) Run() error {
	a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}
