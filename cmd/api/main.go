package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"
	fbapp "firebase.google.com/go/v4"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"google.golang.org/api/option"

	"skipfurther/internal/adapter/api"
	"skipfurther/internal/adapter/api/handler"
	apimiddleware "skipfurther/internal/adapter/api/middleware"
	"skipfurther/internal/adapter/api/router"
	"skipfurther/internal/adapter/repository"
	"skipfurther/internal/adapter/repository/memory"
	domainrepo "skipfurther/internal/domain/repository"
	"skipfurther/internal/domain/service"
	"skipfurther/internal/infrastructure/broadcaster"
	"skipfurther/internal/infrastructure/devauth"
	"skipfurther/internal/infrastructure/firebase"
	"skipfurther/internal/infrastructure/ratelimit"
	"skipfurther/internal/infrastructure/storage"
	"skipfurther/internal/infrastructure/websocket"
	"skipfurther/internal/usecase"
	"skipfurther/pkg/config"
	"skipfurther/pkg/logger"
	"skipfurther/pkg/response"
)

type repositories struct {
	profiles      domainrepo.ProfileRepository
	listings      domainrepo.ListingRepository
	bids          domainrepo.BidRepository
	transactions  domainrepo.TransactionRepository
	reviews       domainrepo.ReviewRepository
	notifications domainrepo.NotificationRepository
	watchlist     domainrepo.WatchlistRepository
}

// backend is everything that differs between the Firebase and in-memory deployments.
type backend struct {
	repos    repositories
	identity usecase.IdentityProvider
	verifier usecase.TokenVerifier
	devToken usecase.DevTokenIssuer
	storage  service.FileUploadService
	checks   map[string]handler.Pinger
	closers  []func() error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal(err, "Failed to load configuration")
	}
	logger.Init(cfg.LogLevel, cfg.LogFormat)
	log := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var b *backend
	switch cfg.DataBackend {
	case config.BackendFirebase:
		b, err = firebaseBackend(ctx, cfg)
	default:
		b = memoryBackend(cfg)
	}
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.DataBackend).Msg("Failed to initialize backend")
	}
	defer func() {
		for _, closeFn := range b.closers {
			if err := closeFn(); err != nil {
				log.Warn().Err(err).Msg("close failed")
			}
		}
	}()
	log.Info().Str("backend", cfg.DataBackend).Msg("backend ready")

	wsManager := websocket.NewManager()
	defer wsManager.CloseAll()

	var publisher usecase.EventPublisher = broadcaster.NewLocalBroadcaster(wsManager)
	if cfg.RedisAddr != "" {
		redisClient := broadcaster.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := broadcaster.PingRedis(ctx, redisClient); err != nil {
			log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("Failed to connect to Redis")
		}
		redisBroadcaster := broadcaster.NewRedisBroadcaster(redisClient, log)
		defer redisBroadcaster.Close()

		go func() {
			if err := redisBroadcaster.Run(ctx, wsManager); err != nil {
				log.Error().Err(err).Msg("Redis subscriber stopped")
			}
		}()
		publisher = redisBroadcaster
		b.checks["redis"] = func(ctx context.Context) error {
			return broadcaster.PingRedis(ctx, redisClient)
		}
	}

	bidLimiter := ratelimit.NewRateLimiter(cfg.BidRatePerMinute)
	bidLimiter.StartCleanupRoutine(ctx, 5*time.Minute)
	apiLimiter := ratelimit.NewRateLimiter(cfg.APIRatePerMinute)
	apiLimiter.StartCleanupRoutine(ctx, 5*time.Minute)

	r := b.repos
	notificationUseCase := usecase.NewNotificationUseCase(r.notifications, publisher)
	authUseCase := usecase.NewAuthUseCase(r.profiles, b.identity, cfg.AppOrigin)
	profileUseCase := usecase.NewProfileUseCase(r.profiles, b.storage)
	listingUseCase := usecase.NewListingUseCase(r.listings, r.bids, r.profiles, b.storage)
	bidUseCase := usecase.NewBidUseCase(r.bids, r.listings, r.profiles, notificationUseCase, bidLimiter)
	transactionUseCase := usecase.NewTransactionUseCase(r.transactions, r.listings, r.profiles, b.storage, notificationUseCase)
	reviewUseCase := usecase.NewReviewUseCase(r.reviews, r.transactions, r.profiles, notificationUseCase)
	watchlistUseCase := usecase.NewWatchlistUseCase(r.watchlist, r.listings)
	dashboardUseCase := usecase.NewDashboardUseCase(r.listings, r.bids, r.transactions, r.watchlist)

	auctionCloser := usecase.NewAuctionCloser(r.listings, r.bids, notificationUseCase)
	auctionCloser.StartAuctionCloseJob(ctx, cfg.AuctionSweepInterval)

	handler.Setup(handler.UseCases{
		Auth:         authUseCase,
		Profile:      profileUseCase,
		Listing:      listingUseCase,
		Bid:          bidUseCase,
		Transaction:  transactionUseCase,
		Review:       reviewUseCase,
		Notification: notificationUseCase,
		Watchlist:    watchlistUseCase,
		Dashboard:    dashboardUseCase,
	})
	handler.SetupHealthHandler(cfg.DataBackend, b.checks)
	handler.SetupWebSocketHandler(wsManager, cfg.AppOrigin)
	if cfg.IsDevelopment() && b.devToken != nil {
		handler.SetupDevTokenHandler(b.devToken, r.profiles)
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = response.HTTPErrorHandler

	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: []string{cfg.AppOrigin},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(apimiddleware.RequestLogger())

	authMiddleware := apimiddleware.NewAuthMiddleware(b.verifier)
	router.Setup(e, authMiddleware, router.Options{
		Environment: cfg.Environment,
		APILimiter:  apiLimiter,
	})

	go func() {
		log.Info().Str("port", cfg.ServerPort).Msg("Starting server")
		if err := e.Start(":" + cfg.ServerPort); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server stopped")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}
	log.Info().Msg("Server stopped")
}

func credentials(cfg *config.Config) []option.ClientOption {
	if cfg.FirebaseServiceAccountJSON != "" {
		return []option.ClientOption{option.WithCredentialsJSON([]byte(cfg.FirebaseServiceAccountJSON))}
	}
	if cfg.FirebaseServiceAccountPath != "" {
		return []option.ClientOption{option.WithCredentialsFile(cfg.FirebaseServiceAccountPath)}
	}
	// Application default credentials.
	return nil
}

func firebaseBackend(ctx context.Context, cfg *config.Config) (*backend, error) {
	opts := credentials(cfg)

	app, err := fbapp.NewApp(ctx, &fbapp.Config{ProjectID: cfg.FirebaseProject}, opts...)
	if err != nil {
		return nil, err
	}
	authClient, err := app.Auth(ctx)
	if err != nil {
		return nil, err
	}
	identity, err := firebase.NewAuthClient(ctx, authClient, cfg.FirebaseApiKey)
	if err != nil {
		return nil, err
	}

	firestoreClient, err := firestore.NewClient(ctx, cfg.FirebaseProject, opts...)
	if err != nil {
		return nil, err
	}

	storageClient, err := storage.NewCloudStorageClient(ctx, cfg.StorageBucket, cfg.AppOrigin, opts...)
	if err != nil {
		firestoreClient.Close()
		return nil, err
	}

	return &backend{
		repos: repositories{
			profiles:      repository.NewFirestoreProfileRepository(firestoreClient),
			listings:      repository.NewFirestoreListingRepository(firestoreClient),
			bids:          repository.NewFirestoreBidRepository(firestoreClient),
			transactions:  repository.NewFirestoreTransactionRepository(firestoreClient),
			reviews:       repository.NewFirestoreReviewRepository(firestoreClient),
			notifications: repository.NewFirestoreNotificationRepository(firestoreClient),
			watchlist:     repository.NewFirestoreWatchlistRepository(firestoreClient),
		},
		identity: identity,
		verifier: identity,
		devToken: identity,
		storage:  storageClient,
		checks: map[string]handler.Pinger{
			"firestore": func(ctx context.Context) error {
				_, err := firestoreClient.Collection("categories").Limit(1).Documents(ctx).GetAll()
				return err
			},
		},
		closers: []func() error{storageClient.Close, firestoreClient.Close},
	}, nil
}

// memoryBackend runs the whole marketplace in process for local development and demos.
func memoryBackend(cfg *config.Config) *backend {
	store := memory.NewStore()
	store.SeedCategories(memory.DefaultCategories()...)

	identity := devauth.NewProvider(cfg.JWTSecret, time.Duration(cfg.JWTExpiry)*time.Second)
	files := storage.NewMemoryStorage()

	return &backend{
		repos: repositories{
			profiles:      memory.NewProfileRepository(store),
			listings:      memory.NewListingRepository(store),
			bids:          memory.NewBidRepository(store),
			transactions:  memory.NewTransactionRepository(store),
			reviews:       memory.NewReviewRepository(store),
			notifications: memory.NewNotificationRepository(store),
			watchlist:     memory.NewWatchlistRepository(store),
		},
		identity: identity,
		verifier: identity,
		devToken: identity,
		storage:  files,
		checks:   map[string]handler.Pinger{},
		closers:  []func() error{files.Close},
	}
}
