package main

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/ignatzorin/brandlink-backend/internal/config"
	"github.com/ignatzorin/brandlink-backend/internal/db"
	"github.com/ignatzorin/brandlink-backend/internal/goroutine"
	"github.com/ignatzorin/brandlink-backend/internal/graph"
	httpHandlers "github.com/ignatzorin/brandlink-backend/internal/http/handlers"
	httpRouter "github.com/ignatzorin/brandlink-backend/internal/http/router"
	"github.com/ignatzorin/brandlink-backend/internal/logger"
	"github.com/ignatzorin/brandlink-backend/internal/metrics"
	"github.com/ignatzorin/brandlink-backend/internal/repository"
	"github.com/ignatzorin/brandlink-backend/internal/service"
	"github.com/ignatzorin/brandlink-backend/internal/sms"
	"github.com/ignatzorin/brandlink-backend/internal/ws"
	"github.com/ignatzorin/brandlink-backend/migrations"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	// Инициализация логгера
	logLevel := cfg.LogLevel
	if logLevel == "" {
		logLevel = "info"
		if !cfg.IsProduction() {
			logLevel = "debug"
		}
	}
	logger.Init(logLevel)
	if !cfg.IsProduction() {
		logger.SetTextFormatter()
	}

	// Подключение к базе и миграции.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Log.Fatalf("main: ошибка подключения к базе: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, migrationsFS(cfg.MigrationsPath)); err != nil {
		logger.Log.Fatalf("main: ошибка миграций: %v", err)
	}

	redisClient, err := db.NewRedis(ctx, db.RedisOptions{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		Timeout:  cfg.RedisTimeout,
	})
	if err != nil {
		logger.Log.Fatalf("main: ошибка подключения к redis: %v", err)
	}
	defer safeCloseRedis(redisClient)

	appMetrics := metrics.New()

	// Репозитории.
	userRepo := repository.NewUserRepository(dbConn, cfg.DBQueryTimeout)
	brandRepo := repository.NewBrandRepository(dbConn, cfg.DBQueryTimeout)
	channelRepo := repository.NewChannelRepository(dbConn, cfg.DBQueryTimeout)
	otpState := repository.NewOTPStateRepository(redisClient, cfg.RedisTimeout)

	// Внешние провайдеры.
	smsProvider := newSMSProvider(cfg)
	graphClient := graph.NewClient(graph.Config{
		AppID:       cfg.MetaAppID,
		AppSecret:   cfg.MetaAppSecret,
		RedirectURI: cfg.MetaRedirectURI,
		Version:     cfg.MetaGraphVersion,
		Timeout:     cfg.ProviderTimeout,
	})

	hub := ws.NewHub(appMetrics)
	goroutine.SafeGoWithContext(ctx, "ws-hub", hub.Run)

	if !cfg.RequireVerifiedPhone {
		logger.Log.Warn("main: REGISTRATION_REQUIRE_VERIFIED_PHONE=false, регистрация возможна без подтверждения телефона")
	}

	// Сервисы.
	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.RefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	otpService := service.NewOTPService(otpState, smsProvider, cfg.OTPTTL, cfg.OTPVerifiedTTL, appMetrics)
	registrationService := service.NewRegistrationService(userRepo, otpService, cfg.RequireVerifiedPhone, appMetrics)
	authService := service.NewAuthService(userRepo, tokenManager)
	profileService := service.NewProfileService(userRepo, brandRepo)
	brandService := service.NewBrandService(brandRepo, hub)
	pagesCache := service.NewCacheService()
	goroutine.SafeGoWithContext(ctx, "pages-cache-cleanup", pagesCache.Run)
	channelService := service.NewChannelService(channelRepo, brandRepo, graphClient, hub).
		WithPagesCache(pagesCache, cfg.PagesCacheTTL)
	connectService := service.NewConnectService(graphClient, brandRepo, channelRepo, hub, appMetrics)

	// Хэндлеры.
	registerHandler := httpHandlers.NewRegisterHandler(registrationService)
	authHandler := httpHandlers.NewAuthHandler(authService, cfg.IsProduction())
	profileHandler := httpHandlers.NewProfileHandler(profileService)
	brandHandler := httpHandlers.NewBrandHandler(brandService)
	channelHandler := httpHandlers.NewChannelHandler(channelService)
	connectHandler := httpHandlers.NewConnectHandler(connectService)
	wsHandler := httpHandlers.NewWSHandler(hub, tokenManager, cfg.AllowedOrigins)
	healthHandler := httpHandlers.NewHealthHandler(dbConn, redisClient)

	// Роутер.
	engine := httpRouter.SetupRouter(
		cfg,
		redisClient,
		tokenManager,
		appMetrics,
		registerHandler,
		authHandler,
		profileHandler,
		brandHandler,
		channelHandler,
		connectHandler,
		wsHandler,
		healthHandler,
	)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Завершаем сервер при получении сигнала.
	goroutine.SafeGo("http-shutdown", func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Log.Errorf("main: ошибка остановки http сервера: %v", err)
		}
	})

	logger.Log.Infof("main: HTTP сервер запущен на порту %s", cfg.HTTPPort)

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Log.Fatalf("main: сервер завершился с ошибкой: %v", err)
	}
}

// newSMSProvider выбирает Twilio Verify, если он настроен, иначе статический код для разработки.
func newSMSProvider(cfg *config.Config) sms.Provider {
	if cfg.TwilioEnabled() {
		return sms.NewTwilioVerify(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioVerifyServiceSID, cfg.ProviderTimeout)
	}
	logger.Log.Warnf("main: Twilio не настроен, используется статический OTP код")
	return sms.NewStaticProvider(cfg.DevOTPCode)
}

// migrationsFS берёт миграции с диска, если каталог есть, иначе встроенные в бинарник.
func migrationsFS(path string) fs.FS {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return os.DirFS(path)
	}
	return migrations.FS
}

// safeClose закрывает соединение с базой.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		logger.Log.Errorf("main: ошибка закрытия базы: %v", err)
	}
}

func safeCloseRedis(client *redis.Client) {
	if err := client.Close(); err != nil {
		logger.Log.Errorf("main: ошибка закрытия redis: %v", err)
	}
}
