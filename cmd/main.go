package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	addCreditsHandler "github.com/m04kA/SMC-SkiBookingService/internal/api/handlers/add_credits"
	approveBookingHandler "github.com/m04kA/SMC-SkiBookingService/internal/api/handlers/approve_booking"
	createServiceHandler "github.com/m04kA/SMC-SkiBookingService/internal/api/handlers/create_service"
	deleteServiceHandler "github.com/m04kA/SMC-SkiBookingService/internal/api/handlers/delete_service"
	denyBookingHandler "github.com/m04kA/SMC-SkiBookingService/internal/api/handlers/deny_booking"
	getBalanceHandler "github.com/m04kA/SMC-SkiBookingService/internal/api/handlers/get_balance"
	getBookingHandler "github.com/m04kA/SMC-SkiBookingService/internal/api/handlers/get_booking"
	getServiceHandler "github.com/m04kA/SMC-SkiBookingService/internal/api/handlers/get_service"
	listMyBookingsHandler "github.com/m04kA/SMC-SkiBookingService/internal/api/handlers/list_my_bookings"
	listResortBookingsHandler "github.com/m04kA/SMC-SkiBookingService/internal/api/handlers/list_resort_bookings"
	refundBookingHandler "github.com/m04kA/SMC-SkiBookingService/internal/api/handlers/refund_booking"
	reserveBookingHandler "github.com/m04kA/SMC-SkiBookingService/internal/api/handlers/reserve_booking"
	searchServicesHandler "github.com/m04kA/SMC-SkiBookingService/internal/api/handlers/search_services"
	"github.com/m04kA/SMC-SkiBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-SkiBookingService/internal/config"
	"github.com/m04kA/SMC-SkiBookingService/internal/infra/lock"
	"github.com/m04kA/SMC-SkiBookingService/internal/infra/queue"
	"github.com/m04kA/SMC-SkiBookingService/internal/integrations/mailer"
	"github.com/m04kA/SMC-SkiBookingService/internal/scheduler"
	bookingsService "github.com/m04kA/SMC-SkiBookingService/internal/service/bookings"
	catalogService "github.com/m04kA/SMC-SkiBookingService/internal/service/catalog"
	walletService "github.com/m04kA/SMC-SkiBookingService/internal/service/wallet"
	approveBookingUC "github.com/m04kA/SMC-SkiBookingService/internal/usecase/approve_booking"
	expireBookingUC "github.com/m04kA/SMC-SkiBookingService/internal/usecase/expire_booking"
	reserveBookingUC "github.com/m04kA/SMC-SkiBookingService/internal/usecase/reserve_booking"
	"github.com/m04kA/SMC-SkiBookingService/pkg/logger"
	"github.com/m04kA/SMC-SkiBookingService/pkg/metrics"
)

const defaultConfigPath = "config.toml"

type locker interface {
	WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

type expirationScheduler interface {
	Schedule(ctx context.Context, bookingID int64, delay time.Duration) error
	Close() error
}

func main() {
	// .env необязателен, переменные окружения могут прийти из окружения контейнера
	_ = godotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = defaultConfigPath
	}

	// Загружаем конфигурацию
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-SkiBookingService...")
	log.Info("Configuration loaded from %s", configPath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Хранилища: postgres или in-memory
	store, err := openStorage(cfg, metricsCollector, stopMetricsCh, log)
	if err != nil {
		log.Fatal("Failed to initialize storage: %v", err)
	}
	defer store.close()

	// Блокировка проверки вместимости на время резервирования
	var serviceLocker locker
	if cfg.Redis.Enabled {
		redisClient, err := lock.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal("Failed to connect to redis: %v", err)
		}
		defer redisClient.Close()

		serviceLocker = lock.NewRedisLocker(redisClient, time.Duration(cfg.Redis.LockTTL)*time.Millisecond)
		log.Info("Redis locker initialized (addr=%s)", cfg.Redis.Addr)
	} else {
		serviceLocker = lock.NewLocalLocker()
		log.Warn("Redis disabled, using in-process locker")
	}

	// Уведомления: SMTP или запись в лог
	var notifier mailer.Notifier = mailer.NewLogNotifier(log)
	if cfg.SMTP.Enabled {
		smtpClient, err := mailer.NewClient(mailer.Config{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		}, log)
		if err != nil {
			log.Fatal("Failed to initialize SMTP client: %v", err)
		}
		notifier = smtpClient
		log.Info("SMTP notifications enabled (host=%s, port=%d)", cfg.SMTP.Host, cfg.SMTP.Port)
	}
	dispatcher := mailer.NewDispatcher(notifier, log)

	// Инициализируем сервисы
	walletSvc := walletService.NewService(store.users, log)
	bookingSvc := bookingsService.NewService(
		store.bookings,
		store.services,
		store.users,
		walletSvc,
		dispatcher,
		store.tx,
		metricsCollector,
		&bookingsService.RealTimeProvider{},
		log,
	)
	catalogSvc := catalogService.NewService(store.services, store.bookings, log)

	// Истечение неподтвержденных бронирований
	expireBookingUseCase := expireBookingUC.NewUseCase(store.bookings, bookingSvc, cfg.Booking.ExpirationDelay(), log)

	var expirations expirationScheduler
	if cfg.RabbitMQ.Enabled {
		topology := queue.Topology{
			Exchange:   cfg.RabbitMQ.Exchange,
			WorkQueue:  cfg.RabbitMQ.WorkQueue,
			DelayQueue: cfg.RabbitMQ.DelayQueue,
		}
		publisher, err := queue.NewPublisher(cfg.RabbitMQ.URL, topology, log)
		if err != nil {
			log.Fatal("Failed to initialize RabbitMQ publisher: %v", err)
		}
		expirations = publisher

		consumer := queue.NewConsumer(cfg.RabbitMQ.URL, topology, cfg.RabbitMQ.Prefetch, expireBookingUseCase, log)
		go consumer.Run(ctx)
		log.Info("RabbitMQ expiration queue enabled (exchange=%s, queue=%s)", topology.Exchange, topology.WorkQueue)
	} else {
		delayed, err := scheduler.NewDelayed(expireBookingUseCase, log)
		if err != nil {
			log.Fatal("Failed to initialize expiration scheduler: %v", err)
		}
		expirations = delayed
		log.Warn("RabbitMQ disabled, expirations are scheduled in-process")
	}

	// Страховочная проверка на случай потерянных задач и рестартов
	sweeper := scheduler.NewSweeper(expireBookingUseCase, cfg.Booking.SweepSchedule(), log)
	if err := sweeper.Start(ctx); err != nil {
		log.Fatal("Failed to start expiration sweeper: %v", err)
	}

	// Инициализируем use cases
	reserveBookingUseCase := reserveBookingUC.NewUseCase(
		store.bookings,
		store.services,
		store.users,
		walletSvc,
		serviceLocker,
		expirations,
		dispatcher,
		metricsCollector,
		reserveBookingUC.Options{
			HorizonMonths:   cfg.Booking.HorizonMonths,
			ExpirationDelay: cfg.Booking.ExpirationDelay(),
		},
		log,
	)
	approveBookingUseCase := approveBookingUC.NewUseCase(
		store.bookings,
		store.services,
		store.users,
		bookingSvc,
		serviceLocker,
		dispatcher,
		metricsCollector,
		log,
	)

	// Инициализируем handlers
	reserveBooking := reserveBookingHandler.NewHandler(reserveBookingUseCase, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	listMyBookings := listMyBookingsHandler.NewHandler(bookingSvc, log)
	refundBooking := refundBookingHandler.NewHandler(bookingSvc, log)
	listResortBookings := listResortBookingsHandler.NewHandler(bookingSvc, log)
	denyBooking := denyBookingHandler.NewHandler(bookingSvc, log)
	approveBooking := approveBookingHandler.NewHandler(approveBookingUseCase, log)
	createService := createServiceHandler.NewHandler(catalogSvc, log)
	deleteService := deleteServiceHandler.NewHandler(catalogSvc, log)
	getService := getServiceHandler.NewHandler(catalogSvc, log)
	searchServices := searchServicesHandler.NewHandler(catalogSvc, log)
	getBalance := getBalanceHandler.NewHandler(walletSvc, log)
	addCredits := addCreditsHandler.NewHandler(walletSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		log.Info("HTTP metrics middleware enabled")

		// Metrics endpoint (публичный, без аутентификации)
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet)

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Каталог услуг
	api.HandleFunc("/services", searchServices.Handle).Methods(http.MethodGet)
	api.HandleFunc("/services/{serviceId}", getService.Handle).Methods(http.MethodGet)

	// ============================================================
	// INTERNAL ROUTES (платежный контур, X-Api-Key)
	// ============================================================

	credits := api.PathPrefix("/wallet/credits").Subrouter()
	credits.Use(middleware.APIKey(cfg.Auth.CreditsAPIKey))
	credits.HandleFunc("", addCredits.Handle).Methods(http.MethodPost)

	// ============================================================
	// PROTECTED ROUTES (требуют Bearer JWT)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth(cfg.Auth.JWTSecret))

	// --- Кошелек ---
	protected.HandleFunc("/wallet", getBalance.Handle).Methods(http.MethodGet)

	// --- Бронирования ---
	protected.HandleFunc("/bookings", reserveBooking.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/bookings", listMyBookings.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/bookings/{bookingId}/refund", refundBooking.Handle).Methods(http.MethodPost)

	// --- Администрирование курорта ---
	admin := protected.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.RequireAdmin)

	admin.HandleFunc("/bookings", listResortBookings.Handle).Methods(http.MethodGet)
	admin.HandleFunc("/bookings/{bookingId}/approve", approveBooking.Handle).Methods(http.MethodPost)
	admin.HandleFunc("/bookings/{bookingId}/deny", denyBooking.Handle).Methods(http.MethodPost)
	admin.HandleFunc("/services", createService.Handle).Methods(http.MethodPost)
	admin.HandleFunc("/services/{serviceId}", deleteService.Handle).Methods(http.MethodDelete)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	<-ctx.Done()

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	if err := expirations.Close(); err != nil {
		log.Error("Failed to close expiration scheduler: %v", err)
	}

	// Дожидаемся отправки уже поставленных в очередь писем
	dispatcher.Wait()

	// Останавливаем сбор метрик connection pool
	close(stopMetricsCh)

	log.Info("Server stopped gracefully")
}
