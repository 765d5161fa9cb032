package bootstrap

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	appsvc "autofilter-bot/internal/app"
	"autofilter-bot/internal/config"
	"autofilter-bot/internal/logging"
	"autofilter-bot/internal/model"
	mysqlClient "autofilter-bot/internal/platform/mysql"
	rabbitmqClient "autofilter-bot/internal/platform/rabbitmq"
	redisClient "autofilter-bot/internal/platform/redis"
	"autofilter-bot/internal/repository"
	"autofilter-bot/internal/search"
	"autofilter-bot/internal/session"
	"autofilter-bot/internal/transport/chat"
	"autofilter-bot/internal/worker"
)

type App struct {
	Config *config.Config
	Logger *zap.Logger
	MySQL  *gorm.DB
	Redis  *redis.Client
	MQConn *amqp.Connection

	FileRepo    *repository.FileRepository
	PremiumRepo *repository.PremiumRepository
	UserRepo    *repository.UserRepository
	ChatRepo    *repository.ChatRepository

	Sessions session.Store
	Engine   *search.Engine
	Premium  *appsvc.PremiumService
	Files    *appsvc.FileService

	SweepWorker  *worker.PremiumSweepWorker
	noticeWorker *worker.NoticeDeliveryWorker

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("init logger failed: %w", err)
	}

	mysqlDB, err := mysqlClient.New(ctx, cfg.MySQLDSN())
	if err != nil {
		return nil, err
	}
	if err := mysqlDB.AutoMigrate(&model.PremiumRecord{}, &model.User{}, &model.Chat{}); err != nil {
		return nil, fmt.Errorf("auto migrate tables failed: %w", err)
	}

	fileRepo := repository.NewFileRepository(mysqlDB, logger)
	if err := fileRepo.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("migrate file tiers failed: %w", err)
	}
	premiumRepo := repository.NewPremiumRepository(mysqlDB)
	userRepo := repository.NewUserRepository(mysqlDB)
	chatRepo := repository.NewChatRepository(mysqlDB)

	// Redis is optional. Without it sessions live in a bounded in-process
	// LRU, which is fine for a single instance.
	var redisCli *redis.Client
	var sessions session.Store
	sessionTTL := time.Duration(cfg.Redis.SessionTTLSeconds) * time.Second
	if cfg.Redis.Addr != "" {
		redisCli, err = redisClient.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, err
		}
		sessions = session.NewRedisStore(redisCli, sessionTTL)
	} else {
		sessions = session.NewMemoryStore(cfg.Search.SessionMaxEntries, sessionTTL)
		logger.Info("redis not configured, using in-memory session store")
	}

	mqConn, err := rabbitmqClient.New(ctx, cfg.RabbitMQ.URL)
	if err != nil {
		return nil, err
	}
	notifier := rabbitmqClient.NewNoticePublisher(mqConn, cfg.RabbitMQ.NoticeQueue)

	engine := search.NewEngine(fileRepo, logger)
	premium := appsvc.NewPremiumService(
		premiumRepo,
		notifier,
		logger,
		cfg.Premium.Enabled,
		cfg.Premium.AdminIDs,
		cfg.Premium.TrialEnabled,
	)
	files := appsvc.NewFileService(fileRepo, cfg.Search.DetailsCacheSize)

	sweepWorker := worker.NewPremiumSweepWorker(
		premium,
		time.Duration(cfg.Premium.SweepIntervalMinutes)*time.Minute,
		logger,
	)
	if cfg.Premium.Enabled {
		if err := sweepWorker.Start(ctx); err != nil {
			return nil, fmt.Errorf("start premium sweep failed: %w", err)
		}
	}

	return &App{
		Config:      cfg,
		Logger:      logger,
		MySQL:       mysqlDB,
		Redis:       redisCli,
		MQConn:      mqConn,
		FileRepo:    fileRepo,
		PremiumRepo: premiumRepo,
		UserRepo:    userRepo,
		ChatRepo:    chatRepo,
		Sessions:    sessions,
		Engine:      engine,
		Premium:     premium,
		Files:       files,
		SweepWorker: sweepWorker,
		StartedAt:   time.Now(),
	}, nil
}

// NewChatHandler builds the chat-side event handler for a concrete platform
// client and starts draining queued notices through it.
func (a *App) NewChatHandler(ctx context.Context, messenger chat.Messenger) (*chat.Handler, error) {
	a.noticeWorker = worker.NewNoticeDeliveryWorker(a.MQConn, messenger, a.Config.RabbitMQ.NoticeQueue, a.Logger)
	if err := a.noticeWorker.Start(ctx); err != nil {
		return nil, fmt.Errorf("start notice delivery failed: %w", err)
	}

	return chat.NewHandler(
		messenger,
		a.Engine,
		a.Sessions,
		a.Premium,
		a.Premium,
		a.Files,
		a.FileRepo,
		a.UserRepo,
		a.ChatRepo,
		a.Config.Search.PageSize,
		a.Logger,
	), nil
}

func (a *App) Close() error {
	var closeErr error
	if a.SweepWorker != nil {
		a.SweepWorker.Close()
	}
	if a.noticeWorker != nil {
		a.noticeWorker.Close()
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MySQL != nil {
		sqlDB, err := a.MySQL.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	if a.Logger != nil {
		_ = a.Logger.Sync()
	}
	return closeErr
}
