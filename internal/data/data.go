package data

import (
	"context"
	"fmt"
	"time"

	adminmodels "github.com/lk2023060901/ai-video-backend/internal/admin/models"
	"github.com/lk2023060901/ai-video-backend/internal/conf"
	"github.com/lk2023060901/ai-video-backend/internal/pkg/database"
	"github.com/lk2023060901/ai-video-backend/internal/pkg/logger"
	"github.com/lk2023060901/ai-video-backend/internal/pkg/minio"
	"github.com/lk2023060901/ai-video-backend/internal/pkg/redis"
	usermodels "github.com/lk2023060901/ai-video-backend/internal/user/models"
	videomodels "github.com/lk2023060901/ai-video-backend/internal/video/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Data 持有各领域共享的存储连接
type Data struct {
	DB     *database.DB
	Redis  *redis.Client // 未配置或连接失败且非必需时为 nil
	MinIO  *minio.Client // 镜像未启用时为 nil
	Logger *logger.Logger
}

// NewData 初始化数据库、Redis 与 MinIO，返回清理函数
func NewData(config *conf.Config, log *logger.Logger) (*Data, func(), error) {
	db, err := database.New(&config.Database, log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to init database: %w", err)
	}

	if config.Database.AutoMigrate {
		if err := migrate(db.DB); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("failed to auto migrate: %w", err)
		}
		log.Info("database migrated")
	}

	// 审核队列使用 redis 时连接失败直接退出，否则仅影响限流
	redisClient, err := redis.New(&config.Redis, log.Named("redis"))
	if err != nil {
		if config.Review.Queue == conf.ReviewQueueRedis {
			_ = db.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		log.Warn("redis unavailable, rate limiting disabled", zap.Error(err))
		redisClient = nil
	}

	var minioClient *minio.Client
	if config.MinIO.Enabled {
		minioClient, err = initMinIO(&config.MinIO, log)
		if err != nil {
			log.Warn("failed to init minio mirror (this is optional)", zap.Error(err))
			minioClient = nil
		}
	}

	d := &Data{
		DB:     db,
		Redis:  redisClient,
		MinIO:  minioClient,
		Logger: log,
	}

	cleanup := func() {
		log.Info("cleaning up data resources")

		if err := db.Close(); err != nil {
			log.Warn("failed to close database", zap.Error(err))
		}
		if redisClient != nil {
			if err := redisClient.Close(); err != nil {
				log.Warn("failed to close redis", zap.Error(err))
			}
		}
		if minioClient != nil {
			_ = minioClient.Close()
		}
	}

	return d, cleanup, nil
}

// migrate 建表及唯一索引
func migrate(db *gorm.DB) error {
	if err := usermodels.AutoMigrate(db); err != nil {
		return err
	}
	if err := adminmodels.AutoMigrate(db); err != nil {
		return err
	}
	return videomodels.AutoMigrate(db)
}

func initMinIO(cfg *minio.Config, log *logger.Logger) (*minio.Client, error) {
	client, err := minio.NewClient(cfg, log.Named("minio").Logger)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.EnsureBucket(ctx); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

// Ping 健康检查
func (d *Data) Ping(ctx context.Context) error {
	return d.DB.HealthCheck(ctx)
}
