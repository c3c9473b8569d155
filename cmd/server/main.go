package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	adminbiz "github.com/lk2023060901/ai-video-backend/internal/admin/biz"
	admindata "github.com/lk2023060901/ai-video-backend/internal/admin/data"
	adminservice "github.com/lk2023060901/ai-video-backend/internal/admin/service"
	"github.com/lk2023060901/ai-video-backend/internal/ai"
	"github.com/lk2023060901/ai-video-backend/internal/auth"
	"github.com/lk2023060901/ai-video-backend/internal/auth/middleware"
	"github.com/lk2023060901/ai-video-backend/internal/classifier"
	"github.com/lk2023060901/ai-video-backend/internal/conf"
	"github.com/lk2023060901/ai-video-backend/internal/data"
	emailservice "github.com/lk2023060901/ai-video-backend/internal/email/service"
	emailtypes "github.com/lk2023060901/ai-video-backend/internal/email/types"
	findingbiz "github.com/lk2023060901/ai-video-backend/internal/finding/biz"
	findingservice "github.com/lk2023060901/ai-video-backend/internal/finding/service"
	"github.com/lk2023060901/ai-video-backend/internal/pkg/ffmpeg"
	"github.com/lk2023060901/ai-video-backend/internal/pkg/logger"
	oauth2pkg "github.com/lk2023060901/ai-video-backend/internal/pkg/oauth2"
	"github.com/lk2023060901/ai-video-backend/internal/pkg/workerpool"
	"github.com/lk2023060901/ai-video-backend/internal/server"
	userbiz "github.com/lk2023060901/ai-video-backend/internal/user/biz"
	userdata "github.com/lk2023060901/ai-video-backend/internal/user/data"
	userservice "github.com/lk2023060901/ai-video-backend/internal/user/service"
	videobiz "github.com/lk2023060901/ai-video-backend/internal/video/biz"
	videodata "github.com/lk2023060901/ai-video-backend/internal/video/data"
	"github.com/lk2023060901/ai-video-backend/internal/video/queue"
	videoservice "github.com/lk2023060901/ai-video-backend/internal/video/service"
	"github.com/lk2023060901/ai-video-backend/internal/video/storage"
	"go.uber.org/zap"
)

var (
	configFile = flag.String("config", "config.yaml", "config file path")
)

// reviewQueue 审核任务分发器，memory 与 redis 两种实现
type reviewQueue interface {
	videobiz.ReviewDispatcher
	Start()
	Stop()
}

func main() {
	flag.Parse()

	// Load configuration
	config, err := conf.LoadConfig(*configFile)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log, err := logger.InitGlobal(&config.Log)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync()

	log.Info("config loaded successfully", zap.String("review_queue", config.Review.Queue))

	// Initialize data layer
	d, cleanup, err := data.NewData(config, log)
	if err != nil {
		log.Fatal("failed to initialize data layer", zap.Error(err))
	}
	defer cleanup()

	jwtManager := auth.NewJWTManager(config.Auth.JWTSecret, config.Auth.JWTIssuer, config.Auth.AccessTokenTTL)
	hasher := auth.PasswordHasher{}

	// Initialize repositories
	userRepo := userdata.NewUserRepo(d.DB)
	verificationRepo := userdata.NewVerificationRepo(d.DB)
	adminRepo := admindata.NewAdminRepo(d.DB)
	videoRepo := videodata.NewVideoRepo(d.DB)
	featureRepo := videodata.NewFeatureRepo(d.DB)
	reactionRepo := videodata.NewReactionRepo(d.DB)

	// External collaborators
	mailer, err := newMailer(config, log)
	if err != nil {
		log.Fatal("failed to initialize mailer", zap.Error(err))
	}

	aiConfig := &ai.Config{
		APIKey:      config.OpenAI.APIKey,
		BaseURL:     config.OpenAI.BaseURL,
		ChatModel:   config.OpenAI.ChatModel,
		VisionModel: config.OpenAI.VisionModel,
		Timeout:     config.OpenAI.Timeout,
	}
	analyzer, err := ai.NewPromptAnalyzer(aiConfig, log.Named("analyzer").Logger)
	if err != nil {
		log.Fatal("failed to initialize prompt analyzer", zap.Error(err))
	}
	imageTagger, err := ai.NewImageTagger(aiConfig, log.Named("image-tagger").Logger)
	if err != nil {
		log.Fatal("failed to initialize image tagger", zap.Error(err))
	}

	explicitClassifier, closeClassifier := newClassifier(config, log)
	defer closeClassifier()

	var mirror storage.Mirror
	if d.MinIO != nil {
		mirror = d.MinIO
	}
	store, err := storage.NewLocalStore(config.Video.StorageDir, mirror, log.Named("storage").Logger)
	if err != nil {
		log.Fatal("failed to initialize media store", zap.Error(err))
	}
	extractor := ffmpeg.NewExtractor(config.Video.FFmpegPath, config.Video.TmpDir, log.Named("ffmpeg").Logger)

	// Initialize use cases
	verificationUseCase := userbiz.NewVerificationUseCase(verificationRepo, userRepo, mailer, hasher, log.Named("verification").Logger)
	userUseCase := userbiz.NewUserUseCase(userRepo, verificationUseCase, d.DB, hasher, jwtManager, log.Named("user").Logger)

	matcher := findingbiz.NewMatcher(analyzer, videoRepo, featureRepo, config.TagCache.Size, config.TagCache.TTL, log.Named("finding").Logger)
	tagger := videobiz.NewTagger(videoRepo, featureRepo, store, extractor, imageTagger, d.DB, matcher, config.Video.FrameLimit, log.Named("tagger").Logger)
	reviewer := videobiz.NewReviewer(videoRepo, store, explicitClassifier, tagger, config.Classifier.Timeout, log.Named("reviewer").Logger)

	dispatcher, err := newReviewQueue(config, d, reviewer.Review, log)
	if err != nil {
		log.Fatal("failed to initialize review queue", zap.Error(err))
	}
	dispatcher.Start()
	defer dispatcher.Stop()

	videoUseCase := videobiz.NewVideoUseCase(videoRepo, featureRepo, reactionRepo, store, dispatcher, userUseCase, d.DB, log.Named("video").Logger)
	adminUseCase := adminbiz.NewAdminUseCase(adminRepo, userUseCase, videoUseCase, hasher, jwtManager, log.Named("admin").Logger)

	// Initialize services
	services := server.Services{
		Auth:    userservice.NewAuthService(userUseCase, verificationUseCase, log.Logger),
		Video:   videoservice.NewVideoService(videoUseCase, tagger, log.Logger),
		Finding: findingservice.NewFindingService(matcher, log.Logger),
		Admin:   adminservice.NewAdminService(adminUseCase, log.Logger),
	}

	// redis 不可用时检索接口不限流
	var limiter middleware.ScriptRunner
	if d.Redis != nil {
		limiter = d.Redis
	}

	httpServer, err := server.NewHTTPServer(config, log, jwtManager, limiter, d, services)
	if err != nil {
		log.Fatal("failed to initialize HTTP server", zap.Error(err))
	}

	go func() {
		if err := httpServer.Start(); err != nil {
			log.Fatal("failed to start HTTP server", zap.Error(err))
		}
	}()

	log.Info("server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), config.Server.HTTP.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Stop(ctx); err != nil {
		log.Error("HTTP server forced to shutdown", zap.Error(err))
	}

	log.Info("server exited")
}

func newMailer(config *conf.Config, log *logger.Logger) (*emailservice.EmailService, error) {
	mc := config.Mail
	emailConfig := &emailtypes.EmailConfig{
		SMTPHost:       mc.SMTPHost,
		SMTPPort:       mc.SMTPPort,
		Username:       mc.Username,
		Password:       mc.Password,
		FromAddr:       mc.From,
		FromName:       mc.FromName,
		OAuth2Enabled:  mc.Auth == conf.MailAuthXOAuth2,
		MaxRetries:     mc.MaxRetries,
		RetryInterval:  mc.RetryInterval,
		ConnectTimeout: mc.ConnectTimeout,
		SendTimeout:    mc.SendTimeout,
	}

	var tokens oauth2pkg.TokenProvider
	if emailConfig.OAuth2Enabled {
		provider, err := oauth2pkg.NewRefreshTokenProvider(&oauth2pkg.Config{
			ClientID:     mc.OAuth2.ClientID,
			ClientSecret: mc.OAuth2.ClientSecret,
			RefreshToken: mc.OAuth2.RefreshToken,
			TokenURL:     mc.OAuth2.TokenURL,
		})
		if err != nil {
			return nil, err
		}
		tokens = provider
	}
	return emailservice.NewEmailService(emailConfig, tokens, log.Named("email").Logger)
}

// newClassifier 关闭分类器时所有视频直接通过审核
func newClassifier(config *conf.Config, log *logger.Logger) (videobiz.Classifier, func()) {
	if !config.Classifier.Enabled {
		log.Warn("explicit-content classifier disabled, every upload will be approved")
		return classifier.StaticApprover{}, func() {}
	}

	c, err := classifier.NewGoogle(context.Background(), config.Classifier.CredentialsFile, log.Named("classifier").Logger)
	if err != nil {
		log.Fatal("failed to initialize classifier", zap.Error(err))
	}
	return c, func() {
		if err := c.Close(); err != nil {
			log.Warn("failed to close classifier", zap.Error(err))
		}
	}
}

func newReviewQueue(config *conf.Config, d *data.Data, handler queue.Handler, log *logger.Logger) (reviewQueue, error) {
	qlog := log.Named("review-queue").Logger

	if config.Review.Queue == conf.ReviewQueueRedis {
		return queue.NewRedisDispatcher(d.Redis, handler, queue.RedisConfig{
			Workers:    config.Review.Workers,
			MaxRetries: config.Review.MaxRetries,
		}, qlog), nil
	}

	pool, err := workerpool.New(&workerpool.Config{
		Workers:        config.Review.Workers,
		QueueSize:      config.Review.QueueSize,
		EnablePriority: true,
		ReleaseTimeout: config.Server.HTTP.ShutdownTimeout,
	}, qlog)
	if err != nil {
		return nil, err
	}
	return queue.NewMemoryDispatcher(pool, handler, qlog), nil
}
