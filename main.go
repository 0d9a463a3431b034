package main

import (
	"context"

	"craftbot/api"
	"craftbot/challenge"
	"craftbot/database"
	"craftbot/discord"
	"craftbot/middlewares"
	"craftbot/models"
	"craftbot/monitor"
	"craftbot/storage"
	"craftbot/utils"
	"craftbot/warnings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	logger, err := utils.InitLogger()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	config, err := database.LoadConfig("config.json")
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	// PostgreSQL and Redis come up in parallel.
	var db *gorm.DB
	var rdb *redis.Client
	done := make(chan bool)

	go func() {
		var err error
		db, err = database.InitPostgreSQL(config, logger)
		if err != nil {
			logger.Fatal("failed to initialize PostgreSQL", zap.Error(err))
		}
		done <- true
	}()

	go func() {
		var err error
		rdb, err = database.InitRedis(logger)
		if err != nil {
			logger.Fatal("failed to initialize Redis", zap.Error(err))
		}
		done <- true
	}()

	<-done
	<-done

	if err := database.Migrate(db); err != nil {
		logger.Fatal("failed to migrate schema", zap.Error(err))
	}

	gateway := discord.NewRestGateway(config.DiscordToken, config.GuildID, logger)

	challengeStore := storage.NewGormChallengeStorage(db, logger)
	submissionStore := storage.NewGormSubmissionStorage(db, logger)
	reminderStore := storage.NewGormReminderStorage(db, logger)
	discussionStore := storage.NewGormDiscussionStorage(db, logger)
	warningStore := storage.NewGormWarningStorage(db, logger)
	auditStore := storage.NewGormAuditStorage(db, logger)

	challengeService := challenge.NewService(challengeStore, submissionStore, reminderStore, auditStore, gateway, config, logger)
	warningService := warnings.NewService(warningStore, auditStore, gateway, config, logger)

	hub := api.NewEventHub(config, logger)
	challengeService.SetEventSink(hub)

	ctx := context.Background()
	scheduler := challenge.NewScheduler(challengeStore, reminderStore, gateway, config, logger)
	go scheduler.Run(ctx)

	steamMonitor := monitor.New(discussionStore, gateway, config, logger)
	go steamMonitor.Run(ctx)

	go utils.CronCleaner(reminderStore, discussionStore, logger)

	router := gin.Default()
	router.Use(corsConfig(config))
	router.Use(utils.RequestLogger(logger))

	hub.RegisterRoutes(router)

	authed := router.Group("/api")
	authed.Use(middlewares.AuthRequired(rdb, config, logger))

	api.NewAuthController(rdb, config, logger).RegisterRoutes(router, authed)
	api.NewChallengeController(challengeService, logger).RegisterRoutes(authed)
	api.NewSubmissionController(challengeService, logger).RegisterRoutes(authed)
	api.NewWarningController(warningService, logger).RegisterRoutes(authed)
	api.NewAuditController(auditStore, logger).RegisterRoutes(authed)

	if err := router.Run(); err != nil {
		logger.Fatal("failed to run server", zap.Error(err))
	}
}

func corsConfig(config models.Config) gin.HandlerFunc {
	corsCfg := cors.DefaultConfig()
	if len(config.AllowedOrigins) > 0 {
		corsCfg.AllowOrigins = config.AllowedOrigins
	} else {
		corsCfg.AllowAllOrigins = true
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	corsCfg.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	return cors.New(corsCfg)
}
