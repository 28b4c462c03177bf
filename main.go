package main

import (
	"log"

	"go.uber.org/zap"

	"github.com/pulsefeed/pulse/config"
	"github.com/pulsefeed/pulse/models"
	"github.com/pulsefeed/pulse/routes"
	"github.com/pulsefeed/pulse/utils"
)

func main() {
	cfg := config.Load()

	if err := utils.InitLogger(cfg); err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer utils.Logger.Sync()

	db := config.InitDatabase(
		&models.User{},
		&models.Post{},
		&models.PostLike{},
		&models.Comment{},
		&models.CommentLike{},
		&models.Follow{},
		&models.Hashtag{},
		&models.PostHashtag{},
		&models.Report{},
		&models.Template{},
	)

	ginLogger, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel,
		cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err != nil {
		log.Fatalf("failed to init access logger: %v", err)
	}

	router := routes.SetupRouter(db, ginLogger)

	utils.Logger.Info("server starting", zap.String("port", cfg.AppPort))
	if err := utils.GraceServer(":"+cfg.AppPort, router); err != nil {
		utils.Logger.Fatal("server exited", zap.Error(err))
	}
}
