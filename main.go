package main

import (
	"flag"
	"gmc_backend/internal/app"
	"gmc_backend/internal/config"
	"log"
)

// @title Global Maths Challenge API
// @version 1.0
// @description 全球数学挑战赛后端服务，提供报名、题库、测试提交与成绩查询接口
// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
func main() {
	migrateOnly := flag.Bool("migrate-only", false, "仅执行数据库迁移，完成后退出")
	flag.Parse()

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	cfg.MigrateOnly = *migrateOnly

	application := app.NewApp(cfg)

	if cfg.MigrateOnly {
		log.Println("Migration completed, exiting")
		return
	}

	application.Run()
}
