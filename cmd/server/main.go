package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/qs3c/voucher_go_server/config"
	"github.com/qs3c/voucher_go_server/internal/api"
	"github.com/qs3c/voucher_go_server/internal/api/handler"
	"github.com/qs3c/voucher_go_server/internal/database"
	"github.com/qs3c/voucher_go_server/internal/pkg/cron"
	"github.com/qs3c/voucher_go_server/internal/pkg/email"
	"github.com/qs3c/voucher_go_server/internal/pkg/pubsub"
	"github.com/qs3c/voucher_go_server/internal/pkg/queue"
	"github.com/qs3c/voucher_go_server/internal/pkg/ws"
	"github.com/qs3c/voucher_go_server/internal/repository"
	"github.com/qs3c/voucher_go_server/internal/service"
)

func main() {
	// 加载配置
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化数据库
	db, err := database.NewMySQL(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect database: %v", err)
	}
	log.Println("Database connected")

	// 初始化 Redis
	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect redis: %v", err)
	}
	log.Println("Redis connected")

	// 初始化队列与邮件
	deliveryQueue := queue.NewQueue(rdb, cfg.Queue.DeliveryQueue)
	emailSvc := email.NewService(&cfg.Email)

	// 初始化 WebSocket Hub
	wsHub := ws.NewHub()

	// 初始化 Repository
	studioRepo := repository.NewStudioRepository(db)
	voucherRepo := repository.NewVoucherRepository(db)
	redemptionRepo := repository.NewRedemptionRepository(db)
	adminRepo := repository.NewAdminRepository(db)

	// 初始化 Service
	tenantService := service.NewTenantService(studioRepo, &cfg.Tenant)
	voucherService := service.NewVoucherService(voucherRepo, redemptionRepo, studioRepo, emailSvc, deliveryQueue, &cfg.Voucher)
	authService := service.NewAdminAuthService(adminRepo, &cfg.JWT)
	chatService := service.NewChatService(&cfg.Chat)

	// 初始化 Handler
	voucherHandler := handler.NewVoucherHandler(voucherService, tenantService)
	studioHandler := handler.NewStudioHandler(tenantService)
	adminHandler := handler.NewAdminHandler(authService, voucherService)
	wsHandler := handler.NewWSHandler(wsHub, chatService, cfg.JWT.Secret)

	// 订阅 worker 的交付进度，推送给在线的后台连接
	subscriber := pubsub.NewSubscriber(rdb)
	go func() {
		err := subscriber.Subscribe(context.Background(), func(event *pubsub.DeliveryEvent) {
			wsHub.Broadcast(ws.AdminKeyPrefix, &ws.Message{
				Type: event.Type,
				Data: event,
			})
		})
		if err != nil && err != context.Canceled {
			log.Printf("Delivery event subscriber stopped: %v", err)
		}
	}()

	// 启动定时任务（过期扫描 + 证书暂存清理）
	cronService := cron.NewService(voucherRepo, cfg.Certificate.TempDir, cfg.Certificate.ExpireHours)
	cronService.Start()
	defer cronService.Stop()

	// 初始化 Router 并启动
	router := api.NewRouter(cfg, tenantService, voucherHandler, studioHandler, adminHandler, wsHandler)
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("Server starting on %s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
