package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/qs3c/voucher_go_server/config"
	"github.com/qs3c/voucher_go_server/internal/database"
	"github.com/qs3c/voucher_go_server/internal/pkg/email"
	"github.com/qs3c/voucher_go_server/internal/pkg/oss"
	"github.com/qs3c/voucher_go_server/internal/pkg/pubsub"
	"github.com/qs3c/voucher_go_server/internal/pkg/queue"
	"github.com/qs3c/voucher_go_server/internal/repository"
	"github.com/qs3c/voucher_go_server/internal/worker"
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

	// 证书交付离不开 OSS，配置缺失直接退出
	if cfg.OSS.Endpoint == "" || cfg.OSS.AccessKeyID == "" {
		log.Fatal("OSS config is required for the delivery worker")
	}
	ossClient, err := oss.NewClient(&cfg.OSS)
	if err != nil {
		log.Fatalf("Failed to init OSS client: %v", err)
	}
	log.Println("OSS client initialized")

	// 初始化 Queue、Pub/Sub、邮件
	deliveryQueue := queue.NewQueue(rdb, cfg.Queue.DeliveryQueue)
	publisher := pubsub.NewPublisher(rdb)
	emailSvc := email.NewService(&cfg.Email)

	// 创建任务处理器
	voucherRepo := repository.NewVoucherRepository(db)
	processor := worker.NewProcessor(voucherRepo, ossClient, emailSvc, publisher, cfg)

	// 创建 context 用于优雅关闭
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 监听退出信号
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Println("Received shutdown signal")
		cancel()
	}()

	log.Printf("Worker started, max workers: %d", cfg.Queue.MaxWorkers)

	// 启动 worker 循环
	for i := 0; i < cfg.Queue.MaxWorkers; i++ {
		go func(workerID int) {
			for {
				select {
				case <-ctx.Done():
					log.Printf("Worker %d shutting down", workerID)
					return
				default:
					msg, err := deliveryQueue.Pop(ctx, 5*time.Second)
					if err != nil {
						if ctx.Err() != nil {
							return
						}
						log.Printf("Worker %d: failed to pop task: %v", workerID, err)
						continue
					}

					if msg == nil {
						continue // 超时，继续等待
					}

					log.Printf("Worker %d: delivering voucher %d", workerID, msg.VoucherID)
					if err := processor.Process(ctx, msg); err != nil {
						log.Printf("Worker %d: voucher %d failed: %v", workerID, msg.VoucherID, err)
					}
				}
			}
		}(i)
	}

	// 等待 context 取消
	<-ctx.Done()
	log.Println("Worker shutdown complete")
}
