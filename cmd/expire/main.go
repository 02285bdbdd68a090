package main

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/qs3c/voucher_go_server/config"
	"github.com/qs3c/voucher_go_server/internal/database"
	"github.com/qs3c/voucher_go_server/internal/model"
)

// 一次性过期扫描工具。服务进程里有每日定时扫描，
// 这里用于手动补扫或在 crontab 里独立跑。
var dryRun = flag.Bool("dry-run", true, "Only report, don't update voucher status")

func main() {
	flag.Parse()

	log.Println("Starting voucher expiry sweep...")
	log.Printf("Mode: dry-run=%v", *dryRun)

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.NewMySQL(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	now := time.Now()

	var overdue []model.Voucher
	err = db.Where("status = ? AND expires_at IS NOT NULL AND expires_at < ?",
		model.VoucherStatusActive, now).
		Find(&overdue).Error
	if err != nil {
		log.Fatalf("Failed to query overdue vouchers: %v", err)
	}

	if len(overdue) == 0 {
		log.Println("No overdue vouchers found")
		return
	}

	for _, voucher := range overdue {
		log.Printf("  %s (studio=%d, remaining=%.2f, expired_at=%s)",
			voucher.Code, voucher.StudioID,
			float64(voucher.RemainingCents)/100,
			voucher.ExpiresAt.Format("2006-01-02"))
	}

	if *dryRun {
		log.Printf("Dry run: %d vouchers would be expired", len(overdue))
		return
	}

	res := db.Model(&model.Voucher{}).
		Where("status = ? AND expires_at IS NOT NULL AND expires_at < ?",
			model.VoucherStatusActive, now).
		Update("status", model.VoucherStatusExpired)
	if res.Error != nil {
		log.Fatalf("Failed to expire vouchers: %v", res.Error)
	}

	log.Printf("Done: %d vouchers expired", res.RowsAffected)
}
