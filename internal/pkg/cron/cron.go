package cron

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/qs3c/voucher_go_server/internal/repository"
)

type Service struct {
	voucherRepo *repository.VoucherRepository
	tempDir     string
	expireHours int
	stopChan    chan struct{}
}

func NewService(voucherRepo *repository.VoucherRepository, tempDir string, expireHours int) *Service {
	return &Service{
		voucherRepo: voucherRepo,
		tempDir:     tempDir,
		expireHours: expireHours,
		stopChan:    make(chan struct{}),
	}
}

// Start 启动定时任务
func (s *Service) Start() {
	go s.runDailyExpiry()
	go s.runCleanup()
	log.Println("Cron service started (voucher expiry + temp cleanup)")
}

// Stop 停止定时任务
func (s *Service) Stop() {
	close(s.stopChan)
	log.Println("Cron service stopped")
}

// runDailyExpiry 每日零点扫一遍过期卡
func (s *Service) runDailyExpiry() {
	now := time.Now().UTC()
	nextMidnight := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, time.UTC)
	timer := time.NewTimer(nextMidnight.Sub(now))

	for {
		select {
		case <-s.stopChan:
			timer.Stop()
			return
		case <-timer.C:
			s.expireVouchers()
			timer.Reset(24 * time.Hour)
		}
	}
}

// expireVouchers 将超过有效期的可用卡置为 expired
func (s *Service) expireVouchers() {
	affected, err := s.voucherRepo.ExpireOverdue(time.Now())
	if err != nil {
		log.Printf("Voucher expiry sweep failed: %v", err)
		return
	}
	if affected > 0 {
		log.Printf("Voucher expiry sweep: %d vouchers expired", affected)
	}
}

// runCleanup 每小时清理一次证书暂存目录
func (s *Service) runCleanup() {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			cleaned := s.cleanupTempCertificates()
			if cleaned > 0 {
				log.Printf("Cleanup summary: certificates=%d", cleaned)
			}
		}
	}
}

// cleanupTempCertificates 清理过期的证书暂存文件（cert_*.pdf）。
// 证书上传 OSS 后本地文件只是兜底，过了保留期直接删。
func (s *Service) cleanupTempCertificates() int {
	if s.tempDir == "" {
		return 0
	}

	expireHours := s.expireHours
	if expireHours <= 0 {
		expireHours = 1
	}
	expireDuration := time.Duration(expireHours) * time.Hour

	entries, err := os.ReadDir(s.tempDir)
	if err != nil {
		log.Printf("Cleanup certificates: failed to read dir %s: %v", s.tempDir, err)
		return 0
	}

	cleaned := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), "cert_") {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		if time.Since(info.ModTime()) > expireDuration {
			path := filepath.Join(s.tempDir, entry.Name())
			if err := os.Remove(path); err != nil {
				log.Printf("Cleanup certificates: failed to remove %s: %v", path, err)
			} else {
				cleaned++
			}
		}
	}
	return cleaned
}

// RunNow 立即执行过期扫描（一次性工具或手动触发）
func (s *Service) RunNow() (int64, error) {
	log.Println("Manual voucher expiry sweep triggered...")
	return s.voucherRepo.ExpireOverdue(time.Now())
}
