package testutil

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/qs3c/voucher_go_server/internal/model"
)

// SetupTestDB 创建内存 sqlite 并迁移全部表，测试结束自动关闭。
// 内存库随连接存在，限制连接池为 1，避免新连接拿到空库。
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	return setup(t, ":memory:", 1)
}

// SetupTestDBFile 文件版测试库，供需要多连接并发的用例使用
func SetupTestDBFile(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + t.TempDir() + "/test.db?_busy_timeout=10000"
	return setup(t, dsn, 0)
}

func setup(t *testing.T, dsn string, maxConns int) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("打开测试数据库失败: %v", err)
	}

	if maxConns > 0 {
		sqlDB, err := db.DB()
		if err != nil {
			t.Fatalf("获取底层连接失败: %v", err)
		}
		sqlDB.SetMaxOpenConns(maxConns)
	}

	err = db.AutoMigrate(
		&model.Studio{},
		&model.Voucher{},
		&model.Redemption{},
		&model.Admin{},
	)
	if err != nil {
		t.Fatalf("迁移测试数据库失败: %v", err)
	}

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})

	return db
}
