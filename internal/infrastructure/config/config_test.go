package config

import (
	"strings"
	"testing"
)

// TestDatabaseDSN 测试MySQL连接字符串生成
func TestDatabaseDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:      "localhost",
		Port:      3306,
		User:      "root",
		Password:  "root123",
		DBName:    "inventory",
		Charset:   "utf8mb4",
		ParseTime: true,
		Loc:       "Asia/Shanghai",
	}

	t.Run("基础参数", func(t *testing.T) {
		dsn := cfg.DSN()

		if !strings.HasPrefix(dsn, "root:root123@tcp(localhost:3306)/inventory?") {
			t.Errorf("DSN前缀错误: %s", dsn)
		}
		// loc需要URL编码
		if !strings.Contains(dsn, "loc=Asia%2FShanghai") {
			t.Errorf("loc参数未编码: %s", dsn)
		}
	})

	t.Run("锁等待超时作为会话变量下发", func(t *testing.T) {
		withTimeout := cfg
		withTimeout.LockWaitTimeout = 10

		dsn := withTimeout.DSN()
		if !strings.Contains(dsn, "&innodb_lock_wait_timeout=10") {
			t.Errorf("DSN应携带innodb_lock_wait_timeout会话变量: %s", dsn)
		}
	})

	t.Run("未配置超时时不附带参数", func(t *testing.T) {
		dsn := cfg.DSN()
		if strings.Contains(dsn, "innodb_lock_wait_timeout") {
			t.Errorf("未配置超时不应附带参数: %s", dsn)
		}
	})
}
