package mysql

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// isDuplicateError 判断是否为MySQL唯一索引冲突错误
// MySQL错误码:
// - 1062: Duplicate entry 'xxx' for key 'yyy'
func isDuplicateError(err error) bool {
	if err == nil {
		return false
	}
	// GORM v2的错误判断
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// 兼容检查:错误信息包含"Duplicate entry"
	return strings.Contains(err.Error(), "Duplicate entry")
}

// isLockWaitTimeout 判断是否为MySQL行锁等待超时错误
// MySQL错误码:
// - 1205: Lock wait timeout exceeded; try restarting transaction
// 该错误可重试:持锁事务提交后重试通常能成功。
func isLockWaitTimeout(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "Error 1205") ||
		strings.Contains(msg, "Lock wait timeout exceeded")
}
