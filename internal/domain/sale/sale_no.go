package sale

import (
	"fmt"
	"math/rand"
	"time"
)

// GenerateSaleNo 生成销售单号
// 格式:SAL + 时间戳(秒) + 6位随机数
// 示例:SAL1767225600123456
//
// 时间有序便于排查,随机后缀防止同秒冲突。
// 分布式部署时建议换成雪花算法。
func GenerateSaleNo() string {
	timestamp := time.Now().Unix()
	random := rand.Intn(1000000) // 6位随机数
	return fmt.Sprintf("SAL%d%06d", timestamp, random)
}
