// Package idgen 提供递增 ID 生成器
//
// 使用 Sonyflake 算法生成全局唯一且时间有序的 64 位 ID。
//
// 生成的 ID 格式：
//   - 计算单元 ID: cu-{递增数字}
//   - 备份 ID: bak-{递增数字}
package idgen

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	"github.com/sony/sonyflake"
)

// Generator 递增 ID 生成器
type Generator struct {
	sf *sonyflake.Sonyflake
}

var (
	defaultGenerator     *Generator
	defaultGeneratorOnce sync.Once
)

// DefaultGenerator 返回默认的 ID 生成器
func DefaultGenerator() *Generator {
	defaultGeneratorOnce.Do(func() {
		defaultGenerator = New()
	})
	return defaultGenerator
}

// New 创建新的 ID 生成器
func New() *Generator {
	startTime := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	sf := sonyflake.NewSonyflake(sonyflake.Settings{
		StartTime: startTime,
	})
	if sf == nil {
		// 没有私有 IPv4 的主机无法从网卡推导机器 ID，退化为随机机器 ID
		sf = sonyflake.NewSonyflake(sonyflake.Settings{
			StartTime: startTime,
			MachineID: randomMachineID,
		})
	}

	return &Generator{sf: sf}
}

// randomMachineID 随机生成 16 位机器 ID
// 仅作为网卡推导失败时的兜底，多实例部署时有极小的冲突概率
func randomMachineID() (uint16, error) {
	var b [2]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b[:]), nil
}

// generateIDWithPrefix 生成带前缀的 ID
func (g *Generator) generateIDWithPrefix(prefix, errorMsg string) (string, error) {
	if g.sf == nil {
		return "", fmt.Errorf("%s: sonyflake is not initialized", errorMsg)
	}
	id, err := g.sf.NextID()
	if err != nil {
		return "", fmt.Errorf("%s: %w", errorMsg, err)
	}
	return fmt.Sprintf("%s-%d", prefix, id), nil
}

// GenerateUnitID 生成计算单元 ID（格式：cu-{递增 ID}）
func (g *Generator) GenerateUnitID() (string, error) {
	return g.generateIDWithPrefix("cu", "generate unit ID")
}

// GenerateBackupID 生成备份 ID（格式：bak-{递增 ID}）
func (g *Generator) GenerateBackupID() (string, error) {
	return g.generateIDWithPrefix("bak", "generate backup ID")
}

// GenerateID 生成通用递增 ID
func (g *Generator) GenerateID() (uint64, error) {
	if g.sf == nil {
		return 0, fmt.Errorf("generate ID: sonyflake is not initialized")
	}
	return g.sf.NextID()
}

// GenerateUnitID 使用默认生成器生成计算单元 ID
func GenerateUnitID() (string, error) {
	return DefaultGenerator().GenerateUnitID()
}

// GenerateBackupID 使用默认生成器生成备份 ID
func GenerateBackupID() (string, error) {
	return DefaultGenerator().GenerateBackupID()
}
