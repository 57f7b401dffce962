// Package billing 定义计费协作方的出站边界
//
// 计费台账的正确性由外部系统负责，这里只在费率冻结时通知它。
package billing

import (
	"context"

	"github.com/jimyag/cvp/pkg/policy"
	"github.com/rs/zerolog"
)

// Record 一次计费事件
// 费率在创建成功时冻结，之后配额调整会产生新的 Record
type Record struct {
	UnitID     string       // 计算单元 ID
	OwnerID    string       // 租户 ID
	Quota      policy.Quota // 冻结时的配额
	HourlyRate float64      // 冻结的小时费率（USD）
}

// Recorder 计费记录器
type Recorder interface {
	// RecordRate 通知计费系统某单元的费率已冻结
	RecordRate(ctx context.Context, record Record)
}

// logRecorder 基于结构化日志的计费记录器实现
// 真实部署中由外部计费系统的客户端替换
type logRecorder struct{}

// NewLogRecorder 创建日志计费记录器
func NewLogRecorder() Recorder {
	return &logRecorder{}
}

// RecordRate 以结构化日志输出计费事件
func (r *logRecorder) RecordRate(ctx context.Context, record Record) {
	zerolog.Ctx(ctx).Info().
		Str("unit_id", record.UnitID).
		Str("owner_id", record.OwnerID).
		Uint16("vcpus", record.Quota.VCPUs).
		Uint64("memory_mb", record.Quota.MemoryMB).
		Uint64("storage_gb", record.Quota.StorageGB).
		Uint64("bandwidth_gb", record.Quota.BandwidthGB).
		Float64("hourly_rate", record.HourlyRate).
		Msg("hourly rate frozen")
}
