// Package usage 将原始运行时计数器换算为规范化的利用率指标
//
// 换算是纯函数：两个按时间排序的计数器快照进来，一个 Sample 出去。
// CPU 百分比需要两个快照；只有一个快照时 CPU 报告为"不可用"，
// 和"空闲（0%）"区分开。
package usage

import (
	"time"

	"github.com/jimyag/cvp/pkg/dockerx"
)

// Sample 规范化后的利用率样本
// 由单次 stats 请求的调用方独占，没有共享可变状态
type Sample struct {
	// CPUPercent CPU 使用率（百分比）
	// nil 表示数据不足（只有一个计数器快照），不等于 0
	CPUPercent *float64 `json:"cpu_percent"`

	MemoryUsedBytes  uint64  `json:"memory_used_bytes"`
	MemoryLimitBytes uint64  `json:"memory_limit_bytes"`
	MemoryPercent    float64 `json:"memory_percent"`

	NetworkRxBytes uint64 `json:"network_rx_bytes"`
	NetworkTxBytes uint64 `json:"network_tx_bytes"`

	DiskReadBytes  uint64 `json:"disk_read_bytes"`
	DiskWriteBytes uint64 `json:"disk_write_bytes"`

	PIDCount  uint64    `json:"pid_count"`
	SampledAt time.Time `json:"sampled_at"`
}

// Translate 将一对计数器快照换算为利用率样本
// prev 为 nil 时 CPU 百分比不可用；cur 为 nil 时返回 nil
func Translate(prev, cur *dockerx.Counters) *Sample {
	if cur == nil {
		return nil
	}

	sample := &Sample{
		MemoryUsedBytes:  cur.MemoryUsed,
		MemoryLimitBytes: cur.MemoryLimit,
		PIDCount:         cur.PIDs,
		SampledAt:        cur.SampledAt,
	}

	if cur.MemoryLimit > 0 {
		sample.MemoryPercent = float64(cur.MemoryUsed) / float64(cur.MemoryLimit) * 100
	}

	// 没有接口/设备的容器流量为 0，不是错误
	for _, iface := range cur.Interfaces {
		sample.NetworkRxBytes += iface.RxBytes
		sample.NetworkTxBytes += iface.TxBytes
	}
	for _, dev := range cur.Devices {
		sample.DiskReadBytes += dev.ReadBytes
		sample.DiskWriteBytes += dev.WriteBytes
	}

	if prev != nil {
		cpu := cpuPercent(prev, cur)
		sample.CPUPercent = &cpu
	}

	return sample
}

// cpuPercent 按两个快照的增量计算 CPU 百分比
// 结果被钳制在 [0, 核数×100]；系统增量 ≤ 0 时返回 0 而不是报错
func cpuPercent(prev, cur *dockerx.Counters) float64 {
	cores := float64(cur.OnlineCPUs)
	if cores == 0 {
		cores = 1
	}

	if cur.SystemTotal <= prev.SystemTotal || cur.CPUTotal < prev.CPUTotal {
		// 首个样本或计数器回绕，避免除零
		return 0
	}

	cpuDelta := float64(cur.CPUTotal - prev.CPUTotal)
	systemDelta := float64(cur.SystemTotal - prev.SystemTotal)

	percent := cpuDelta / systemDelta * cores * 100
	if percent < 0 {
		return 0
	}
	if max := cores * 100; percent > max {
		return max
	}
	return percent
}
