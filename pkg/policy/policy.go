package policy

import "fmt"

// 全局资源边界
const (
	MinVCPUs = 1
	MaxVCPUs = 32

	MinMemoryMB = 512
	MaxMemoryMB = 128 * 1024

	MinStorageGB = 10
	MaxStorageGB = 2048

	MinBandwidthGB = 100
	MaxBandwidthGB = 10240

	// MemoryPerCoreMB 每核最低内存（MB）
	MemoryPerCoreMB = 512

	// StoragePerMemoryGB 每 GB 内存要求的最低存储（GB）
	StoragePerMemoryGB = 2
)

// Quota 规范化后的资源配额请求
// 既用于设置容器的资源限制，也用于定价
type Quota struct {
	VCPUs       uint16 `json:"vcpus"`
	MemoryMB    uint64 `json:"memory_mb"`
	StorageGB   uint64 `json:"storage_gb"`
	BandwidthGB uint64 `json:"bandwidth_gb"`
}

// Violation 单条校验失败的规则
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

// MinStorageForMemoryGB 返回给定内存所要求的最低存储（GB）
// 规则：每 GB 内存至少 2GB 存储，下限 10GB，内存按 GB 向上取整
func MinStorageForMemoryGB(memoryMB uint64) uint64 {
	memoryGB := (memoryMB + 1023) / 1024
	required := memoryGB * StoragePerMemoryGB
	if required < MinStorageGB {
		return MinStorageGB
	}
	return required
}

// Validate 校验配额，返回所有违反的规则
// 返回空切片表示校验通过；调用方必须能看到完整的违规列表
func Validate(q Quota) []Violation {
	var violations []Violation

	if q.VCPUs < MinVCPUs || q.VCPUs > MaxVCPUs {
		violations = append(violations, Violation{
			Field:   "vcpus",
			Message: fmt.Sprintf("vCPU count must be between %d and %d, got %d", MinVCPUs, MaxVCPUs, q.VCPUs),
		})
	}

	if q.MemoryMB < MinMemoryMB || q.MemoryMB > MaxMemoryMB {
		violations = append(violations, Violation{
			Field:   "memory_mb",
			Message: fmt.Sprintf("memory must be between %dMB and %dMB, got %dMB", MinMemoryMB, MaxMemoryMB, q.MemoryMB),
		})
	}

	if q.StorageGB < MinStorageGB || q.StorageGB > MaxStorageGB {
		violations = append(violations, Violation{
			Field:   "storage_gb",
			Message: fmt.Sprintf("storage must be between %dGB and %dGB, got %dGB", MinStorageGB, MaxStorageGB, q.StorageGB),
		})
	}

	if q.BandwidthGB < MinBandwidthGB || q.BandwidthGB > MaxBandwidthGB {
		violations = append(violations, Violation{
			Field:   "bandwidth_gb",
			Message: fmt.Sprintf("bandwidth must be between %dGB and %dGB, got %dGB", MinBandwidthGB, MaxBandwidthGB, q.BandwidthGB),
		})
	}

	// 每核最低内存
	if minMemory := uint64(q.VCPUs) * MemoryPerCoreMB; q.MemoryMB < minMemory {
		violations = append(violations, Violation{
			Field:   "memory_mb",
			Message: fmt.Sprintf("memory must be at least %dMB for %d vCPUs (%dMB per core), got %dMB", minMemory, q.VCPUs, MemoryPerCoreMB, q.MemoryMB),
		})
	}

	// 存储必须足以承载声明的内存
	if minStorage := MinStorageForMemoryGB(q.MemoryMB); q.StorageGB < minStorage {
		violations = append(violations, Violation{
			Field:   "storage_gb",
			Message: fmt.Sprintf("storage must be at least %dGB for %dMB of memory, got %dGB", minStorage, q.MemoryMB, q.StorageGB),
		})
	}

	return violations
}

// Advisories 返回非阻塞的性能建议
// 通过了 Validate 但比例可疑的配置会产生警告，不会阻止创建
func Advisories(q Quota) []string {
	var advisories []string

	if q.VCPUs >= 8 && q.MemoryMB < 8*1024 {
		advisories = append(advisories, fmt.Sprintf(
			"%d vCPUs with only %dMB of memory is likely CPU-bound on memory; consider at least %dMB",
			q.VCPUs, q.MemoryMB, uint64(q.VCPUs)*1024,
		))
	}

	return advisories
}
