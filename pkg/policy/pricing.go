package policy

// 每小时单位费率（美元）
// 定价必须是 {vCPU, 内存, 存储, 带宽} 的确定性单调函数：
// 创建时的冻结价格和价格预览使用同一套计算
const (
	RatePerVCPUHour     = 0.0120   // 每核每小时
	RatePerMemoryGBHour = 0.0050   // 每 GB 内存每小时
	RatePerStorageGB    = 0.000150 // 每 GB 存储每小时
	RatePerBandwidthGB  = 0.000020 // 每 GB 带宽配额每小时
)

// EstimateHourlyRate 估算每小时费用（美元）
// 纯函数：对每个字段单调非减，无 I/O
func EstimateHourlyRate(q Quota) float64 {
	rate := float64(q.VCPUs) * RatePerVCPUHour
	rate += float64(q.MemoryMB) / 1024 * RatePerMemoryGBHour
	rate += float64(q.StorageGB) * RatePerStorageGB
	rate += float64(q.BandwidthGB) * RatePerBandwidthGB
	return rate
}
