// Package policy 提供资源配额的校验、定价和单位换算
//
// 所有函数都是纯函数，不依赖任何运行时或存储，
// 因此既可以用于创建前的预检，也可以用于价格预览。
//
// 使用方式：
//
//	quota := policy.Quota{VCPUs: 2, MemoryMB: 2048, StorageGB: 40, BandwidthGB: 500}
//
//	// 校验配额，返回所有违反的规则（不是只返回第一条）
//	if violations := policy.Validate(quota); len(violations) > 0 {
//		// 处理校验失败
//	}
//
//	// 估算每小时费用（美元）
//	rate := policy.EstimateHourlyRate(quota)
package policy
