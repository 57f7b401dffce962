package policy

import "fmt"

// 单位换算集中在这里，避免散落在各处的 inline 换算造成单位错配

// NanoCPUs 将 vCPU 数量换算为容器运行时使用的 nano-CPU 单位
// 1 vCPU = 1e9 nano-CPU
func NanoCPUs(vcpus uint16) int64 {
	return int64(vcpus) * 1_000_000_000
}

// MemoryBytes 将 MB 换算为字节
func MemoryBytes(memoryMB uint64) int64 {
	return int64(memoryMB) * 1024 * 1024
}

// StorageOpt 将 GB 换算为运行时 storage-opt 使用的配额字符串
func StorageOpt(storageGB uint64) string {
	return fmt.Sprintf("%dG", storageGB)
}
