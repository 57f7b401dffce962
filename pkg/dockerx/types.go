package dockerx

import "time"

// CreateSpec 创建容器的参数
type CreateSpec struct {
	Name        string            // 容器名称（使用计算单元 ID，保证可反查）
	Image       string            // 镜像引用
	NanoCPUs    int64             // CPU 限制（nano-CPU，1 核 = 1e9）
	MemoryBytes int64             // 内存限制（字节）
	StorageOpt  string            // 存储配额（如 "40G"）
	Env         map[string]string // 环境变量
	Labels      map[string]string // 标签，至少包含 owner 关联 ID，便于按标签过滤
	Ports       []PortMapping     // 端口映射
}

// PortMapping 单条端口映射
type PortMapping struct {
	HostPort      uint16 `json:"host_port"`
	ContainerPort uint16 `json:"container_port"`
	Protocol      string `json:"protocol"` // tcp / udp，默认 tcp
}

// Snapshot 某一时刻从运行时读到的容器状态
// 短暂对象，永远不落库
type Snapshot struct {
	ContainerID string
	Running     bool
	Status      string // created, running, exited...
	Health      string // healthy, unhealthy, starting；无健康检查时为空
	IPAddress   string // 运行时分配的桥接网络地址
	Ports       []PortMapping
	StartedAt   time.Time
}

// Counters 某一时刻的原始累计计数器
// CPU 百分比需要两个按时间排序的快照才能计算
type Counters struct {
	CPUTotal    uint64 // 容器累计 CPU 时间（纳秒）
	SystemTotal uint64 // 宿主机累计 CPU 时间（纳秒）
	OnlineCPUs  uint32

	MemoryUsed  uint64
	MemoryLimit uint64

	Interfaces []InterfaceCounters
	Devices    []DeviceCounters

	PIDs      uint64
	SampledAt time.Time
}

// InterfaceCounters 单个网络接口的累计流量
type InterfaceCounters struct {
	RxBytes uint64
	TxBytes uint64
}

// DeviceCounters 单个块设备的累计读写
type DeviceCounters struct {
	ReadBytes  uint64
	WriteBytes uint64
}

// ExecResult 同步 exec 的结果
type ExecResult struct {
	ExitCode int    `json:"exit_code"`
	Output   string `json:"output"` // stdout 和 stderr 合并输出
}

// LogsOptions 读取容器日志的选项
type LogsOptions struct {
	TailLines  int       // 0 表示全部
	Since      time.Time // 零值表示不限制
	Until      time.Time // 零值表示不限制
	Timestamps bool
}

// CommitResult 容器提交为镜像的结果
type CommitResult struct {
	ImageID   string
	SizeBytes int64
}
