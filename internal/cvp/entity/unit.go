// Package entity 定义业务实体
package entity

import "github.com/jimyag/cvp/pkg/usage"

// 计算单元状态
const (
	UnitStateStopped    = "stopped"    // 已停止（创建后的初始状态，唯一允许删除的状态）
	UnitStateStarting   = "starting"   // 启动中（过渡状态）
	UnitStateRunning    = "running"    // 运行中
	UnitStateStopping   = "stopping"   // 停止中（过渡状态）
	UnitStateRestarting = "restarting" // 重启中（过渡状态）
	UnitStateSuspended  = "suspended"  // 已挂起（仅管理员可操作）
	UnitStateDegraded   = "degraded"   // 降级（运行时不可达，状态未知）
	UnitStateError      = "error"      // 错误（终态，需管理员重置）
)

// Unit 计算单元信息
type Unit struct {
	ID            string            `json:"id"`                       // 计算单元 ID: cu-{递增 ID}
	OwnerID       string            `json:"owner_id"`                 // 所属租户 ID
	Name          string            `json:"name"`                     // 单元名称（同一租户内唯一）
	State         string            `json:"state"`                    // 状态
	Image         string            `json:"image"`                    // 基础镜像
	VCPUs         uint16            `json:"vcpus"`                    // 虚拟 CPU 数量
	MemoryMB      uint64            `json:"memory_mb"`                // 内存大小（MB）
	StorageGB     uint64            `json:"storage_gb"`               // 存储大小（GB）
	BandwidthGB   uint64            `json:"bandwidth_gb"`             // 月流量配额（GB）
	ContainerID   string            `json:"container_id,omitempty"`   // 后端容器 ID
	PrivateIP     string            `json:"private_ip,omitempty"`     // 内网地址
	Env           map[string]string `json:"env,omitempty"`            // 环境变量
	Ports         []PortMapping     `json:"ports,omitempty"`          // 端口映射
	HourlyRate    float64           `json:"hourly_rate"`              // 创建时冻结的小时费率（USD）
	FailureReason string            `json:"failure_reason,omitempty"` // 最近一次失败原因
	CreatedAt     string            `json:"created_at"`               // 创建时间
	UpdatedAt     string            `json:"updated_at"`               // 最近一次状态变更时间
}

// PortMapping 端口映射
type PortMapping struct {
	HostPort      uint16 `json:"host_port"`      // 宿主机端口
	ContainerPort uint16 `json:"container_port"` // 容器端口
	Protocol      string `json:"protocol"`       // tcp / udp（默认 tcp）
}

// RunUnitRequest 创建计算单元请求
type RunUnitRequest struct {
	OwnerID     string            `json:"owner_id"     binding:"required"` // 租户 ID
	Name        string            `json:"name"         binding:"required"` // 单元名称
	Image       string            `json:"image"        binding:"required"` // 基础镜像
	VCPUs       uint16            `json:"vcpus"        binding:"required"` // 虚拟 CPU 数量
	MemoryMB    uint64            `json:"memory_mb"    binding:"required"` // 内存大小（MB）
	StorageGB   uint64            `json:"storage_gb"   binding:"required"` // 存储大小（GB）
	BandwidthGB uint64            `json:"bandwidth_gb" binding:"required"` // 月流量配额（GB）
	Env         map[string]string `json:"env,omitempty"`                   // 环境变量（可选）
	Ports       []PortMapping     `json:"ports,omitempty"`                 // 端口映射（可选）
}

// RunUnitResponse 创建计算单元响应
type RunUnitResponse struct {
	Unit       *Unit    `json:"unit"`
	Advisories []string `json:"advisories,omitempty"` // 非阻塞的配置建议
}

// DescribeUnitsRequest 描述计算单元请求
type DescribeUnitsRequest struct {
	OwnerID string   `json:"owner_id" binding:"required"` // 租户 ID（只返回该租户的单元）
	UnitIDs []string `json:"unit_ids,omitempty"`          // 过滤指定 ID
	States  []string `json:"states,omitempty"`            // 过滤指定状态
}

// DescribeUnitsResponse 描述计算单元响应
type DescribeUnitsResponse struct {
	Units []Unit `json:"units"`
}

// StartUnitRequest 启动计算单元请求
type StartUnitRequest struct {
	OwnerID string `json:"owner_id" binding:"required"`
	UnitID  string `json:"unit_id"  binding:"required"`
}

// StopUnitRequest 停止计算单元请求
type StopUnitRequest struct {
	OwnerID        string `json:"owner_id" binding:"required"`
	UnitID         string `json:"unit_id"  binding:"required"`
	TimeoutSeconds int    `json:"timeout_seconds,omitempty"` // 优雅停止超时（秒），默认 10
}

// RestartUnitRequest 重启计算单元请求
type RestartUnitRequest struct {
	OwnerID        string `json:"owner_id" binding:"required"`
	UnitID         string `json:"unit_id"  binding:"required"`
	TimeoutSeconds int    `json:"timeout_seconds,omitempty"`
}

// UnitStateChangeResponse 状态变更响应
// 过渡状态是正常响应而非错误，调用方通过 describe 轮询终态
type UnitStateChangeResponse struct {
	UnitID        string `json:"unit_id"`
	CurrentState  string `json:"current_state"`  // 当前状态（过渡状态）
	PreviousState string `json:"previous_state"` // 之前的状态
}

// DeleteUnitRequest 删除计算单元请求
type DeleteUnitRequest struct {
	OwnerID string `json:"owner_id" binding:"required"`
	UnitID  string `json:"unit_id"  binding:"required"`
}

// DeleteUnitResponse 删除计算单元响应
type DeleteUnitResponse struct {
	UnitID string `json:"unit_id"`
	State  string `json:"state"` // destroyed
}

// ResizeUnitRequest 调整配额请求（仅停止状态）
type ResizeUnitRequest struct {
	OwnerID     string `json:"owner_id"     binding:"required"`
	UnitID      string `json:"unit_id"      binding:"required"`
	VCPUs       uint16 `json:"vcpus"        binding:"required"`
	MemoryMB    uint64 `json:"memory_mb"    binding:"required"`
	StorageGB   uint64 `json:"storage_gb"   binding:"required"`
	BandwidthGB uint64 `json:"bandwidth_gb" binding:"required"`
}

// ResizeUnitResponse 调整配额响应
type ResizeUnitResponse struct {
	Unit       *Unit    `json:"unit"`
	Advisories []string `json:"advisories,omitempty"`
}

// SuspendUnitRequest 挂起计算单元请求（仅管理员）
type SuspendUnitRequest struct {
	AdminID string `json:"admin_id" binding:"required"` // 管理员 ID
	UnitID  string `json:"unit_id"  binding:"required"`
	Reason  string `json:"reason,omitempty"` // 挂起原因（如欠费）
}

// ResumeUnitRequest 恢复计算单元请求（仅管理员）
type ResumeUnitRequest struct {
	AdminID string `json:"admin_id" binding:"required"`
	UnitID  string `json:"unit_id"  binding:"required"`
}

// ResetUnitRequest 重置错误状态请求（仅管理员）
type ResetUnitRequest struct {
	AdminID string `json:"admin_id" binding:"required"`
	UnitID  string `json:"unit_id"  binding:"required"`
}

// UnitStatsRequest 查询资源用量请求
type UnitStatsRequest struct {
	OwnerID string `json:"owner_id" binding:"required"`
	UnitID  string `json:"unit_id"  binding:"required"`
}

// UnitStatsResponse 查询资源用量响应
type UnitStatsResponse struct {
	UnitID string        `json:"unit_id"`
	State  string        `json:"state"`
	Sample *usage.Sample `json:"sample,omitempty"` // nil 表示单元未运行
}

// UnitLogsRequest 查询日志请求
type UnitLogsRequest struct {
	OwnerID    string `json:"owner_id" binding:"required"`
	UnitID     string `json:"unit_id"  binding:"required"`
	TailLines  int    `json:"tail_lines,omitempty"` // 只返回最后 N 行，0 表示全部
	Since      string `json:"since,omitempty"`      // RFC3339 起始时间
	Until      string `json:"until,omitempty"`      // RFC3339 截止时间
	Timestamps bool   `json:"timestamps,omitempty"` // 是否带时间戳
}

// UnitLogsResponse 查询日志响应
type UnitLogsResponse struct {
	UnitID string `json:"unit_id"`
	Logs   string `json:"logs"`
}

// ExecUnitRequest 在计算单元内执行命令请求
type ExecUnitRequest struct {
	OwnerID string   `json:"owner_id" binding:"required"`
	UnitID  string   `json:"unit_id"  binding:"required"`
	Command []string `json:"command"  binding:"required"` // argv 形式
}

// ExecUnitResponse 执行命令响应
type ExecUnitResponse struct {
	UnitID   string `json:"unit_id"`
	ExitCode int    `json:"exit_code"`
	Output   string `json:"output"` // stdout + stderr 合并输出
}
