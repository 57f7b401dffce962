package model

import (
	"time"

	"gorm.io/gorm"
)

// Unit 计算单元表
type Unit struct {
	ID            string            `gorm:"primaryKey;type:text;column:id" json:"id"`                                    // cu-{递增 ID}
	OwnerID       string            `gorm:"type:text;not null;index:idx_units_owner_id;column:owner_id" json:"owner_id"` // 所属租户 ID
	Name          string            `gorm:"type:text;not null;column:name" json:"name"`                                  // 单元名称（同一租户内唯一，见 createIndexes）
	State         string            `gorm:"type:text;not null;index:idx_units_state;column:state" json:"state"`          // stopped, starting, running, stopping, restarting, suspended, degraded, error
	Image         string            `gorm:"type:text;not null;column:image" json:"image"`                                // 基础镜像
	VCPUs         uint16            `gorm:"type:integer;not null;column:vcpus" json:"vcpus"`                             // 虚拟 CPU 数量
	MemoryMB      uint64            `gorm:"type:integer;not null;column:memory_mb" json:"memory_mb"`                     // 内存大小（MB）
	StorageGB     uint64            `gorm:"type:integer;not null;column:storage_gb" json:"storage_gb"`                   // 存储大小（GB）
	BandwidthGB   uint64            `gorm:"type:integer;not null;column:bandwidth_gb" json:"bandwidth_gb"`               // 月流量配额（GB）
	ContainerID   string            `gorm:"type:text;column:container_id" json:"container_id"`                           // 后端容器 ID（删除后清空）
	PrivateIP     string            `gorm:"type:text;column:private_ip" json:"private_ip"`                               // 内网地址
	Env           map[string]string `gorm:"serializer:json;column:env" json:"env"`                                       // 环境变量（JSON 序列化，重建时还原）
	Ports         []PortMapping     `gorm:"serializer:json;column:ports" json:"ports"`                                   // 端口映射（JSON 序列化）
	HourlyRate    float64           `gorm:"type:real;column:hourly_rate" json:"hourly_rate"`                             // 创建时冻结的小时费率（USD）
	FailureReason string            `gorm:"type:text;column:failure_reason" json:"failure_reason"`                       // 最近一次失败原因
	CreatedAt     time.Time         `gorm:"type:datetime;not null;index:idx_units_created_at;column:created_at" json:"created_at"`
	UpdatedAt     time.Time         `gorm:"type:datetime;not null;column:updated_at" json:"updated_at"`
	DeletedAt     gorm.DeletedAt    `gorm:"type:datetime;index:idx_units_deleted_at;column:deleted_at" json:"deleted_at,omitempty"` // 软删除（销毁时间）
}

// PortMapping 端口映射（随 Unit 序列化存储）
type PortMapping struct {
	HostPort      uint16 `json:"host_port"`
	ContainerPort uint16 `json:"container_port"`
	Protocol      string `json:"protocol"`
}

// TableName 指定表名
func (Unit) TableName() string {
	return "units"
}
