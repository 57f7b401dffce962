package entity

// Backup 备份信息
// 备份是不可变的镜像制品，源单元删除后依然存在
type Backup struct {
	ID        string `json:"id"`         // 备份 ID: bak-{递增 ID}
	OwnerID   string `json:"owner_id"`   // 所属租户 ID
	Name      string `json:"name"`       // 备份名称
	UnitID    string `json:"unit_id"`    // 源计算单元 ID
	ImageRef  string `json:"image_ref"`  // 提交生成的镜像引用
	SizeBytes int64  `json:"size_bytes"` // 镜像大小（字节）
	CreatedAt string `json:"created_at"` // 创建时间
}

// CreateBackupRequest 创建备份请求
type CreateBackupRequest struct {
	OwnerID string `json:"owner_id" binding:"required"`
	UnitID  string `json:"unit_id"  binding:"required"`
	Name    string `json:"name"     binding:"required"` // 备份名称
}

// CreateBackupResponse 创建备份响应
type CreateBackupResponse struct {
	Backup *Backup `json:"backup"`
}

// DescribeBackupsRequest 描述备份请求
type DescribeBackupsRequest struct {
	OwnerID   string   `json:"owner_id" binding:"required"`
	BackupIDs []string `json:"backup_ids,omitempty"` // 过滤指定 ID
	UnitID    string   `json:"unit_id,omitempty"`    // 过滤源单元
}

// DescribeBackupsResponse 描述备份响应
type DescribeBackupsResponse struct {
	Backups []Backup `json:"backups"`
}

// RestoreBackupRequest 从备份恢复请求
// 恢复等价于以备份镜像为基础镜像的全新创建：新身份、停止状态、
// 不继承源单元的名称占用和历史
type RestoreBackupRequest struct {
	OwnerID     string            `json:"owner_id"     binding:"required"`
	BackupID    string            `json:"backup_id"    binding:"required"`
	Name        string            `json:"name"         binding:"required"` // 新单元名称
	VCPUs       uint16            `json:"vcpus"        binding:"required"`
	MemoryMB    uint64            `json:"memory_mb"    binding:"required"`
	StorageGB   uint64            `json:"storage_gb"   binding:"required"`
	BandwidthGB uint64            `json:"bandwidth_gb" binding:"required"`
	Env         map[string]string `json:"env,omitempty"`
	Ports       []PortMapping     `json:"ports,omitempty"`
}

// RestoreBackupResponse 从备份恢复响应
type RestoreBackupResponse struct {
	Unit       *Unit    `json:"unit"`
	Advisories []string `json:"advisories,omitempty"`
}

// DeleteBackupRequest 删除备份请求
type DeleteBackupRequest struct {
	OwnerID  string `json:"owner_id"  binding:"required"`
	BackupID string `json:"backup_id" binding:"required"`
}

// DeleteBackupResponse 删除备份响应
type DeleteBackupResponse struct {
	BackupID string `json:"backup_id"`
}
