package model

import (
	"time"

	"gorm.io/gorm"
)

// Backup 备份表
// 备份记录不可变，源单元删除后依然保留
type Backup struct {
	ID        string         `gorm:"primaryKey;type:text;column:id" json:"id"`                                       // bak-{递增 ID}
	OwnerID   string         `gorm:"type:text;not null;index:idx_backups_owner_id;column:owner_id" json:"owner_id"`  // 所属租户 ID
	Name      string         `gorm:"type:text;not null;column:name" json:"name"`                                     // 备份名称
	UnitID    string         `gorm:"type:text;not null;index:idx_backups_unit_id;column:unit_id" json:"unit_id"`     // 源计算单元 ID
	ImageRef  string         `gorm:"type:text;not null;column:image_ref" json:"image_ref"`                           // 提交生成的镜像引用
	SizeBytes int64          `gorm:"type:integer;column:size_bytes" json:"size_bytes"`                               // 镜像大小（字节）
	CreatedAt time.Time      `gorm:"type:datetime;not null;column:created_at" json:"created_at"`
	UpdatedAt time.Time      `gorm:"type:datetime;not null;column:updated_at" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"type:datetime;index:idx_backups_deleted_at;column:deleted_at" json:"deleted_at,omitempty"` // 软删除
}

// TableName 指定表名
func (Backup) TableName() string {
	return "backups"
}
