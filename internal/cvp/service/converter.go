// Package service 提供业务逻辑层的服务实现
// 包括 Unit Service（生命周期编排）和 Backup Service（备份与恢复）
package service

import (
	"time"

	"github.com/jimyag/cvp/internal/cvp/entity"
	"github.com/jimyag/cvp/internal/cvp/repository/model"
	"github.com/jinzhu/copier"
)

// unitModelToEntity 将 model.Unit 转换为 entity.Unit
func unitModelToEntity(m *model.Unit) (*entity.Unit, error) {
	e := &entity.Unit{}
	if err := copier.Copy(e, m); err != nil {
		return nil, err
	}

	// 处理时间字段
	e.CreatedAt = m.CreatedAt.Format(time.RFC3339)
	e.UpdatedAt = m.UpdatedAt.Format(time.RFC3339)

	return e, nil
}

// backupModelToEntity 将 model.Backup 转换为 entity.Backup
func backupModelToEntity(m *model.Backup) (*entity.Backup, error) {
	e := &entity.Backup{}
	if err := copier.Copy(e, m); err != nil {
		return nil, err
	}

	// 处理时间字段
	e.CreatedAt = m.CreatedAt.Format(time.RFC3339)

	return e, nil
}

// portsEntityToModel 将 entity 端口映射转换为 model 端口映射
func portsEntityToModel(ports []entity.PortMapping) []model.PortMapping {
	if len(ports) == 0 {
		return nil
	}
	out := make([]model.PortMapping, 0, len(ports))
	for _, p := range ports {
		out = append(out, model.PortMapping{
			HostPort:      p.HostPort,
			ContainerPort: p.ContainerPort,
			Protocol:      p.Protocol,
		})
	}
	return out
}
