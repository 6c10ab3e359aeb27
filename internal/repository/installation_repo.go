package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"shopify_tools_v1_202608/internal/model"
)

// ==================== 接口定义 ====================

// InstallationRepository 安装量仓储接口
// 只增不减，没有重置操作
type InstallationRepository interface {
	// Increment 首次计 1，之后原子 +1
	Increment(ctx context.Context, toolName string) error
	// ListByMetricsDesc 按安装量倒序返回全部工具
	ListByMetricsDesc(ctx context.Context) ([]model.ToolInstallation, error)
}

// ==================== 仓储实现 ====================

type installationRepo struct {
	db *gorm.DB
}

// NewInstallationRepository 创建安装量仓储
func NewInstallationRepository(db *gorm.DB) InstallationRepository {
	return &installationRepo{db: db}
}

func (r *installationRepo) Increment(ctx context.Context, toolName string) error {
	record := model.ToolInstallation{
		ToolName: toolName,
		Metrics:  1,
	}

	// 冲突时在数据库侧自增，避免读改写竞争
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "tool_name"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"metrics": gorm.Expr("metrics + 1"),
			}),
		}).
		Create(&record).Error
}

func (r *installationRepo) ListByMetricsDesc(ctx context.Context) ([]model.ToolInstallation, error) {
	var list []model.ToolInstallation
	err := r.db.WithContext(ctx).Order("metrics DESC").Find(&list).Error
	return list, err
}
