package service

import (
	"context"

	"shopify_tools_v1_202608/internal/model"
	"shopify_tools_v1_202608/internal/repository"
)

// AnalyticsService 安装量排行
type AnalyticsService struct {
	installRepo repository.InstallationRepository
}

// NewAnalyticsService 创建排行服务
func NewAnalyticsService(installRepo repository.InstallationRepository) *AnalyticsService {
	return &AnalyticsService{installRepo: installRepo}
}

// Leaderboard 按安装量倒序返回全部工具
func (s *AnalyticsService) Leaderboard(ctx context.Context) ([]model.ToolInstallation, error) {
	return s.installRepo.ListByMetricsDesc(ctx)
}
