package model

// ToolInstallation 工具安装量计数
// 每次店面落地页加载时 +1，排行榜按 Metrics 倒序
type ToolInstallation struct {
	BaseModel
	ToolName string `gorm:"uniqueIndex;size:255;comment:工具名" json:"toolName"`
	Metrics  int    `gorm:"default:0;comment:累计安装/浏览次数" json:"metrics"`
}

func (ToolInstallation) TableName() string {
	return "tool_installations"
}
