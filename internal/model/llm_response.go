package model

import "time"

// LLMResponse AI 生成的工具内容
// ID 为店面加载脚本引用的随机标识，记录创建后不再修改
// 旧记录由 ContentGCTask 周期回收（见 internal/task）
type LLMResponse struct {
	ID        string    `gorm:"primaryKey;size:32" json:"id"`
	CreatedAt time.Time `json:"-"`
	Landing   string    `gorm:"type:text;comment:工具主体 HTML" json:"landing"`
	Popup     string    `gorm:"type:text;comment:弹窗广告 HTML" json:"popup"`
}

func (LLMResponse) TableName() string {
	return "llm_responses"
}
