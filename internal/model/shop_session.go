package model

// ShopSession 店铺授权会话
// OAuth 成功后按 shop 域名 upsert，每个店铺最多一条记录
type ShopSession struct {
	BaseModel
	// 店铺域名，如 example.myshopify.com，平台侧唯一身份
	Shop        string `gorm:"uniqueIndex;size:255;comment:店铺域名" json:"shop"`
	AccessToken string `gorm:"size:255;comment:Admin API 访问令牌" json:"-"`
	Scope       string `gorm:"size:512;comment:已授予的权限列表" json:"scope"`
}

func (ShopSession) TableName() string {
	return "shop_sessions"
}
