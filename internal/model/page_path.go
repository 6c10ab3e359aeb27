package model

// PagePath 店铺的工具落地页 slug
// 每个店铺最多创建一次，重复创建会触发唯一约束
type PagePath struct {
	BaseModel
	ShopName string `gorm:"uniqueIndex;size:255;comment:店铺域名" json:"shopName"`
	Path     string `gorm:"size:255;comment:店面页面 slug" json:"path"`
}

func (PagePath) TableName() string {
	return "page_paths"
}
