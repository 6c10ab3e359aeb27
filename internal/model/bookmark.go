package model

import "gorm.io/datatypes"

// Bookmark 店铺收藏的工具名列表
// Titles 为 JSON 数组，保持插入顺序且不含重复项
type Bookmark struct {
	BaseModel
	ShopName string         `gorm:"uniqueIndex;size:255;comment:店铺域名" json:"shopName"`
	Titles   datatypes.JSON `gorm:"comment:收藏的工具名 JSON 数组" json:"titles"`
}

func (Bookmark) TableName() string {
	return "bookmarks"
}
