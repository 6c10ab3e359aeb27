package shopify

import "fmt"

// ==================== 基础类型 ====================

// Theme 店铺主题
type Theme struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"` // main 为当前生效主题
}

// ScriptTag 店面脚本标签
// GraphQL 返回 gid://shopify/ScriptTag/123 形式，REST 返回数字 id
type ScriptTag struct {
	ID  string `json:"id"`
	Src string `json:"src"`
}

// Page 店面页面
type Page struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Handle string `json:"handle"`
}

// UserError pageCreate 等 mutation 返回的业务校验错误
type UserError struct {
	Code    string   `json:"code"`
	Field   []string `json:"field"`
	Message string   `json:"message"`
}

// ProductImage 商品首图
type ProductImage struct {
	ID      string `json:"id"`
	URL     string `json:"url"`
	AltText string `json:"altText"`
}

// ProductVariant 商品默认变体
type ProductVariant struct {
	ID                string `json:"id"`
	Title             string `json:"title"`
	Price             string `json:"price"`
	CompareAtPrice    string `json:"compareAtPrice"`
	SKU               string `json:"sku"`
	InventoryQuantity int    `json:"inventoryQuantity"`
}

// Product 商品（已按首图/默认变体拍平）
type Product struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Handle      string          `json:"handle"`
	Description string          `json:"description"`
	ProductType string          `json:"productType"`
	Vendor      string          `json:"vendor"`
	Tags        []string        `json:"tags"`
	Status      string          `json:"status"`
	CreatedAt   string          `json:"createdAt"`
	UpdatedAt   string          `json:"updatedAt"`
	Image       *ProductImage   `json:"image"`
	Variant     *ProductVariant `json:"variant"`
}

// AccessToken OAuth code 换取的令牌
type AccessToken struct {
	AccessToken string `json:"access_token"`
	Scope       string `json:"scope"`
}

// ==================== 错误类型 ====================

// APIError Admin API 非 2xx 响应
// 状态码与原始响应体原样透传给上层
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("shopify api error [%d]: %s", e.StatusCode, e.Body)
}
