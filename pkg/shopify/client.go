package shopify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// ==================== 接口定义 ====================

// Client Shopify Admin API 客户端
// 主题/脚本标签走 REST，脚本列表/页面创建/商品走 GraphQL（与前端旧实现保持一致）
type Client interface {
	// OAuth
	ExchangeAccessToken(ctx context.Context, shop, clientID, clientSecret, code string) (*AccessToken, error)

	// 主题
	ListThemes(ctx context.Context, shop, token string) ([]Theme, error)
	GetAsset(ctx context.Context, shop, token string, themeID int64, key string) (string, error)

	// 脚本标签
	ListScriptTags(ctx context.Context, shop, token string) ([]ScriptTag, error)
	CreateScriptTag(ctx context.Context, shop, token, src, event string) (*ScriptTag, error)
	DeleteScriptTag(ctx context.Context, shop, token, scriptTagID string) error

	// 页面 & 商品
	CreatePage(ctx context.Context, shop, token, title, handle string, published bool) (*Page, []UserError, error)
	ListProducts(ctx context.Context, shop, token string) ([]Product, error)
}

// ==================== 实现 ====================

// Config 客户端配置
type Config struct {
	APIVersion string // 默认 2024-04
	BaseURL    string // 测试用，非空时替代 https://{shop}
}

type restClient struct {
	cfg  *Config
	http *resty.Client
}

var _ Client = (*restClient)(nil)

// NewClient 创建 Admin API 客户端
func NewClient(cfg *Config) Client {
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = "2024-04"
	}

	client := resty.New().
		SetTimeout(20 * time.Second).
		SetHeader("User-Agent", "Shopify-Tools-Go/1.0")

	return &restClient{cfg: cfg, http: client}
}

// shopURL 店铺域名到请求入口的映射
func (c *restClient) shopURL(shop string) string {
	if c.cfg.BaseURL != "" {
		return c.cfg.BaseURL
	}
	return "https://" + shop
}

// adminURL 拼接 Admin REST 资源地址
func (c *restClient) adminURL(shop, resource string) string {
	return fmt.Sprintf("%s/admin/api/%s/%s", c.shopURL(shop), c.cfg.APIVersion, resource)
}

// apiError 非 2xx 响应统一转为 APIError
func apiError(resp *resty.Response) error {
	return &APIError{StatusCode: resp.StatusCode(), Body: resp.String()}
}

// ==================== OAuth ====================

func (c *restClient) ExchangeAccessToken(ctx context.Context, shop, clientID, clientSecret, code string) (*AccessToken, error) {
	var token AccessToken

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{
			"client_id":     clientID,
			"client_secret": clientSecret,
			"code":          code,
		}).
		SetResult(&token).
		Post(c.shopURL(shop) + "/admin/oauth/access_token")
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return nil, apiError(resp)
	}
	if token.AccessToken == "" {
		return nil, fmt.Errorf("token exchange returned empty access token")
	}
	return &token, nil
}

// ==================== 主题 ====================

func (c *restClient) ListThemes(ctx context.Context, shop, token string) ([]Theme, error) {
	var result struct {
		Themes []Theme `json:"themes"`
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("X-Shopify-Access-Token", token).
		SetResult(&result).
		Get(c.adminURL(shop, "themes.json"))
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return nil, apiError(resp)
	}
	return result.Themes, nil
}

func (c *restClient) GetAsset(ctx context.Context, shop, token string, themeID int64, key string) (string, error) {
	var result struct {
		Asset struct {
			Key   string `json:"key"`
			Value string `json:"value"`
		} `json:"asset"`
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("X-Shopify-Access-Token", token).
		SetQueryParam("asset[key]", key).
		SetResult(&result).
		Get(c.adminURL(shop, fmt.Sprintf("themes/%d/assets.json", themeID)))
	if err != nil {
		return "", err
	}
	if !resp.IsSuccess() {
		return "", apiError(resp)
	}
	return result.Asset.Value, nil
}

// ==================== 脚本标签 ====================

const scriptTagsQuery = `
{
    scriptTags(first: 10) {
        edges {
            node {
                id
                src
            }
        }
    }
}
`

func (c *restClient) ListScriptTags(ctx context.Context, shop, token string) ([]ScriptTag, error) {
	var data struct {
		ScriptTags struct {
			Edges []struct {
				Node ScriptTag `json:"node"`
			} `json:"edges"`
		} `json:"scriptTags"`
	}

	if err := c.graphql(ctx, shop, token, scriptTagsQuery, nil, &data); err != nil {
		return nil, err
	}

	tags := make([]ScriptTag, 0, len(data.ScriptTags.Edges))
	for _, edge := range data.ScriptTags.Edges {
		tags = append(tags, edge.Node)
	}
	return tags, nil
}

func (c *restClient) CreateScriptTag(ctx context.Context, shop, token, src, event string) (*ScriptTag, error) {
	var result struct {
		ScriptTag struct {
			ID  int64  `json:"id"`
			Src string `json:"src"`
		} `json:"script_tag"`
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("X-Shopify-Access-Token", token).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]interface{}{
			"script_tag": map[string]string{
				"event": event,
				"src":   src,
			},
		}).
		SetResult(&result).
		Post(c.adminURL(shop, "script_tags.json"))
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return nil, apiError(resp)
	}
	return &ScriptTag{
		ID:  fmt.Sprintf("%d", result.ScriptTag.ID),
		Src: result.ScriptTag.Src,
	}, nil
}

func (c *restClient) DeleteScriptTag(ctx context.Context, shop, token, scriptTagID string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("X-Shopify-Access-Token", token).
		SetHeader("Content-Type", "application/json").
		Delete(c.adminURL(shop, fmt.Sprintf("script_tags/%s.json", NumericID(scriptTagID))))
	if err != nil {
		return err
	}
	if !resp.IsSuccess() {
		return apiError(resp)
	}
	return nil
}

// NumericID 把 gid://shopify/ScriptTag/123 形式还原为 REST 数字 id
// 本身就是数字的原样返回
func NumericID(id string) string {
	if idx := strings.LastIndex(id, "/"); idx >= 0 {
		return id[idx+1:]
	}
	return id
}

// ==================== 页面 ====================

const pageCreateMutation = `
mutation CreatePage($page: PageCreateInput!) {
  pageCreate(page: $page) {
    page {
      id
      title
      handle
    }
    userErrors {
      code
      field
      message
    }
  }
}
`

func (c *restClient) CreatePage(ctx context.Context, shop, token, title, handle string, published bool) (*Page, []UserError, error) {
	variables := map[string]interface{}{
		"page": map[string]interface{}{
			"title":          title,
			"handle":         handle,
			"body":           "",
			"isPublished":    published,
			"templateSuffix": "custom",
		},
	}

	var data struct {
		PageCreate struct {
			Page       *Page       `json:"page"`
			UserErrors []UserError `json:"userErrors"`
		} `json:"pageCreate"`
	}

	if err := c.graphql(ctx, shop, token, pageCreateMutation, variables, &data); err != nil {
		return nil, nil, err
	}
	if len(data.PageCreate.UserErrors) > 0 {
		return nil, data.PageCreate.UserErrors, nil
	}
	return data.PageCreate.Page, nil, nil
}

// ==================== 商品 ====================

const productsQuery = `
{
    products(first: 10) {
        edges {
            node {
                id
                title
                handle
                description
                productType
                vendor
                tags
                status
                createdAt
                updatedAt
                images(first: 1) {
                    edges {
                        node {
                            id
                            url
                            altText
                        }
                    }
                }
                variants(first: 1) {
                    edges {
                        node {
                            id
                            title
                            price
                            compareAtPrice
                            sku
                            inventoryQuantity
                        }
                    }
                }
            }
        }
    }
}
`

func (c *restClient) ListProducts(ctx context.Context, shop, token string) ([]Product, error) {
	var data struct {
		Products struct {
			Edges []struct {
				Node struct {
					Product
					Images struct {
						Edges []struct {
							Node ProductImage `json:"node"`
						} `json:"edges"`
					} `json:"images"`
					Variants struct {
						Edges []struct {
							Node ProductVariant `json:"node"`
						} `json:"edges"`
					} `json:"variants"`
				} `json:"node"`
			} `json:"edges"`
		} `json:"products"`
	}

	if err := c.graphql(ctx, shop, token, productsQuery, nil, &data); err != nil {
		return nil, err
	}

	products := make([]Product, 0, len(data.Products.Edges))
	for _, edge := range data.Products.Edges {
		p := edge.Node.Product
		if len(edge.Node.Images.Edges) > 0 {
			img := edge.Node.Images.Edges[0].Node
			p.Image = &img
		}
		if len(edge.Node.Variants.Edges) > 0 {
			v := edge.Node.Variants.Edges[0].Node
			p.Variant = &v
		}
		products = append(products, p)
	}
	return products, nil
}

// ==================== GraphQL 通用调用 ====================

// graphql 执行 Admin GraphQL 查询并把 data 解析到 out
func (c *restClient) graphql(ctx context.Context, shop, token, query string, variables map[string]interface{}, out interface{}) error {
	body := map[string]interface{}{"query": query}
	if variables != nil {
		body["variables"] = variables
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("X-Shopify-Access-Token", token).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(c.adminURL(shop, "graphql.json"))
	if err != nil {
		return err
	}
	if !resp.IsSuccess() {
		return apiError(resp)
	}

	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(resp.Body(), &envelope); err != nil {
		return fmt.Errorf("graphql response decode failed: %v", err)
	}
	if len(envelope.Errors) > 0 {
		return fmt.Errorf("graphql error: %s", envelope.Errors[0].Message)
	}
	if out != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("graphql data decode failed: %v", err)
		}
	}
	return nil
}
