package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ==================== 配置 ====================

// AIConfig AI 服务配置
type AIConfig struct {
	ApiKey    string
	TextModel string
	BaseURL   string // 测试用，覆盖 Gemini 接口地址
}

// ==================== 服务 ====================

// TextGenerator 文本生成能力，编排层按接口注入
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

type AIService struct {
	Config *AIConfig
	client *http.Client
}

var _ TextGenerator = (*AIService)(nil)

// NewAIService 创建 AI 服务
func NewAIService(cfg *AIConfig) *AIService {
	// 固定模型配置
	if cfg.TextModel == "" {
		cfg.TextModel = "gemini-2.0-flash"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://generativelanguage.googleapis.com"
	}

	return &AIService{
		Config: cfg,
		client: &http.Client{Timeout: 60 * time.Second},
	}
}

// ==================== 文本生成 ====================

// GenerateText 调用 Gemini generateContent，返回首个候选的文本
func (s *AIService) GenerateText(ctx context.Context, prompt string) (string, error) {
	if s.Config.ApiKey == "" {
		return "", fmt.Errorf("Gemini API Key 未配置")
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		s.Config.BaseURL, s.Config.TextModel, s.Config.ApiKey)

	reqBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{"parts": []map[string]interface{}{{"text": prompt}}},
		},
	}

	bodyBytes, _ := json.Marshal(reqBody)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("请求失败: %v", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("Gemini API 错误 [%d]: %s", resp.StatusCode, string(respBody))
	}

	// 解析响应
	var geminiResp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(respBody, &geminiResp); err != nil {
		return "", fmt.Errorf("Gemini 响应解析失败: %v", err)
	}

	if len(geminiResp.Candidates) == 0 || len(geminiResp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("Gemini 未返回候选内容")
	}
	return geminiResp.Candidates[0].Content.Parts[0].Text, nil
}

// ==================== 提示词模板 ====================

// BuildPopupPrompt 弹窗广告提示词
// 唯一可变部分是工具名和跳转路径
func BuildPopupPrompt(toolName, path string) string {
	return fmt.Sprintf(`Create a popup about %s tool which contains a button that redirects to /pages/%s. `+
		`Design a modern, playful pop-up advertisement UI for the tool. Use bold, quirky fonts, generous padding, and rounded corners. `+
		`The layout should feel vibrant and humorous, encouraging clicks through cheeky phrasing. `+
		`Incorporate soft gradients or pastel background elements for visual charm, and place the pop-up over a blurred website backdrop to emphasize focus. `+
		`Background must be gradient. The popup should have a close button to close the popup - use inline onclick JavaScript (no external scripts or frameworks). `+
		`The popup div should not have display none before closing. `+
		`The response should contain only the code for the popup in a single HTML tag. No explanations or extra output. No images.`,
		toolName, path)
}

// BuildToolPrompt 工具主体提示词
// colors 为主题 scheme-1 的配色，序列化后注入
func BuildToolPrompt(toolName string, colors map[string]interface{}) string {
	colorJSON, _ := json.Marshal(colors)
	return fmt.Sprintf(`Create a %s tool. Do not apply any styles to the <body> tag. `+
		`Generate a responsive form layout with CSS variables for colors and modern UI styling. `+
		`Do not include any styles for the body tag — keep all styles scoped to classes only. `+
		`Style the input field with a minimalist aesthetic, rounded corners, subtle shadows, and soft gradients. `+
		`Use playful, readable fonts and a light color palette with pastel accents. `+
		`Make the design responsive and visually balanced, ideal for a modern web app interface. `+
		`The background should use full width of the screen. The tool should be attractive, stylish, engaging, colorful, and user-friendly. `+
		`No image and do not use domcontentloaded. Keep the event listener in the script tag. `+
		`The response should contain only the code for the tool in a respective tag. No explanations or extra output or meta tags. `+
		`Use consistent padding, playful transitions, and rounded corners throughout. Use these colors: %s.`,
		toolName, string(colorJSON))
}
