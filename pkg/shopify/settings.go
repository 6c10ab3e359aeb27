package shopify

import (
	"encoding/json"
	"fmt"
)

// SettingsDataKey 主题配置 asset 的固定 key
const SettingsDataKey = "config/settings_data.json"

// ExtractSchemeColors 从 settings_data.json 中取出 scheme-1 的配色
// 路径固定为 current.color_schemes["scheme-1"].settings，
// 任一层缺失视为主题不满足生成前置条件
func ExtractSchemeColors(settingsData string) (map[string]interface{}, error) {
	var parsed struct {
		Current struct {
			ColorSchemes map[string]struct {
				Settings map[string]interface{} `json:"settings"`
			} `json:"color_schemes"`
		} `json:"current"`
	}

	if err := json.Unmarshal([]byte(settingsData), &parsed); err != nil {
		return nil, fmt.Errorf("settings_data.json 解析失败: %v", err)
	}

	scheme, ok := parsed.Current.ColorSchemes["scheme-1"]
	if !ok {
		return nil, fmt.Errorf("主题缺少 scheme-1 配色")
	}
	if len(scheme.Settings) == 0 {
		return nil, fmt.Errorf("scheme-1 配色为空")
	}
	return scheme.Settings, nil
}
