package main

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/RecoveryAshes/site2doc/internal/core"
	"github.com/RecoveryAshes/site2doc/internal/models"
	"github.com/RecoveryAshes/site2doc/internal/utils"
)

// ValidateFlags 验证合并后的参数
func ValidateFlags(targetURL string, config *core.Config) error {
	if err := models.ValidateURL(targetURL); err != nil {
		return fmt.Errorf("无效的目标URL: %w", err)
	}
	if config.Crawl.Depth < 0 {
		return fmt.Errorf("爬取深度不能为负数,当前值: %d", config.Crawl.Depth)
	}
	return config.Validate()
}

// NormalizeURL 没有协议时默认使用https
func NormalizeURL(urlStr string) (string, error) {
	urlStr = strings.TrimSpace(urlStr)
	if urlStr == "" {
		return "", fmt.Errorf("URL不能为空")
	}
	if !strings.Contains(urlStr, "://") {
		urlStr = "https://" + urlStr
	}

	parsed, err := url.Parse(urlStr)
	if err != nil {
		return "", err
	}
	return parsed.String(), nil
}

// runValidateConfig 加载并验证头部配置,打印脱敏后的结果
func runValidateConfig(headerManager *core.HeaderManager) error {
	utils.Info("🔍 验证HTTP头部配置...")
	if err := headerManager.LoadConfig(); err != nil {
		return fmt.Errorf("加载配置失败: %w", err)
	}
	if err := headerManager.Validate(); err != nil {
		return fmt.Errorf("配置验证失败: %w", err)
	}
	if err := appConfig.Validate(); err != nil {
		return fmt.Errorf("配置验证失败: %w", err)
	}

	safeHeaders := headerManager.GetSafeHeaders()
	names := make([]string, 0, len(safeHeaders))
	for name := range safeHeaders {
		names = append(names, name)
	}
	sort.Strings(names)

	utils.Info("✅ 配置验证通过!")
	utils.Infof("当前有效的HTTP头部 (%d个):", len(safeHeaders))
	for _, name := range names {
		utils.Infof("  %s: %s", name, safeHeaders[name])
	}
	return nil
}
