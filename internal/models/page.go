package models

import "strings"

// LinkSet 按文档顺序排列的链接,不去重
type LinkSet []string

// FetchedPage 一次HTTP获取的结果
type FetchedPage struct {
	URL         string
	StatusCode  int
	ContentType string
	Body        []byte
}

// IsHTML 响应是否为HTML
// 缺少Content-Type时按HTML处理
func (p *FetchedPage) IsHTML() bool {
	if p.ContentType == "" {
		return true
	}
	ct := strings.ToLower(p.ContentType)
	return strings.Contains(ct, "text/html") || strings.Contains(ct, "application/xhtml")
}

// Text 正文字符串
func (p *FetchedPage) Text() string {
	return string(p.Body)
}
