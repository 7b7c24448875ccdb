package models

import (
	"encoding/json"
	"time"
)

// CrawlReport 爬取报告
type CrawlReport struct {
	// 运行信息
	RunID   string `json:"run_id"`
	SeedURL string `json:"seed_url"`
	Domain  string `json:"domain"`
	Depth   int    `json:"depth"`

	// 时间信息
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Duration  float64   `json:"duration"` // 秒

	// 统计信息
	Stats TaskStats `json:"stats"`

	// 页面列表
	Artifacts   []ArtifactInfo   `json:"artifacts"`    // 本次处理过的页面
	FailedPages []FailedPageInfo `json:"failed_pages"` // 失败页面

	// 输出路径
	OutputDir  string `json:"output_dir"`  // 域名输出目录
	PDFDir     string `json:"pdf_dir"`     // PDF目录
	StagingDir string `json:"staging_dir"` // 暂存目录

	// 配置快照
	Config CrawlConfig `json:"config"`
}

// ArtifactInfo 单个页面的产物记录
type ArtifactInfo struct {
	URL         string        `json:"url"`
	State       ArtifactState `json:"state"`
	PDFPath     string        `json:"pdf_path"`
	Editable    string        `json:"editable_path,omitempty"`
	ProcessedAt time.Time     `json:"processed_at"`
}

// FailedPageInfo 失败页面信息
type FailedPageInfo struct {
	URL       string `json:"url"`
	Stage     string `json:"stage"` // fetch, stage, render, cleanup
	ErrorMsg  string `json:"error_msg"`
	Timestamp int64  `json:"timestamp"`
}

// ToJSON 序列化为JSON
func (r *CrawlReport) ToJSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// FromJSON 从JSON反序列化
func (r *CrawlReport) FromJSON(data []byte) error {
	return json.Unmarshal(data, r)
}
