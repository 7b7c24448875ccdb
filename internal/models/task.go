package models

import (
	"encoding/json"
	"fmt"
	"net/url"
	"time"
)

// RunStatus 运行状态
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"   // 待执行
	RunStatusRunning   RunStatus = "running"   // 执行中
	RunStatusCompleted RunStatus = "completed" // 已完成
	RunStatusFailed    RunStatus = "failed"    // 失败
	RunStatusCancelled RunStatus = "cancelled" // 已取消
)

// TaskStats 任务统计
type TaskStats struct {
	VisitedURLs     int     `json:"visited_urls"`     // 已访问URL数
	ExtractedLinks  int     `json:"extracted_links"`  // 提取到的链接总数(含重复)
	RenderedPDFs    int     `json:"rendered_pdfs"`    // 新生成的PDF数
	SkippedExisting int     `json:"skipped_existing"` // 产物已存在而跳过的页面数
	FailedPages     int     `json:"failed_pages"`     // 获取或转换失败的页面数
	EditableDocs    int     `json:"editable_docs"`    // 生成的可编辑文档数
	Duration        float64 `json:"duration"`         // 总耗时(秒)
}

// Add 累加另一份统计
func (s *TaskStats) Add(other TaskStats) {
	s.VisitedURLs += other.VisitedURLs
	s.ExtractedLinks += other.ExtractedLinks
	s.RenderedPDFs += other.RenderedPDFs
	s.SkippedExisting += other.SkippedExisting
	s.FailedPages += other.FailedPages
	s.EditableDocs += other.EditableDocs
	s.Duration += other.Duration
}

// CrawlConfig 爬取配置
type CrawlConfig struct {
	Depth       int    `mapstructure:"depth" json:"depth"`               // 爬取深度 (默认:2)
	SiteToken   string `mapstructure:"site_token" json:"site_token"`     // 站点标识,链接包含它即保留;为空时取种子域名
	WaitTime    int    `mapstructure:"wait_time" json:"wait_time"`       // 单次请求超时(秒) (默认:30)
	InsecureTLS bool   `mapstructure:"insecure_tls" json:"insecure_tls"` // 跳过TLS证书校验

	Naming     NamingPolicy `mapstructure:"naming" json:"naming"`           // 文件名生成策略
	MarkerMode MarkerMode   `mapstructure:"marker_mode" json:"marker_mode"` // 伴随标记模式

	ShowProgress bool `mapstructure:"show_progress" json:"show_progress"` // 显示进度
}

// Validate 验证配置
func (c *CrawlConfig) Validate() error {
	if c.Depth < 0 {
		return fmt.Errorf("深度不能为负数")
	}
	if c.WaitTime < 0 || c.WaitTime > 600 {
		return fmt.Errorf("等待时间必须在0-600秒之间")
	}
	if !c.Naming.Valid() {
		return fmt.Errorf("未知的命名策略: %q", c.Naming)
	}
	if !c.MarkerMode.Valid() {
		return fmt.Errorf("未知的标记模式: %q", c.MarkerMode)
	}
	return nil
}

// RenderConfig 渲染配置
type RenderConfig struct {
	Headless           bool   `mapstructure:"headless" json:"headless"`                         // 无头模式 (默认:true)
	BrowserBin         string `mapstructure:"browser_bin" json:"browser_bin"`                   // 浏览器可执行文件,为空时自动查找
	Timeout            int    `mapstructure:"timeout" json:"timeout"`                           // 单页渲染超时(秒)
	SettleMillis       int    `mapstructure:"settle_ms" json:"settle_ms"`                       // 加载完成后额外等待(毫秒)
	Landscape          bool   `mapstructure:"landscape" json:"landscape"`                       // 横向打印
	MaxBrowserRestarts int    `mapstructure:"max_browser_restarts" json:"max_browser_restarts"` // 浏览器崩溃后最多重启次数
	EditableEnabled    bool   `mapstructure:"editable_enabled" json:"editable_enabled"`         // 启用PDF转DOCX
	SofficeBin         string `mapstructure:"soffice_bin" json:"soffice_bin"`                   // LibreOffice可执行文件
}

// Validate 验证配置
func (c *RenderConfig) Validate() error {
	if c.Timeout < 1 || c.Timeout > 600 {
		return fmt.Errorf("渲染超时必须在1-600秒之间")
	}
	if c.SettleMillis < 0 {
		return fmt.Errorf("额外等待时间不能为负数")
	}
	if c.MaxBrowserRestarts < 0 {
		return fmt.Errorf("浏览器重启次数不能为负数")
	}
	return nil
}

// ResourceConfig 资源监控配置
type ResourceConfig struct {
	SafetyReserveMemory      int `mapstructure:"safety_reserve_memory" json:"safety_reserve_memory"`           // 安全保留内存(MB)
	EmergencyAvailableMemory int `mapstructure:"emergency_available_memory" json:"emergency_available_memory"` // 低于该可用内存(MB)时回收浏览器
}

// CrawlTask 遍历栈上的一个待处理项
// RemainingDepth 为0时该项被直接跳过
type CrawlTask struct {
	URL            string
	RemainingDepth int
}

// CrawlRun 一次针对单个种子URL的运行
type CrawlRun struct {
	ID          string     `json:"id"`                     // 运行唯一ID (UUID)
	SeedURL     string     `json:"seed_url"`               // 种子URL
	Domain      string     `json:"domain"`                 // 解析的域名
	CreatedAt   time.Time  `json:"created_at"`             // 创建时间
	StartedAt   *time.Time `json:"started_at,omitempty"`   // 开始时间
	CompletedAt *time.Time `json:"completed_at,omitempty"` // 完成时间

	Config CrawlConfig `json:"config"`
	Status RunStatus   `json:"status"`
	Stats  TaskStats   `json:"stats"`

	ErrorMessage string `json:"error_message,omitempty"`
}

// NewCrawlRun 创建新运行
func NewCrawlRun(seedURL string, config CrawlConfig) (*CrawlRun, error) {
	if err := ValidateURL(seedURL); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	parsed, _ := url.Parse(seedURL)

	return &CrawlRun{
		ID:        generateID(),
		SeedURL:   seedURL,
		Domain:    parsed.Host,
		CreatedAt: time.Now(),
		Config:    config,
		Status:    RunStatusPending,
	}, nil
}

// Start 标记开始
func (r *CrawlRun) Start() {
	now := time.Now()
	r.StartedAt = &now
	r.Status = RunStatusRunning
}

// Finish 标记结束,err非空时记为失败
func (r *CrawlRun) Finish(status RunStatus, err error) {
	now := time.Now()
	r.CompletedAt = &now
	r.Status = status
	if err != nil {
		r.ErrorMessage = err.Error()
	}
}

// ToJSON 序列化为JSON
func (r *CrawlRun) ToJSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}
