package models

import (
	"errors"
	"testing"
)

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"有效的HTTP URL", "http://example.com", false},
		{"有效的HTTPS URL", "https://example.com", false},
		{"带路径的URL", "https://example.com/path/to/resource", false},
		{"无效的协议", "ftp://example.com", true},
		{"无效的URL", "not a url", true},
		{"空URL", "", true},
		{"无协议", "example.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func validCrawlConfig() CrawlConfig {
	return CrawlConfig{
		Depth:      2,
		WaitTime:   30,
		Naming:     NamingSegment,
		MarkerMode: MarkerDistinct,
	}
}

func TestCrawlConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *CrawlConfig)
		wantErr bool
	}{
		{"有效配置", func(c *CrawlConfig) {}, false},
		{"深度为0合法", func(c *CrawlConfig) { c.Depth = 0 }, false},
		{"深度无上限", func(c *CrawlConfig) { c.Depth = 50 }, false},
		{"负数深度", func(c *CrawlConfig) { c.Depth = -1 }, true},
		{"等待时间过大", func(c *CrawlConfig) { c.WaitTime = 601 }, true},
		{"未知命名策略", func(c *CrawlConfig) { c.Naming = "random" }, true},
		{"未知标记模式", func(c *CrawlConfig) { c.MarkerMode = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validCrawlConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRenderConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  RenderConfig
		wantErr bool
	}{
		{"有效配置", RenderConfig{Timeout: 60, SettleMillis: 500, MaxBrowserRestarts: 3}, false},
		{"超时为0", RenderConfig{Timeout: 0}, true},
		{"负数等待", RenderConfig{Timeout: 60, SettleMillis: -1}, true},
		{"负数重启次数", RenderConfig{Timeout: 60, MaxBrowserRestarts: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewCrawlRun(t *testing.T) {
	run, err := NewCrawlRun("https://www.howard.edu/about", validCrawlConfig())
	if err != nil {
		t.Fatalf("NewCrawlRun() error = %v", err)
	}

	if run.ID == "" {
		t.Error("运行ID不应为空")
	}
	if run.Domain != "www.howard.edu" {
		t.Errorf("Domain = %v, want %v", run.Domain, "www.howard.edu")
	}
	if run.Status != RunStatusPending {
		t.Errorf("Status = %v, want %v", run.Status, RunStatusPending)
	}

	run.Start()
	if run.StartedAt == nil || run.Status != RunStatusRunning {
		t.Errorf("Start() 后状态错误: %v", run.Status)
	}

	run.Finish(RunStatusFailed, errors.New("boom"))
	if run.CompletedAt == nil || run.ErrorMessage != "boom" {
		t.Errorf("Finish() 未记录错误: %+v", run)
	}

	if _, err := NewCrawlRun("ftp://example.com", validCrawlConfig()); err == nil {
		t.Error("非HTTP协议应该返回错误")
	}
}

func TestTaskStats_Add(t *testing.T) {
	total := TaskStats{VisitedURLs: 1, RenderedPDFs: 1}
	total.Add(TaskStats{VisitedURLs: 2, FailedPages: 1, SkippedExisting: 3, Duration: 1.5})

	if total.VisitedURLs != 3 || total.FailedPages != 1 || total.SkippedExisting != 3 || total.RenderedPDFs != 1 {
		t.Errorf("累加结果错误: %+v", total)
	}
	if total.Duration != 1.5 {
		t.Errorf("Duration = %v, want 1.5", total.Duration)
	}
}

func TestDomainDirName(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://howard.edu/x", "howard.edu"},
		{"http://127.0.0.1:8080/", "127.0.0.1_8080"},
		{"::bad", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			if got := DomainDirName(tt.url); got != tt.want {
				t.Errorf("DomainDirName(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestFetchedPage_IsHTML(t *testing.T) {
	tests := []struct {
		contentType string
		want        bool
	}{
		{"text/html; charset=utf-8", true},
		{"application/xhtml+xml", true},
		{"", true},
		{"application/pdf", false},
		{"image/png", false},
	}

	for _, tt := range tests {
		page := &FetchedPage{ContentType: tt.contentType}
		if got := page.IsHTML(); got != tt.want {
			t.Errorf("IsHTML(%q) = %v, want %v", tt.contentType, got, tt.want)
		}
	}
}

func TestCliHeaders_Parse(t *testing.T) {
	tests := []struct {
		name    string
		input   CliHeaders
		want    map[string]string
		wantErr bool
	}{
		{"单个头部", CliHeaders{"X-Test: a"}, map[string]string{"X-Test": "a"}, false},
		{"值中包含冒号", CliHeaders{"Referer: https://howard.edu/"}, map[string]string{"Referer": "https://howard.edu/"}, false},
		{"缺少冒号", CliHeaders{"Invalid"}, nil, true},
		{"名称为空", CliHeaders{": value"}, nil, true},
		{"nil输入", nil, map[string]string{}, false},
		{"名称和值前后空格", CliHeaders{"  User-Agent  :  Bot/1.0  "}, map[string]string{"User-Agent": "Bot/1.0"}, false},
		{"空值", CliHeaders{"X-Empty:"}, map[string]string{"X-Empty": ""}, false},
		{"多个冒号按第一个分割", CliHeaders{"Authorization: Bearer: token"}, map[string]string{"Authorization": "Bearer: token"}, false},
		{"同名以后出现的为准", CliHeaders{"X-A: 1", "x-a: 2"}, map[string]string{"X-A": "2"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.input.Parse()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse() error = %v, wantErr %v", err, tt.wantErr)
			}
			for k, v := range tt.want {
				if got.Get(k) != v {
					t.Errorf("%s = %q, want %q", k, got.Get(k), v)
				}
			}
		})
	}
}

func TestConfigError_Unwrap(t *testing.T) {
	cause := errors.New("yaml: line 3")
	err := &ConfigError{FilePath: "configs/headers.yaml", Cause: cause}

	if !errors.Is(err, cause) {
		t.Error("ConfigError 应该可以展开到底层错误")
	}
}
