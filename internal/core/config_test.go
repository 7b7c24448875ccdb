package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/RecoveryAshes/site2doc/internal/models"
)

func TestLoadConfig_Defaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("crawl:\n  depth: 4\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	tests := []struct {
		name string
		got  interface{}
		want interface{}
	}{
		{"配置文件覆盖深度", cfg.Crawl.Depth, 4},
		{"默认等待时间", cfg.Crawl.WaitTime, 30},
		{"默认命名策略", cfg.Crawl.Naming, models.NamingSegment},
		{"默认标记模式", cfg.Crawl.MarkerMode, models.MarkerDistinct},
		{"默认渲染超时", cfg.Render.Timeout, 60},
		{"默认关闭DOCX", cfg.Render.EditableEnabled, false},
		{"默认紧急内存", cfg.Resource.EmergencyAvailableMemory, 200},
		{"默认输出目录", cfg.Output.BaseDir, "output"},
		{"默认批量继续", cfg.Batch.ContinueOnError, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("默认配置应有效: %v", err)
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("crawl: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("无效YAML应返回错误")
	}
}

func TestConfig_MergeCLIFlags(t *testing.T) {
	cfg := &Config{}
	cfg.Crawl.Depth = 2
	cfg.Output.BaseDir = "output"

	depth := 5
	naming := "hashed"
	editable := true
	cfg.MergeCLIFlags(CLIOverrides{Depth: &depth, Naming: &naming, Editable: &editable})

	if cfg.Crawl.Depth != 5 {
		t.Errorf("Depth = %d", cfg.Crawl.Depth)
	}
	if cfg.Crawl.Naming != models.NamingHashed {
		t.Errorf("Naming = %s", cfg.Crawl.Naming)
	}
	if !cfg.Render.EditableEnabled {
		t.Error("EditableEnabled 应被打开")
	}
	if cfg.Output.BaseDir != "output" {
		t.Error("未设置的参数不应覆盖配置")
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Crawl:  models.CrawlConfig{Depth: 1, WaitTime: 30, Naming: models.NamingSegment, MarkerMode: models.MarkerDistinct},
			Render: models.RenderConfig{Timeout: 60},
			Output: OutputConfig{BaseDir: "output"},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"负深度", func(c *Config) { c.Crawl.Depth = -1 }},
		{"未知命名策略", func(c *Config) { c.Crawl.Naming = "random" }},
		{"未知标记模式", func(c *Config) { c.Crawl.MarkerMode = "none" }},
		{"空输出目录", func(c *Config) { c.Output.BaseDir = "" }},
		{"负批量间隔", func(c *Config) { c.Batch.Delay = -1 }},
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("基准配置应有效: %v", err)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("期望返回错误")
			}
		})
	}
}
