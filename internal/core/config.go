package core

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/RecoveryAshes/site2doc/internal/models"
	"github.com/RecoveryAshes/site2doc/internal/utils"
	"github.com/spf13/viper"
)

// Config 应用程序配置
type Config struct {
	Crawl    models.CrawlConfig    `mapstructure:"crawl"`
	Render   models.RenderConfig   `mapstructure:"render"`
	Resource models.ResourceConfig `mapstructure:"resource"`
	Logging  LoggingConfig         `mapstructure:"logging"`
	Output   OutputConfig          `mapstructure:"output"`
	Batch    BatchConfig           `mapstructure:"batch"`
}

// LoggingConfig 日志配置
type LoggingConfig struct {
	Level    string         `mapstructure:"level"`
	LogDir   string         `mapstructure:"log_dir"`
	NoColor  bool           `mapstructure:"no_color"`
	Rotation RotationConfig `mapstructure:"rotation"`
}

// RotationConfig 日志轮转配置
type RotationConfig struct {
	MaxSize    int  `mapstructure:"max_size"`
	MaxBackups int  `mapstructure:"max_backups"`
	MaxAge     int  `mapstructure:"max_age"`
	Compress   bool `mapstructure:"compress"`
}

// OutputConfig 输出配置
type OutputConfig struct {
	BaseDir          string `mapstructure:"base_dir"`
	DomainSeparation bool   `mapstructure:"domain_separation"`
}

// BatchConfig 批量模式配置
type BatchConfig struct {
	Delay           int  `mapstructure:"delay"`             // 种子之间的间隔(秒)
	ContinueOnError bool `mapstructure:"continue_on_error"` // 某个种子失败后继续
}

// LoadConfig 加载配置文件,文件不存在时使用默认值
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".site2doc"))
		}
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	if used := v.ConfigFileUsed(); used != "" {
		utils.Debugf("使用配置文件: %s", used)
	}
	return &config, nil
}

// setDefaults 设置默认配置值
func setDefaults(v *viper.Viper) {
	v.SetDefault("crawl.depth", 2)
	v.SetDefault("crawl.site_token", "")
	v.SetDefault("crawl.wait_time", 30)
	v.SetDefault("crawl.insecure_tls", false)
	v.SetDefault("crawl.naming", string(models.NamingSegment))
	v.SetDefault("crawl.marker_mode", string(models.MarkerDistinct))
	v.SetDefault("crawl.show_progress", true)

	v.SetDefault("render.headless", true)
	v.SetDefault("render.browser_bin", "")
	v.SetDefault("render.timeout", 60)
	v.SetDefault("render.settle_ms", 500)
	v.SetDefault("render.landscape", false)
	v.SetDefault("render.max_browser_restarts", 3)
	v.SetDefault("render.editable_enabled", false)
	v.SetDefault("render.soffice_bin", "soffice")

	v.SetDefault("resource.safety_reserve_memory", 0)
	v.SetDefault("resource.emergency_available_memory", 200)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.log_dir", "logs")
	v.SetDefault("logging.no_color", false)
	v.SetDefault("logging.rotation.max_size", 10)
	v.SetDefault("logging.rotation.max_backups", 3)
	v.SetDefault("logging.rotation.max_age", 28)
	v.SetDefault("logging.rotation.compress", true)

	v.SetDefault("output.base_dir", "output")
	v.SetDefault("output.domain_separation", true)

	v.SetDefault("batch.delay", 0)
	v.SetDefault("batch.continue_on_error", true)
}

// LogConfig 转换为 utils.LogConfig
func (c *Config) LogConfig() utils.LogConfig {
	return utils.LogConfig{
		Level:      c.Logging.Level,
		LogDir:     c.Logging.LogDir,
		MaxSize:    c.Logging.Rotation.MaxSize,
		MaxBackups: c.Logging.Rotation.MaxBackups,
		MaxAge:     c.Logging.Rotation.MaxAge,
		Compress:   c.Logging.Rotation.Compress,
		NoColor:    c.Logging.NoColor,
	}
}

// Validate 验证全部配置
func (c *Config) Validate() error {
	if err := c.Crawl.Validate(); err != nil {
		return fmt.Errorf("crawl配置无效: %w", err)
	}
	if err := c.Render.Validate(); err != nil {
		return fmt.Errorf("render配置无效: %w", err)
	}
	if c.Output.BaseDir == "" {
		return fmt.Errorf("output.base_dir 不能为空")
	}
	if c.Batch.Delay < 0 {
		return fmt.Errorf("batch.delay 不能为负数")
	}
	return nil
}

// CLIOverrides 命令行中显式设置的参数,nil表示未设置
type CLIOverrides struct {
	Depth           *int
	SiteToken       *string
	OutputDir       *string
	Naming          *string
	MarkerMode      *string
	Editable        *bool
	Headless        *bool
	LogLevel        *string
	BatchDelay      *int
	ContinueOnError *bool
}

// MergeCLIFlags 命令行参数优先于配置文件
func (c *Config) MergeCLIFlags(o CLIOverrides) {
	if o.Depth != nil {
		c.Crawl.Depth = *o.Depth
	}
	if o.SiteToken != nil {
		c.Crawl.SiteToken = *o.SiteToken
	}
	if o.OutputDir != nil {
		c.Output.BaseDir = *o.OutputDir
	}
	if o.Naming != nil {
		c.Crawl.Naming = models.NamingPolicy(*o.Naming)
	}
	if o.MarkerMode != nil {
		c.Crawl.MarkerMode = models.MarkerMode(*o.MarkerMode)
	}
	if o.Editable != nil {
		c.Render.EditableEnabled = *o.Editable
	}
	if o.Headless != nil {
		c.Render.Headless = *o.Headless
	}
	if o.LogLevel != nil {
		c.Logging.Level = *o.LogLevel
	}
	if o.BatchDelay != nil {
		c.Batch.Delay = *o.BatchDelay
	}
	if o.ContinueOnError != nil {
		c.Batch.ContinueOnError = *o.ContinueOnError
	}
}
