package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/RecoveryAshes/site2doc/internal/core"
	"github.com/RecoveryAshes/site2doc/internal/utils"
	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

// 命令行参数
var (
	// 全局参数
	configFile string
	verbose    bool
	logLevel   string

	// HTTP头部参数
	headers        []string // 自定义HTTP请求头
	headersFile    string   // 头部配置文件
	validateConfig bool     // 验证配置文件

	// 爬取参数
	targetURL  string
	urlFile    string
	depth      int
	siteToken  string
	naming     string
	markerMode string
	docx       bool
	headless   bool
	outputDir  string

	// 批量处理参数
	batchDelay      int
	continueOnError bool
)

// appConfig 在 PersistentPreRunE 中加载
var appConfig *core.Config

var rootCmd = &cobra.Command{
	Use:   "site2doc",
	Short: "站点爬取并转换为PDF文档",
	Long: `site2doc - 从种子URL出发深度优先爬取站内页面,并把每个页面渲染为PDF

  • 按站点标识过滤站内链接
  • 同一次运行中每个URL只处理一次
  • 已生成的PDF在再次运行时跳过
  • 可选通过 LibreOffice 生成 DOCX
  • 批量URL处理
  • 自定义HTTP请求头

示例:
  # 交互模式,依次输入URL和深度
  site2doc

  # 指定URL和深度
  site2doc -u https://www.howard.edu -d 2

  # 从文件批量处理
  site2doc -f urls.txt -d 1 --batch-delay 5

  # 验证头部配置
  site2doc --validate-config

版本: ` + Version + `
构建时间: ` + BuildTime,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config, err := core.LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("加载配置失败: %w", err)
		}
		config.MergeCLIFlags(collectOverrides(cmd))
		if verbose && !cmd.Flags().Changed("log-level") {
			config.Logging.Level = "debug"
		}

		if err := utils.InitLogger(config.LogConfig()); err != nil {
			return fmt.Errorf("初始化日志系统失败: %w", err)
		}
		if verbose {
			utils.Info("详细模式已启用")
		}

		appConfig = config
		return nil
	},
	RunE: runRoot,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "显示版本信息",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("site2doc %s\n", Version)
		fmt.Printf("构建时间: %s\n", BuildTime)
	},
}

// collectOverrides 只收集命令行中显式设置的参数
func collectOverrides(cmd *cobra.Command) core.CLIOverrides {
	var o core.CLIOverrides
	flags := cmd.Flags()
	if flags.Changed("depth") {
		o.Depth = &depth
	}
	if flags.Changed("site") {
		o.SiteToken = &siteToken
	}
	if flags.Changed("output") {
		o.OutputDir = &outputDir
	}
	if flags.Changed("naming") {
		o.Naming = &naming
	}
	if flags.Changed("marker") {
		o.MarkerMode = &markerMode
	}
	if flags.Changed("docx") {
		o.Editable = &docx
	}
	if flags.Changed("headless") {
		o.Headless = &headless
	}
	if flags.Changed("log-level") {
		o.LogLevel = &logLevel
	}
	if flags.Changed("batch-delay") {
		o.BatchDelay = &batchDelay
	}
	if flags.Changed("continue-on-error") {
		o.ContinueOnError = &continueOnError
	}
	return o
}

func runRoot(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	headerManager, err := core.NewHeaderManager(headersFile, headers)
	if err != nil {
		return fmt.Errorf("创建HTTP头部管理器失败: %w", err)
	}

	if validateConfig {
		return runValidateConfig(headerManager)
	}

	if urlFile != "" {
		if err := appConfig.Validate(); err != nil {
			return err
		}
		urls, err := utils.ReadURLsFromFile(urlFile)
		if err != nil {
			return fmt.Errorf("读取URL文件失败: %w", err)
		}

		summary := core.NewBatchCrawler(appConfig, headerManager).CrawlBatch(ctx, urls)
		if summary.SuccessCount == 0 && summary.FailCount > 0 {
			return fmt.Errorf("批量爬取失败: %d 个URL全部失败", summary.FailCount)
		}
		utils.Info("✨ 批量爬取任务完成!")
		return nil
	}

	prompter := NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
	if targetURL == "" {
		if targetURL, err = prompter.PromptURL(); err != nil {
			return err
		}
	}
	if !cmd.Flags().Changed("depth") {
		if appConfig.Crawl.Depth, err = prompter.PromptDepth(); err != nil {
			return err
		}
	}

	normalized, err := NormalizeURL(targetURL)
	if err != nil {
		return fmt.Errorf("无效的目标URL: %w", err)
	}
	if err := ValidateFlags(normalized, appConfig); err != nil {
		return err
	}

	crawler, err := core.NewCrawler(normalized, appConfig, appConfig.Output.BaseDir, headerManager)
	if err != nil {
		return fmt.Errorf("创建爬取器失败: %w", err)
	}
	if err := crawler.Crawl(ctx); err != nil {
		return fmt.Errorf("爬取失败: %w", err)
	}

	stats := crawler.GetStats()
	fmt.Println("==================================================")
	fmt.Println("📊 爬取统计")
	fmt.Println("==================================================")
	fmt.Printf("✅ 访问URL数: %d\n", stats.VisitedURLs)
	fmt.Printf("🔗 提取链接数: %d\n", stats.ExtractedLinks)
	fmt.Printf("📄 新增PDF: %d\n", stats.RenderedPDFs)
	fmt.Printf("⏭️  已存在跳过: %d\n", stats.SkippedExisting)
	if appConfig.Render.EditableEnabled {
		fmt.Printf("📝 DOCX文档: %d\n", stats.EditableDocs)
	}
	fmt.Printf("❌ 失败页面: %d\n", stats.FailedPages)
	fmt.Printf("⏱️  总耗时: %.2f秒\n", stats.Duration)
	fmt.Printf("📁 输出目录: %s\n", crawler.GetOutputDir())
	fmt.Println("==================================================")

	utils.Info("✨ 爬取任务完成!")
	return nil
}

func init() {
	// 全局参数
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "配置文件路径")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "详细输出模式")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "日志级别 (trace|debug|info|warn|error)")

	// HTTP头部参数
	rootCmd.PersistentFlags().StringSliceVarP(&headers, "header", "H", []string{}, "自定义HTTP头部,格式: 'Name: Value',可多次指定")
	rootCmd.PersistentFlags().StringVar(&headersFile, "headers-file", "", "HTTP头部配置文件 (默认 configs/headers.yaml)")
	rootCmd.PersistentFlags().BoolVar(&validateConfig, "validate-config", false, "验证配置文件正确性")

	// 爬取参数
	rootCmd.Flags().StringVarP(&targetURL, "url", "u", "", "种子URL (未指定时交互输入)")
	rootCmd.Flags().StringVarP(&urlFile, "url-file", "f", "", "包含URL列表的文件路径")
	rootCmd.Flags().IntVarP(&depth, "depth", "d", 2, "爬取深度 (未指定时交互输入)")
	rootCmd.Flags().StringVar(&siteToken, "site", "", "站点标识,链接包含它即视为站内 (默认取种子的注册域名)")
	rootCmd.Flags().StringVar(&naming, "naming", "segment", "文件命名策略 (segment|hashed)")
	rootCmd.Flags().StringVar(&markerMode, "marker", "distinct", "产物标记模式 (distinct|legacy)")
	rootCmd.Flags().BoolVar(&docx, "docx", false, "同时生成DOCX (需要LibreOffice)")
	rootCmd.Flags().BoolVar(&headless, "headless", true, "无头浏览器模式")
	rootCmd.Flags().StringVarP(&outputDir, "output", "o", "output", "输出目录")

	// 批量处理参数
	rootCmd.Flags().IntVar(&batchDelay, "batch-delay", 0, "批量处理URL间延迟(秒)")
	rootCmd.Flags().BoolVar(&continueOnError, "continue-on-error", true, "遇到错误继续处理")

	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}
