package core

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/RecoveryAshes/site2doc/internal/crawlers"
	"github.com/RecoveryAshes/site2doc/internal/models"
	"github.com/RecoveryAshes/site2doc/internal/utils"
)

const (
	pdfDirName     = "pdf"
	stagingDirName = "staging"
)

// Components 遍历使用的协作者,nil字段在 Crawl 时按配置创建
type Components struct {
	Links    LinkSource
	Pages    PageSource
	Renderer Renderer
	Editable EditableConverter
}

// Crawler 单个种子URL的爬取协调器
type Crawler struct {
	config         *Config
	targetURL      string
	domain         string
	outputDir      string
	headerProvider models.HeaderProvider

	components Components

	mu        sync.RWMutex
	stats     models.TaskStats
	artifacts []models.ArtifactInfo
	failed    []models.FailedPageInfo
}

// NewCrawler 创建爬取器
func NewCrawler(targetURL string, config *Config, outputDir string, headerProvider models.HeaderProvider) (*Crawler, error) {
	if err := models.ValidateURL(targetURL); err != nil {
		return nil, err
	}
	if config == nil {
		return nil, fmt.Errorf("配置不能为空")
	}
	if outputDir == "" {
		outputDir = config.Output.BaseDir
	}

	return &Crawler{
		config:         config,
		targetURL:      targetURL,
		domain:         models.DomainDirName(targetURL),
		outputDir:      outputDir,
		headerProvider: headerProvider,
	}, nil
}

// WithComponents 替换默认协作者
func (c *Crawler) WithComponents(components Components) *Crawler {
	c.components = components
	return c
}

// Crawl 执行爬取任务
// 执行流程:
//  1. 创建输出目录结构
//  2. 创建获取器、链接提取器、渲染器和物化器
//  3. 深度优先遍历
//  4. 关闭浏览器
//  5. 生成爬取报告
func (c *Crawler) Crawl(ctx context.Context) error {
	run, err := models.NewCrawlRun(c.targetURL, c.config.Crawl)
	if err != nil {
		return fmt.Errorf("创建爬取任务失败: %w", err)
	}

	domainDir := c.GetOutputDir()
	pdfDir := filepath.Join(domainDir, pdfDirName)
	stagingDir := filepath.Join(domainDir, stagingDirName)
	reporter := utils.NewReporter(domainDir)

	utils.Infof("🚀 开始爬取任务")
	utils.Infof("目标URL: %s", c.targetURL)
	utils.Infof("爬取深度: %d", c.config.Crawl.Depth)
	utils.Infof("输出目录: %s", domainDir)

	if err := utils.EnsureDirs(pdfDir, stagingDir, reporter.ReportsDir()); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}

	components := c.buildComponents()
	defer closeRenderer(components.Renderer)

	siteToken := c.siteToken(components.Links)
	utils.Infof("站点标识: %q", siteToken)

	materializer := NewMaterializer(stagingDir, pdfDir, c.config.Crawl.MarkerMode, components.Renderer, components.Editable)
	traversal := NewTraversal(components.Links, components.Pages, materializer, c.config.Crawl.Naming).
		WithProgress(c.config.Crawl.ShowProgress)

	run.Start()
	stats := traversal.Crawl(ctx, c.targetURL, c.config.Crawl.Depth, crawlers.NewVisitedSet())

	status := models.RunStatusCompleted
	if ctx.Err() != nil {
		status = models.RunStatusCancelled
	}
	run.Stats = stats
	run.Finish(status, ctx.Err())

	c.mu.Lock()
	c.stats = stats
	c.artifacts = traversal.Artifacts()
	c.failed = traversal.FailedPages()
	c.mu.Unlock()

	if err := reporter.GenerateReport(run, stats, c.artifacts, c.failed, pdfDir, stagingDir); err != nil {
		utils.Warnf("生成报告失败: %v", err)
	}

	utils.Infof("✅ 爬取任务完成 (%s)", status)
	utils.Infof("访问页面: %d, 新增PDF: %d, 跳过: %d, 失败: %d",
		stats.VisitedURLs, stats.RenderedPDFs, stats.SkippedExisting, stats.FailedPages)
	utils.Infof("总耗时: %.2f秒", stats.Duration)
	return nil
}

func (c *Crawler) buildComponents() Components {
	comp := c.components

	if comp.Pages == nil || comp.Links == nil {
		fetcher := crawlers.NewStaticFetcher(c.config.Crawl, c.headerProvider)
		if comp.Pages == nil {
			comp.Pages = fetcher
		}
		if comp.Links == nil {
			token := c.config.Crawl.SiteToken
			if token == "" {
				token = crawlers.DeriveSiteToken(c.targetURL)
			}
			comp.Links = crawlers.NewLinkExtractor(fetcher, token)
		}
	}

	if comp.Renderer == nil {
		monitor := crawlers.NewResourceMonitor(c.config.Resource)
		comp.Renderer = crawlers.NewChromeRenderer(c.config.Render, monitor)
	}

	if comp.Editable == nil && c.config.Render.EditableEnabled {
		timeout := 2 * time.Duration(c.config.Render.Timeout) * time.Second
		converter := NewSofficeConverter(c.config.Render.SofficeBin, timeout)
		if converter.Available() {
			comp.Editable = converter
		}
	}

	return comp
}

func (c *Crawler) siteToken(links LinkSource) string {
	if e, ok := links.(interface{ SiteToken() string }); ok {
		return e.SiteToken()
	}
	return c.config.Crawl.SiteToken
}

func closeRenderer(r Renderer) {
	closer, ok := r.(io.Closer)
	if !ok {
		return
	}
	if err := closer.Close(); err != nil {
		utils.Warnf("关闭浏览器失败: %v", err)
	}
}

// GetStats 获取统计信息
func (c *Crawler) GetStats() models.TaskStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats
}

// GetArtifacts 本次处理过的页面
func (c *Crawler) GetArtifacts() []models.ArtifactInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.artifacts
}

// GetOutputDir 获取域名输出目录
func (c *Crawler) GetOutputDir() string {
	if !c.config.Output.DomainSeparation {
		return c.outputDir
	}
	return filepath.Join(c.outputDir, c.domain)
}
