package core

import (
	"context"
	"fmt"
	"time"

	"github.com/RecoveryAshes/site2doc/internal/models"
	"github.com/RecoveryAshes/site2doc/internal/utils"
)

// SeedCrawler 单个种子的爬取
type SeedCrawler interface {
	Crawl(ctx context.Context) error
	GetStats() models.TaskStats
}

// CrawlerFactory 为每个种子创建独立的爬取器
type CrawlerFactory func(targetURL string) (SeedCrawler, error)

// BatchCrawler 批量爬取器
type BatchCrawler struct {
	factory       CrawlerFactory
	batchDelay    time.Duration
	continueOnErr bool
}

// BatchResult 批量爬取结果
type BatchResult struct {
	URL         string
	Success     bool
	Error       error
	Stats       models.TaskStats
	ProcessedAt time.Time
	Duration    float64
}

// BatchSummary 批量爬取摘要
type BatchSummary struct {
	TotalURLs     int
	SuccessCount  int
	FailCount     int
	Stats         models.TaskStats
	TotalDuration float64
	Results       []BatchResult
}

// NewBatchCrawler 每个种子使用 NewCrawler 创建爬取器
func NewBatchCrawler(config *Config, headerProvider models.HeaderProvider) *BatchCrawler {
	factory := func(targetURL string) (SeedCrawler, error) {
		crawler, err := NewCrawler(targetURL, config, config.Output.BaseDir, headerProvider)
		if err != nil {
			return nil, err
		}
		return crawler, nil
	}
	return NewBatchCrawlerWithFactory(factory, config.Batch.Delay, config.Batch.ContinueOnError)
}

// NewBatchCrawlerWithFactory batchDelay 单位为秒
func NewBatchCrawlerWithFactory(factory CrawlerFactory, batchDelay int, continueOnErr bool) *BatchCrawler {
	return &BatchCrawler{
		factory:       factory,
		batchDelay:    time.Duration(batchDelay) * time.Second,
		continueOnErr: continueOnErr,
	}
}

// CrawlBatch 依次爬取URL列表,每个种子拥有独立的访问集合
func (bc *BatchCrawler) CrawlBatch(ctx context.Context, urls []string) *BatchSummary {
	utils.Infof("🚀 开始批量爬取: %d个URL", len(urls))

	summary := &BatchSummary{
		TotalURLs: len(urls),
		Results:   make([]BatchResult, 0, len(urls)),
	}
	startTime := time.Now()

	for i, targetURL := range urls {
		if ctx.Err() != nil {
			utils.Warn("批量爬取已中断")
			break
		}

		utils.Infof("==================== [%d/%d] ====================", i+1, len(urls))
		utils.Infof("目标URL: %s", targetURL)

		result := bc.crawlSingleURL(ctx, targetURL)
		summary.Results = append(summary.Results, result)

		if result.Success {
			summary.SuccessCount++
			summary.Stats.Add(result.Stats)
		} else {
			summary.FailCount++
			utils.Errorf("❌ 爬取失败: %v", result.Error)

			if !bc.continueOnErr {
				utils.Warn("批量爬取中止 (--continue-on-error=false)")
				break
			}
		}

		if i < len(urls)-1 && bc.batchDelay > 0 {
			utils.Debugf("等待 %.0f 秒后处理下一个URL...", bc.batchDelay.Seconds())
			select {
			case <-ctx.Done():
			case <-time.After(bc.batchDelay):
			}
		}
	}

	summary.TotalDuration = time.Since(startTime).Seconds()
	bc.printSummary(summary)
	return summary
}

func (bc *BatchCrawler) crawlSingleURL(ctx context.Context, targetURL string) (result BatchResult) {
	result = BatchResult{
		URL:         targetURL,
		ProcessedAt: time.Now(),
	}
	startTime := time.Now()
	defer func() { result.Duration = time.Since(startTime).Seconds() }()

	crawler, err := bc.factory(targetURL)
	if err != nil {
		result.Error = fmt.Errorf("创建爬取器失败: %w", err)
		return result
	}

	if err := crawler.Crawl(ctx); err != nil {
		result.Error = fmt.Errorf("爬取失败: %w", err)
		return result
	}

	result.Success = true
	result.Stats = crawler.GetStats()
	return result
}

func (bc *BatchCrawler) printSummary(summary *BatchSummary) {
	utils.Info("==================================================")
	utils.Info("📊 批量爬取摘要")
	utils.Info("==================================================")
	utils.Infof("总URL数: %d", summary.TotalURLs)
	utils.Infof("✅ 成功: %d", summary.SuccessCount)
	utils.Infof("❌ 失败: %d", summary.FailCount)
	utils.Infof("📄 新增PDF: %d, 跳过: %d, 失败页面: %d",
		summary.Stats.RenderedPDFs, summary.Stats.SkippedExisting, summary.Stats.FailedPages)
	utils.Infof("⏱️  总耗时: %.2f秒", summary.TotalDuration)
	utils.Info("==================================================")

	if summary.FailCount > 0 {
		utils.Warn("失败的URL:")
		for _, result := range summary.Results {
			if !result.Success {
				utils.Warnf("  - %s: %v", result.URL, result.Error)
			}
		}
	}
}
