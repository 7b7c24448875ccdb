package core

import (
	"context"
	"time"

	"github.com/RecoveryAshes/site2doc/internal/crawlers"
	"github.com/RecoveryAshes/site2doc/internal/models"
	"github.com/RecoveryAshes/site2doc/internal/utils"
	"github.com/schollz/progressbar/v3"
)

// LinkSource 提取页面中的站内链接
type LinkSource interface {
	Extract(ctx context.Context, pageURL string) models.LinkSet
}

// PageSource 获取页面内容
type PageSource interface {
	Fetch(ctx context.Context, pageURL string) (*models.FetchedPage, error)
}

// PageMaterializer 把页面内容转换为产物
type PageMaterializer interface {
	Materialize(ctx context.Context, pageURL, html, stagingName string) MaterializeResult
}

// Traversal 深度优先遍历驱动
type Traversal struct {
	links        LinkSource
	pages        PageSource
	materializer PageMaterializer
	naming       models.NamingPolicy
	showProgress bool

	artifacts []models.ArtifactInfo
	failed    []models.FailedPageInfo
}

// NewTraversal naming 为空时使用 segment 命名
func NewTraversal(links LinkSource, pages PageSource, materializer PageMaterializer, naming models.NamingPolicy) *Traversal {
	if naming == "" {
		naming = models.NamingSegment
	}
	return &Traversal{
		links:        links,
		pages:        pages,
		materializer: materializer,
		naming:       naming,
	}
}

// WithProgress 启用进度条
func (t *Traversal) WithProgress(show bool) *Traversal {
	t.showProgress = show
	return t
}

// Crawl 从种子开始先序遍历,visited 由调用方持有,同一URL最多处理一次
//
// maxDepth 为0时不访问任何页面,为1时只处理种子。
// 遍历使用显式栈,子链接按提取顺序出栈。
func (t *Traversal) Crawl(ctx context.Context, seed string, maxDepth int, visited *crawlers.VisitedSet) models.TaskStats {
	startTime := time.Now()
	var stats models.TaskStats

	var bar *progressbar.ProgressBar
	if t.showProgress {
		bar = utils.NewProgressBar(-1, "📄 处理页面")
		defer bar.Finish()
	}

	stack := crawlers.NewTaskStack(models.CrawlTask{URL: seed, RemainingDepth: maxDepth})
	for {
		if err := ctx.Err(); err != nil {
			utils.Warnf("⚠️  遍历已中断: %v (栈中剩余 %d 个任务)", err, stack.Len())
			break
		}

		task, ok := stack.Pop()
		if !ok {
			break
		}
		if task.RemainingDepth <= 0 || !visited.VisitIfNew(task.URL) {
			continue
		}
		stats.VisitedURLs++

		links := t.links.Extract(ctx, task.URL)
		stats.ExtractedLinks += len(links)
		utils.Debugf("[深度剩余 %d] %s: 提取到 %d 个链接", task.RemainingDepth, task.URL, len(links))

		t.processPage(ctx, task.URL, &stats)
		if bar != nil {
			_ = bar.Add(1)
		}

		if next := task.RemainingDepth - 1; next > 0 {
			stack.PushChildren(links, next)
		}
	}

	stats.Duration = time.Since(startTime).Seconds()
	return stats
}

func (t *Traversal) processPage(ctx context.Context, pageURL string, stats *models.TaskStats) {
	page, err := t.pages.Fetch(ctx, pageURL)
	if err != nil {
		utils.Errorf("❌ 获取页面失败 [%s]: %v", pageURL, err)
		stats.FailedPages++
		t.recordFailure(pageURL, "fetch", err)
		return
	}

	stagingName := models.StagingName(pageURL, t.naming)
	result := t.materializer.Materialize(ctx, pageURL, page.Text(), stagingName)

	switch result.State {
	case models.ArtifactSkipped:
		stats.SkippedExisting++
	case models.ArtifactPDFProduced:
		stats.RenderedPDFs++
		if result.EditablePath != "" {
			stats.EditableDocs++
		}
	case models.ArtifactFailed:
		stats.FailedPages++
		t.recordFailure(pageURL, result.Stage, result.Err)
	}

	t.artifacts = append(t.artifacts, models.ArtifactInfo{
		URL:         pageURL,
		State:       result.State,
		PDFPath:     result.Paths.PDF,
		Editable:    result.EditablePath,
		ProcessedAt: time.Now(),
	})
}

func (t *Traversal) recordFailure(pageURL, stage string, err error) {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	t.failed = append(t.failed, models.FailedPageInfo{
		URL:       pageURL,
		Stage:     stage,
		ErrorMsg:  msg,
		Timestamp: time.Now().Unix(),
	})
}

// Artifacts 本次遍历处理过的页面
func (t *Traversal) Artifacts() []models.ArtifactInfo {
	return t.artifacts
}

// FailedPages 本次遍历失败的页面
func (t *Traversal) FailedPages() []models.FailedPageInfo {
	return t.failed
}
