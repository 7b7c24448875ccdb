package utils

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/RecoveryAshes/site2doc/internal/models"
	"github.com/schollz/progressbar/v3"
)

const (
	CrawlReportFile  = "crawl_report.json"
	ArtifactsFile    = "artifacts.json"
	FailedPagesFile  = "failed_pages.json"
	reportsDirectory = "reports"
)

// Reporter 报告生成器
type Reporter struct {
	domainDir string
}

// NewReporter domainDir 为 <输出目录>/<域名>
func NewReporter(domainDir string) *Reporter {
	return &Reporter{domainDir: domainDir}
}

// ReportsDir 报告目录
func (r *Reporter) ReportsDir() string {
	return filepath.Join(r.domainDir, reportsDirectory)
}

// GenerateReport 写入 crawl_report.json、artifacts.json 和 failed_pages.json
func (r *Reporter) GenerateReport(
	run *models.CrawlRun,
	stats models.TaskStats,
	artifacts []models.ArtifactInfo,
	failed []models.FailedPageInfo,
	pdfDir, stagingDir string,
) error {
	reportsDir := r.ReportsDir()
	if err := os.MkdirAll(reportsDir, 0755); err != nil {
		return fmt.Errorf("创建报告目录失败: %w", err)
	}

	if artifacts == nil {
		artifacts = []models.ArtifactInfo{}
	}
	if failed == nil {
		failed = []models.FailedPageInfo{}
	}

	start := run.CreatedAt
	if run.StartedAt != nil {
		start = *run.StartedAt
	}
	end := time.Now()
	if run.CompletedAt != nil {
		end = *run.CompletedAt
	}

	crawlReport := models.CrawlReport{
		RunID:       run.ID,
		SeedURL:     run.SeedURL,
		Domain:      run.Domain,
		Depth:       run.Config.Depth,
		StartTime:   start,
		EndTime:     end,
		Duration:    stats.Duration,
		Stats:       stats,
		Artifacts:   artifacts,
		FailedPages: failed,
		OutputDir:   r.domainDir,
		PDFDir:      pdfDir,
		StagingDir:  stagingDir,
		Config:      run.Config,
	}

	if err := r.saveJSONReport(reportsDir, CrawlReportFile, crawlReport); err != nil {
		return err
	}
	if err := r.saveJSONReport(reportsDir, ArtifactsFile, artifacts); err != nil {
		return err
	}
	if err := r.saveJSONReport(reportsDir, FailedPagesFile, failed); err != nil {
		return err
	}

	Infof("✅ 报告已生成: %s", reportsDir)
	return nil
}

func (r *Reporter) saveJSONReport(dir string, filename string, data interface{}) error {
	path := filepath.Join(dir, filename)

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化JSON失败: %w", err)
	}

	if err := os.WriteFile(path, jsonData, 0644); err != nil {
		return fmt.Errorf("写入报告文件失败: %w", err)
	}

	Debugf("保存报告: %s", path)
	return nil
}

// NewProgressBar 创建进度条,max为-1时显示为计数器
func NewProgressBar(max int, description string) *progressbar.ProgressBar {
	return NewProgressBarTo(os.Stderr, max, description)
}

// NewProgressBarTo 输出到指定writer的进度条
func NewProgressBarTo(w io.Writer, max int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(max,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("页"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionOnCompletion(func() { fmt.Fprintln(w) }),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}
