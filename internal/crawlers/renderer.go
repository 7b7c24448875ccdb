package crawlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/RecoveryAshes/site2doc/internal/models"
	"github.com/RecoveryAshes/site2doc/internal/utils"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// ErrBrowserCrashed 浏览器崩溃错误,下一次渲染前会重启浏览器
var ErrBrowserCrashed = errors.New("浏览器崩溃")

// ErrMaxRestartsReached 浏览器重启次数已用完
var ErrMaxRestartsReached = errors.New("浏览器重启次数已达上限")

const (
	partSuffix         = ".part"
	defaultRenderLimit = 60 * time.Second
)

// ChromeRenderer 使用无头Chrome把本地HTML文件打印为PDF
//
// 浏览器在第一次渲染时启动,之后所有页面复用同一个进程。
// 渲染串行执行,每页打开一个新标签页,结束后关闭。
type ChromeRenderer struct {
	config  models.RenderConfig
	monitor *ResourceMonitor

	mu       sync.Mutex
	launcher *launcher.Launcher
	browser  *rod.Browser
	crashed  bool
	restarts int
}

// NewChromeRenderer monitor 可以为nil
func NewChromeRenderer(config models.RenderConfig, monitor *ResourceMonitor) *ChromeRenderer {
	return &ChromeRenderer{
		config:  config,
		monitor: monitor,
	}
}

// Restarts 崩溃后重启的次数
func (r *ChromeRenderer) Restarts() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.restarts
}

// RenderPDF 渲染 htmlPath 到 pdfPath
// 先写入 pdfPath.part,成功后重命名,失败时不会留下 pdfPath
func (r *ChromeRenderer) RenderPDF(ctx context.Context, htmlPath, pdfPath string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.monitor != nil && r.browser != nil {
		if recycle, reason := r.monitor.ShouldRecycleBrowser(); recycle {
			utils.Warnf("⚠️  %s", reason)
			r.closeBrowser()
		}
	}

	if err := r.ensureBrowser(); err != nil {
		return err
	}

	err := r.render(ctx, htmlPath, pdfPath)
	if errors.Is(err, ErrBrowserCrashed) {
		utils.Errorf("渲染时浏览器崩溃 [%s]: %v", htmlPath, err)
		r.closeBrowser()
		r.crashed = true
	}
	return err
}

// ensureBrowser 浏览器不存在时启动,崩溃后的重启受 max_browser_restarts 限制
func (r *ChromeRenderer) ensureBrowser() error {
	if r.browser != nil {
		return nil
	}

	if r.crashed {
		if r.restarts >= r.config.MaxBrowserRestarts {
			return fmt.Errorf("%w (%d次)", ErrMaxRestartsReached, r.restarts)
		}
		r.restarts++
		utils.Infof("🔄 重启浏览器 (%d/%d)", r.restarts, r.config.MaxBrowserRestarts)
	}

	if err := r.launchBrowser(); err != nil {
		return err
	}
	r.crashed = false
	return nil
}

func (r *ChromeRenderer) launchBrowser() error {
	l := launcher.New().Headless(r.config.Headless)
	if r.config.BrowserBin != "" {
		l = l.Bin(r.config.BrowserBin)
	}
	l = l.Set("ignore-certificate-errors").Set("disable-gpu")

	controlURL, err := l.Launch()
	if err != nil {
		return fmt.Errorf("启动浏览器失败: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return fmt.Errorf("连接浏览器失败: %w", err)
	}

	r.launcher = l
	r.browser = browser
	utils.Debugf("浏览器已启动: %s", controlURL)
	return nil
}

func (r *ChromeRenderer) closeBrowser() {
	if r.browser != nil {
		if err := r.browser.Close(); err != nil {
			utils.Debugf("关闭浏览器失败: %v", err)
		}
		r.browser = nil
	}
	if r.launcher != nil {
		r.launcher.Kill()
		r.launcher.Cleanup()
		r.launcher = nil
	}
}

// render 单页渲染,rod 的 panic 转换为 ErrBrowserCrashed
func (r *ChromeRenderer) render(ctx context.Context, htmlPath, pdfPath string) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: %v", ErrBrowserCrashed, rec)
		}
	}()

	fileURL, err := localFileURL(htmlPath)
	if err != nil {
		return err
	}

	page, err := r.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return fmt.Errorf("%w: 创建标签页失败: %v", ErrBrowserCrashed, err)
	}
	defer page.Close()

	renderCtx, cancel := context.WithTimeout(ctx, r.timeout())
	defer cancel()
	p := page.Context(renderCtx)

	if err := p.Navigate(fileURL); err != nil {
		return fmt.Errorf("打开暂存文件失败: %w", err)
	}
	if err := p.WaitLoad(); err != nil {
		return fmt.Errorf("等待页面加载失败: %w", err)
	}

	if r.config.SettleMillis > 0 {
		select {
		case <-time.After(time.Duration(r.config.SettleMillis) * time.Millisecond):
		case <-renderCtx.Done():
			return renderCtx.Err()
		}
	}

	stream, err := p.PDF(&proto.PagePrintToPDF{
		Landscape:         r.config.Landscape,
		PrintBackground:   true,
		PreferCSSPageSize: true,
	})
	if err != nil {
		return fmt.Errorf("打印PDF失败: %w", err)
	}

	return writeAtomically(pdfPath, stream)
}

func (r *ChromeRenderer) timeout() time.Duration {
	if r.config.Timeout <= 0 {
		return defaultRenderLimit
	}
	return time.Duration(r.config.Timeout) * time.Second
}

// Close 关闭浏览器
func (r *ChromeRenderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closeBrowser()
	return nil
}

func localFileURL(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("解析暂存文件路径失败: %w", err)
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	return u.String(), nil
}

// writeAtomically 写入 path.part 后重命名为 path
func writeAtomically(path string, src io.Reader) error {
	part := path + partSuffix
	f, err := os.Create(part)
	if err != nil {
		return fmt.Errorf("创建PDF文件失败: %w", err)
	}

	if _, err := io.Copy(f, src); err != nil {
		f.Close()
		os.Remove(part)
		return fmt.Errorf("写入PDF失败: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(part)
		return fmt.Errorf("写入PDF失败: %w", err)
	}
	if err := os.Rename(part, path); err != nil {
		os.Remove(part)
		return fmt.Errorf("重命名PDF失败: %w", err)
	}
	return nil
}
