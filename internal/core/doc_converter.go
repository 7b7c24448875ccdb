package core

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/RecoveryAshes/site2doc/internal/models"
	"github.com/RecoveryAshes/site2doc/internal/utils"
)

// ErrConverterUnavailable 转换工具不可用
var ErrConverterUnavailable = errors.New("文档转换工具不可用")

// EditableConverter 把PDF转换为可编辑文档,返回生成的文件路径
type EditableConverter interface {
	ConvertToEditable(ctx context.Context, pdfPath string) (string, error)
}

// SofficeConverter 调用 LibreOffice 的 PDF 导入过滤器生成 DOCX
type SofficeConverter struct {
	bin     string
	timeout time.Duration

	probeOnce sync.Once
	available bool
}

// NewSofficeConverter bin 为空时使用 PATH 中的 soffice
func NewSofficeConverter(bin string, timeout time.Duration) *SofficeConverter {
	if bin == "" {
		bin = "soffice"
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &SofficeConverter{bin: bin, timeout: timeout}
}

// Available 首次调用时执行 soffice --version
func (c *SofficeConverter) Available() bool {
	c.probeOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := exec.CommandContext(ctx, c.bin, "--version").Run(); err != nil {
			utils.Debugf("soffice检测失败: %v", err)
			utils.Warn("⚠️  未检测到LibreOffice,可编辑文档转换不可用")
			utils.Info("💡 提示: 安装 LibreOffice 并确保 soffice 在PATH中")
			return
		}
		c.available = true
		utils.Info("✅ LibreOffice已检测到,将生成DOCX文档")
	})
	return c.available
}

// ConvertToEditable 在PDF所在目录生成同名 .docx
func (c *SofficeConverter) ConvertToEditable(ctx context.Context, pdfPath string) (string, error) {
	if !c.Available() {
		return "", ErrConverterUnavailable
	}

	outDir := filepath.Dir(pdfPath)
	base := strings.TrimSuffix(filepath.Base(pdfPath), filepath.Ext(pdfPath))
	target := filepath.Join(outDir, base+models.EditableExt)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, c.bin,
		"--headless",
		"--infilter=writer_pdf_import",
		"--convert-to", "docx",
		"--outdir", outDir,
		pdfPath,
	)
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("转换超时 (%v)", c.timeout)
		}
		return "", fmt.Errorf("soffice执行失败: %w, stderr: %s", err, strings.TrimSpace(stderr.String()))
	}

	if _, err := os.Stat(target); err != nil {
		return "", fmt.Errorf("转换后未找到输出文件 [%s]: %w", target, err)
	}
	return target, nil
}
