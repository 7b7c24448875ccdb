package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/RecoveryAshes/site2doc/internal/models"
	"github.com/RecoveryAshes/site2doc/internal/utils"
)

// Renderer 把本地HTML文件渲染为PDF
type Renderer interface {
	RenderPDF(ctx context.Context, htmlPath, pdfPath string) error
}

// MaterializeResult 一次物化的结果
type MaterializeResult struct {
	State        models.ArtifactState
	Paths        models.ArtifactPaths
	EditablePath string // 仅在可编辑文档生成成功时非空
	Stage        string // 失败阶段: stage, render, cleanup
	Err          error
}

// Materializer 把页面HTML转换为PDF产物,产物已存在时不做任何操作
type Materializer struct {
	stagingDir  string
	artifactDir string
	markerMode  models.MarkerMode
	renderer    Renderer
	editable    EditableConverter
}

// NewMaterializer editable 为nil时不生成可编辑文档
func NewMaterializer(stagingDir, artifactDir string, markerMode models.MarkerMode, renderer Renderer, editable EditableConverter) *Materializer {
	return &Materializer{
		stagingDir:  stagingDir,
		artifactDir: artifactDir,
		markerMode:  markerMode,
		renderer:    renderer,
		editable:    editable,
	}
}

// Materialize 暂存HTML、渲染PDF、清理暂存文件
//
// PDF和标记都存在时直接返回 ArtifactSkipped。
// distinct 模式下暂存文件被重命名为标记,legacy 模式下被删除。
// 渲染失败时暂存文件保留,不会生成PDF。
func (m *Materializer) Materialize(ctx context.Context, pageURL, html, stagingName string) MaterializeResult {
	paths := models.ResolveArtifactPaths(m.stagingDir, m.artifactDir, stagingName, m.markerMode)
	result := MaterializeResult{State: models.ArtifactAbsent, Paths: paths}

	if utils.FileExists(paths.PDF) && utils.FileExists(paths.Marker) {
		utils.Infof("⏭️  %s 已存在,跳过 [%s]", filepath.Base(paths.PDF), pageURL)
		result.State = models.ArtifactSkipped
		return result
	}

	if err := os.WriteFile(paths.Staging, []byte(html), 0644); err != nil {
		return m.fail(result, "stage", fmt.Errorf("写入暂存文件失败 [%s]: %w", paths.Staging, err))
	}
	result.State = models.ArtifactHTMLStaged

	if err := m.renderer.RenderPDF(ctx, paths.Staging, paths.PDF); err != nil {
		return m.fail(result, "render", fmt.Errorf("渲染PDF失败 [%s]: %w", filepath.Base(paths.Staging), err))
	}
	result.State = models.ArtifactPDFProduced
	utils.Infof("📄 已生成 %s [%s]", filepath.Base(paths.PDF), pageURL)

	if err := m.retireStaging(paths); err != nil {
		return m.fail(result, "cleanup", err)
	}

	if m.editable != nil {
		if docPath, err := m.editable.ConvertToEditable(ctx, paths.PDF); err != nil {
			utils.Warnf("生成可编辑文档失败 [%s]: %v", filepath.Base(paths.PDF), err)
		} else {
			result.EditablePath = docPath
			utils.Infof("📝 已生成 %s", filepath.Base(docPath))
		}
	}

	return result
}

func (m *Materializer) retireStaging(paths models.ArtifactPaths) error {
	if m.markerMode == models.MarkerLegacy {
		if err := os.Remove(paths.Staging); err != nil {
			return fmt.Errorf("删除暂存文件失败 [%s]: %w", paths.Staging, err)
		}
		return nil
	}

	if err := os.Rename(paths.Staging, paths.Marker); err != nil {
		return fmt.Errorf("写入标记文件失败 [%s]: %w", paths.Marker, err)
	}
	return nil
}

func (m *Materializer) fail(result MaterializeResult, stage string, err error) MaterializeResult {
	utils.Errorf("❌ %v", err)
	result.State = models.ArtifactFailed
	result.Stage = stage
	result.Err = err
	return result
}
