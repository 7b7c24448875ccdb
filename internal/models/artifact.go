package models

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"strings"
)

const (
	StagingExt  = ".html"
	PDFExt      = ".pdf"
	MarkerExt   = ".html"
	EditableExt = ".docx"

	// DefaultBaseName URL末段为空时使用的文件名
	DefaultBaseName = "home"
)

// NamingPolicy URL到文件名的映射策略
type NamingPolicy string

const (
	// NamingSegment 取URL最后一段,不同URL末段相同时会映射到同一文件名
	NamingSegment NamingPolicy = "segment"
	// NamingHashed 末段后追加URL摘要,消除冲突
	NamingHashed NamingPolicy = "hashed"
)

// Valid 是否为已知策略
func (p NamingPolicy) Valid() bool {
	return p == NamingSegment || p == NamingHashed
}

// MarkerMode 幂等检查中第二个文件的选择
type MarkerMode string

const (
	// MarkerDistinct 标记为产物目录中的 <base>.html 快照
	MarkerDistinct MarkerMode = "distinct"
	// MarkerLegacy 标记与PDF为同一路径,第二次检查等同于第一次
	MarkerLegacy MarkerMode = "legacy"
)

// Valid 是否为已知模式
func (m MarkerMode) Valid() bool {
	return m == MarkerDistinct || m == MarkerLegacy
}

// ArtifactState 单个页面产物的状态
type ArtifactState string

const (
	ArtifactAbsent      ArtifactState = "absent"       // 尚无任何文件
	ArtifactHTMLStaged  ArtifactState = "html-staged"  // 已写入暂存HTML
	ArtifactPDFProduced ArtifactState = "pdf-produced" // 已生成PDF
	ArtifactSkipped     ArtifactState = "skipped"      // 产物已存在,未做任何操作
	ArtifactFailed      ArtifactState = "failed"       // 暂存、渲染或清理失败
)

// ArtifactPaths 一个页面涉及的全部文件路径
type ArtifactPaths struct {
	Base     string // 去掉扩展名的基础名
	Staging  string // 暂存HTML
	PDF      string // 渲染产物
	Marker   string // 伴随标记
	Editable string // 可编辑文档
}

// StagingName 根据URL生成暂存文件名
func StagingName(rawURL string, policy NamingPolicy) string {
	segment := lastSegment(rawURL)
	if segment == "" {
		segment = DefaultBaseName
	}

	if policy == NamingHashed {
		sum := sha256.Sum256([]byte(rawURL))
		segment = strings.ReplaceAll(segment, ".", "_") + "-" + hex.EncodeToString(sum[:])[:8]
	}

	return segment + StagingExt
}

// ArtifactBase 暂存文件名在第一个点之前的部分
func ArtifactBase(stagingName string) string {
	base, _, _ := strings.Cut(stagingName, ".")
	if base == "" {
		return DefaultBaseName
	}
	return base
}

// ResolveArtifactPaths 计算暂存、PDF、标记以及可编辑文档的路径
func ResolveArtifactPaths(stagingDir, artifactDir, stagingName string, mode MarkerMode) ArtifactPaths {
	base := ArtifactBase(stagingName)
	pdfPath := filepath.Join(artifactDir, base+PDFExt)

	marker := filepath.Join(artifactDir, base+MarkerExt)
	if mode == MarkerLegacy {
		marker = pdfPath
	}

	return ArtifactPaths{
		Base:     base,
		Staging:  filepath.Join(stagingDir, stagingName),
		PDF:      pdfPath,
		Marker:   marker,
		Editable: filepath.Join(artifactDir, base+EditableExt),
	}
}

// lastSegment 取最后一个 "/" 之后的内容并替换文件系统不允许的字符
func lastSegment(rawURL string) string {
	segment := rawURL
	if i := strings.LastIndex(rawURL, "/"); i >= 0 {
		segment = rawURL[i+1:]
	}

	return strings.Map(func(r rune) rune {
		switch {
		case r < 0x20, r == 0x7f:
			return '_'
		case strings.ContainsRune(`<>:"\|?*`, r):
			return '_'
		}
		return r
	}, segment)
}
