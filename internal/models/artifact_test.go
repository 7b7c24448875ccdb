package models

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestStagingName_Segment(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"普通路径", "https://howard.edu/academics/programs", "programs.html"},
		{"带扩展名", "https://howard.edu/news/index.php", "index.php.html"},
		{"结尾斜杠", "https://howard.edu/", "home.html"},
		{"只有主机", "https://howard.edu", "howard.edu.html"},
		{"查询参数中的非法字符", "https://howard.edu/page?id=3", "page_id=3.html"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StagingName(tt.url, NamingSegment); got != tt.want {
				t.Errorf("StagingName(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

// 末段相同的URL在segment策略下映射到同一文件,后访问的页面会因产物已存在而被跳过
func TestStagingName_SegmentCollisionIsAccepted(t *testing.T) {
	a := StagingName("https://howard.edu/a/index", NamingSegment)
	b := StagingName("https://howard.edu/b/index", NamingSegment)
	if a != b {
		t.Fatalf("segment策略下末段相同的URL应映射到同一文件名: %q vs %q", a, b)
	}

	// 基础名截断在第一个点,不同扩展名同样冲突
	if ArtifactBase(StagingName("https://howard.edu/x/report.html", NamingSegment)) !=
		ArtifactBase(StagingName("https://howard.edu/y/report.pdf", NamingSegment)) {
		t.Error("report.html 与 report.pdf 应共享基础名 report")
	}
}

func TestStagingName_Hashed(t *testing.T) {
	a := StagingName("https://howard.edu/a/index", NamingHashed)
	b := StagingName("https://howard.edu/b/index", NamingHashed)

	if a == b {
		t.Fatalf("hashed策略不应产生冲突: %q", a)
	}
	if !strings.HasPrefix(a, "index-") || !strings.HasSuffix(a, StagingExt) {
		t.Errorf("文件名格式错误: %q", a)
	}

	// 点被替换,保证截断后仍保留摘要
	dotted := StagingName("https://howard.edu/a/index.php", NamingHashed)
	base := ArtifactBase(dotted)
	if !strings.HasPrefix(base, "index_php-") || len(base) != len("index_php-")+8 {
		t.Errorf("基础名 = %q, 应为 index_php-<8位摘要>", base)
	}

	// 同一URL结果稳定
	if StagingName("https://howard.edu/a/index", NamingHashed) != a {
		t.Error("相同URL应得到相同文件名")
	}
}

func TestArtifactBase(t *testing.T) {
	tests := []struct {
		staging string
		want    string
	}{
		{"programs.html", "programs"},
		{"index.php.html", "index"},
		{".html", DefaultBaseName},
		{"home.html", "home"},
	}

	for _, tt := range tests {
		if got := ArtifactBase(tt.staging); got != tt.want {
			t.Errorf("ArtifactBase(%q) = %q, want %q", tt.staging, got, tt.want)
		}
	}
}

func TestResolveArtifactPaths_Distinct(t *testing.T) {
	paths := ResolveArtifactPaths("/out/staging", "/out/pdf", "programs.html", MarkerDistinct)

	if paths.Staging != filepath.Join("/out/staging", "programs.html") {
		t.Errorf("Staging = %q", paths.Staging)
	}
	if paths.PDF != filepath.Join("/out/pdf", "programs.pdf") {
		t.Errorf("PDF = %q", paths.PDF)
	}
	if paths.Marker != filepath.Join("/out/pdf", "programs.html") {
		t.Errorf("Marker = %q", paths.Marker)
	}
	if paths.Marker == paths.PDF {
		t.Error("distinct模式下标记必须是独立文件")
	}
	if paths.Editable != filepath.Join("/out/pdf", "programs.docx") {
		t.Errorf("Editable = %q", paths.Editable)
	}
}

// legacy模式保留原有行为: 第二次存在性检查与第一次检查同一个PDF
func TestResolveArtifactPaths_LegacyMarkerIsRedundant(t *testing.T) {
	paths := ResolveArtifactPaths("/out/staging", "/out/pdf", "programs.html", MarkerLegacy)

	if paths.Marker != paths.PDF {
		t.Errorf("legacy模式下标记应与PDF相同: marker=%q pdf=%q", paths.Marker, paths.PDF)
	}
}

func TestPolicyAndModeValid(t *testing.T) {
	if !NamingSegment.Valid() || !NamingHashed.Valid() || NamingPolicy("x").Valid() {
		t.Error("NamingPolicy.Valid 结果错误")
	}
	if !MarkerDistinct.Valid() || !MarkerLegacy.Valid() || MarkerMode("x").Valid() {
		t.Error("MarkerMode.Valid 结果错误")
	}
}
