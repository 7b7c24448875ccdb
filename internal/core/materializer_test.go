package core

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/RecoveryAshes/site2doc/internal/models"
)

// fakeRenderer 把HTML原样写入PDF路径
type fakeRenderer struct {
	calls []string
	err   error
}

func (r *fakeRenderer) RenderPDF(ctx context.Context, htmlPath, pdfPath string) error {
	r.calls = append(r.calls, htmlPath)
	if r.err != nil {
		return r.err
	}
	data, err := os.ReadFile(htmlPath)
	if err != nil {
		return err
	}
	return os.WriteFile(pdfPath, data, 0644)
}

type fakeConverter struct {
	err error
}

func (c *fakeConverter) ConvertToEditable(ctx context.Context, pdfPath string) (string, error) {
	if c.err != nil {
		return "", c.err
	}
	target := pdfPath[:len(pdfPath)-len(models.PDFExt)] + models.EditableExt
	return target, os.WriteFile(target, []byte("docx"), 0644)
}

func newTestDirs(t *testing.T) (string, string) {
	t.Helper()
	root := t.TempDir()
	staging := filepath.Join(root, "staging")
	pdf := filepath.Join(root, "pdf")
	for _, d := range []string{staging, pdf} {
		if err := os.MkdirAll(d, 0755); err != nil {
			t.Fatal(err)
		}
	}
	return staging, pdf
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func TestMaterializer_Distinct(t *testing.T) {
	staging, pdf := newTestDirs(t)
	renderer := &fakeRenderer{}
	m := NewMaterializer(staging, pdf, models.MarkerDistinct, renderer, nil)

	t.Run("首次生成PDF并把暂存文件转为标记", func(t *testing.T) {
		res := m.Materialize(context.Background(), "https://a.com/about", "<p>about</p>", "about.html")
		if res.State != models.ArtifactPDFProduced {
			t.Fatalf("State = %s, err = %v", res.State, res.Err)
		}
		if !exists(filepath.Join(pdf, "about.pdf")) {
			t.Error("应生成 about.pdf")
		}
		if !exists(filepath.Join(pdf, "about.html")) {
			t.Error("应生成标记 about.html")
		}
		if exists(filepath.Join(staging, "about.html")) {
			t.Error("暂存文件应已移走")
		}
	})

	t.Run("重复运行直接跳过", func(t *testing.T) {
		res := m.Materialize(context.Background(), "https://a.com/about", "<p>changed</p>", "about.html")
		if res.State != models.ArtifactSkipped {
			t.Fatalf("State = %s, 期望 skipped", res.State)
		}
		if len(renderer.calls) != 1 {
			t.Errorf("渲染次数 = %d, 期望 1", len(renderer.calls))
		}
	})

	t.Run("只有PDF没有标记时重新生成", func(t *testing.T) {
		if err := os.Remove(filepath.Join(pdf, "about.html")); err != nil {
			t.Fatal(err)
		}
		res := m.Materialize(context.Background(), "https://a.com/about", "<p>about</p>", "about.html")
		if res.State != models.ArtifactPDFProduced {
			t.Fatalf("State = %s", res.State)
		}
	})
}

func TestMaterializer_Legacy(t *testing.T) {
	staging, pdf := newTestDirs(t)
	renderer := &fakeRenderer{}
	m := NewMaterializer(staging, pdf, models.MarkerLegacy, renderer, nil)

	res := m.Materialize(context.Background(), "https://a.com/", "<p>home</p>", "home.html")
	if res.State != models.ArtifactPDFProduced {
		t.Fatalf("State = %s, err = %v", res.State, res.Err)
	}
	if res.Paths.Marker != res.Paths.PDF {
		t.Errorf("legacy 模式下标记应等于PDF路径: %s", res.Paths.Marker)
	}
	if exists(filepath.Join(staging, "home.html")) {
		t.Error("暂存文件应被删除")
	}
	if exists(filepath.Join(pdf, "home.html")) {
		t.Error("legacy 模式不应生成独立标记")
	}

	if again := m.Materialize(context.Background(), "https://a.com/", "<p>home</p>", "home.html"); again.State != models.ArtifactSkipped {
		t.Errorf("重复运行 State = %s, 期望 skipped", again.State)
	}
}

func TestMaterializer_RenderFailure(t *testing.T) {
	staging, pdf := newTestDirs(t)
	m := NewMaterializer(staging, pdf, models.MarkerDistinct, &fakeRenderer{err: errors.New("boom")}, nil)

	res := m.Materialize(context.Background(), "https://a.com/x", "<p>x</p>", "x.html")
	if res.State != models.ArtifactFailed || res.Stage != "render" {
		t.Fatalf("State = %s, Stage = %s", res.State, res.Stage)
	}
	if exists(filepath.Join(pdf, "x.pdf")) {
		t.Error("渲染失败时不应生成PDF")
	}
	if !exists(filepath.Join(staging, "x.html")) {
		t.Error("渲染失败时应保留暂存文件")
	}
}

func TestMaterializer_StageFailure(t *testing.T) {
	_, pdf := newTestDirs(t)
	missing := filepath.Join(t.TempDir(), "no-such-dir")
	m := NewMaterializer(missing, pdf, models.MarkerDistinct, &fakeRenderer{}, nil)

	res := m.Materialize(context.Background(), "https://a.com/x", "<p>x</p>", "x.html")
	if res.State != models.ArtifactFailed || res.Stage != "stage" {
		t.Fatalf("State = %s, Stage = %s", res.State, res.Stage)
	}
}

func TestMaterializer_Editable(t *testing.T) {
	t.Run("转换成功", func(t *testing.T) {
		staging, pdf := newTestDirs(t)
		m := NewMaterializer(staging, pdf, models.MarkerDistinct, &fakeRenderer{}, &fakeConverter{})

		res := m.Materialize(context.Background(), "https://a.com/doc", "<p>doc</p>", "doc.html")
		if res.State != models.ArtifactPDFProduced {
			t.Fatalf("State = %s", res.State)
		}
		if res.EditablePath != filepath.Join(pdf, "doc.docx") {
			t.Errorf("EditablePath = %q", res.EditablePath)
		}
	})

	t.Run("转换失败不影响PDF", func(t *testing.T) {
		staging, pdf := newTestDirs(t)
		m := NewMaterializer(staging, pdf, models.MarkerDistinct, &fakeRenderer{}, &fakeConverter{err: ErrConverterUnavailable})

		res := m.Materialize(context.Background(), "https://a.com/doc", "<p>doc</p>", "doc.html")
		if res.State != models.ArtifactPDFProduced {
			t.Fatalf("State = %s", res.State)
		}
		if res.EditablePath != "" {
			t.Errorf("EditablePath 应为空: %q", res.EditablePath)
		}
	})
}

func TestSofficeConverter_Unavailable(t *testing.T) {
	c := NewSofficeConverter(filepath.Join(t.TempDir(), "no-soffice"), 0)
	if c.Available() {
		t.Fatal("不存在的可执行文件不应可用")
	}
	if _, err := c.ConvertToEditable(context.Background(), "page.pdf"); !errors.Is(err, ErrConverterUnavailable) {
		t.Errorf("期望 ErrConverterUnavailable, 实际 %v", err)
	}
}
