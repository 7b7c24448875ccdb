package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReadURLsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "urls.txt")
	content := `# 种子列表
https://howard.edu

ftp://invalid.example.com
https://howard.edu/admissions
https://howard.edu
not a url
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	urls, err := ReadURLsFromFile(path)
	if err != nil {
		t.Fatalf("ReadURLsFromFile() error = %v", err)
	}

	want := []string{"https://howard.edu", "https://howard.edu/admissions"}
	if len(urls) != len(want) {
		t.Fatalf("得到 %v, want %v", urls, want)
	}
	for i := range want {
		if urls[i] != want[i] {
			t.Errorf("urls[%d] = %q, want %q", i, urls[i], want[i])
		}
	}
}

func TestReadURLsFromFile_Errors(t *testing.T) {
	t.Run("文件不存在", func(t *testing.T) {
		if _, err := ReadURLsFromFile(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
			t.Error("期望返回错误")
		}
	})

	t.Run("没有有效URL", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "urls.txt")
		if err := os.WriteFile(path, []byte("# only comments\n\n"), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := ReadURLsFromFile(path); err == nil {
			t.Error("期望返回错误")
		}
	})
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.pdf")
	if err := os.WriteFile(file, []byte("%PDF"), 0644); err != nil {
		t.Fatal(err)
	}

	if !FileExists(file) {
		t.Error("普通文件应返回true")
	}
	if FileExists(dir) {
		t.Error("目录应返回false")
	}
	if FileExists(filepath.Join(dir, "missing.pdf")) {
		t.Error("不存在的文件应返回false")
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    uint64
		want string
	}{
		{512, "512 B"},
		{1024, "1.0 KB"},
		{200 * 1024 * 1024, "200.0 MB"},
	}
	for _, tt := range tests {
		if got := FormatBytes(tt.n); got != tt.want {
			t.Errorf("FormatBytes(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
