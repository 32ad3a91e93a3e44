package fsx

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteReaderAtomic_SuccessAndNoTempLeft(t *testing.T) {
	dir := t.TempDir()

	n, err := WriteReaderAtomic(dir, "a.jpg", strings.NewReader("hello"))
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if n != 5 {
		t.Fatalf("期望写入 5 字节，实际 %d", n)
	}

	b, err := os.ReadFile(filepath.Join(dir, "a.jpg"))
	if err != nil {
		t.Fatalf("读取文件失败：%v", err)
	}
	if string(b) != "hello" {
		t.Fatalf("内容不一致：%q", string(b))
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir 失败：%v", err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".a.jpg.tmp-") {
			t.Fatalf("临时文件未清理：%q", e.Name())
		}
	}
}

func TestWriteReaderAtomic_RenameFail_NoPartialFile(t *testing.T) {
	dir := t.TempDir()

	old := renameFunc
	renameFunc = func(oldpath, newpath string) error {
		return os.ErrPermission
	}
	defer func() { renameFunc = old }()

	_, err := WriteReaderAtomic(dir, "a.jpg", strings.NewReader("hello"))
	if err == nil {
		t.Fatalf("期望失败，但得到 nil")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir 失败：%v", err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".a.jpg.tmp-") {
			t.Fatalf("临时文件未清理：%q", e.Name())
		}
		if e.Name() == "a.jpg" {
			t.Fatalf("失败时不应出现目标文件：%q", e.Name())
		}
	}
}

func TestWriteReaderAtomic_ReplaceExisting(t *testing.T) {
	dir := t.TempDir()

	if _, err := WriteReaderAtomic(dir, "a.jpg", strings.NewReader("old")); err != nil {
		t.Fatalf("首次写入失败：%v", err)
	}
	if _, err := WriteReaderAtomic(dir, "a.jpg", strings.NewReader("new")); err != nil {
		t.Fatalf("覆盖写入失败：%v", err)
	}

	b, err := os.ReadFile(filepath.Join(dir, "a.jpg"))
	if err != nil {
		t.Fatalf("读取文件失败：%v", err)
	}
	if string(b) != "new" {
		t.Fatalf("期望后写者胜出，实际 %q", string(b))
	}
}

func TestExists(t *testing.T) {
	dir := t.TempDir()

	if Exists(filepath.Join(dir, "missing.jpg")) {
		t.Fatalf("不存在的文件不应返回 true")
	}

	p := filepath.Join(dir, "a.jpg")
	if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
		t.Fatalf("写入失败：%v", err)
	}
	if !Exists(p) {
		t.Fatalf("已存在的普通文件应返回 true")
	}

	// 目录不算"已存在的文件"。
	if Exists(dir) {
		t.Fatalf("目录不应返回 true")
	}
}
