package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/wshuo/picfetch/internal/domain"
)

// cliBin 是 TestMain 预编译出的 CLI 二进制路径；子进程直接执行它，
// 避免在临时目录（模块外）里调用 `go run` 导致找不到 go.mod。
var cliBin string

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "picfetch-cli-")
	if err != nil {
		fmt.Fprintf(os.Stderr, "创建临时目录失败：%v\n", err)
		os.Exit(1)
	}
	cliBin = filepath.Join(dir, "picfetch")
	cmd := exec.Command("go", "build", "-o", cliBin, ".")
	if out, err := cmd.CombinedOutput(); err != nil {
		fmt.Fprintf(os.Stderr, "构建 CLI 失败：%v\n%s", err, out)
		_ = os.RemoveAll(dir)
		os.Exit(1)
	}
	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

func writeWorkbook(t *testing.T, path string, rows [][]string) {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("计算单元格坐标失败：%v", err)
		}
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatalf("写入行失败：%v", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("保存工作簿失败：%v", err)
	}
}

func TestCLI_NoTTY_StdoutOnlyRunResultJSON(t *testing.T) {
	// 这个测试锁定对外契约：stdout 非 TTY 时只能输出一个 RunResult JSON（进度/摘要必须走 stderr）。
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("image-bytes"))
	}))
	defer srv.Close()

	root := t.TempDir()
	input := filepath.Join(root, "清单.xlsx")
	writeWorkbook(t, input, [][]string{
		{"一级", "二级1", "二级2", "三级", "品牌", "条码", "imageUrl"},
		{"饮料", "碳酸", "可乐", "", "品牌A", "100", srv.URL + "/a.jpg"},
		{"饮料", "碳酸", "雪碧", "", "品牌B", "200", srv.URL + "/b.jpg"},
	})

	cmd := exec.Command(cliBin,
		"run", "--input", input, "--out", filepath.Join(root, "out"))
	cmd.Dir = root

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		t.Fatalf("命令执行失败：%v\nstderr=%s\nstdout=%s", err, stderr.String(), stdout.String())
	}

	// stdout 必须是单个 JSON。
	var rr domain.RunResult
	if err := json.Unmarshal(stdout.Bytes(), &rr); err != nil {
		t.Fatalf("stdout 不是合法的 RunResult JSON：%v\nstdout=%q", err, stdout.String())
	}
	if rr.Total != 2 || rr.Succeeded != 2 || rr.Processed != 2 || rr.Failed != 0 {
		t.Fatalf("汇总不符：%+v", rr)
	}
	if !strings.Contains(stderr.String(), "完成：") {
		t.Fatalf("stderr 缺少完成摘要：%q", stderr.String())
	}

	for _, name := range []string{"饮料-碳酸-可乐-品牌A-100.jpg", "饮料-碳酸-雪碧-品牌B-200.jpg"} {
		if _, err := os.Stat(filepath.Join(root, "out", name)); err != nil {
			t.Fatalf("缺少产物 %s：%v", name, err)
		}
	}
	// 日志目录走默认值 logs/，相对进程 cwd。
	matches, err := filepath.Glob(filepath.Join(root, "logs", "activity-*.log"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("期望 1 个活动日志，实际 %v（err=%v）", matches, err)
	}
}

func TestCLI_MissingConfig_Exit1(t *testing.T) {
	root := t.TempDir()

	cmd := exec.Command(cliBin, "run")
	cmd.Dir = root

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	ee, ok := err.(*exec.ExitError)
	if !ok {
		t.Fatalf("期望退出码 1，实际 err=%v", err)
	}
	if ee.ExitCode() != 1 {
		t.Fatalf("期望退出码 1，实际 %d\nstderr=%s", ee.ExitCode(), stderr.String())
	}
	if !strings.Contains(stderr.String(), "config_not_found") {
		t.Fatalf("stderr 缺少错误码：%q", stderr.String())
	}
}
