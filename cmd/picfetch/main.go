// picfetch 按 Excel 清单批量下载商品图片。
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wshuo/picfetch/internal/app/run"
	"github.com/wshuo/picfetch/internal/config"
	"github.com/wshuo/picfetch/internal/domain"
	"github.com/wshuo/picfetch/internal/sheet"
	"github.com/wshuo/picfetch/internal/sink"
)

// exitCode 由 run 子命令设置；参数解析失败时 cobra 自行报错，main 退出码 2。
var exitCode int

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(2)
	}
	os.Exit(exitCode)
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "picfetch",
		Short:        "按 Excel 清单批量下载商品图片",
		SilenceUsage: true,
	}
	root.AddCommand(newRunCmd())
	return root
}

func newRunCmd() *cobra.Command {
	var (
		input       string
		sheetName   string
		outDir      string
		startRow    int
		endRow      int
		limit       int
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "运行下载流程",
		Long: `读取 Excel 清单（一级/二级1/二级2/三级/品牌/条码/imageUrl 列），
按分类字段生成文件名并并发下载图片；目标文件已存在则跳过。

配置文件（可选）：当前目录下的 picfetch.yaml；CLI 参数优先于配置文件。`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fl := cmd.Flags()
			exitCode = runCmd(config.CLIArgs{
				Input:    input,
				InputSet: fl.Changed("input"),

				Sheet:    sheetName,
				SheetSet: fl.Changed("sheet"),

				OutDir:    outDir,
				OutDirSet: fl.Changed("out"),

				StartRow:    startRow,
				StartRowSet: fl.Changed("start"),

				EndRow:    endRow,
				EndRowSet: fl.Changed("end"),

				Limit:    limit,
				LimitSet: fl.Changed("limit"),

				Concurrency:    concurrency,
				ConcurrencySet: fl.Changed("concurrency"),
			})
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "Excel 清单路径（xlsx）")
	cmd.Flags().StringVar(&sheetName, "sheet", "", "工作表名（默认 Sheet1）")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "图片输出目录（默认 images）")
	cmd.Flags().IntVar(&startRow, "start", 0, "起始数据行（含端点，1 起；默认 2）")
	cmd.Flags().IntVar(&endRow, "end", 0, "结束数据行（含端点；0 表示到最后一行）")
	cmd.Flags().IntVar(&limit, "limit", 0, "最多处理条数（0 表示不限制）")
	cmd.Flags().IntVarP(&concurrency, "concurrency", "c", 0, "并发下载数（默认 4，上限 32）")

	return cmd
}

func runCmd(cli config.CLIArgs) int {
	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "读取当前目录失败：%v\n", err)
		return 1
	}

	eff, err := config.LoadEffective(cwd, cli)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s：%v\n", config.Code(err), err)
		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "收到中断信号，正在停止…")
		cancel()
	}()

	progressW, interactive := pickProgressWriter()
	var extra sink.Sink
	if interactive {
		extra = sink.NewConsole(progressW)
	}

	rr, err := run.Execute(ctx, eff, extra)
	if err != nil {
		if code := sheet.Code(err); code != "" {
			fmt.Fprintf(os.Stderr, "%s：%v\n", code, err)
		} else {
			fmt.Fprintf(os.Stderr, "运行失败：%v\n", err)
		}
		return 1
	}

	emitResult(rr)
	if rr.Failed == 0 {
		return 0
	}
	return 1
}

func emitResult(rr domain.RunResult) {
	summary := fmt.Sprintf("完成：processed=%d total=%d skipped=%d succeeded=%d failed=%d cancelled=%d",
		rr.Processed, rr.Total, rr.Skipped, rr.Succeeded, rr.Failed, rr.Cancelled,
	)

	if isTTY(os.Stdout) {
		fmt.Fprintln(os.Stdout, summary)
		return
	}

	// stdout 非 TTY：stdout 必须且仅输出一个 RunResult JSON（进度/摘要走 stderr）。
	enc := json.NewEncoder(os.Stdout)
	_ = enc.Encode(rr)
	fmt.Fprintln(os.Stderr, summary)
}

func isTTY(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func pickProgressWriter() (io.Writer, bool) {
	// 进度输出只在交互终端启用；默认走 stderr（不污染 stdout JSON）。
	if isTTY(os.Stderr) {
		return os.Stderr, true
	}
	// 某些环境（例如仅重定向 stderr）下，stdout 仍是 TTY：退化输出到 stdout。
	if isTTY(os.Stdout) {
		return os.Stdout, true
	}
	return nil, false
}
