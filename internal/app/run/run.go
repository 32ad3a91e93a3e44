// Package run 把一次批量下载串成完整流程：
// 读取工作表快照 -> 提取 WorkItem -> 有界并发下载 -> 汇总结果。
package run

import (
	"context"
	"fmt"
	"time"

	"github.com/wshuo/picfetch/internal/config"
	"github.com/wshuo/picfetch/internal/dispatch"
	"github.com/wshuo/picfetch/internal/domain"
	"github.com/wshuo/picfetch/internal/fetch"
	"github.com/wshuo/picfetch/internal/infra/fsx"
	"github.com/wshuo/picfetch/internal/infra/httpx"
	"github.com/wshuo/picfetch/internal/sheet"
	"github.com/wshuo/picfetch/internal/sink"
)

// Execute 执行一次运行并返回 RunResult。
//
// 错误分层：
// - 致命（返回 error）：Excel 不可读、工作表不存在、表头缺列、输出目录无法创建
//   —— 全部发生在任何下载开始之前，输出目录也在致命校验之后才创建
// - 条目级（不返回 error）：单条下载失败计入 Failed，运行继续
// - 日志（不可观察）：落盘日志的失败被 Sink 吞掉
//
// extra 是调用方附加的事件消费者（可为 nil）；落盘日志始终生效，两者叠加。
func Execute(ctx context.Context, eff config.Effective, extra sink.Sink) (domain.RunResult, error) {
	started := time.Now()

	table, err := sheet.Load(eff.Input, eff.Sheet)
	if err != nil {
		return domain.RunResult{}, err
	}
	items := table.Extract(eff.OutDir, eff.StartRow, eff.EndRow, eff.Limit)

	if err := fsx.EnsureDir(eff.OutDir); err != nil {
		return domain.RunResult{}, fmt.Errorf("创建输出目录失败：%w", err)
	}

	client, err := httpx.NewImageClient(eff.ProxyURL)
	if err != nil {
		return domain.RunResult{}, fmt.Errorf("构造下载 client 失败：%w", err)
	}

	snk := sink.Multi{sink.NewFileLog(eff.LogDir)}
	if extra != nil {
		snk = append(snk, extra)
	}

	res := dispatch.Run(ctx, items, eff.Concurrency, &fetch.Fetcher{Client: client}, snk)

	res.Input = eff.Input
	res.Sheet = eff.Sheet
	res.OutDir = eff.OutDir
	res.StartedAt = started
	res.FinishedAt = time.Now()
	res.Finalize()
	return res, nil
}
