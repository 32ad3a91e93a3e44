// Package dispatch 拥有整个批量下载的有界并发执行：
// 预扫描跳过已存在的目标、把其余条目交给固定上限的下载池、
// 聚合每条结果并恰好一次地驱动进度事件。
package dispatch

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/wshuo/picfetch/internal/domain"
	"github.com/wshuo/picfetch/internal/infra/fsx"
	"github.com/wshuo/picfetch/internal/sink"
)

// Fetcher 执行单次传输。实现必须在自身入口处观察取消。
type Fetcher interface {
	Fetch(ctx context.Context, item domain.WorkItem) domain.Outcome
}

// Run 处理全部 WorkItem 并返回计数结果（Processed 即对外契约的处理数）。
//
// 算法（固定）：
//  1. total = len(items)，在任何工作开始前一次算定（跳过/下载的划分不改变它）
//  2. 预扫描按原始顺序串行进行，先于任何并发工作：目标已存在 -> 立即发 skip
//     事件并推进 processed；每次判断前先观察取消，已取消则停止扫描
//     （未扫描到的条目既不跳过、不下载、也不计数）
//  3. 其余条目提交给至多 concurrency 个同时在途的下载；提交顺序即条目顺序，
//     完成顺序不保证
//  4. 每条完成恰好发一条事件；仅 Succeeded 推进 processed（Failed 照常上报
//     但不计数）；已提交但在下载入口处观察到取消的条目
//     不发事件、不计数
//  5. 全部在途下载结束后，恰好发一条 done 事件
//
// 单条下载失败不影响运行继续；这里没有调度级超时与重试。
func Run(ctx context.Context, items []domain.WorkItem, concurrency int, f Fetcher, snk sink.Sink) domain.RunResult {
	if concurrency < 1 {
		concurrency = 1
	}
	if snk == nil {
		snk = sink.Callback(nil)
	}

	st := &state{total: len(items), snk: snk}

	pending := make([]domain.WorkItem, 0, len(items))
	for _, it := range items {
		if ctx.Err() != nil {
			break
		}
		if fsx.Exists(it.DestPath) {
			st.skip(it.DisplayName)
			continue
		}
		pending = append(pending, it)
	}

	var g errgroup.Group
	g.SetLimit(concurrency)
	for _, it := range pending {
		g.Go(func() error {
			out := f.Fetch(ctx, it)
			switch out.Status {
			case domain.StatusSucceeded:
				st.success(out.DisplayName)
			case domain.StatusFailed:
				st.fail(out.DisplayName, out.SourceURL, out.Err)
			case domain.StatusCancelled:
				st.cancel()
			}
			return nil
		})
	}
	_ = g.Wait()

	return st.done()
}

// state 是一次运行的共享可变状态：单把锁保护 processed 的推进与
// "先递增、后取值发事件"的顺序，保证事件携带的计数与发出时刻一致，
// 且两个 Succeeded 事件不会观察到同一个 processed 值。
type state struct {
	mu  sync.Mutex
	snk sink.Sink

	total     int
	processed int
	skipped   int
	succeeded int
	failed    int
	cancelled int
}

func (s *state) skip(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.processed++
	s.skipped++
	s.snk.OnEvent(domain.Event{Kind: domain.EventSkip, Processed: s.processed, Total: s.total, Name: name})
}

func (s *state) success(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.processed++
	s.succeeded++
	s.snk.OnEvent(domain.Event{Kind: domain.EventSuccess, Processed: s.processed, Total: s.total, Name: name})
}

func (s *state) fail(name, url string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failed++
	// 失败不推进 processed：事件携带失败时刻的当前值。
	s.snk.OnEvent(domain.Event{Kind: domain.EventFail, Processed: s.processed, Total: s.total, Name: name, URL: url, Err: err})
}

func (s *state) cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelled++
}

func (s *state) done() domain.RunResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snk.OnEvent(domain.Event{Kind: domain.EventDone, Processed: s.processed, Total: s.total})
	return domain.RunResult{
		Total:     s.total,
		Processed: s.processed,
		Skipped:   s.skipped,
		Succeeded: s.succeeded,
		Failed:    s.failed,
		Cancelled: s.cancelled,
	}
}
