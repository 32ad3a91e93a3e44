// Package fetch 执行单次 URL -> 文件 的传输。
//
// 契约：
// - 入口处观察取消：ctx 已取消则返回 Cancelled（不发请求、不触盘）
// - 非 2xx 响应或任何传输层错误 -> Failed
// - 失败时目标路径不可观察到半成品（同目录临时文件 + rename）
// - 不做重试：重试策略属于调度层（当前：没有）
package fetch

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/wshuo/picfetch/internal/domain"
	"github.com/wshuo/picfetch/internal/infra/fsx"
)

// Fetcher 用同一个 HTTP client 串起整个运行的全部下载。
type Fetcher struct {
	Client *http.Client
}

// Fetch 处理一个 WorkItem，返回三态结果（Succeeded/Failed/Cancelled）。
func (f *Fetcher) Fetch(ctx context.Context, item domain.WorkItem) domain.Outcome {
	if ctx.Err() != nil {
		return domain.Cancelled(item.DisplayName)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, item.SourceURL, nil)
	if err != nil {
		return domain.Failed(item.DisplayName, item.SourceURL, err)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		// 中途被取消的传输按 Cancelled 归类，不算下载失败。
		if ctx.Err() != nil {
			return domain.Cancelled(item.DisplayName)
		}
		return domain.Failed(item.DisplayName, item.SourceURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domain.Failed(item.DisplayName, item.SourceURL, fmt.Errorf("HTTP %d", resp.StatusCode))
	}

	dir, name := filepath.Split(item.DestPath)
	if _, err := fsx.WriteReaderAtomic(filepath.Clean(dir), name, resp.Body); err != nil {
		if ctx.Err() != nil {
			return domain.Cancelled(item.DisplayName)
		}
		return domain.Failed(item.DisplayName, item.SourceURL, err)
	}
	return domain.Succeeded(item.DisplayName)
}
