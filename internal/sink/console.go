package sink

import (
	"fmt"
	"io"
	"sync"

	"github.com/wshuo/picfetch/internal/domain"
)

// Console 是交互终端的逐行进度输出（通常写 stderr，不污染 stdout 的 JSON 契约）。
type Console struct {
	mu sync.Mutex
	w  io.Writer
}

func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

func (c *Console) OnEvent(ev domain.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch ev.Kind {
	case domain.EventSkip:
		fmt.Fprintf(c.w, "[%d/%d] SKIP 已存在，跳过：%s\n", ev.Processed, ev.Total, ev.Name)
	case domain.EventSuccess:
		fmt.Fprintf(c.w, "[%d/%d] OK 下载成功：%s\n", ev.Processed, ev.Total, ev.Name)
	case domain.EventFail:
		fmt.Fprintf(c.w, "[%d/%d] FAIL 下载失败：%s：%v\n", ev.Processed, ev.Total, ev.Name, ev.Err)
	case domain.EventDone:
		fmt.Fprintf(c.w, "完成：processed=%d total=%d\n", ev.Processed, ev.Total)
	default:
		// 兜底：未知事件也不要静默（便于调试/演进）。
		fmt.Fprintf(c.w, "%s processed=%d total=%d %s\n", ev.Kind, ev.Processed, ev.Total, ev.Name)
	}
}
