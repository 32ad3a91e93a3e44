package sink

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/wshuo/picfetch/internal/domain"
)

// FileLog 把事件以纯文本追加到两个按天切分的日志文件：
// 活动日志（每条 skip/success/fail 一行，外加一行结束摘要）与
// 错误日志（每条失败一行，含去参后的 URL）。
//
// 两个文件各有自己的互斥锁，并发写入不会交错出半行。
// 目录创建是 best-effort；任何写入失败都被吞掉，绝不影响运行结果。
type FileLog struct {
	dir string

	activityMu sync.Mutex
	errorMu    sync.Mutex

	// nowFunc 可替换，测试用来固定日期分片。
	nowFunc func() time.Time
}

func NewFileLog(dir string) *FileLog {
	_ = os.MkdirAll(dir, 0o755)
	return &FileLog{dir: dir, nowFunc: time.Now}
}

func (l *FileLog) OnEvent(ev domain.Event) {
	now := l.nowFunc()
	stamp := now.Format("2006-01-02 15:04:05")

	switch ev.Kind {
	case domain.EventSkip:
		l.appendActivity(now, fmt.Sprintf("%s 已存在，跳过：%s [%d/%d]", stamp, ev.Name, ev.Processed, ev.Total))
	case domain.EventSuccess:
		l.appendActivity(now, fmt.Sprintf("%s 下载成功：%s [%d/%d]", stamp, ev.Name, ev.Processed, ev.Total))
	case domain.EventFail:
		l.appendActivity(now, fmt.Sprintf("%s 下载失败：%s [%d/%d]", stamp, ev.Name, ev.Processed, ev.Total))
		l.appendError(now, fmt.Sprintf("%s 下载失败：%s url=%s err=%v", stamp, ev.Name, ev.URL, ev.Err))
	case domain.EventDone:
		l.appendActivity(now, fmt.Sprintf("%s 完成：processed=%d total=%d", stamp, ev.Processed, ev.Total))
	}
}

// ActivityPath 返回指定日期的活动日志路径。
func (l *FileLog) ActivityPath(day time.Time) string {
	return filepath.Join(l.dir, "activity-"+day.Format("2006-01-02")+".log")
}

// ErrorPath 返回指定日期的错误日志路径。
func (l *FileLog) ErrorPath(day time.Time) string {
	return filepath.Join(l.dir, "errors-"+day.Format("2006-01-02")+".log")
}

func (l *FileLog) appendActivity(day time.Time, line string) {
	l.activityMu.Lock()
	defer l.activityMu.Unlock()
	appendLine(l.ActivityPath(day), line)
}

func (l *FileLog) appendError(day time.Time, line string) {
	l.errorMu.Lock()
	defer l.errorMu.Unlock()
	appendLine(l.ErrorPath(day), line)
}

// appendLine 追加一行；所有失败都被吞掉（日志绝不升级为运行错误）。
func appendLine(path, line string) {
	_ = os.MkdirAll(filepath.Dir(path), 0o755)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	defer f.Close()
	_, _ = f.WriteString(line + "\n")
}
