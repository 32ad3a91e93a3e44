package domain

const (
	EventSkip    = "skip"
	EventSuccess = "success"
	EventFail    = "fail"
	EventDone    = "done"
)

// Event 是一次进度事件。每个条目恰好产生一条事件（skip/success/fail），
// 整个运行最后恰好产生一条 done。
//
// Processed 在整个运行内单调不减，且只随 skip/success 前进：
// fail 事件携带的是失败时刻的当前值。
type Event struct {
	Kind      string
	Processed int
	Total     int

	// Name 是条目事件的展示文件名；done 事件为空。
	Name string
	// URL 仅 fail 事件携带（已去除查询参数），供错误日志落盘。
	URL string
	// Err 仅 fail 事件携带。
	Err error
}
