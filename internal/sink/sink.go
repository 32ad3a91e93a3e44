// Package sink 把进度事件从核心执行流程中解耦出来。
//
// 约束：
// - 调度层只负责发事件，不做任何输出
// - Sink 的实现必须并发安全：事件可能来自多个 goroutine
// - Sink 的方法没有返回值：任何输出失败都不得影响运行本身
package sink

import "github.com/wshuo/picfetch/internal/domain"

// Sink 是进度事件的消费方（控制台、落盘日志、或调用方回调）。
type Sink interface {
	OnEvent(ev domain.Event)
}

// Multi 把事件按顺序扇出给多个 Sink。
// 调用方提供回调时，落盘日志依旧生效：两者是叠加关系而非替换。
type Multi []Sink

func (m Multi) OnEvent(ev domain.Event) {
	for _, s := range m {
		s.OnEvent(ev)
	}
}

// Callback 把调用方提供的函数适配为 Sink。
// 函数自身需要的额外线程安全（例如切回 UI 线程）由调用方负责。
type Callback func(ev domain.Event)

func (c Callback) OnEvent(ev domain.Event) {
	if c != nil {
		c(ev)
	}
}
