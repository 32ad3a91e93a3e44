package domain

const (
	StatusSkipped   = "skipped"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
)

// Outcome 是单个 WorkItem 的处理结果。
//
// Failed 时 SourceURL 与 Err 必填（错误日志需要）；其余状态只保证 DisplayName。
type Outcome struct {
	Status      string
	DisplayName string
	SourceURL   string
	Err         error
}

func Skipped(name string) Outcome {
	return Outcome{Status: StatusSkipped, DisplayName: name}
}

func Succeeded(name string) Outcome {
	return Outcome{Status: StatusSucceeded, DisplayName: name}
}

func Failed(name, url string, err error) Outcome {
	return Outcome{Status: StatusFailed, DisplayName: name, SourceURL: url, Err: err}
}

func Cancelled(name string) Outcome {
	return Outcome{Status: StatusCancelled, DisplayName: name}
}
