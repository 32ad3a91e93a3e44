package domain

import "time"

// RunResult 是一次运行的对外稳定输出（stdout JSON / 结束摘要）。
type RunResult struct {
	Input  string `json:"input"`
	Sheet  string `json:"sheet"`
	OutDir string `json:"out_dir"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Total     int `json:"total"`
	Processed int `json:"processed"`
	Skipped   int `json:"skipped"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	Cancelled int `json:"cancelled"`
}

// Finalize 把时间统一为 UTC（保证 JSON 为 RFC3339 且后缀 Z）。
func (r *RunResult) Finalize() {
	r.StartedAt = r.StartedAt.UTC()
	r.FinishedAt = r.FinishedAt.UTC()
}
