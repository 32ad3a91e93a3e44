package domain

// WorkItem 是一次下载的最小工作单元，由 Excel 行解析而来，构造后不可变。
//
// DestPath 由记录字段确定性推导：字段完全相同的两行会落到同一路径，
// 后者在预扫描阶段被视为"已存在"。
type WorkItem struct {
	// SourceURL 是已去除查询参数的图片地址。
	SourceURL string
	// DestPath 是输出目录下的目标文件完整路径（含文件名）。
	DestPath string
	// DisplayName 是仅文件名部分，用于进度与日志展示。
	DisplayName string
}
