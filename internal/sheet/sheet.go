// Package sheet 负责从 Excel 工作簿读取记录并产出 WorkItem 序列。
//
// 致命错误（文件不可读/工作表不存在/表头缺列）都在这里抛出：
// 它们发生在任何下载开始之前，也在输出目录创建之前。
package sheet

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/wshuo/picfetch/internal/domain"
	"github.com/wshuo/picfetch/internal/namegen"
)

const (
	// ErrCodeInputUnreadable 表示 Excel 文件无法打开/解析。
	ErrCodeInputUnreadable = "input_unreadable"
	// ErrCodeSheetMissing 表示指定工作表不存在。
	ErrCodeSheetMissing = "sheet_missing"
	// ErrCodeHeaderMissing 表示表头缺少必要列。
	ErrCodeHeaderMissing = "header_missing"
)

// RequiredColumns 是表头必须包含的列名（顺序即文件名字段顺序，imageUrl 除外）。
var RequiredColumns = []string{"一级", "二级1", "二级2", "三级", "品牌", "条码", "imageUrl"}

// Error 是读取阶段的结构化致命错误（带 error_code）。
type Error struct {
	Code    string
	Path    string
	Sheet   string
	Missing []string
	Err     error
}

func (e *Error) Error() string {
	switch e.Code {
	case ErrCodeInputUnreadable:
		return fmt.Sprintf("%s：无法读取 Excel 文件 %q：%v", e.Code, e.Path, e.Err)
	case ErrCodeSheetMissing:
		return fmt.Sprintf("%s：工作表不存在：%q", e.Code, e.Sheet)
	case ErrCodeHeaderMissing:
		return fmt.Sprintf("%s：Excel 表头缺少必要列：%v", e.Code, e.Missing)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s：%v", e.Code, e.Err)
		}
		return e.Code
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Code 从 error 中提取 error_code；若不是 *Error 则返回空串。
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Table 是读入内存的工作表快照：任何下载开始前已完整加载，此后只读。
type Table struct {
	Sheet  string
	header map[string]int
	rows   [][]string
}

// Load 打开工作簿并完整读取指定工作表，校验表头后返回快照。
func Load(path, sheetName string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &Error{Code: ErrCodeInputUnreadable, Path: path, Err: err}
	}
	defer f.Close()

	found := false
	for _, name := range f.GetSheetList() {
		if name == sheetName {
			found = true
			break
		}
	}
	if !found {
		return nil, &Error{Code: ErrCodeSheetMissing, Path: path, Sheet: sheetName}
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, &Error{Code: ErrCodeInputUnreadable, Path: path, Sheet: sheetName, Err: err}
	}

	var headerRow []string
	if len(rows) > 0 {
		headerRow = rows[0]
	}
	header, missing := indexHeader(headerRow)
	if len(missing) > 0 {
		return nil, &Error{Code: ErrCodeHeaderMissing, Path: path, Sheet: sheetName, Missing: missing}
	}

	return &Table{Sheet: sheetName, header: header, rows: rows}, nil
}

// LastRow 返回最后一行的行号（1 起）。
func (t *Table) LastRow() int { return len(t.rows) }

// Extract 按配置的行范围产出有序 WorkItem 序列。
//
// - URL 为空的行整行跳过（不计入 total）
// - URL 查询参数在使用前截断
// - 目标路径 = outDir/Build(一级..条码)
// - 行序保持（表格行序 = 工作项顺序）
// - limit>0 时在提取完成后截断到前 limit 条，其余既不计数也不提交
func (t *Table) Extract(outDir string, startRow, endRow, limit int) []domain.WorkItem {
	if startRow < 1 {
		startRow = 1
	}
	last := t.LastRow()
	if endRow <= 0 || endRow > last {
		endRow = last
	}

	items := make([]domain.WorkItem, 0, 64)
	for rowNum := startRow; rowNum <= endRow; rowNum++ {
		row := t.rows[rowNum-1]

		url := namegen.StripQuery(t.cell(row, "imageUrl"))
		if strings.TrimSpace(url) == "" {
			continue
		}

		name := namegen.Build([]string{
			t.cell(row, "一级"),
			t.cell(row, "二级1"),
			t.cell(row, "二级2"),
			t.cell(row, "三级"),
			t.cell(row, "品牌"),
			t.cell(row, "条码"),
		})

		items = append(items, domain.WorkItem{
			SourceURL:   url,
			DestPath:    filepath.Join(outDir, name),
			DisplayName: name,
		})
	}

	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}

// cell 按列名取值；行尾空单元格可能被 excelize 截断，越界按空处理。
func (t *Table) cell(row []string, column string) string {
	idx, ok := t.header[column]
	if !ok || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// indexHeader 建立"列名 -> 下标"映射（列名两端空白去除；重名时后者胜出），
// 并返回缺失的必要列。
func indexHeader(headerRow []string) (map[string]int, []string) {
	header := make(map[string]int, len(headerRow))
	for idx, name := range headerRow {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		header[name] = idx
	}

	missing := make([]string, 0)
	for _, col := range RequiredColumns {
		if _, ok := header[col]; !ok {
			missing = append(missing, col)
		}
	}
	return header, missing
}
