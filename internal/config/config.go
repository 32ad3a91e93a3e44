// Package config 负责发现/读取 picfetch.yaml，并与 CLI 参数合并为最终配置。
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// ErrCodeNotFound 表示未指定 --input 且 cwd 下没有 picfetch.yaml。
	ErrCodeNotFound = "config_not_found"
	// ErrCodeInvalid 表示配置文件无法读取/解析，或字段不合法。
	ErrCodeInvalid = "config_invalid"
	// ErrCodeMissingInput 表示未指定 --input 且配置文件缺少 input 字段。
	ErrCodeMissingInput = "config_missing_input"
)

const (
	// FileName 是配置文件的固定名字（位于工作目录）。
	FileName = "picfetch.yaml"

	DefaultSheet       = "Sheet1"
	DefaultOutDir      = "images"
	DefaultLogDir      = "logs"
	DefaultStartRow    = 2
	DefaultConcurrency = 4
)

// CLIArgs 保存 CLI 暴露的参数，并保留"是否显式指定"的信息。
// 这能保证覆盖优先级可实现：例如 --concurrency 1 必须能覆盖配置文件里的 8。
type CLIArgs struct {
	Input    string
	InputSet bool

	Sheet    string
	SheetSet bool

	OutDir    string
	OutDirSet bool

	StartRow    int
	StartRowSet bool

	EndRow    int
	EndRowSet bool

	Limit    int
	LimitSet bool

	Concurrency    int
	ConcurrencySet bool
}

// FileConfig 对应 picfetch.yaml 的解析结构。
type FileConfig struct {
	Input       string `yaml:"input"`
	Sheet       string `yaml:"sheet"`
	OutDir      string `yaml:"out_dir"`
	LogDir      string `yaml:"log_dir"`
	StartRow    int    `yaml:"start_row"`
	EndRow      int    `yaml:"end_row"`
	Limit       int    `yaml:"limit"`
	Concurrency int    `yaml:"concurrency"`
	ProxyURL    string `yaml:"proxy_url"`
}

// Effective 是合并并做最小规范化后的最终配置
// （实现层直接消费，不再做二次默认/优先级判断）。
type Effective struct {
	Input  string
	Sheet  string
	OutDir string
	LogDir string

	// StartRow/EndRow 为含端点的 1 起行号；EndRow=0 表示到最后一行。
	StartRow int
	EndRow   int

	// Limit=0 表示不限制；>0 时提取序列截断到前 Limit 条（用于试运行）。
	Limit int

	Concurrency int

	// ProxyURL 可选：非空时图片下载走该代理（仅配置文件可设，不暴露 CLI 参数）。
	ProxyURL string
}

// Error 是配置阶段的结构化错误（带 error_code）。
type Error struct {
	Code string
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch e.Code {
	case ErrCodeNotFound:
		return fmt.Sprintf("%s：未找到配置文件 %q 且未指定 --input", e.Code, e.Path)
	case ErrCodeMissingInput:
		return fmt.Sprintf("%s：配置文件 %q 缺少必填字段 input", e.Code, e.Path)
	case ErrCodeInvalid:
		if e.Err != nil {
			return fmt.Sprintf("%s：配置无效：%v", e.Code, e.Err)
		}
		return fmt.Sprintf("%s：配置无效", e.Code)
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

// LoadEffective 读取 <cwd>/picfetch.yaml（存在则用，缺失则全走默认），
// 再与 CLI 参数合并为最终配置。
//
// 覆盖优先级（固定）：CLI 显式指定 > 配置文件 > 内置默认。
// 仅当 CLI 未给 --input 时配置文件才是必选（且必须包含 input）。
func LoadEffective(cwd string, cli CLIArgs) (Effective, error) {
	cfgPath := filepath.Join(cwd, FileName)

	fc, exists, err := readFileConfig(cfgPath)
	if err != nil {
		return Effective{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}

	if !cli.InputSet || strings.TrimSpace(cli.Input) == "" {
		if !exists {
			return Effective{}, &Error{Code: ErrCodeNotFound, Path: cfgPath, Err: os.ErrNotExist}
		}
		if strings.TrimSpace(fc.Input) == "" {
			return Effective{}, &Error{Code: ErrCodeMissingInput, Path: cfgPath}
		}
	}

	return merge(cli, fc, cfgPath)
}

func merge(cli CLIArgs, fc FileConfig, cfgPath string) (Effective, error) {
	eff := Effective{
		Input:       pickString(cli.InputSet, cli.Input, fc.Input, ""),
		Sheet:       pickString(cli.SheetSet, cli.Sheet, fc.Sheet, DefaultSheet),
		OutDir:      pickString(cli.OutDirSet, cli.OutDir, fc.OutDir, DefaultOutDir),
		LogDir:      pickString(false, "", fc.LogDir, DefaultLogDir),
		StartRow:    pickInt(cli.StartRowSet, cli.StartRow, fc.StartRow, DefaultStartRow),
		EndRow:      pickInt(cli.EndRowSet, cli.EndRow, fc.EndRow, 0),
		Limit:       pickInt(cli.LimitSet, cli.Limit, fc.Limit, 0),
		Concurrency: pickInt(cli.ConcurrencySet, cli.Concurrency, fc.Concurrency, DefaultConcurrency),
		ProxyURL:    strings.TrimSpace(fc.ProxyURL),
	}

	if strings.TrimSpace(eff.Input) == "" {
		return Effective{}, &Error{Code: ErrCodeMissingInput, Path: cfgPath}
	}
	if eff.StartRow < 1 {
		return Effective{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: fmt.Errorf("start_row 必须 >= 1，实际是 %d", eff.StartRow)}
	}
	if eff.EndRow < 0 || (eff.EndRow > 0 && eff.EndRow < eff.StartRow) {
		return Effective{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: fmt.Errorf("end_row 必须为 0（到最后一行）或 >= start_row，实际是 %d", eff.EndRow)}
	}
	if eff.Limit < 0 {
		return Effective{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: fmt.Errorf("limit 必须 >= 0，实际是 %d", eff.Limit)}
	}

	// 文档约定：并发范围建议 [1, 32]；超出截断。
	if eff.Concurrency < 1 {
		eff.Concurrency = 1
	}
	if eff.Concurrency > 32 {
		eff.Concurrency = 32
	}

	if eff.ProxyURL != "" {
		u, err := url.Parse(eff.ProxyURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return Effective{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: fmt.Errorf("proxy_url 无效：%q", eff.ProxyURL)}
		}
	}

	return eff, nil
}

func pickString(cliSet bool, cliVal, fileVal, def string) string {
	if cliSet && strings.TrimSpace(cliVal) != "" {
		return cliVal
	}
	if strings.TrimSpace(fileVal) != "" {
		return fileVal
	}
	return def
}

func pickInt(cliSet bool, cliVal, fileVal, def int) int {
	if cliSet {
		return cliVal
	}
	if fileVal != 0 {
		return fileVal
	}
	return def
}

// readFileConfig 读取并解析 YAML 配置文件。
// 返回值 exists 表示该文件是否存在（不存在不算错误）。
func readFileConfig(path string) (fc FileConfig, exists bool, err error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, false, nil
		}
		return FileConfig{}, false, err
	}
	if err := yaml.Unmarshal(b, &fc); err != nil {
		return FileConfig{}, true, err
	}
	return fc, true, nil
}
