package errors

import (
	"errors"
	"fmt"
)

// 預定義錯誤類型
var (
	// 配置相關
	ErrConfigInvalid     = errors.New("configuration is invalid")
	ErrConfigParseFailed = errors.New("failed to parse configuration")

	// 發布與下載
	ErrReleaseLookup     = errors.New("failed to look up latest release")
	ErrAssetNotFound     = errors.New("release asset not found")
	ErrDownloadFailed    = errors.New("download failed")
	ErrUnsafeArchivePath = errors.New("archive entry escapes target directory")

	// 遊戲相關
	ErrGameNotInstalled = errors.New("game is not installed")
	ErrLaunchFailed     = errors.New("failed to launch game")

	// 宿主調用
	ErrCommandNotFound = errors.New("command not found")
	ErrChannelEmpty    = errors.New("event channel name is empty")
)

// 錯誤碼
const (
	CodeConfig   = "CFG001"
	CodeRelease  = "REL001"
	CodeDownload = "DL001"
	CodeExtract  = "DL002"
	CodeLaunch   = "GAME001"
	CodeInvoke   = "HOST001"
)

// Error 自定義錯誤類型
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New 創建新錯誤
func New(code, message string) error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Wrap 包裝錯誤
func Wrap(err error, code, message string) error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// CodeOf 返回錯誤鏈中第一個自定義錯誤的錯誤碼
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
