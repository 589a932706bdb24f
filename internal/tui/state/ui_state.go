package state

import (
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"

	"github.com/NguyenHuynhPhuVinh/pvz-launcher/internal/tui/style"
)

// 進度條寬度範圍
const (
	minBarWidth = 20
	maxBarWidth = 60
)

// NoticeType 提示類型
type NoticeType int

const (
	NoticeNone NoticeType = iota
	NoticeInfo
	NoticeError
)

// Notice 底部提示行，不影響啟動器狀態
type Notice struct {
	Type    NoticeType
	Message string
}

// UIState 界面狀態
type UIState struct {
	Width    int
	Height   int
	Spinner  spinner.Model
	Progress progress.Model
	Notice   Notice
}

// NewUIState 創建 UI 狀態
func NewUIState() *UIState {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(style.Primary)

	p := progress.New(
		progress.WithGradient(string(style.SkyBlue), string(style.FutureGreen)),
		progress.WithoutPercentage(),
	)
	p.Width = 40

	return &UIState{
		Width:    80,
		Height:   24,
		Spinner:  s,
		Progress: p,
	}
}

// UpdateSize 更新尺寸，進度條隨窗口寬度縮放
func (s *UIState) UpdateSize(w, h int) {
	s.Width = w
	s.Height = h

	bar := w - 20
	if bar < minBarWidth {
		bar = minBarWidth
	}
	if bar > maxBarWidth {
		bar = maxBarWidth
	}
	s.Progress.Width = bar
}

// SetNotice 設置提示
func (s *UIState) SetNotice(t NoticeType, msg string) {
	s.Notice = Notice{Type: t, Message: msg}
}

// ClearNotice 清除提示
func (s *UIState) ClearNotice() {
	s.Notice = Notice{}
}
