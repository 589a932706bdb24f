package view

import (
	"fmt"

	"github.com/NguyenHuynhPhuVinh/pvz-launcher/internal/tui/state"
	"github.com/NguyenHuynhPhuVinh/pvz-launcher/internal/tui/style"
	"github.com/charmbracelet/lipgloss"
)

// 狀態文本
const (
	TextNotInstalled = "Game is not installed."
	TextReady        = "Game is ready to play!"
)

// 按鈕文本
const (
	LabelInstall     = "Install Game"
	LabelDownloading = "Downloading..."
	LabelPlay        = "Play Game"
)

// StatusText 返回狀態文本，checking 時為空
func StatusText(s state.Snapshot) string {
	switch s.Status {
	case state.StatusDownloading:
		return fmt.Sprintf("Downloading... %.2f%%", s.Progress)
	case state.StatusNotInstalled:
		return TextNotInstalled
	case state.StatusReady:
		return TextReady
	default:
		return ""
	}
}

// ButtonLabel 返回按鈕文本，checking 時沿用 Play Game
func ButtonLabel(s state.Status) string {
	switch s {
	case state.StatusNotInstalled:
		return LabelInstall
	case state.StatusDownloading:
		return LabelDownloading
	default:
		return LabelPlay
	}
}

// ButtonDisabled 僅下載中禁用
func ButtonDisabled(s state.Status) bool {
	return s == state.StatusDownloading
}

// RenderLauncher 渲染啟動器主界面
func RenderLauncher(m *state.Manager) string {
	snap := m.Launcher().Snapshot()
	ui := m.UI()

	width := style.ContentWidth
	if ui.Width > 0 && ui.Width < width {
		width = ui.Width
	}

	var lines []string
	lines = append(lines,
		RenderLogo(),
		"",
		center(style.TitleStyle.Render(Title), width),
		"",
	)

	// 1. 狀態行
	if snap.Status == state.StatusChecking {
		lines = append(lines, center(ui.Spinner.View(), width))
	} else {
		text := truncate(StatusText(snap), width)
		lines = append(lines, style.StatusTextStyle.
			Width(width).
			Foreground(style.StatusColor(snap.Status.String())).
			Render(text))
	}

	// 2. 進度條
	if snap.Status == state.StatusDownloading {
		lines = append(lines, "", center(ui.Progress.ViewAs(clampRatio(snap.Progress)), width))
	}

	// 3. 按鈕
	lines = append(lines, "", center(renderButton(snap.Status), width))

	// 4. 提示行
	if notice := renderNotice(ui.Notice, width); notice != "" {
		lines = append(lines, "", notice)
	}

	lines = append(lines, "", style.HelpStyle.Render(truncate("enter/space: action • q: quit", width)))

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderButton(s state.Status) string {
	label := ButtonLabel(s)
	if ButtonDisabled(s) {
		return style.ButtonDisabledStyle.Render(label)
	}
	return style.ButtonStyle.Render(label)
}

func renderNotice(n state.Notice, width int) string {
	switch n.Type {
	case state.NoticeError:
		return style.ErrorStyle.Render(truncate(n.Message, width))
	case state.NoticeInfo:
		return style.InfoStyle.Render(truncate(n.Message, width))
	default:
		return ""
	}
}

// clampRatio 百分比轉為 0..1，超出範圍的值只影響繪製
func clampRatio(pct float64) float64 {
	r := pct / 100
	if r < 0 {
		return 0
	}
	if r > 1 {
		return 1
	}
	return r
}
