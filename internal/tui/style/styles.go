package style

import (
	"github.com/charmbracelet/lipgloss"
)

// ContentWidth 主體內容寬度
const ContentWidth = 60

var (
	// 標題
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary).
			Padding(0, 2).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary)

	// 狀態文本
	StatusTextStyle = lipgloss.NewStyle().
			Foreground(Text).
			Width(ContentWidth).
			Align(lipgloss.Center)

	// 按鈕
	ButtonStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(BgMedium).
			Background(Violet).
			Padding(0, 3)

	// 禁用的按鈕
	ButtonDisabledStyle = lipgloss.NewStyle().
				Foreground(Muted).
				Background(BgLight).
				Padding(0, 3)

	// 幫助
	HelpStyle = lipgloss.NewStyle().
			Foreground(Muted).
			Italic(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(Gray)
)

// StatusColor 根據啟動器狀態名返回顏色
func StatusColor(status string) lipgloss.Color {
	switch status {
	case "ready":
		return Success
	case "not_installed":
		return Warning
	case "downloading":
		return Primary
	default:
		return Muted
	}
}
