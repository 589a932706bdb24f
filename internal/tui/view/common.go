package view

import (
	"github.com/NguyenHuynhPhuVinh/pvz-launcher/internal/tui/style"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// Title 啟動器標題
const Title = "PvZ RH Fusion Launcher"

// RenderLogo 渲染 PVZ ASCII Logo
func RenderLogo() string {
	logoLines := []string{
		"██████╗ ██╗   ██╗███████╗",
		"██╔══██╗██║   ██║╚══███╔╝",
		"██████╔╝██║   ██║  ███╔╝ ",
		"██╔═══╝ ╚██╗ ██╔╝ ███╔╝  ",
		"██║      ╚████╔╝ ███████╗",
		"╚═╝       ╚═══╝  ╚══════╝",
	}

	gradientColors := []lipgloss.Color{
		lipgloss.Color("#B2FF00"),
		lipgloss.Color("#8FEA3A"),
		lipgloss.Color("#6CD575"),
		lipgloss.Color("#49C0B0"),
		lipgloss.Color("#26ABEB"),
		style.SkyBlue,
	}

	var coloredLines []string
	for i, line := range logoLines {
		coloredLines = append(coloredLines, lipgloss.NewStyle().
			Foreground(gradientColors[i]).
			Width(style.ContentWidth).
			AlignHorizontal(lipgloss.Center).
			Render(line))
	}

	return lipgloss.JoinVertical(lipgloss.Left, coloredLines...)
}

// truncate 按顯示寬度截斷
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(s, width, "…")
}

// center 按顯示寬度居中，支持多行
func center(s string, width int) string {
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, s)
}
