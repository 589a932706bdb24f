package style

import "github.com/charmbracelet/lipgloss"

// 配色方案 (暗色終端)
var (
	FutureGreen = lipgloss.Color("#B2FF00") // 螢光綠 - 可遊玩
	SkyBlue     = lipgloss.Color("#1AAEFC") // 天藍 - 標題/進度
	Violet      = lipgloss.Color("#DDAAFF") // 紫羅蘭 - 按鈕
	Yellow      = lipgloss.Color("#FFDC65") // 明黃 - 未安裝
	Red         = lipgloss.Color("#FF007F") // 紅色 - 錯誤

	White    = lipgloss.Color("#F3F3F0")
	Gray     = lipgloss.Color("#C0C0C0")
	DarkGray = lipgloss.Color("#8A8783")

	BgMedium = lipgloss.Color("#2a2a2a")
	BgLight  = lipgloss.Color("#3a3a3a")
)

// 功能顏色映射
var (
	Primary = SkyBlue
	Text    = White
	Muted   = DarkGray
	Success = FutureGreen
	Warning = Yellow
	Error   = Red
)
