package constants

const (
	KeyQuit    = "q"      // 退出
	KeyCtrlC   = "ctrl+c" // 強制退出
	KeyEnter   = "enter"  // 觸發按鈕
	KeySpace   = " "      // 觸發按鈕
	KeyInstall = "i"      // 觸發按鈕 (安裝)
	KeyPlay    = "p"      // 觸發按鈕 (啟動)
)
