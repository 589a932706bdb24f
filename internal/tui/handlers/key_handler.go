package handlers

import (
	"github.com/NguyenHuynhPhuVinh/pvz-launcher/internal/tui/constants"
	"github.com/NguyenHuynhPhuVinh/pvz-launcher/internal/tui/state"
	tea "github.com/charmbracelet/bubbletea"
)

// KeyHandler 處理按鍵並分發到對應命令
type KeyHandler struct {
	stateMgr   *state.Manager
	cmdBuilder *CommandBuilder
}

func NewKeyHandler(stateMgr *state.Manager, cmdBuilder *CommandBuilder) *KeyHandler {
	return &KeyHandler{
		stateMgr:   stateMgr,
		cmdBuilder: cmdBuilder,
	}
}

// Handle 處理全局按鍵
func (h *KeyHandler) Handle(key tea.KeyMsg) tea.Cmd {
	switch key.String() {
	case constants.KeyCtrlC, constants.KeyQuit:
		return tea.Quit
	case constants.KeyEnter, constants.KeySpace, constants.KeyInstall, constants.KeyPlay:
		return h.Action()
	}
	return nil
}

// Action 主按鈕，行為取決於按下時的狀態
func (h *KeyHandler) Action() tea.Cmd {
	launcher := h.stateMgr.Launcher()

	switch launcher.Status() {
	case state.StatusNotInstalled:
		// 先切換到下載中，再發起調用
		launcher.SetStatus(state.StatusDownloading)
		h.stateMgr.UI().ClearNotice()
		return h.cmdBuilder.DownloadCmd()

	case state.StatusReady:
		h.stateMgr.UI().ClearNotice()
		return h.cmdBuilder.LaunchCmd()

	default:
		// checking / downloading 時按鈕不可用
		return nil
	}
}
