package state

import (
	"go.uber.org/zap"
)

// Manager 狀態管理器 (State Container)
type Manager struct {
	log      *zap.Logger
	ui       *UIState
	launcher *LauncherState
}

// NewManager 創建狀態管理器
func NewManager(log *zap.Logger) *Manager {
	return &Manager{
		log:      log,
		ui:       NewUIState(),
		launcher: NewLauncherState(),
	}
}

func (m *Manager) UI() *UIState             { return m.ui }
func (m *Manager) Launcher() *LauncherState { return m.launcher }
