package model

import (
	"errors"
	"strings"

	"github.com/NguyenHuynhPhuVinh/pvz-launcher/internal/tui/handlers"
	"github.com/NguyenHuynhPhuVinh/pvz-launcher/internal/tui/msg"
	"github.com/NguyenHuynhPhuVinh/pvz-launcher/internal/tui/state"
	"github.com/NguyenHuynhPhuVinh/pvz-launcher/internal/tui/view"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// completeMarker 進度狀態中出現該子串即視為安裝完成
const completeMarker = "complete"

// Router 事件路由器
type Router struct {
	stateMgr   *state.Manager
	keyHandler *handlers.KeyHandler
	cmdBuilder *handlers.CommandBuilder
	events     handlers.EventSource
	log        *zap.Logger

	sub       *handlers.ProgressSubscription
	unobserve func()
	closed    bool
}

// NewRouter 創建路由器
func NewRouter(cfg *handlers.Config) *Router {
	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
		cfg.Log = log
	}

	cmdBuilder := handlers.NewCommandBuilder(cfg)
	keyHandler := handlers.NewKeyHandler(cfg.StateMgr, cmdBuilder)

	r := &Router{
		stateMgr:   cfg.StateMgr,
		keyHandler: keyHandler,
		cmdBuilder: cmdBuilder,
		events:     cfg.Events,
		log:        log,
	}

	last := cfg.StateMgr.Launcher().Status()
	r.unobserve = cfg.StateMgr.Launcher().Subscribe(func(s state.Snapshot) {
		if s.Status != last {
			log.Debug("啟動器狀態變化",
				zap.Stringer("from", last),
				zap.Stringer("to", s.Status),
				zap.Bool("installed", s.IsGameInstalled),
			)
			last = s.Status
		}
	})

	return r
}

// InitModel 用於 Model.Init 調用
// 安裝探測與事件訂閱同時發起，二者完成順序不做假設
func (r *Router) InitModel() tea.Cmd {
	cmds := []tea.Cmd{
		r.cmdBuilder.CheckInstallCmd(msg.CheckOnMount),
		r.stateMgr.UI().Spinner.Tick,
	}

	if r.events != nil && r.sub == nil && !r.closed {
		sub, err := handlers.SubscribeProgress(r.events, r.log)
		if err != nil {
			r.log.Error("訂閱下載進度失敗", zap.Error(err))
		} else {
			r.sub = sub
			cmds = append(cmds, sub.Next())
		}
	}

	return tea.Batch(cmds...)
}

// Update 適配 bubbletea 的 Update 簽名
func (r *Router) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	return nil, r.routeMessage(message)
}

// View 適配 bubbletea 的 View 簽名
func (r *Router) View() string {
	return view.RenderLauncher(r.stateMgr)
}

// Close 卸載：取消進度訂閱，之後的進度事件不再修改狀態
func (r *Router) Close() {
	if r.closed {
		return
	}
	r.closed = true

	if r.sub != nil {
		r.sub.Close()
	}
	if r.unobserve != nil {
		r.unobserve()
	}
	r.log.Debug("進度訂閱已釋放")
}

// routeMessage 內部路由邏輯
func (r *Router) routeMessage(message tea.Msg) tea.Cmd {
	m := r.stateMgr

	switch msgType := message.(type) {

	case tea.WindowSizeMsg:
		m.UI().UpdateSize(msgType.Width, msgType.Height)
		return nil

	case tea.KeyMsg:
		return r.keyHandler.Handle(msgType)

	case spinner.TickMsg:
		// 只有探測階段顯示 spinner
		if m.Launcher().Status() != state.StatusChecking {
			return nil
		}
		var cmd tea.Cmd
		m.UI().Spinner, cmd = m.UI().Spinner.Update(msgType)
		return cmd

	case msg.InstallCheckedMsg:
		return r.handleInstallChecked(msgType)

	case msg.ProgressMsg:
		if r.closed || r.sub == nil {
			return nil
		}
		r.applyProgress(msgType)
		return r.sub.Next()

	case msg.SubscriptionClosedMsg:
		return nil

	case msg.DownloadResultMsg:
		if msgType.Err != nil {
			r.log.Error("下載安裝遊戲失敗", zap.Error(msgType.Err))
			m.Launcher().SetStatus(state.StatusNotInstalled)
			m.UI().SetNotice(state.NoticeError, "Download failed: "+rootCause(msgType.Err))
			return nil
		}

		// 完成事件可能尚未送達，補一次探測
		if m.Launcher().Status() == state.StatusDownloading {
			return r.cmdBuilder.CheckInstallCmd(msg.CheckAfterDownload)
		}
		return nil

	case msg.LaunchResultMsg:
		if msgType.Err != nil {
			r.log.Error("啟動遊戲失敗", zap.Error(msgType.Err))
			m.UI().SetNotice(state.NoticeError, "Launch failed: "+rootCause(msgType.Err))
			return nil
		}
		m.UI().SetNotice(state.NoticeInfo, "Game launched.")
		return nil
	}

	return nil
}

func (r *Router) handleInstallChecked(res msg.InstallCheckedMsg) tea.Cmd {
	launcher := r.stateMgr.Launcher()

	if res.Source == msg.CheckAfterDownload {
		// 期間已由完成事件改變狀態則不再覆蓋
		if launcher.Status() != state.StatusDownloading {
			return nil
		}
		if res.Err == nil && res.Installed {
			launcher.SetIsGameInstalled(true)
			launcher.SetStatus(state.StatusReady)
			return nil
		}
		r.log.Warn("下載完成但未找到遊戲", zap.String("path", res.Path), zap.Error(res.Err))
		launcher.SetStatus(state.StatusNotInstalled)
		r.stateMgr.UI().SetNotice(state.NoticeError, "Game files not found after installation.")
		return nil
	}

	if res.Err != nil {
		r.log.Error("檢查遊戲安裝狀態失敗", zap.String("path", res.Path), zap.Error(res.Err))
		launcher.SetStatus(state.StatusNotInstalled)
		return nil
	}

	r.log.Info("遊戲安裝狀態", zap.String("path", res.Path), zap.Bool("installed", res.Installed))
	launcher.SetIsGameInstalled(res.Installed)
	if res.Installed {
		launcher.SetStatus(state.StatusReady)
	} else {
		launcher.SetStatus(state.StatusNotInstalled)
	}
	return nil
}

func (r *Router) applyProgress(p msg.ProgressMsg) {
	launcher := r.stateMgr.Launcher()
	launcher.SetProgress(p.Payload.Percentage)

	if strings.Contains(p.Payload.Status, completeMarker) {
		launcher.SetStatus(state.StatusReady)
		launcher.SetIsGameInstalled(true)
	}
}

// rootCause 取最內層錯誤信息，用於提示行
func rootCause(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}
