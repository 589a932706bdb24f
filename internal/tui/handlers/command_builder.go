package handlers

import (
	"context"
	"fmt"

	"github.com/NguyenHuynhPhuVinh/pvz-launcher/internal/infra/host"
	"github.com/NguyenHuynhPhuVinh/pvz-launcher/internal/pkg/logger"
	"github.com/NguyenHuynhPhuVinh/pvz-launcher/internal/tui/msg"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// CommandBuilder 構建異步 tea.Cmd，結果以消息形式回到 Update 循環
type CommandBuilder struct {
	log         *zap.Logger
	ctx         context.Context
	prober      ExistenceProber
	invoker     host.Invoker
	installPath func() (string, error)
}

// NewCommandBuilder 構造函數
func NewCommandBuilder(cfg *Config) *CommandBuilder {
	ctx := cfg.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}

	return &CommandBuilder{
		log:         log,
		ctx:         ctx,
		prober:      cfg.Prober,
		invoker:     cfg.Invoker,
		installPath: cfg.InstallPath,
	}
}

// CheckInstallCmd 探測遊戲是否已安裝
func (b *CommandBuilder) CheckInstallCmd(source msg.CheckSource) tea.Cmd {
	return func() tea.Msg {
		if b.installPath == nil || b.prober == nil {
			return msg.InstallCheckedMsg{Source: source, Err: fmt.Errorf("安裝探測未配置")}
		}

		path, err := b.installPath()
		if err != nil {
			return msg.InstallCheckedMsg{Source: source, Err: fmt.Errorf("解析安裝路徑失敗: %w", err)}
		}

		exists, err := b.prober.Exists(path)
		if err != nil {
			return msg.InstallCheckedMsg{Path: path, Source: source, Err: fmt.Errorf("檢查安裝路徑失敗: %w", err)}
		}

		b.log.Debug("安裝探測完成",
			zap.String("path", path),
			zap.Bool("installed", exists),
			zap.Int("source", int(source)),
		)
		return msg.InstallCheckedMsg{Installed: exists, Path: path, Source: source}
	}
}

// DownloadCmd 調用 download_and_unzip_game
func (b *CommandBuilder) DownloadCmd() tea.Cmd {
	return func() tea.Msg {
		return msg.DownloadResultMsg{Err: b.invoke(host.CmdDownloadAndUnzipGame)}
	}
}

// LaunchCmd 調用 launch_game
func (b *CommandBuilder) LaunchCmd() tea.Cmd {
	return func() tea.Msg {
		return msg.LaunchResultMsg{Err: b.invoke(host.CmdLaunchGame)}
	}
}

func (b *CommandBuilder) invoke(name string) error {
	if b.invoker == nil {
		b.log.Warn("後端未就緒，忽略調用", logger.Command(name))
		return fmt.Errorf("%s: 後端未就緒", name)
	}

	b.log.Debug("發起遠程調用", logger.Command(name))
	err := b.invoker.Invoke(b.ctx, name)
	if err != nil {
		b.log.Debug("遠程調用返回錯誤", logger.Command(name), zap.Error(err))
	}
	return err
}
