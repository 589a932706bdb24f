package handlers

import (
	"context"

	"github.com/NguyenHuynhPhuVinh/pvz-launcher/internal/infra/events"
	"github.com/NguyenHuynhPhuVinh/pvz-launcher/internal/infra/host"
	"github.com/NguyenHuynhPhuVinh/pvz-launcher/internal/tui/state"
	"go.uber.org/zap"
)

// ExistenceProber 文件存在性探測
type ExistenceProber interface {
	Exists(path string) (bool, error)
}

// EventSource 事件通道的訂閱端
type EventSource interface {
	Listen(channel string, h events.Handler) (events.Unlisten, error)
}

// Config 用於初始化 Handlers 的配置結構體
type Config struct {
	Log         *zap.Logger
	Ctx         context.Context
	StateMgr    *state.Manager
	Prober      ExistenceProber
	Invoker     host.Invoker
	Events      EventSource
	InstallPath func() (string, error)
}
