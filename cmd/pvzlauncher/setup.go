package main

import (
	"context"
	"net/http"

	domainConfig "github.com/NguyenHuynhPhuVinh/pvz-launcher/internal/domain/config"
	infraConfig "github.com/NguyenHuynhPhuVinh/pvz-launcher/internal/infra/config"
	"github.com/NguyenHuynhPhuVinh/pvz-launcher/internal/infra/events"
	"github.com/NguyenHuynhPhuVinh/pvz-launcher/internal/infra/fsys"
	"github.com/NguyenHuynhPhuVinh/pvz-launcher/internal/infra/game"
	"github.com/NguyenHuynhPhuVinh/pvz-launcher/internal/infra/github"
	"github.com/NguyenHuynhPhuVinh/pvz-launcher/internal/infra/host"
	"github.com/NguyenHuynhPhuVinh/pvz-launcher/internal/pkg/appctx"
	"github.com/NguyenHuynhPhuVinh/pvz-launcher/internal/tui/handlers"
	"github.com/NguyenHuynhPhuVinh/pvz-launcher/internal/tui/state"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

type AppDependencies struct {
	Log           *zap.Logger
	Paths         *appctx.Paths
	Config        *domainConfig.Config
	Bus           *events.Bus
	Host          *host.Host
	Game          *game.Service
	HandlerConfig *handlers.Config
}

// loadConfig 加載配置，失敗時使用默認值，不阻止啟動
func loadConfig(ctx context.Context, fs afero.Fs, log *zap.Logger, path string) *domainConfig.Config {
	repo := infraConfig.NewFileRepository(fs, path, log)

	cfg, err := repo.LoadOrInit(ctx)
	if err != nil {
		log.Warn("加載配置失敗，使用默認值", zap.String("path", path), zap.Error(err))
		return domainConfig.DefaultConfig()
	}
	return cfg
}

func initializeDependencies(
	ctx context.Context,
	fs afero.Fs,
	log *zap.Logger,
	paths *appctx.Paths,
	cfg *domainConfig.Config,
) *AppDependencies {
	// ==========================================
	// 1. 宿主側 (事件總線 / 命令表 / 遊戲服務)
	// ==========================================
	bus := events.NewBus(log)
	commands := host.New(log)
	client := &http.Client{}

	resolver := github.NewResolver(client, cfg, log)
	gameSvc := game.NewService(game.Config{
		Fs:       fs,
		Client:   client,
		Resolver: resolver,
		Emitter:  bus,
		Paths:    paths,
		Launcher: cfg,
		Log:      log,
	})
	gameSvc.Register(commands)

	// ==========================================
	// 2. 界面側
	// ==========================================
	stateMgr := state.NewManager(log)

	handlerCfg := &handlers.Config{
		Log:      log,
		Ctx:      ctx,
		StateMgr: stateMgr,
		Prober:   fsys.NewProbe(fs),
		Invoker:  commands,
		Events:   bus,
		InstallPath: func() (string, error) {
			return gameSvc.ExecutablePath(), nil
		},
	}

	return &AppDependencies{
		Log:           log,
		Paths:         paths,
		Config:        cfg,
		Bus:           bus,
		Host:          commands,
		Game:          gameSvc,
		HandlerConfig: handlerCfg,
	}
}
