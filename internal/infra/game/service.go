package game

import (
	"context"
	"net/http"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	domainConfig "github.com/NguyenHuynhPhuVinh/pvz-launcher/internal/domain/config"
	"github.com/NguyenHuynhPhuVinh/pvz-launcher/internal/infra/events"
	"github.com/NguyenHuynhPhuVinh/pvz-launcher/internal/infra/fsys"
	"github.com/NguyenHuynhPhuVinh/pvz-launcher/internal/infra/github"
	"github.com/NguyenHuynhPhuVinh/pvz-launcher/internal/infra/host"
	"github.com/NguyenHuynhPhuVinh/pvz-launcher/internal/pkg/appctx"
)

// 進度事件中的狀態文本
const (
	StatusDownloadStarted  = "Downloading..."
	StatusDownloadFinished = "Download finished. Extracting..."
	StatusInstallComplete  = "Installation complete!"
)

// AssetResolver 解析遊戲壓縮包下載地址
type AssetResolver interface {
	LatestAsset(ctx context.Context) (*github.Asset, error)
}

// Emitter 進度事件發送
type Emitter interface {
	Emit(channel string, payload any)
}

// Service 遊戲下載、安裝與啟動
type Service struct {
	fs       afero.Fs
	probe    *fsys.Probe
	client   *http.Client
	resolver AssetResolver
	emitter  Emitter
	opener   Opener
	paths    *appctx.Paths
	cfg      *domainConfig.Config
	log      *zap.Logger
}

// Config 服務依賴
type Config struct {
	Fs       afero.Fs
	Client   *http.Client
	Resolver AssetResolver
	Emitter  Emitter
	Opener   Opener
	Paths    *appctx.Paths
	Launcher *domainConfig.Config
	Log      *zap.Logger
}

func NewService(cfg Config) *Service {
	opener := cfg.Opener
	if opener == nil {
		opener = SystemOpener{}
	}
	client := cfg.Client
	if client == nil {
		client = http.DefaultClient
	}
	return &Service{
		fs:       cfg.Fs,
		probe:    fsys.NewProbe(cfg.Fs),
		client:   client,
		resolver: cfg.Resolver,
		emitter:  cfg.Emitter,
		opener:   opener,
		paths:    cfg.Paths,
		cfg:      cfg.Launcher,
		log:      cfg.Log,
	}
}

// Register 將服務命令註冊到宿主
func (s *Service) Register(h *host.Host) {
	h.Register(host.CmdDownloadAndUnzipGame, s.DownloadAndUnzip)
	h.Register(host.CmdLaunchGame, s.Launch)
}

// GameDir 遊戲安裝目錄
func (s *Service) GameDir() string {
	return s.paths.GameDir(s.cfg.Game.Subdir)
}

// ExecutablePath 遊戲可執行文件路徑
func (s *Service) ExecutablePath() string {
	return s.paths.InstallPath(s.cfg.Game.Subdir, s.cfg.Game.Executable)
}

func (s *Service) emit(percentage float64, status string) {
	s.emitter.Emit(events.DownloadProgress, events.ProgressPayload{
		Percentage: percentage,
		Status:     status,
	})
}

// DownloadAndUnzip 下載最新發布的壓縮包並解壓到安裝目錄
func (s *Service) DownloadAndUnzip(ctx context.Context) error {
	asset, err := s.resolver.LatestAsset(ctx)
	if err != nil {
		return err
	}

	archivePath, err := s.download(ctx, asset)
	if err != nil {
		return err
	}
	defer func() {
		if err := s.fs.Remove(archivePath); err != nil {
			s.log.Warn("清理下載暫存失敗", zap.String("path", archivePath), zap.Error(err))
		}
	}()

	s.emit(100, StatusDownloadFinished)

	if err := s.install(archivePath); err != nil {
		return err
	}

	s.emit(100, StatusInstallComplete)
	s.log.Info("遊戲安裝完成",
		zap.String("tag", asset.Tag),
		zap.String("path", s.ExecutablePath()),
	)
	return nil
}

// Launch 啟動已安裝的遊戲
func (s *Service) Launch(ctx context.Context) error {
	return s.launch(ctx)
}
