package game

import (
	"context"
	"fmt"

	"github.com/skratchdot/open-golang/open"
	"go.uber.org/zap"

	"github.com/NguyenHuynhPhuVinh/pvz-launcher/internal/pkg/errors"
)

// Opener 以系統默認方式打開文件
type Opener interface {
	Start(path string) error
}

// SystemOpener 使用平台打開命令 (Windows start / macOS open / xdg-open)
type SystemOpener struct{}

func (SystemOpener) Start(path string) error {
	return open.Start(path)
}

func (s *Service) launch(ctx context.Context) error {
	exe := s.ExecutablePath()

	ok, err := s.probe.Exists(exe)
	if err != nil {
		return errors.Wrap(err, errors.CodeLaunch, "檢查可執行文件失敗")
	}
	if !ok {
		return errors.Wrap(errors.ErrGameNotInstalled, errors.CodeLaunch,
			fmt.Sprintf("找不到遊戲可執行文件: %s", exe))
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.opener.Start(exe); err != nil {
		return errors.Wrap(fmt.Errorf("%w: %v", errors.ErrLaunchFailed, err), errors.CodeLaunch, "啟動遊戲失敗")
	}

	s.log.Info("遊戲已啟動", zap.String("path", exe))
	return nil
}
