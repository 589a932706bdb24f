package host

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/NguyenHuynhPhuVinh/pvz-launcher/internal/pkg/errors"
	"github.com/NguyenHuynhPhuVinh/pvz-launcher/internal/pkg/logger"
)

// 遠程調用名稱
const (
	CmdDownloadAndUnzipGame = "download_and_unzip_game"
	CmdLaunchGame           = "launch_game"
)

// Command 宿主命令
type Command func(ctx context.Context) error

// Invoker 界面層看到的調用接口
type Invoker interface {
	Invoke(ctx context.Context, name string) error
}

// Host 命令註冊表，界面只能通過名稱調用
type Host struct {
	mu       sync.RWMutex
	commands map[string]Command
	log      *zap.Logger
}

func New(log *zap.Logger) *Host {
	return &Host{
		commands: make(map[string]Command),
		log:      log,
	}
}

// Register 註冊命令，同名覆蓋
func (h *Host) Register(name string, cmd Command) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.commands[name] = cmd
}

// Invoke 按名稱調用命令
func (h *Host) Invoke(ctx context.Context, name string) (err error) {
	h.mu.RLock()
	cmd, ok := h.commands[name]
	h.mu.RUnlock()

	if !ok {
		return errors.Wrap(errors.ErrCommandNotFound, errors.CodeInvoke, fmt.Sprintf("未註冊的命令 %q", name))
	}

	attempt := uuid.NewString()
	start := time.Now()
	h.log.Info("開始執行命令", logger.Command(name), logger.Attempt(attempt))

	// 命令內部 panic 轉為錯誤返回，不影響界面
	defer func() {
		if r := recover(); r != nil {
			err = errors.Wrap(fmt.Errorf("panic: %v", r), errors.CodeInvoke, "命令執行崩潰")
		}
		if err != nil {
			h.log.Error("命令執行失敗",
				logger.Command(name),
				logger.Attempt(attempt),
				zap.Duration("elapsed", time.Since(start)),
				zap.Error(err),
			)
			return
		}
		h.log.Info("命令執行成功",
			logger.Command(name),
			logger.Attempt(attempt),
			zap.Duration("elapsed", time.Since(start)),
		)
	}()

	return cmd(ctx)
}
