package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	domainConfig "github.com/NguyenHuynhPhuVinh/pvz-launcher/internal/domain/config"
	"github.com/NguyenHuynhPhuVinh/pvz-launcher/internal/pkg/errors"
)

// FileRepository 基於文件的配置倉庫實現
type FileRepository struct {
	fs           afero.Fs
	filePath     string
	mu           sync.RWMutex
	fileMu       sync.Mutex // 用於文件 I/O 的互斥鎖
	logger       *zap.Logger
	cachedConfig *domainConfig.Config
	lastModTime  time.Time
}

func NewFileRepository(fs afero.Fs, path string, logger *zap.Logger) *FileRepository {
	return &FileRepository{
		fs:       fs,
		filePath: path,
		logger:   logger,
	}
}

// Load 加載配置（文件不存在時返回默認配置，文件未變更時使用緩存）
func (r *FileRepository) Load(ctx context.Context) (*domainConfig.Config, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stat, err := r.fs.Stat(r.filePath)
	if os.IsNotExist(err) {
		r.logger.Info("配置文件不存在，使用默認配置", zap.String("path", r.filePath))
		return domainConfig.DefaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("檢查配置文件狀態失敗: %w", err)
	}

	// 緩存命中：必須返回深拷貝，避免外部修改污染緩存
	if r.cachedConfig != nil && !stat.ModTime().After(r.lastModTime) {
		r.logger.Debug("配置未變更，使用內存緩存")
		return r.cachedConfig.DeepCopy(), nil
	}

	r.fileMu.Lock()
	content, err := afero.ReadFile(r.fs, r.filePath)
	r.fileMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("讀取配置文件失敗: %w", err)
	}

	cfg := &domainConfig.Config{}
	if err := yaml.Unmarshal(content, cfg); err != nil {
		return nil, errors.Wrap(fmt.Errorf("%w: %v", errors.ErrConfigParseFailed, err), errors.CodeConfig, "解析配置文件格式失敗")
	}
	cfg.FillDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r.cachedConfig = cfg.DeepCopy()
	r.lastModTime = stat.ModTime()

	r.logger.Info("配置文件已從磁盤加載",
		zap.String("path", r.filePath),
		zap.Time("mod_time", r.lastModTime),
	)

	return cfg, nil
}

// Save 保存配置到文件（原子寫入）
func (r *FileRepository) Save(ctx context.Context, cfg *domainConfig.Config) error {
	if cfg == nil {
		return fmt.Errorf("配置對象為空")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	r.fileMu.Lock()
	defer r.fileMu.Unlock()

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("序列化配置失敗: %w", err)
	}

	// 臨時文件 -> 寫入 -> Sync -> 關閉 -> Rename
	dir := filepath.Dir(r.filePath)
	if err := r.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("創建配置目錄失敗: %w", err)
	}

	tmpFile, err := afero.TempFile(r.fs, dir, "config.*.yaml.tmp")
	if err != nil {
		return fmt.Errorf("創建臨時文件失敗: %w", err)
	}
	tmpName := tmpFile.Name()

	writeSuccess := false
	defer func() {
		if !writeSuccess {
			tmpFile.Close()
			r.fs.Remove(tmpName)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("寫入數據失敗: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("同步磁盤失敗: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("關閉臨時文件失敗: %w", err)
	}
	if err := r.fs.Rename(tmpName, r.filePath); err != nil {
		return fmt.Errorf("替換配置文件失敗: %w", err)
	}
	if err := r.fs.Chmod(r.filePath, 0o644); err != nil {
		r.logger.Warn("設置文件權限失敗", zap.Error(err))
	}

	writeSuccess = true

	r.mu.Lock()
	r.cachedConfig = cfg.DeepCopy()
	if stat, err := r.fs.Stat(r.filePath); err == nil {
		r.lastModTime = stat.ModTime()
	}
	r.mu.Unlock()

	return nil
}

// LoadOrInit 加載配置，首次啟動時寫回默認配置
func (r *FileRepository) LoadOrInit(ctx context.Context) (*domainConfig.Config, error) {
	exists, err := afero.Exists(r.fs, r.filePath)
	if err != nil {
		return nil, fmt.Errorf("檢查配置文件失敗: %w", err)
	}

	cfg, err := r.Load(ctx)
	if err != nil {
		return nil, err
	}

	if !exists {
		if err := r.Save(ctx, cfg); err != nil {
			r.logger.Warn("寫入默認配置失敗", zap.Error(err))
		}
	}
	return cfg, nil
}
