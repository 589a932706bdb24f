package config

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/NguyenHuynhPhuVinh/pvz-launcher/internal/pkg/errors"
	"github.com/NguyenHuynhPhuVinh/pvz-launcher/internal/pkg/version"
)

// ConfigVersionLatest 當前配置版本
const ConfigVersionLatest = 1

// Repository 配置倉庫接口
type Repository interface {
	// Load 加載配置
	Load(ctx context.Context) (*Config, error)

	// Save 保存配置
	Save(ctx context.Context, cfg *Config) error
}

// Config 啟動器配置
type Config struct {
	Version int          `yaml:"version"`
	GitHub  GitHubConfig `yaml:"github"`
	Game    GameConfig   `yaml:"game"`
	HTTP    HTTPConfig   `yaml:"http"`
	Log     LogConfig    `yaml:"log"`
}

// GitHubConfig 遊戲發布來源
type GitHubConfig struct {
	Owner   string `yaml:"owner"`
	Repo    string `yaml:"repo"`
	Asset   string `yaml:"asset"`    // 發布中的 zip 文件名
	APIBase string `yaml:"api_base"` // 一般無需修改，測試時指向本地服務
}

// GameConfig 安裝佈局
type GameConfig struct {
	Subdir     string `yaml:"subdir"`
	Executable string `yaml:"executable"`
}

// HTTPConfig 網絡參數
type HTTPConfig struct {
	UserAgent     string        `yaml:"user_agent"`
	LookupTimeout time.Duration `yaml:"lookup_timeout"` // 查詢發布信息的單次超時
	LookupRetries uint64        `yaml:"lookup_retries"`
}

// LogConfig 日誌配置
type LogConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig 返回默認配置
func DefaultConfig() *Config {
	return &Config{
		Version: ConfigVersionLatest,
		GitHub: GitHubConfig{
			Owner:   "NguyenHuynhPhuVinh",
			Repo:    "PvzRHFusionLauncher",
			Asset:   "PC_PVZ-Fusion-3.0.1.zip",
			APIBase: "https://api.github.com",
		},
		Game: GameConfig{
			Subdir:     "game",
			Executable: "PvzRhFusion.exe",
		},
		HTTP: HTTPConfig{
			UserAgent:     version.UserAgent(),
			LookupTimeout: 15 * time.Second,
			LookupRetries: 3,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// FillDefaults 為缺失的字段填充默認值
func (c *Config) FillDefaults() {
	def := DefaultConfig()

	if c.Version == 0 {
		c.Version = def.Version
	}
	if c.GitHub.Owner == "" {
		c.GitHub.Owner = def.GitHub.Owner
	}
	if c.GitHub.Repo == "" {
		c.GitHub.Repo = def.GitHub.Repo
	}
	if c.GitHub.Asset == "" {
		c.GitHub.Asset = def.GitHub.Asset
	}
	if c.GitHub.APIBase == "" {
		c.GitHub.APIBase = def.GitHub.APIBase
	}
	if c.Game.Subdir == "" {
		c.Game.Subdir = def.Game.Subdir
	}
	if c.Game.Executable == "" {
		c.Game.Executable = def.Game.Executable
	}
	if c.HTTP.UserAgent == "" {
		c.HTTP.UserAgent = def.HTTP.UserAgent
	}
	if c.HTTP.LookupTimeout <= 0 {
		c.HTTP.LookupTimeout = def.HTTP.LookupTimeout
	}
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
}

// Validate 校驗配置
func (c *Config) Validate() error {
	if c == nil {
		return errors.Wrap(errors.ErrConfigInvalid, errors.CodeConfig, "配置為空")
	}

	required := map[string]string{
		"github.owner":    c.GitHub.Owner,
		"github.repo":     c.GitHub.Repo,
		"github.asset":    c.GitHub.Asset,
		"game.subdir":     c.Game.Subdir,
		"game.executable": c.Game.Executable,
	}
	for key, val := range required {
		if strings.TrimSpace(val) == "" {
			return errors.Wrap(errors.ErrConfigInvalid, errors.CodeConfig, key+" 不能為空")
		}
	}

	// 安裝目錄必須位於數據目錄之內
	for key, val := range map[string]string{"game.subdir": c.Game.Subdir, "game.executable": c.Game.Executable} {
		if filepath.IsAbs(val) || escapesRoot(val) {
			return errors.Wrap(errors.ErrConfigInvalid, errors.CodeConfig, fmt.Sprintf("%s 必須是相對路徑: %q", key, val))
		}
	}

	if c.GitHub.APIBase != "" {
		u, err := url.Parse(c.GitHub.APIBase)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return errors.Wrap(errors.ErrConfigInvalid, errors.CodeConfig, fmt.Sprintf("github.api_base 無效: %q", c.GitHub.APIBase))
		}
	}

	switch c.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return errors.Wrap(errors.ErrConfigInvalid, errors.CodeConfig, fmt.Sprintf("log.level 無效: %q", c.Log.Level))
	}

	return nil
}

// escapesRoot 按路徑分段判斷是否跳出或等於所在目錄
func escapesRoot(p string) bool {
	cleaned := path.Clean(strings.ReplaceAll(p, `\`, "/"))
	return cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../")
}

// ReleaseURL 返回最新發布的 API 地址
func (c *Config) ReleaseURL() string {
	base := strings.TrimRight(c.GitHub.APIBase, "/")
	return fmt.Sprintf("%s/repos/%s/%s/releases/latest", base, c.GitHub.Owner, c.GitHub.Repo)
}

// DeepCopy 深拷貝配置 (序列化回環)
func (c *Config) DeepCopy() *Config {
	if c == nil {
		return nil
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		panic(fmt.Errorf("DeepCopy 序列化失敗 (這是一個 Bug): %w", err))
	}

	var newCfg Config
	if err := yaml.Unmarshal(data, &newCfg); err != nil {
		panic(fmt.Errorf("DeepCopy 反序列化失敗 (這是一個 Bug): %w", err))
	}

	return &newCfg
}
