package appctx

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

// AppID 應用標識，作為各用戶數據根目錄下的子目錄名
const AppID = "pvz-rh-fusion-launcher"

// Paths 定義應用程序所有的關鍵路徑
type Paths struct {
	DataDir   string // 各用戶應用數據根目錄
	ConfigDir string
	LogDir    string
	CacheDir  string // 下載暫存

	ConfigFile string
}

// NewPaths 初始化路徑
// baseDir 為空時使用 XDG 數據/配置目錄，否則所有內容都放在 baseDir 之下
func NewPaths(baseDir string) (*Paths, error) {
	var dataDir, configDir, cacheDir string

	if baseDir == "" {
		dataDir = filepath.Join(xdg.DataHome, AppID)
		configDir = filepath.Join(xdg.ConfigHome, AppID)
		cacheDir = filepath.Join(xdg.CacheHome, AppID)
	} else {
		absPath, err := filepath.Abs(baseDir)
		if err != nil {
			return nil, fmt.Errorf("無法解析絕對路徑: %w", err)
		}
		dataDir = absPath
		configDir = absPath
		cacheDir = filepath.Join(absPath, "cache")
	}

	paths := &Paths{
		DataDir:    dataDir,
		ConfigDir:  configDir,
		LogDir:     filepath.Join(dataDir, "logs"),
		CacheDir:   cacheDir,
		ConfigFile: filepath.Join(configDir, "config.yaml"),
	}

	for _, dir := range []string{paths.DataDir, paths.ConfigDir, paths.LogDir, paths.CacheDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("無法創建目錄 %s: %w", dir, err)
		}
	}

	return paths, nil
}

// GameDir 返回遊戲安裝目錄
func (p *Paths) GameDir(subdir string) string {
	return filepath.Join(p.DataDir, subdir)
}

// InstallPath 返回預期的遊戲可執行文件路徑
func (p *Paths) InstallPath(subdir, executable string) string {
	return filepath.Join(p.DataDir, subdir, executable)
}
