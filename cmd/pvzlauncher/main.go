package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"

	"github.com/NguyenHuynhPhuVinh/pvz-launcher/internal/pkg/appctx"
	"github.com/NguyenHuynhPhuVinh/pvz-launcher/internal/pkg/logger"
	"github.com/NguyenHuynhPhuVinh/pvz-launcher/internal/pkg/version"
	"github.com/NguyenHuynhPhuVinh/pvz-launcher/internal/tui/model"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

func main() {
	// 1. 命令行參數解析
	var (
		workDir    = flag.String("dir", "", "指定數據目錄 (默認: XDG 用戶數據目錄)")
		configPath = flag.String("config", "", "指定配置文件路徑")
		showVer    = flag.Bool("version", false, "顯示版本信息")
		debugFlag  = flag.Bool("debug", false, "開啟調試模式")
	)
	flag.Parse()

	if *showVer {
		fmt.Println(version.Info())
		os.Exit(0)
	}

	// 2. 環境初始化
	paths, err := appctx.NewPaths(*workDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "致命錯誤: 無法初始化路徑: %v\n", err)
		os.Exit(1)
	}
	if *configPath != "" {
		paths.ConfigFile = *configPath
	}

	redirectStdErr(filepath.Join(paths.LogDir, "stderr.log"))

	logPath := filepath.Join(paths.LogDir, "launcher.log")
	log, err := newLogger(logPath, levelFor(*debugFlag, ""))
	if err != nil {
		panic(fmt.Sprintf("日誌初始化失敗: %v", err))
	}

	ctx := context.Background()
	fs := afero.NewOsFs()

	// 3. 加載配置，-debug 未指定時使用配置中的日誌級別
	cfg := loadConfig(ctx, fs, log, paths.ConfigFile)
	if level := levelFor(*debugFlag, cfg.Log.Level); level != levelFor(*debugFlag, "") {
		if l, err := newLogger(logPath, level); err == nil {
			_ = log.Sync()
			log = l
		} else {
			log.Warn("配置中的日誌級別無效", zap.String("level", level), zap.Error(err))
		}
	}
	defer log.Sync()

	// 4. 依賴注入
	deps := initializeDependencies(ctx, fs, log, paths, cfg)

	log.Info("啟動器正在啟動",
		zap.String("version", version.Short()),
		zap.String("build_time", version.BuildTime),
		zap.String("data_dir", paths.DataDir),
		zap.String("install_path", deps.Game.ExecutablePath()),
	)

	runTUI(deps)
}

func levelFor(debugFlag bool, configured string) string {
	if debugFlag {
		return "debug"
	}
	if configured == "" {
		return "info"
	}
	return configured
}

func newLogger(path, level string) (*zap.Logger, error) {
	logConfig := logger.DefaultConfig()
	logConfig.OutputPath = path
	logConfig.Console = false
	logConfig.Level = level
	return logger.New(logConfig)
}

func runTUI(deps *AppDependencies) {
	router := model.NewRouter(deps.HandlerConfig)
	mainModel := model.NewModel(router)

	p := tea.NewProgram(
		mainModel,
		tea.WithAltScreen(),
	)

	// 無論如何退出都要釋放進度訂閱
	defer mainModel.Close()

	// 崩潰保護
	defer func() {
		if r := recover(); r != nil {
			p.ReleaseTerminal()
			mainModel.Close()
			fmt.Printf("\n\n❌ 程序崩潰: %v\n", r)
			deps.Log.Error("Panic", zap.Any("error", r), zap.String("stack", string(debug.Stack())))
			_ = deps.Log.Sync()
			os.Exit(1)
		}
	}()

	if _, err := p.Run(); err != nil {
		deps.Log.Error("程序運行錯誤", zap.Error(err))
		fmt.Printf("程序運行錯誤: %v\n", err)
		mainModel.Close()
		_ = deps.Log.Sync()
		os.Exit(1)
	}
	fmt.Println("👋 Bye!")
}

func redirectStdErr(filename string) {
	_ = os.MkdirAll(filepath.Dir(filename), 0755)
	f, err := os.OpenFile(filename, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err == nil {
		os.Stderr = f
	}
}
