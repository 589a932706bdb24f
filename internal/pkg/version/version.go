package version

import (
	"fmt"
	"runtime"
)

// 構建時通過 -ldflags 注入
var (
	Version   = "dev"
	BuildTime = ""
	GoVersion = runtime.Version()
	GitCommit = ""
)

// UserAgent 返回訪問 GitHub API 時使用的 User-Agent
func UserAgent() string {
	return "PvzRhFusionLauncher/" + Version
}

func Short() string {
	if GitCommit != "" {
		return fmt.Sprintf("v%s (%s)", Version, GitCommit)
	}
	return "v" + Version
}

func Info() string {
	return fmt.Sprintf(
		"PvZ RH Fusion Launcher v%s\nBuild Time: %s\nGo Version: %s\nGit Commit: %s",
		Version, BuildTime, GoVersion, GitCommit,
	)
}
