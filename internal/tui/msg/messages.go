package msg

import (
	"github.com/NguyenHuynhPhuVinh/pvz-launcher/internal/infra/events"
)

// CheckSource 安裝探測的觸發來源
type CheckSource int

const (
	// CheckOnMount 啟動時的首次探測
	CheckOnMount CheckSource = iota
	// CheckAfterDownload 下載成功後的補充探測
	CheckAfterDownload
)

// InstallCheckedMsg 安裝探測結果
type InstallCheckedMsg struct {
	Installed bool
	Path      string
	Err       error
	Source    CheckSource
}

// ProgressMsg download_progress 事件
type ProgressMsg struct {
	Payload events.ProgressPayload
}

// DownloadResultMsg download_and_unzip_game 的返回
type DownloadResultMsg struct {
	Err error
}

// LaunchResultMsg launch_game 的返回
type LaunchResultMsg struct {
	Err error
}

// SubscriptionClosedMsg 進度訂閱已關閉
type SubscriptionClosedMsg struct{}
