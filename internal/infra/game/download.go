package game

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/NguyenHuynhPhuVinh/pvz-launcher/internal/infra/github"
	"github.com/NguyenHuynhPhuVinh/pvz-launcher/internal/pkg/errors"
)

// 總大小未知時每下載這麼多字節上報一次
const unknownSizeReportStep = 1 << 20

// progressWriter 統計已下載字節並上報進度
type progressWriter struct {
	total      int64
	written    int64
	lastPct    int
	lastReport int64
	report     func(pct float64)
}

func (w *progressWriter) Write(p []byte) (int, error) {
	w.written += int64(len(p))

	if w.total <= 0 {
		if w.written-w.lastReport >= unknownSizeReportStep {
			w.lastReport = w.written
			w.report(0)
		}
		return len(p), nil
	}

	pct := float64(w.written) / float64(w.total) * 100
	if pct > 100 {
		pct = 100
	}
	// 每個整數百分比最多上報一次
	if whole := int(pct); whole != w.lastPct {
		w.lastPct = whole
		w.report(pct)
	}
	return len(p), nil
}

// download 將壓縮包流式寫入暫存文件，返回文件路徑
func (s *Service) download(ctx context.Context, asset *github.Asset) (string, error) {
	s.log.Info("開始下載遊戲", zap.String("url", asset.URL))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, asset.URL, nil)
	if err != nil {
		return "", errors.Wrap(err, errors.CodeDownload, "創建下載請求失敗")
	}
	req.Header.Set("User-Agent", s.cfg.HTTP.UserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", errors.Wrap(fmt.Errorf("%w: %v", errors.ErrDownloadFailed, err), errors.CodeDownload, "下載請求失敗")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", errors.Wrap(fmt.Errorf("%w: HTTP 狀態碼 %d", errors.ErrDownloadFailed, resp.StatusCode), errors.CodeDownload, "下載失敗")
	}

	total := resp.ContentLength
	if total <= 0 {
		total = asset.Size
	}

	if err := s.fs.MkdirAll(s.paths.CacheDir, 0o755); err != nil {
		return "", errors.Wrap(err, errors.CodeDownload, "創建暫存目錄失敗")
	}
	tmp, err := afero.TempFile(s.fs, s.paths.CacheDir, "game-*.zip.part")
	if err != nil {
		return "", errors.Wrap(err, errors.CodeDownload, "創建暫存文件失敗")
	}
	tmpName := tmp.Name()

	s.emit(0, StatusDownloadStarted)

	pw := &progressWriter{
		total: total,
		report: func(pct float64) {
			s.emit(pct, fmt.Sprintf("Downloading... %.2f%%", pct))
		},
	}

	written, err := io.Copy(io.MultiWriter(tmp, pw), resp.Body)
	closeErr := tmp.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		if rmErr := s.fs.Remove(tmpName); rmErr != nil {
			s.log.Warn("清理下載暫存失敗", zap.String("path", tmpName), zap.Error(rmErr))
		}
		return "", errors.Wrap(fmt.Errorf("%w: %v", errors.ErrDownloadFailed, err), errors.CodeDownload, "讀取下載內容失敗")
	}

	s.log.Info("下載完成", zap.String("file", tmpName), zap.Int64("bytes", written))
	return tmpName, nil
}
