package game

import (
	"archive/zip"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/NguyenHuynhPhuVinh/pvz-launcher/internal/pkg/errors"
)

// install 先解壓到同級暫存目錄並校驗，成功後再替換舊安裝目錄
// 任一步驟失敗時舊安裝保持不變
func (s *Service) install(archivePath string) (err error) {
	gameDir := s.GameDir()
	parent := filepath.Dir(gameDir)

	if err := s.fs.MkdirAll(parent, 0o755); err != nil {
		return errors.Wrap(err, errors.CodeExtract, "創建數據目錄失敗")
	}
	staging, err := afero.TempDir(s.fs, parent, filepath.Base(gameDir)+".tmp-")
	if err != nil {
		return errors.Wrap(err, errors.CodeExtract, "創建暫存目錄失敗")
	}
	defer func() {
		if err == nil {
			return
		}
		if rmErr := s.fs.RemoveAll(staging); rmErr != nil {
			s.log.Warn("清理解壓暫存目錄失敗", zap.String("dir", staging), zap.Error(rmErr))
		}
	}()

	extracted, err := s.extractAll(archivePath, staging)
	if err != nil {
		return err
	}

	exe := filepath.Join(staging, filepath.FromSlash(s.cfg.Game.Executable))
	ok, err := s.probe.Exists(exe)
	if err != nil {
		return errors.Wrap(err, errors.CodeExtract, "檢查可執行文件失敗")
	}
	if !ok {
		return errors.Wrap(errors.ErrGameNotInstalled, errors.CodeExtract,
			fmt.Sprintf("壓縮包中沒有 %s", s.cfg.Game.Executable))
	}

	if err := s.fs.RemoveAll(gameDir); err != nil {
		return errors.Wrap(err, errors.CodeExtract, "刪除舊遊戲目錄失敗")
	}
	if err := s.fs.Rename(staging, gameDir); err != nil {
		return errors.Wrap(err, errors.CodeExtract, "替換遊戲目錄失敗")
	}

	s.log.Info("解壓完成", zap.String("dir", gameDir), zap.Int("files", extracted))
	return nil
}

// extractAll 將壓縮包全部條目解壓到 root，返回寫入的文件數
func (s *Service) extractAll(archivePath, root string) (int, error) {
	f, err := s.fs.Open(archivePath)
	if err != nil {
		return 0, errors.Wrap(err, errors.CodeExtract, "打開壓縮包失敗")
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return 0, errors.Wrap(err, errors.CodeExtract, "讀取壓縮包信息失敗")
	}

	// ErrInsecurePath 時讀取器仍然可用，越界條目由 safeJoin 逐條過濾
	zr, err := zip.NewReader(f, stat.Size())
	if err != nil && !stderrors.Is(err, zip.ErrInsecurePath) {
		return 0, errors.Wrap(err, errors.CodeExtract, "解析壓縮包失敗")
	}

	extracted := 0
	for _, entry := range zr.File {
		target, err := safeJoin(root, entry.Name)
		if err != nil {
			// 越界條目直接跳過
			s.log.Warn("跳過不安全的壓縮包條目", zap.String("entry", entry.Name))
			continue
		}

		if entry.FileInfo().IsDir() || strings.HasSuffix(entry.Name, "/") {
			if err := s.fs.MkdirAll(target, 0o755); err != nil {
				return extracted, errors.Wrap(err, errors.CodeExtract, "創建目錄失敗")
			}
			continue
		}

		if err := s.extractFile(entry, target); err != nil {
			return extracted, err
		}
		extracted++
	}
	return extracted, nil
}

func (s *Service) extractFile(entry *zip.File, target string) error {
	if err := s.fs.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return errors.Wrap(err, errors.CodeExtract, "創建目錄失敗")
	}

	src, err := entry.Open()
	if err != nil {
		return errors.Wrap(err, errors.CodeExtract, fmt.Sprintf("讀取條目 %s 失敗", entry.Name))
	}
	defer src.Close()

	perm := entry.Mode().Perm()
	if perm == 0 {
		perm = 0o644
	}

	dst, err := s.fs.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return errors.Wrap(err, errors.CodeExtract, fmt.Sprintf("創建文件 %s 失敗", target))
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return errors.Wrap(err, errors.CodeExtract, fmt.Sprintf("寫入文件 %s 失敗", target))
	}
	return dst.Close()
}

// safeJoin 拼接條目路徑，拒絕絕對路徑與跳出目標目錄的條目
func safeJoin(root, name string) (string, error) {
	name = strings.ReplaceAll(name, `\`, "/")
	if name == "" || path.IsAbs(name) || filepath.IsAbs(name) || filepath.VolumeName(name) != "" {
		return "", errors.ErrUnsafeArchivePath
	}

	cleaned := path.Clean(name)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", errors.ErrUnsafeArchivePath
	}

	return filepath.Join(root, filepath.FromSlash(cleaned)), nil
}
