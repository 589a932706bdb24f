package fsys

import (
	"fmt"

	"github.com/spf13/afero"
)

// Probe 安裝狀態探測
// 文件不存在時返回 false 而不是錯誤，只有真實的 I/O 錯誤才會返回 error
type Probe struct {
	fs afero.Fs
}

func NewProbe(fs afero.Fs) *Probe {
	return &Probe{fs: fs}
}

// Exists 檢查路徑是否存在
func (p *Probe) Exists(path string) (bool, error) {
	ok, err := afero.Exists(p.fs, path)
	if err != nil {
		return false, fmt.Errorf("檢查路徑失敗 %s: %w", path, err)
	}
	return ok, nil
}
