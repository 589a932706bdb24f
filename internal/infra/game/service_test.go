package game

import (
	"archive/zip"
	"bytes"
	"context"
	stderrors "errors"
	"hash/crc32"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"testing/iotest"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	domainConfig "github.com/NguyenHuynhPhuVinh/pvz-launcher/internal/domain/config"
	"github.com/NguyenHuynhPhuVinh/pvz-launcher/internal/infra/events"
	"github.com/NguyenHuynhPhuVinh/pvz-launcher/internal/infra/github"
	"github.com/NguyenHuynhPhuVinh/pvz-launcher/internal/infra/host"
	"github.com/NguyenHuynhPhuVinh/pvz-launcher/internal/pkg/appctx"
	"github.com/NguyenHuynhPhuVinh/pvz-launcher/internal/pkg/errors"
)

// recordingEmitter 記錄所有發出的進度事件
type recordingEmitter struct {
	mu     sync.Mutex
	events []events.ProgressPayload
}

func (e *recordingEmitter) Emit(channel string, payload any) {
	if channel != events.DownloadProgress {
		return
	}
	p, _ := events.AsProgress(payload)
	e.mu.Lock()
	e.events = append(e.events, p)
	e.mu.Unlock()
}

func (e *recordingEmitter) statuses() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, 0, len(e.events))
	for _, ev := range e.events {
		out = append(out, ev.Status)
	}
	return out
}

type fakeResolver struct {
	asset *github.Asset
	err   error
}

func (r fakeResolver) LatestAsset(context.Context) (*github.Asset, error) {
	return r.asset, r.err
}

type fakeOpener struct {
	opened []string
	err    error
}

func (o *fakeOpener) Start(path string) error {
	o.opened = append(o.opened, path)
	return o.err
}

func buildZip(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

type testEnv struct {
	svc     *Service
	fs      afero.Fs
	emitter *recordingEmitter
	opener  *fakeOpener
}

func newTestEnv(t *testing.T, archive []byte, resolveErr error) *testEnv {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if archive == nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write(archive)
	}))
	t.Cleanup(srv.Close)

	fs := afero.NewMemMapFs()
	emitter := &recordingEmitter{}
	opener := &fakeOpener{}

	svc := NewService(Config{
		Fs:       fs,
		Client:   srv.Client(),
		Resolver: fakeResolver{asset: &github.Asset{Tag: "v3.0.1", Name: "game.zip", URL: srv.URL + "/game.zip"}, err: resolveErr},
		Emitter:  emitter,
		Opener:   opener,
		Paths:    &appctx.Paths{DataDir: "/data", CacheDir: "/cache"},
		Launcher: domainConfig.DefaultConfig(),
		Log:      zap.NewNop(),
	})

	return &testEnv{svc: svc, fs: fs, emitter: emitter, opener: opener}
}

func TestService_DownloadAndUnzip(t *testing.T) {
	archive := buildZip(t, map[string]string{
		"PvzRhFusion.exe":              "MZ",
		"PvzRhFusion_Data/level0":      "level",
		"PvzRhFusion_Data/Managed/a.d": "dll",
	})
	env := newTestEnv(t, archive, nil)

	// 舊安裝殘留應被清除
	require.NoError(t, afero.WriteFile(env.fs, "/data/game/stale.txt", []byte("old"), 0o644))

	require.NoError(t, env.svc.DownloadAndUnzip(context.Background()))

	data, err := afero.ReadFile(env.fs, "/data/game/PvzRhFusion.exe")
	require.NoError(t, err)
	assert.Equal(t, "MZ", string(data))

	ok, _ := afero.Exists(env.fs, "/data/game/PvzRhFusion_Data/Managed/a.d")
	assert.True(t, ok)
	ok, _ = afero.Exists(env.fs, "/data/game/stale.txt")
	assert.False(t, ok)

	// 暫存文件應被清理
	entries, _ := afero.ReadDir(env.fs, "/cache")
	assert.Empty(t, entries)

	statuses := env.emitter.statuses()
	require.NotEmpty(t, statuses)
	assert.Equal(t, StatusDownloadStarted, statuses[0])
	assert.Equal(t, StatusInstallComplete, statuses[len(statuses)-1])
	assert.Contains(t, statuses, StatusDownloadFinished)

	// 只有最後一個事件包含 complete
	for _, s := range statuses[:len(statuses)-1] {
		assert.NotContains(t, s, "complete")
	}
}

func TestService_DownloadProgressMonotonic(t *testing.T) {
	archive := buildZip(t, map[string]string{
		"PvzRhFusion.exe": strings.Repeat("x", 256*1024),
	})
	env := newTestEnv(t, archive, nil)

	require.NoError(t, env.svc.DownloadAndUnzip(context.Background()))

	last := -1.0
	for _, ev := range env.emitter.events {
		assert.GreaterOrEqual(t, ev.Percentage, last)
		assert.LessOrEqual(t, ev.Percentage, 100.0)
		last = ev.Percentage
	}
	assert.Equal(t, 100.0, last)
}

func TestService_DownloadAndUnzip_Failures(t *testing.T) {
	t.Run("查詢發布失敗", func(t *testing.T) {
		env := newTestEnv(t, nil, errors.ErrAssetNotFound)
		err := env.svc.DownloadAndUnzip(context.Background())
		assert.True(t, stderrors.Is(err, errors.ErrAssetNotFound))
		assert.Empty(t, env.emitter.statuses())
	})

	t.Run("下載返回錯誤狀態碼", func(t *testing.T) {
		env := newTestEnv(t, nil, nil)
		err := env.svc.DownloadAndUnzip(context.Background())
		assert.True(t, stderrors.Is(err, errors.ErrDownloadFailed))
	})

	t.Run("壓縮包損壞", func(t *testing.T) {
		env := newTestEnv(t, []byte("definitely not a zip"), nil)
		err := env.svc.DownloadAndUnzip(context.Background())
		require.Error(t, err)
		assert.Equal(t, errors.CodeExtract, errors.CodeOf(err))
		assert.NotContains(t, env.emitter.statuses(), StatusInstallComplete)
	})

	t.Run("壓縮包缺少可執行文件", func(t *testing.T) {
		env := newTestEnv(t, buildZip(t, map[string]string{"readme.txt": "hi"}), nil)
		err := env.svc.DownloadAndUnzip(context.Background())
		assert.True(t, stderrors.Is(err, errors.ErrGameNotInstalled))
		assert.NotContains(t, env.emitter.statuses(), StatusInstallComplete)
	})
}

// buildCorruptZip 依次寫入可執行文件和一個 CRC 錯誤的 stored 條目
func buildCorruptZip(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	w, err := zw.Create("PvzRhFusion.exe")
	require.NoError(t, err)
	_, err = w.Write([]byte("new-exe"))
	require.NoError(t, err)

	payload := []byte("asset-bytes")
	raw, err := zw.CreateRaw(&zip.FileHeader{
		Name:               "PvzRhFusion_Data/assets.bin",
		Method:             zip.Store,
		CRC32:              crc32.ChecksumIEEE(payload) ^ 0xFFFFFFFF,
		CompressedSize64:   uint64(len(payload)),
		UncompressedSize64: uint64(len(payload)),
	})
	require.NoError(t, err)
	_, err = raw.Write(payload)
	require.NoError(t, err)

	require.NoError(t, zw.Close())
	return buf.Bytes()
}

// seedInstall 寫入一份舊安裝
func seedInstall(t *testing.T, fs afero.Fs) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fs, "/data/game/PvzRhFusion.exe", []byte("old-exe"), 0o755))
	require.NoError(t, afero.WriteFile(fs, "/data/game/saves/slot1", []byte("save"), 0o644))
}

// assertOldInstallIntact 舊安裝原樣保留且沒有殘留的暫存目錄
func assertOldInstallIntact(t *testing.T, fs afero.Fs) {
	t.Helper()

	exe, err := afero.ReadFile(fs, "/data/game/PvzRhFusion.exe")
	require.NoError(t, err)
	assert.Equal(t, "old-exe", string(exe))

	save, err := afero.ReadFile(fs, "/data/game/saves/slot1")
	require.NoError(t, err)
	assert.Equal(t, "save", string(save))

	ok, _ := afero.Exists(fs, "/data/game/PvzRhFusion_Data/assets.bin")
	assert.False(t, ok)

	entries, err := afero.ReadDir(fs, "/data")
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Equal(t, []string{"game"}, names)
}

func TestService_FailedInstallKeepsPreviousGame(t *testing.T) {
	t.Run("後續條目校驗和錯誤", func(t *testing.T) {
		env := newTestEnv(t, buildCorruptZip(t), nil)
		seedInstall(t, env.fs)

		err := env.svc.DownloadAndUnzip(context.Background())
		require.Error(t, err)
		assert.True(t, stderrors.Is(err, zip.ErrChecksum))
		assert.Equal(t, errors.CodeExtract, errors.CodeOf(err))
		assert.NotContains(t, env.emitter.statuses(), StatusInstallComplete)

		assertOldInstallIntact(t, env.fs)
	})

	t.Run("新壓縮包缺少可執行文件", func(t *testing.T) {
		env := newTestEnv(t, buildZip(t, map[string]string{"readme.txt": "hi"}), nil)
		seedInstall(t, env.fs)

		err := env.svc.DownloadAndUnzip(context.Background())
		assert.True(t, stderrors.Is(err, errors.ErrGameNotInstalled))

		assertOldInstallIntact(t, env.fs)
		ok, _ := afero.Exists(env.fs, "/data/game/readme.txt")
		assert.False(t, ok)
	})

	t.Run("成功後不留暫存目錄", func(t *testing.T) {
		env := newTestEnv(t, buildZip(t, map[string]string{"PvzRhFusion.exe": "new-exe"}), nil)
		seedInstall(t, env.fs)

		require.NoError(t, env.svc.DownloadAndUnzip(context.Background()))

		exe, err := afero.ReadFile(env.fs, "/data/game/PvzRhFusion.exe")
		require.NoError(t, err)
		assert.Equal(t, "new-exe", string(exe))

		entries, err := afero.ReadDir(env.fs, "/data")
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "game", entries[0].Name())
	})
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

// removeErrFs 刪除文件總是失敗
type removeErrFs struct {
	afero.Fs
}

func (removeErrFs) Remove(string) error { return stderrors.New("device busy") }

func TestService_DownloadBodyErrorLogsCleanupFailure(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)

	client := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode:    http.StatusOK,
			ContentLength: 1024,
			Body:          io.NopCloser(iotest.ErrReader(stderrors.New("connection reset"))),
			Request:       r,
		}, nil
	})}

	emitter := &recordingEmitter{}
	svc := NewService(Config{
		Fs:       removeErrFs{afero.NewMemMapFs()},
		Client:   client,
		Resolver: fakeResolver{asset: &github.Asset{Name: "game.zip", URL: "http://example.invalid/game.zip"}},
		Emitter:  emitter,
		Paths:    &appctx.Paths{DataDir: "/data", CacheDir: "/cache"},
		Launcher: domainConfig.DefaultConfig(),
		Log:      zap.New(core),
	})

	err := svc.DownloadAndUnzip(context.Background())
	assert.True(t, stderrors.Is(err, errors.ErrDownloadFailed))

	entries := logs.FilterMessage("清理下載暫存失敗").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "device busy", entries[0].ContextMap()["error"])
	assert.NotContains(t, emitter.statuses(), StatusDownloadFinished)
}

func TestService_ZipSlip(t *testing.T) {
	archive := buildZip(t, map[string]string{
		"PvzRhFusion.exe":   "MZ",
		"../../etc/evil.sh": "rm -rf",
	})
	env := newTestEnv(t, archive, nil)

	require.NoError(t, env.svc.DownloadAndUnzip(context.Background()))

	ok, _ := afero.Exists(env.fs, "/etc/evil.sh")
	assert.False(t, ok)
}

func TestSafeJoin(t *testing.T) {
	tests := []struct {
		name    string
		entry   string
		wantErr bool
	}{
		{"普通文件", "PvzRhFusion.exe", false},
		{"子目錄", "Data/Managed/a.dll", false},
		{"目錄內回退", "Data/../PvzRhFusion.exe", false},
		{"向上越界", "../evil", true},
		{"深層越界", "Data/../../evil", true},
		{"絕對路徑", "/etc/passwd", true},
		{"反斜杠越界", `..\evil`, true},
		{"空名稱", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := safeJoin("/data/game", tt.entry)
			if tt.wantErr {
				assert.ErrorIs(t, err, errors.ErrUnsafeArchivePath)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestService_Launch(t *testing.T) {
	t.Run("未安裝", func(t *testing.T) {
		env := newTestEnv(t, nil, nil)
		err := env.svc.Launch(context.Background())
		assert.True(t, stderrors.Is(err, errors.ErrGameNotInstalled))
		assert.Empty(t, env.opener.opened)
	})

	t.Run("已安裝", func(t *testing.T) {
		env := newTestEnv(t, nil, nil)
		require.NoError(t, afero.WriteFile(env.fs, "/data/game/PvzRhFusion.exe", []byte("MZ"), 0o755))

		require.NoError(t, env.svc.Launch(context.Background()))
		assert.Equal(t, []string{"/data/game/PvzRhFusion.exe"}, env.opener.opened)
	})

	t.Run("打開失敗", func(t *testing.T) {
		env := newTestEnv(t, nil, nil)
		env.opener.err = stderrors.New("exec format error")
		require.NoError(t, afero.WriteFile(env.fs, "/data/game/PvzRhFusion.exe", []byte("MZ"), 0o755))

		err := env.svc.Launch(context.Background())
		assert.True(t, stderrors.Is(err, errors.ErrLaunchFailed))
	})
}

func TestService_Register(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	h := host.New(zap.NewNop())
	env.svc.Register(h)

	require.NoError(t, afero.WriteFile(env.fs, "/data/game/PvzRhFusion.exe", []byte("MZ"), 0o755))
	require.NoError(t, h.Invoke(context.Background(), host.CmdLaunchGame))
	assert.Len(t, env.opener.opened, 1)
}

func TestProgressWriter(t *testing.T) {
	t.Run("已知大小按整數百分比上報", func(t *testing.T) {
		var reports []float64
		pw := &progressWriter{total: 1000, report: func(p float64) { reports = append(reports, p) }}

		for i := 0; i < 1000; i++ {
			pw.Write([]byte{0})
		}
		assert.Len(t, reports, 100)
		assert.Equal(t, 100.0, reports[len(reports)-1])
	})

	t.Run("未知大小按字節步長上報", func(t *testing.T) {
		var reports []float64
		pw := &progressWriter{total: -1, report: func(p float64) { reports = append(reports, p) }}

		chunk := make([]byte, unknownSizeReportStep/2)
		for i := 0; i < 4; i++ {
			pw.Write(chunk)
		}
		assert.Equal(t, []float64{0, 0}, reports)
	})
}
