package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	domainConfig "github.com/NguyenHuynhPhuVinh/pvz-launcher/internal/domain/config"
	"github.com/NguyenHuynhPhuVinh/pvz-launcher/internal/pkg/errors"
)

type releaseAsset struct {
	Name               string `json:"name"`
	Size               int64  `json:"size"`
	BrowserDownloadURL string `json:"browser_download_url"`
}

type release struct {
	TagName string         `json:"tag_name"`
	Assets  []releaseAsset `json:"assets"`
}

// Asset 解析出的下載目標
type Asset struct {
	Tag  string
	Name string
	Size int64
	URL  string
}

// Resolver 查詢 GitHub 最新發布中的遊戲壓縮包
type Resolver struct {
	client     *http.Client
	cfg        *domainConfig.Config
	log        *zap.Logger
	newBackOff func() backoff.BackOff
}

func NewResolver(client *http.Client, cfg *domainConfig.Config, log *zap.Logger) *Resolver {
	return &Resolver{
		client: client,
		cfg:    cfg,
		log:    log,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 800 * time.Millisecond
			b.Multiplier = 1.7
			b.MaxInterval = 5 * time.Second
			return b
		},
	}
}

// WithBackOff 替換重試策略
func (r *Resolver) WithBackOff(fn func() backoff.BackOff) *Resolver {
	r.newBackOff = fn
	return r
}

// LatestAsset 返回最新發布中指定文件的下載信息
// 網絡錯誤與 5xx 會按指數退避重試，4xx 與文件缺失直接失敗
func (r *Resolver) LatestAsset(ctx context.Context) (*Asset, error) {
	url := r.cfg.ReleaseURL()

	var rel *release
	operation := func() error {
		var err error
		rel, err = r.fetch(ctx, url)
		return err
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(r.newBackOff(), r.cfg.HTTP.LookupRetries), ctx)
	notify := func(err error, wait time.Duration) {
		r.log.Warn("查詢發布信息失敗，準備重試", zap.String("url", url), zap.Duration("wait", wait), zap.Error(err))
	}

	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		return nil, errors.Wrap(fmt.Errorf("%w: %v", errors.ErrReleaseLookup, err), errors.CodeRelease, "查詢最新發布失敗")
	}

	for _, a := range rel.Assets {
		if a.Name == r.cfg.GitHub.Asset {
			if a.BrowserDownloadURL == "" {
				return nil, errors.Wrap(errors.ErrAssetNotFound, errors.CodeRelease, "發布文件缺少下載地址")
			}
			r.log.Info("已找到遊戲發布文件",
				zap.String("tag", rel.TagName),
				zap.String("asset", a.Name),
				zap.Int64("size", a.Size),
			)
			return &Asset{Tag: rel.TagName, Name: a.Name, Size: a.Size, URL: a.BrowserDownloadURL}, nil
		}
	}

	return nil, errors.Wrap(errors.ErrAssetNotFound, errors.CodeRelease,
		fmt.Sprintf("最新發布 %s 中沒有 %q", rel.TagName, r.cfg.GitHub.Asset))
}

func (r *Resolver) fetch(ctx context.Context, url string) (*release, error) {
	reqCtx, cancel := context.WithTimeout(ctx, r.cfg.HTTP.LookupTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	req.Header.Set("User-Agent", r.cfg.HTTP.UserAgent)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := r.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, backoff.Permanent(ctx.Err())
		}
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := fmt.Errorf("HTTP 狀態碼: %d", resp.StatusCode)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return nil, backoff.Permanent(statusErr)
		}
		return nil, statusErr
	}

	var rel release
	if err := json.NewDecoder(resp.Body).Decode(&rel); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("解析發布信息失敗: %w", err))
	}
	return &rel, nil
}
