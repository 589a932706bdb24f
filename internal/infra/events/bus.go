package events

import (
	"sync"

	"go.uber.org/zap"

	"github.com/NguyenHuynhPhuVinh/pvz-launcher/internal/pkg/errors"
)

// DownloadProgress 下載進度事件通道
const DownloadProgress = "download_progress"

// ProgressPayload 下載進度事件內容
type ProgressPayload struct {
	Percentage float64 `json:"percentage"`
	Status     string  `json:"status"`
}

// Handler 事件處理函數
type Handler func(payload any)

// Unlisten 取消訂閱，可重複調用
type Unlisten func()

type listener struct {
	id      uint64
	handler Handler
}

// Bus 按名稱分發的事件總線
type Bus struct {
	mu        sync.RWMutex
	nextID    uint64
	listeners map[string][]listener
	log       *zap.Logger
}

func NewBus(log *zap.Logger) *Bus {
	return &Bus{
		listeners: make(map[string][]listener),
		log:       log,
	}
}

// Listen 訂閱指定通道
func (b *Bus) Listen(channel string, h Handler) (Unlisten, error) {
	if channel == "" {
		return nil, errors.ErrChannelEmpty
	}

	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.listeners[channel] = append(b.listeners[channel], listener{id: id, handler: h})
	b.mu.Unlock()

	b.log.Debug("事件訂閱", zap.String("channel", channel), zap.Uint64("listener", id))

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(channel, id) })
	}, nil
}

func (b *Bus) remove(channel string, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ls := b.listeners[channel]
	for i, l := range ls {
		if l.id == id {
			// 新切片，避免影響正在進行的 Emit 快照
			next := make([]listener, 0, len(ls)-1)
			next = append(next, ls[:i]...)
			next = append(next, ls[i+1:]...)
			if len(next) == 0 {
				delete(b.listeners, channel)
			} else {
				b.listeners[channel] = next
			}
			break
		}
	}
	b.log.Debug("取消事件訂閱", zap.String("channel", channel), zap.Uint64("listener", id))
}

// Emit 同步分發事件，按訂閱順序調用
func (b *Bus) Emit(channel string, payload any) {
	b.mu.RLock()
	ls := b.listeners[channel]
	b.mu.RUnlock()

	for _, l := range ls {
		l.handler(payload)
	}
}

// ListenerCount 返回通道當前訂閱數
func (b *Bus) ListenerCount(channel string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners[channel])
}

// AsProgress 將事件內容解析為下載進度
func AsProgress(payload any) (ProgressPayload, bool) {
	switch p := payload.(type) {
	case ProgressPayload:
		return p, true
	case *ProgressPayload:
		if p == nil {
			return ProgressPayload{}, false
		}
		return *p, true
	default:
		return ProgressPayload{}, false
	}
}
