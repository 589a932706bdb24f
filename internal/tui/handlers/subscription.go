package handlers

import (
	"sync"

	"github.com/NguyenHuynhPhuVinh/pvz-launcher/internal/infra/events"
	"github.com/NguyenHuynhPhuVinh/pvz-launcher/internal/tui/msg"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

const progressBuffer = 64

// ProgressSubscription 把 download_progress 事件橋接成 tea.Msg
// 每收到一條消息後需重新調用 Next 才會繼續等待
type ProgressSubscription struct {
	log      *zap.Logger
	ch       chan events.ProgressPayload
	done     chan struct{}
	unlisten events.Unlisten
	once     sync.Once
}

// SubscribeProgress 訂閱進度事件
func SubscribeProgress(src EventSource, log *zap.Logger) (*ProgressSubscription, error) {
	if log == nil {
		log = zap.NewNop()
	}

	s := &ProgressSubscription{
		log:  log,
		ch:   make(chan events.ProgressPayload, progressBuffer),
		done: make(chan struct{}),
	}

	unlisten, err := src.Listen(events.DownloadProgress, s.handle)
	if err != nil {
		return nil, err
	}
	s.unlisten = unlisten
	return s, nil
}

func (s *ProgressSubscription) handle(payload any) {
	p, ok := events.AsProgress(payload)
	if !ok {
		s.log.Warn("忽略無法識別的進度事件", zap.Any("payload", payload))
		return
	}

	select {
	case <-s.done:
		return
	default:
	}

	select {
	case s.ch <- p:
	case <-s.done:
	}
}

// Next 等待下一條進度事件
func (s *ProgressSubscription) Next() tea.Cmd {
	return func() tea.Msg {
		select {
		case p := <-s.ch:
			return msg.ProgressMsg{Payload: p}
		case <-s.done:
			return msg.SubscriptionClosedMsg{}
		}
	}
}

// Close 取消訂閱，可重複調用
func (s *ProgressSubscription) Close() {
	s.once.Do(func() {
		if s.unlisten != nil {
			s.unlisten()
		}
		close(s.done)
	})
}
