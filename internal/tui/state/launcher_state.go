package state

// Status 啟動器狀態
type Status int

const (
	StatusChecking Status = iota
	StatusNotInstalled
	StatusDownloading
	StatusReady
)

func (s Status) String() string {
	switch s {
	case StatusChecking:
		return "checking"
	case StatusNotInstalled:
		return "not_installed"
	case StatusDownloading:
		return "downloading"
	case StatusReady:
		return "ready"
	default:
		return "unknown"
	}
}

// Snapshot 某一時刻的啟動器狀態
type Snapshot struct {
	Status          Status
	Progress        float64 // 百分比，僅在下載中有意義
	IsGameInstalled bool
}

// Observer 狀態變化觀察者
type Observer func(Snapshot)

type observerEntry struct {
	id uint64
	fn Observer
}

// LauncherState 啟動器狀態容器
// 只在 bubbletea 的 Update 循環中寫入，因此不加鎖
type LauncherState struct {
	snap      Snapshot
	observers []observerEntry
	nextID    uint64
}

// NewLauncherState 創建狀態容器，初始狀態為 checking
func NewLauncherState() *LauncherState {
	return &LauncherState{
		snap: Snapshot{Status: StatusChecking},
	}
}

func (s *LauncherState) Snapshot() Snapshot    { return s.snap }
func (s *LauncherState) Status() Status        { return s.snap.Status }
func (s *LauncherState) Progress() float64     { return s.snap.Progress }
func (s *LauncherState) IsGameInstalled() bool { return s.snap.IsGameInstalled }

// SetStatus 不做校驗，狀態轉換規則由調用方保證
func (s *LauncherState) SetStatus(status Status) {
	s.snap.Status = status
	s.notify()
}

func (s *LauncherState) SetProgress(progress float64) {
	s.snap.Progress = progress
	s.notify()
}

func (s *LauncherState) SetIsGameInstalled(installed bool) {
	s.snap.IsGameInstalled = installed
	s.notify()
}

// Subscribe 註冊觀察者，返回取消函數
func (s *LauncherState) Subscribe(fn Observer) func() {
	s.nextID++
	id := s.nextID
	s.observers = append(s.observers, observerEntry{id: id, fn: fn})

	return func() {
		for i, o := range s.observers {
			if o.id == id {
				s.observers = append(s.observers[:i:i], s.observers[i+1:]...)
				return
			}
		}
	}
}

func (s *LauncherState) notify() {
	snap := s.snap
	for _, o := range s.observers {
		o.fn(snap)
	}
}
