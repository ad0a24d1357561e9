package mem

import (
	"sync"
	"time"

	"rumbo/pkg/llm"
)

// PendingAction is a human-in-the-loop interrupt waiting for a resume. The
// tool call it carries is applied verbatim when the client confirms.
type PendingAction struct {
	Prompt    string
	ToolName  string
	Arguments string
}

// Checkpoint is the per-thread conversational state. Messages include tool
// turns so the agent can be resumed mid-loop.
type Checkpoint struct {
	TripID    string
	ThreadID  string
	AgentKind string
	Messages  []llm.Message
	Pending   *PendingAction
	UpdatedAt time.Time
}

type CheckpointStore interface {
	Get(threadID string) (*Checkpoint, bool)
	Put(threadID string, cp *Checkpoint)
	Delete(threadID string)

	// Acquire serializes writers on a thread; the returned func releases.
	Acquire(threadID string) func()
}

type Checkpoints struct {
	mu    sync.RWMutex
	data  map[string]*Checkpoint
	locks map[string]*sync.Mutex
}

func NewCheckpoints() *Checkpoints {
	return &Checkpoints{
		data:  make(map[string]*Checkpoint),
		locks: make(map[string]*sync.Mutex),
	}
}

func (s *Checkpoints) Get(threadID string) (*Checkpoint, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cp, ok := s.data[threadID]
	if !ok {
		return nil, false
	}
	copied := *cp
	copied.Messages = append([]llm.Message(nil), cp.Messages...)
	return &copied, true
}

func (s *Checkpoints) Put(threadID string, cp *Checkpoint) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *cp
	stored.Messages = append([]llm.Message(nil), cp.Messages...)
	stored.UpdatedAt = time.Now()
	s.data[threadID] = &stored
}

func (s *Checkpoints) Delete(threadID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, threadID)
}

func (s *Checkpoints) Acquire(threadID string) func() {
	s.mu.Lock()
	lock, ok := s.locks[threadID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[threadID] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
