package store

import (
	"context"
	"sync"

	"github.com/m-mizutani/takeout/pkg/domain/interfaces"
	"github.com/m-mizutani/takeout/pkg/domain/model"
)

// Memory keeps the session in process memory.
type Memory struct {
	mu      sync.Mutex
	session *model.Session
}

var _ interfaces.SessionStore = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{}
}

func (x *Memory) Get(ctx context.Context) (*model.Session, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.session == nil {
		return nil, nil
	}
	copied := *x.session
	return &copied, nil
}

func (x *Memory) Put(ctx context.Context, session *model.Session) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	copied := *session
	x.session = &copied
	return nil
}

func (x *Memory) Delete(ctx context.Context) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.session = nil
	return nil
}
