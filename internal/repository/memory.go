package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/paiban/dutyroster/pkg/errors"
	"github.com/paiban/dutyroster/pkg/model"
)

// MemoryRunStore 进程内运行记录存储，未配置数据库时使用
type MemoryRunStore struct {
	mu   sync.RWMutex
	runs map[uuid.UUID]*model.Run
}

// NewMemoryRunStore 创建进程内存储
func NewMemoryRunStore() *MemoryRunStore {
	return &MemoryRunStore{runs: make(map[uuid.UUID]*model.Run)}
}

// Create 保存运行记录
func (s *MemoryRunStore) Create(_ context.Context, run *model.Run) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	now := time.Now()
	if run.CreatedAt.IsZero() {
		run.CreatedAt = now
	}
	run.UpdatedAt = now

	cp := *run
	s.mu.Lock()
	s.runs[run.ID] = &cp
	s.mu.Unlock()
	return nil
}

// GetByID 根据ID获取运行记录
func (s *MemoryRunStore) GetByID(_ context.Context, id uuid.UUID) (*model.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[id]
	if !ok {
		return nil, apperrors.NotFound("排班记录", id.String())
	}
	cp := *run
	return &cp, nil
}

// List 列出运行记录，不含结果内容
func (s *MemoryRunStore) List(_ context.Context, filter ListFilter) ([]*model.Run, int, error) {
	s.mu.RLock()
	var matched []*model.Run
	for _, run := range s.runs {
		if filter.Year > 0 && run.Year != filter.Year {
			continue
		}
		if filter.Month > 0 && run.Month != filter.Month {
			continue
		}
		if filter.Status != "" && run.Status != filter.Status {
			continue
		}
		cp := *run
		cp.Payload = nil
		matched = append(matched, &cp)
	}
	s.mu.RUnlock()

	asc := orderDir(filter.OrderDir) == "ASC"
	sort.Slice(matched, func(i, j int) bool {
		if asc {
			return matched[i].CreatedAt.Before(matched[j].CreatedAt)
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	if filter.Offset >= total {
		return nil, total, nil
	}
	end := total
	if filter.Limit > 0 && filter.Offset+filter.Limit < end {
		end = filter.Offset + filter.Limit
	}
	return matched[filter.Offset:end], total, nil
}
