package crawlers

import (
	"sort"
	"sync"
)

// VisitedSet 本次运行中已访问的URL,只增不减
//
// 由调用方创建并传入遍历过程,同一个集合可以跨多个种子共享。
// VisitIfNew 在一次加锁中完成检查和插入,并发调用同一URL时只有一个返回true。
type VisitedSet struct {
	mu   sync.RWMutex
	urls map[string]struct{}
}

// NewVisitedSet 创建空集合
func NewVisitedSet() *VisitedSet {
	return &VisitedSet{urls: make(map[string]struct{})}
}

// VisitIfNew URL首次出现时插入并返回true
func (s *VisitedSet) VisitIfNew(u string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.urls[u]; ok {
		return false
	}
	s.urls[u] = struct{}{}
	return true
}

// Contains 是否已访问
func (s *VisitedSet) Contains(u string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.urls[u]
	return ok
}

// Len 已访问数量
func (s *VisitedSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.urls)
}

// Snapshot 排序后的副本
func (s *VisitedSet) Snapshot() []string {
	s.mu.RLock()
	out := make([]string, 0, len(s.urls))
	for u := range s.urls {
		out = append(out, u)
	}
	s.mu.RUnlock()

	sort.Strings(out)
	return out
}
