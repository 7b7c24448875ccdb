package crawlers

import "github.com/RecoveryAshes/site2doc/internal/models"

// TaskStack 深度优先遍历使用的后进先出栈
type TaskStack struct {
	items []models.CrawlTask
}

// NewTaskStack 以种子任务初始化
func NewTaskStack(seed ...models.CrawlTask) *TaskStack {
	items := make([]models.CrawlTask, len(seed))
	copy(items, seed)
	return &TaskStack{items: items}
}

// Push 入栈
func (s *TaskStack) Push(task models.CrawlTask) {
	s.items = append(s.items, task)
}

// PushChildren 逆序入栈,使子链接按文档顺序出栈
func (s *TaskStack) PushChildren(links models.LinkSet, remainingDepth int) {
	for i := len(links) - 1; i >= 0; i-- {
		s.Push(models.CrawlTask{URL: links[i], RemainingDepth: remainingDepth})
	}
}

// Pop 出栈,栈空时返回false
func (s *TaskStack) Pop() (models.CrawlTask, bool) {
	if len(s.items) == 0 {
		return models.CrawlTask{}, false
	}
	last := len(s.items) - 1
	task := s.items[last]
	s.items[last] = models.CrawlTask{}
	s.items = s.items[:last]
	return task, true
}

// Len 栈中任务数
func (s *TaskStack) Len() int {
	return len(s.items)
}
