package schedule

import (
	"container/heap"
	"sync"
	"time"
)

// Scheduler: очередь отложенных задач в симулированном времени.
// Время двигается только через Advance, поэтому задачи выполняются
// на том же тике, что и вызывающий код.
type Scheduler struct {
	now   time.Duration
	seq   uint64
	tasks taskQueue
	mu    sync.Mutex
}

type task struct {
	deadline time.Duration
	seq      uint64
	fn       func()
	index    int
}

// NewScheduler создаёт пустой планировщик
func NewScheduler() *Scheduler {
	s := &Scheduler{}
	heap.Init(&s.tasks)
	return s
}

// After ставит fn на выполнение через delay симулированного времени.
// Отрицательная задержка считается нулевой.
func (s *Scheduler) After(delay time.Duration, fn func()) {
	if fn == nil {
		return
	}
	if delay < 0 {
		delay = 0
	}

	s.mu.Lock()
	s.seq++
	heap.Push(&s.tasks, &task{deadline: s.now + delay, seq: s.seq, fn: fn})
	s.mu.Unlock()
}

// Advance сдвигает время на dt и выполняет все задачи, срок которых наступил.
// Задача, поставленная из другой задачи со сроком в пределах того же окна,
// выполняется в этом же вызове. Возвращает число выполненных задач.
func (s *Scheduler) Advance(dt time.Duration) int {
	s.mu.Lock()
	if dt > 0 {
		s.now += dt
	}
	s.mu.Unlock()

	ran := 0
	for {
		s.mu.Lock()
		if s.tasks.Len() == 0 || s.tasks[0].deadline > s.now {
			s.mu.Unlock()
			return ran
		}
		t := heap.Pop(&s.tasks).(*task)
		s.mu.Unlock()

		t.fn()
		ran++
	}
}

// Pending возвращает число ожидающих задач
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tasks.Len()
}

// Now возвращает текущее симулированное время
func (s *Scheduler) Now() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// Clear отбрасывает все ожидающие задачи (выгрузка мира)
func (s *Scheduler) Clear() {
	s.mu.Lock()
	s.tasks = s.tasks[:0]
	s.mu.Unlock()
}

// taskQueue реализует heap.Interface: раньше срок, при равенстве — раньше поставлена
type taskQueue []*task

func (q taskQueue) Len() int { return len(q) }

func (q taskQueue) Less(i, j int) bool {
	if q[i].deadline != q[j].deadline {
		return q[i].deadline < q[j].deadline
	}
	return q[i].seq < q[j].seq
}

func (q taskQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *taskQueue) Push(x any) {
	item := x.(*task)
	item.index = len(*q)
	*q = append(*q, item)
}

func (q *taskQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*q = old[:n-1]
	return item
}
