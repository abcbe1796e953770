// Package tasks 提供由外部 tick 驱动的可恢复、可取消任务
//
// 多帧流程（重生倒计时、拾取物再生、延迟一帧的重扫描、首领部件依次出现）
// 都建模为 Task：由 Scheduler.Update(dt) 推进，不阻塞，不使用 goroutine。
// 每个任务带有所属实体和分组，实体禁用/销毁或切换存档槽时可按分组整体取消。
package tasks

import (
	"log"

	"github.com/decker502/worldstate/pkg/ecs"
)

// 常用任务分组
const (
	GroupScene = "scene" // 场景卸载时取消
	GroupSlot  = "slot"  // 切换存档槽时取消
)

// State 任务状态
type State int

const (
	// StatePending 等待中
	StatePending State = iota
	// StateDone 已完成（回调已执行）
	StateDone
	// StateCanceled 已取消（回调不会执行）
	StateCanceled
)

// String 返回 State 的字符串表示
func (s State) String() string {
	switch s {
	case StatePending:
		return "Pending"
	case StateDone:
		return "Done"
	case StateCanceled:
		return "Canceled"
	default:
		return "Unknown"
	}
}

// Task 一个倒计时或延迟帧任务
type Task struct {
	Name string

	owner  ecs.EntityID
	groups []string

	duration float64 // 秒；帧任务为 0
	elapsed  float64
	frames   int // 剩余帧数；时间任务为 0

	onDone func()
	state  State
}

// Remaining 剩余时间（秒），供 UI 滑条显示
func (t *Task) Remaining() float64 {
	if t.state != StatePending {
		return 0
	}
	r := t.duration - t.elapsed
	if r < 0 {
		return 0
	}
	return r
}

// Progress 完成进度 0.0 ~ 1.0
func (t *Task) Progress() float64 {
	if t.state == StateDone {
		return 1
	}
	if t.duration <= 0 {
		return 0
	}
	p := t.elapsed / t.duration
	if p > 1 {
		return 1
	}
	return p
}

// State 返回任务当前状态
func (t *Task) State() State {
	return t.state
}

// Cancel 停止并丢弃任务，回调不会执行
func (t *Task) Cancel() {
	if t.state == StatePending {
		t.state = StateCanceled
	}
}

// inGroup 任务是否属于分组
func (t *Task) inGroup(group string) bool {
	for _, g := range t.groups {
		if g == group {
			return true
		}
	}
	return false
}

// Option 任务创建选项
type Option func(*Task)

// WithOwner 指定任务所属实体
func WithOwner(owner ecs.EntityID) Option {
	return func(t *Task) { t.owner = owner }
}

// InGroup 把任务加入分组
func InGroup(groups ...string) Option {
	return func(t *Task) { t.groups = append(t.groups, groups...) }
}

// Scheduler 单线程任务调度器
type Scheduler struct {
	tasks []*Task
}

// NewScheduler 创建调度器
func NewScheduler() *Scheduler {
	return &Scheduler{tasks: make([]*Task, 0)}
}

// After 在 seconds 秒后执行 fn
func (s *Scheduler) After(name string, seconds float64, fn func(), opts ...Option) *Task {
	t := &Task{Name: name, duration: seconds, onDone: fn}
	return s.add(t, opts)
}

// AfterFrames 在 frames 次 Update 之后执行 fn（frames 最小为 1）
func (s *Scheduler) AfterFrames(name string, frames int, fn func(), opts ...Option) *Task {
	if frames < 1 {
		frames = 1
	}
	t := &Task{Name: name, frames: frames, onDone: fn}
	return s.add(t, opts)
}

func (s *Scheduler) add(t *Task, opts []Option) *Task {
	for _, opt := range opts {
		opt(t)
	}
	s.tasks = append(s.tasks, t)
	return t
}

// Update 推进所有任务
//
// 本次 Update 中回调新建的任务从下一次 Update 开始计时。
// 回调执行期间，同一轮尚未推进的任务仍对 CancelGroup、CancelOwner、Find 可见。
func (s *Scheduler) Update(dt float64) {
	n := len(s.tasks)
	current := s.tasks[:n:n]

	for _, t := range current {
		if t.state != StatePending {
			continue
		}

		finished := false
		if t.frames > 0 {
			t.frames--
			finished = t.frames == 0
		} else {
			t.elapsed += dt
			finished = t.elapsed >= t.duration
		}
		if !finished {
			continue
		}

		t.state = StateDone
		if t.onDone != nil {
			t.onDone()
		}
	}

	// 清理已完成和回调期间被取消的任务
	kept := make([]*Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if t.state == StatePending {
			kept = append(kept, t)
		}
	}
	s.tasks = kept
}

// CancelOwner 取消某实体拥有的所有任务
//
// 返回：
//   - int: 被取消的任务数量
func (s *Scheduler) CancelOwner(owner ecs.EntityID) int {
	return s.cancelWhere(func(t *Task) bool { return t.owner == owner })
}

// CancelGroup 取消某分组的所有任务
func (s *Scheduler) CancelGroup(group string) int {
	n := s.cancelWhere(func(t *Task) bool { return t.inGroup(group) })
	if n > 0 {
		log.Printf("[Scheduler] Canceled %d task(s) in group %q", n, group)
	}
	return n
}

// CancelAll 取消全部任务
func (s *Scheduler) CancelAll() int {
	return s.cancelWhere(func(*Task) bool { return true })
}

func (s *Scheduler) cancelWhere(match func(*Task) bool) int {
	n := 0
	for _, t := range s.tasks {
		if t.state == StatePending && match(t) {
			t.Cancel()
			n++
		}
	}
	return n
}

// Pending 返回等待中的任务数量
func (s *Scheduler) Pending() int {
	n := 0
	for _, t := range s.tasks {
		if t.state == StatePending {
			n++
		}
	}
	return n
}

// Find 按名称查找等待中的任务
func (s *Scheduler) Find(name string) (*Task, bool) {
	for _, t := range s.tasks {
		if t.state == StatePending && t.Name == name {
			return t, true
		}
	}
	return nil, false
}
