// Package scenestate 实现场景默认快照与差异应用
//
// 场景加载时记录每个可持久化对象的默认激活状态；切换存档槽或加载存档时，
// 先把被触碰过的对象恢复为默认值，再应用当前槽账本中的稀疏覆盖。
package scenestate

import (
	"log"
	"sort"

	"github.com/decker502/worldstate/pkg/components"
	"github.com/decker502/worldstate/pkg/ecs"
	"github.com/decker502/worldstate/pkg/identity"
	"github.com/decker502/worldstate/pkg/ledger"
	"github.com/decker502/worldstate/pkg/tasks"
)

// DefaultRescanFrames 延迟重扫描等待的帧数
const DefaultRescanFrames = 1

// SceneState 一个场景实例的默认快照与触碰集合
//
// 生命周期：
//  1. Capture：场景加载后遍历一次场景，缓存默认激活状态，清空上一个实例的触碰集合
//  2. RefreshSceneForCurrentSlot：恢复默认值 -> 应用存档 -> 安排延迟重扫描
//  3. Unload：场景卸载，取消尚未执行的延迟重扫描
type SceneState struct {
	scheduler    *tasks.Scheduler
	rescanFrames int

	em        *ecs.EntityManager
	sceneName string
	defaults  map[string]bool
	touched   map[string]struct{}

	rescanTask *tasks.Task
}

// NewSceneState 创建场景状态
//
// 参数：
//   - scheduler: 用于延迟重扫描的任务调度器
//   - rescanFrames: 延迟重扫描等待的帧数，<1 时使用 DefaultRescanFrames
func NewSceneState(scheduler *tasks.Scheduler, rescanFrames int) *SceneState {
	if rescanFrames < 1 {
		rescanFrames = DefaultRescanFrames
	}
	return &SceneState{
		scheduler:    scheduler,
		rescanFrames: rescanFrames,
		defaults:     make(map[string]bool),
		touched:      make(map[string]struct{}),
	}
}

// Capture 记录场景默认快照
//
// 必须在任何应用阶段之前完整执行。会清空上一个场景实例遗留的触碰集合，
// 并取消上一个场景尚未执行的延迟重扫描。
func (s *SceneState) Capture(em *ecs.EntityManager, sceneName string) {
	s.cancelRescan()

	s.em = em
	s.sceneName = sceneName
	s.defaults = make(map[string]bool)
	s.touched = make(map[string]struct{})

	for key, entity := range s.liveIndex() {
		node, _ := ecs.GetComponent[*components.SceneNodeComponent](em, entity)
		s.defaults[key] = node.Active
	}

	log.Printf("[SceneState] Captured %d default(s) for scene %s", len(s.defaults), sceneName)
}

// Unload 场景卸载：取消延迟重扫描并丢弃快照
func (s *SceneState) Unload() {
	s.cancelRescan()
	s.em = nil
	s.sceneName = ""
	s.defaults = make(map[string]bool)
	s.touched = make(map[string]struct{})
}

// Loaded 是否已有场景快照
func (s *SceneState) Loaded() bool {
	return s.em != nil
}

// SceneName 返回当前场景名
func (s *SceneState) SceneName() string {
	return s.sceneName
}

// EntityManager 返回当前场景的实体管理器
func (s *SceneState) EntityManager() *ecs.EntityManager {
	return s.em
}

// Default 返回对象的默认激活状态
func (s *SceneState) Default(key string) (bool, bool) {
	active, ok := s.defaults[key]
	return active, ok
}

// Touched 返回触碰集合（排序后）
func (s *SceneState) Touched() []string {
	keys := make([]string, 0, len(s.touched))
	for k := range s.touched {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Lookup 按稳定键查找当前存活的对象
func (s *SceneState) Lookup(key string) (ecs.EntityID, bool) {
	if s.em == nil {
		return ecs.NoEntity, false
	}
	entity, ok := s.liveIndex()[key]
	return entity, ok
}

// RefreshPipeline 构建当前存档槽的刷新流水线
func (s *SceneState) RefreshPipeline(l *ledger.DialogueLedger) *Pipeline {
	return NewPipeline(
		Stage{Name: StageRestoreDefaults, Run: func() { s.RestoreSceneDefaults(l) }},
		Stage{Name: StageApplyLoaded, Run: func() { s.ApplyLoadedStateToScene(l) }},
		Stage{Name: StageDeferredRescan, Run: func() { s.ScheduleRescan(l) }},
	)
}

// RefreshSceneForCurrentSlot 恢复默认值后应用账本
// 顺序不能颠倒，否则上一个槽遗留的触碰会保留下来
func (s *SceneState) RefreshSceneForCurrentSlot(l *ledger.DialogueLedger) {
	s.RefreshPipeline(l).Run()
}

// RestoreSceneDefaults 把触碰集合中的对象恢复为默认激活状态
//
// 找不到的对象（已不在本场景实例中）直接跳过。之后重新启用所有未永久完成的对话触发器。
//
// 返回：
//   - int: 激活状态发生变化的对象数量
func (s *SceneState) RestoreSceneDefaults(l *ledger.DialogueLedger) int {
	if s.em == nil {
		return 0
	}

	index := s.liveIndex()
	changed := 0
	for key := range s.touched {
		entity, ok := index[key]
		if !ok {
			continue
		}
		def, ok := s.defaults[key]
		if !ok {
			continue // 快照之后才出现的对象没有默认值，保持现状
		}
		if s.setActive(entity, def) {
			changed++
		}
	}
	s.touched = make(map[string]struct{})

	for _, entity := range ecs.GetEntitiesWith1[*components.DialogueTriggerComponent](s.em) {
		trigger, _ := ecs.GetComponent[*components.DialogueTriggerComponent](s.em, entity)
		if l == nil || !l.IsNpcCompleted(trigger.NpcID) {
			trigger.Enabled = true
		}
	}

	return changed
}

// ApplyLoadedStateToScene 应用账本中的显隐覆盖
//
// 对账本中每个 (id, 期望状态)：找到存活对象则记入触碰集合，状态不同则修改。
// 随后按 NPC 完成情况设置所有对话触发器。连续执行两次，第二次不产生任何修改。
//
// 返回：
//   - int: 激活状态发生变化的对象数量
func (s *SceneState) ApplyLoadedStateToScene(l *ledger.DialogueLedger) int {
	if s.em == nil {
		log.Printf("[SceneState] Warning: apply requested before scene capture, ignored")
		return 0
	}
	if l == nil {
		return 0
	}

	index := s.liveIndex()
	changed := 0
	for key, desired := range l.ObjectStates() {
		entity, ok := index[key]
		if !ok {
			continue
		}
		s.touched[key] = struct{}{}
		if s.setActive(entity, desired) {
			changed++
		}
	}

	s.RescanTriggers(l)
	return changed
}

// SetObjectActive 显式切换对象（对话选项、过场触发器、一次性拾取物）
//
// 写入账本并记入触碰集合；对象不在当前场景时只写账本。
//
// 返回：
//   - bool: 存活对象的激活状态是否发生变化
func (s *SceneState) SetObjectActive(l *ledger.DialogueLedger, key string, active bool) bool {
	if key == "" {
		return false
	}
	if l != nil {
		l.SetObjectState(key, active)
	}
	entity, ok := s.Lookup(key)
	if !ok {
		return false
	}
	s.touched[key] = struct{}{}
	return s.setActive(entity, active)
}

// DisableTriggersFor 禁用绑定到某个 NPC 的所有存活触发器
func (s *SceneState) DisableTriggersFor(npcID string) int {
	if s.em == nil {
		return 0
	}
	n := 0
	for _, entity := range ecs.GetEntitiesWith1[*components.DialogueTriggerComponent](s.em) {
		trigger, _ := ecs.GetComponent[*components.DialogueTriggerComponent](s.em, entity)
		if trigger.NpcID == npcID && trigger.Enabled {
			trigger.Enabled = false
			n++
		}
	}
	return n
}

// RescanTriggers 根据账本重新推导所有对话触发器的启用状态
//
// 返回：
//   - int: 启用状态发生变化的触发器数量
func (s *SceneState) RescanTriggers(l *ledger.DialogueLedger) int {
	if s.em == nil || l == nil {
		return 0
	}
	changed := 0
	for _, entity := range ecs.GetEntitiesWith1[*components.DialogueTriggerComponent](s.em) {
		trigger, _ := ecs.GetComponent[*components.DialogueTriggerComponent](s.em, entity)
		want := !l.IsNpcCompleted(trigger.NpcID)
		if trigger.Enabled != want {
			trigger.Enabled = want
			changed++
		}
	}
	return changed
}

// ScheduleRescan 安排延迟重扫描
//
// 与恢复操作同一帧内新建或改挂的触发器在同帧扫描中可能被遗漏，
// 因此在若干帧后再扫描一次。已安排的重扫描会被替换。场景卸载时取消。
func (s *SceneState) ScheduleRescan(l *ledger.DialogueLedger) *tasks.Task {
	s.cancelRescan()
	if s.scheduler == nil || s.em == nil {
		return nil
	}
	em := s.em
	s.rescanTask = s.scheduler.AfterFrames("scene:rescan-triggers", s.rescanFrames, func() {
		if s.em != em {
			return // 场景已切换
		}
		if n := s.RescanTriggers(l); n > 0 {
			log.Printf("[SceneState] Deferred rescan updated %d trigger(s)", n)
		}
	}, tasks.InGroup(tasks.GroupScene))
	return s.rescanTask
}

// RescanPending 是否有尚未执行的延迟重扫描
func (s *SceneState) RescanPending() bool {
	return s.rescanTask != nil && s.rescanTask.State() == tasks.StatePending
}

func (s *SceneState) cancelRescan() {
	if s.rescanTask != nil {
		s.rescanTask.Cancel()
		s.rescanTask = nil
	}
}

// liveIndex 建立 稳定键 -> 实体 的索引（只含可持久化对象）
func (s *SceneState) liveIndex() map[string]ecs.EntityID {
	index := make(map[string]ecs.EntityID)
	if s.em == nil {
		return index
	}
	for _, entity := range ecs.GetEntitiesWith2[*components.SceneNodeComponent, *components.PersistableComponent](s.em) {
		key := identity.Key(s.em, s.sceneName, entity)
		if key == "" {
			continue
		}
		if _, dup := index[key]; dup {
			continue // 同名兄弟节点：保留先创建的
		}
		index[key] = entity
	}
	return index
}

func (s *SceneState) setActive(entity ecs.EntityID, active bool) bool {
	node, ok := ecs.GetComponent[*components.SceneNodeComponent](s.em, entity)
	if !ok || node.Active == active {
		return false
	}
	node.Active = active
	return true
}
