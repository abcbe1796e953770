// Package ledger 实现按稳定 ID 记录的进度账本
//
// 包含三类账本：
//   - DialogueLedger：NPC 对话完成集合、对象显隐覆盖、拾取物冷却（即存档中的 DialogueSave）
//   - CutsceneLedger：每个存档槽的已看过/待提交过场动画
//   - QuestLedger：每个存档槽的任务状态机
//
// 账本只做数据记录，不接触场景对象；场景同步由 scenestate 包负责。
package ledger

import (
	"log"
	"sort"
	"time"
)

// DialogueSave 对话账本的持久化形式
//
// 对象显隐使用两个平行数组（ID 与状态一一对应），冷却时间使用 ISO-8601 UTC 字符串。
// 空集合序列化时省略。
type DialogueSave struct {
	CompletedNpcIDs     []string          `yaml:"completedNpcIds,omitempty"`
	ToggledObjectIDs    []string          `yaml:"toggledObjectIds,omitempty"`
	ToggledObjectStates []bool            `yaml:"toggledObjectStates,omitempty"`
	PickupCooldowns     map[string]string `yaml:"pickupCooldowns,omitempty"`
}

// DialogueLedger 对话/对象显隐/拾取物冷却账本
//
// 不变量：只记录被显式触碰过的 ID。从未交互过的对象保持场景默认值，
// 不出现在账本中（稀疏表示，记录小且可安全合并）。
type DialogueLedger struct {
	completed    map[string]struct{}
	objectStates map[string]bool
	cooldowns    map[string]time.Time

	// 自加载以来被清除的条目，合并到旧存档时需要同步删除
	clearedStates    map[string]struct{}
	clearedCooldowns map[string]struct{}
}

// NewDialogueLedger 创建空账本
func NewDialogueLedger() *DialogueLedger {
	return &DialogueLedger{
		completed:        make(map[string]struct{}),
		objectStates:     make(map[string]bool),
		cooldowns:        make(map[string]time.Time),
		clearedStates:    make(map[string]struct{}),
		clearedCooldowns: make(map[string]struct{}),
	}
}

// MarkNpcCompleted 标记 NPC 对话已完成（只增不减）
//
// 返回：
//   - bool: true 表示本次新标记，false 表示之前已标记
func (l *DialogueLedger) MarkNpcCompleted(npcID string) bool {
	if npcID == "" {
		return false
	}
	if _, ok := l.completed[npcID]; ok {
		return false
	}
	l.completed[npcID] = struct{}{}
	return true
}

// IsNpcCompleted 检查 NPC 对话是否已完成
func (l *DialogueLedger) IsNpcCompleted(npcID string) bool {
	_, ok := l.completed[npcID]
	return ok
}

// CompletedNpcIDs 返回已完成的 NPC ID（排序后的副本）
func (l *DialogueLedger) CompletedNpcIDs() []string {
	return sortedKeys(l.completed)
}

// SetObjectState 记录对象的期望激活状态
func (l *DialogueLedger) SetObjectState(id string, active bool) {
	if id == "" {
		return
	}
	l.objectStates[id] = active
	delete(l.clearedStates, id)
}

// ObjectState 查询对象的期望激活状态
//
// 返回：
//   - active: 期望状态
//   - ok: false 表示该对象从未被触碰，应保持场景默认值
func (l *DialogueLedger) ObjectState(id string) (active bool, ok bool) {
	active, ok = l.objectStates[id]
	return active, ok
}

// ClearObjectState 移除对象的显隐覆盖，使其回到场景默认值
func (l *DialogueLedger) ClearObjectState(id string) {
	if _, ok := l.objectStates[id]; ok {
		delete(l.objectStates, id)
		l.clearedStates[id] = struct{}{}
	}
}

// ObjectStates 返回所有显隐覆盖（副本）
func (l *DialogueLedger) ObjectStates() map[string]bool {
	out := make(map[string]bool, len(l.objectStates))
	for id, active := range l.objectStates {
		out[id] = active
	}
	return out
}

// SetPickupCooldown 记录拾取物重新可用的时间（统一转为 UTC）
func (l *DialogueLedger) SetPickupCooldown(id string, until time.Time) {
	if id == "" {
		return
	}
	l.cooldowns[id] = until.UTC()
	delete(l.clearedCooldowns, id)
}

// PickupCooldown 查询拾取物冷却截止时间
func (l *DialogueLedger) PickupCooldown(id string) (time.Time, bool) {
	until, ok := l.cooldowns[id]
	return until, ok
}

// ClearPickupCooldown 移除拾取物冷却
func (l *DialogueLedger) ClearPickupCooldown(id string) {
	if _, ok := l.cooldowns[id]; ok {
		delete(l.cooldowns, id)
		l.clearedCooldowns[id] = struct{}{}
	}
}

// PickupCooldowns 返回所有冷却（副本）
func (l *DialogueLedger) PickupCooldowns() map[string]time.Time {
	out := make(map[string]time.Time, len(l.cooldowns))
	for id, until := range l.cooldowns {
		out[id] = until
	}
	return out
}

// Clone 深拷贝账本
func (l *DialogueLedger) Clone() *DialogueLedger {
	c := NewDialogueLedger()
	for id := range l.completed {
		c.completed[id] = struct{}{}
	}
	for id, active := range l.objectStates {
		c.objectStates[id] = active
	}
	for id, until := range l.cooldowns {
		c.cooldowns[id] = until
	}
	for id := range l.clearedStates {
		c.clearedStates[id] = struct{}{}
	}
	for id := range l.clearedCooldowns {
		c.clearedCooldowns[id] = struct{}{}
	}
	return c
}

// MergeInto 把内存中的账本增量合并到已存储的账本上，返回新账本
//
// 规则：
//   - 完成的 NPC：并集
//   - 显隐覆盖、冷却：内存中的值覆盖存储值；内存中清除过的条目从结果中删除
//
// stored 为 nil 时等价于合并到空账本。stored 不会被修改。
func (l *DialogueLedger) MergeInto(stored *DialogueLedger) *DialogueLedger {
	var merged *DialogueLedger
	if stored == nil {
		merged = NewDialogueLedger()
	} else {
		merged = stored.Clone()
	}

	for id := range l.completed {
		merged.completed[id] = struct{}{}
	}
	for id := range l.clearedStates {
		delete(merged.objectStates, id)
	}
	for id, active := range l.objectStates {
		merged.objectStates[id] = active
	}
	for id := range l.clearedCooldowns {
		delete(merged.cooldowns, id)
	}
	for id, until := range l.cooldowns {
		merged.cooldowns[id] = until
	}

	// 合并结果即新的存储基线，不再携带清除记录
	merged.clearedStates = make(map[string]struct{})
	merged.clearedCooldowns = make(map[string]struct{})
	return merged
}

// ToSave 转换为持久化形式（ID 排序，保证输出稳定）
func (l *DialogueLedger) ToSave() DialogueSave {
	var save DialogueSave

	if len(l.completed) > 0 {
		save.CompletedNpcIDs = sortedKeys(l.completed)
	}

	if len(l.objectStates) > 0 {
		ids := make([]string, 0, len(l.objectStates))
		for id := range l.objectStates {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		save.ToggledObjectIDs = ids
		save.ToggledObjectStates = make([]bool, len(ids))
		for i, id := range ids {
			save.ToggledObjectStates[i] = l.objectStates[id]
		}
	}

	if len(l.cooldowns) > 0 {
		save.PickupCooldowns = make(map[string]string, len(l.cooldowns))
		for id, until := range l.cooldowns {
			save.PickupCooldowns[id] = until.UTC().Format(time.RFC3339Nano)
		}
	}

	return save
}

// DialogueLedgerFromSave 从持久化形式恢复账本
//
// 平行数组长度不一致时以较短者为准；无法解析的冷却时间被丢弃并记录日志。
func DialogueLedgerFromSave(save DialogueSave) *DialogueLedger {
	l := NewDialogueLedger()

	for _, id := range save.CompletedNpcIDs {
		l.MarkNpcCompleted(id)
	}

	n := len(save.ToggledObjectIDs)
	if len(save.ToggledObjectStates) != n {
		log.Printf("[DialogueLedger] Warning: toggled ids/states length mismatch (%d vs %d)",
			n, len(save.ToggledObjectStates))
		if len(save.ToggledObjectStates) < n {
			n = len(save.ToggledObjectStates)
		}
	}
	for i := 0; i < n; i++ {
		l.SetObjectState(save.ToggledObjectIDs[i], save.ToggledObjectStates[i])
	}

	for id, iso := range save.PickupCooldowns {
		until, err := time.Parse(time.RFC3339Nano, iso)
		if err != nil {
			log.Printf("[DialogueLedger] Warning: dropping cooldown for %s: %v", id, err)
			continue
		}
		l.SetPickupCooldown(id, until)
	}

	return l
}

// sortedKeys 返回集合的排序键
func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
