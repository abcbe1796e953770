package game

import (
	"log"
	"time"

	"github.com/decker502/worldstate/pkg/components"
	"github.com/decker502/worldstate/pkg/ecs"
	"github.com/decker502/worldstate/pkg/tasks"
)

// CollectPickup 拾取一个拾取物
//
// 拾取物被隐藏并记入账本。RespawnSeconds > 0 时记录冷却截止时间（UTC）并安排倒计时，
// 到期后重新出现；为 0 时使用配置的默认刷新时间；< 0 表示一次性拾取物，永不刷新。
//
// 返回：
//   - bool: 是否拾取成功（不是拾取物、已被拾取或冷却中返回 false）
func (e *Engine) CollectPickup(entity ecs.EntityID) bool {
	em := e.scene.EntityManager()
	if em == nil {
		return false
	}
	pickup, ok := ecs.GetComponent[*components.PickupComponent](em, entity)
	if !ok {
		return false
	}

	id := e.registry.EnsureID(em, entity)
	if id == "" {
		return false
	}
	if _, cooling := e.dialogue.PickupCooldown(id); cooling {
		return false
	}
	// 已拾取的一次性拾取物只留下关闭记录，没有冷却
	if active, ok := e.dialogue.ObjectState(id); ok && !active {
		return false
	}
	if node, ok := ecs.GetComponent[*components.SceneNodeComponent](em, entity); ok && !node.Active {
		return false
	}

	e.scene.SetObjectActive(e.dialogue, id, false)

	respawn := pickup.RespawnSeconds
	if respawn == 0 {
		respawn = e.cfg.PickupRespawnSeconds
	}
	if respawn <= 0 {
		return true
	}

	until := e.now().Add(time.Duration(respawn * float64(time.Second)))
	e.dialogue.SetPickupCooldown(id, until)
	e.schedulePickup(id, respawn, entity)
	return true
}

// PickupRemaining 返回拾取物距离重新出现的秒数（供 UI 进度条使用），没有冷却时为 0
func (e *Engine) PickupRemaining(id string) float64 {
	if task, ok := e.scheduler.Find(pickupTaskName(id)); ok {
		return task.Remaining()
	}
	until, ok := e.dialogue.PickupCooldown(id)
	if !ok {
		return 0
	}
	if remaining := until.Sub(e.now()).Seconds(); remaining > 0 {
		return remaining
	}
	return 0
}

// resumePickupCooldowns 处理账本中的冷却：到期的立即刷新，未到期的（重新）安排倒计时
func (e *Engine) resumePickupCooldowns() {
	now := e.now()
	for id, until := range e.dialogue.PickupCooldowns() {
		remaining := until.Sub(now).Seconds()
		if remaining <= 0 {
			e.respawnPickup(id)
			continue
		}
		owner := ecs.NoEntity
		if entity, ok := e.scene.Lookup(id); ok {
			owner = entity
		}
		e.schedulePickup(id, remaining, owner)
	}
}

// schedulePickup 安排拾取物倒计时（替换同一拾取物已有的倒计时）
//
// 倒计时属于存档槽分组：切换存档槽时取消；拾取物实体被销毁时也取消，
// 冷却仍保留在账本中，下次加载场景时重新安排。
func (e *Engine) schedulePickup(id string, seconds float64, owner ecs.EntityID) {
	name := pickupTaskName(id)
	if task, ok := e.scheduler.Find(name); ok {
		task.Cancel()
	}

	opts := []tasks.Option{tasks.InGroup(tasks.GroupSlot)}
	if owner != ecs.NoEntity {
		opts = append(opts, tasks.WithOwner(owner))
	}
	e.scheduler.After(name, seconds, func() {
		e.respawnPickup(id)
	}, opts...)
}

// respawnPickup 冷却结束：清除冷却和显隐覆盖，拾取物重新出现
func (e *Engine) respawnPickup(id string) {
	e.dialogue.ClearPickupCooldown(id)
	e.dialogue.ClearObjectState(id)
	if e.scene.Loaded() {
		e.scene.SetObjectActive(nil, id, true)
	}
	log.Printf("[Engine] Pickup %s respawned", id)
}

func pickupTaskName(id string) string {
	return "pickup:" + id
}
