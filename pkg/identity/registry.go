// Package identity 提供可持久化世界对象的稳定标识
//
// 两种标识策略并存，并且保持为两个独立的命名空间：
//   - 注册表分配的不透明 ID（Registry）：随机生成一次，随对象保存，
//     进程内全局唯一，适用于会被移动/改名的拾取物等对象
//   - 层级路径 ID（HierarchicalID）：场景名 + ":" + 祖先名路径，
//     每次按需重新计算，不登记、不缓存
package identity

import (
	"log"

	"github.com/decker502/worldstate/pkg/components"
	"github.com/decker502/worldstate/pkg/ecs"
	"github.com/google/uuid"
)

// owner 一个 ID 的持有者（场景实体管理器 + 实体）
type owner struct {
	em     *ecs.EntityManager
	entity ecs.EntityID
}

// live 持有者是否仍然存活
func (o owner) live() bool {
	return o.em != nil && o.em.Exists(o.entity)
}

// Registry 稳定 ID 注册表
//
// 不变量：
//   - 同一进程内，任意两个已登记（存活）的 ID 不重复
//   - ID 在其持有者启用期间不会被复用；持有者禁用/销毁后调用 Release 才会释放
//
// 注册表以显式对象的形式传给持久化引擎，不使用全局单例。
type Registry struct {
	owners   map[string]owner
	generate func() string
}

// NewRegistry 创建空注册表
func NewRegistry() *Registry {
	return &Registry{
		owners:   make(map[string]owner),
		generate: uuid.NewString,
	}
}

// EnsureID 确保实体拥有持久化 ID（幂等）
//
// 实体已携带 ID 时原样返回并登记；否则生成一个与所有已登记 ID 都不同的新 ID，
// 写回实体的 PersistentIDComponent。若携带的 ID 已被另一个存活对象持有
// （复制/克隆出来的对象），则为当前实体重新分配。
//
// 参数：
//   - em: 实体所在的实体管理器
//   - entity: 目标实体
//
// 返回：
//   - string: 实体的持久化 ID，实体不存在时返回空字符串
func (r *Registry) EnsureID(em *ecs.EntityManager, entity ecs.EntityID) string {
	if !em.Exists(entity) {
		return ""
	}

	comp, ok := ecs.GetComponent[*components.PersistentIDComponent](em, entity)
	if !ok {
		comp = &components.PersistentIDComponent{}
		ecs.AddComponent(em, entity, comp)
	}

	self := owner{em: em, entity: entity}
	if comp.ID != "" {
		holder, taken := r.owners[comp.ID]
		if !taken || holder == self || !holder.live() {
			r.owners[comp.ID] = self
			return comp.ID
		}
		log.Printf("[Registry] Duplicate id %s on entity %d (held by entity %d), reassigning", comp.ID, entity, holder.entity)
	}

	comp.ID = r.fresh()
	r.owners[comp.ID] = self
	return comp.ID
}

// Release 将 ID 从存活注册表中移除
// 持有者被禁用或销毁时调用；释放后该 ID 可以被新对象复用
func (r *Registry) Release(id string) {
	delete(r.owners, id)
}

// IsLive 检查 ID 当前是否被登记
func (r *Registry) IsLive(id string) bool {
	_, ok := r.owners[id]
	return ok
}

// Count 返回当前登记的 ID 数量
func (r *Registry) Count() int {
	return len(r.owners)
}

// Attach 监听实体销毁，自动释放被销毁实体持有的 ID
func (r *Registry) Attach(em *ecs.EntityManager) {
	em.OnDestroy(func(entity ecs.EntityID) {
		comp, ok := ecs.GetComponent[*components.PersistentIDComponent](em, entity)
		if !ok || comp.ID == "" {
			return
		}
		if holder, taken := r.owners[comp.ID]; taken && holder.em == em && holder.entity == entity {
			r.Release(comp.ID)
		}
	})
}

// ReleaseScene 释放某个实体管理器持有的全部 ID
// 场景卸载时调用，之后重新加载的同一场景可以拿回原来的 ID
//
// 返回：
//   - int: 被释放的 ID 数量
func (r *Registry) ReleaseScene(em *ecs.EntityManager) int {
	n := 0
	for id, holder := range r.owners {
		if holder.em == em {
			delete(r.owners, id)
			n++
		}
	}
	return n
}

// Validate 校验一个场景内所有持久化 ID 的唯一性
//
// 按实体创建顺序遍历；同一 ID 出现在多个存活对象上时，较晚创建的对象获得新 ID。
// 这是正确性修复而不是错误，不会向调用方报告失败。
//
// 返回：
//   - int: 被重新分配 ID 的实体数量
func (r *Registry) Validate(em *ecs.EntityManager) int {
	repaired := 0
	seen := make(map[string]ecs.EntityID)

	for _, entity := range ecs.GetEntitiesWith1[*components.PersistentIDComponent](em) {
		comp, _ := ecs.GetComponent[*components.PersistentIDComponent](em, entity)
		if comp.ID == "" {
			r.EnsureID(em, entity)
			continue
		}

		self := owner{em: em, entity: entity}
		_, dupInScene := seen[comp.ID]
		holder, taken := r.owners[comp.ID]
		dupElsewhere := taken && holder != self && holder.live()
		if dupInScene || (dupElsewhere && holder.em != em) {
			comp.ID = r.fresh()
			repaired++
		}
		// 同场景内较早的持有者在本轮中已先被访问，这里直接改为当前实体
		r.owners[comp.ID] = self
		seen[comp.ID] = entity
	}

	if repaired > 0 {
		log.Printf("[Registry] Validation reassigned %d duplicated id(s)", repaired)
	}
	return repaired
}

// fresh 生成一个未被登记的新 ID
func (r *Registry) fresh() string {
	for {
		id := r.generate()
		if _, taken := r.owners[id]; !taken {
			return id
		}
	}
}
