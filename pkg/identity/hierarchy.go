package identity

import (
	"strings"

	"github.com/decker502/worldstate/pkg/components"
	"github.com/decker502/worldstate/pkg/ecs"
	"github.com/google/uuid"
)

// HierarchicalID 计算层级路径 ID
//
// 格式：sceneName + ":" + 从场景根到对象的祖先名称（"/" 连接，包含对象自身）。
// 纯函数，不登记、不缓存；改名或改父节点后重新计算会得到不同的字符串，
// 调用方必须把它当作另一个身份。旧路径下的账本条目会永久成为孤儿。
//
// 参数：
//   - em: 实体管理器
//   - sceneName: 当前场景名
//   - entity: 目标实体
//
// 返回：
//   - string: 路径 ID；实体没有 SceneNodeComponent 时返回空字符串
func HierarchicalID(em *ecs.EntityManager, sceneName string, entity ecs.EntityID) string {
	node, ok := ecs.GetComponent[*components.SceneNodeComponent](em, entity)
	if !ok {
		return ""
	}

	names := []string{node.Name}
	visited := map[ecs.EntityID]bool{entity: true}
	for parent := node.Parent; parent != ecs.NoEntity; {
		if visited[parent] {
			break // 防御环形父子关系
		}
		visited[parent] = true

		parentNode, ok := ecs.GetComponent[*components.SceneNodeComponent](em, parent)
		if !ok {
			break
		}
		names = append(names, parentNode.Name)
		parent = parentNode.Parent
	}

	// 反转为 根 -> 对象
	for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
	}
	return sceneName + ":" + strings.Join(names, "/")
}

// Key 返回对象在账本中使用的稳定键
//
// 优先使用注册表分配的 ID；对象没有分配 ID 时退回层级路径 ID（兼容旧存档）。
func Key(em *ecs.EntityManager, sceneName string, entity ecs.EntityID) string {
	if comp, ok := ecs.GetComponent[*components.PersistentIDComponent](em, entity); ok && comp.ID != "" {
		return comp.ID
	}
	return HierarchicalID(em, sceneName, entity)
}

// IsRegistryID 判断一个键是否属于注册表命名空间
// 路径 ID 一定包含 ":"，注册表 ID 是合法的 UUID
func IsRegistryID(key string) bool {
	if key == "" || strings.Contains(key, ":") {
		return false
	}
	_, err := uuid.Parse(key)
	return err == nil
}
