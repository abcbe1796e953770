package components

import "github.com/decker502/worldstate/pkg/ecs"

// SceneNodeComponent 场景层级节点组件
// 代替引擎的 GameObject：名称、父节点、激活状态
//
// 注意：
//   - Parent 为 ecs.NoEntity 表示该节点挂在场景根下
//   - Name 参与层级路径 ID 的计算，改名或改父节点会得到新的路径 ID
type SceneNodeComponent struct {
	Name   string       // 节点名称
	Parent ecs.EntityID // 父节点实体ID
	Active bool         // 自身激活状态（activeSelf）
}

// PersistableComponent 可持久化标记组件（纯标记，无字段）
// 拥有此组件的节点会进入场景默认快照，其激活状态可被存档覆盖
type PersistableComponent struct{}

// PositionComponent 世界坐标
type PositionComponent struct {
	X float64
	Y float64
	Z float64
}
