package components

// PersistentIDComponent 注册表分配的持久化ID
// ID 一旦生成就随对象保存，在启用/禁用循环中保持不变
type PersistentIDComponent struct {
	ID string // 不透明随机 ID，空字符串表示尚未分配
}
