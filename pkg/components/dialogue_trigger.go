package components

// DialogueTriggerComponent 对话触发器组件（纯数据）
//
// 触发器绑定到一个 NPC 的稳定 ID；该 NPC 对话完成后触发器被永久禁用，
// 只有重新加载场景时才会根据账本重新推导启用状态。
type DialogueTriggerComponent struct {
	NpcID   string // 所属 NPC 的稳定 ID
	Enabled bool   // 触发器当前是否可触发
}

// PickupComponent 限时可再生拾取物
type PickupComponent struct {
	RespawnSeconds float64 // 拾取后重新出现的等待时间（秒），<=0 表示一次性拾取
}
