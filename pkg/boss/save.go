// Package boss 实现首领遭遇战的快照与恢复
package boss

// BossSave 单个首领的存档条目
//
// 四组激活状态数组只在首领已死亡时写入，存活首领只记录 IsDead=false。
type BossSave struct {
	IsDead                  bool   `yaml:"isDead"`
	ActivateOnStartStates   []bool `yaml:"activateOnStartStates,omitempty"`
	DeactivateOnStartStates []bool `yaml:"deactivateOnStartStates,omitempty"`
	ActivateOnDeathStates   []bool `yaml:"activateOnDeathStates,omitempty"`
	DeactivateOnDeathStates []bool `yaml:"deactivateOnDeathStates,omitempty"`
}

// states 按分组返回数组
func (s *BossSave) states(g Group) []bool {
	switch g {
	case ActivateOnStart:
		return s.ActivateOnStartStates
	case DeactivateOnStart:
		return s.DeactivateOnStartStates
	case ActivateOnDeath:
		return s.ActivateOnDeathStates
	case DeactivateOnDeath:
		return s.DeactivateOnDeathStates
	}
	return nil
}

// setStates 按分组写入数组
func (s *BossSave) setStates(g Group, states []bool) {
	switch g {
	case ActivateOnStart:
		s.ActivateOnStartStates = states
	case DeactivateOnStart:
		s.DeactivateOnStartStates = states
	case ActivateOnDeath:
		s.ActivateOnDeathStates = states
	case DeactivateOnDeath:
		s.DeactivateOnDeathStates = states
	}
}

// BossesSave 以首领 ID 为键的存档集合
// 每个首领只拥有自己的条目，聚合方只做读取和覆盖写入
type BossesSave map[string]BossSave

// Upsert 写入或覆盖一个首领的条目，返回（可能新建的）集合
func (b BossesSave) Upsert(id string, entry BossSave) BossesSave {
	if b == nil {
		b = make(BossesSave)
	}
	b[id] = entry
	return b
}

// Get 读取一个首领的条目
func (b BossesSave) Get(id string) (*BossSave, bool) {
	entry, ok := b[id]
	if !ok {
		return nil, false
	}
	return &entry, true
}
