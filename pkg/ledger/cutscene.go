package ledger

// CutsceneLedger 过场动画进度账本
//
// 每个存档槽维护两个集合：
//   - seen：已提交的“看过”记录，只有显式存档才会写入
//   - pending：播放过程中标记的临时记录，存档时提升为 seen
//
// 切换活动存档槽会丢弃上一个槽未提交的 pending，但从不清除 seen。
type CutsceneLedger struct {
	activeSlot int
	seen       map[int]map[string]struct{}
	pending    map[int]map[string]struct{}
}

// NewCutsceneLedger 创建账本并设置初始活动存档槽
func NewCutsceneLedger(activeSlot int) *CutsceneLedger {
	return &CutsceneLedger{
		activeSlot: activeSlot,
		seen:       make(map[int]map[string]struct{}),
		pending:    make(map[int]map[string]struct{}),
	}
}

// ActiveSlot 返回当前活动存档槽
func (c *CutsceneLedger) ActiveSlot() int {
	return c.activeSlot
}

// SetActiveSlot 切换活动存档槽
//
// 返回：
//   - int: 被丢弃的上一个槽的 pending 数量
func (c *CutsceneLedger) SetActiveSlot(slot int) int {
	if slot == c.activeSlot {
		return 0
	}
	discarded := len(c.pending[c.activeSlot])
	delete(c.pending, c.activeSlot)
	c.activeSlot = slot
	return discarded
}

// FlagPending 标记过场动画为待提交（unseen -> pending）
//
// 已经 pending 或 seen 时不做任何事。
//
// 返回：
//   - bool: true 表示状态发生了变化
func (c *CutsceneLedger) FlagPending(id string) bool {
	if id == "" || c.HasSeenOrPending(id) {
		return false
	}
	set := c.pending[c.activeSlot]
	if set == nil {
		set = make(map[string]struct{})
		c.pending[c.activeSlot] = set
	}
	set[id] = struct{}{}
	return true
}

// CommitSaveForActiveSlot 把活动槽所有 pending 提升为 seen 并清空 pending
//
// 返回：
//   - int: 被提交的数量
func (c *CutsceneLedger) CommitSaveForActiveSlot() int {
	pending := c.pending[c.activeSlot]
	if len(pending) == 0 {
		return 0
	}
	seen := c.seenSet(c.activeSlot)
	for id := range pending {
		seen[id] = struct{}{}
	}
	delete(c.pending, c.activeSlot)
	return len(pending)
}

// HasSeen 活动槽是否已提交看过该过场动画
func (c *CutsceneLedger) HasSeen(id string) bool {
	_, ok := c.seen[c.activeSlot][id]
	return ok
}

// HasSeenOrPending 活动槽是否已看过或正在播放该过场动画
// 用于阻止正在播放或已提交的过场动画被再次触发
func (c *CutsceneLedger) HasSeenOrPending(id string) bool {
	if c.HasSeen(id) {
		return true
	}
	_, ok := c.pending[c.activeSlot][id]
	return ok
}

// Seen 返回某个槽已提交的过场动画 ID（排序后）
func (c *CutsceneLedger) Seen(slot int) []string {
	return sortedKeys(c.seen[slot])
}

// SetSeen 用持久化数据替换某个槽的 seen 集合
func (c *CutsceneLedger) SetSeen(slot int, ids []string) {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id != "" {
			set[id] = struct{}{}
		}
	}
	c.seen[slot] = set
}

// ClearSlot 清除某个槽的全部进度（删除存档时使用）
func (c *CutsceneLedger) ClearSlot(slot int) {
	delete(c.seen, slot)
	delete(c.pending, slot)
}

// Slots 返回有 seen 记录的槽位
func (c *CutsceneLedger) Slots() []int {
	slots := make([]int, 0, len(c.seen))
	for slot, set := range c.seen {
		if len(set) > 0 {
			slots = append(slots, slot)
		}
	}
	return slots
}

func (c *CutsceneLedger) seenSet(slot int) map[string]struct{} {
	set := c.seen[slot]
	if set == nil {
		set = make(map[string]struct{})
		c.seen[slot] = set
	}
	return set
}
