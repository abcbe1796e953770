package ledger

// QuestState 任务状态（单调递增，正常流程下不会自动回退）
type QuestState int

const (
	// QuestNotAccepted 未接取
	QuestNotAccepted QuestState = iota
	// QuestActive 进行中
	QuestActive
	// QuestCompleted 目标已达成，等待交付
	QuestCompleted
	// QuestTurnedIn 已交付
	QuestTurnedIn
)

// String 返回 QuestState 的字符串表示
func (s QuestState) String() string {
	switch s {
	case QuestNotAccepted:
		return "NotAccepted"
	case QuestActive:
		return "Active"
	case QuestCompleted:
		return "Completed"
	case QuestTurnedIn:
		return "TurnedIn"
	default:
		return "Unknown"
	}
}

// Quest 单个任务的进度
type Quest struct {
	ID       string     `yaml:"id"`
	GiverNpc string     `yaml:"giver"`
	ItemID   string     `yaml:"item"`
	Required int        `yaml:"required"`
	Count    int        `yaml:"count"`
	State    QuestState `yaml:"state"`
}

// NpcCompleter 交付任务时标记 NPC 对话完成的协作者
type NpcCompleter interface {
	MarkNpcCompleted(npcID string) bool
}

// questSlot 一个存档槽的任务数据
type questSlot struct {
	quests map[string]*Quest
	known  []string // 已登记的任务（AddItem 只遍历这里）
}

// QuestLedger 任务账本（按存档槽隔离）
type QuestLedger struct {
	activeSlot int
	slots      map[int]*questSlot
	completer  NpcCompleter
}

// NewQuestLedger 创建任务账本
//
// 参数：
//   - activeSlot: 初始活动存档槽
//   - completer: 交付任务时标记 NPC 完成，可为 nil
func NewQuestLedger(activeSlot int, completer NpcCompleter) *QuestLedger {
	return &QuestLedger{
		activeSlot: activeSlot,
		slots:      make(map[int]*questSlot),
		completer:  completer,
	}
}

// SetCompleter 替换 NPC 完成协作者（切换存档槽后对话账本会被替换）
func (q *QuestLedger) SetCompleter(completer NpcCompleter) {
	q.completer = completer
}

// ActiveSlot 返回当前活动存档槽
func (q *QuestLedger) ActiveSlot() int {
	return q.activeSlot
}

// SetActiveSlot 切换活动存档槽
func (q *QuestLedger) SetActiveSlot(slot int) {
	q.activeSlot = slot
}

// Accept 接取任务
//
// 只在 NotAccepted 状态下有意义，但这里不做校验：对进行中的任务再次调用会
// 静默覆盖目标物品、需求数量并把计数归零（已知的覆盖风险，业务层需预先检查状态）。
// need 小于 1 时按 1 处理。
func (q *QuestLedger) Accept(questID, giverNpc, itemID string, need int) {
	if questID == "" {
		return
	}
	if need < 1 {
		need = 1
	}

	slot := q.slot(q.activeSlot)
	quest, ok := slot.quests[questID]
	if !ok {
		quest = &Quest{ID: questID}
		slot.quests[questID] = quest
		slot.known = append(slot.known, questID)
	}
	quest.GiverNpc = giverNpc
	quest.ItemID = itemID
	quest.Required = need
	quest.Count = 0
	quest.State = QuestActive
}

// AddItem 增加物品计数
//
// 只遍历活动槽已登记的任务；对目标物品匹配的进行中任务累加计数，
// 计数限制在 [0, Required]，达到 Required 时自动进入 Completed。
//
// 返回：
//   - int: 受影响的任务数量
func (q *QuestLedger) AddItem(itemID string, amount int) int {
	if amount <= 0 {
		return 0
	}
	slot, ok := q.slots[q.activeSlot]
	if !ok {
		return 0
	}

	affected := 0
	for _, id := range slot.known {
		quest := slot.quests[id]
		if quest == nil || quest.State != QuestActive || quest.ItemID != itemID {
			continue
		}
		quest.Count = clamp(quest.Count+amount, 0, quest.Required)
		if quest.Count >= quest.Required {
			quest.State = QuestCompleted
		}
		affected++
	}
	return affected
}

// CanTurnIn 任务是否可以交付（状态为 Completed）
func (q *QuestLedger) CanTurnIn(questID string) bool {
	return q.State(questID) == QuestCompleted
}

// TurnIn 交付任务
//
// 唯一带显式前置条件的账本操作：状态不是 Completed 时返回 false，不做任何修改。
//
// 参数：
//   - questID: 任务ID
//   - markGiverCompleted: 是否同时把发布任务的 NPC 对话标记为已完成
//
// 返回：
//   - bool: 交付是否成功
func (q *QuestLedger) TurnIn(questID string, markGiverCompleted bool) bool {
	if !q.CanTurnIn(questID) {
		return false
	}
	quest := q.slots[q.activeSlot].quests[questID]
	quest.State = QuestTurnedIn
	if markGiverCompleted && q.completer != nil && quest.GiverNpc != "" {
		q.completer.MarkNpcCompleted(quest.GiverNpc)
	}
	return true
}

// State 返回任务状态，未登记的任务为 NotAccepted
func (q *QuestLedger) State(questID string) QuestState {
	if quest, ok := q.Get(questID); ok {
		return quest.State
	}
	return QuestNotAccepted
}

// Progress 返回任务的当前计数和需求数量（供 UI 进度条使用）
func (q *QuestLedger) Progress(questID string) (count, required int) {
	quest, ok := q.Get(questID)
	if !ok {
		return 0, 0
	}
	return quest.Count, quest.Required
}

// Get 返回活动槽中任务的副本
func (q *QuestLedger) Get(questID string) (Quest, bool) {
	slot, ok := q.slots[q.activeSlot]
	if !ok {
		return Quest{}, false
	}
	quest, ok := slot.quests[questID]
	if !ok {
		return Quest{}, false
	}
	return *quest, true
}

// Quests 返回某个槽的任务列表（按登记顺序）
func (q *QuestLedger) Quests(slotIndex int) []Quest {
	slot, ok := q.slots[slotIndex]
	if !ok {
		return nil
	}
	out := make([]Quest, 0, len(slot.known))
	for _, id := range slot.known {
		if quest := slot.quests[id]; quest != nil {
			out = append(out, *quest)
		}
	}
	return out
}

// LoadSlot 用持久化数据替换某个槽的任务（登记顺序即列表顺序）
func (q *QuestLedger) LoadSlot(slotIndex int, quests []Quest) {
	slot := &questSlot{quests: make(map[string]*Quest)}
	for i := range quests {
		quest := quests[i]
		if quest.ID == "" {
			continue
		}
		if _, dup := slot.quests[quest.ID]; !dup {
			slot.known = append(slot.known, quest.ID)
		}
		if quest.Required < 1 {
			quest.Required = 1
		}
		quest.Count = clamp(quest.Count, 0, quest.Required)
		slot.quests[quest.ID] = &quest
	}
	q.slots[slotIndex] = slot
}

// ClearSlot 清除某个槽的任务
func (q *QuestLedger) ClearSlot(slotIndex int) {
	delete(q.slots, slotIndex)
}

// Slots 返回有任务的槽位
func (q *QuestLedger) Slots() []int {
	slots := make([]int, 0, len(q.slots))
	for slot, data := range q.slots {
		if len(data.known) > 0 {
			slots = append(slots, slot)
		}
	}
	return slots
}

func (q *QuestLedger) slot(slotIndex int) *questSlot {
	slot, ok := q.slots[slotIndex]
	if !ok {
		slot = &questSlot{quests: make(map[string]*Quest)}
		q.slots[slotIndex] = slot
	}
	return slot
}

// clamp 将值限制在 [lo, hi] 范围内
func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
