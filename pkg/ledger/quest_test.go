package ledger

import "testing"

// TestQuestAddItemAutoPromotes 计数达到需求时自动完成
func TestQuestAddItemAutoPromotes(t *testing.T) {
	dialogue := NewDialogueLedger()
	q := NewQuestLedger(1, dialogue)

	q.Accept("q1", "npcA", "apple", 3)
	q.AddItem("apple", 2)

	quest, ok := q.Get("q1")
	if !ok {
		t.Fatal("Quest q1 should exist")
	}
	if quest.State != QuestActive || quest.Count != 2 {
		t.Fatalf("After 2 apples: state=%s count=%d", quest.State, quest.Count)
	}

	q.AddItem("apple", 1)
	quest, _ = q.Get("q1")
	if quest.State != QuestCompleted || quest.Count != 3 {
		t.Fatalf("After 3 apples: state=%s count=%d", quest.State, quest.Count)
	}
}

// TestQuestAddItemClamps 计数不会超过需求
func TestQuestAddItemClamps(t *testing.T) {
	q := NewQuestLedger(1, nil)
	q.Accept("q1", "npcA", "apple", 3)
	q.AddItem("apple", 2)
	q.AddItem("apple", 5)

	quest, _ := q.Get("q1")
	if quest.Count != 3 {
		t.Errorf("Count = %d, want 3 (clamped)", quest.Count)
	}
	if quest.State != QuestCompleted {
		t.Errorf("State = %s, want Completed", quest.State)
	}

	if count, need := q.Progress("q1"); count != 3 || need != 3 {
		t.Errorf("Progress = %d/%d, want 3/3", count, need)
	}
	if count, need := q.Progress("missing"); count != 0 || need != 0 {
		t.Errorf("Progress(missing) = %d/%d, want 0/0", count, need)
	}

	// 完成后不再计数
	if n := q.AddItem("apple", 1); n != 0 {
		t.Errorf("Completed quest should not be affected, got %d", n)
	}
}

// TestQuestAddItemIgnoresOtherItems 物品不匹配或数量非正时不受影响
func TestQuestAddItemIgnoresOtherItems(t *testing.T) {
	q := NewQuestLedger(1, nil)
	q.Accept("q1", "npcA", "apple", 3)

	tests := []struct {
		item   string
		amount int
	}{
		{"pear", 2},
		{"apple", 0},
		{"apple", -4},
	}
	for _, tt := range tests {
		if n := q.AddItem(tt.item, tt.amount); n != 0 {
			t.Errorf("AddItem(%q, %d) affected %d quests", tt.item, tt.amount, n)
		}
	}
	if quest, _ := q.Get("q1"); quest.Count != 0 {
		t.Errorf("Count = %d, want 0", quest.Count)
	}
}

// TestQuestTurnIn 交付需要 Completed 状态
func TestQuestTurnIn(t *testing.T) {
	dialogue := NewDialogueLedger()
	q := NewQuestLedger(1, dialogue)
	q.Accept("q1", "npcA", "apple", 3)

	if q.CanTurnIn("q1") {
		t.Fatal("Active quest must not be turn-in-able")
	}
	if q.TurnIn("q1", true) {
		t.Fatal("TurnIn on Active quest should fail")
	}
	if q.State("q1") != QuestActive {
		t.Fatalf("Failed TurnIn changed state to %s", q.State("q1"))
	}

	q.AddItem("apple", 3)
	if !q.CanTurnIn("q1") {
		t.Fatal("Completed quest should be turn-in-able")
	}
	if !q.TurnIn("q1", true) {
		t.Fatal("TurnIn should succeed")
	}
	if q.State("q1") != QuestTurnedIn {
		t.Errorf("State = %s, want TurnedIn", q.State("q1"))
	}
	if !dialogue.IsNpcCompleted("npcA") {
		t.Error("Giver npcA should be marked completed")
	}

	if q.TurnIn("q1", true) {
		t.Error("Second TurnIn should return false")
	}
	if q.State("q1") != QuestTurnedIn {
		t.Errorf("State after second TurnIn = %s", q.State("q1"))
	}
}

// TestQuestTurnInWithoutMarking 不要求标记时 NPC 不受影响
func TestQuestTurnInWithoutMarking(t *testing.T) {
	dialogue := NewDialogueLedger()
	q := NewQuestLedger(1, dialogue)
	q.Accept("q1", "npcA", "apple", 1)
	q.AddItem("apple", 1)

	if !q.TurnIn("q1", false) {
		t.Fatal("TurnIn should succeed")
	}
	if dialogue.IsNpcCompleted("npcA") {
		t.Error("npcA should not be marked when markGiverCompleted=false")
	}
}

// TestQuestAcceptOverwritesActive 再次接取进行中的任务会覆盖目标
func TestQuestAcceptOverwritesActive(t *testing.T) {
	q := NewQuestLedger(1, nil)
	q.Accept("q1", "npcA", "apple", 3)
	q.AddItem("apple", 2)

	q.Accept("q1", "npcB", "pear", 5)
	quest, _ := q.Get("q1")
	if quest.ItemID != "pear" || quest.Required != 5 || quest.Count != 0 || quest.GiverNpc != "npcB" {
		t.Errorf("Accept should overwrite active quest, got %+v", quest)
	}
	if got := len(q.Quests(1)); got != 1 {
		t.Errorf("Known quest list should not grow on re-accept, got %d", got)
	}
}

// TestQuestSlotsIsolated 不同存档槽的任务互不影响
func TestQuestSlotsIsolated(t *testing.T) {
	q := NewQuestLedger(1, nil)
	q.Accept("q1", "npcA", "apple", 3)

	q.SetActiveSlot(2)
	if q.State("q1") != QuestNotAccepted {
		t.Errorf("Slot 2 should not see slot 1 quests, state=%s", q.State("q1"))
	}
	if n := q.AddItem("apple", 3); n != 0 {
		t.Errorf("AddItem on empty slot affected %d", n)
	}

	q.SetActiveSlot(1)
	if q.State("q1") != QuestActive {
		t.Errorf("Slot 1 quest lost, state=%s", q.State("q1"))
	}
}

func TestQuestStateString(t *testing.T) {
	tests := map[QuestState]string{
		QuestNotAccepted: "NotAccepted",
		QuestActive:      "Active",
		QuestCompleted:   "Completed",
		QuestTurnedIn:    "TurnedIn",
		QuestState(99):   "Unknown",
	}
	for state, want := range tests {
		if got := state.String(); got != want {
			t.Errorf("QuestState(%d).String() = %q, want %q", int(state), got, want)
		}
	}
}
