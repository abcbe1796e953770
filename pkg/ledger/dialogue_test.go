package ledger

import (
	"reflect"
	"testing"
	"time"
)

func TestDialogueMarkNpcCompletedAdditive(t *testing.T) {
	l := NewDialogueLedger()
	if !l.MarkNpcCompleted("Village:Elder") {
		t.Fatal("First mark should report change")
	}
	if l.MarkNpcCompleted("Village:Elder") {
		t.Error("Second mark should be a no-op")
	}
	if l.MarkNpcCompleted("") {
		t.Error("Empty id must be ignored")
	}
	if !l.IsNpcCompleted("Village:Elder") {
		t.Error("Elder should be completed")
	}
}

// TestDialogueSparseObjectStates 未触碰的对象不出现在账本中
func TestDialogueSparseObjectStates(t *testing.T) {
	l := NewDialogueLedger()
	l.SetObjectState("Cave:Gate", false)

	if _, ok := l.ObjectState("Cave:Torch"); ok {
		t.Error("Untouched object must be absent")
	}
	active, ok := l.ObjectState("Cave:Gate")
	if !ok || active {
		t.Errorf("Gate state = %v/%v, want false/true", active, ok)
	}

	save := l.ToSave()
	if !reflect.DeepEqual(save.ToggledObjectIDs, []string{"Cave:Gate"}) {
		t.Errorf("ToggledObjectIDs = %v", save.ToggledObjectIDs)
	}
	if save.CompletedNpcIDs != nil || save.PickupCooldowns != nil {
		t.Error("Empty collections should stay nil in the saved form")
	}
}

func TestDialogueSaveRoundTrip(t *testing.T) {
	until := time.Date(2026, 10, 19, 12, 30, 0, 500, time.FixedZone("CST", 8*3600))

	l := NewDialogueLedger()
	l.MarkNpcCompleted("npcB")
	l.MarkNpcCompleted("npcA")
	l.SetObjectState("b", true)
	l.SetObjectState("a", false)
	l.SetPickupCooldown("coin", until)

	restored := DialogueLedgerFromSave(l.ToSave())

	if !reflect.DeepEqual(restored.CompletedNpcIDs(), []string{"npcA", "npcB"}) {
		t.Errorf("CompletedNpcIDs = %v", restored.CompletedNpcIDs())
	}
	if !reflect.DeepEqual(restored.ObjectStates(), l.ObjectStates()) {
		t.Errorf("ObjectStates = %v", restored.ObjectStates())
	}
	got, ok := restored.PickupCooldown("coin")
	if !ok || !got.Equal(until) || got.Location() != time.UTC {
		t.Errorf("Cooldown = %v (ok=%v), want %v in UTC", got, ok, until)
	}
}

// TestDialogueFromSaveTolerant 平行数组长度不一致或时间戳无效时降级处理
func TestDialogueFromSaveTolerant(t *testing.T) {
	l := DialogueLedgerFromSave(DialogueSave{
		ToggledObjectIDs:    []string{"a", "b", "c"},
		ToggledObjectStates: []bool{true},
		PickupCooldowns:     map[string]string{"coin": "not-a-time"},
	})

	if !reflect.DeepEqual(l.ObjectStates(), map[string]bool{"a": true}) {
		t.Errorf("ObjectStates = %v", l.ObjectStates())
	}
	if _, ok := l.PickupCooldown("coin"); ok {
		t.Error("Invalid cooldown should be dropped")
	}
}

// TestDialogueMergeInto 内存增量合并到存储账本
func TestDialogueMergeInto(t *testing.T) {
	stored := NewDialogueLedger()
	stored.MarkNpcCompleted("old_npc")
	stored.SetObjectState("Forest:Bridge", true)
	stored.SetObjectState("Forest:Rock", false)
	stored.SetPickupCooldown("gem", time.Unix(100, 0))

	memory := stored.Clone()
	memory.MarkNpcCompleted("new_npc")
	memory.SetObjectState("Cave:Gate", false)
	memory.SetObjectState("Forest:Bridge", false)
	memory.ClearObjectState("Forest:Rock")
	memory.ClearPickupCooldown("gem")

	merged := memory.MergeInto(stored)

	if !reflect.DeepEqual(merged.CompletedNpcIDs(), []string{"new_npc", "old_npc"}) {
		t.Errorf("CompletedNpcIDs = %v", merged.CompletedNpcIDs())
	}
	want := map[string]bool{"Forest:Bridge": false, "Cave:Gate": false}
	if !reflect.DeepEqual(merged.ObjectStates(), want) {
		t.Errorf("ObjectStates = %v, want %v", merged.ObjectStates(), want)
	}
	if _, ok := merged.PickupCooldown("gem"); ok {
		t.Error("Cleared cooldown should not survive merge")
	}

	// stored 不被修改
	if _, ok := stored.ObjectState("Forest:Rock"); !ok {
		t.Error("MergeInto must not mutate stored ledger")
	}

	// 合并到 nil 等价于空账本
	if got := memory.MergeInto(nil).ObjectStates(); !reflect.DeepEqual(got, memory.ObjectStates()) {
		t.Errorf("MergeInto(nil) = %v", got)
	}
}
