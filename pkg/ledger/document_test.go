package ledger

import (
	"reflect"
	"testing"
)

func TestProgressDocumentRoundTrip(t *testing.T) {
	cutscenes := NewCutsceneLedger(1)
	quests := NewQuestLedger(1, nil)

	cutscenes.FlagPending("intro")
	cutscenes.CommitSaveForActiveSlot()
	cutscenes.FlagPending("uncommitted")
	quests.Accept("q1", "npcA", "apple", 3)
	quests.AddItem("apple", 2)

	cutscenes.SetActiveSlot(3)
	quests.SetActiveSlot(3)
	quests.Accept("q9", "npcZ", "key", 1)

	doc := BuildProgressDocument(cutscenes, quests)
	data, err := EncodeProgressDocument(doc)
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	decoded, err := DecodeProgressDocument(data)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if !reflect.DeepEqual(decoded, doc) {
		t.Fatalf("Document round trip mismatch:\n got %+v\nwant %+v", decoded, doc)
	}
	if decoded.ActiveSlot != 3 {
		t.Errorf("ActiveSlot = %d, want 3", decoded.ActiveSlot)
	}

	c2 := NewCutsceneLedger(decoded.ActiveSlot)
	q2 := NewQuestLedger(decoded.ActiveSlot, nil)
	decoded.ApplyTo(c2, q2)

	c2.SetActiveSlot(1)
	q2.SetActiveSlot(1)
	if !c2.HasSeen("intro") || c2.HasSeenOrPending("uncommitted") {
		t.Error("Only committed cutscenes should be restored")
	}
	if quest, ok := q2.Get("q1"); !ok || quest.Count != 2 || quest.State != QuestActive {
		t.Errorf("Restored quest = %+v", quest)
	}
	if n := q2.AddItem("apple", 1); n != 1 || q2.State("q1") != QuestCompleted {
		t.Error("Restored quest should stay in the known list")
	}
}

func TestDecodeProgressDocumentErrors(t *testing.T) {
	if _, err := DecodeProgressDocument([]byte("activeSlot: [")); err == nil {
		t.Error("Malformed YAML should fail")
	}
	if _, err := DecodeProgressDocument([]byte("version: 99\nactiveSlot: 1\n")); err == nil {
		t.Error("Newer version should fail")
	}
}
