package ledger

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// ProgressDocumentVersion 进度文档版本号
const ProgressDocumentVersion = 1

// ProgressDocument 过场动画/任务账本的持久化文档
//
// 与存档槽记录分开保存，包含活动槽和每个槽已提交的进度。
// pending 是临时状态，不会写入文档。
type ProgressDocument struct {
	Version    int                  `yaml:"version"`
	ActiveSlot int                  `yaml:"activeSlot"`
	Slots      map[int]SlotProgress `yaml:"slots,omitempty"`
}

// SlotProgress 单个存档槽的进度
type SlotProgress struct {
	SeenCutscenes []string `yaml:"seenCutscenes,omitempty"`
	Quests        []Quest  `yaml:"quests,omitempty"`
}

// BuildProgressDocument 从账本构建文档
func BuildProgressDocument(cutscenes *CutsceneLedger, quests *QuestLedger) ProgressDocument {
	doc := ProgressDocument{
		Version:    ProgressDocumentVersion,
		ActiveSlot: cutscenes.ActiveSlot(),
		Slots:      make(map[int]SlotProgress),
	}

	for _, slot := range cutscenes.Slots() {
		p := doc.Slots[slot]
		p.SeenCutscenes = cutscenes.Seen(slot)
		doc.Slots[slot] = p
	}
	for _, slot := range quests.Slots() {
		p := doc.Slots[slot]
		p.Quests = quests.Quests(slot)
		doc.Slots[slot] = p
	}

	if len(doc.Slots) == 0 {
		doc.Slots = nil
	}
	return doc
}

// ApplyTo 用文档内容替换账本中的已提交进度
// pending 不受影响（由 SetActiveSlot 负责丢弃）
func (d ProgressDocument) ApplyTo(cutscenes *CutsceneLedger, quests *QuestLedger) {
	slots := make([]int, 0, len(d.Slots))
	for slot := range d.Slots {
		slots = append(slots, slot)
	}
	sort.Ints(slots)

	for _, slot := range slots {
		p := d.Slots[slot]
		cutscenes.SetSeen(slot, p.SeenCutscenes)
		quests.LoadSlot(slot, p.Quests)
	}
}

// EncodeProgressDocument 序列化为 YAML
func EncodeProgressDocument(doc ProgressDocument) ([]byte, error) {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal progress document: %w", err)
	}
	return data, nil
}

// DecodeProgressDocument 从 YAML 反序列化
func DecodeProgressDocument(data []byte) (ProgressDocument, error) {
	var doc ProgressDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return ProgressDocument{}, fmt.Errorf("failed to unmarshal progress document: %w", err)
	}
	if doc.Version > ProgressDocumentVersion {
		return ProgressDocument{}, fmt.Errorf("unsupported progress document version: %d (max %d)",
			doc.Version, ProgressDocumentVersion)
	}
	return doc, nil
}
