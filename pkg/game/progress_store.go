package game

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/decker502/worldstate/pkg/ledger"
	"github.com/decker502/worldstate/pkg/save"
)

// ProgressStore 过场动画/任务进度存储
// 负责 ProgressDocument 的加载和保存，与存档槽记录共用同一个后端
type ProgressStore struct {
	backend save.Backend // 可为 nil（降级模式，仅内存进度）
}

// NewProgressStore 创建进度存储
//
// 参数：
//   - backend: 存储后端，可为 nil（降级模式）
func NewProgressStore(backend save.Backend) *ProgressStore {
	return &ProgressStore{backend: backend}
}

// Load 读取进度文档并写入账本
//
// 文档不存在时账本保持不变；文档损坏时同样保持不变并返回错误（调用方只记录日志）。
//
// 返回：
//   - int: 文档中记录的活动槽，没有文档时为 0
//   - error: 读取或反序列化失败
func (ps *ProgressStore) Load(ctx context.Context, cutscenes *ledger.CutsceneLedger, quests *ledger.QuestLedger) (int, error) {
	// 降级模式：无法持久化
	if ps.backend == nil {
		return 0, nil
	}

	data, err := ps.backend.Load(ctx, save.ProgressKey)
	if err != nil {
		if errors.Is(err, save.ErrNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to load progress: %w", err)
	}

	doc, err := ledger.DecodeProgressDocument(data)
	if err != nil {
		return 0, err
	}

	doc.ApplyTo(cutscenes, quests)
	log.Printf("[ProgressStore] Progress loaded (%d slot(s))", len(doc.Slots))
	return doc.ActiveSlot, nil
}

// Save 保存账本中已提交的进度
//
// 如果 backend 为 nil，返回 nil（降级模式，不报错）
func (ps *ProgressStore) Save(ctx context.Context, cutscenes *ledger.CutsceneLedger, quests *ledger.QuestLedger) error {
	if ps.backend == nil {
		return nil
	}

	data, err := ledger.EncodeProgressDocument(ledger.BuildProgressDocument(cutscenes, quests))
	if err != nil {
		return err
	}

	if err := ps.backend.Save(ctx, save.ProgressKey, data); err != nil {
		return fmt.Errorf("failed to save progress: %w", err)
	}
	return nil
}
