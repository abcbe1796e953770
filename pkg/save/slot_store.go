package save

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/decker502/worldstate/pkg/config"
)

// SlotSummary 存档槽摘要（用于读档菜单，不包含账本）
type SlotSummary struct {
	Slot        int
	Scene       string
	LastSaved   time.Time
	PlaySeconds float64
	HasPreview  bool
}

// SlotStore 存档槽存储
//
// 职责：
//   - 按槽位编号（1..SlotCount）读写 SaveRecord
//   - 读取失败一律转换为"无数据"并记录日志
//
// 注意：
//   - Save 无条件覆盖旧记录，不做合并；读-改-写由调用方负责
//   - 单写者约定：只有存档编排处写入，SlotStore 不加锁
type SlotStore struct {
	backend   Backend
	slotCount int
}

// NewSlotStore 创建存档槽存储
//
// 参数：
//   - backend: 存储后端，可为 nil（降级模式，使用内存后端，重启后数据丢失）
//   - slotCount: 槽位数量，超出 [1, config.MaxSlots] 时被限制
func NewSlotStore(backend Backend, slotCount int) *SlotStore {
	if backend == nil {
		log.Printf("[SlotStore] Warning: no backend configured, saves are kept in memory only")
		backend = NewMemoryBackend()
	}
	if slotCount < 1 || slotCount > config.MaxSlots {
		slotCount = config.MaxSlots
	}
	return &SlotStore{backend: backend, slotCount: slotCount}
}

// Backend 返回底层存储后端
func (s *SlotStore) Backend() Backend {
	return s.backend
}

// SlotCount 返回槽位数量
func (s *SlotStore) SlotCount() int {
	return s.slotCount
}

// ValidateSlot 检查槽位编号
func (s *SlotStore) ValidateSlot(slot int) error {
	if slot < 1 || slot > s.slotCount {
		return fmt.Errorf("%w: %d (valid range 1..%d)", ErrInvalidSlot, slot, s.slotCount)
	}
	return nil
}

// Exists 槽位是否存在记录（不校验内容是否可解析）
func (s *SlotStore) Exists(ctx context.Context, slot int) bool {
	if s.ValidateSlot(slot) != nil {
		return false
	}
	ok, err := s.backend.Exists(ctx, SlotKey(slot))
	if err != nil {
		log.Printf("[SlotStore] Warning: failed to check slot %d: %v", slot, err)
		return false
	}
	return ok
}

// Load 读取槽位记录
//
// 返回：
//   - *SaveRecord: 记录，无数据时为 nil
//   - bool: 是否读到有效记录；不存在、损坏、版本过新都返回 false
func (s *SlotStore) Load(ctx context.Context, slot int) (*SaveRecord, bool) {
	if err := s.ValidateSlot(slot); err != nil {
		log.Printf("[SlotStore] Warning: %v", err)
		return nil, false
	}

	data, err := s.backend.Load(ctx, SlotKey(slot))
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Printf("[SlotStore] Warning: failed to load slot %d: %v (treated as empty)", slot, err)
		}
		return nil, false
	}

	record, err := DecodeRecord(data)
	if err != nil {
		log.Printf("[SlotStore] Warning: slot %d is corrupt: %v (treated as empty)", slot, err)
		return nil, false
	}
	return record, true
}

// Save 写入槽位记录（覆盖旧记录）
func (s *SlotStore) Save(ctx context.Context, slot int, record *SaveRecord) error {
	if err := s.ValidateSlot(slot); err != nil {
		return err
	}

	data, err := EncodeRecord(record)
	if err != nil {
		return err
	}
	if err := s.backend.Save(ctx, SlotKey(slot), data); err != nil {
		return fmt.Errorf("failed to save slot %d: %w", slot, err)
	}

	log.Printf("[SlotStore] Slot %d saved (%d bytes, scene=%s)", slot, len(data), record.Scene)
	return nil
}

// Delete 删除槽位记录，之后 Load 返回无数据
func (s *SlotStore) Delete(ctx context.Context, slot int) error {
	if err := s.ValidateSlot(slot); err != nil {
		return err
	}
	if err := s.backend.Delete(ctx, SlotKey(slot)); err != nil {
		return fmt.Errorf("failed to delete slot %d: %w", slot, err)
	}
	log.Printf("[SlotStore] Slot %d deleted", slot)
	return nil
}

// Summaries 返回所有有效槽位的摘要（按槽位编号升序）
func (s *SlotStore) Summaries(ctx context.Context) []SlotSummary {
	summaries := make([]SlotSummary, 0, s.slotCount)
	for slot := 1; slot <= s.slotCount; slot++ {
		record, ok := s.Load(ctx, slot)
		if !ok {
			continue
		}
		summaries = append(summaries, SlotSummary{
			Slot:        slot,
			Scene:       record.Scene,
			LastSaved:   record.LastSaved(),
			PlaySeconds: record.TotalPlaySeconds,
			HasPreview:  record.PreviewImageBase64 != "",
		})
	}
	return summaries
}

// Close 关闭底层后端
func (s *SlotStore) Close() error {
	return s.backend.Close()
}
