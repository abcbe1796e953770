// Package save 实现存档槽的记录结构与持久化
//
// 每个存档槽（1..4）保存一个 SaveRecord，由 SlotStore 通过可替换的 Backend 读写。
// 读取失败（不存在、损坏、版本过新）一律视为"无数据"，不会向调用方抛出错误。
package save

import (
	"encoding/base64"
	"fmt"
	"time"

	"github.com/decker502/worldstate/pkg/boss"
	"github.com/decker502/worldstate/pkg/ledger"
)

// RecordVersion 存档记录版本号
// 当记录结构发生不兼容变更时递增；读取到更高版本的记录视为损坏
const RecordVersion = 1

// SaveRecord 单个存档槽的完整记录
type SaveRecord struct {
	Version int `yaml:"version"`

	// 场景与玩家位置
	Scene string  `yaml:"scene"`
	PosX  float64 `yaml:"posX"`
	PosY  float64 `yaml:"posY"`
	PosZ  float64 `yaml:"posZ"`

	// 元数据
	LastSavedISO       string  `yaml:"lastSavedIso"`                 // ISO-8601 UTC
	TotalPlaySeconds   float64 `yaml:"totalPlaySeconds"`             // 累计游戏时长（秒）
	PreviewImageBase64 string  `yaml:"previewImageBase64,omitempty"` // 存档预览图（PNG，base64）

	// 能力与状态子快照
	Morph   MorphSave   `yaml:"morph"`
	Lumerin LumerinSave `yaml:"lumerin"`
	Ramble  RambleSave  `yaml:"ramble"`
	Health  HealthSave  `yaml:"health"`

	// 进度账本与首领
	Dialogue ledger.DialogueSave `yaml:"dialogue"`
	Bosses   boss.BossesSave     `yaml:"bosses,omitempty"`
}

// MorphSave 变身能力快照
type MorphSave struct {
	ControllerName string  `yaml:"controllerName"` // 当前控制器标识
	MorphTag       string  `yaml:"morphTag"`       // 变身形态标签
	TimeLeft       float64 `yaml:"timeLeft"`       // 剩余时间（秒）
	IsMorphing     bool    `yaml:"isMorphing"`
	HasStored      bool    `yaml:"hasStored"`
}

// LumerinSave 光能加成快照
type LumerinSave struct {
	CurrentBoost float64 `yaml:"currentBoost"`
}

// RambleSave 占位快照（当前没有需要持久化的字段）
type RambleSave struct{}

// HealthSave 生命值快照
type HealthSave struct {
	Hits        int     `yaml:"hits"` // 已受击次数（0..最大值）
	CheckpointX float64 `yaml:"checkpointX"`
	CheckpointY float64 `yaml:"checkpointY"`
	CheckpointZ float64 `yaml:"checkpointZ"`
}

// NewSaveRecord 创建当前版本的空记录
func NewSaveRecord() *SaveRecord {
	return &SaveRecord{Version: RecordVersion}
}

// Touch 以 now 更新保存时间
func (r *SaveRecord) Touch(now time.Time) {
	r.LastSavedISO = now.UTC().Format(time.RFC3339)
}

// LastSaved 解析保存时间，解析失败返回零值
func (r *SaveRecord) LastSaved() time.Time {
	t, err := time.Parse(time.RFC3339, r.LastSavedISO)
	if err != nil {
		return time.Time{}
	}
	return t
}

// SetPreviewImage 设置预览图（nil 表示清除）
func (r *SaveRecord) SetPreviewImage(png []byte) {
	if len(png) == 0 {
		r.PreviewImageBase64 = ""
		return
	}
	r.PreviewImageBase64 = base64.StdEncoding.EncodeToString(png)
}

// PreviewImage 返回预览图 PNG 字节，没有预览图时返回 nil
func (r *SaveRecord) PreviewImage() ([]byte, error) {
	if r.PreviewImageBase64 == "" {
		return nil, nil
	}
	data, err := base64.StdEncoding.DecodeString(r.PreviewImageBase64)
	if err != nil {
		return nil, fmt.Errorf("failed to decode preview image: %w", err)
	}
	return data, nil
}

// Clone 返回记录的深拷贝
func (r *SaveRecord) Clone() *SaveRecord {
	if r == nil {
		return nil
	}
	clone := *r
	clone.Dialogue = ledger.DialogueLedgerFromSave(r.Dialogue).ToSave()
	if r.Bosses != nil {
		clone.Bosses = make(boss.BossesSave, len(r.Bosses))
		for id, entry := range r.Bosses {
			entry.ActivateOnStartStates = cloneBools(entry.ActivateOnStartStates)
			entry.DeactivateOnStartStates = cloneBools(entry.DeactivateOnStartStates)
			entry.ActivateOnDeathStates = cloneBools(entry.ActivateOnDeathStates)
			entry.DeactivateOnDeathStates = cloneBools(entry.DeactivateOnDeathStates)
			clone.Bosses[id] = entry
		}
	}
	return &clone
}

func cloneBools(src []bool) []bool {
	if src == nil {
		return nil
	}
	return append([]bool(nil), src...)
}
