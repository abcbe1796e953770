package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// 存储后端类型
const (
	BackendGdata  = "gdata"
	BackendSQLite = "sqlite"
	BackendBolt   = "bbolt"
	BackendMemory = "memory"
)

// MaxSlots 存档槽数量上限（槽位编号 1..MaxSlots）
const MaxSlots = 4

// EngineConfig 世界状态持久化引擎配置
//
// 加载顺序：YAML 文件 → 默认值 → WORLDSTATE_* 环境变量覆盖 → 校验
type EngineConfig struct {
	AppName     string `yaml:"appName" env:"WORLDSTATE_APP_NAME"`         // gdata 应用名（决定存储目录）
	Backend     string `yaml:"backend" env:"WORLDSTATE_BACKEND"`          // gdata | sqlite | bbolt | memory
	StoragePath string `yaml:"storagePath" env:"WORLDSTATE_STORAGE_PATH"` // sqlite/bbolt 数据库文件路径
	SlotCount   int    `yaml:"slotCount" env:"WORLDSTATE_SLOT_COUNT"`     // 存档槽数量

	MinSaveInterval      float64 `yaml:"minSaveInterval" env:"WORLDSTATE_MIN_SAVE_INTERVAL"`           // 两次存档的最小间隔（秒）
	PickupRespawnSeconds float64 `yaml:"pickupRespawnSeconds" env:"WORLDSTATE_PICKUP_RESPAWN_SECONDS"` // 拾取物默认刷新时间（秒）
	RescanDelayFrames    int     `yaml:"rescanDelayFrames" env:"WORLDSTATE_RESCAN_DELAY_FRAMES"`       // 延迟重扫触发器的帧数

	PreviewWidth  int `yaml:"previewWidth" env:"WORLDSTATE_PREVIEW_WIDTH"`   // 存档预览图宽度
	PreviewHeight int `yaml:"previewHeight" env:"WORLDSTATE_PREVIEW_HEIGHT"` // 存档预览图高度

	Verbose bool `yaml:"verbose" env:"WORLDSTATE_VERBOSE"` // 是否输出日志
}

// DefaultEngineConfig 返回默认配置
func DefaultEngineConfig() *EngineConfig {
	cfg := &EngineConfig{}
	cfg.applyDefaults()
	return cfg
}

// LoadEngineConfig 从 YAML 文件加载引擎配置
//
// 参数：
//   - path: 配置文件路径
//
// 返回：
//   - *EngineConfig: 填充默认值并通过校验的配置
//   - error: 读取、解析或校验失败时返回错误
func LoadEngineConfig(path string) (*EngineConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read engine config: %w", err)
	}

	var cfg EngineConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse engine config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid engine config: %w", err)
	}

	return &cfg, nil
}

// ApplyEnv 用 WORLDSTATE_* 环境变量覆盖配置
//
// 未设置的变量保持原值，覆盖后重新校验。
func (c *EngineConfig) ApplyEnv() error {
	if err := env.Parse(c); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	c.applyDefaults()
	return c.Validate()
}

// applyDefaults 为零值字段填充默认值
func (c *EngineConfig) applyDefaults() {
	if c.AppName == "" {
		c.AppName = "worldstate"
	}
	if c.Backend == "" {
		c.Backend = BackendGdata
	}
	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	if c.StoragePath == "" {
		switch c.Backend {
		case BackendSQLite:
			c.StoragePath = "data/saves.db"
		case BackendBolt:
			c.StoragePath = "data/saves.bolt"
		}
	}
	if c.SlotCount == 0 {
		c.SlotCount = MaxSlots
	}
	if c.MinSaveInterval == 0 {
		c.MinSaveInterval = 2.0
	}
	if c.PickupRespawnSeconds == 0 {
		c.PickupRespawnSeconds = 60
	}
	if c.RescanDelayFrames == 0 {
		c.RescanDelayFrames = 1
	}
	if c.PreviewWidth == 0 {
		c.PreviewWidth = 160
	}
	if c.PreviewHeight == 0 {
		c.PreviewHeight = 90
	}
}

// Validate 校验配置有效性
func (c *EngineConfig) Validate() error {
	switch c.Backend {
	case BackendGdata, BackendMemory:
	case BackendSQLite, BackendBolt:
		if strings.TrimSpace(c.StoragePath) == "" {
			return fmt.Errorf("storage path is required for backend %q", c.Backend)
		}
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}

	if c.SlotCount < 1 || c.SlotCount > MaxSlots {
		return fmt.Errorf("slot count must be in [1, %d], got %d", MaxSlots, c.SlotCount)
	}
	if c.MinSaveInterval < 0 {
		return fmt.Errorf("min save interval must be >= 0, got %.2f", c.MinSaveInterval)
	}
	if c.PickupRespawnSeconds < 0 {
		return fmt.Errorf("pickup respawn seconds must be >= 0, got %.2f", c.PickupRespawnSeconds)
	}
	if c.RescanDelayFrames < 1 {
		return fmt.Errorf("rescan delay frames must be >= 1, got %d", c.RescanDelayFrames)
	}
	if c.PreviewWidth < 1 || c.PreviewHeight < 1 {
		return fmt.Errorf("preview size must be positive, got %dx%d", c.PreviewWidth, c.PreviewHeight)
	}
	return nil
}
