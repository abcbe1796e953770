package save

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/decker502/worldstate/pkg/config"
)

var (
	// ErrNotFound 键不存在
	ErrNotFound = errors.New("record not found")
	// ErrInvalidSlot 槽位编号超出范围
	ErrInvalidSlot = errors.New("invalid slot")
)

// Backend 键值存储后端
//
// 键为 SlotKey 或 ProgressKey 这类短字符串，值为编码后的字节。
// 实现只负责原样读写，不解析内容。
type Backend interface {
	Exists(ctx context.Context, key string) (bool, error)
	Load(ctx context.Context, key string) ([]byte, error) // 不存在时返回 ErrNotFound
	Save(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error // 不存在时不报错
	Close() error
}

// ProgressKey 过场/任务进度文档的存储键
const ProgressKey = "progress"

// SlotKey 返回槽位记录的存储键
func SlotKey(slot int) string {
	return fmt.Sprintf("slot_%d", slot)
}

// OpenBackend 按配置打开存储后端
//
// 参数：
//   - cfg: 引擎配置（Backend 决定后端类型）
//
// 返回：
//   - Backend: 已打开的后端
//   - error: 打开失败时返回错误，调用方可退回 MemoryBackend
func OpenBackend(cfg *config.EngineConfig) (Backend, error) {
	if cfg == nil {
		return nil, fmt.Errorf("engine config is nil")
	}

	var (
		backend Backend
		err     error
	)
	switch cfg.Backend {
	case config.BackendGdata:
		backend, err = openAs(OpenGdataBackend(cfg.AppName))
	case config.BackendSQLite:
		backend, err = openAs(OpenSQLiteBackend(cfg.StoragePath))
	case config.BackendBolt:
		backend, err = openAs(OpenBoltBackend(cfg.StoragePath))
	case config.BackendMemory:
		backend = NewMemoryBackend()
	default:
		err = fmt.Errorf("unknown backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}
	return backend, nil
}

// openAs 把具体后端转换为接口，出错时返回真正的 nil 接口
func openAs[B Backend](b B, err error) (Backend, error) {
	if err != nil {
		return nil, err
	}
	return b, nil
}

// MemoryBackend 内存后端（测试和无法持久化时的降级模式）
type MemoryBackend struct {
	mu   sync.Mutex
	data map[string][]byte
}

// NewMemoryBackend 创建内存后端
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: make(map[string][]byte)}
}

func (m *MemoryBackend) Exists(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok, nil
}

func (m *MemoryBackend) Load(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

func (m *MemoryBackend) Save(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), data...)
	return nil
}

func (m *MemoryBackend) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *MemoryBackend) Close() error { return nil }

// Keys 返回所有键（排序后），用于调试
func (m *MemoryBackend) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
