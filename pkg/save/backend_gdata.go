package save

import (
	"context"
	"fmt"

	"github.com/decker502/worldstate/pkg/utils"
	"github.com/quasilyte/gdata/v2"
)

// gdata 对象名：所有存档键作为该对象的属性
const gdataObject = "worldstate"

// GdataBackend 基于 gdata 的跨平台存储后端
// 桌面端写入用户数据目录，Android 写入应用私有目录，浏览器写入 localStorage
type GdataBackend struct {
	manager *gdata.Manager
}

// OpenGdataBackend 打开 gdata 存储
//
// 参数：
//   - appName: 应用名，决定存储目录
func OpenGdataBackend(appName string) (*GdataBackend, error) {
	if appName == "" {
		return nil, fmt.Errorf("app name is required")
	}

	// Android 上 gdata 不会预先创建子目录
	if err := utils.EnsureStorageDir(); err != nil {
		return nil, fmt.Errorf("failed to prepare storage dir: %w", err)
	}

	manager, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		return nil, fmt.Errorf("failed to open gdata: %w", err)
	}
	return NewGdataBackend(manager), nil
}

// NewGdataBackend 使用已打开的 gdata 管理器创建后端
func NewGdataBackend(manager *gdata.Manager) *GdataBackend {
	return &GdataBackend{manager: manager}
}

func (b *GdataBackend) Exists(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if b == nil || b.manager == nil {
		return false, fmt.Errorf("storage is not configured")
	}
	return b.manager.ObjectPropExists(gdataObject, key), nil
}

func (b *GdataBackend) Load(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if b == nil || b.manager == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if !b.manager.ObjectPropExists(gdataObject, key) {
		return nil, ErrNotFound
	}
	data, err := b.manager.LoadObjectProp(gdataObject, key)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", key, err)
	}
	return data, nil
}

func (b *GdataBackend) Save(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if b == nil || b.manager == nil {
		return fmt.Errorf("storage is not configured")
	}
	if err := b.manager.SaveObjectProp(gdataObject, key, data); err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}

func (b *GdataBackend) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if b == nil || b.manager == nil {
		return fmt.Errorf("storage is not configured")
	}
	if !b.manager.ObjectPropExists(gdataObject, key) {
		return nil
	}
	if err := b.manager.DeleteObjectProp(gdataObject, key); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// Close gdata 没有需要释放的资源
func (b *GdataBackend) Close() error { return nil }
