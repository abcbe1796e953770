// Package utils 提供与平台相关的存储目录工具
package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PrepareDatabasePath 解析数据库文件路径并创建父目录
//
// 相对路径拼接到 StorageRoot() 之下（根为空时按工作目录解析）。
//
// 参数：
//   - path: 配置中的 storagePath
//
// 返回：
//   - string: 清理后的文件路径
//   - error: 路径为空或父目录创建失败
func PrepareDatabasePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	if !filepath.IsAbs(cleanPath) {
		if root := StorageRoot(); root != "" {
			cleanPath = filepath.Join(root, cleanPath)
		}
	}

	if err := EnsureStorageDir(); err != nil {
		return "", fmt.Errorf("failed to prepare storage dir: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(cleanPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory for %s: %w", cleanPath, err)
	}
	return cleanPath, nil
}
