package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// SceneLayout 场景布局配置
// 描述一个可持久化场景的节点树、拾取物、NPC 触发器和首领遭遇战
type SceneLayout struct {
	Name   string       `yaml:"name"`   // 场景名，参与层级路径 ID
	Next   string       `yaml:"next"`   // 出口通往的场景名（可选）
	Nodes  []NodeLayout `yaml:"nodes"`  // 根节点列表
	Bosses []BossLayout `yaml:"bosses"` // 首领遭遇战（可选）
}

// NodeLayout 场景节点配置
type NodeLayout struct {
	Name         string        `yaml:"name"`
	Active       *bool         `yaml:"active"`       // 初始激活状态，默认 true
	Persistable  *bool         `yaml:"persistable"`  // 是否进入默认快照，默认 true
	PersistentID string        `yaml:"persistentId"` // 预先分配的稳定 ID（可选）
	Position     [3]float64    `yaml:"position"`
	DialogueNpc  string        `yaml:"dialogueNpc"` // 非空时挂载对话触发器，值为 NPC 的稳定 ID
	Pickup       *PickupLayout `yaml:"pickup"`
	Children     []NodeLayout  `yaml:"children"`
}

// PickupLayout 拾取物配置
type PickupLayout struct {
	RespawnSeconds float64 `yaml:"respawnSeconds"` // 0 使用引擎默认值，<0 一次性
}

// BossLayout 首领遭遇战配置
// 所有引用都是以 "/" 分隔、从根节点开始的节点路径
type BossLayout struct {
	ID                string   `yaml:"id"`
	ActivateOnStart   []string `yaml:"activateOnStart"`
	DeactivateOnStart []string `yaml:"deactivateOnStart"`
	ActivateOnDeath   []string `yaml:"activateOnDeath"`
	DeactivateOnDeath []string `yaml:"deactivateOnDeath"`
	Parts             []string `yaml:"parts"`
	SequentialReveal  bool     `yaml:"sequentialReveal"`
	RevealInterval    float64  `yaml:"revealInterval"` // 秒，默认 0.5
}

// IsActive 节点初始是否激活
func (n *NodeLayout) IsActive() bool {
	return n.Active == nil || *n.Active
}

// IsPersistable 节点是否参与持久化
func (n *NodeLayout) IsPersistable() bool {
	return n.Persistable == nil || *n.Persistable
}

// LoadSceneLayout 从 YAML 文件加载场景布局
//
// 参数：
//   - path: 布局文件路径
//
// 返回：
//   - *SceneLayout: 填充默认值并通过校验的布局
//   - error: 读取、解析或校验失败
func LoadSceneLayout(path string) (*SceneLayout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene layout %s: %w", path, err)
	}
	layout, err := ParseSceneLayout(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return layout, nil
}

// ParseSceneLayout 解析 YAML 场景布局
func ParseSceneLayout(data []byte) (*SceneLayout, error) {
	var layout SceneLayout
	if err := yaml.Unmarshal(data, &layout); err != nil {
		return nil, fmt.Errorf("failed to parse scene layout: %w", err)
	}

	for i := range layout.Bosses {
		if layout.Bosses[i].RevealInterval == 0 {
			layout.Bosses[i].RevealInterval = 0.5
		}
	}

	if err := layout.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scene layout: %w", err)
	}
	return &layout, nil
}

// Validate 校验布局
//
// 节点名非空且不含 "/"，同级不重名；拾取物必须带预分配的稳定 ID，
// 否则每次构建场景都会得到新 ID；首领引用的节点必须存在。
func (l *SceneLayout) Validate() error {
	if strings.TrimSpace(l.Name) == "" {
		return fmt.Errorf("scene name is required")
	}
	if len(l.Nodes) == 0 {
		return fmt.Errorf("scene %s: at least one node is required", l.Name)
	}

	paths := make(map[string]bool)
	if err := collectPaths(l.Nodes, "", paths); err != nil {
		return fmt.Errorf("scene %s: %w", l.Name, err)
	}

	ids := make(map[string]bool)
	for i, b := range l.Bosses {
		if b.ID == "" {
			return fmt.Errorf("boss %d: id is required", i)
		}
		if ids[b.ID] {
			return fmt.Errorf("boss %s: duplicate id", b.ID)
		}
		ids[b.ID] = true
		if b.RevealInterval < 0 {
			return fmt.Errorf("boss %s: revealInterval cannot be negative", b.ID)
		}
		refs := [][]string{b.ActivateOnStart, b.DeactivateOnStart, b.ActivateOnDeath, b.DeactivateOnDeath, b.Parts}
		for _, group := range refs {
			for _, ref := range group {
				if !paths[ref] {
					return fmt.Errorf("boss %s: unknown node %q", b.ID, ref)
				}
			}
		}
	}
	return nil
}

// collectPaths 递归收集节点路径
func collectPaths(nodes []NodeLayout, prefix string, paths map[string]bool) error {
	for _, n := range nodes {
		if n.Name == "" || strings.Contains(n.Name, "/") {
			return fmt.Errorf("invalid node name %q under %q", n.Name, prefix)
		}
		path := n.Name
		if prefix != "" {
			path = prefix + "/" + n.Name
		}
		if paths[path] {
			return fmt.Errorf("duplicate node %s", path)
		}
		paths[path] = true
		if n.Pickup != nil {
			if !n.IsPersistable() {
				return fmt.Errorf("pickup %s must be persistable", path)
			}
			if n.PersistentID == "" {
				return fmt.Errorf("pickup %s requires a persistentId", path)
			}
		}
		if err := collectPaths(n.Children, path, paths); err != nil {
			return err
		}
	}
	return nil
}
