// validate_layouts 校验引擎配置和所有场景布局
//
// 除了单个文件的格式校验，还检查跨场景约束：
// 拾取物的 persistentId 在所有场景中必须唯一，场景的 next 必须指向存在的场景。
//
// 用法：
//
//	go run ./cmd/validate_layouts [-config data/engine.yaml] [-scenes data/scenes]
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/decker502/worldstate/pkg/config"
)

func main() {
	configPath := flag.String("config", "data/engine.yaml", "引擎配置文件路径")
	scenesDir := flag.String("scenes", "data/scenes", "场景布局目录")
	flag.Parse()

	problems := validate(*configPath, *scenesDir)
	if len(problems) > 0 {
		for _, p := range problems {
			fmt.Printf("❌ %s\n", p)
		}
		os.Exit(1)
	}
	fmt.Printf("✅ 配置和场景布局全部有效\n")
}

// validate 返回发现的问题列表，为空表示全部有效
func validate(configPath, scenesDir string) []string {
	var problems []string

	if _, err := config.LoadEngineConfig(configPath); err != nil {
		problems = append(problems, err.Error())
	}

	paths, err := filepath.Glob(filepath.Join(scenesDir, "*.yaml"))
	if err != nil {
		return append(problems, err.Error())
	}
	if len(paths) == 0 {
		return append(problems, fmt.Sprintf("%s 下没有场景布局", scenesDir))
	}
	sort.Strings(paths)

	layouts := make(map[string]*config.SceneLayout)
	idOwners := make(map[string]string)
	for _, path := range paths {
		layout, err := config.LoadSceneLayout(path)
		if err != nil {
			problems = append(problems, err.Error())
			continue
		}
		if _, ok := layouts[layout.Name]; ok {
			problems = append(problems, fmt.Sprintf("%s: 场景名 %s 重复", path, layout.Name))
			continue
		}
		layouts[layout.Name] = layout

		walk(layout.Nodes, layout.Name+":", func(owner string, n *config.NodeLayout) {
			if n.PersistentID == "" {
				return
			}
			if prev, ok := idOwners[n.PersistentID]; ok {
				problems = append(problems, fmt.Sprintf("persistentId %s 同时用于 %s 和 %s", n.PersistentID, prev, owner))
				return
			}
			idOwners[n.PersistentID] = owner
		})
	}

	for name, layout := range layouts {
		if layout.Next != "" && layouts[layout.Next] == nil {
			problems = append(problems, fmt.Sprintf("场景 %s 的 next 指向不存在的场景 %s", name, layout.Next))
		}
	}
	sort.Strings(problems)
	return problems
}

// walk 深度优先遍历节点，owner 为 "场景:路径"
func walk(nodes []config.NodeLayout, prefix string, visit func(owner string, n *config.NodeLayout)) {
	for i := range nodes {
		n := &nodes[i]
		owner := prefix + n.Name
		visit(owner, n)
		walk(n.Children, owner+"/", visit)
	}
}
