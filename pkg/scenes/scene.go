package scenes

import (
	"log"
	"path/filepath"
	"strings"

	"github.com/decker502/worldstate/pkg/boss"
	"github.com/decker502/worldstate/pkg/config"
	"github.com/decker502/worldstate/pkg/game"
)

// Scene is a type alias for game.Scene to maintain backward compatibility.
type Scene = game.Scene

// NewLayoutSceneFactory 返回按场景名加载 <dir>/<name 小写>.yaml 的场景工厂
//
// 布局加载或构建失败时返回 nil，SceneManager 会保持当前场景不变。
func NewLayoutSceneFactory(dir string, camera boss.CameraSwitcher) game.SceneFactory {
	return func(sceneName string) game.Scene {
		path := filepath.Join(dir, strings.ToLower(sceneName)+".yaml")
		layout, err := config.LoadSceneLayout(path)
		if err != nil {
			log.Printf("[Scenes] Error: %v", err)
			return nil
		}
		scene, err := NewLevelScene(layout, camera)
		if err != nil {
			log.Printf("[Scenes] Error: failed to build %s: %v", sceneName, err)
			return nil
		}
		return scene
	}
}
