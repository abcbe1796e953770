package game

import (
	"github.com/decker502/worldstate/pkg/boss"
	"github.com/decker502/worldstate/pkg/ecs"
	"github.com/decker502/worldstate/pkg/tasks"
	"github.com/hajimehoshi/ebiten/v2"
)

// Scene represents a game scene (e.g., title screen, a level, a pause menu).
// Each scene has its own update and rendering logic.
type Scene interface {
	// Update updates the scene logic based on the elapsed time.
	// deltaTime is the time elapsed since the last update in seconds.
	Update(deltaTime float64)

	// Draw renders the scene to the provided screen.
	Draw(screen *ebiten.Image)
}

// WorldScene 参与世界状态持久化的场景
//
// SceneManager 切换到 WorldScene 时会通知 Engine 捕获默认快照并应用当前存档槽，
// 切走时通知 Engine 卸载。
type WorldScene interface {
	Scene

	// SceneName 场景名，参与层级路径 ID 的计算
	SceneName() string

	// EntityManager 场景的实体管理器
	EntityManager() *ecs.EntityManager
}

// EncounterProvider 可选接口：场景中含有首领遭遇战
//
// Engine 在默认快照捕获完成后调用 Encounters，逐个登记并应用存档条目。
type EncounterProvider interface {
	Encounters(scheduler *tasks.Scheduler) ([]*boss.Encounter, error)
}

// Saveable 是一个可选接口，用于支持场景在退出时保存状态
//
// 实现此接口的场景会在以下时机被调用 SaveOnExit()：
//   - 游戏窗口关闭
//   - 用户通过 OS 命令关闭程序
type Saveable interface {
	// SaveOnExit 在场景退出时保存状态
	// 返回 true 表示保存成功或无需保存
	// 返回 false 表示保存失败（但程序仍会正常退出）
	SaveOnExit() bool
}
