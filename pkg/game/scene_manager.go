package game

import (
	"log"

	"github.com/hajimehoshi/ebiten/v2"
)

// SceneFactory 场景工厂函数类型
// 按场景名创建场景，避免循环依赖
type SceneFactory func(sceneName string) Scene

// SceneLifecycle 场景加载/卸载的监听者（通常是 Engine）
type SceneLifecycle interface {
	OnSceneLoaded(scene WorldScene)
	OnSceneUnloaded()
}

// SceneManager manages the game's high-level state by controlling which scene is active.
// It ensures only one scene's Update and Draw methods are called at any given time.
type SceneManager struct {
	currentScene Scene
	sceneFactory SceneFactory
	lifecycle    SceneLifecycle // 可为 nil
}

// NewSceneManager creates and returns a new SceneManager instance.
// The manager starts with no active scene; use SwitchTo to set the initial scene.
func NewSceneManager() *SceneManager {
	return &SceneManager{}
}

// SetSceneFactory 设置场景工厂函数
func (sm *SceneManager) SetSceneFactory(factory SceneFactory) {
	sm.sceneFactory = factory
}

// SetLifecycle 设置场景生命周期监听者
func (sm *SceneManager) SetLifecycle(lifecycle SceneLifecycle) {
	sm.lifecycle = lifecycle
}

// SwitchTo changes the active scene to the provided scene.
//
// 旧场景是 WorldScene 时先通知卸载；新场景是 WorldScene 时在切换完成后通知加载，
// 保证默认快照在任何应用阶段之前完成。
func (sm *SceneManager) SwitchTo(scene Scene) {
	if sm.lifecycle != nil {
		if _, ok := sm.currentScene.(WorldScene); ok {
			sm.lifecycle.OnSceneUnloaded()
		}
	}

	sm.currentScene = scene

	if sm.lifecycle != nil {
		if world, ok := scene.(WorldScene); ok {
			sm.lifecycle.OnSceneLoaded(world)
		}
	}
}

// GetCurrentScene 返回当前活动的场景，没有活动场景时返回 nil
func (sm *SceneManager) GetCurrentScene() Scene {
	return sm.currentScene
}

// LoadScene 按场景名加载场景
func (sm *SceneManager) LoadScene(sceneName string) bool {
	log.Printf("[SceneManager] Loading scene: %s", sceneName)

	if sm.sceneFactory == nil {
		log.Printf("[SceneManager] Error: SceneFactory is not set")
		return false
	}

	newScene := sm.sceneFactory(sceneName)
	if newScene == nil {
		log.Printf("[SceneManager] Error: failed to create scene: %s", sceneName)
		return false
	}

	sm.SwitchTo(newScene)
	return true
}

// SaveOnExit 若当前场景实现了 Saveable，调用其 SaveOnExit
func (sm *SceneManager) SaveOnExit() bool {
	if saveable, ok := sm.currentScene.(Saveable); ok {
		return saveable.SaveOnExit()
	}
	return true
}

// Update updates the currently active scene.
// If no scene is active, this method does nothing.
func (sm *SceneManager) Update(deltaTime float64) {
	if sm.currentScene != nil {
		sm.currentScene.Update(deltaTime)
	}
}

// Draw renders the currently active scene to the provided screen.
// If no scene is active, this method does nothing.
func (sm *SceneManager) Draw(screen *ebiten.Image) {
	if sm.currentScene != nil {
		sm.currentScene.Draw(screen)
	}
}
