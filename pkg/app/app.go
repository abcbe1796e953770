// Package app 提供世界状态演示程序的核心包装器
//
// 该包把引擎初始化逻辑从 main 包提取出来：加载配置、打开存储后端、
// 创建 Engine 和 SceneManager，并把键盘输入映射到引擎操作。
package app

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"io"
	"log"

	"github.com/decker502/worldstate/pkg/boss"
	"github.com/decker502/worldstate/pkg/config"
	"github.com/decker502/worldstate/pkg/game"
	"github.com/decker502/worldstate/pkg/preview"
	"github.com/decker502/worldstate/pkg/save"
	"github.com/decker502/worldstate/pkg/scenes"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// 逻辑屏幕尺寸
const (
	ScreenWidth  = 480
	ScreenHeight = 270
)

// ErrQuit 用户请求退出
var ErrQuit = fmt.Errorf("quit")

// Config 定义应用启动配置
type Config struct {
	// Engine 引擎配置
	Engine *config.EngineConfig
	// ScenesDir 场景布局目录
	ScenesDir string
	// StartScene 新存档槽的初始场景
	StartScene string
	// Slot 启动时应用的存档槽
	Slot int
}

// App 是演示应用的核心包装器，实现 ebiten.Game 接口
type App struct {
	engine       *game.Engine
	sceneManager *game.SceneManager
	player       *player
	startScene   string
	verbose      bool

	lastFrame *ebiten.Image
	status    string
}

// player 演示用玩家状态
type player struct {
	x, y float64
	hits int
}

func (p *player) PlayerSnapshot() game.PlayerSnapshot {
	snap := game.PlayerSnapshot{X: p.x, Y: p.y}
	snap.Health.Hits = p.hits
	return snap
}

// NewApp 创建并初始化演示应用
//
// 存储后端打开失败时退回内存后端（存档只在本次运行内有效）。
func NewApp(cfg Config) (*App, error) {
	if cfg.Engine == nil {
		cfg.Engine = config.DefaultEngineConfig()
	}
	if !cfg.Engine.Verbose {
		log.SetOutput(io.Discard)
		log.SetFlags(0)
	}
	if cfg.ScenesDir == "" {
		cfg.ScenesDir = "data/scenes"
	}
	if cfg.StartScene == "" {
		cfg.StartScene = "Village"
	}
	if cfg.Slot == 0 {
		cfg.Slot = 1
	}

	backend, err := save.OpenBackend(cfg.Engine)
	if err != nil {
		log.Printf("[App] Warning: failed to open %s backend: %v (using memory)", cfg.Engine.Backend, err)
		backend = nil
	}
	store := save.NewSlotStore(backend, cfg.Engine.SlotCount)

	a := &App{
		player:     &player{x: 16, y: 16},
		startScene: cfg.StartScene,
		verbose:    cfg.Engine.Verbose,
	}
	a.engine = game.NewEngine(cfg.Engine, store,
		game.WithPlayer(a.player),
		game.WithPreviewSource(a.capture),
	)

	a.sceneManager = game.NewSceneManager()
	a.sceneManager.SetLifecycle(a.engine)
	a.sceneManager.SetSceneFactory(scenes.NewLayoutSceneFactory(cfg.ScenesDir, nil))

	if err := a.switchSlot(cfg.Slot); err != nil {
		a.engine.Close()
		return nil, err
	}
	return a, nil
}

// switchSlot 应用存档槽并加载记录中的场景
func (a *App) switchSlot(slot int) error {
	record, err := a.engine.ApplySlot(context.Background(), slot)
	if err != nil {
		return fmt.Errorf("failed to apply slot %d: %w", slot, err)
	}

	scene := a.startScene
	if record != nil {
		if record.Scene != "" {
			scene = record.Scene
		}
		a.player.x, a.player.y = record.PosX, record.PosY
		a.player.hits = record.Health.Hits
	}

	if current, ok := a.sceneManager.GetCurrentScene().(game.WorldScene); !ok || current.SceneName() != scene {
		if !a.sceneManager.LoadScene(scene) {
			return fmt.Errorf("failed to load scene %s", scene)
		}
	}
	a.status = fmt.Sprintf("slot %d applied", slot)
	return nil
}

// Update 更新游戏逻辑
// 每个 tick 调用一次（通常每秒 60 次）
func (a *App) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ErrQuit
	}

	for i, key := range []ebiten.Key{ebiten.Key1, ebiten.Key2, ebiten.Key3, ebiten.Key4} {
		if inpututil.IsKeyJustPressed(key) {
			if err := a.switchSlot(i + 1); err != nil {
				a.status = err.Error()
			}
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		a.save()
	}

	level, _ := a.sceneManager.GetCurrentScene().(*scenes.LevelScene)
	if level != nil {
		a.handleLevelKeys(level)
	}

	deltaTime := 1.0 / 60.0
	a.engine.Update(deltaTime)
	a.sceneManager.Update(deltaTime)
	return nil
}

func (a *App) handleLevelKeys(level *scenes.LevelScene) {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyP):
		for _, e := range level.Pickups() {
			if a.engine.CollectPickup(e) {
				a.status = "pickup collected"
				return
			}
		}
		a.status = "nothing to pick up"

	case inpututil.IsKeyJustPressed(ebiten.KeyN):
		for _, npc := range level.Npcs() {
			if a.engine.MarkNpcCompleted(npc) {
				a.status = "talked to " + npc
				return
			}
		}
		a.status = "no one left to talk to"

	case inpututil.IsKeyJustPressed(ebiten.KeyB):
		for _, enc := range a.bosses(level) {
			switch {
			case enc.IsDead():
				a.status = enc.ID() + " is already defeated"
			case enc.Engaged():
				enc.Kill()
				a.status = enc.ID() + " defeated"
			default:
				enc.Engage()
				a.status = enc.ID() + " engaged"
			}
		}

	case inpututil.IsKeyJustPressed(ebiten.KeyE):
		if next := level.Next(); next != "" && a.sceneManager.LoadScene(next) {
			a.status = "entered " + next
		}
	}

	if ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		a.player.x++
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		a.player.x--
	}
}

func (a *App) bosses(level *scenes.LevelScene) []*boss.Encounter {
	encounters, err := level.Encounters(a.engine.Scheduler())
	if err != nil {
		log.Printf("[App] Warning: %v", err)
		return nil
	}
	return encounters
}

// save 请求存档，冷却中的请求被丢弃
func (a *App) save() {
	saved, err := a.engine.RequestSave(context.Background())
	switch {
	case err != nil:
		a.status = "save failed: " + err.Error()
	case saved:
		a.status = fmt.Sprintf("saved to slot %d", a.engine.ActiveSlot())
	default:
		a.status = "save dropped (cooldown)"
	}
}

// capture 预览图来源：上一帧画面
func (a *App) capture() image.Image {
	if a.lastFrame == nil {
		return nil
	}
	return preview.CaptureScreen(a.lastFrame)
}

// Draw 绘制游戏画面
// 每帧调用一次
func (a *App) Draw(screen *ebiten.Image) {
	a.sceneManager.Draw(screen)

	ebitenutil.DebugPrint(screen, fmt.Sprintf(
		"slot %d  play %.0fs  x=%.0f\n%s\n1-4 slot  S save  P pickup  N talk  B boss  E exit  Q quit",
		a.engine.ActiveSlot(), a.engine.PlaySeconds(), a.player.x, a.status,
	))

	if a.lastFrame == nil {
		a.lastFrame = ebiten.NewImage(ScreenWidth, ScreenHeight)
	}
	a.lastFrame.Fill(color.Black)
	a.lastFrame.DrawImage(screen, nil)
}

// Layout 返回游戏的逻辑屏幕尺寸
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return ScreenWidth, ScreenHeight
}

// Engine 返回持久化引擎
func (a *App) Engine() *game.Engine {
	return a.engine
}

// GetSceneManager 返回场景管理器
// 用于在游戏关闭时保存存档
func (a *App) GetSceneManager() *game.SceneManager {
	return a.sceneManager
}

// Close 关闭存储后端
func (a *App) Close() error {
	return a.engine.Close()
}

// IsVerbose 返回是否启用了详细日志
func (a *App) IsVerbose() bool {
	return a.verbose
}
