package scenes

import (
	"fmt"
	"image/color"
	"log"
	"sort"
	"strings"

	"github.com/decker502/worldstate/pkg/boss"
	"github.com/decker502/worldstate/pkg/components"
	"github.com/decker502/worldstate/pkg/config"
	"github.com/decker502/worldstate/pkg/ecs"
	"github.com/decker502/worldstate/pkg/game"
	"github.com/decker502/worldstate/pkg/tasks"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// 编译期检查
var (
	_ game.WorldScene        = (*LevelScene)(nil)
	_ game.EncounterProvider = (*LevelScene)(nil)
)

// LevelScene 由 SceneLayout 构建的可持久化场景
//
// 场景只负责搭建节点树和绘制调试视图，所有持久化逻辑由 game.Engine 处理。
type LevelScene struct {
	layout *config.SceneLayout
	em     *ecs.EntityManager
	nodes  map[string]ecs.EntityID // 节点路径 -> 实体
	paths  []string                // 按构建顺序排列的节点路径

	encounters []*boss.Encounter
	camera     boss.CameraSwitcher
}

// NewLevelScene 根据布局创建场景
//
// 参数：
//   - layout: 已校验的场景布局
//   - camera: 首领死亡时切回主摄像机的协作者，可为 nil
func NewLevelScene(layout *config.SceneLayout, camera boss.CameraSwitcher) (*LevelScene, error) {
	if layout == nil {
		return nil, fmt.Errorf("scene layout is nil")
	}
	if err := layout.Validate(); err != nil {
		return nil, err
	}

	s := &LevelScene{
		layout: layout,
		em:     ecs.NewEntityManager(),
		nodes:  make(map[string]ecs.EntityID),
		camera: camera,
	}
	for i := range layout.Nodes {
		s.build(&layout.Nodes[i], ecs.NoEntity, "")
	}

	log.Printf("[LevelScene] Built %s with %d nodes", layout.Name, len(s.paths))
	return s, nil
}

// build 递归创建节点实体
func (s *LevelScene) build(n *config.NodeLayout, parent ecs.EntityID, prefix string) {
	path := n.Name
	if prefix != "" {
		path = prefix + "/" + n.Name
	}

	e := s.em.CreateEntity()
	ecs.AddComponent(s.em, e, &components.SceneNodeComponent{Name: n.Name, Parent: parent, Active: n.IsActive()})
	ecs.AddComponent(s.em, e, &components.PositionComponent{X: n.Position[0], Y: n.Position[1], Z: n.Position[2]})
	if n.IsPersistable() {
		ecs.AddComponent(s.em, e, &components.PersistableComponent{})
	}
	if n.PersistentID != "" {
		ecs.AddComponent(s.em, e, &components.PersistentIDComponent{ID: n.PersistentID})
	}
	if n.DialogueNpc != "" {
		ecs.AddComponent(s.em, e, &components.DialogueTriggerComponent{NpcID: n.DialogueNpc, Enabled: true})
	}
	if n.Pickup != nil {
		ecs.AddComponent(s.em, e, &components.PickupComponent{RespawnSeconds: n.Pickup.RespawnSeconds})
	}

	s.nodes[path] = e
	s.paths = append(s.paths, path)
	for i := range n.Children {
		s.build(&n.Children[i], e, path)
	}
}

// SceneName 实现 game.WorldScene
func (s *LevelScene) SceneName() string { return s.layout.Name }

// EntityManager 实现 game.WorldScene
func (s *LevelScene) EntityManager() *ecs.EntityManager { return s.em }

// Next 出口通往的场景名
func (s *LevelScene) Next() string { return s.layout.Next }

// Node 按路径查找节点实体
func (s *LevelScene) Node(path string) (ecs.EntityID, bool) {
	e, ok := s.nodes[path]
	return e, ok
}

// Pickups 返回场景中所有拾取物实体（按路径排序）
func (s *LevelScene) Pickups() []ecs.EntityID {
	return s.withComponent(func(e ecs.EntityID) bool {
		return ecs.HasComponent[*components.PickupComponent](s.em, e)
	})
}

// Npcs 返回场景中所有对话触发器绑定的 NPC 稳定 ID（去重、排序）
func (s *LevelScene) Npcs() []string {
	seen := make(map[string]bool)
	var npcs []string
	for _, e := range ecs.GetEntitiesWith1[*components.DialogueTriggerComponent](s.em) {
		trigger, _ := ecs.GetComponent[*components.DialogueTriggerComponent](s.em, e)
		if !seen[trigger.NpcID] {
			seen[trigger.NpcID] = true
			npcs = append(npcs, trigger.NpcID)
		}
	}
	sort.Strings(npcs)
	return npcs
}

func (s *LevelScene) withComponent(match func(ecs.EntityID) bool) []ecs.EntityID {
	var out []ecs.EntityID
	for _, path := range s.paths {
		e := s.nodes[path]
		if s.em.Exists(e) && match(e) {
			out = append(out, e)
		}
	}
	return out
}

// Encounters 实现 game.EncounterProvider
//
// 首次调用时按布局创建遭遇战，此后返回同一组实例。
func (s *LevelScene) Encounters(scheduler *tasks.Scheduler) ([]*boss.Encounter, error) {
	if s.encounters != nil || len(s.layout.Bosses) == 0 {
		return s.encounters, nil
	}

	encounters := make([]*boss.Encounter, 0, len(s.layout.Bosses))
	for _, b := range s.layout.Bosses {
		enc, err := boss.NewEncounter(s.em, scheduler, boss.Config{
			ID:                b.ID,
			ActivateOnStart:   s.resolve(b.ActivateOnStart),
			DeactivateOnStart: s.resolve(b.DeactivateOnStart),
			ActivateOnDeath:   s.resolve(b.ActivateOnDeath),
			DeactivateOnDeath: s.resolve(b.DeactivateOnDeath),
			Parts:             s.resolve(b.Parts),
			SequentialReveal:  b.SequentialReveal,
			RevealInterval:    b.RevealInterval,
			Camera:            s.camera,
		})
		if err != nil {
			return nil, fmt.Errorf("boss %s: %w", b.ID, err)
		}
		encounters = append(encounters, enc)
	}
	s.encounters = encounters
	return encounters, nil
}

// resolve 把节点路径转换为实体，布局已校验过路径存在
func (s *LevelScene) resolve(paths []string) []ecs.EntityID {
	out := make([]ecs.EntityID, 0, len(paths))
	for _, p := range paths {
		if e, ok := s.nodes[p]; ok {
			out = append(out, e)
		}
	}
	return out
}

// Update 场景本身没有逻辑，时间由 Engine 推进
func (s *LevelScene) Update(deltaTime float64) {
	s.em.RemoveMarkedEntities()
}

// Draw 绘制节点树的调试视图
func (s *LevelScene) Draw(screen *ebiten.Image) {
	if screen == nil {
		return
	}
	screen.Fill(color.RGBA{R: 0x20, G: 0x24, B: 0x30, A: 0xff})

	y := 48
	for _, path := range s.paths {
		e := s.nodes[path]
		if !s.em.Exists(e) {
			continue
		}
		node, ok := ecs.GetComponent[*components.SceneNodeComponent](s.em, e)
		if !ok {
			continue
		}
		mark := "[ ]"
		if node.Active {
			mark = "[x]"
		}
		indent := strings.Repeat("  ", strings.Count(path, "/"))
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%s %s%s", mark, indent, node.Name), 8, y)
		y += 14
	}
}
