package boss

import (
	"fmt"
	"log"

	"github.com/decker502/worldstate/pkg/components"
	"github.com/decker502/worldstate/pkg/ecs"
	"github.com/decker502/worldstate/pkg/tasks"
)

// Group 首领控制的对象分组
type Group int

const (
	// ActivateOnStart 遭遇战开始时启用
	ActivateOnStart Group = iota
	// DeactivateOnStart 遭遇战开始时禁用
	DeactivateOnStart
	// ActivateOnDeath 首领死亡时启用
	ActivateOnDeath
	// DeactivateOnDeath 首领死亡时禁用
	DeactivateOnDeath

	groupCount = 4
)

// String 返回 Group 的字符串表示
func (g Group) String() string {
	switch g {
	case ActivateOnStart:
		return "ActivateOnStart"
	case DeactivateOnStart:
		return "DeactivateOnStart"
	case ActivateOnDeath:
		return "ActivateOnDeath"
	case DeactivateOnDeath:
		return "DeactivateOnDeath"
	default:
		return "Unknown"
	}
}

// Groups 全部分组（固定顺序）
var Groups = [groupCount]Group{ActivateOnStart, DeactivateOnStart, ActivateOnDeath, DeactivateOnDeath}

// CameraSwitcher 分屏/多摄像机切换协作者
type CameraSwitcher interface {
	UsePrimaryCamera()
}

// Config 首领遭遇战配置
type Config struct {
	ID string // 首领稳定 ID

	ActivateOnStart   []ecs.EntityID
	DeactivateOnStart []ecs.EntityID
	ActivateOnDeath   []ecs.EntityID
	DeactivateOnDeath []ecs.EntityID

	Parts            []ecs.EntityID // 可分离部件（攻击时会改父节点/移动）
	SequentialReveal bool           // 部件是否在开战后依次出现
	RevealInterval   float64        // 依次出现的间隔（秒）

	Camera CameraSwitcher // 可为 nil
}

// partBaseline 部件的遭遇战前基线
type partBaseline struct {
	entity ecs.EntityID
	parent ecs.EntityID
	active bool
	pos    components.PositionComponent
}

// AttackState 进行中的攻击记录
type AttackState struct {
	Name    string
	Step    int
	pending []*tasks.Task
}

// Encounter 首领遭遇战
//
// 首领在初始化时捕获一次四组对象的激活状态和部件位置（遭遇战前基线），
// 之后的重置都以该基线为目标。
type Encounter struct {
	id        string
	em        *ecs.EntityManager
	scheduler *tasks.Scheduler
	camera    CameraSwitcher

	groups   [groupCount][]ecs.EntityID
	baseline [groupCount][]bool
	parts    []partBaseline

	sequentialReveal bool
	revealInterval   float64

	dead    bool
	engaged bool
	attack  *AttackState
	reveals []*tasks.Task
}

// NewEncounter 创建首领遭遇战并捕获基线
//
// 参数：
//   - em: 场景实体管理器
//   - scheduler: 任务调度器（攻击与部件出现序列），可为 nil
//   - cfg: 遭遇战配置
func NewEncounter(em *ecs.EntityManager, scheduler *tasks.Scheduler, cfg Config) (*Encounter, error) {
	if cfg.ID == "" {
		return nil, fmt.Errorf("boss id is required")
	}
	if em == nil {
		return nil, fmt.Errorf("entity manager is nil")
	}

	e := &Encounter{
		id:               cfg.ID,
		em:               em,
		scheduler:        scheduler,
		camera:           cfg.Camera,
		sequentialReveal: cfg.SequentialReveal,
		revealInterval:   cfg.RevealInterval,
	}
	e.groups[ActivateOnStart] = append([]ecs.EntityID(nil), cfg.ActivateOnStart...)
	e.groups[DeactivateOnStart] = append([]ecs.EntityID(nil), cfg.DeactivateOnStart...)
	e.groups[ActivateOnDeath] = append([]ecs.EntityID(nil), cfg.ActivateOnDeath...)
	e.groups[DeactivateOnDeath] = append([]ecs.EntityID(nil), cfg.DeactivateOnDeath...)

	for _, g := range Groups {
		e.baseline[g] = e.States(g)
	}
	for _, part := range cfg.Parts {
		pb := partBaseline{entity: part}
		if node, ok := ecs.GetComponent[*components.SceneNodeComponent](em, part); ok {
			pb.parent = node.Parent
			pb.active = node.Active
		}
		if pos, ok := ecs.GetComponent[*components.PositionComponent](em, part); ok {
			pb.pos = *pos
		}
		e.parts = append(e.parts, pb)
	}

	return e, nil
}

// ID 返回首领 ID
func (e *Encounter) ID() string { return e.id }

// IsDead 首领是否已死亡
func (e *Encounter) IsDead() bool { return e.dead }

// Engaged 遭遇战是否进行中
func (e *Encounter) Engaged() bool { return e.engaged }

// Attack 返回进行中的攻击记录，没有时返回 nil
func (e *Encounter) Attack() *AttackState { return e.attack }

// Baseline 返回某组的基线激活状态（副本）
func (e *Encounter) Baseline(g Group) []bool {
	return append([]bool(nil), e.baseline[g]...)
}

// States 返回某组对象当前的激活状态
func (e *Encounter) States(g Group) []bool {
	states := make([]bool, len(e.groups[g]))
	for i, entity := range e.groups[g] {
		if node, ok := ecs.GetComponent[*components.SceneNodeComponent](e.em, entity); ok {
			states[i] = node.Active
		}
	}
	return states
}

// Engage 开始遭遇战：应用开场分组，按配置显示部件
func (e *Encounter) Engage() {
	if e.dead || e.engaged {
		return
	}
	e.engaged = true
	e.setGroup(ActivateOnStart, true)
	e.setGroup(DeactivateOnStart, false)

	if !e.sequentialReveal || e.scheduler == nil {
		for _, p := range e.parts {
			e.setActive(p.entity, true)
		}
		return
	}

	// 部件依次出现
	for i, p := range e.parts {
		entity := p.entity
		delay := e.revealInterval * float64(i+1)
		task := e.scheduler.After(fmt.Sprintf("boss:%s:reveal:%d", e.id, i), delay, func() {
			e.setActive(entity, true)
		}, tasks.InGroup(e.taskGroup()))
		e.reveals = append(e.reveals, task)
	}
}

// BeginAttack 记录一次攻击并安排各步骤
//
// steps 为每一步相对攻击开始的延迟（秒），每一步执行时推进 Step 并调用 onStep。
func (e *Encounter) BeginAttack(name string, steps []float64, onStep func(step int)) {
	if e.dead || !e.engaged || e.scheduler == nil {
		return
	}
	e.clearAttack()

	attack := &AttackState{Name: name}
	for i, delay := range steps {
		step := i + 1
		task := e.scheduler.After(fmt.Sprintf("boss:%s:%s:%d", e.id, name, step), delay, func() {
			attack.Step = step
			if onStep != nil {
				onStep(step)
			}
		}, tasks.InGroup(e.taskGroup()))
		attack.pending = append(attack.pending, task)
	}
	e.attack = attack
}

// DetachPart 把部件从首领身上分离（改挂到场景根并移动）
func (e *Encounter) DetachPart(index int, x, y float64) {
	if index < 0 || index >= len(e.parts) {
		return
	}
	entity := e.parts[index].entity
	if node, ok := ecs.GetComponent[*components.SceneNodeComponent](e.em, entity); ok {
		node.Parent = ecs.NoEntity
	}
	if pos, ok := ecs.GetComponent[*components.PositionComponent](e.em, entity); ok {
		pos.X, pos.Y = x, y
	}
}

// Kill 首领死亡：停止攻击，应用死亡分组，切回主摄像机
func (e *Encounter) Kill() {
	if e.dead {
		return
	}
	e.enterDeadState()
	e.setGroup(ActivateOnDeath, true)
	e.setGroup(DeactivateOnDeath, false)
	log.Printf("[BossEncounter] %s defeated", e.id)
}

// BuildSave 生成存档条目
//
// 存活首领只记录 IsDead=false；死亡首领额外记录四组对象死亡时刻的激活状态。
// 基线只作为 ResetToBaseline 的目标，不写入存档。
func (e *Encounter) BuildSave() BossSave {
	save := BossSave{IsDead: e.dead}
	if !e.dead {
		return save
	}
	for _, g := range Groups {
		save.setStates(g, e.States(g))
	}
	return save
}

// ApplySave 应用存档条目
//
// entry 为死亡状态时：强制进入死亡终态，原样应用四组数组，切回主摄像机。
// entry 为 nil 或存活时：完全重置到遭遇战前基线。
func (e *Encounter) ApplySave(entry *BossSave) {
	if entry == nil || !entry.IsDead {
		e.ResetToBaseline()
		return
	}

	e.enterDeadState()
	for _, g := range Groups {
		states := entry.states(g)
		for i, entity := range e.groups[g] {
			if i >= len(states) {
				break
			}
			e.setActive(entity, states[i])
		}
	}
}

// ResetToBaseline 重置到遭遇战前基线
//
// 部件改回原父节点和位置；依次出现模式下重新隐藏部件；清除进行中的攻击记录。
// 对从未开战的首领调用只会重新应用基线。
func (e *Encounter) ResetToBaseline() {
	e.cancelTasks()
	e.dead = false
	e.engaged = false

	for _, g := range Groups {
		for i, entity := range e.groups[g] {
			e.setActive(entity, e.baseline[g][i])
		}
	}

	for _, p := range e.parts {
		if node, ok := ecs.GetComponent[*components.SceneNodeComponent](e.em, p.entity); ok {
			node.Parent = p.parent
			if e.sequentialReveal {
				node.Active = false
			} else {
				node.Active = p.active
			}
		}
		if pos, ok := ecs.GetComponent[*components.PositionComponent](e.em, p.entity); ok {
			*pos = p.pos
		}
	}
}

// Release 首领实体被禁用/销毁时调用，取消所有任务
func (e *Encounter) Release() {
	e.cancelTasks()
}

func (e *Encounter) enterDeadState() {
	e.cancelTasks()
	e.dead = true
	e.engaged = false
	if e.camera != nil {
		e.camera.UsePrimaryCamera()
	}
}

func (e *Encounter) cancelTasks() {
	e.clearAttack()
	for _, t := range e.reveals {
		t.Cancel()
	}
	e.reveals = nil
}

func (e *Encounter) clearAttack() {
	if e.attack == nil {
		return
	}
	for _, t := range e.attack.pending {
		t.Cancel()
	}
	e.attack = nil
}

func (e *Encounter) taskGroup() string {
	return "boss:" + e.id
}

func (e *Encounter) setGroup(g Group, active bool) {
	for _, entity := range e.groups[g] {
		e.setActive(entity, active)
	}
}

func (e *Encounter) setActive(entity ecs.EntityID, active bool) {
	if node, ok := ecs.GetComponent[*components.SceneNodeComponent](e.em, entity); ok {
		node.Active = active
	}
}
