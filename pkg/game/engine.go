package game

import (
	"context"
	"fmt"
	"image"
	"log"
	"math"
	"time"

	"github.com/decker502/worldstate/pkg/boss"
	"github.com/decker502/worldstate/pkg/components"
	"github.com/decker502/worldstate/pkg/config"
	"github.com/decker502/worldstate/pkg/ecs"
	"github.com/decker502/worldstate/pkg/identity"
	"github.com/decker502/worldstate/pkg/ledger"
	"github.com/decker502/worldstate/pkg/preview"
	"github.com/decker502/worldstate/pkg/save"
	"github.com/decker502/worldstate/pkg/scenestate"
	"github.com/decker502/worldstate/pkg/tasks"
)

// PlayerSnapshot 存档时采集的玩家状态
type PlayerSnapshot struct {
	X, Y, Z float64
	Morph   save.MorphSave
	Lumerin save.LumerinSave
	Health  save.HealthSave
}

// PlayerSource 提供最新的玩家状态
type PlayerSource interface {
	PlayerSnapshot() PlayerSnapshot
}

// Option 引擎可选项
type Option func(*Engine)

// WithClock 替换墙钟（拾取物冷却使用 UTC 时间戳）
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithPlayer 设置玩家状态来源
func WithPlayer(player PlayerSource) Option {
	return func(e *Engine) { e.player = player }
}

// WithPreviewSource 设置存档预览图来源（通常是上一帧画面）
func WithPreviewSource(source func() image.Image) Option {
	return func(e *Engine) { e.previewSource = source }
}

// Engine 世界状态持久化引擎
//
// 所有入口都显式接收存档槽/场景，不读取全局状态。
// 单线程协作模型：所有方法都应在游戏主循环中调用。
//
// 职责：
//   - 存档槽切换（ApplySlot）与场景加载/卸载时的快照与差异应用
//   - 存档编排（RequestSave）：合并账本、玩家状态、首领集合后写入存档槽
//   - 拾取物冷却、NPC 对话完成、任务、过场动画等游戏侧入口
type Engine struct {
	cfg      *config.EngineConfig
	store    *save.SlotStore
	progress *ProgressStore

	registry  *identity.Registry
	scheduler *tasks.Scheduler
	scene     *scenestate.SceneState

	dialogue  *ledger.DialogueLedger
	cutscenes *ledger.CutsceneLedger
	quests    *ledger.QuestLedger

	bosses       map[string]*boss.Encounter // 当前场景中的首领
	storedBosses boss.BossesSave            // 已加载/已卸载场景的首领条目

	player        PlayerSource
	previewSource func() image.Image
	now           func() time.Time

	activeSlot  int
	playSeconds float64
	clock       float64 // 引擎运行时间（秒），用于存档冷却
	lastSaveAt  float64
}

// NewEngine 创建持久化引擎
//
// 参数：
//   - cfg: 引擎配置，nil 时使用默认配置
//   - store: 存档槽存储，nil 时使用内存存储（降级模式）
//   - opts: 可选项
func NewEngine(cfg *config.EngineConfig, store *save.SlotStore, opts ...Option) *Engine {
	if cfg == nil {
		cfg = config.DefaultEngineConfig()
	}
	if store == nil {
		store = save.NewSlotStore(nil, cfg.SlotCount)
	}

	scheduler := tasks.NewScheduler()
	e := &Engine{
		cfg:        cfg,
		store:      store,
		progress:   NewProgressStore(store.Backend()),
		registry:   identity.NewRegistry(),
		scheduler:  scheduler,
		scene:      scenestate.NewSceneState(scheduler, cfg.RescanDelayFrames),
		dialogue:   ledger.NewDialogueLedger(),
		cutscenes:  ledger.NewCutsceneLedger(0),
		bosses:     make(map[string]*boss.Encounter),
		now:        time.Now,
		lastSaveAt: math.Inf(-1),
	}
	e.quests = ledger.NewQuestLedger(0, e)

	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Store 返回存档槽存储
func (e *Engine) Store() *save.SlotStore { return e.store }

// Registry 返回稳定 ID 注册表
func (e *Engine) Registry() *identity.Registry { return e.registry }

// Scheduler 返回任务调度器
func (e *Engine) Scheduler() *tasks.Scheduler { return e.scheduler }

// SceneState 返回当前场景的快照状态
func (e *Engine) SceneState() *scenestate.SceneState { return e.scene }

// Dialogue 返回当前存档槽的对话账本
func (e *Engine) Dialogue() *ledger.DialogueLedger { return e.dialogue }

// Cutscenes 返回过场动画账本
func (e *Engine) Cutscenes() *ledger.CutsceneLedger { return e.cutscenes }

// Quests 返回任务账本
func (e *Engine) Quests() *ledger.QuestLedger { return e.quests }

// ActiveSlot 返回当前存档槽，0 表示尚未选择
func (e *Engine) ActiveSlot() int { return e.activeSlot }

// PlaySeconds 返回当前存档槽的累计游戏时长
func (e *Engine) PlaySeconds() float64 { return e.playSeconds }

// ApplySlot 切换到指定存档槽并应用其记录
//
// 步骤：
//  1. 取消上一个槽的所有倒计时任务（避免旧倒计时写入新槽）
//  2. 重新读取已提交的过场/任务进度（丢弃未提交的 pending）
//  3. 读取槽记录；无数据时使用空账本
//  4. 处理已到期的拾取物冷却，为未到期的安排倒计时
//  5. 场景已加载时：恢复默认值 -> 应用账本 -> 应用首领条目
//
// 返回：
//   - *save.SaveRecord: 槽记录，新槽为 nil（调用方据此决定加载哪个场景、玩家位置）
//   - error: 槽位编号无效
func (e *Engine) ApplySlot(ctx context.Context, slot int) (*save.SaveRecord, error) {
	if err := e.store.ValidateSlot(slot); err != nil {
		return nil, err
	}

	e.scheduler.CancelGroup(tasks.GroupSlot)

	if discarded := e.cutscenes.SetActiveSlot(slot); discarded > 0 {
		log.Printf("[Engine] Discarded %d uncommitted cutscene(s) of slot %d", discarded, e.activeSlot)
	}
	e.cutscenes = ledger.NewCutsceneLedger(slot)
	e.quests = ledger.NewQuestLedger(slot, e)
	if _, err := e.progress.Load(ctx, e.cutscenes, e.quests); err != nil {
		log.Printf("[Engine] Warning: failed to load progress: %v (starting empty)", err)
	}

	record, ok := e.store.Load(ctx, slot)
	if ok {
		e.dialogue = ledger.DialogueLedgerFromSave(record.Dialogue)
		e.playSeconds = record.TotalPlaySeconds
		e.storedBosses = record.Clone().Bosses
	} else {
		record = nil
		e.dialogue = ledger.NewDialogueLedger()
		e.playSeconds = 0
		e.storedBosses = nil
	}

	e.activeSlot = slot
	e.lastSaveAt = math.Inf(-1)
	e.resumePickupCooldowns()

	if e.scene.Loaded() {
		e.scene.RefreshSceneForCurrentSlot(e.dialogue)
		for _, enc := range e.bosses {
			e.applyBossEntry(enc)
		}
	}

	log.Printf("[Engine] Slot %d applied (record=%v)", slot, ok)
	return record, nil
}

// OnSceneLoaded 场景加载完成
// 实现 SceneLifecycle
func (e *Engine) OnSceneLoaded(scene WorldScene) {
	e.LoadScene(scene.EntityManager(), scene.SceneName())

	provider, ok := scene.(EncounterProvider)
	if !ok {
		return
	}
	encounters, err := provider.Encounters(e.scheduler)
	if err != nil {
		log.Printf("[Engine] Warning: failed to build encounters for %s: %v", scene.SceneName(), err)
		return
	}
	for _, enc := range encounters {
		e.RegisterBoss(enc)
	}
}

// LoadScene 捕获场景默认快照并应用当前存档槽
//
// 快照捕获在任何应用阶段之前完整执行。
func (e *Engine) LoadScene(em *ecs.EntityManager, sceneName string) {
	if e.scene.Loaded() {
		e.OnSceneUnloaded()
	}

	e.registry.Attach(em)
	e.registry.Validate(em)
	for _, entity := range ecs.GetEntitiesWith1[*components.PickupComponent](em) {
		e.registry.EnsureID(em, entity)
	}
	em.OnDestroy(func(entity ecs.EntityID) {
		e.scheduler.CancelOwner(entity)
	})

	e.scene.Capture(em, sceneName)
	e.resumePickupCooldowns()
	e.scene.RefreshSceneForCurrentSlot(e.dialogue)

	log.Printf("[Engine] Scene %s loaded", sceneName)
}

// OnSceneUnloaded 场景卸载
//
// 取消延迟重扫描和场景任务，把首领状态折叠进首领集合，释放场景持有的 ID。
// 实现 SceneLifecycle
func (e *Engine) OnSceneUnloaded() {
	if !e.scene.Loaded() {
		return
	}
	em := e.scene.EntityManager()
	name := e.scene.SceneName()

	for id, enc := range e.bosses {
		e.storedBosses = e.storedBosses.Upsert(id, enc.BuildSave())
		enc.Release()
	}
	e.bosses = make(map[string]*boss.Encounter)

	e.scene.Unload()
	e.scheduler.CancelGroup(tasks.GroupScene)
	e.registry.ReleaseScene(em)

	log.Printf("[Engine] Scene %s unloaded", name)
}

// RegisterBoss 登记当前场景中的首领并应用其存档条目
//
// 没有条目的首领被重置到遭遇战前基线。
func (e *Engine) RegisterBoss(enc *boss.Encounter) {
	if enc == nil {
		return
	}
	e.bosses[enc.ID()] = enc
	e.applyBossEntry(enc)
}

// Boss 按 ID 返回当前场景中的首领
func (e *Engine) Boss(id string) (*boss.Encounter, bool) {
	enc, ok := e.bosses[id]
	return enc, ok
}

func (e *Engine) applyBossEntry(enc *boss.Encounter) {
	entry, _ := e.storedBosses.Get(enc.ID())
	enc.ApplySave(entry)
}

// RequestSave 请求存档
//
// 距离上次存档不足 MinSaveInterval 的请求被静默丢弃（不排队）。
// 存档是读-改-写：先读出槽中旧记录，把内存中的对话账本增量合并进去，
// 再写入最新的玩家状态、首领集合和预览图。成功后提交过场动画 pending。
//
// 返回：
//   - bool: 是否实际写入
//   - error: 没有活动槽或写入失败
func (e *Engine) RequestSave(ctx context.Context) (bool, error) {
	if e.activeSlot == 0 {
		return false, fmt.Errorf("no active slot")
	}
	if e.clock-e.lastSaveAt < e.cfg.MinSaveInterval {
		log.Printf("[Engine] Save request dropped (cooldown %.1fs)", e.cfg.MinSaveInterval)
		return false, nil
	}

	record := e.composeRecord(ctx)
	if err := e.store.Save(ctx, e.activeSlot, record); err != nil {
		return false, err
	}
	e.lastSaveAt = e.clock

	if n := e.cutscenes.CommitSaveForActiveSlot(); n > 0 {
		log.Printf("[Engine] Committed %d cutscene(s)", n)
	}
	if err := e.progress.Save(ctx, e.cutscenes, e.quests); err != nil {
		log.Printf("[Engine] Warning: failed to save progress: %v", err)
	}

	// 合并后的账本成为新的内存基线
	e.dialogue = ledger.DialogueLedgerFromSave(record.Dialogue)
	return true, nil
}

// composeRecord 组合存档记录
func (e *Engine) composeRecord(ctx context.Context) *save.SaveRecord {
	stored, ok := e.store.Load(ctx, e.activeSlot)

	record := save.NewSaveRecord()
	var storedLedger *ledger.DialogueLedger
	if ok {
		record = stored
		storedLedger = ledger.DialogueLedgerFromSave(stored.Dialogue)
	}
	record.Version = save.RecordVersion
	record.Dialogue = e.dialogue.MergeInto(storedLedger).ToSave()

	if e.scene.Loaded() {
		record.Scene = e.scene.SceneName()
	}
	if e.player != nil {
		snap := e.player.PlayerSnapshot()
		record.PosX, record.PosY, record.PosZ = snap.X, snap.Y, snap.Z
		record.Morph = snap.Morph
		record.Lumerin = snap.Lumerin
		record.Health = snap.Health
	}
	record.Touch(e.now())
	record.TotalPlaySeconds = e.playSeconds

	// 首领：旧记录 <- 已卸载场景的条目 <- 当前场景的首领
	bosses := record.Bosses
	for id, entry := range e.storedBosses {
		bosses = bosses.Upsert(id, entry)
	}
	for id, enc := range e.bosses {
		bosses = bosses.Upsert(id, enc.BuildSave())
	}
	record.Bosses = bosses
	e.storedBosses = record.Clone().Bosses

	if e.previewSource != nil {
		if img := e.previewSource(); img != nil {
			png, err := preview.Thumbnail(img, e.cfg.PreviewWidth, e.cfg.PreviewHeight)
			if err != nil {
				log.Printf("[Engine] Warning: failed to build preview: %v", err)
			} else {
				record.SetPreviewImage(png)
			}
		}
	}

	return record
}

// Update 推进引擎时间：累计游戏时长并驱动倒计时任务
func (e *Engine) Update(deltaTime float64) {
	e.clock += deltaTime
	if e.activeSlot != 0 {
		e.playSeconds += deltaTime
	}
	e.scheduler.Update(deltaTime)
}

// SetObjectActive 显式切换对象的激活状态并记入账本
func (e *Engine) SetObjectActive(key string, active bool) bool {
	return e.scene.SetObjectActive(e.dialogue, key, active)
}

// MarkNpcCompleted 标记 NPC 对话已完成并立即禁用其所有存活触发器
// 实现 ledger.NpcCompleter
func (e *Engine) MarkNpcCompleted(npcID string) bool {
	if !e.dialogue.MarkNpcCompleted(npcID) {
		return false
	}
	e.scene.DisableTriggersFor(npcID)
	return true
}

// AcceptQuest 接取任务
func (e *Engine) AcceptQuest(questID, giverNpc, itemID string, need int) {
	e.quests.Accept(questID, giverNpc, itemID, need)
}

// AddItem 拾取任务物品
func (e *Engine) AddItem(itemID string, amount int) int {
	return e.quests.AddItem(itemID, amount)
}

// TurnInQuest 交付任务
func (e *Engine) TurnInQuest(questID string, markGiverCompleted bool) bool {
	return e.quests.TurnIn(questID, markGiverCompleted)
}

// FlagCutscene 过场动画开始播放时调用
//
// 返回：
//   - bool: false 表示该过场动画已看过或正在播放，不应再次触发
func (e *Engine) FlagCutscene(id string) bool {
	return e.cutscenes.FlagPending(id)
}

// Close 关闭存储
func (e *Engine) Close() error {
	return e.store.Close()
}
