package identity

import (
	"testing"

	"github.com/decker502/worldstate/pkg/components"
	"github.com/decker502/worldstate/pkg/ecs"
)

// newNode 创建一个场景节点
func newNode(em *ecs.EntityManager, name string, parent ecs.EntityID) ecs.EntityID {
	e := em.CreateEntity()
	ecs.AddComponent(em, e, &components.SceneNodeComponent{Name: name, Parent: parent, Active: true})
	return e
}

// TestEnsureIDUniqueness 一万个对象生成一万个互不相同的 ID
func TestEnsureIDUniqueness(t *testing.T) {
	em := ecs.NewEntityManager()
	r := NewRegistry()

	seen := make(map[string]bool, 10000)
	for i := 0; i < 10000; i++ {
		id := r.EnsureID(em, em.CreateEntity())
		if id == "" {
			t.Fatal("EnsureID returned empty id")
		}
		if seen[id] {
			t.Fatalf("Collision on id %s after %d ids", id, i)
		}
		seen[id] = true
	}
	if r.Count() != 10000 {
		t.Errorf("Registry count = %d, want 10000", r.Count())
	}
}

// TestEnsureIDIdempotent 已有 ID 的对象返回原 ID
func TestEnsureIDIdempotent(t *testing.T) {
	em := ecs.NewEntityManager()
	r := NewRegistry()
	e := em.CreateEntity()

	first := r.EnsureID(em, e)
	second := r.EnsureID(em, e)
	if first != second {
		t.Errorf("EnsureID not idempotent: %s != %s", first, second)
	}
	if !IsRegistryID(first) {
		t.Errorf("Expected registry id, got %q", first)
	}
}

// TestEnsureIDGeneratorCollision 生成器碰撞时重新生成
func TestEnsureIDGeneratorCollision(t *testing.T) {
	em := ecs.NewEntityManager()
	r := NewRegistry()
	ids := []string{"fixed", "fixed", "other"}
	r.generate = func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}

	a := r.EnsureID(em, em.CreateEntity())
	b := r.EnsureID(em, em.CreateEntity())
	if a != "fixed" || b != "other" {
		t.Errorf("Expected fixed/other, got %s/%s", a, b)
	}
}

// TestDuplicatedObjectGetsFreshID 复制对象后，较晚的对象在校验时获得新 ID
func TestDuplicatedObjectGetsFreshID(t *testing.T) {
	em := ecs.NewEntityManager()
	r := NewRegistry()

	original := em.CreateEntity()
	id := r.EnsureID(em, original)

	clone := em.CreateEntity()
	ecs.AddComponent(em, clone, &components.PersistentIDComponent{ID: id})

	if n := r.Validate(em); n != 1 {
		t.Errorf("Validate repaired %d, want 1", n)
	}

	origComp, _ := ecs.GetComponent[*components.PersistentIDComponent](em, original)
	cloneComp, _ := ecs.GetComponent[*components.PersistentIDComponent](em, clone)
	if origComp.ID != id {
		t.Errorf("Original id changed: %s -> %s", id, origComp.ID)
	}
	if cloneComp.ID == id || cloneComp.ID == "" {
		t.Errorf("Clone should get fresh id, got %q", cloneComp.ID)
	}

	// 再次校验不应有变化
	if n := r.Validate(em); n != 0 {
		t.Errorf("Second Validate repaired %d, want 0", n)
	}
}

// TestEnsureIDDuplicateAcrossScenes 另一个场景中存活的对象持有同一 ID 时重新分配
func TestEnsureIDDuplicateAcrossScenes(t *testing.T) {
	r := NewRegistry()
	emA := ecs.NewEntityManager()
	emB := ecs.NewEntityManager()

	id := r.EnsureID(emA, emA.CreateEntity())
	e := emB.CreateEntity()
	ecs.AddComponent(emB, e, &components.PersistentIDComponent{ID: id})

	if got := r.EnsureID(emB, e); got == id {
		t.Error("Duplicate id held by a live object must be reassigned")
	}
}

// TestReleaseAllowsReuse 释放后的 ID 可以被新对象使用
func TestReleaseAllowsReuse(t *testing.T) {
	em := ecs.NewEntityManager()
	r := NewRegistry()
	r.Attach(em)

	e := em.CreateEntity()
	id := r.EnsureID(em, e)

	em.DestroyEntity(e)
	em.RemoveMarkedEntities()
	if r.IsLive(id) {
		t.Fatal("Destroyed entity's id should be released")
	}

	reuse := em.CreateEntity()
	ecs.AddComponent(em, reuse, &components.PersistentIDComponent{ID: id})
	if got := r.EnsureID(em, reuse); got != id {
		t.Errorf("Released id should be reusable, got %s", got)
	}

	r.Release(id)
	if r.IsLive(id) {
		t.Error("Release should remove id")
	}
}

// TestReleaseSceneKeepsIDsAcrossReload 场景卸载后重新加载，对象拿回原来的 ID
func TestReleaseSceneKeepsIDsAcrossReload(t *testing.T) {
	r := NewRegistry()
	const authored = "6f1c2d3e-4b5a-4c6d-8e7f-9a0b1c2d3e4f"

	first := ecs.NewEntityManager()
	e1 := first.CreateEntity()
	ecs.AddComponent(first, e1, &components.PersistentIDComponent{ID: authored})
	r.EnsureID(first, e1)

	if n := r.ReleaseScene(first); n != 1 {
		t.Fatalf("ReleaseScene released %d ids, want 1", n)
	}

	second := ecs.NewEntityManager()
	e2 := second.CreateEntity()
	ecs.AddComponent(second, e2, &components.PersistentIDComponent{ID: authored})
	if got := r.EnsureID(second, e2); got != authored {
		t.Errorf("reloaded entity got %s, want authored id %s", got, authored)
	}
}

// TestHierarchicalID 路径 ID 随层级变化
func TestHierarchicalID(t *testing.T) {
	em := ecs.NewEntityManager()
	root := newNode(em, "World", ecs.NoEntity)
	room := newNode(em, "Room", root)
	door := newNode(em, "Door", room)

	if got := HierarchicalID(em, "Forest", door); got != "Forest:World/Room/Door" {
		t.Errorf("HierarchicalID = %q", got)
	}

	// 改父节点后得到不同身份
	node, _ := ecs.GetComponent[*components.SceneNodeComponent](em, door)
	node.Parent = root
	if got := HierarchicalID(em, "Forest", door); got != "Forest:World/Door" {
		t.Errorf("HierarchicalID after reparent = %q", got)
	}

	if got := HierarchicalID(em, "Forest", em.CreateEntity()); got != "" {
		t.Errorf("Entity without node should yield empty id, got %q", got)
	}
}

// TestKeyPrefersRegistryID 已分配注册表 ID 的对象使用注册表命名空间
func TestKeyPrefersRegistryID(t *testing.T) {
	em := ecs.NewEntityManager()
	r := NewRegistry()
	coin := newNode(em, "Coin", ecs.NoEntity)

	if key := Key(em, "Cave", coin); key != "Cave:Coin" || IsRegistryID(key) {
		t.Errorf("Unregistered key = %q", key)
	}

	id := r.EnsureID(em, coin)
	if key := Key(em, "Cave", coin); key != id || !IsRegistryID(key) {
		t.Errorf("Registered key = %q, want %q", key, id)
	}
}
