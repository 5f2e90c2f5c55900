package game

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/runekeep/server/internal/catalog"
	"github.com/runekeep/server/internal/persist"
	"github.com/runekeep/server/internal/world"
)

// fakeConn stands in for a gateway session on the player side of the
// wire. It records every outbound message.
type fakeConn struct {
	id   string
	sent []any
}

func (c *fakeConn) PlayerID() string { return c.id }
func (c *fakeConn) SendJSON(v any)   { c.sent = append(c.sent, v) }

// fakeHub records broadcasts instead of fanning them out.
type fakeHub struct {
	broadcasts []any
}

func (h *fakeHub) Broadcast(v any)                       { h.broadcasts = append(h.broadcasts, v) }
func (h *fakeHub) BroadcastExcept(exclude uint64, v any) { h.broadcasts = append(h.broadcasts, v) }

// fakeCombatLog records combat-log entries in call order.
type fakeCombatLog struct {
	entries []string
}

func (l *fakeCombatLog) LogCombatAsync(attacker, defender string, skillID int32, damage int, critical bool) {
	l.entries = append(l.entries, attacker+"→"+defender)
}

// fakeInvStore and fakeCharStore count persistence calls so tests can
// assert which paths saved.
type fakeInvStore struct {
	saves []*persist.InventoryRow
}

func (s *fakeInvStore) Save(_ context.Context, row *persist.InventoryRow) error {
	s.saves = append(s.saves, row)
	return nil
}

type fakeCharStore struct {
	updates []*persist.CharacterRow
}

func (s *fakeCharStore) Update(_ context.Context, row *persist.CharacterRow) error {
	s.updates = append(s.updates, row)
	return nil
}

// newTestCatalog writes a minimal content catalog to a temp dir and loads
// it, so engine tests run against the same loader path as production.
func newTestCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	dir := t.TempDir()

	files := map[string]string{
		"class_list.yaml": `
classes:
  - name: warrior
    base_str: 12
    base_int: 4
    base_dex: 8
    base_vit: 12
    str_per_level: 3
    int_per_level: 1
    dex_per_level: 2
    vit_per_level: 3
    base_health: 150
    health_per_level: 25
    health_per_vit: 10
    base_mana: 30
    mana_per_level: 5
    mana_per_int: 5
    base_atk: 10
    atk_per_str: 2.0
    base_matk: 2
    matk_per_int: 1.0
    base_def: 5
    def_per_vit: 1.5
    base_attack_speed: 1.0
    attack_speed_per_dex: 0.01
    status_points_per_level: 5
    spawn_x: 10.0
    spawn_z: 10.0
    starter_gold: 100
`,
		"item_list.yaml": `
items:
  - id: 1
    name: potion
    type: consumable
    max_stack: 99
    effect_type: restore
    effect_target: health
    effect_value: 50
  - id: 101
    name: sword
    type: equipment
    slot: weapon
    required_class: warrior
    bonuses:
      atk: 5
      str: 2
  - id: 201
    name: armor
    type: equipment
    slot: armor
    bonuses:
      def: 5
      max_health: 20
`,
		"skill_list.yaml": `
skills:
  - id: 1
    name: bash
    skill_type: active
    damage_type: physical
    target_type: enemy
    required_class: warrior
    mana_cost: 5
    cooldown: 3.0
    range: 2.5
    levels:
      - { level: 1, base_damage: 10, damage_multiplier: 1.2, status_point_cost: 1 }
      - { level: 2, base_damage: 18, damage_multiplier: 1.3, status_point_cost: 2 }
  - id: 2
    name: whirlwind
    skill_type: active
    damage_type: physical
    target_type: area
    required_class: warrior
    mana_cost: 8
    cooldown: 2.0
    area_radius: 3.0
    levels:
      - { level: 1, base_damage: 10, damage_multiplier: 1.0, status_point_cost: 1 }
  - id: 3
    name: sacrifice
    skill_type: active
    damage_type: none
    target_type: self
    mana_cost: 5
    health_cost: 20
    cooldown: 1.0
    levels:
      - { level: 1, base_healing: 0, status_point_cost: 1 }
`,
		"monster_list.yaml": `
monsters:
  - id: 1
    name: slime
    level: 1
    max_health: 50
    attack_power: 5
    defense: 2
    exp_reward: 10
    attack_speed: 0.8
    attack_range: 1.5
    move_speed: 2.0
    aggro_range: 5.0
    spawn_x: 15.0
    spawn_z: 15.0
    spawn_radius: 3.0
    respawn_time_ms: 10000
`,
		"loot_list.yaml": `
loot:
  - monster_id: 1
    gold_min: 2
    gold_max: 8
    items:
      - { template_id: 1, chance: 1000000, min: 1, max: 1 }
`,
		"terrain.yaml": `
origin_x: 0.0
origin_z: 0.0
cell_size: 10.0
heights:
  - [0.0, 0.0, 0.0]
  - [0.0, 0.0, 0.0]
  - [0.0, 0.0, 0.0]
`,
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}

	cat, err := catalog.Load(dir)
	require.NoError(t, err)
	return cat
}

// newTestWarrior builds a fresh level-1 warrior with stats derived from
// the test catalog.
func newTestWarrior(t *testing.T, cat *catalog.Catalog) *world.Player {
	t.Helper()
	cls := cat.Classes.Get("warrior")
	require.NotNil(t, cls)

	base, health, mana := InitialStats(cls)
	p := &world.Player{
		SessionID:       1,
		Session:         &fakeConn{id: "player_1"},
		CharID:          1,
		Name:            "tester",
		Class:           "warrior",
		Level:           1,
		Health:          health,
		MaxHealth:       health,
		Mana:            mana,
		MaxMana:         mana,
		Base:            base,
		MoveSpeed:       5.0,
		AttackRange:     2.0,
		Skills:          make(map[int32]*world.LearnedSkill),
		Inv:             world.NewInventory(1, 30),
		PotionCooldowns: make(map[string]time.Time),
	}
	RecalculateStats(p, cat.Classes, cat.Items)
	p.Health = p.MaxHealth
	p.Mana = p.MaxMana
	return p
}
