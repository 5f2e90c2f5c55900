package handler

import (
	"time"

	"go.uber.org/zap"

	"github.com/runekeep/server/internal/game"
	"github.com/runekeep/server/internal/gateway"
	"github.com/runekeep/server/internal/protocol"
)

// HandleMoveRequest validates the target through the movement guard and
// sets the player's move target. A rejected move produces no reply at
// all; the periodic snapshot snaps the client back.
func HandleMoveRequest(s *gateway.Session, raw []byte, deps *Deps) {
	var req protocol.MoveRequest
	if err := protocol.Decode(raw, &req); err != nil {
		return
	}
	now := time.Now()

	deps.World.Lock()
	defer deps.World.Unlock()

	p := deps.World.PlayerBySession(s.ID)
	if p == nil || p.Dead {
		return
	}

	target, ok := deps.Guard.Accept(p, req.TargetPosition, now)
	if !ok {
		return
	}

	p.TargetPos = &target
	p.Moving = true
	p.TargetMonster = 0 // 手動移動會中斷自動攻擊
	if p.Cast != nil {
		p.Cast = nil
	}

	s.SendJSON(&protocol.MoveAccepted{
		Type:           protocol.SMoveAccepted,
		PlayerID:       s.PlayerID(),
		TargetPosition: target,
	})
}

// HandleAttackMonster engages auto-combat with a living monster. The
// tick loop does the chasing and striking.
func HandleAttackMonster(s *gateway.Session, raw []byte, deps *Deps) {
	var req protocol.AttackMonsterRequest
	if err := protocol.Decode(raw, &req); err != nil {
		return
	}

	deps.World.Lock()
	defer deps.World.Unlock()

	p := deps.World.PlayerBySession(s.ID)
	if p == nil || p.Dead {
		return
	}
	m := deps.World.Monster(req.MonsterID)
	if m == nil || !m.Alive {
		s.SendJSON(&protocol.Error{Type: protocol.SError, Message: "目標不存在"})
		return
	}

	p.TargetMonster = m.ID

	deps.Hub.Broadcast(&protocol.AttackStarted{
		Type:      protocol.SAttackStarted,
		PlayerID:  s.PlayerID(),
		MonsterID: m.ID,
	})
}

// HandleRespawn revives a dead player at the class spawn point with full
// health and mana.
func HandleRespawn(s *gateway.Session, deps *Deps) {
	deps.World.Lock()

	p := deps.World.PlayerBySession(s.ID)
	if p == nil || !p.Dead {
		deps.World.Unlock()
		s.SendJSON(&protocol.RespawnResponse{Type: protocol.SRespawnResponse, Success: false})
		return
	}

	cls := deps.Catalog.Classes.Get(p.Class)
	x, y, z := deps.Catalog.Terrain.Clamp(0, 0)
	if cls != nil {
		x, y, z = deps.Catalog.Terrain.Clamp(cls.SpawnX, cls.SpawnZ)
	}
	p.Pos = protocol.Position{X: x, Y: y, Z: z}
	p.Dead = false
	p.Health = p.MaxHealth
	p.Mana = p.MaxMana
	p.TargetPos = nil
	p.Moving = false
	p.TargetMonster = 0
	p.Effects = nil
	p.Dirty = true
	deps.Guard.Commit(p, time.Now())
	game.RecalculateStats(p, deps.Catalog.Classes, deps.Catalog.Items)

	pos := p.Pos
	health, mana := p.Health, p.Mana
	deps.World.Unlock()

	s.SendJSON(&protocol.RespawnResponse{
		Type:     protocol.SRespawnResponse,
		Success:  true,
		Position: pos,
	})
	deps.Hub.Broadcast(&protocol.PlayerRespawn{
		Type:     protocol.SPlayerRespawn,
		PlayerID: s.PlayerID(),
		Position: pos,
		Health:   health,
		Mana:     mana,
	})

	deps.Log.Info("玩家重生", zap.String("player", s.PlayerID()))
}
