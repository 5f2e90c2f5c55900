package handler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/runekeep/server/internal/game"
	"github.com/runekeep/server/internal/gateway"
	"github.com/runekeep/server/internal/persist"
	"github.com/runekeep/server/internal/protocol"
)

// Router dispatches decoded inbound messages by session state. It
// implements gateway.Router; one instance serves every session.
type Router struct {
	deps *Deps
}

func NewRouter(deps *Deps) *Router {
	return &Router{deps: deps}
}

// Dispatch routes one raw inbound frame. Runs on the session's read
// goroutine; handlers that touch world state take the world lock.
func (r *Router) Dispatch(s *gateway.Session, raw []byte) {
	var env protocol.Envelope
	if err := protocol.Decode(raw, &env); err != nil || env.Type == "" {
		r.deps.Log.Debug("無法解析的訊息", zap.Uint64("session", s.ID))
		return
	}

	if env.Type == protocol.CPing {
		s.SendJSON(&protocol.Pong{Type: protocol.SPong, Time: time.Now().UnixMilli()})
		return
	}

	switch s.State() {
	case gateway.StateUnauthenticated:
		r.dispatchUnauthenticated(s, env.Type, raw)
	case gateway.StateCharacterSelect:
		r.dispatchCharacterSelect(s, env.Type, raw)
	case gateway.StateInWorld:
		r.dispatchInWorld(s, env.Type, raw)
	}
}

func (r *Router) dispatchUnauthenticated(s *gateway.Session, typ string, raw []byte) {
	switch typ {
	case protocol.CLogin:
		HandleLogin(s, raw, r.deps)
	case protocol.CRegister:
		HandleRegister(s, raw, r.deps)
	default:
		s.SendJSON(&protocol.Error{Type: protocol.SError, Message: "請先登入"})
	}
}

func (r *Router) dispatchCharacterSelect(s *gateway.Session, typ string, raw []byte) {
	switch typ {
	case protocol.CListCharacters:
		HandleListCharacters(s, r.deps)
	case protocol.CCreateCharacter:
		HandleCreateCharacter(s, raw, r.deps)
	case protocol.CSelectCharacter:
		HandleSelectCharacter(s, raw, r.deps)
	default:
		s.SendJSON(&protocol.Error{Type: protocol.SError, Message: "請先選擇角色"})
	}
}

func (r *Router) dispatchInWorld(s *gateway.Session, typ string, raw []byte) {
	switch typ {
	case protocol.CMoveRequest:
		HandleMoveRequest(s, raw, r.deps)
	case protocol.CAttackMonster:
		HandleAttackMonster(s, raw, r.deps)
	case protocol.CRespawn:
		HandleRespawn(s, r.deps)
	case protocol.CUseSkill:
		HandleUseSkill(s, raw, r.deps)
	case protocol.CCancelCast:
		HandleCancelCast(s, r.deps)
	case protocol.CLearnSkill:
		HandleLearnSkill(s, raw, r.deps)
	case protocol.CLevelUpSkill:
		HandleLevelUpSkill(s, raw, r.deps)
	case protocol.CGetSkills:
		HandleGetSkills(s, r.deps)
	case protocol.CGetSkillList:
		HandleGetSkillList(s, r.deps)
	case protocol.CGetInventory:
		HandleGetInventory(s, r.deps)
	case protocol.CUseItem:
		HandleUseItem(s, raw, r.deps)
	case protocol.CEquipItem:
		HandleEquipItem(s, raw, r.deps)
	case protocol.CUnequipItem:
		HandleUnequipItem(s, raw, r.deps)
	case protocol.CDropItem:
		HandleDropItem(s, raw, r.deps)
	case protocol.CAddStatusPoint:
		HandleAddStatusPoint(s, raw, r.deps)
	default:
		// 未知型別：記錄後丟棄。
		r.deps.Log.Debug("未知的訊息型別",
			zap.String("type", typ),
			zap.Uint64("session", s.ID),
		)
	}
}

// Disconnected runs the session teardown: persist the character, drop it
// from the registry, and tell everyone else.
func (r *Router) Disconnected(s *gateway.Session) {
	if s.State() != gateway.StateInWorld {
		return
	}

	r.deps.World.Lock()
	p := r.deps.World.RemovePlayer(s.ID)
	var charRow *persist.CharacterRow
	var invRow *persist.InventoryRow
	var skillRows []*persist.SkillRow
	if p != nil {
		charRow = game.CharacterRow(p)
		invRow = game.InventoryRow(p.Inv)
		skillRows = game.SkillRows(p)
	}
	r.deps.World.Unlock()

	if p == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := r.deps.Chars.Update(ctx, charRow); err != nil {
		r.deps.Log.Error("離線保存角色失敗", zap.Error(err), zap.String("player", p.Name))
	}
	if err := r.deps.Inventories.Save(ctx, invRow); err != nil {
		r.deps.Log.Error("離線保存背包失敗", zap.Error(err), zap.String("player", p.Name))
	}
	if err := r.deps.Skills.Save(ctx, p.CharID, skillRows); err != nil {
		r.deps.Log.Error("離線保存技能失敗", zap.Error(err), zap.String("player", p.Name))
	}

	r.deps.Hub.BroadcastExcept(s.ID, &protocol.PlayerDisconnected{
		Type:     protocol.SPlayerDisconnected,
		PlayerID: s.PlayerID(),
	})

	r.deps.Log.Info("玩家離線",
		zap.String("player", p.Name),
		zap.Uint64("session", s.ID),
	)
}
