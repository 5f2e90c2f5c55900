package handler

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/runekeep/server/internal/catalog"
	"github.com/runekeep/server/internal/game"
	"github.com/runekeep/server/internal/gateway"
	"github.com/runekeep/server/internal/persist"
	"github.com/runekeep/server/internal/protocol"
	"github.com/runekeep/server/internal/world"
)

// HandleListCharacters returns the account's character roster.
func HandleListCharacters(s *gateway.Session, deps *Deps) {
	ctx, cancel := opCtx()
	defer cancel()

	rows, err := deps.Chars.List(ctx, s.AccountID.Load())
	if err != nil {
		deps.Log.Error("讀取角色列表失敗", zap.Error(err))
		s.SendJSON(&protocol.Error{Type: protocol.SError, Message: "伺服器錯誤，請稍後再試"})
		return
	}

	out := protocol.CharacterListResponse{Type: protocol.SCharacterList}
	for _, c := range rows {
		out.Characters = append(out.Characters, protocol.CharacterSummary{
			ID: c.ID, Name: c.Name, Race: c.Race, Class: c.Class,
			Level: c.Level, IsDead: c.IsDead,
		})
	}
	s.SendJSON(&out)
}

// HandleCreateCharacter creates a character with its inventory and
// starter kit in one transaction.
func HandleCreateCharacter(s *gateway.Session, raw []byte, deps *Deps) {
	fail := func(msg string) {
		s.SendJSON(&protocol.CreateCharacterResponse{Type: protocol.SCreateCharacterResp, Success: false, Message: msg})
	}

	var req protocol.CreateCharacterRequest
	if err := protocol.Decode(raw, &req); err != nil {
		fail("請求格式錯誤")
		return
	}
	name := strings.TrimSpace(req.Name)
	if len(name) < 3 || len(name) > 20 {
		fail("名稱長度須為 3 到 20 字元")
		return
	}
	cls := deps.Catalog.Classes.Get(req.Class)
	if cls == nil {
		fail("職業不存在")
		return
	}

	ctx, cancel := opCtx()
	defer cancel()
	accountID := s.AccountID.Load()

	count, err := deps.Chars.CountByAccount(ctx, accountID)
	if err != nil {
		deps.Log.Error("查詢角色數量失敗", zap.Error(err))
		fail("伺服器錯誤，請稍後再試")
		return
	}
	if count >= deps.Config.World.MaxCharsPerAcct {
		fail("角色數量已達上限")
		return
	}
	taken, err := deps.Chars.NameTaken(ctx, name)
	if err != nil {
		deps.Log.Error("查詢角色名稱失敗", zap.Error(err))
		fail("伺服器錯誤，請稍後再試")
		return
	}
	if taken {
		fail("名稱已被使用")
		return
	}

	base, health, mana := game.InitialStats(cls)
	sx, sy, sz := deps.Catalog.Terrain.Clamp(cls.SpawnX, cls.SpawnZ)
	row := &persist.CharacterRow{
		AccountID:    accountID,
		Name:         name,
		Race:         req.Race,
		Class:        req.Class,
		Level:        1,
		Health:       health,
		MaxHealth:    health,
		Mana:         mana,
		MaxMana:      mana,
		Str:          base.Str,
		Intel:        base.Int,
		Dex:          base.Dex,
		Vit:          base.Vit,
		X:            sx,
		Y:            sy,
		Z:            sz,
	}

	starter, err := starterItems(ctx, deps, cls)
	if err != nil {
		deps.Log.Error("分配初始物品 ID 失敗", zap.Error(err))
		fail("伺服器錯誤，請稍後再試")
		return
	}

	id, err := deps.Chars.Create(ctx, row, deps.Config.World.InventorySlots, cls.StarterGold, starter)
	if err != nil {
		deps.Log.Error("建立角色失敗", zap.Error(err), zap.String("name", name))
		fail("伺服器錯誤，請稍後再試")
		return
	}

	deps.Log.Info("角色建立",
		zap.String("name", name),
		zap.String("class", req.Class),
		zap.Int64("accountID", accountID),
	)
	s.SendJSON(&protocol.CreateCharacterResponse{
		Type:    protocol.SCreateCharacterResp,
		Success: true,
		Character: &protocol.CharacterSummary{
			ID: id, Name: name, Race: req.Race, Class: req.Class, Level: 1,
		},
	})
}

// starterItems builds the class starter kit rows with fresh instance IDs.
// Character ID is filled in by the insert transaction.
func starterItems(ctx context.Context, deps *Deps, cls *catalog.ClassTemplate) ([]*persist.ItemRow, error) {
	if len(cls.StarterItems) == 0 {
		return nil, nil
	}
	ids, err := deps.IDAlloc.NextBatch(ctx, len(cls.StarterItems))
	if err != nil {
		return nil, err
	}
	rows := make([]*persist.ItemRow, 0, len(cls.StarterItems))
	for i, si := range cls.StarterItems {
		qty := si.Quantity
		if qty < 1 {
			qty = 1
		}
		rows = append(rows, &persist.ItemRow{
			InstanceID: ids[i],
			TemplateID: si.TemplateID,
			Quantity:   qty,
			Slot:       i,
		})
	}
	return rows, nil
}

// HandleSelectCharacter loads the character, its inventory and skills,
// spawns the player into the world, replies with the full snapshot, and
// announces the join to everyone else.
func HandleSelectCharacter(s *gateway.Session, raw []byte, deps *Deps) {
	fail := func(msg string) {
		s.SendJSON(&protocol.SelectCharacterResponse{Type: protocol.SSelectCharacterResp, Success: false, Message: msg})
	}

	var req protocol.SelectCharacterRequest
	if err := protocol.Decode(raw, &req); err != nil {
		fail("請求格式錯誤")
		return
	}

	ctx, cancel := opCtx()
	defer cancel()

	row, err := deps.Chars.Load(ctx, req.CharacterID)
	if err != nil {
		deps.Log.Error("讀取角色失敗", zap.Error(err))
		fail("伺服器錯誤，請稍後再試")
		return
	}
	if row == nil || row.AccountID != s.AccountID.Load() {
		fail("角色不存在")
		return
	}

	invRow, err := deps.Inventories.Load(ctx, row.ID)
	if err != nil {
		deps.Log.Error("讀取背包失敗", zap.Error(err))
		fail("伺服器錯誤，請稍後再試")
		return
	}
	skillRows, err := deps.Skills.Load(ctx, row.ID)
	if err != nil {
		deps.Log.Error("讀取技能失敗", zap.Error(err))
		fail("伺服器錯誤，請稍後再試")
		return
	}

	p := game.PlayerFromRow(row)
	p.SessionID = s.ID
	p.Session = s
	p.MoveSpeed = deps.Config.World.PlayerMoveSpeed
	p.AttackRange = 2.0
	p.Skills = game.SkillsFromRows(skillRows)
	if invRow != nil {
		p.Inv = game.InventoryFromRow(invRow)
	} else {
		p.Inv = world.NewInventory(row.ID, deps.Config.World.InventorySlots)
	}
	game.RecalculateStats(p, deps.Catalog.Classes, deps.Catalog.Items)

	deps.World.Lock()
	if deps.World.CharacterOnline(row.ID) {
		deps.World.Unlock()
		fail("角色已在線上")
		return
	}
	deps.World.AddPlayer(p)

	self := game.PlayerView(p)
	inv := game.InventoryView(p.Inv, deps.Catalog.Items)
	resp := protocol.SelectCharacterResponse{
		Type:      protocol.SSelectCharacterResp,
		Success:   true,
		PlayerID:  s.PlayerID(),
		Character: &self,
		Inventory: &inv,
	}
	for _, other := range deps.World.PlayersInJoinOrder() {
		resp.AllPlayers = append(resp.AllPlayers, game.PlayerView(other))
	}
	deps.World.MonstersInOrder(func(m *world.Monster) {
		resp.AllMonsters = append(resp.AllMonsters, game.MonsterView(m))
	})
	deps.World.Unlock()

	s.CharacterID.Store(row.ID)
	s.SetState(gateway.StateInWorld)
	s.SendJSON(&resp)

	deps.Hub.BroadcastExcept(s.ID, &protocol.PlayerJoined{
		Type:   protocol.SPlayerJoined,
		Player: self,
	})

	deps.Log.Info("玩家進入世界",
		zap.String("player", p.Name),
		zap.Int64("charID", p.CharID),
		zap.Uint64("session", s.ID),
	)
}
