package handler

import (
	"time"

	"github.com/runekeep/server/internal/game"
	"github.com/runekeep/server/internal/gateway"
	"github.com/runekeep/server/internal/protocol"
	"github.com/runekeep/server/internal/world"
)

func HandleUseSkill(s *gateway.Session, raw []byte, deps *Deps) {
	var req protocol.UseSkillRequest
	if err := protocol.Decode(raw, &req); err != nil {
		return
	}
	now := time.Now()

	deps.World.Lock()
	defer deps.World.Unlock()

	p := deps.World.PlayerBySession(s.ID)
	if p == nil {
		return
	}
	// 允許以快捷欄位指定技能。
	if req.SkillID == 0 && req.SlotNumber != 0 {
		if ls := p.SkillInSlot(req.SlotNumber); ls != nil {
			req.SkillID = ls.SkillID
		}
	}
	deps.SkillEng.UseSkill(p, &req, now)
}

func HandleCancelCast(s *gateway.Session, deps *Deps) {
	deps.World.Lock()
	defer deps.World.Unlock()

	if p := deps.World.PlayerBySession(s.ID); p != nil {
		deps.SkillEng.CancelCast(p)
	}
}

func HandleLearnSkill(s *gateway.Session, raw []byte, deps *Deps) {
	var req protocol.LearnSkillRequest
	if err := protocol.Decode(raw, &req); err != nil {
		return
	}

	ctx, cancel := opCtx()
	defer cancel()

	deps.World.Lock()
	defer deps.World.Unlock()

	if p := deps.World.PlayerBySession(s.ID); p != nil {
		deps.SkillEng.Learn(ctx, p, req.SkillID, req.SlotNumber)
	}
}

func HandleLevelUpSkill(s *gateway.Session, raw []byte, deps *Deps) {
	var req protocol.LevelUpSkillRequest
	if err := protocol.Decode(raw, &req); err != nil {
		return
	}

	ctx, cancel := opCtx()
	defer cancel()

	deps.World.Lock()
	defer deps.World.Unlock()

	if p := deps.World.PlayerBySession(s.ID); p != nil {
		deps.SkillEng.LevelUp(ctx, p, req.SkillID)
	}
}

// HandleGetSkills returns the player's learned skills with their
// templates embedded.
func HandleGetSkills(s *gateway.Session, deps *Deps) {
	deps.World.Lock()
	p := deps.World.PlayerBySession(s.ID)
	var learned []*world.LearnedSkill
	if p != nil {
		for _, ls := range p.Skills {
			learned = append(learned, ls)
		}
	}
	deps.World.Unlock()

	out := protocol.SkillsResponse{Type: protocol.SSkillsResponse}
	for _, ls := range learned {
		state := protocol.LearnedSkillState{
			SkillID:    ls.SkillID,
			Level:      ls.Level,
			SlotNumber: ls.SlotNumber,
		}
		if tpl := deps.Catalog.Skills.Get(ls.SkillID); tpl != nil {
			v := game.TemplateView(tpl)
			state.Template = &v
		}
		out.Skills = append(out.Skills, state)
	}
	s.SendJSON(&out)
}

// HandleGetSkillList returns every template learnable by the caller's
// class.
func HandleGetSkillList(s *gateway.Session, deps *Deps) {
	deps.World.Lock()
	p := deps.World.PlayerBySession(s.ID)
	class := ""
	if p != nil {
		class = p.Class
	}
	deps.World.Unlock()

	out := protocol.SkillListResponse{Type: protocol.SSkillListResponse}
	for _, tpl := range deps.Catalog.Skills.ForClass(class) {
		out.Skills = append(out.Skills, game.TemplateView(tpl))
	}
	s.SendJSON(&out)
}
