package handler

import (
	"time"

	"github.com/runekeep/server/internal/game"
	"github.com/runekeep/server/internal/gateway"
	"github.com/runekeep/server/internal/protocol"
)

func HandleGetInventory(s *gateway.Session, deps *Deps) {
	deps.World.Lock()
	p := deps.World.PlayerBySession(s.ID)
	var inv *protocol.InventoryState
	if p != nil {
		v := game.InventoryView(p.Inv, deps.Catalog.Items)
		inv = &v
	}
	deps.World.Unlock()

	if inv == nil {
		s.SendJSON(&protocol.InventoryResponse{Type: protocol.SInventoryResponse, Success: false})
		return
	}
	s.SendJSON(&protocol.InventoryResponse{
		Type:      protocol.SInventoryResponse,
		Success:   true,
		Inventory: inv,
	})
}

func HandleUseItem(s *gateway.Session, raw []byte, deps *Deps) {
	var req protocol.UseItemRequest
	if err := protocol.Decode(raw, &req); err != nil {
		return
	}

	ctx, cancel := opCtx()
	defer cancel()

	deps.World.Lock()
	defer deps.World.Unlock()

	if p := deps.World.PlayerBySession(s.ID); p != nil {
		deps.Inventory.UseItem(ctx, p, req.InstanceID, time.Now())
	}
}

func HandleEquipItem(s *gateway.Session, raw []byte, deps *Deps) {
	var req protocol.EquipItemRequest
	if err := protocol.Decode(raw, &req); err != nil {
		return
	}

	ctx, cancel := opCtx()
	defer cancel()

	deps.World.Lock()
	defer deps.World.Unlock()

	if p := deps.World.PlayerBySession(s.ID); p != nil {
		deps.Inventory.Equip(ctx, p, req.InstanceID)
	}
}

func HandleUnequipItem(s *gateway.Session, raw []byte, deps *Deps) {
	var req protocol.UnequipItemRequest
	if err := protocol.Decode(raw, &req); err != nil {
		return
	}

	ctx, cancel := opCtx()
	defer cancel()

	deps.World.Lock()
	defer deps.World.Unlock()

	if p := deps.World.PlayerBySession(s.ID); p != nil {
		deps.Inventory.Unequip(ctx, p, req.Slot)
	}
}

func HandleDropItem(s *gateway.Session, raw []byte, deps *Deps) {
	var req protocol.DropItemRequest
	if err := protocol.Decode(raw, &req); err != nil {
		return
	}

	ctx, cancel := opCtx()
	defer cancel()

	deps.World.Lock()
	defer deps.World.Unlock()

	if p := deps.World.PlayerBySession(s.ID); p != nil {
		deps.Inventory.Drop(ctx, p, req.InstanceID, req.Quantity)
	}
}

func HandleAddStatusPoint(s *gateway.Session, raw []byte, deps *Deps) {
	var req protocol.AddStatusPointRequest
	if err := protocol.Decode(raw, &req); err != nil {
		return
	}

	ctx, cancel := opCtx()
	defer cancel()

	deps.World.Lock()
	defer deps.World.Unlock()

	if p := deps.World.PlayerBySession(s.ID); p != nil {
		deps.Inventory.AddStatusPoint(ctx, p, req.Stat)
	}
}
