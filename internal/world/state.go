package world

import (
	"sort"
	"sync"
)

// State tracks all players and monsters currently in-world. Its mutex is
// THE world lock: the tick loop holds it for a full tick, handlers hold it
// for the duration of one handler, persistence snapshots hold it briefly.
type State struct {
	mu sync.Mutex

	bySession map[uint64]*Player
	byCharID  map[int64]*Player
	byName    map[string]*Player
	joinSeq   uint64

	monsters   map[int64]*Monster
	monsterIDs []int64 // sorted; stable per-tick iteration order

	// Per-monster loot locks: held across the death re-check and the loot
	// roll so two concurrent kill paths for one monster serialize.
	lootMu    sync.Mutex
	lootLocks map[int64]*sync.Mutex
}

func NewState() *State {
	return &State{
		bySession: make(map[uint64]*Player),
		byCharID:  make(map[int64]*Player),
		byName:    make(map[string]*Player),
		monsters:  make(map[int64]*Monster),
		lootLocks: make(map[int64]*sync.Mutex),
	}
}

// Lock acquires the world lock.
func (s *State) Lock() { s.mu.Lock() }

// Unlock releases the world lock.
func (s *State) Unlock() { s.mu.Unlock() }

// AddPlayer registers a player; caller holds the world lock.
func (s *State) AddPlayer(p *Player) {
	s.joinSeq++
	p.JoinSeq = s.joinSeq
	s.bySession[p.SessionID] = p
	s.byCharID[p.CharID] = p
	s.byName[p.Name] = p
}

// RemovePlayer unregisters a player; caller holds the world lock.
func (s *State) RemovePlayer(sessionID uint64) *Player {
	p, ok := s.bySession[sessionID]
	if !ok {
		return nil
	}
	delete(s.bySession, sessionID)
	delete(s.byCharID, p.CharID)
	delete(s.byName, p.Name)
	return p
}

func (s *State) PlayerBySession(sessionID uint64) *Player {
	return s.bySession[sessionID]
}

func (s *State) PlayerByCharID(charID int64) *Player {
	return s.byCharID[charID]
}

func (s *State) PlayerByName(name string) *Player {
	return s.byName[name]
}

// CharacterOnline reports whether a character is already bound to a live
// session.
func (s *State) CharacterOnline(charID int64) bool {
	return s.byCharID[charID] != nil
}

// PlayersInJoinOrder returns all players sorted by world join order. Used
// by the combat phase so same-tick strikes on one monster serialize
// deterministically.
func (s *State) PlayersInJoinOrder() []*Player {
	out := make([]*Player, 0, len(s.bySession))
	for _, p := range s.bySession {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].JoinSeq < out[j].JoinSeq })
	return out
}

// PlayerCount returns the number of in-world players.
func (s *State) PlayerCount() int {
	return len(s.bySession)
}

// AddMonster registers a monster instance; caller holds the world lock.
func (s *State) AddMonster(m *Monster) {
	s.monsters[m.ID] = m
	s.monsterIDs = append(s.monsterIDs, m.ID)
	sort.Slice(s.monsterIDs, func(i, j int) bool { return s.monsterIDs[i] < s.monsterIDs[j] })
}

func (s *State) Monster(id int64) *Monster {
	return s.monsters[id]
}

// MonstersInOrder iterates monsters in stable id order.
func (s *State) MonstersInOrder(fn func(*Monster)) {
	for _, id := range s.monsterIDs {
		fn(s.monsters[id])
	}
}

// MonsterCount returns the number of registered monster instances.
func (s *State) MonsterCount() int {
	return len(s.monsters)
}

// LootLock returns the per-monster loot mutex, creating it on first use.
// This lock is independent of the world lock.
func (s *State) LootLock(monsterID int64) *sync.Mutex {
	s.lootMu.Lock()
	defer s.lootMu.Unlock()
	l := s.lootLocks[monsterID]
	if l == nil {
		l = &sync.Mutex{}
		s.lootLocks[monsterID] = l
	}
	return l
}
