package protocol

// Outbound message bodies. Each struct embeds its own "type" tag so a single
// json.Marshal produces the complete wire frame.

type Pong struct {
	Type string `json:"type"`
	Time int64  `json:"time"`
}

type Error struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// ---------- Auth / character select ----------

type CharacterSummary struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Race   string `json:"race"`
	Class  string `json:"class"`
	Level  int    `json:"level"`
	IsDead bool   `json:"isDead"`
}

type LoginResponse struct {
	Type    string             `json:"type"`
	Success bool               `json:"success"`
	Data    *LoginResponseData `json:"data,omitempty"`
	Message string             `json:"message,omitempty"`
}

type LoginResponseData struct {
	AccountID  int64              `json:"accountId"`
	Characters []CharacterSummary `json:"characters"`
}

type RegisterResponse struct {
	Type    string `json:"type"`
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type CharacterListResponse struct {
	Type       string             `json:"type"`
	Characters []CharacterSummary `json:"characters"`
}

type CreateCharacterResponse struct {
	Type      string            `json:"type"`
	Success   bool              `json:"success"`
	Character *CharacterSummary `json:"character,omitempty"`
	Message   string            `json:"message,omitempty"`
}

type SelectCharacterResponse struct {
	Type        string          `json:"type"`
	Success     bool            `json:"success"`
	PlayerID    string          `json:"playerId,omitempty"`
	Character   *PlayerState    `json:"character,omitempty"`
	AllPlayers  []PlayerState   `json:"allPlayers,omitempty"`
	AllMonsters []MonsterState  `json:"allMonsters,omitempty"`
	Inventory   *InventoryState `json:"inventory,omitempty"`
	Message     string          `json:"message,omitempty"`
}

// ---------- World snapshot ----------

// PlayerState is the per-player slice of the periodic worldState snapshot.
type PlayerState struct {
	PlayerID     string   `json:"playerId"`
	Name         string   `json:"name"`
	Race         string   `json:"race"`
	Class        string   `json:"class"`
	Level        int      `json:"level"`
	Experience   int64    `json:"experience"`
	StatusPoints int      `json:"statusPoints"`
	Health       int      `json:"health"`
	MaxHealth    int      `json:"maxHealth"`
	Mana         int      `json:"mana"`
	MaxMana      int      `json:"maxMana"`
	Position     Position `json:"position"`
	IsMoving     bool     `json:"isMoving"`
	InCombat     bool     `json:"inCombat"`
	IsDead       bool     `json:"isDead"`
	Stats        Stats    `json:"stats"`
}

type Stats struct {
	Str         int     `json:"str"`
	Int         int     `json:"int"`
	Dex         int     `json:"dex"`
	Vit         int     `json:"vit"`
	Atk         int     `json:"atk"`
	Matk        int     `json:"matk"`
	Def         int     `json:"def"`
	AttackSpeed float64 `json:"attackSpeed"`
}

type MonsterState struct {
	ID        int64    `json:"id"`
	Name      string   `json:"name"`
	Level     int      `json:"level"`
	Health    int      `json:"health"`
	MaxHealth int      `json:"maxHealth"`
	Position  Position `json:"position"`
	IsAlive   bool     `json:"isAlive"`
	InCombat  bool     `json:"inCombat"`
}

type WorldState struct {
	Type     string         `json:"type"`
	Time     int64          `json:"time"`
	Players  []PlayerState  `json:"players"`
	Monsters []MonsterState `json:"monsters"`
}

type PlayerJoined struct {
	Type   string      `json:"type"`
	Player PlayerState `json:"player"`
}

type PlayerDisconnected struct {
	Type     string `json:"type"`
	PlayerID string `json:"playerId"`
}

// ---------- Movement / combat ----------

type MoveAccepted struct {
	Type           string   `json:"type"`
	PlayerID       string   `json:"playerId"`
	TargetPosition Position `json:"targetPosition"`
}

type AttackStarted struct {
	Type      string `json:"type"`
	PlayerID  string `json:"playerId"`
	MonsterID int64  `json:"monsterId"`
}

type CombatResult struct {
	Type         string `json:"type"`
	AttackerID   string `json:"attackerId"`
	TargetID     string `json:"targetId"`
	Damage       int    `json:"damage"`
	Critical     bool   `json:"critical"`
	TargetHealth int    `json:"targetHealth"`
	TargetDied   bool   `json:"targetDied"`
}

type PlayerAttack struct {
	Type      string `json:"type"`
	PlayerID  string `json:"playerId"`
	MonsterID int64  `json:"monsterId"`
	Damage    int    `json:"damage"`
	Critical  bool   `json:"critical"`
}

type LevelUp struct {
	Type         string `json:"type"`
	PlayerID     string `json:"playerId"`
	Level        int    `json:"level"`
	MaxHealth    int    `json:"maxHealth"`
	MaxMana      int    `json:"maxMana"`
	StatusPoints int    `json:"statusPoints"`
	Stats        Stats  `json:"stats"`
}

type PlayerDeath struct {
	Type     string `json:"type"`
	PlayerID string `json:"playerId"`
	KillerID int64  `json:"killerId"`
}

type PlayerRespawn struct {
	Type     string   `json:"type"`
	PlayerID string   `json:"playerId"`
	Position Position `json:"position"`
	Health   int      `json:"health"`
	Mana     int      `json:"mana"`
}

type RespawnResponse struct {
	Type     string   `json:"type"`
	Success  bool     `json:"success"`
	Position Position `json:"position"`
}

type PlayerStatsUpdate struct {
	Type         string `json:"type"`
	PlayerID     string `json:"playerId"`
	Health       int    `json:"health"`
	MaxHealth    int    `json:"maxHealth"`
	Mana         int    `json:"mana"`
	MaxMana      int    `json:"maxMana"`
	Level        int    `json:"level"`
	Experience   int64  `json:"experience"`
	StatusPoints int    `json:"statusPoints"`
	Stats        Stats  `json:"stats"`
}

type StatusPointAdded struct {
	Type         string `json:"type"`
	PlayerID     string `json:"playerId"`
	Stat         string `json:"stat"`
	StatusPoints int    `json:"statusPoints"`
	NewStats     Stats  `json:"newStats"`
}

// ---------- Loot / inventory ----------

type LootedItem struct {
	InstanceID int64  `json:"instanceId"`
	TemplateID int32  `json:"templateId"`
	Name       string `json:"name"`
	Quantity   int    `json:"quantity"`
}

type LootReceived struct {
	Type      string       `json:"type"`
	PlayerID  string       `json:"playerId"`
	MonsterID int64        `json:"monsterId"`
	Gold      int          `json:"gold"`
	Items     []LootedItem `json:"items"`
}

type ItemState struct {
	InstanceID int64  `json:"instanceId"`
	TemplateID int32  `json:"templateId"`
	Name       string `json:"name"`
	ItemType   string `json:"itemType"`
	Quantity   int    `json:"quantity"`
	Slot       int    `json:"slot"`
	IsEquipped bool   `json:"isEquipped"`
}

// EquipmentState mirrors the seven equipment-slot references; absent keys
// mean an empty slot.
type EquipmentState map[string]*ItemState

type InventoryState struct {
	MaxSlots  int            `json:"maxSlots"`
	Gold      int64          `json:"gold"`
	Items     []ItemState    `json:"items"`
	Equipment EquipmentState `json:"equipment"`
}

type InventoryResponse struct {
	Type      string          `json:"type"`
	Success   bool            `json:"success"`
	Inventory *InventoryState `json:"inventory,omitempty"`
	Message   string          `json:"message,omitempty"`
}

type ItemUsed struct {
	Type              string `json:"type"`
	PlayerID          string `json:"playerId"`
	InstanceID        int64  `json:"instanceId"`
	Health            int    `json:"health"`
	MaxHealth         int    `json:"maxHealth"`
	Mana              int    `json:"mana"`
	MaxMana           int    `json:"maxMana"`
	RemainingQuantity int    `json:"remainingQuantity"`
}

type ItemUseFailed struct {
	Type    string `json:"type"`
	Reason  string `json:"reason"`
	Message string `json:"message,omitempty"`
}

type ItemEquipped struct {
	Type       string         `json:"type"`
	PlayerID   string         `json:"playerId"`
	InstanceID int64          `json:"instanceId"`
	NewStats   Stats          `json:"newStats"`
	Equipment  EquipmentState `json:"equipment"`
}

type ItemUnequipped struct {
	Type      string         `json:"type"`
	PlayerID  string         `json:"playerId"`
	Slot      string         `json:"slot"`
	NewStats  Stats          `json:"newStats"`
	Equipment EquipmentState `json:"equipment"`
}

type ItemDropped struct {
	Type       string `json:"type"`
	PlayerID   string `json:"playerId"`
	InstanceID int64  `json:"instanceId"`
	Quantity   int    `json:"quantity"`
}

// ---------- Skills ----------

type SkillTarget struct {
	TargetID     int64 `json:"targetId"`
	Damage       int   `json:"damage"`
	Healing      int   `json:"healing"`
	Critical     bool  `json:"critical"`
	TargetHealth int   `json:"targetHealth"`
	TargetDied   bool  `json:"targetDied"`
}

type SkillUsed struct {
	Type      string        `json:"type"`
	PlayerID  string        `json:"playerId"`
	SkillID   int32         `json:"skillId"`
	SkillName string        `json:"skillName"`
	Targets   []SkillTarget `json:"targets"`
	Mana      int           `json:"mana"`
	Health    int           `json:"health"`
}

type SkillUseFailed struct {
	Type    string `json:"type"`
	SkillID int32  `json:"skillId"`
	Reason  string `json:"reason"`
}

type SkillLearned struct {
	Type       string `json:"type"`
	Success    bool   `json:"success"`
	SkillID    int32  `json:"skillId,omitempty"`
	SkillName  string `json:"skillName,omitempty"`
	SlotNumber int    `json:"slotNumber,omitempty"`
	Message    string `json:"message,omitempty"`
}

type SkillLeveledUp struct {
	Type         string `json:"type"`
	Success      bool   `json:"success"`
	SkillID      int32  `json:"skillId,omitempty"`
	NewLevel     int    `json:"newLevel,omitempty"`
	StatusPoints int    `json:"statusPoints,omitempty"`
	Message      string `json:"message,omitempty"`
}

type LearnedSkillState struct {
	SkillID    int32          `json:"skillId"`
	Level      int            `json:"currentLevel"`
	SlotNumber int            `json:"slotNumber"`
	Template   *SkillTemplate `json:"template,omitempty"`
}

// SkillTemplate is the wire shape of a catalog skill entry.
type SkillTemplate struct {
	ID            int32   `json:"id"`
	Name          string  `json:"name"`
	SkillType     string  `json:"skillType"`
	DamageType    string  `json:"damageType"`
	TargetType    string  `json:"targetType"`
	RequiredLevel int     `json:"requiredLevel"`
	RequiredClass string  `json:"requiredClass,omitempty"`
	MaxLevel      int     `json:"maxLevel"`
	ManaCost      int     `json:"manaCost"`
	HealthCost    int     `json:"healthCost"`
	Cooldown      float64 `json:"cooldown"`
	CastTime      float64 `json:"castTime"`
	Range         float64 `json:"range"`
	AreaRadius    float64 `json:"areaRadius"`
}

type SkillsResponse struct {
	Type   string              `json:"type"`
	Skills []LearnedSkillState `json:"skills"`
}

type SkillListResponse struct {
	Type   string          `json:"type"`
	Skills []SkillTemplate `json:"skills"`
}
