// Package protocol defines the JSON wire messages exchanged with clients.
// Every message carries a required "type" tag. Timestamps are Unix
// milliseconds; positions are {x,y,z} floats.
package protocol

import "encoding/json"

// Inbound message type tags.
const (
	CPing            = "ping"
	CLogin           = "login"
	CRegister        = "register"
	CListCharacters  = "listCharacters"
	CCreateCharacter = "createCharacter"
	CSelectCharacter = "selectCharacter"
	CMoveRequest     = "moveRequest"
	CAttackMonster   = "attackMonster"
	CUseSkill        = "useSkill"
	CCancelCast      = "cancelCast"
	CLearnSkill      = "learnSkill"
	CLevelUpSkill    = "levelUpSkill"
	CGetSkills       = "getSkills"
	CGetSkillList    = "getSkillList"
	CGetInventory    = "getInventory"
	CUseItem         = "useItem"
	CEquipItem       = "equipItem"
	CUnequipItem     = "unequipItem"
	CDropItem        = "dropItem"
	CRespawn         = "respawn"
	CAddStatusPoint  = "addStatusPoint"
)

// Outbound message type tags.
const (
	SPong                  = "pong"
	SError                 = "error"
	SLoginResponse         = "loginResponse"
	SRegisterResponse      = "registerResponse"
	SCharacterList         = "characterListResponse"
	SCreateCharacterResp   = "createCharacterResponse"
	SSelectCharacterResp   = "selectCharacterResponse"
	SMoveAccepted          = "moveAccepted"
	SAttackStarted         = "attackStarted"
	SWorldState            = "worldState"
	SPlayerJoined          = "playerJoined"
	SPlayerDisconnected    = "playerDisconnected"
	SCombatResult          = "combatResult"
	SPlayerAttack          = "playerAttack"
	SLevelUp               = "levelUp"
	SPlayerDeath           = "playerDeath"
	SPlayerRespawn         = "playerRespawn"
	SRespawnResponse       = "respawnResponse"
	SPlayerStatsUpdate     = "playerStatsUpdate"
	SLootReceived          = "lootReceived"
	SSkillUsed             = "skillUsed"
	SSkillUseFailed        = "skillUseFailed"
	SSkillLearned          = "skillLearned"
	SSkillLeveledUp        = "skillLeveledUp"
	SSkillsResponse        = "skillsResponse"
	SSkillListResponse     = "skillListResponse"
	SInventoryResponse     = "inventoryResponse"
	SItemUsed              = "itemUsed"
	SItemUseFailed         = "itemUseFailed"
	SItemEquipped          = "itemEquipped"
	SItemUnequipped        = "itemUnequipped"
	SItemDropped           = "itemDropped"
	SStatusPointAdded      = "statusPointAdded"
)

// Skill failure codes, in validation order.
const (
	FailPlayerDead      = "PLAYER_DEAD"
	FailSkillNotLearned = "SKILL_NOT_LEARNED"
	FailSkillNotFound   = "SKILL_NOT_FOUND"
	FailCooldown        = "COOLDOWN"
	FailInvalidLevel    = "INVALID_LEVEL"
	FailNoMana          = "NO_MANA"
	FailNoHealth        = "NO_HEALTH"
	FailOutOfRange      = "OUT_OF_RANGE"
	FailExecution       = "EXECUTION_ERROR"
)

// Item failure codes.
const (
	FailHPFull        = "HP_FULL"
	FailMPFull        = "MP_FULL"
	FailOnCooldown    = "ON_COOLDOWN"
	FailNotConsumable = "NOT_CONSUMABLE"
	FailNotEquipment  = "NOT_EQUIPMENT"
	FailItemNotFound  = "ITEM_NOT_FOUND"
	FailLevelTooLow   = "LEVEL_TOO_LOW"
	FailWrongClass    = "WRONG_CLASS"
	FailInventoryFull = "INVENTORY_FULL"
	FailItemEquipped  = "ITEM_EQUIPPED"
	FailBadQuantity   = "BAD_QUANTITY"
	FailSlotEmpty     = "SLOT_EMPTY"
	FailBackpressure  = "backpressure"
)

// Envelope is the minimal decode target used to route an inbound message.
type Envelope struct {
	Type string `json:"type"`
}

// Position is a world-space coordinate.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// ---------- Inbound payloads ----------

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type CreateCharacterRequest struct {
	Name  string `json:"name"`
	Race  string `json:"race"`
	Class string `json:"class"`
}

type SelectCharacterRequest struct {
	CharacterID int64 `json:"characterId"`
}

type MoveRequest struct {
	TargetPosition Position `json:"targetPosition"`
}

type AttackMonsterRequest struct {
	MonsterID int64 `json:"monsterId"`
}

type UseSkillRequest struct {
	SkillID        int32     `json:"skillId"`
	SlotNumber     int       `json:"slotNumber"`
	TargetID       int64     `json:"targetId,omitempty"`
	TargetType     string    `json:"targetType,omitempty"`
	TargetPosition *Position `json:"targetPosition,omitempty"`
}

type LearnSkillRequest struct {
	SkillID    int32 `json:"skillId"`
	SlotNumber int   `json:"slotNumber"`
}

type LevelUpSkillRequest struct {
	SkillID int32 `json:"skillId"`
}

type UseItemRequest struct {
	InstanceID int64 `json:"instanceId"`
}

type EquipItemRequest struct {
	InstanceID int64 `json:"instanceId"`
}

type UnequipItemRequest struct {
	Slot string `json:"slot"`
}

type DropItemRequest struct {
	InstanceID int64 `json:"instanceId"`
	Quantity   int   `json:"quantity"`
}

type AddStatusPointRequest struct {
	Stat string `json:"stat"`
}

// Decode unmarshals an inbound payload into dst.
func Decode(raw []byte, dst any) error {
	return json.Unmarshal(raw, dst)
}
