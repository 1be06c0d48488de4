package block

import (
	"sort"
	"sync"

	"github.com/annel0/mmo-cavein/internal/vec"
)

var (
	registryMu sync.RWMutex
	registry   = make(map[BlockID]BlockBehavior)
)

// Register добавляет поведение блока в регистр. Повторная регистрация ID
// заменяет прежнее поведение.
func Register(id BlockID, behavior BlockBehavior) {
	registryMu.Lock()
	registry[id] = behavior
	registryMu.Unlock()
}

// Get возвращает поведение для указанного ID
func Get(id BlockID) (BlockBehavior, bool) {
	registryMu.RLock()
	behavior, exists := registry[id]
	registryMu.RUnlock()
	return behavior, exists
}

// IsValidBlockID проверяет, является ли ID допустимым идентификатором блока
func IsValidBlockID(id BlockID) bool {
	_, exists := Get(id)
	return exists
}

// RegisteredIDs возвращает все зарегистрированные ID в порядке возрастания
func RegisteredIDs() []BlockID {
	registryMu.RLock()
	ids := make([]BlockID, 0, len(registry))
	for id := range registry {
		ids = append(ids, id)
	}
	registryMu.RUnlock()

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// FaceSolid сообщает, сплошная ли грань face у блока id.
// Незарегистрированные блоки считаются несплошными.
func FaceSolid(id BlockID, face vec.Facing) bool {
	behavior, ok := Get(id)
	if !ok {
		return false
	}
	return behavior.FaceSolid(face)
}

// StabilizationRating возвращает явный рейтинг стабилизации блока (0 — нет).
func StabilizationRating(id BlockID) int {
	behavior, ok := Get(id)
	if !ok {
		return 0
	}
	return behavior.StabilizationRating()
}

// IsUnstable сообщает, относится ли блок к неустойчивой породе.
func IsUnstable(id BlockID) bool {
	behavior, ok := Get(id)
	if !ok {
		return false
	}
	return behavior.Unstable()
}

// NameOf возвращает имя блока или "unknown"
func NameOf(id BlockID) string {
	behavior, ok := Get(id)
	if !ok {
		return "unknown"
	}
	return behavior.Name()
}

// BlockID представляет идентификатор блока
type BlockID uint16

// Константы ID блоков
const (
	// Базовые типы блоков
	AirBlockID          BlockID = iota // 0
	StoneBlockID                       // 1
	UnstableRockBlockID                // 2 - обрушаемая порода
	BedrockBlockID                     // 3
	DirtBlockID                        // 4

	// Крепь и опоры (начиная с 100)
	TimberSupportBlockID BlockID = 100 // Деревянная стойка, рейтинг 3
	StonePillarBlockID   BlockID = 101 // Каменная колонна, рейтинг 5

	// Блоки из JSON-описаний (начиная с 1000)
	FirstCustomBlockID BlockID = 1000
)
