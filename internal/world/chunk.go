package world

import (
	"sync"

	"github.com/annel0/mmo-cavein/internal/vec"
	"github.com/annel0/mmo-cavein/internal/world/block"
)

// Размеры чанка
const (
	ChunkSize   = 16
	ChunkVolume = ChunkSize * ChunkSize * ChunkSize
	chunkShift  = 4
	chunkMask   = ChunkSize - 1
)

// Chunk представляет кубический участок мира 16x16x16 блоков
type Chunk struct {
	Coords vec.Vec3 // Координаты чанка (в чанках, не в блоках)

	// Blocks[y*256 + z*16 + x]
	Blocks [ChunkVolume]block.BlockID

	ChangeCounter int          // Счетчик изменений с последнего сохранения
	Mu            sync.RWMutex // Мьютекс для безопасного доступа

	nonAir int // количество непустых блоков
}

// NewChunk создаёт пустой (воздушный) чанк с указанными координатами
func NewChunk(coords vec.Vec3) *Chunk {
	return &Chunk{Coords: coords}
}

// ToChunkCoords преобразует мировые координаты в координаты чанка
func ToChunkCoords(pos vec.Vec3) vec.Vec3 {
	return vec.Vec3{X: pos.X >> chunkShift, Y: pos.Y >> chunkShift, Z: pos.Z >> chunkShift}
}

// LocalInChunk возвращает локальные координаты внутри чанка
func LocalInChunk(pos vec.Vec3) vec.Vec3 {
	return vec.Vec3{X: pos.X & chunkMask, Y: pos.Y & chunkMask, Z: pos.Z & chunkMask}
}

// Origin возвращает мировые координаты минимального угла чанка
func (c *Chunk) Origin() vec.Vec3 {
	return vec.Vec3{X: c.Coords.X << chunkShift, Y: c.Coords.Y << chunkShift, Z: c.Coords.Z << chunkShift}
}

func chunkIndex(local vec.Vec3) int {
	return local.Y<<(2*chunkShift) | local.Z<<chunkShift | local.X
}

// GetBlock возвращает ID блока по локальным координатам
func (c *Chunk) GetBlock(local vec.Vec3) block.BlockID {
	c.Mu.RLock()
	defer c.Mu.RUnlock()
	return c.Blocks[chunkIndex(local)]
}

// SetBlock устанавливает блок по локальным координатам и возвращает прежний ID
func (c *Chunk) SetBlock(local vec.Vec3, id block.BlockID) block.BlockID {
	c.Mu.Lock()
	defer c.Mu.Unlock()
	return c.setBlockLocked(chunkIndex(local), id)
}

func (c *Chunk) setBlockLocked(idx int, id block.BlockID) block.BlockID {
	old := c.Blocks[idx]
	if old == id {
		return old
	}

	if old == block.AirBlockID {
		c.nonAir++
	} else if id == block.AirBlockID {
		c.nonAir--
	}

	c.Blocks[idx] = id
	c.ChangeCounter++
	return old
}

// Fill заполняет чанк из плоского массива (например, после загрузки из хранилища).
// Счётчик изменений не увеличивается.
func (c *Chunk) Fill(blocks []block.BlockID) {
	c.Mu.Lock()
	defer c.Mu.Unlock()

	c.nonAir = 0
	for i := range c.Blocks {
		id := block.AirBlockID
		if i < len(blocks) {
			id = blocks[i]
		}
		c.Blocks[i] = id
		if id != block.AirBlockID {
			c.nonAir++
		}
	}
}

// Snapshot возвращает копию блоков чанка
func (c *Chunk) Snapshot() []block.BlockID {
	c.Mu.RLock()
	defer c.Mu.RUnlock()

	out := make([]block.BlockID, ChunkVolume)
	copy(out, c.Blocks[:])
	return out
}

// IsEmpty сообщает, что в чанке только воздух
func (c *Chunk) IsEmpty() bool {
	c.Mu.RLock()
	defer c.Mu.RUnlock()
	return c.nonAir == 0
}

// IsDirty сообщает, есть ли несохранённые изменения
func (c *Chunk) IsDirty() bool {
	c.Mu.RLock()
	defer c.Mu.RUnlock()
	return c.ChangeCounter > 0
}

// ClearChanges сбрасывает счетчик изменений после сохранения
func (c *Chunk) ClearChanges() {
	c.Mu.Lock()
	c.ChangeCounter = 0
	c.Mu.Unlock()
}
