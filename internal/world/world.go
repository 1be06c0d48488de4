package world

import (
	"sync"

	"github.com/annel0/mmo-cavein/internal/logging"
	"github.com/annel0/mmo-cavein/internal/vec"
	"github.com/annel0/mmo-cavein/internal/world/block"
)

// Вертикальные границы мира
const (
	MinY = 0
	MaxY = 255
)

// ChunkLoader загружает ранее сохранённый чанк. found=false означает,
// что чанк ещё не сохранялся и его нужно сгенерировать.
type ChunkLoader interface {
	LoadChunk(coords vec.Vec3) (chunk *Chunk, found bool, err error)
}

// BlockChange описывает изменение одного блока
type BlockChange struct {
	Pos vec.Vec3
	Old block.BlockID
	New block.BlockID
}

// World: воксельная сетка мира, разбитая на чанки 16x16x16.
// Чтение и запись безопасны из нескольких горутин, но симуляция обвалов
// рассчитывает на то, что изменения делает только авторитетный тик.
type World struct {
	chunks    map[vec.Vec3]*Chunk
	generator *Generator
	loader    ChunkLoader
	listeners []func(BlockChange)
	mu        sync.RWMutex
	log       *logging.Logger
}

// NewWorld создаёт мир. generator может быть nil — тогда отсутствующие
// чанки считаются воздухом.
func NewWorld(generator *Generator) *World {
	return &World{
		chunks:    make(map[vec.Vec3]*Chunk),
		generator: generator,
		log:       logging.GetWorldLogger(),
	}
}

// SetChunkLoader подключает хранилище, из которого подгружаются чанки
func (w *World) SetChunkLoader(loader ChunkLoader) {
	w.mu.Lock()
	w.loader = loader
	w.mu.Unlock()
}

// SetLogger заменяет логгер мира
func (w *World) SetLogger(l *logging.Logger) {
	w.log = l
}

// OnBlockChange регистрирует слушателя изменений блоков.
// Слушатель вызывается синхронно из SetBlock.
func (w *World) OnBlockChange(fn func(BlockChange)) {
	w.mu.Lock()
	w.listeners = append(w.listeners, fn)
	w.mu.Unlock()
}

// InBounds проверяет вертикальные границы мира
func InBounds(pos vec.Vec3) bool {
	return pos.Y >= MinY && pos.Y <= MaxY
}

// chunkFor возвращает чанк для мировой позиции. При create=true отсутствующий
// чанк загружается, генерируется или создаётся пустым.
func (w *World) chunkFor(pos vec.Vec3, create bool) *Chunk {
	coords := ToChunkCoords(pos)

	w.mu.RLock()
	chunk, ok := w.chunks[coords]
	canMaterialize := w.generator != nil || w.loader != nil
	w.mu.RUnlock()
	if ok {
		return chunk
	}
	if !create && !canMaterialize {
		return nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if chunk, ok := w.chunks[coords]; ok {
		return chunk
	}

	chunk = w.materializeLocked(coords)
	w.chunks[coords] = chunk
	return chunk
}

func (w *World) materializeLocked(coords vec.Vec3) *Chunk {
	if w.loader != nil {
		chunk, found, err := w.loader.LoadChunk(coords)
		if err != nil {
			w.log.Error("Ошибка загрузки чанка %v: %v", coords, err)
		} else if found {
			return chunk
		}
	}
	if w.generator != nil {
		return w.generator.GenerateChunk(coords)
	}
	return NewChunk(coords)
}

// GetBlock возвращает ID блока в мировой позиции. Вне границ мира — воздух.
func (w *World) GetBlock(pos vec.Vec3) block.BlockID {
	if !InBounds(pos) {
		return block.AirBlockID
	}
	chunk := w.chunkFor(pos, false)
	if chunk == nil {
		return block.AirBlockID
	}
	return chunk.GetBlock(LocalInChunk(pos))
}

// SetBlock устанавливает блок. Запись вне границ мира игнорируется.
func (w *World) SetBlock(pos vec.Vec3, id block.BlockID) {
	if !InBounds(pos) {
		return
	}
	chunk := w.chunkFor(pos, true)
	old := chunk.SetBlock(LocalInChunk(pos), id)
	if old == id {
		return
	}

	w.mu.RLock()
	listeners := w.listeners
	w.mu.RUnlock()

	change := BlockChange{Pos: pos, Old: old, New: id}
	for _, fn := range listeners {
		fn(change)
	}
}

// IsSideSolid сообщает, сплошная ли грань face у блока в позиции pos
func (w *World) IsSideSolid(pos vec.Vec3, face vec.Facing) bool {
	return block.FaceSolid(w.GetBlock(pos), face)
}

// GetBlockStabilizationRating возвращает явный рейтинг крепи блока в pos
func (w *World) GetBlockStabilizationRating(pos vec.Vec3) int {
	return block.StabilizationRating(w.GetBlock(pos))
}

// CanAttachBlockAt сообщает, можно ли опереться на грань face блока в pos.
// Под дном мира опора есть всегда.
func (w *World) CanAttachBlockAt(pos vec.Vec3, face vec.Facing) bool {
	if pos.Y < MinY {
		return true
	}
	return w.IsSideSolid(pos, face)
}

// IsAir проверяет, что в позиции воздух
func (w *World) IsAir(pos vec.Vec3) bool {
	return w.GetBlock(pos) == block.AirBlockID
}

// FillBox заполняет параллелепипед [min, max] (включительно) блоком id
func (w *World) FillBox(min, max vec.Vec3, id block.BlockID) {
	for y := min.Y; y <= max.Y; y++ {
		for z := min.Z; z <= max.Z; z++ {
			for x := min.X; x <= max.X; x++ {
				w.SetBlock(vec.Vec3{X: x, Y: y, Z: z}, id)
			}
		}
	}
}

// Chunk возвращает загруженный чанк по координатам чанка
func (w *World) Chunk(coords vec.Vec3) (*Chunk, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	chunk, ok := w.chunks[coords]
	return chunk, ok
}

// PutChunk добавляет готовый чанк (например, загруженный из хранилища)
func (w *World) PutChunk(chunk *Chunk) {
	w.mu.Lock()
	w.chunks[chunk.Coords] = chunk
	w.mu.Unlock()
}

// LoadedChunkCount возвращает количество загруженных чанков
func (w *World) LoadedChunkCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.chunks)
}

// DirtyChunks возвращает чанки с несохранёнными изменениями
func (w *World) DirtyChunks() []*Chunk {
	w.mu.RLock()
	defer w.mu.RUnlock()

	var dirty []*Chunk
	for _, chunk := range w.chunks {
		if chunk.IsDirty() {
			dirty = append(dirty, chunk)
		}
	}
	return dirty
}
