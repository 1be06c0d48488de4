package entity

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/annel0/mmo-cavein/internal/vec"
	"github.com/annel0/mmo-cavein/internal/world/block"
)

// Параметры падения
const (
	Gravity          = 20.0 // блоков/с²
	TerminalVelocity = 40.0 // блоков/с
)

// Grid: доступ к сетке мира, нужный падающим блокам
type Grid interface {
	GetBlock(pos vec.Vec3) block.BlockID
	SetBlock(pos vec.Vec3, id block.BlockID)
	CanAttachBlockAt(pos vec.Vec3, face vec.Facing) bool
}

// FallingBlockManager управляет всеми падающими блоками в мире
type FallingBlockManager struct {
	grid         Grid
	entities     map[uint64]*FallingBlock // Хранилище всех падающих блоков
	byCell       map[uint64]uint64        // Ключ клетки -> ID сущности
	nextEntityID uint64                   // Счетчик для генерации ID
	listeners    []func(LandEvent)
	mu           sync.RWMutex
}

// NewFallingBlockManager создаёт новый менеджер падающих блоков
func NewFallingBlockManager(grid Grid) *FallingBlockManager {
	return &FallingBlockManager{
		grid:     grid,
		entities: make(map[uint64]*FallingBlock),
		byCell:   make(map[uint64]uint64),
	}
}

// OnLand регистрирует слушателя приземлений. Вызывается из Tick.
func (m *FallingBlockManager) OnLand(fn func(LandEvent)) {
	m.mu.Lock()
	m.listeners = append(m.listeners, fn)
	m.mu.Unlock()
}

// SpawnFallingBlock создаёт падающий блок в исходной клетке spec.Origin.
// Удаление блока из сетки — забота вызывающего.
func (m *FallingBlockManager) SpawnFallingBlock(spec FallingBlockSpec) uint64 {
	id := atomic.AddUint64(&m.nextEntityID, 1)

	fb := &FallingBlock{
		ID:       id,
		Type:     EntityTypeFallingBlock,
		Spec:     spec,
		Cell:     spec.Origin,
		Position: spec.Origin.ToFloat(),
	}

	m.mu.Lock()
	m.entities[id] = fb
	m.byCell[spec.Origin.Key()] = id
	m.mu.Unlock()

	return id
}

// HasFallingBlockAt сообщает, находится ли в клетке pos падающий блок
func (m *FallingBlockManager) HasFallingBlockAt(pos vec.Vec3) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.byCell[pos.Key()]
	return ok
}

// Get возвращает копию падающего блока по ID
func (m *FallingBlockManager) Get(id uint64) (FallingBlock, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	fb, ok := m.entities[id]
	if !ok {
		return FallingBlock{}, false
	}
	return *fb, true
}

// Count возвращает число падающих блоков
func (m *FallingBlockManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entities)
}

// Tick продвигает все падающие блоки на dt секунд и сажает приземлившиеся.
// Блоки обрабатываются снизу вверх, чтобы нижний успевал освободить или
// занять клетку до верхнего.
func (m *FallingBlockManager) Tick(dt float64) []LandEvent {
	m.mu.Lock()
	active := make([]*FallingBlock, 0, len(m.entities))
	for _, fb := range m.entities {
		active = append(active, fb)
	}
	listeners := m.listeners
	m.mu.Unlock()

	sort.Slice(active, func(i, j int) bool {
		if active[i].Cell.Y != active[j].Cell.Y {
			return active[i].Cell.Y < active[j].Cell.Y
		}
		return active[i].ID < active[j].ID
	})

	var landed []LandEvent
	for _, fb := range active {
		if ev, ok := m.step(fb, dt); ok {
			landed = append(landed, ev)
		}
	}

	for _, ev := range landed {
		for _, fn := range listeners {
			fn(ev)
		}
	}
	return landed
}

// step продвигает один блок; ok=true если блок приземлился
func (m *FallingBlockManager) step(fb *FallingBlock, dt float64) (LandEvent, bool) {
	fb.Age += dt
	fb.Velocity += Gravity * dt
	if fb.Velocity > TerminalVelocity {
		fb.Velocity = TerminalVelocity
	}
	fb.progress += fb.Velocity * dt

	// Клетка под исходной позицией уже опора — блок оседает сразу
	if m.blocked(fb.Cell) {
		return m.land(fb), true
	}

	for fb.progress >= 1 {
		fb.progress--
		m.moveTo(fb, fb.Cell.Down(1))
		if m.blocked(fb.Cell) {
			return m.land(fb), true
		}
	}

	fb.Position = fb.Cell.ToFloat()
	fb.Position.Y -= fb.progress
	return LandEvent{}, false
}

// blocked сообщает, что под клеткой есть опора для посадки
func (m *FallingBlockManager) blocked(cell vec.Vec3) bool {
	below := cell.Down(1)
	if m.grid.CanAttachBlockAt(below, vec.FaceUp) {
		return true
	}
	return m.grid.GetBlock(below) != block.AirBlockID
}

func (m *FallingBlockManager) moveTo(fb *FallingBlock, cell vec.Vec3) {
	m.mu.Lock()
	if m.byCell[fb.Cell.Key()] == fb.ID {
		delete(m.byCell, fb.Cell.Key())
	}
	fb.Cell = cell
	m.byCell[cell.Key()] = fb.ID
	m.mu.Unlock()
}

// land ставит блок в сетку (или соскальзывает вбок) и удаляет сущность
func (m *FallingBlockManager) land(fb *FallingBlock) LandEvent {
	ev := LandEvent{
		EntityID:      fb.ID,
		Block:         fb.Spec.Block,
		Origin:        fb.Spec.Origin,
		Pos:           fb.Cell,
		FallDistance:  fb.FallDistance(),
		DustIntensity: fb.Spec.DustIntensity,
		Sound:         fb.Spec.FallSound,
	}
	ev.ImpactDamage = float64(ev.FallDistance) * fb.Spec.ImpactDamageMultiplier

	m.mu.Lock()
	if m.byCell[fb.Cell.Key()] == fb.ID {
		delete(m.byCell, fb.Cell.Key())
	}
	delete(m.entities, fb.ID)
	m.mu.Unlock()

	switch {
	case m.grid.GetBlock(fb.Cell) == block.AirBlockID:
		m.grid.SetBlock(fb.Cell, fb.Spec.Block)
	case fb.Spec.AllowSideways:
		if side, ok := m.findSideways(fb.Cell); ok {
			ev.Pos = side
			m.grid.SetBlock(side, fb.Spec.Block)
		} else {
			ev.Dropped = true
		}
	default:
		ev.Dropped = true
	}

	return ev
}

func (m *FallingBlockManager) findSideways(cell vec.Vec3) (vec.Vec3, bool) {
	for _, face := range vec.Horizontals() {
		side := cell.Side(face)
		if m.grid.GetBlock(side) == block.AirBlockID && !m.HasFallingBlockAt(side) {
			return side, true
		}
	}
	return vec.Vec3{}, false
}
