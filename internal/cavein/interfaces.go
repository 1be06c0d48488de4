package cavein

import (
	"math"
	"time"

	"github.com/annel0/mmo-cavein/internal/vec"
	"github.com/annel0/mmo-cavein/internal/world/block"
	"github.com/annel0/mmo-cavein/internal/world/entity"
)

// BlockAccess: доступ к воксельной сетке
type BlockAccess interface {
	GetBlock(pos vec.Vec3) block.BlockID
	SetBlock(pos vec.Vec3, id block.BlockID)
	IsSideSolid(pos vec.Vec3, face vec.Facing) bool
	GetBlockStabilizationRating(pos vec.Vec3) int
}

// FallingBlockSpawner создаёт падающие блоки
type FallingBlockSpawner interface {
	SpawnFallingBlock(spec entity.FallingBlockSpec) uint64
	HasFallingBlockAt(pos vec.Vec3) bool
}

// TaskScheduler откладывает fn на delay симулированного времени
type TaskScheduler interface {
	After(delay time.Duration, fn func())
}

// BeamDistanceFunc возвращает расстояние до ближайшей балки крепи
type BeamDistanceFunc func(pos vec.Vec3) float64

// NoBeams: подсистемы балок нет
func NoBeams(vec.Vec3) float64 { return math.Inf(1) }

// Rand: источник случайности. *math/rand.Rand подходит без обёрток.
type Rand interface {
	Float64() float64
	Intn(n int) int
}
