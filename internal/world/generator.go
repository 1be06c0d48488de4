package world

import (
	"github.com/annel0/mmo-cavein/internal/util"
	"github.com/annel0/mmo-cavein/internal/vec"
	"github.com/annel0/mmo-cavein/internal/world/block"
)

// Generator генерирует подземный ландшафт: коренная порода на дне,
// каменная толща с карманами неустойчивой породы, пещеры и слой земли сверху.
type Generator struct {
	Seed            int64
	BaseHeight      int     // Средняя высота поверхности
	HeightAmplitude int     // Разброс высоты поверхности
	HeightScale     float64 // Масштаб шума высоты
	RockScale       float64 // Масштаб шума карманов неустойчивой породы
	RockThreshold   float64 // Выше порога — неустойчивая порода
	CaveScale       float64 // Масштаб шума пещер
	CaveThreshold   float64 // Выше порога — пустота
	DirtDepth       int     // Толщина слоя земли

	heightNoise *util.Noise
	rockNoise   *util.Noise
	caveNoise   *util.Noise
}

// NewGenerator создаёт генератор с настройками по умолчанию
func NewGenerator(seed int64) *Generator {
	return &Generator{
		Seed:            seed,
		BaseHeight:      64,
		HeightAmplitude: 16,
		HeightScale:     0.02,
		RockScale:       0.08,
		RockThreshold:   0.58,
		CaveScale:       0.05,
		CaveThreshold:   0.68,
		DirtDepth:       3,

		heightNoise: util.NewNoise(seed),
		rockNoise:   util.NewNoise(seed + 7919),
		caveNoise:   util.NewNoise(seed + 104729),
	}
}

// SurfaceHeight возвращает высоту поверхности в колонне (x, z)
func (g *Generator) SurfaceHeight(x, z int) int {
	n := g.heightNoise.Noise2D(float64(x)*g.HeightScale, float64(z)*g.HeightScale)
	h := g.BaseHeight + int((n-0.5)*2*float64(g.HeightAmplitude))
	if h < MinY+1 {
		h = MinY + 1
	}
	if h > MaxY {
		h = MaxY
	}
	return h
}

// BlockAt возвращает блок, который генератор поставил бы в позицию pos
func (g *Generator) BlockAt(pos vec.Vec3, surface int) block.BlockID {
	switch {
	case pos.Y == MinY:
		return block.BedrockBlockID
	case pos.Y > surface:
		return block.AirBlockID
	case pos.Y > surface-g.DirtDepth:
		return block.DirtBlockID
	}

	fx, fy, fz := float64(pos.X), float64(pos.Y), float64(pos.Z)

	// Пещеры не прорезают дно и слой земли
	if pos.Y > MinY+2 && g.caveNoise.Noise3D(fx*g.CaveScale, fy*g.CaveScale, fz*g.CaveScale) > g.CaveThreshold {
		return block.AirBlockID
	}
	if g.rockNoise.Noise3D(fx*g.RockScale, fy*g.RockScale, fz*g.RockScale) > g.RockThreshold {
		return block.UnstableRockBlockID
	}
	return block.StoneBlockID
}

// GenerateChunk генерирует чанк по его координатам
func (g *Generator) GenerateChunk(coords vec.Vec3) *Chunk {
	chunk := NewChunk(coords)
	origin := chunk.Origin()

	// Чанк целиком вне мира остаётся воздухом
	if origin.Y > MaxY || origin.Y+ChunkSize-1 < MinY {
		return chunk
	}

	var surface [ChunkSize][ChunkSize]int
	for z := 0; z < ChunkSize; z++ {
		for x := 0; x < ChunkSize; x++ {
			surface[x][z] = g.SurfaceHeight(origin.X+x, origin.Z+z)
		}
	}

	chunk.Mu.Lock()
	for y := 0; y < ChunkSize; y++ {
		worldY := origin.Y + y
		if worldY < MinY || worldY > MaxY {
			continue
		}
		for z := 0; z < ChunkSize; z++ {
			for x := 0; x < ChunkSize; x++ {
				pos := vec.Vec3{X: origin.X + x, Y: worldY, Z: origin.Z + z}
				id := g.BlockAt(pos, surface[x][z])
				if id != block.AirBlockID {
					chunk.setBlockLocked(chunkIndex(vec.Vec3{X: x, Y: y, Z: z}), id)
				}
			}
		}
	}
	// Сгенерированный чанк воспроизводим по сиду и не требует сохранения
	chunk.ChangeCounter = 0
	chunk.Mu.Unlock()

	return chunk
}
