package entity

import (
	"github.com/annel0/mmo-cavein/internal/vec"
	"github.com/annel0/mmo-cavein/internal/world/block"
)

// EntityType представляет тип сущности
type EntityType uint16

const (
	EntityTypeFallingBlock EntityType = iota + 1 // Падающий блок (обломок обвала)
)

// FallingBlockSpec описывает блок, который нужно превратить в падающую сущность.
// Живёт только на время планирования обвала.
type FallingBlockSpec struct {
	Block                  block.BlockID // Тип исходного блока
	Origin                 vec.Vec3      // Исходная позиция в сетке
	FallSound              string        // Звук падения
	ImpactDamageMultiplier float64       // Множитель урона при ударе
	AllowSideways          bool          // Разрешено ли соскальзывать вбок при посадке
	DustIntensity          float64       // Интенсивность пыли
}

// FallingBlock: падающий блок в мире
type FallingBlock struct {
	ID       uint64
	Type     EntityType
	Spec     FallingBlockSpec
	Cell     vec.Vec3      // Текущая клетка сетки
	Position vec.Vec3Float // Точная позиция (для клиентов)
	Velocity float64       // Скорость падения, блоков/с (вниз)
	Age      float64       // Время с момента появления, с

	progress float64 // пройденная доля текущей клетки
}

// FallDistance возвращает пройденную высоту в блоках
func (fb *FallingBlock) FallDistance() int {
	return fb.Spec.Origin.Y - fb.Cell.Y
}

// LandEvent описывает приземление падающего блока
type LandEvent struct {
	EntityID      uint64        `json:"entity_id"`
	Block         block.BlockID `json:"block"`
	Origin        vec.Vec3      `json:"origin"`
	Pos           vec.Vec3      `json:"pos"`
	FallDistance  int           `json:"fall_distance"`
	ImpactDamage  float64       `json:"impact_damage"`
	DustIntensity float64       `json:"dust_intensity"`
	Sound         string        `json:"sound"`
	Dropped       bool          `json:"dropped"` // Блок разрушился: поставить было некуда
}
