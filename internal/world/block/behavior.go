package block

import (
	"github.com/annel0/mmo-cavein/internal/vec"
)

// BlockBehavior определяет структурные свойства блока, нужные симуляции обвалов
type BlockBehavior interface {
	ID() BlockID
	Name() string
	// FaceSolid сообщает, является ли грань сплошной (даёт опору соседу).
	FaceSolid(face vec.Facing) bool
	// StabilizationRating: явный рейтинг крепления породы; 0 если его нет.
	StabilizationRating() int
	// Unstable: блок относится к неустойчивой породе и может обрушиться.
	Unstable() bool
}

// FallingBehavior реализуют блоки с собственным звуком падения.
type FallingBehavior interface {
	FallSound() string
}

// FallSoundOf возвращает звук падения блока или fallback, если блок его не задаёт.
func FallSoundOf(id BlockID, fallback string) string {
	behavior, ok := Get(id)
	if !ok {
		return fallback
	}
	if fb, ok := behavior.(FallingBehavior); ok && fb.FallSound() != "" {
		return fb.FallSound()
	}
	return fallback
}
