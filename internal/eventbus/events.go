package eventbus

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Типы событий сервера
const (
	EventCollapse     = "cavein.collapse"     // Запущен обвал
	EventBlockBroken  = "world.block_broken"  // Блок разрушен игроком или API
	EventBlockExplode = "world.explosion"     // Взрыв разрушил область
	EventBlockLanded  = "world.block_landed"  // Падающий блок приземлился
)

// PayloadVersion: текущая версия схемы полезной нагрузки
const PayloadVersion = 1

// NewEnvelope упаковывает payload в JSON-конверт с новым UUID
func NewEnvelope(source, eventType string, payload any) (*Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return &Envelope{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Source:    source,
		EventType: eventType,
		Version:   PayloadVersion,
		Payload:   data,
	}, nil
}

// Decode распаковывает полезную нагрузку конверта в v
func (ev *Envelope) Decode(v any) error {
	if err := json.Unmarshal(ev.Payload, v); err != nil {
		return fmt.Errorf("decode %s payload: %w", ev.EventType, err)
	}
	return nil
}
