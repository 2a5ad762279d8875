// Package save keeps battle records in numbered slots.
package save

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dynmech/internal/combat"
)

const (
	MinSlot = 1
	MaxSlot = 3
)

var (
	ErrInvalidSlot = errors.New("invalid save slot")
	ErrNotFound    = errors.New("save slot is empty")
)

// Entry describes one occupied slot.
type Entry struct {
	Slot    int       `json:"slot"`
	SavedAt time.Time `json:"saved_at"`
	Size    int       `json:"size"`
}

// Store persists opaque battle records by slot.
type Store interface {
	Save(ctx context.Context, slot int, data []byte) error
	Load(ctx context.Context, slot int) ([]byte, error)
	Clear(ctx context.Context, slot int) error
	List(ctx context.Context) ([]Entry, error)
}

func checkSlot(slot int) error {
	if slot < MinSlot || slot > MaxSlot {
		return fmt.Errorf("%w: %d (want %d-%d)", ErrInvalidSlot, slot, MinSlot, MaxSlot)
	}
	return nil
}

// SaveBattle writes b's record into slot.
func SaveBattle(ctx context.Context, s Store, slot int, b *combat.Battle) error {
	data, err := b.Record().Marshal()
	if err != nil {
		return fmt.Errorf("encode battle: %w", err)
	}
	return s.Save(ctx, slot, data)
}

// LoadBattle restores the battle held in slot. A corrupt record yields
// combat.ErrInvalidRecord.
func LoadBattle(ctx context.Context, s Store, slot int, opts ...combat.Option) (*combat.Battle, error) {
	data, err := s.Load(ctx, slot)
	if err != nil {
		return nil, err
	}
	rec, err := combat.UnmarshalRecord(data)
	if err != nil {
		return nil, fmt.Errorf("slot %d: %w", slot, err)
	}
	return combat.Restore(rec, opts...)
}
