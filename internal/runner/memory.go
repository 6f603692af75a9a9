package runner

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/petasbytes/go-astra/memory"
)

// Memory serves the operations that touch only the store. Runner embeds it;
// callers with no model, such as purge, use it directly.
type Memory struct {
	store  memory.Store
	logger *zap.Logger
}

func NewMemory(store memory.Store, logger *zap.Logger) *Memory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Memory{store: store, logger: logger}
}

// Purge resets all five memory artifacts to their defaults.
func (m *Memory) Purge(ctx context.Context) error {
	if err := m.store.Reset(ctx); err != nil {
		return fmt.Errorf("purge: %w", err)
	}
	m.logger.Info("memory purged")
	return nil
}

// Personality returns the stored profile verbatim.
func (m *Memory) Personality(ctx context.Context) (string, error) {
	return m.store.Get(ctx, memory.Personality)
}

// SetPersonality replaces the profile verbatim.
func (m *Memory) SetPersonality(ctx context.Context, text string) error {
	return m.store.Set(ctx, memory.Personality, text)
}
