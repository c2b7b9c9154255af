package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tablekit/backoffice/internal/infrastructure/config"
)

func TestOrderNumberGeneratorFactory_Create(t *testing.T) {
	unreachable := config.RedisConfig{Host: "127.0.0.1", Port: 1}

	t.Run("local sequence", func(t *testing.T) {
		f := NewOrderNumberGeneratorFactory(config.OrderConfig{NumberSequence: config.SequenceLocal}, unreachable)

		gen, err := f.Create()
		require.NoError(t, err)
		assert.IsType(t, &InMemoryOrderNumberGenerator{}, gen)
	})

	t.Run("redis required", func(t *testing.T) {
		f := NewOrderNumberGeneratorFactory(config.OrderConfig{NumberSequence: config.SequenceRedis}, unreachable)

		_, err := f.Create()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Redis required")
	})

	t.Run("redis with fallback", func(t *testing.T) {
		f := NewOrderNumberGeneratorFactory(
			config.OrderConfig{NumberSequence: config.SequenceRedis},
			unreachable,
			WithInMemoryFallback(true),
		)

		gen, err := f.Create()
		require.NoError(t, err)
		assert.IsType(t, &InMemoryOrderNumberGenerator{}, gen)
	})

	t.Run("unknown sequence", func(t *testing.T) {
		f := NewOrderNumberGeneratorFactory(config.OrderConfig{NumberSequence: "zookeeper"}, unreachable)

		_, err := f.Create()
		assert.Error(t, err)
	})
}
