package cache

import (
	"fmt"
	"time"

	"github.com/tablekit/backoffice/internal/domain/order"
	"github.com/tablekit/backoffice/internal/infrastructure/config"
	"go.uber.org/zap"
)

// OrderNumberGeneratorFactory creates order number generators based on configuration
type OrderNumberGeneratorFactory struct {
	orderConfig           config.OrderConfig
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// OrderNumberGeneratorFactoryOption is a functional option for configuring the factory
type OrderNumberGeneratorFactoryOption func(*OrderNumberGeneratorFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) OrderNumberGeneratorFactoryOption {
	return func(f *OrderNumberGeneratorFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis falls back to
// the in-memory counter. Default is false.
func WithInMemoryFallback(allow bool) OrderNumberGeneratorFactoryOption {
	return func(f *OrderNumberGeneratorFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewOrderNumberGeneratorFactory creates a new factory
func NewOrderNumberGeneratorFactory(orderCfg config.OrderConfig, redisCfg config.RedisConfig, opts ...OrderNumberGeneratorFactoryOption) *OrderNumberGeneratorFactory {
	f := &OrderNumberGeneratorFactory{
		orderConfig: orderCfg,
		redisConfig: redisCfg,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Create returns the generator selected by order.number_sequence
func (f *OrderNumberGeneratorFactory) Create() (order.NumberGenerator, error) {
	loc := f.orderConfig.Location()

	switch f.orderConfig.NumberSequence {
	case config.SequenceLocal, "":
		f.logger.Info("using in-memory order number sequence", zap.String("timezone", loc.String()))
		return NewInMemoryOrderNumberGenerator(loc), nil
	case config.SequenceRedis:
		return f.createRedis(loc)
	}
	return nil, fmt.Errorf("unknown order number sequence %q", f.orderConfig.NumberSequence)
}

func (f *OrderNumberGeneratorFactory) createRedis(loc *time.Location) (order.NumberGenerator, error) {
	gen, err := NewRedisOrderNumberGenerator(RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	}, loc)
	if err == nil {
		f.logger.Info("using Redis order number sequence", zap.String("addr", f.redisConfig.RedisAddr()))
		return gen, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for order numbers but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory order number sequence. "+
		"Numbers may collide across instances.",
		zap.Error(err),
	)
	return NewInMemoryOrderNumberGenerator(loc), nil
}
