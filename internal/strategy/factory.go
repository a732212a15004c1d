package strategy

import (
	"strings"

	"github.com/rxtech-lab/argo-catalyst/internal/logger"
	"github.com/rxtech-lab/argo-catalyst/pkg/errors"
)

// NewStrategy builds the strategy named by cfg.Name for symbol.
func NewStrategy(cfg Config, symbol string, classifier RegimeClassifier, log *logger.Logger) (Strategy, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Name)) {
	case StrategyNameNewsMomentum:
		return NewNewsMomentumStrategy(symbol, cfg.NewsMomentum, classifier, log)
	default:
		return nil, errors.Newf(errors.ErrCodeUnsupportedStrategy, "unsupported strategy %q", cfg.Name)
	}
}
