package indicator

import (
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-catalyst/internal/types"
	"github.com/rxtech-lab/argo-catalyst/pkg/errors"
)

// Registry holds one indicator per IndicatorType and updates them in
// registration order.
type Registry struct {
	indicators map[IndicatorType]Indicator
	order      []IndicatorType
}

func NewRegistry() *Registry {
	return &Registry{
		indicators: make(map[IndicatorType]Indicator),
	}
}

// Register adds indicator under its Name. A name can only be registered once.
func (r *Registry) Register(indicator Indicator) error {
	if indicator == nil {
		return errors.New(errors.ErrCodeMissingParameter, "indicator is nil")
	}

	name := indicator.Name()
	if _, exists := r.indicators[name]; exists {
		return errors.Newf(errors.ErrCodeInvalidParameter, "indicator %s already registered", name)
	}

	r.indicators[name] = indicator
	r.order = append(r.order, name)

	return nil
}

func (r *Registry) Get(name IndicatorType) optional.Option[Indicator] {
	if indicator, ok := r.indicators[name]; ok {
		return optional.Some(indicator)
	}

	return optional.None[Indicator]()
}

// List returns the registered names in registration order.
func (r *Registry) List() []IndicatorType {
	names := make([]IndicatorType, len(r.order))
	copy(names, r.order)

	return names
}

func (r *Registry) Remove(name IndicatorType) error {
	if _, exists := r.indicators[name]; !exists {
		return errors.Newf(errors.ErrCodeDataNotFound, "indicator %s not registered", name)
	}

	delete(r.indicators, name)

	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)

			break
		}
	}

	return nil
}

// Update folds tick into every registered indicator.
func (r *Registry) Update(tick types.Tick) {
	for _, name := range r.order {
		r.indicators[name].Update(tick)
	}
}

func (r *Registry) Reset() {
	for _, name := range r.order {
		r.indicators[name].Reset()
	}
}
