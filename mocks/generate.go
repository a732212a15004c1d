package mocks

//go:generate mockgen -destination=./mock_strategy.go -package=mocks github.com/rxtech-lab/argo-catalyst/internal/strategy Strategy
//go:generate mockgen -destination=./mock_regime_classifier.go -package=mocks github.com/rxtech-lab/argo-catalyst/internal/strategy RegimeClassifier
//go:generate mockgen -destination=./mock_datasource.go -package=mocks github.com/rxtech-lab/argo-catalyst/internal/backtest/engine/engine_v1/datasource DataSource
//go:generate mockgen -destination=./mock_marker.go -package=mocks github.com/rxtech-lab/argo-catalyst/internal/marker Marker
