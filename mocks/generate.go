package mocks

//go:generate mockgen -destination=./mock_provider.go -package=mocks github.com/stock-tracker/tracker/pkg/marketdata/provider Provider
//go:generate mockgen -destination=./mock_renderer.go -package=mocks github.com/stock-tracker/tracker/internal/chart Renderer
