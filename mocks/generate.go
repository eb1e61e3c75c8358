package mocks

//go:generate mockgen -destination=./mock_bar_source.go -package=mocks github.com/rxtech-lab/argo-frvp/pkg/marketdata BarSource
//go:generate mockgen -destination=./mock_provider.go -package=mocks github.com/rxtech-lab/argo-frvp/pkg/marketdata/provider Provider
