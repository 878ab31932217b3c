package mocks

//go:generate mockgen -destination=./mock_portfolio.go -package=mocks github.com/rxtech-lab/argo-rules/internal/portfolio Portfolio
//go:generate mockgen -destination=./mock_journal.go -package=mocks github.com/rxtech-lab/argo-rules/internal/portfolio Journal
//go:generate mockgen -destination=./mock_series_provider.go -package=mocks github.com/rxtech-lab/argo-rules/pkg/marketdata SeriesProvider
//go:generate mockgen -destination=./mock_provider.go -package=mocks github.com/rxtech-lab/argo-rules/pkg/marketdata/provider Provider
