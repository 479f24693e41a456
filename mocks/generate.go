package mocks

//go:generate mockgen -destination=./mock_evaluator.go -package=mocks github.com/rxtech-lab/argo-evolution/internal/fitness Evaluator
//go:generate mockgen -destination=./mock_candidate_store.go -package=mocks github.com/rxtech-lab/argo-evolution/internal/store CandidateStore
//go:generate mockgen -destination=./mock_indicator_registry.go -package=mocks github.com/rxtech-lab/argo-evolution/internal/indicator IndicatorRegistry
