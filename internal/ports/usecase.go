package ports

//go:generate mockgen -source=usecase.go -destination=../mocks/usecase_mock.go -package=mocks

import (
	"context"

	"heavyCalc/internal/domain"
)

// IHeavyUseCase — контракт бизнес-логики: отдать результат тяжёлого вычисления (cache-aside).
type IHeavyUseCase interface {
	Heavy(ctx context.Context) (*domain.HeavyResult, error)
}
