package ports

//go:generate mockgen -source=executor.go -destination=../mocks/executor_mock.go -package=mocks

import (
	"context"

	"heavyCalc/internal/domain"
)

// IExecutor — запуск тяжёлого вычисления вне горутины запроса. Run не блокируется:
// в канал приходит ровно один domain.Outcome, после чего канал закрывается.
type IExecutor interface {
	Run(ctx context.Context) <-chan domain.Outcome
}
