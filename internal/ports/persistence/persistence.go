package persistence

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// Executor общий набор операций, доступный и на соединении, и в транзакции
type Executor interface {
	Get(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	Select(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	Exec(ctx context.Context, query string, args ...interface{}) error
	ExecWithResult(ctx context.Context, query string, args ...interface{}) (int64, error)
	NamedExec(ctx context.Context, query string, arg interface{}) error
	QueryRow(ctx context.Context, query string, args ...interface{}) *sqlx.Row
}

// Transaction транзакция БД
type Transaction interface {
	Executor
	Commit() error
	Rollback() error
}

// Persistence подключение к БД с поддержкой транзакций
type Persistence interface {
	Executor
	BeginTx(ctx context.Context) (Transaction, error)
	WithTransaction(ctx context.Context, fn func(ctx context.Context, tx Transaction) error) error
}
