package repositories

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// ErrStoreUnavailable маркирует транспортные сбои хранилища: их можно
// повторить вручную, в отличие от нарушений инвариантов.
var ErrStoreUnavailable = errors.New("ledger store is unavailable")

// SQLExecutor позволяет выполнять запросы как через пул, так и внутри
// открытой транзакции (*sql.DB и *sql.Tx удовлетворяют оба).
type SQLExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func checkAffectedRows(result sql.Result, notFoundError error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return notFoundError // Возвращаем переданную ошибку "не найдено"
	}
	return nil
}

// wrapStoreError переводит ошибки соединения (класс 08, оборванный
// коннект) в ErrStoreUnavailable, остальное отдаёт как есть.
func wrapStoreError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, driver.ErrBadConn) {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Class() == "08" {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return err
}
