package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Rentabodega-api/internal/domain"
)

func TestTranslate_CodigosSQLState(t *testing.T) {
	cases := map[string]error{
		codeSerializationFailure: domain.ErrConcurrencyConflict,
		codeDeadlockDetected:     domain.ErrConcurrencyConflict,
		codeLockNotAvailable:     domain.ErrConcurrencyConflict,
		codeUniqueViolation:      domain.ErrDuplicate,
		codeCheckViolation:       domain.ErrInvalidInput,
		codeForeignKeyViolation:  domain.ErrNotFound,
	}
	for code, want := range cases {
		t.Run(code, func(t *testing.T) {
			err := fmt.Errorf("wrap: %w", &pgconn.PgError{Code: code})
			assert.ErrorIs(t, translate("op", err), want)
		})
	}
	assert.NoError(t, translate("op", nil))

	plain := errors.New("conexión cerrada")
	assert.ErrorIs(t, translate("op", plain), plain)
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
}

func TestMigrateURL(t *testing.T) {
	assert.Equal(t, "pgx5://u:p@h:5432/db?sslmode=disable", migrateURL("postgres://u:p@h:5432/db?sslmode=disable"))
	assert.Equal(t, "pgx5://u@h/db", migrateURL("postgresql://u@h/db"))
	assert.Equal(t, "pgx5://x", migrateURL("pgx5://x"))
}
