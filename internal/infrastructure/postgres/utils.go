package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/Rentabodega-api/internal/domain"
)

// Códigos SQLSTATE que el libro traduce a errores de dominio.
const (
	codeUniqueViolation      = "23505"
	codeCheckViolation       = "23514"
	codeForeignKeyViolation  = "23503"
	codeInvalidText          = "22P02"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	if code := pgCode(err); code != "" {
		return code == codeUniqueViolation
	}
	return strings.Contains(err.Error(), codeUniqueViolation)
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// isInvalidID un id que no es UUID nunca puede existir; se trata como no encontrado.
func isInvalidID(err error) bool {
	return pgCode(err) == codeInvalidText
}

// translate convierte errores de PostgreSQL en sentinels de dominio, envolviendo con op.
func translate(op string, err error) error {
	if err == nil {
		return nil
	}
	switch pgCode(err) {
	case codeSerializationFailure, codeDeadlockDetected, codeLockNotAvailable:
		return fmt.Errorf("%s: %w", op, domain.ErrConcurrencyConflict)
	case codeUniqueViolation:
		return fmt.Errorf("%s: %w", op, domain.ErrDuplicate)
	case codeCheckViolation:
		return fmt.Errorf("%s: %w: %s", op, domain.ErrInvalidInput, constraintName(err))
	case codeForeignKeyViolation:
		return fmt.Errorf("%s: %w: %s", op, domain.ErrNotFound, constraintName(err))
	case codeInvalidText:
		return fmt.Errorf("%s: %w", op, domain.ErrInvalidInput)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func constraintName(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}
