package db

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-bom/internal/platform/httpx"
)

func TestIsCode(t *testing.T) {
	err := fmt.Errorf("insert: %w", &pgconn.PgError{Code: CodeUniqueViolation, ConstraintName: "items_sku_key"})

	require.True(t, IsCode(err, CodeUniqueViolation))
	require.False(t, IsCode(err, CodeForeignKeyViolation))
	require.Equal(t, "items_sku_key", ConstraintName(err))
	require.False(t, IsCode(errors.New("plain"), CodeUniqueViolation))
}

func TestClassify(t *testing.T) {
	require.NoError(t, Classify(nil))
	require.ErrorIs(t, Classify(context.DeadlineExceeded), httpx.ErrUnavailable)

	plain := errors.New("syntax error")
	require.Equal(t, plain, Classify(plain))
}
