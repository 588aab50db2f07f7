package pg

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bumpBalance = `UPDATE profiles SET commission_balance = commission_balance + $1 WHERE id = $2`

func TestTxManager_Begin(t *testing.T) {
	tests := []struct {
		name      string
		mockSetup func(mock pgxmock.PgxPoolIface)
		fn        func(db *DB, m *TxManager) TransactionalFn
		expectErr bool
	}{
		{
			name: "Commits when fn succeeds",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
				mock.ExpectExec(regexp.QuoteMeta(bumpBalance)).
					WithArgs("3.00", "a").
					WillReturnResult(pgxmock.NewResult("UPDATE", 1))
				mock.ExpectCommit()
			},
			fn: func(db *DB, _ *TxManager) TransactionalFn {
				return func(ctx context.Context) error {
					_, err := db.Exec(ctx, bumpBalance, "3.00", "a")
					return err
				}
			},
		},
		{
			name: "Rolls back when fn fails",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
				mock.ExpectExec(regexp.QuoteMeta(bumpBalance)).
					WithArgs("3.00", "a").
					WillReturnError(errors.New("connection reset"))
				mock.ExpectRollback()
			},
			fn: func(db *DB, _ *TxManager) TransactionalFn {
				return func(ctx context.Context) error {
					_, err := db.Exec(ctx, bumpBalance, "3.00", "a")
					return err
				}
			},
			expectErr: true,
		},
		{
			name: "Nested call joins the outer transaction",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
				mock.ExpectExec(regexp.QuoteMeta(bumpBalance)).
					WithArgs("0.40", "b").
					WillReturnResult(pgxmock.NewResult("UPDATE", 1))
				mock.ExpectCommit()
			},
			fn: func(db *DB, m *TxManager) TransactionalFn {
				return func(ctx context.Context) error {
					return m.Begin(ctx, func(ctx context.Context) error {
						_, err := db.Exec(ctx, bumpBalance, "0.40", "b")
						return err
					})
				}
			},
		},
		{
			name: "Begin failure is returned",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.ReadCommitted}).
					WillReturnError(errors.New("pool closed"))
			},
			fn: func(_ *DB, _ *TxManager) TransactionalFn {
				return func(ctx context.Context) error { return nil }
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			db := New(mock)
			m := NewTXManager(mock)
			tt.mockSetup(mock)

			err = m.Begin(context.Background(), tt.fn(db, m))
			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestDB_UsesPoolOutsideTransaction(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(regexp.QuoteMeta(bumpBalance)).
		WithArgs("1.00", "c").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	tag, err := New(mock).Exec(context.Background(), bumpBalance, "1.00", "c")
	require.NoError(t, err)
	assert.Equal(t, int64(1), tag.RowsAffected())
	assert.NoError(t, mock.ExpectationsWereMet())
}
