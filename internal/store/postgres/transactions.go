package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/slh-community/slh-bot/internal/domain"
	"github.com/slh-community/slh-bot/internal/store"
)

const txColumns = `id, wallet_id, tx_type, amount::text, token_symbol, transfer_ref, description, created_at`

const queryLockWallet = `
	SELECT id, token_symbol, balance::text
	FROM wallets
	WHERE id = $1
	FOR UPDATE
`

const queryUpdateBalance = `
	UPDATE wallets
	SET balance = $1, updated_at = now()
	WHERE id = $2
`

const queryInsertTx = `
	INSERT INTO transactions (wallet_id, tx_type, amount, token_symbol, transfer_ref, description)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING ` + txColumns

// Credit increases a wallet balance and appends one log row, atomically.
func (s *Store) Credit(ctx context.Context, params store.CreditParams) (*domain.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin credit: %w", err)
	}
	defer rollback(tx, s.log)

	balance, symbol, err := lockWallet(ctx, tx, params.WalletID)
	if err != nil {
		return nil, err
	}

	newBalance := balance.Add(params.Amount)
	if _, err := tx.ExecContext(ctx, queryUpdateBalance, newBalance.String(), params.WalletID); err != nil {
		return nil, fmt.Errorf("update balance: %w", err)
	}

	record, err := insertTx(ctx, tx, params.WalletID, params.Type, params.Amount, symbol, params.TransferRef, params.Description)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit credit: %w", err)
	}

	return record, nil
}

// Transfer debits one wallet and credits another inside a single
// database transaction. Rows are locked in wallet-id order so two
// opposing transfers cannot deadlock, and the balance check happens
// under the lock so concurrent debits cannot overdraw.
func (s *Store) Transfer(ctx context.Context, params store.TransferParams) (*domain.Tx, *domain.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("begin transfer: %w", err)
	}
	defer rollback(tx, s.log)

	first, second := params.FromWalletID, params.ToWalletID
	if second < first {
		first, second = second, first
	}

	balances := make(map[int64]decimal.Decimal, 2)
	for _, id := range []int64{first, second} {
		balance, _, err := lockWallet(ctx, tx, id)
		if err != nil {
			return nil, nil, err
		}
		balances[id] = balance
	}

	fromBalance := balances[params.FromWalletID]
	if fromBalance.LessThan(params.Amount) {
		return nil, nil, store.ErrInsufficientBalance
	}

	newFrom := fromBalance.Sub(params.Amount)
	newTo := balances[params.ToWalletID].Add(params.Amount)

	if _, err := tx.ExecContext(ctx, queryUpdateBalance, newFrom.String(), params.FromWalletID); err != nil {
		return nil, nil, fmt.Errorf("debit wallet: %w", err)
	}
	if _, err := tx.ExecContext(ctx, queryUpdateBalance, newTo.String(), params.ToWalletID); err != nil {
		return nil, nil, fmt.Errorf("credit wallet: %w", err)
	}

	sendDesc := fmt.Sprintf("send to wallet %d", params.ToWalletID)
	recvDesc := fmt.Sprintf("receive from wallet %d", params.FromWalletID)

	sendTx, err := insertTx(ctx, tx, params.FromWalletID, domain.TxSend, params.Amount, params.TokenSymbol, params.TransferRef, sendDesc)
	if err != nil {
		return nil, nil, err
	}
	recvTx, err := insertTx(ctx, tx, params.ToWalletID, domain.TxReceive, params.Amount, params.TokenSymbol, params.TransferRef, recvDesc)
	if err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("commit transfer: %w", err)
	}

	return sendTx, recvTx, nil
}

// TransactionsByWallet returns the newest log rows for a wallet.
func (s *Store) TransactionsByWallet(ctx context.Context, walletID int64, limit int) ([]domain.Tx, error) {
	query := `
		SELECT ` + txColumns + `
		FROM transactions
		WHERE wallet_id = $1
		ORDER BY id DESC
		LIMIT $2
	`

	rows, err := s.db.QueryContext(ctx, query, walletID, limit)
	if err != nil {
		return nil, fmt.Errorf("select transactions: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			s.log.Warn("failed to close transaction rows", "error", cerr)
		}
	}()

	var txs []domain.Tx
	for rows.Next() {
		record, err := scanTx(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txs = append(txs, *record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transaction rows: %w", err)
	}

	return txs, nil
}

// SumTransactionsByWallet folds the whole log for one wallet into the
// balance it implies: send rows count negative, everything else
// positive.
func (s *Store) SumTransactionsByWallet(ctx context.Context, walletID int64) (decimal.Decimal, error) {
	const query = `
		SELECT COALESCE(SUM(CASE WHEN tx_type = 'send' THEN -amount ELSE amount END), 0)::text
		FROM transactions
		WHERE wallet_id = $1
	`

	var sumStr string
	if err := s.db.QueryRowContext(ctx, query, walletID).Scan(&sumStr); err != nil {
		return decimal.Zero, fmt.Errorf("sum transactions: %w", err)
	}

	return parseDecimal(sumStr, "transaction sum")
}

func lockWallet(ctx context.Context, tx *sql.Tx, walletID int64) (decimal.Decimal, string, error) {
	var (
		id         int64
		symbol     string
		balanceStr string
	)
	if err := tx.QueryRowContext(ctx, queryLockWallet, walletID).Scan(&id, &symbol, &balanceStr); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, "", store.ErrWalletNotFound
		}
		return decimal.Zero, "", fmt.Errorf("lock wallet %d: %w", walletID, err)
	}

	balance, err := parseDecimal(balanceStr, "balance")
	if err != nil {
		return decimal.Zero, "", err
	}

	return balance, symbol, nil
}

func insertTx(ctx context.Context, tx *sql.Tx, walletID int64, txType domain.TxType, amount decimal.Decimal, symbol, ref, desc string) (*domain.Tx, error) {
	record, err := scanTx(tx.QueryRowContext(ctx, queryInsertTx, walletID, string(txType), amount.String(), symbol, ref, desc))
	if err != nil {
		return nil, fmt.Errorf("insert %s transaction: %w", txType, err)
	}
	return record, nil
}

func scanTx(row rowScanner) (*domain.Tx, error) {
	var (
		record    domain.Tx
		amountStr string
	)
	if err := row.Scan(
		&record.ID,
		&record.WalletID,
		&record.Type,
		&amountStr,
		&record.TokenSymbol,
		&record.TransferRef,
		&record.Description,
		&record.CreatedAt,
	); err != nil {
		return nil, err
	}

	amount, err := parseDecimal(amountStr, "amount")
	if err != nil {
		return nil, err
	}
	record.Amount = amount

	return &record, nil
}
