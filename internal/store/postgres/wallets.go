package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/slh-community/slh-bot/internal/domain"
	"github.com/slh-community/slh-bot/internal/store"
)

const walletColumns = `id, user_id, token_symbol, address, balance::text, created_at, updated_at`

// GetOrCreateWallet returns the wallet for (user, token), creating it
// with a zero balance and the deterministic address on first touch. The
// no-op conflict update makes concurrent first touches converge on the
// same row.
func (s *Store) GetOrCreateWallet(ctx context.Context, user *domain.User, tokenSymbol string) (*domain.Wallet, error) {
	query := `
		INSERT INTO wallets (user_id, token_symbol, address)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, token_symbol) DO UPDATE SET token_symbol = EXCLUDED.token_symbol
		RETURNING ` + walletColumns

	symbol := strings.ToUpper(tokenSymbol)
	address := domain.WalletAddress(user.ChatID, symbol)

	wallet, err := scanWallet(s.db.QueryRowContext(ctx, query, user.ID, symbol, address))
	if err != nil {
		s.log.Error("failed to upsert wallet", "user_id", user.ID, "token", symbol, "error", err)
		return nil, fmt.Errorf("upsert wallet: %w", err)
	}

	return wallet, nil
}

// GetWallet fetches a wallet by its internal id.
func (s *Store) GetWallet(ctx context.Context, walletID int64) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE id = $1`

	wallet, err := scanWallet(s.db.QueryRowContext(ctx, query, walletID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrWalletNotFound
		}
		return nil, fmt.Errorf("select wallet: %w", err)
	}

	return wallet, nil
}

// ListWallets returns every wallet, oldest first. Used by the
// reconciler sweep.
func (s *Store) ListWallets(ctx context.Context) ([]domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list wallets: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			s.log.Warn("failed to close wallet rows", "error", cerr)
		}
	}()

	var wallets []domain.Wallet
	for rows.Next() {
		wallet, err := scanWallet(rows)
		if err != nil {
			return nil, fmt.Errorf("scan wallet: %w", err)
		}
		wallets = append(wallets, *wallet)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wallet rows: %w", err)
	}

	return wallets, nil
}

func scanWallet(row rowScanner) (*domain.Wallet, error) {
	var (
		wallet     domain.Wallet
		balanceStr string
	)
	if err := row.Scan(
		&wallet.ID,
		&wallet.UserID,
		&wallet.TokenSymbol,
		&wallet.Address,
		&balanceStr,
		&wallet.CreatedAt,
		&wallet.UpdatedAt,
	); err != nil {
		return nil, err
	}

	balance, err := parseDecimal(balanceStr, "balance")
	if err != nil {
		return nil, err
	}
	wallet.Balance = balance

	return &wallet, nil
}
