// Package ledger implements the wallet ledger: per-wallet balances with
// an append-only transaction log behind them.
package ledger

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/slh-community/slh-bot/internal/domain"
	"github.com/slh-community/slh-bot/internal/store"
	"github.com/slh-community/slh-bot/pkg/metrics"
)

// Config carries the ledger's tunables.
type Config struct {
	// FaucetToken is the default token symbol for wallets and faucet drops.
	FaucetToken string
	// FaucetAmount is the fixed amount one faucet call credits.
	FaucetAmount decimal.Decimal
	// HistoryLimit caps the rows History returns when the caller passes 0.
	HistoryLimit int
}

// Service provides the balance-affecting operations over wallets.
type Service struct {
	store store.Store
	cfg   Config
	log   *slog.Logger
}

// NewService constructs a ledger Service.
func NewService(st store.Store, cfg Config, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	if cfg.FaucetToken == "" {
		cfg.FaucetToken = "SLH"
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = 20
	}

	return &Service{store: st, cfg: cfg, log: log}
}

// DefaultToken returns the token symbol used when a command names none.
func (s *Service) DefaultToken() string {
	return s.cfg.FaucetToken
}

// GetOrCreateWallet returns the user's wallet for the token symbol,
// creating it with a zero balance on first touch. An empty symbol means
// the configured default token. The operation always succeeds barring
// storage faults.
func (s *Service) GetOrCreateWallet(ctx context.Context, user *domain.User, tokenSymbol string) (*domain.Wallet, error) {
	if tokenSymbol == "" {
		tokenSymbol = s.cfg.FaucetToken
	}

	wallet, err := s.store.GetOrCreateWallet(ctx, user, tokenSymbol)
	if err != nil {
		return nil, fmt.Errorf("get or create wallet: %w", err)
	}

	return wallet, nil
}

// Deposit credits amount to the wallet and appends one "deposit" row.
// The balance change and the log row commit as one atomic unit.
func (s *Service) Deposit(ctx context.Context, wallet *domain.Wallet, amount decimal.Decimal) (*domain.Wallet, *domain.Tx, error) {
	return s.credit(ctx, wallet, amount, domain.TxDeposit, "demo deposit")
}

// Faucet credits the fixed configured amount and appends one "faucet"
// row. The amount is not caller-controlled.
func (s *Service) Faucet(ctx context.Context, wallet *domain.Wallet) (*domain.Wallet, *domain.Tx, error) {
	return s.credit(ctx, wallet, s.cfg.FaucetAmount, domain.TxFaucet, "faucet airdrop")
}

func (s *Service) credit(ctx context.Context, wallet *domain.Wallet, amount decimal.Decimal, txType domain.TxType, desc string) (*domain.Wallet, *domain.Tx, error) {
	op := string(txType)

	if !amount.IsPositive() {
		metrics.RecordValidationFailure(op, "invalid_amount")
		return nil, nil, ErrInvalidAmount
	}

	record, err := s.store.Credit(ctx, store.CreditParams{
		WalletID:    wallet.ID,
		Amount:      amount,
		Type:        txType,
		TransferRef: uuid.NewString(),
		Description: desc,
	})
	if err != nil {
		metrics.RecordLedgerOp(op, metrics.StatusError)
		s.log.Error("credit failed",
			slog.Int64("wallet_id", wallet.ID),
			slog.String("type", op),
			slog.Any("error", err),
		)
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	updated, err := s.store.GetWallet(ctx, wallet.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("reload wallet: %w", err)
	}

	metrics.RecordLedgerOp(op, metrics.StatusOK)
	s.log.Info("wallet credited",
		slog.Int64("wallet_id", wallet.ID),
		slog.String("type", op),
		slog.String("amount", amount.String()),
		slog.String("balance", updated.Balance.String()),
	)

	return updated, record, nil
}

// TransferResult bundles everything a transfer produced: both wallets
// refreshed and the paired send/receive rows.
type TransferResult struct {
	From    *domain.Wallet
	To      *domain.Wallet
	Send    *domain.Tx
	Receive *domain.Tx
}

// Transfer moves amount from one wallet to another. Checks run in
// order: positive amount, distinct wallets, matching token symbols,
// sufficient balance — the last under the backend's row lock so a
// concurrent debit cannot slip an overdraft through. On success exactly
// two log rows exist, sharing one transfer ref, and both balance
// changes committed together.
func (s *Service) Transfer(ctx context.Context, from, to *domain.Wallet, amount decimal.Decimal) (*TransferResult, error) {
	const op = "transfer"

	switch {
	case !amount.IsPositive():
		metrics.RecordValidationFailure(op, "invalid_amount")
		return nil, ErrInvalidAmount
	case from.ID == to.ID:
		metrics.RecordValidationFailure(op, "self_transfer")
		return nil, ErrSelfTransfer
	case from.TokenSymbol != to.TokenSymbol:
		metrics.RecordValidationFailure(op, "currency_mismatch")
		return nil, ErrCurrencyMismatch
	}

	ref := uuid.NewString()
	sendTx, recvTx, err := s.store.Transfer(ctx, store.TransferParams{
		FromWalletID: from.ID,
		ToWalletID:   to.ID,
		Amount:       amount,
		TokenSymbol:  from.TokenSymbol,
		TransferRef:  ref,
	})
	if err != nil {
		if IsValidation(err) {
			metrics.RecordValidationFailure(op, "insufficient_balance")
			return nil, err
		}
		metrics.RecordLedgerOp(op, metrics.StatusError)
		s.log.Error("transfer failed",
			slog.Int64("from_wallet_id", from.ID),
			slog.Int64("to_wallet_id", to.ID),
			slog.String("amount", amount.String()),
			slog.Any("error", err),
		)
		return nil, fmt.Errorf("transfer: %w", err)
	}

	fromUpdated, err := s.store.GetWallet(ctx, from.ID)
	if err != nil {
		return nil, fmt.Errorf("reload source wallet: %w", err)
	}
	toUpdated, err := s.store.GetWallet(ctx, to.ID)
	if err != nil {
		return nil, fmt.Errorf("reload destination wallet: %w", err)
	}

	metrics.RecordLedgerOp(op, metrics.StatusOK)
	s.log.Info("transfer completed",
		slog.Int64("from_wallet_id", from.ID),
		slog.Int64("to_wallet_id", to.ID),
		slog.String("amount", amount.String()),
		slog.String("transfer_ref", ref),
	)

	return &TransferResult{
		From:    fromUpdated,
		To:      toUpdated,
		Send:    sendTx,
		Receive: recvTx,
	}, nil
}

// History returns the wallet's newest transactions. A non-positive
// limit falls back to the configured default.
func (s *Service) History(ctx context.Context, wallet *domain.Wallet, limit int) ([]domain.Tx, error) {
	if limit <= 0 {
		limit = s.cfg.HistoryLimit
	}

	txs, err := s.store.TransactionsByWallet(ctx, wallet.ID, limit)
	if err != nil {
		return nil, fmt.Errorf("transaction history: %w", err)
	}

	return txs, nil
}

// Reconcile recomputes the wallet balance from its transaction log and
// compares exactly. A mismatch is an infrastructure fault, never a
// validation outcome: valid operations cannot produce one.
func (s *Service) Reconcile(ctx context.Context, walletID int64) error {
	wallet, err := s.store.GetWallet(ctx, walletID)
	if err != nil {
		return fmt.Errorf("load wallet for reconcile: %w", err)
	}

	sum, err := s.store.SumTransactionsByWallet(ctx, walletID)
	if err != nil {
		return fmt.Errorf("sum transactions for reconcile: %w", err)
	}

	if !wallet.Balance.Equal(sum) {
		metrics.RecordReconcileMismatch()
		s.log.Error("balance reconciliation mismatch",
			slog.Int64("wallet_id", walletID),
			slog.String("balance", wallet.Balance.String()),
			slog.String("log_sum", sum.String()),
			slog.String("difference", wallet.Balance.Sub(sum).String()),
		)
		return fmt.Errorf("wallet %d balance %s disagrees with transaction log sum %s",
			walletID, wallet.Balance, sum)
	}

	return nil
}
