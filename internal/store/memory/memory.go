// Package memory implements store.Store with in-process maps.
//
// It backs tests and storage.driver=memory demo runs. One mutex
// serialises every operation, which trivially gives the same
// atomicity the PostgreSQL backend gets from its transactions.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/slh-community/slh-bot/internal/domain"
	"github.com/slh-community/slh-bot/internal/store"
)

// Store is the in-memory ledger store.
type Store struct {
	mu sync.Mutex

	users   map[int64]*domain.User
	wallets map[int64]*domain.Wallet
	txs     []domain.Tx
	orders  []domain.Order

	nextUserID   int64
	nextWalletID int64
	nextTxID     int64
	nextOrderID  int64
}

var _ store.Store = (*Store)(nil)

// New returns an empty in-memory store.
func New() *Store {
	return &Store{
		users:        make(map[int64]*domain.User),
		wallets:      make(map[int64]*domain.Wallet),
		nextUserID:   1,
		nextWalletID: 1,
		nextTxID:     1,
		nextOrderID:  1,
	}
}

// GetOrCreateUser upserts by chat id and refreshes profile fields.
func (s *Store) GetOrCreateUser(_ context.Context, identity domain.Identity) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	username := strings.TrimPrefix(identity.Username, "@")

	for _, user := range s.users {
		if user.ChatID == identity.ChatID {
			user.Username = username
			user.FirstName = identity.FirstName
			user.LastName = identity.LastName
			clone := *user
			return &clone, nil
		}
	}

	user := &domain.User{
		ID:        s.nextUserID,
		ChatID:    identity.ChatID,
		Username:  username,
		FirstName: identity.FirstName,
		LastName:  identity.LastName,
		CreatedAt: time.Now().UTC(),
	}
	s.nextUserID++
	s.users[user.ID] = user

	clone := *user
	return &clone, nil
}

// GetUserByChatID fetches a user by external chat id.
func (s *Store) GetUserByChatID(_ context.Context, chatID int64) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if user.ChatID == chatID {
			clone := *user
			return &clone, nil
		}
	}

	return nil, store.ErrUserNotFound
}

// GetUserByUsername fetches a user by username, @ optional.
func (s *Store) GetUserByUsername(_ context.Context, username string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	clean := strings.TrimPrefix(username, "@")
	for _, user := range s.users {
		if user.Username == clean {
			clone := *user
			return &clone, nil
		}
	}

	return nil, store.ErrUserNotFound
}

// GetOrCreateWallet lazily creates the (user, token) wallet with a zero
// balance and the deterministic address.
func (s *Store) GetOrCreateWallet(_ context.Context, user *domain.User, tokenSymbol string) (*domain.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	symbol := strings.ToUpper(tokenSymbol)
	for _, wallet := range s.wallets {
		if wallet.UserID == user.ID && wallet.TokenSymbol == symbol {
			clone := *wallet
			return &clone, nil
		}
	}

	now := time.Now().UTC()
	wallet := &domain.Wallet{
		ID:          s.nextWalletID,
		UserID:      user.ID,
		TokenSymbol: symbol,
		Address:     domain.WalletAddress(user.ChatID, symbol),
		Balance:     decimal.Zero,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.nextWalletID++
	s.wallets[wallet.ID] = wallet

	clone := *wallet
	return &clone, nil
}

// GetWallet fetches a wallet by internal id.
func (s *Store) GetWallet(_ context.Context, walletID int64) (*domain.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wallet, ok := s.wallets[walletID]
	if !ok {
		return nil, store.ErrWalletNotFound
	}

	clone := *wallet
	return &clone, nil
}

// ListWallets returns every wallet, oldest first.
func (s *Store) ListWallets(_ context.Context) ([]domain.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wallets := make([]domain.Wallet, 0, len(s.wallets))
	for _, wallet := range s.wallets {
		wallets = append(wallets, *wallet)
	}
	sort.Slice(wallets, func(i, j int) bool { return wallets[i].ID < wallets[j].ID })

	return wallets, nil
}

// Credit increases a wallet balance and appends one log row.
func (s *Store) Credit(_ context.Context, params store.CreditParams) (*domain.Tx, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wallet, ok := s.wallets[params.WalletID]
	if !ok {
		return nil, store.ErrWalletNotFound
	}

	wallet.Balance = wallet.Balance.Add(params.Amount)
	wallet.UpdatedAt = time.Now().UTC()

	record := s.appendTx(wallet.ID, params.Type, params.Amount, wallet.TokenSymbol, params.TransferRef, params.Description)
	return record, nil
}

// Transfer moves an amount between two wallets, recording the send and
// receive legs together or not at all.
func (s *Store) Transfer(_ context.Context, params store.TransferParams) (*domain.Tx, *domain.Tx, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	from, ok := s.wallets[params.FromWalletID]
	if !ok {
		return nil, nil, store.ErrWalletNotFound
	}
	to, ok := s.wallets[params.ToWalletID]
	if !ok {
		return nil, nil, store.ErrWalletNotFound
	}

	if from.Balance.LessThan(params.Amount) {
		return nil, nil, store.ErrInsufficientBalance
	}

	now := time.Now().UTC()
	from.Balance = from.Balance.Sub(params.Amount)
	from.UpdatedAt = now
	to.Balance = to.Balance.Add(params.Amount)
	to.UpdatedAt = now

	sendTx := s.appendTx(from.ID, domain.TxSend, params.Amount, params.TokenSymbol, params.TransferRef, "send to wallet "+to.Address)
	recvTx := s.appendTx(to.ID, domain.TxReceive, params.Amount, params.TokenSymbol, params.TransferRef, "receive from wallet "+from.Address)

	return sendTx, recvTx, nil
}

// TransactionsByWallet returns the newest log rows for a wallet.
func (s *Store) TransactionsByWallet(_ context.Context, walletID int64, limit int) ([]domain.Tx, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var txs []domain.Tx
	for i := len(s.txs) - 1; i >= 0 && len(txs) < limit; i-- {
		if s.txs[i].WalletID == walletID {
			txs = append(txs, s.txs[i])
		}
	}

	return txs, nil
}

// SumTransactionsByWallet folds the log into the balance it implies.
func (s *Store) SumTransactionsByWallet(_ context.Context, walletID int64) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sum := decimal.Zero
	for i := range s.txs {
		if s.txs[i].WalletID == walletID {
			sum = sum.Add(s.txs[i].Signed())
		}
	}

	return sum, nil
}

// CreateOrder records a new open order.
func (s *Store) CreateOrder(_ context.Context, params store.OrderParams) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order := domain.Order{
		ID:          s.nextOrderID,
		UserID:      params.UserID,
		Side:        params.Side,
		TokenSymbol: params.TokenSymbol,
		Amount:      params.Amount,
		Price:       params.Price,
		Open:        true,
		CreatedAt:   time.Now().UTC(),
	}
	s.nextOrderID++
	s.orders = append(s.orders, order)

	clone := order
	return &clone, nil
}

// ListOpenOrders returns open orders, most recent first.
func (s *Store) ListOpenOrders(_ context.Context, limit int) ([]domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var orders []domain.Order
	for i := len(s.orders) - 1; i >= 0 && len(orders) < limit; i-- {
		if s.orders[i].Open {
			orders = append(orders, s.orders[i])
		}
	}

	return orders, nil
}

// Close is a no-op for the in-memory backend.
func (s *Store) Close() error {
	return nil
}

// SetBalance overwrites a wallet balance without touching the log.
// It exists so tests can stage reconciliation mismatches.
func (s *Store) SetBalance(walletID int64, balance decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if wallet, ok := s.wallets[walletID]; ok {
		wallet.Balance = balance
	}
}

func (s *Store) appendTx(walletID int64, txType domain.TxType, amount decimal.Decimal, symbol, ref, desc string) *domain.Tx {
	record := domain.Tx{
		ID:          s.nextTxID,
		WalletID:    walletID,
		Type:        txType,
		Amount:      amount,
		TokenSymbol: symbol,
		TransferRef: ref,
		Description: desc,
		CreatedAt:   time.Now().UTC(),
	}
	s.nextTxID++
	s.txs = append(s.txs, record)

	clone := record
	return &clone
}
