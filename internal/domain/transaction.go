package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TxType classifies a balance-affecting event.
type TxType string

const (
	TxDeposit TxType = "deposit"
	TxFaucet  TxType = "faucet"
	TxSend    TxType = "send"
	TxReceive TxType = "receive"
)

// Tx is one immutable row in the append-only transaction log. Amounts
// are always positive; the type says which direction the balance moved.
// The two legs of a transfer (send + receive) share a TransferRef.
type Tx struct {
	ID          int64
	WalletID    int64
	Type        TxType
	Amount      decimal.Decimal
	TokenSymbol string
	TransferRef string
	Description string
	CreatedAt   time.Time
}

// Signed returns the amount with the sign the balance actually moved:
// negative for send, positive for everything else.
func (t *Tx) Signed() decimal.Decimal {
	if t.Type == TxSend {
		return t.Amount.Neg()
	}
	return t.Amount
}
