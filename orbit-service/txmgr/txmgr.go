package txmgr

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/log"

	"github.com/orbit-stack/orbit-stack/orbit-service/clock"
	"github.com/orbit-stack/orbit-stack/orbit-service/tasks"
)

// ErrReverted is returned when a transaction was included but its execution failed.
var ErrReverted = errors.New("transaction reverted")

// Client is the subset of ethclient.Client needed to build, send and confirm transactions.
type Client interface {
	ChainID(ctx context.Context) (*big.Int, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasTipCap(ctx context.Context) (*big.Int, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// TxCandidate is a transaction to be sent. GasLimit 0 means estimate.
type TxCandidate struct {
	To       *common.Address
	TxData   []byte
	Value    *big.Int
	GasLimit uint64
}

type Config struct {
	// ReceiptQueryInterval is the delay between receipt lookups while waiting for inclusion.
	ReceiptQueryInterval time.Duration
	// GasLimitBufferPercent is added on top of the estimated gas limit.
	GasLimitBufferPercent uint64
	Clock                 clock.Clock
}

func DefaultConfig() Config {
	return Config{
		ReceiptQueryInterval:  2 * time.Second,
		GasLimitBufferPercent: 20,
		Clock:                 clock.SystemClock,
	}
}

// TxManager sends transactions one at a time and blocks until each is included.
type TxManager interface {
	Send(ctx context.Context, candidate TxCandidate) (*types.Receipt, error)
	From() common.Address
	ChainID() *big.Int
}

type SimpleTxManager struct {
	name    string
	log     log.Logger
	cfg     Config
	client  Client
	key     *ecdsa.PrivateKey
	from    common.Address
	chainID *big.Int
	signer  types.Signer
	waiter  *tasks.Waiter
}

var _ TxManager = (*SimpleTxManager)(nil)

func NewSimpleTxManager(ctx context.Context, name string, l log.Logger, client Client, key *ecdsa.PrivateKey, cfg Config) (*SimpleTxManager, error) {
	if key == nil {
		return nil, errors.New("private key is required")
	}
	chainID, err := client.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch chain ID: %w", err)
	}
	cl := cfg.Clock
	if cl == nil {
		cl = clock.SystemClock
	}
	return &SimpleTxManager{
		name:    name,
		log:     l.New("txmgr", name),
		cfg:     cfg,
		client:  client,
		key:     key,
		from:    crypto.PubkeyToAddress(key.PublicKey),
		chainID: chainID,
		signer:  types.LatestSignerForChainID(chainID),
		waiter:  tasks.NewWaiter(cl, cfg.ReceiptQueryInterval),
	}, nil
}

func (m *SimpleTxManager) From() common.Address {
	return m.from
}

func (m *SimpleTxManager) ChainID() *big.Int {
	return new(big.Int).Set(m.chainID)
}

// Send signs and publishes the candidate, then waits for a receipt.
// A receipt with failed status is returned together with ErrReverted.
func (m *SimpleTxManager) Send(ctx context.Context, candidate TxCandidate) (*types.Receipt, error) {
	tx, err := m.craftTx(ctx, candidate)
	if err != nil {
		return nil, fmt.Errorf("failed to create tx: %w", err)
	}
	lgr := m.log.New("tx", tx.Hash(), "nonce", tx.Nonce())
	if err := m.client.SendTransaction(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to send tx: %w", err)
	}
	lgr.Info("Transaction sent", "to", candidate.To, "gas", tx.Gas())

	var receipt *types.Receipt
	err = m.waiter.WaitUntil(ctx, func(ctx context.Context) (bool, error) {
		r, err := m.client.TransactionReceipt(ctx, tx.Hash())
		if errors.Is(err, ethereum.NotFound) {
			return false, nil
		} else if err != nil {
			return false, fmt.Errorf("failed to fetch receipt: %w", err)
		}
		receipt = r
		return true, nil
	}, func(misses int) {
		lgr.Debug("Transaction not yet included", "polls", misses)
	})
	if err != nil {
		return nil, fmt.Errorf("failed waiting for tx %s: %w", tx.Hash(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		lgr.Error("Transaction reverted", "block", receipt.BlockNumber)
		return receipt, fmt.Errorf("tx %s: %w", tx.Hash(), ErrReverted)
	}
	lgr.Info("Transaction mined", "block", receipt.BlockNumber, "gasUsed", receipt.GasUsed)
	return receipt, nil
}

func (m *SimpleTxManager) craftTx(ctx context.Context, candidate TxCandidate) (*types.Transaction, error) {
	nonce, err := m.client.PendingNonceAt(ctx, m.from)
	if err != nil {
		return nil, fmt.Errorf("failed to get nonce: %w", err)
	}
	tip, err := m.client.SuggestGasTipCap(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get gas tip cap: %w", err)
	}
	head, err := m.client.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get head header: %w", err)
	}
	feeCap := new(big.Int).Set(tip)
	if head.BaseFee != nil {
		feeCap.Add(feeCap, new(big.Int).Mul(head.BaseFee, big.NewInt(2)))
	}
	value := candidate.Value
	if value == nil {
		value = new(big.Int)
	}

	gas := candidate.GasLimit
	if gas == 0 {
		estimated, err := m.client.EstimateGas(ctx, ethereum.CallMsg{
			From:      m.from,
			To:        candidate.To,
			GasTipCap: tip,
			GasFeeCap: feeCap,
			Value:     value,
			Data:      candidate.TxData,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to estimate gas: %w", err)
		}
		gas = estimated + estimated*m.cfg.GasLimitBufferPercent/100
	}

	return types.SignNewTx(m.key, m.signer, &types.DynamicFeeTx{
		ChainID:   m.chainID,
		Nonce:     nonce,
		GasTipCap: tip,
		GasFeeCap: feeCap,
		Gas:       gas,
		To:        candidate.To,
		Value:     value,
		Data:      candidate.TxData,
	})
}
