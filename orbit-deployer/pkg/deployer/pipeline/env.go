package pipeline

import (
	"context"
	"io"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/spf13/afero"

	"github.com/orbit-stack/orbit-stack/orbit-deployer/pkg/deployer/state"
	"github.com/orbit-stack/orbit-stack/orbit-service/tasks"
	"github.com/orbit-stack/orbit-stack/orbit-service/txmgr"
)

// ChainClient is the part of ethclient.Client the steps read from.
type ChainClient interface {
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	CodeAt(ctx context.Context, account common.Address, blockNumber *big.Int) ([]byte, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
}

// Env carries everything a stage needs. Parent* fields talk to the parent chain the
// rollup settles to, Child* fields to the Orbit chain itself.
type Env struct {
	Logger log.Logger
	Config *state.SetupConfig
	Fs     afero.Fs
	// Out receives progress display while waiting.
	Out io.Writer

	ParentClient ChainClient
	ChildClient  ChainClient
	ParentReader Reader
	ChildReader  Reader
	ParentTx     txmgr.TxManager
	ChildTx      txmgr.TxManager

	// Waiter polls for cross-chain effects: deposits landing and retryables executing.
	Waiter *tasks.Waiter
}

type Stage func(ctx context.Context, env *Env) error
