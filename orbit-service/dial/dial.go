package dial

import (
	"context"
	"fmt"
	"math/big"

	"github.com/lmittmann/w3"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

// Clients bundles the typed eth client and the w3 contract-call client on top of one RPC connection.
type Clients struct {
	RPC *rpc.Client
	Eth *ethclient.Client
	W3  *w3.Client
}

// DialClients connects to url.
func DialClients(ctx context.Context, url string) (*Clients, error) {
	rpcClient, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", url, err)
	}
	return &Clients{
		RPC: rpcClient,
		Eth: ethclient.NewClient(rpcClient),
		W3:  w3.NewClient(rpcClient),
	}, nil
}

func (c *Clients) Close() {
	c.RPC.Close()
}

// ChainIDer is implemented by ethclient.Client.
type ChainIDer interface {
	ChainID(ctx context.Context) (*big.Int, error)
}

// CheckChainID returns an error if the client is connected to a chain other than expected.
func CheckChainID(ctx context.Context, client ChainIDer, expected uint64) error {
	id, err := client.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch chain ID: %w", err)
	}
	if !id.IsUint64() || id.Uint64() != expected {
		return fmt.Errorf("chain ID mismatch: expected %d, RPC reports %s", expected, id)
	}
	return nil
}
