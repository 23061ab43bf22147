package pipeline

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/orbit-stack/orbit-stack/orbit-service/eth"
	"github.com/orbit-stack/orbit-stack/orbit-service/txmgr"
)

func FundBatchPoster(ctx context.Context, env *Env) error {
	return fundAccount(ctx, env, "batch-poster", env.Config.BatchPoster)
}

func FundStaker(ctx context.Context, env *Env) error {
	return fundAccount(ctx, env, "staker", env.Config.Staker)
}

// fundAccount sends the configured funding amount from the deployer to an account on the parent chain.
func fundAccount(ctx context.Context, env *Env, role string, to common.Address) error {
	amount := *env.Config.FundingAmount
	lgr := env.Logger.New("stage", "fund-"+role, "to", to)

	from := env.ParentTx.From()
	balance, err := env.ParentClient.BalanceAt(ctx, from, nil)
	if err != nil {
		return fmt.Errorf("failed to get deployer balance: %w", err)
	}
	if eth.WeiBig(balance).Lt(amount) {
		return fmt.Errorf("deployer %s has %s on the parent chain, funding the %s needs %s", from, eth.WeiBig(balance), role, amount)
	}

	lgr.Info("Funding account", "amount", amount)
	receipt, err := env.ParentTx.Send(ctx, txmgr.TxCandidate{
		To:    &to,
		Value: amount.ToBig(),
	})
	if err != nil {
		return fmt.Errorf("failed to fund %s: %w", role, err)
	}
	lgr.Info("Funds sent", "tx", receipt.TxHash, "block", receipt.BlockNumber)
	return nil
}
