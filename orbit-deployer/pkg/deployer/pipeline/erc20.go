package pipeline

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"

	"github.com/orbit-stack/orbit-stack/orbit-service/eth"
	"github.com/orbit-stack/orbit-stack/orbit-service/txmgr"
)

// ensureAllowance approves spender for amount of token on the parent chain,
// unless the deployer has already granted at least that much.
func ensureAllowance(ctx context.Context, env *Env, lgr log.Logger, token, spender common.Address, amount eth.ETH) error {
	owner := env.ParentTx.From()
	allowance, err := env.ParentReader.Allowance(ctx, token, owner, spender)
	if err != nil {
		return fmt.Errorf("failed to read allowance of %s for %s: %w", token, spender, err)
	}
	if !eth.WeiBig(allowance).Lt(amount) {
		lgr.Debug("Allowance already sufficient", "token", token, "spender", spender, "allowance", allowance)
		return nil
	}
	data, err := approveFunc.EncodeArgs(spender, amount.ToBig())
	if err != nil {
		return fmt.Errorf("failed to encode approve: %w", err)
	}
	lgr.Info("Approving token spend", "token", token, "spender", spender, "amount", amount.EtherString())
	receipt, err := env.ParentTx.Send(ctx, txmgr.TxCandidate{
		To:     &token,
		TxData: data,
	})
	if err != nil {
		return fmt.Errorf("failed to approve %s for %s: %w", spender, token, err)
	}
	lgr.Info("Approval sent", "tx", receipt.TxHash, "block", receipt.BlockNumber)
	return nil
}
