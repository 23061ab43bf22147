package pipeline

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// TransferOwnership makes the child chain's upgrade executor a chain owner and removes the deployer.
// Both changes are skipped when already in place, so a partially applied transfer completes on rerun.
func TransferOwnership(ctx context.Context, env *Env) error {
	cfg := env.Config
	lgr := env.Logger.New("stage", "transfer-ownership")

	executor := cfg.UpgradeExecutor
	if executor == (common.Address{}) {
		d, err := env.ParentReader.TokenBridgeDeployment(ctx, cfg.TokenBridgeCreator, cfg.Inbox)
		if err != nil {
			return fmt.Errorf("failed to read token bridge deployment: %w", err)
		}
		executor = d.Child.UpgradeExecutor
	}
	if executor == (common.Address{}) {
		return fmt.Errorf("no upgrade executor known for the orbit chain, set upgradeExecutor in the setup config")
	}
	lgr = lgr.New("executor", executor)

	code, err := env.ChildClient.CodeAt(ctx, executor, nil)
	if err != nil {
		return fmt.Errorf("failed to get code of upgrade executor: %w", err)
	}
	if len(code) == 0 {
		return fmt.Errorf("upgrade executor %s has no code on the orbit chain", executor)
	}

	isOwner, err := env.ChildReader.IsChainOwner(ctx, executor)
	if err != nil {
		return fmt.Errorf("failed to check chain owner %s: %w", executor, err)
	}
	if isOwner {
		lgr.Info("Upgrade executor is already a chain owner")
	} else if err := ownerCall(ctx, env, lgr, "new chain owner", addChainOwnerFunc, executor); err != nil {
		return err
	}

	deployer := env.ChildTx.From()
	stillOwner, err := env.ChildReader.IsChainOwner(ctx, deployer)
	if err != nil {
		return fmt.Errorf("failed to check chain owner %s: %w", deployer, err)
	}
	if stillOwner {
		if err := ownerCall(ctx, env, lgr, "removed chain owner", removeChainOwnerFunc, deployer); err != nil {
			return err
		}
	} else {
		lgr.Info("Deployer is no longer a chain owner", "deployer", deployer)
	}
	lgr.Info("Chain ownership transferred to the upgrade executor")
	return nil
}
