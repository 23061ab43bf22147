package pipeline

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/log"
	"github.com/lmittmann/w3"

	"github.com/orbit-stack/orbit-stack/orbit-service/txmgr"
)

// ConfigureChain sets the fee parameters of the Orbit chain through the ArbOwner precompile.
// The parent chain's current gas price becomes the initial parent price per unit.
func ConfigureChain(ctx context.Context, env *Env) error {
	cfg := env.Config
	lgr := env.Logger.New("stage", "configure-chain")

	parentGasPrice, err := env.ParentClient.SuggestGasPrice(ctx)
	if err != nil {
		return fmt.Errorf("failed to get parent chain gas price: %w", err)
	}

	if cfg.MinL2BaseFee != 0 {
		if err := ownerCall(ctx, env, lgr, "minimum base fee", setMinimumL2BaseFeeFunc, new(big.Int).SetUint64(cfg.MinL2BaseFee)); err != nil {
			return err
		}
	} else {
		lgr.Info("No minimum base fee configured, keeping the chain default")
	}
	if err := ownerCall(ctx, env, lgr, "network fee account", setNetworkFeeAccountFunc, cfg.NetworkFeeReceiver); err != nil {
		return err
	}
	if err := ownerCall(ctx, env, lgr, "infrastructure fee account", setInfraFeeAccountFunc, cfg.InfrastructureFeeCollector); err != nil {
		return err
	}
	if err := ownerCall(ctx, env, lgr, "parent chain price per unit", setL1PricePerUnitFunc, parentGasPrice); err != nil {
		return err
	}
	lgr.Info("Orbit chain configured")
	return nil
}

// ownerCall sends a call to the ArbOwner precompile on the Orbit chain.
func ownerCall(ctx context.Context, env *Env, lgr log.Logger, desc string, fn *w3.Func, args ...any) error {
	data, err := fn.EncodeArgs(args...)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", fn.Signature, err)
	}
	to := ArbOwnerAddress
	lgr.Info("Setting "+desc, "value", args[0])
	receipt, err := env.ChildTx.Send(ctx, txmgr.TxCandidate{
		To:     &to,
		TxData: data,
	})
	if err != nil {
		return fmt.Errorf("failed to set %s: %w", desc, err)
	}
	lgr.Debug("Set "+desc, "tx", receipt.TxHash, "block", receipt.BlockNumber)
	return nil
}
