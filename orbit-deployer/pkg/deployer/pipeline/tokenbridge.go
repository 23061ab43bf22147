package pipeline

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"

	"github.com/orbit-stack/orbit-stack/orbit-deployer/pkg/deployer/state"
	"github.com/orbit-stack/orbit-stack/orbit-service/eth"
	"github.com/orbit-stack/orbit-stack/orbit-service/ioutil"
	"github.com/orbit-stack/orbit-stack/orbit-service/txmgr"
)

// RetryableSubmissionBuffer is added to the token bridge creation fee to cover retryable
// submission costs. Unused funds are refunded by the creator.
var RetryableSubmissionBuffer = eth.GWei(10_000_000)

// DeployTokenBridge creates the token bridge through the token bridge creator, waits for the
// child chain contracts to be deployed by their retryables and writes the network artifacts.
func DeployTokenBridge(ctx context.Context, env *Env) error {
	cfg := env.Config
	lgr := env.Logger.New("stage", "deploy-token-bridge", "creator", cfg.TokenBridgeCreator)

	bridge, nativeToken, err := resolveNativeToken(ctx, env, lgr)
	if err != nil {
		return err
	}

	deployment, err := env.ParentReader.TokenBridgeDeployment(ctx, cfg.TokenBridgeCreator, cfg.Inbox)
	if err != nil {
		return fmt.Errorf("failed to read token bridge deployment: %w", err)
	}
	if deployment.Deployed() {
		lgr.Info("Token bridge already created for this inbox", "parentRouter", deployment.Parent.Router)
	} else if err := createTokenBridge(ctx, env, lgr, nativeToken); err != nil {
		return err
	}

	spinner := ioutil.NewSpinner(env.Out, "waiting for token bridge contracts on the orbit chain")
	defer spinner.Finish()
	err = env.Waiter.WaitUntil(ctx, func(ctx context.Context) (bool, error) {
		d, err := env.ParentReader.TokenBridgeDeployment(ctx, cfg.TokenBridgeCreator, cfg.Inbox)
		if err != nil {
			return false, fmt.Errorf("failed to read token bridge deployment: %w", err)
		}
		if !d.Deployed() {
			return false, nil
		}
		code, err := env.ChildClient.CodeAt(ctx, d.Child.Router, nil)
		if err != nil {
			return false, fmt.Errorf("failed to get code of child router %s: %w", d.Child.Router, err)
		}
		if len(code) == 0 {
			return false, nil
		}
		deployment = d
		return true, nil
	}, func(misses int) {
		spinner.Tick(fmt.Sprintf("waiting for retryables (check %d)", misses))
		lgr.Info("Waiting for token bridge retryables to execute on the orbit chain", "checks", misses)
	})
	if err != nil {
		return fmt.Errorf("failed waiting for token bridge deployment: %w", err)
	}

	if nativeToken == (common.Address{}) {
		if err := registerWethGateway(ctx, env, lgr, deployment); err != nil {
			return err
		}
	}

	confirmPeriod, err := env.ParentReader.ConfirmPeriodBlocks(ctx, cfg.Rollup)
	if err != nil {
		return fmt.Errorf("failed to read confirm period: %w", err)
	}
	network := state.NewNetworkFile(cfg, bridge, confirmPeriod, deployment)
	network.OrbitNetwork.NativeToken = nativeToken
	info := state.NewOutputInfo(cfg, deployment)
	info.ChainInfo.NativeToken = nativeToken
	if err := state.WriteArtifacts(env.Fs, cfg, network, info); err != nil {
		return err
	}
	lgr.Info("Token bridge deployed",
		"parentRouter", deployment.Parent.Router,
		"childRouter", deployment.Child.Router,
		"network", cfg.NetworkPath(),
		"outputInfo", cfg.OutputInfoPath())
	return nil
}

func createTokenBridge(ctx context.Context, env *Env, lgr log.Logger, nativeToken common.Address) error {
	cfg := env.Config
	gasPriceBid, err := retryableGasPriceBid(ctx, env)
	if err != nil {
		return err
	}
	maxGas := new(big.Int).SetUint64(cfg.MaxGasForContracts)

	// Two retryables deploy the child contracts.
	fee := new(big.Int).Mul(maxGas, gasPriceBid)
	fee.Mul(fee, big.NewInt(2))
	fee.Add(fee, RetryableSubmissionBuffer.ToBig())

	candidate := txmgr.TxCandidate{To: &cfg.TokenBridgeCreator}
	if nativeToken != (common.Address{}) {
		if err := ensureAllowance(ctx, env, lgr, nativeToken, cfg.TokenBridgeCreator, eth.WeiBig(fee)); err != nil {
			return err
		}
	} else {
		candidate.Value = fee
	}
	data, err := createTokenBridgeFunc.EncodeArgs(cfg.Inbox, cfg.ChainOwner, maxGas, gasPriceBid)
	if err != nil {
		return fmt.Errorf("failed to encode createTokenBridge: %w", err)
	}
	candidate.TxData = data

	lgr.Info("Creating token bridge", "inbox", cfg.Inbox, "maxGasForContracts", maxGas, "gasPriceBid", gasPriceBid, "fee", eth.WeiBig(fee))
	receipt, err := env.ParentTx.Send(ctx, candidate)
	if err != nil {
		return fmt.Errorf("failed to create token bridge: %w", err)
	}
	lgr.Info("Token bridge creation sent", "tx", receipt.TxHash, "block", receipt.BlockNumber)
	return nil
}

// resolveNativeToken reads the rollup's bridge and the token the chain pays gas in, the zero
// address for ETH. The bridge is authoritative: a differing configured token is only reported.
func resolveNativeToken(ctx context.Context, env *Env, lgr log.Logger) (bridge, nativeToken common.Address, err error) {
	cfg := env.Config
	bridge, err = env.ParentReader.RollupBridge(ctx, cfg.Rollup)
	if err != nil {
		return common.Address{}, common.Address{}, fmt.Errorf("failed to read bridge of rollup %s: %w", cfg.Rollup, err)
	}
	nativeToken, err = env.ParentReader.BridgeNativeToken(ctx, bridge)
	if err != nil {
		// ETH bridges have no nativeToken method.
		lgr.Debug("Bridge reports no native token, using ETH", "bridge", bridge, "err", err)
		nativeToken = common.Address{}
	}
	if nativeToken != cfg.NativeToken {
		lgr.Warn("Configured native token differs from the bridge, using the bridge value", "config", cfg.NativeToken, "bridge", nativeToken)
	}
	return bridge, nativeToken, nil
}

// retryableGasPriceBid is the child chain gas price offered for retryables: the configured
// bid, or twice the current child gas price.
func retryableGasPriceBid(ctx context.Context, env *Env) (*big.Int, error) {
	if env.Config.GasPriceBid != 0 {
		return new(big.Int).SetUint64(env.Config.GasPriceBid), nil
	}
	price, err := env.ChildClient.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get orbit chain gas price: %w", err)
	}
	return new(big.Int).Mul(price, big.NewInt(2)), nil
}
