package pipeline

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"

	"github.com/orbit-stack/orbit-stack/orbit-deployer/pkg/deployer/state"
	"github.com/orbit-stack/orbit-stack/orbit-service/eth"
	"github.com/orbit-stack/orbit-stack/orbit-service/txmgr"
)

const (
	// WethGatewayGasMultiplier raises the estimated gas of the child chain registration by 200%.
	WethGatewayGasMultiplier = 3
	// SubmissionFeeMultiplier raises the quoted retryable submission fee by 300%.
	SubmissionFeeMultiplier = 4
)

var l1ToL2AliasOffset = new(uint256.Int).SetBytes(common.HexToAddress("0x1111000000000000000000000000000000001111").Bytes())

// ApplyL1ToL2Alias returns the address a parent chain contract acts as on the child chain.
func ApplyL1ToL2Alias(addr common.Address) common.Address {
	sum := new(uint256.Int).SetBytes(addr.Bytes())
	sum.Add(sum, l1ToL2AliasOffset)
	b := sum.Bytes32()
	return common.BytesToAddress(b[12:])
}

// registerWethGateway registers the WETH gateway in the parent router, which forwards the
// registration to the child router through a retryable, and waits until the child router
// reports it. A registration already present on the parent chain is not sent again.
func registerWethGateway(ctx context.Context, env *Env, lgr log.Logger, d state.TokenBridgeDeployment) error {
	parent, child := d.Parent, d.Child
	if parent.WethGateway == (common.Address{}) || parent.Weth == (common.Address{}) {
		lgr.Info("Token bridge has no WETH gateway, nothing to register")
		return nil
	}
	lgr = lgr.New("weth", parent.Weth, "gateway", parent.WethGateway)

	registered, err := env.ParentReader.GatewayFor(ctx, parent.Router, parent.Weth)
	if err != nil {
		return fmt.Errorf("failed to read WETH gateway of parent router %s: %w", parent.Router, err)
	}
	if registered == parent.WethGateway {
		lgr.Info("WETH gateway already registered on the parent chain")
	} else if err := sendSetWethGateway(ctx, env, lgr, d); err != nil {
		return err
	}

	err = env.Waiter.WaitUntil(ctx, func(ctx context.Context) (bool, error) {
		gw, err := env.ChildReader.GatewayFor(ctx, child.Router, parent.Weth)
		if err != nil {
			return false, fmt.Errorf("failed to read WETH gateway of child router %s: %w", child.Router, err)
		}
		return gw == child.WethGateway, nil
	}, func(misses int) {
		if misses >= StallNoticeThreshold {
			lgr.Warn("WETH gateway is still not registered on the orbit chain. If its retryable failed, redeem it manually",
				"checks", misses, "interval", env.Waiter.Interval)
			return
		}
		lgr.Info("Waiting for the WETH gateway retryable to execute on the orbit chain", "checks", misses)
	})
	if err != nil {
		return fmt.Errorf("failed waiting for WETH gateway registration: %w", err)
	}
	lgr.Info("WETH gateway registered", "childGateway", child.WethGateway)
	return nil
}

func sendSetWethGateway(ctx context.Context, env *Env, lgr log.Logger, d state.TokenBridgeDeployment) error {
	parent, child := d.Parent, d.Child
	executor, err := env.ParentReader.Owner(ctx, parent.Router)
	if err != nil {
		return fmt.Errorf("failed to read owner of parent router %s: %w", parent.Router, err)
	}

	childCall, err := setGatewayFunc.EncodeArgs([]common.Address{parent.Weth}, []common.Address{child.WethGateway})
	if err != nil {
		return fmt.Errorf("failed to encode setGateway: %w", err)
	}
	gas, err := env.ChildClient.EstimateGas(ctx, ethereum.CallMsg{
		From: ApplyL1ToL2Alias(parent.Router),
		To:   &child.Router,
		Data: childCall,
	})
	if err != nil {
		return fmt.Errorf("failed to estimate WETH gateway registration on the orbit chain: %w", err)
	}
	gasLimit := new(big.Int).SetUint64(gas * WethGatewayGasMultiplier)
	maxFeePerGas, err := retryableGasPriceBid(ctx, env)
	if err != nil {
		return err
	}
	parentGasPrice, err := env.ParentClient.SuggestGasPrice(ctx)
	if err != nil {
		return fmt.Errorf("failed to get parent chain gas price: %w", err)
	}
	submissionFee, err := env.ParentReader.RetryableSubmissionFee(ctx, env.Config.Inbox, len(childCall), parentGasPrice)
	if err != nil {
		return fmt.Errorf("failed to quote retryable submission fee: %w", err)
	}
	submissionFee = new(big.Int).Mul(submissionFee, big.NewInt(SubmissionFeeMultiplier))

	setGateways, err := setGatewaysFunc.EncodeArgs([]common.Address{parent.Weth}, []common.Address{parent.WethGateway},
		gasLimit, maxFeePerGas, submissionFee)
	if err != nil {
		return fmt.Errorf("failed to encode setGateways: %w", err)
	}
	data, err := executeCallFunc.EncodeArgs(parent.Router, setGateways)
	if err != nil {
		return fmt.Errorf("failed to encode executeCall: %w", err)
	}
	value := new(big.Int).Mul(gasLimit, maxFeePerGas)
	value.Add(value, submissionFee)

	lgr.Info("Registering WETH gateway", "executor", executor, "gasLimit", gasLimit, "maxFeePerGas", maxFeePerGas, "value", eth.WeiBig(value))
	receipt, err := env.ParentTx.Send(ctx, txmgr.TxCandidate{To: &executor, TxData: data, Value: value})
	if err != nil {
		return fmt.Errorf("failed to register WETH gateway: %w", err)
	}
	lgr.Info("WETH gateway registration sent", "tx", receipt.TxHash, "block", receipt.BlockNumber)
	return nil
}
