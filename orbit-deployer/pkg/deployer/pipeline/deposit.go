package pipeline

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"

	"github.com/orbit-stack/orbit-stack/orbit-service/eth"
	"github.com/orbit-stack/orbit-stack/orbit-service/ioutil"
	"github.com/orbit-stack/orbit-stack/orbit-service/txmgr"
)

// StallNoticeThreshold is the number of unchanged balance checks after which
// the waiting notice suggests the deposit may be stuck.
const StallNoticeThreshold = 6

// DepositNativeCurrency deposits the configured amount through the inbox and waits until the
// chain owner's balance on the Orbit chain has grown by that amount.
func DepositNativeCurrency(ctx context.Context, env *Env) error {
	cfg := env.Config
	amount := *cfg.DepositAmount
	owner := cfg.ChainOwner
	lgr := env.Logger.New("stage", "deposit", "owner", owner)

	_, nativeToken, err := resolveNativeToken(ctx, env, lgr)
	if err != nil {
		return err
	}

	before, err := env.ChildClient.BalanceAt(ctx, owner, nil)
	if err != nil {
		return fmt.Errorf("failed to get chain owner balance on the orbit chain: %w", err)
	}

	if nativeToken != (common.Address{}) {
		if err := depositToken(ctx, env, lgr, nativeToken, amount); err != nil {
			return err
		}
	} else {
		if err := depositEth(ctx, env, lgr, amount); err != nil {
			return err
		}
	}

	spinner := ioutil.NewSpinner(env.Out, "waiting for deposit to land on the orbit chain")
	defer spinner.Finish()
	startBalance := eth.WeiBig(before)
	err = env.Waiter.WaitUntil(ctx, func(ctx context.Context) (bool, error) {
		current, err := env.ChildClient.BalanceAt(ctx, owner, nil)
		if err != nil {
			return false, fmt.Errorf("failed to get chain owner balance on the orbit chain: %w", err)
		}
		diff, underflow := eth.WeiBig(current).SubUnderflow(startBalance)
		return !underflow && !diff.Lt(amount), nil
	}, func(misses int) {
		spinner.Tick(fmt.Sprintf("waiting for deposit (check %d)", misses))
		if misses >= StallNoticeThreshold {
			lgr.Warn("Balance has not changed yet. If this persists, the node may be stuck or the parent chain data is stale; check the node logs",
				"checks", misses, "interval", env.Waiter.Interval)
			return
		}
		lgr.Info("Balance has not changed yet, waiting", "checks", misses, "interval", env.Waiter.Interval)
	})
	if err != nil {
		return fmt.Errorf("failed waiting for deposit: %w", err)
	}
	lgr.Info("Deposit arrived on the orbit chain", "amount", amount)
	return nil
}

func depositEth(ctx context.Context, env *Env, lgr log.Logger, amount eth.ETH) error {
	from := env.ParentTx.From()
	balance, err := env.ParentClient.BalanceAt(ctx, from, nil)
	if err != nil {
		return fmt.Errorf("failed to get deployer balance: %w", err)
	}
	if eth.WeiBig(balance).Lt(amount) {
		return fmt.Errorf("deployer %s has %s on the parent chain, the deposit needs %s", from, eth.WeiBig(balance), amount)
	}
	data, err := depositEthFunc.EncodeArgs()
	if err != nil {
		return fmt.Errorf("failed to encode depositEth: %w", err)
	}
	lgr.Info("Depositing ETH", "amount", amount, "inbox", env.Config.Inbox)
	receipt, err := env.ParentTx.Send(ctx, txmgr.TxCandidate{
		To:     &env.Config.Inbox,
		TxData: data,
		Value:  amount.ToBig(),
	})
	if err != nil {
		return fmt.Errorf("failed to deposit ETH: %w", err)
	}
	lgr.Info("Deposit sent", "tx", receipt.TxHash, "block", receipt.BlockNumber)
	return nil
}

func depositToken(ctx context.Context, env *Env, lgr log.Logger, token common.Address, amount eth.ETH) error {
	cfg := env.Config
	decimals, err := env.ParentReader.Decimals(ctx, token)
	if err != nil {
		return fmt.Errorf("failed to read native token decimals: %w", err)
	}
	if decimals != 18 {
		return fmt.Errorf("native token %s has %d decimals, only 18 are supported", token, decimals)
	}
	if err := ensureAllowance(ctx, env, lgr, token, cfg.Inbox, amount); err != nil {
		return err
	}
	data, err := depositERC20Func.EncodeArgs(amount.ToBig())
	if err != nil {
		return fmt.Errorf("failed to encode depositERC20: %w", err)
	}
	lgr.Info("Depositing native token", "token", token, "amount", amount.EtherString(), "inbox", cfg.Inbox)
	receipt, err := env.ParentTx.Send(ctx, txmgr.TxCandidate{
		To:     &cfg.Inbox,
		TxData: data,
	})
	if err != nil {
		return fmt.Errorf("failed to deposit native token: %w", err)
	}
	lgr.Info("Deposit sent", "tx", receipt.TxHash, "block", receipt.BlockNumber)
	return nil
}
