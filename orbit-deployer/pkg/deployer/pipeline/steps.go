package pipeline

import (
	"context"

	"github.com/orbit-stack/orbit-stack/orbit-deployer/pkg/deployer/state"
)

const (
	StepFundBatchPoster   = "fund-batch-poster"
	StepFundStaker        = "fund-staker"
	StepDepositNative     = "deposit-native-currency"
	StepDeployBridge      = "deploy-token-bridge"
	StepConfigureChain    = "configure-chain"
	StepTransferOwnership = "transfer-ownership"
)

// Definitions returns the deployment steps in execution order, without actions.
// It is enough to report progress from a RunState.
func Definitions() []Step {
	return []Step{
		{
			Name:        StepFundBatchPoster,
			Description: "Fund the batch poster on the parent chain",
			Done:        func(st *state.RunState) bool { return st.FundingSent.BatchPoster },
			MarkDone:    func(st *state.RunState) { st.FundingSent.BatchPoster = true },
		},
		{
			Name:        StepFundStaker,
			Description: "Fund the staker on the parent chain",
			Done:        func(st *state.RunState) bool { return st.FundingSent.Staker },
			MarkDone:    func(st *state.RunState) { st.FundingSent.Staker = true },
		},
		{
			Name:        StepDepositNative,
			Description: "Deposit native currency to the chain owner on the Orbit chain",
			Done:        func(st *state.RunState) bool { return st.NativeDepositDone },
			MarkDone:    func(st *state.RunState) { st.NativeDepositDone = true },
		},
		{
			Name:        StepDeployBridge,
			Description: "Deploy the token bridge",
			Done:        func(st *state.RunState) bool { return st.TokenBridgeDeployed },
			MarkDone:    func(st *state.RunState) { st.TokenBridgeDeployed = true },
		},
		{
			Name:        StepConfigureChain,
			Description: "Configure fees on the Orbit chain",
			Done:        func(st *state.RunState) bool { return st.ChainConfigured },
			MarkDone:    func(st *state.RunState) { st.ChainConfigured = true },
		},
		{
			Name:        StepTransferOwnership,
			Description: "Transfer chain ownership to the upgrade executor",
			Done:        func(st *state.RunState) bool { return st.OwnershipTransferred },
			MarkDone:    func(st *state.RunState) { st.OwnershipTransferred = true },
		},
	}
}

// Steps returns the deployment steps bound to env.
func Steps(env *Env) []Step {
	actions := map[string]Stage{
		StepFundBatchPoster:   FundBatchPoster,
		StepFundStaker:        FundStaker,
		StepDepositNative:     DepositNativeCurrency,
		StepDeployBridge:      DeployTokenBridge,
		StepConfigureChain:    ConfigureChain,
		StepTransferOwnership: TransferOwnership,
	}
	steps := Definitions()
	for i := range steps {
		action := actions[steps[i].Name]
		steps[i].Apply = func(ctx context.Context) error {
			return action(ctx, env)
		}
	}
	return steps
}
