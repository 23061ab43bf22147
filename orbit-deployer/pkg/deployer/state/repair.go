package state

import (
	"encoding/json"
	"fmt"
)

// storedRunState mirrors every key a state file may carry, current and legacy.
// Pointers distinguish an absent key from an explicit false.
type storedRunState struct {
	Version              *int           `json:"version"`
	ChainID              *uint64        `json:"chainId"`
	FundingSent          *storedFunding `json:"fundingSent"`
	NativeDepositDone    *bool          `json:"nativeDepositDone"`
	TokenBridgeDeployed  *bool          `json:"tokenBridgeDeployed"`
	ChainConfigured      *bool          `json:"chainConfigured"`
	OwnershipTransferred *bool          `json:"ownershipTransferred"`
	LastRunID            *string        `json:"lastRunId"`
	LastError            *string        `json:"lastError"`

	// keys written by the legacy setup scripts
	EtherSent          *storedFunding `json:"etherSent"`
	NativeTokenDeposit *bool          `json:"nativeTokenDeposit"`
	L3Config           *bool          `json:"l3config"`
	L4Config           *bool          `json:"l4config"`
	TransferOwnership  *bool          `json:"transferOwnership"`
}

type storedFunding struct {
	BatchPoster *bool `json:"batchPoster"`
	Staker      *bool `json:"staker"`
}

func decodeRunState(data []byte) (*RunState, error) {
	var stored storedRunState
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, err
	}
	if stored.Version != nil && *stored.Version > StateVersion {
		return nil, fmt.Errorf("unsupported state version %d, this tool writes version %d", *stored.Version, StateVersion)
	}
	return stored.repair(), nil
}

// repair fills every absent field with its default. A legacy key counts as done when
// either its legacy or current spelling says so.
func (s *storedRunState) repair() *RunState {
	out := NewRunState(deref(s.ChainID))
	out.FundingSent.BatchPoster = s.FundingSent.batchPoster() || s.EtherSent.batchPoster()
	out.FundingSent.Staker = s.FundingSent.staker() || s.EtherSent.staker()
	out.NativeDepositDone = deref(s.NativeDepositDone) || deref(s.NativeTokenDeposit)
	out.TokenBridgeDeployed = deref(s.TokenBridgeDeployed)
	out.ChainConfigured = deref(s.ChainConfigured) || deref(s.L3Config) || deref(s.L4Config)
	out.OwnershipTransferred = deref(s.OwnershipTransferred) || deref(s.TransferOwnership)
	out.LastRunID = deref(s.LastRunID)
	out.LastError = deref(s.LastError)
	return out
}

func (f *storedFunding) batchPoster() bool {
	return f != nil && deref(f.BatchPoster)
}

func (f *storedFunding) staker() bool {
	return f != nil && deref(f.Staker)
}

func deref[T any](v *T) T {
	var zero T
	if v == nil {
		return zero
	}
	return *v
}
