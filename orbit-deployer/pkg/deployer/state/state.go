package state

// StateVersion is written to every saved state file. Files without a version were written
// by the earlier TypeScript setup scripts and use the legacy key names.
const StateVersion = 1

// RunState records which deployment steps have completed for one Orbit chain.
// Completion flags only ever go from false to true; the whole record is discarded
// when it belongs to a different chain (see Reconcile).
type RunState struct {
	Version              int         `json:"version"`
	ChainID              uint64      `json:"chainId"`
	FundingSent          FundingSent `json:"fundingSent"`
	NativeDepositDone    bool        `json:"nativeDepositDone"`
	TokenBridgeDeployed  bool        `json:"tokenBridgeDeployed"`
	ChainConfigured      bool        `json:"chainConfigured"`
	OwnershipTransferred bool        `json:"ownershipTransferred"`

	// LastRunID identifies the run that last wrote this file.
	LastRunID string `json:"lastRunId,omitempty"`
	// LastError is the error that halted the last run, empty after a fully successful run.
	LastError string `json:"lastError,omitempty"`
}

type FundingSent struct {
	BatchPoster bool `json:"batchPoster"`
	Staker      bool `json:"staker"`
}

// NewRunState returns a state with nothing completed.
func NewRunState(chainID uint64) *RunState {
	return &RunState{Version: StateVersion, ChainID: chainID}
}

// Complete reports whether every step has been recorded as done.
func (s *RunState) Complete() bool {
	return s.FundingSent.BatchPoster &&
		s.FundingSent.Staker &&
		s.NativeDepositDone &&
		s.TokenBridgeDeployed &&
		s.ChainConfigured &&
		s.OwnershipTransferred
}

func (s *RunState) hasProgress() bool {
	return s.FundingSent.BatchPoster ||
		s.FundingSent.Staker ||
		s.NativeDepositDone ||
		s.TokenBridgeDeployed ||
		s.ChainConfigured ||
		s.OwnershipTransferred
}

// Reconcile checks a loaded state against the chain being deployed. A state recorded for
// another chain id is replaced by a fresh one; reset is true when that discarded any record of
// a previous chain. Otherwise the loaded state is returned, stamped with the target chain id.
func Reconcile(loaded *RunState, targetChainID uint64) (st *RunState, reset bool) {
	if loaded == nil {
		return NewRunState(targetChainID), false
	}
	if loaded.ChainID != targetChainID {
		return NewRunState(targetChainID), loaded.ChainID != 0 || loaded.hasProgress()
	}
	loaded.ChainID = targetChainID
	loaded.Version = StateVersion
	return loaded, false
}
