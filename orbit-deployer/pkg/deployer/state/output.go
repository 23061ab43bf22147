package state

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/afero"
)

// TokenBridgeContracts holds one side of a token bridge deployment.
// Fields that do not exist on a given side are left zero.
type TokenBridgeContracts struct {
	Router             common.Address `json:"router"`
	StandardGateway    common.Address `json:"standardGateway"`
	CustomGateway      common.Address `json:"customGateway"`
	WethGateway        common.Address `json:"wethGateway"`
	Weth               common.Address `json:"weth"`
	ProxyAdmin         common.Address `json:"proxyAdmin"`
	BeaconProxyFactory common.Address `json:"beaconProxyFactory"`
	UpgradeExecutor    common.Address `json:"upgradeExecutor"`
	Multicall          common.Address `json:"multicall"`
}

// TokenBridgeDeployment is the token bridge as recorded by the creator on the parent chain.
type TokenBridgeDeployment struct {
	Parent TokenBridgeContracts
	Child  TokenBridgeContracts
}

// Deployed reports whether the creator has recorded a deployment.
func (d TokenBridgeDeployment) Deployed() bool {
	return d.Parent.Router != (common.Address{}) && d.Child.Router != (common.Address{})
}

// ParentNetwork describes the parent chain in network.json.
type ParentNetwork struct {
	ChainID     uint64 `json:"chainID"`
	Name        string `json:"name"`
	IsArbitrum  bool   `json:"isArbitrum"`
	IsCustom    bool   `json:"isCustom"`
	ExplorerURL string `json:"explorerUrl"`
}

type EthBridge struct {
	Bridge         common.Address `json:"bridge"`
	Inbox          common.Address `json:"inbox"`
	Outbox         common.Address `json:"outbox"`
	Rollup         common.Address `json:"rollup"`
	SequencerInbox common.Address `json:"sequencerInbox"`
}

type NetworkTokenBridge struct {
	ParentCustomGateway     common.Address `json:"l1CustomGateway"`
	ParentERC20Gateway      common.Address `json:"l1ERC20Gateway"`
	ParentGatewayRouter     common.Address `json:"l1GatewayRouter"`
	ParentMultiCall         common.Address `json:"l1MultiCall"`
	ParentProxyAdmin        common.Address `json:"l1ProxyAdmin"`
	ParentWeth              common.Address `json:"l1Weth"`
	ParentWethGateway       common.Address `json:"l1WethGateway"`
	ChildCustomGateway      common.Address `json:"l2CustomGateway"`
	ChildERC20Gateway       common.Address `json:"l2ERC20Gateway"`
	ChildGatewayRouter      common.Address `json:"l2GatewayRouter"`
	ChildMultiCall          common.Address `json:"l2Multicall"`
	ChildProxyAdmin         common.Address `json:"l2ProxyAdmin"`
	ChildWeth               common.Address `json:"l2Weth"`
	ChildWethGateway        common.Address `json:"l2WethGateway"`
	ChildBeaconProxyFactory common.Address `json:"l2BeaconProxyFactory"`
}

// OrbitNetwork describes the Orbit chain in network.json.
type OrbitNetwork struct {
	ChainID                  uint64             `json:"chainID"`
	Name                     string             `json:"name"`
	ConfirmPeriodBlocks      uint64             `json:"confirmPeriodBlocks"`
	EthBridge                EthBridge          `json:"ethBridge"`
	NativeToken              common.Address     `json:"nativeToken"`
	ExplorerURL              string             `json:"explorerUrl"`
	IsArbitrum               bool               `json:"isArbitrum"`
	IsCustom                 bool               `json:"isCustom"`
	PartnerChainID           uint64             `json:"partnerChainID"`
	PartnerChainIDs          []uint64           `json:"partnerChainIDs"`
	RetryableLifetimeSeconds uint64             `json:"retryableLifetimeSeconds"`
	NitroGenesisBlock        uint64             `json:"nitroGenesisBlock"`
	NitroGenesisL1Block      uint64             `json:"nitroGenesisL1Block"`
	DepositTimeout           uint64             `json:"depositTimeout"`
	BlockTime                uint64             `json:"blockTime"`
	TokenBridge              NetworkTokenBridge `json:"tokenBridge"`
}

// NetworkFile is the content of network.json. The key names are the ones bridge UIs and
// SDKs expect, which call the parent "l2" and the Orbit chain "l3".
type NetworkFile struct {
	ParentNetwork ParentNetwork `json:"l2Network"`
	OrbitNetwork  OrbitNetwork  `json:"l3Network"`
}

type ChainInfo struct {
	MinL2BaseFee               uint64         `json:"minL2BaseFee"`
	NetworkFeeReceiver         common.Address `json:"networkFeeReceiver"`
	InfrastructureFeeCollector common.Address `json:"infrastructureFeeCollector"`
	BatchPoster                common.Address `json:"batchPoster"`
	Staker                     common.Address `json:"staker"`
	ChainOwner                 common.Address `json:"chainOwner"`
	ChainName                  string         `json:"chainName"`
	ChainID                    uint64         `json:"chainId"`
	ParentChainID              uint64         `json:"parentChainId"`
	RPCURL                     string         `json:"rpcUrl"`
	ExplorerURL                string         `json:"explorerUrl"`
	NativeToken                common.Address `json:"nativeToken"`
}

type CoreContracts struct {
	Rollup                 common.Address `json:"rollup"`
	Inbox                  common.Address `json:"inbox"`
	Outbox                 common.Address `json:"outbox"`
	AdminProxy             common.Address `json:"adminProxy"`
	SequencerInbox         common.Address `json:"sequencerInbox"`
	Bridge                 common.Address `json:"bridge"`
	Utils                  common.Address `json:"utils"`
	ValidatorWalletCreator common.Address `json:"validatorWalletCreator"`
}

type OutputTokenBridge struct {
	Parent TokenBridgeContracts `json:"l2Contracts"`
	Child  TokenBridgeContracts `json:"l3Contracts"`
}

// OutputInfo is the content of outputInfo.json.
type OutputInfo struct {
	ChainInfo            ChainInfo         `json:"chainInfo"`
	CoreContracts        CoreContracts     `json:"coreContracts"`
	TokenBridgeContracts OutputTokenBridge `json:"tokenBridgeContracts"`
}

const (
	retryableLifetimeSeconds = 7 * 24 * 60 * 60
	depositTimeoutMs         = 1_800_000
	orbitBlockTimeSeconds    = 12
)

// NewNetworkFile builds network.json for a chain whose token bridge has been deployed.
// bridge is the bridge contract read from the rollup, which may differ from a stale config.
func NewNetworkFile(cfg *SetupConfig, bridge common.Address, confirmPeriodBlocks uint64, d TokenBridgeDeployment) *NetworkFile {
	return &NetworkFile{
		ParentNetwork: ParentNetwork{
			ChainID:    cfg.ParentChainID,
			Name:       fmt.Sprintf("parent-%d", cfg.ParentChainID),
			IsArbitrum: true,
			IsCustom:   true,
		},
		OrbitNetwork: OrbitNetwork{
			ChainID:             cfg.ChainID,
			Name:                cfg.ChainName,
			ConfirmPeriodBlocks: confirmPeriodBlocks,
			EthBridge: EthBridge{
				Bridge:         bridge,
				Inbox:          cfg.Inbox,
				Outbox:         cfg.Outbox,
				Rollup:         cfg.Rollup,
				SequencerInbox: cfg.SequencerInbox,
			},
			NativeToken:              cfg.NativeToken,
			ExplorerURL:              cfg.ExplorerURL,
			IsArbitrum:               true,
			IsCustom:                 true,
			PartnerChainID:           cfg.ParentChainID,
			PartnerChainIDs:          []uint64{},
			RetryableLifetimeSeconds: retryableLifetimeSeconds,
			DepositTimeout:           depositTimeoutMs,
			BlockTime:                orbitBlockTimeSeconds,
			TokenBridge: NetworkTokenBridge{
				ParentCustomGateway:     d.Parent.CustomGateway,
				ParentERC20Gateway:      d.Parent.StandardGateway,
				ParentGatewayRouter:     d.Parent.Router,
				ParentMultiCall:         d.Parent.Multicall,
				ParentProxyAdmin:        d.Parent.ProxyAdmin,
				ParentWeth:              d.Parent.Weth,
				ParentWethGateway:       d.Parent.WethGateway,
				ChildCustomGateway:      d.Child.CustomGateway,
				ChildERC20Gateway:       d.Child.StandardGateway,
				ChildGatewayRouter:      d.Child.Router,
				ChildMultiCall:          d.Child.Multicall,
				ChildProxyAdmin:         d.Child.ProxyAdmin,
				ChildWeth:               d.Child.Weth,
				ChildWethGateway:        d.Child.WethGateway,
				ChildBeaconProxyFactory: d.Child.BeaconProxyFactory,
			},
		},
	}
}

func NewOutputInfo(cfg *SetupConfig, d TokenBridgeDeployment) *OutputInfo {
	return &OutputInfo{
		ChainInfo: ChainInfo{
			MinL2BaseFee:               cfg.MinL2BaseFee,
			NetworkFeeReceiver:         cfg.NetworkFeeReceiver,
			InfrastructureFeeCollector: cfg.InfrastructureFeeCollector,
			BatchPoster:                cfg.BatchPoster,
			Staker:                     cfg.Staker,
			ChainOwner:                 cfg.ChainOwner,
			ChainName:                  cfg.ChainName,
			ChainID:                    cfg.ChainID,
			ParentChainID:              cfg.ParentChainID,
			RPCURL:                     cfg.ChildRPCURL,
			ExplorerURL:                cfg.ExplorerURL,
			NativeToken:                cfg.NativeToken,
		},
		CoreContracts: CoreContracts{
			Rollup:                 cfg.Rollup,
			Inbox:                  cfg.Inbox,
			Outbox:                 cfg.Outbox,
			AdminProxy:             cfg.AdminProxy,
			SequencerInbox:         cfg.SequencerInbox,
			Bridge:                 cfg.Bridge,
			Utils:                  cfg.Utils,
			ValidatorWalletCreator: cfg.ValidatorWalletCreator,
		},
		TokenBridgeContracts: OutputTokenBridge{
			Parent: d.Parent,
			Child:  d.Child,
		},
	}
}

// WriteArtifacts writes network.json and outputInfo.json to the paths named by cfg.
func WriteArtifacts(fs afero.Fs, cfg *SetupConfig, network *NetworkFile, info *OutputInfo) error {
	if err := WriteJSONFile(fs, cfg.NetworkPath(), network); err != nil {
		return fmt.Errorf("failed to write %s: %w", cfg.NetworkPath(), err)
	}
	if err := WriteJSONFile(fs, cfg.OutputInfoPath(), info); err != nil {
		return fmt.Errorf("failed to write %s: %w", cfg.OutputInfoPath(), err)
	}
	return nil
}
