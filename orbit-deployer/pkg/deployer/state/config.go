package state

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/afero"

	"github.com/orbit-stack/orbit-stack/orbit-service/eth"
)

// ErrNoConfig is returned when the setup config file does not exist.
var ErrNoConfig = errors.New("setup config not found")

var (
	// DefaultTokenBridgeCreator is the token bridge creator deployed on Arbitrum Sepolia.
	DefaultTokenBridgeCreator = common.HexToAddress("0x56C486D3786fA26cc61473C499A36Eb9CC1FbD8E")

	DefaultFundingAmount = eth.ThreeTenthEther
	DefaultDepositAmount = eth.FourTenthEther
)

const (
	DefaultMaxGasForContracts = 20_000_000
	DefaultNetworkFile        = "network.json"
	DefaultOutputInfoFile     = "outputInfo.json"
	DefaultChildRPCURL        = "http://localhost:8449"
	DefaultExplorerURL        = "http://localhost"
)

// SetupConfig describes the deployed Orbit chain. It is produced when the rollup
// contracts are created and read here without modification.
type SetupConfig struct {
	ChainID       uint64 `json:"chainId" toml:"chainId" yaml:"chainId"`
	ParentChainID uint64 `json:"parentChainId" toml:"parentChainId" yaml:"parentChainId"`
	ChainName     string `json:"chainName" toml:"chainName" yaml:"chainName"`

	BatchPoster                common.Address `json:"batchPoster" toml:"batchPoster" yaml:"batchPoster"`
	Staker                     common.Address `json:"staker" toml:"staker" yaml:"staker"`
	ChainOwner                 common.Address `json:"chainOwner" toml:"chainOwner" yaml:"chainOwner"`
	NetworkFeeReceiver         common.Address `json:"networkFeeReceiver" toml:"networkFeeReceiver" yaml:"networkFeeReceiver"`
	InfrastructureFeeCollector common.Address `json:"infrastructureFeeCollector" toml:"infrastructureFeeCollector" yaml:"infrastructureFeeCollector"`
	// NativeToken is the zero address for chains that use ETH as gas currency.
	NativeToken common.Address `json:"nativeToken" toml:"nativeToken" yaml:"nativeToken"`

	Rollup                 common.Address `json:"rollup" toml:"rollup" yaml:"rollup"`
	Inbox                  common.Address `json:"inbox" toml:"inbox" yaml:"inbox"`
	Outbox                 common.Address `json:"outbox" toml:"outbox" yaml:"outbox"`
	AdminProxy             common.Address `json:"adminProxy" toml:"adminProxy" yaml:"adminProxy"`
	SequencerInbox         common.Address `json:"sequencerInbox" toml:"sequencerInbox" yaml:"sequencerInbox"`
	Bridge                 common.Address `json:"bridge" toml:"bridge" yaml:"bridge"`
	Utils                  common.Address `json:"utils" toml:"utils" yaml:"utils"`
	ValidatorWalletCreator common.Address `json:"validatorWalletCreator" toml:"validatorWalletCreator" yaml:"validatorWalletCreator"`

	// MinL2BaseFee is in wei. Older files call it minL3BaseFee.
	MinL2BaseFee uint64 `json:"minL2BaseFee" toml:"minL2BaseFee" yaml:"minL2BaseFee"`
	MinL3BaseFee uint64 `json:"minL3BaseFee,omitempty" toml:"minL3BaseFee" yaml:"minL3BaseFee"`

	// Optional overrides. Zero values select the defaults.
	FundingAmount      *eth.ETH       `json:"fundingAmount,omitempty" toml:"fundingAmount" yaml:"fundingAmount"`
	DepositAmount      *eth.ETH       `json:"depositAmount,omitempty" toml:"depositAmount" yaml:"depositAmount"`
	TokenBridgeCreator common.Address `json:"tokenBridgeCreator,omitempty" toml:"tokenBridgeCreator" yaml:"tokenBridgeCreator"`
	MaxGasForContracts uint64         `json:"maxGasForContracts,omitempty" toml:"maxGasForContracts" yaml:"maxGasForContracts"`
	// GasPriceBid is in wei; zero means twice the child chain's current gas price.
	GasPriceBid     uint64         `json:"gasPriceBid,omitempty" toml:"gasPriceBid" yaml:"gasPriceBid"`
	UpgradeExecutor common.Address `json:"upgradeExecutor,omitempty" toml:"upgradeExecutor" yaml:"upgradeExecutor"`

	// Output addressing for the generated artifacts.
	OutputDir      string `json:"outputDir,omitempty" toml:"outputDir" yaml:"outputDir"`
	NetworkFile    string `json:"networkFile,omitempty" toml:"networkFile" yaml:"networkFile"`
	OutputInfoFile string `json:"outputInfoFile,omitempty" toml:"outputInfoFile" yaml:"outputInfoFile"`
	ChildRPCURL    string `json:"rpcUrl,omitempty" toml:"rpcUrl" yaml:"rpcUrl"`
	ExplorerURL    string `json:"explorerUrl,omitempty" toml:"explorerUrl" yaml:"explorerUrl"`
}

// ReadConfig reads the setup config, choosing the decoder by file extension.
// Unknown extensions are read as JSON.
func ReadConfig(fs afero.Fs, path string) (*SetupConfig, error) {
	if _, err := fs.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNoConfig, path)
	}
	var cfg SetupConfig
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = ReadTOMLFile(fs, path, &cfg)
	case ".yaml", ".yml":
		err = ReadYAMLFile(fs, path, &cfg)
	default:
		err = ReadJSONFile(fs, path, &cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read setup config %s: %w", path, err)
	}
	cfg.ApplyDefaults()
	return &cfg, nil
}

// ApplyDefaults fills unset optional fields. ReadConfig calls it.
func (c *SetupConfig) ApplyDefaults() {
	if c.MinL2BaseFee == 0 {
		c.MinL2BaseFee = c.MinL3BaseFee
	}
	if c.FundingAmount == nil {
		amount := DefaultFundingAmount
		c.FundingAmount = &amount
	}
	if c.DepositAmount == nil {
		amount := DefaultDepositAmount
		c.DepositAmount = &amount
	}
	if c.TokenBridgeCreator == (common.Address{}) {
		c.TokenBridgeCreator = DefaultTokenBridgeCreator
	}
	if c.MaxGasForContracts == 0 {
		c.MaxGasForContracts = DefaultMaxGasForContracts
	}
	if c.NetworkFile == "" {
		c.NetworkFile = DefaultNetworkFile
	}
	if c.OutputInfoFile == "" {
		c.OutputInfoFile = DefaultOutputInfoFile
	}
	if c.ChildRPCURL == "" {
		c.ChildRPCURL = DefaultChildRPCURL
	}
	if c.ExplorerURL == "" {
		c.ExplorerURL = DefaultExplorerURL
	}
}

// Check reports every problem with the config at once.
func (c *SetupConfig) Check() error {
	var result *multierror.Error
	if c.ChainID == 0 {
		result = multierror.Append(result, errors.New("chainId must be specified"))
	}
	if c.ParentChainID == 0 {
		result = multierror.Append(result, errors.New("parentChainId must be specified"))
	}
	if c.ChainID != 0 && c.ChainID == c.ParentChainID {
		result = multierror.Append(result, fmt.Errorf("chainId and parentChainId must differ, both are %d", c.ChainID))
	}
	for _, field := range []struct {
		name string
		addr common.Address
	}{
		{"batchPoster", c.BatchPoster},
		{"staker", c.Staker},
		{"chainOwner", c.ChainOwner},
		{"networkFeeReceiver", c.NetworkFeeReceiver},
		{"infrastructureFeeCollector", c.InfrastructureFeeCollector},
		{"rollup", c.Rollup},
		{"inbox", c.Inbox},
	} {
		if field.addr == (common.Address{}) {
			result = multierror.Append(result, fmt.Errorf("%s must be specified", field.name))
		}
	}
	if c.FundingAmount != nil && c.FundingAmount.IsZero() {
		result = multierror.Append(result, errors.New("fundingAmount must be positive"))
	}
	if c.DepositAmount != nil && c.DepositAmount.IsZero() {
		result = multierror.Append(result, errors.New("depositAmount must be positive"))
	}
	return result.ErrorOrNil()
}

func (c *SetupConfig) NetworkPath() string {
	return filepath.Join(c.OutputDir, c.NetworkFile)
}

func (c *SetupConfig) OutputInfoPath() string {
	return filepath.Join(c.OutputDir, c.OutputInfoFile)
}
