package state

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/orbit-stack/orbit-stack/orbit-service/eth"
)

const jsonConfig = `{
  "networkFeeReceiver": "0x1111111111111111111111111111111111111111",
  "infrastructureFeeCollector": "0x2222222222222222222222222222222222222222",
  "staker": "0x3333333333333333333333333333333333333333",
  "batchPoster": "0x4444444444444444444444444444444444444444",
  "chainOwner": "0x5555555555555555555555555555555555555555",
  "chainId": 412346,
  "chainName": "My Arbitrum L3 Chain",
  "minL3BaseFee": 100000000,
  "parentChainId": 421614,
  "utils": "0x6666666666666666666666666666666666666666",
  "rollup": "0x7777777777777777777777777777777777777777",
  "inbox": "0x8888888888888888888888888888888888888888",
  "nativeToken": "0x0000000000000000000000000000000000000000",
  "outbox": "0x9999999999999999999999999999999999999999",
  "adminProxy": "0xaAaAaAaaAaAaAaaAaAAAAAAAAaaaAaAaAaaAaaAa",
  "sequencerInbox": "0xbBbBBBBbbBBBbbbBbbBbbbbBBbBbbbbBbBbbBBbB",
  "bridge": "0xCcCCccccCCCCcCCCCCCcCcCccCcCCCcCcccccccC",
  "validatorWalletCreator": "0xdDdDddDdDdddDDddDDddDDDDdDdDDdDDdDDDDDDd"
}`

const tomlConfig = `
chainId = 412346
parentChainId = 421614
chainName = "toml chain"
batchPoster = "0x4444444444444444444444444444444444444444"
staker = "0x3333333333333333333333333333333333333333"
chainOwner = "0x5555555555555555555555555555555555555555"
networkFeeReceiver = "0x1111111111111111111111111111111111111111"
infrastructureFeeCollector = "0x2222222222222222222222222222222222222222"
rollup = "0x7777777777777777777777777777777777777777"
inbox = "0x8888888888888888888888888888888888888888"
minL2BaseFee = 200000000
maxGasForContracts = 30000000
outputDir = "out"
`

const yamlConfig = `
chainId: 412346
parentChainId: 421614
chainName: yaml chain
batchPoster: "0x4444444444444444444444444444444444444444"
staker: "0x3333333333333333333333333333333333333333"
chainOwner: "0x5555555555555555555555555555555555555555"
networkFeeReceiver: "0x1111111111111111111111111111111111111111"
infrastructureFeeCollector: "0x2222222222222222222222222222222222222222"
rollup: "0x7777777777777777777777777777777777777777"
inbox: "0x8888888888888888888888888888888888888888"
nativeToken: "0x9999999999999999999999999999999999999999"
fundingAmount: "0.5 ether"
depositAmount: "1 ether"
`

func writeConfig(t *testing.T, fs afero.Fs, path, content string) {
	require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
}

func TestReadConfigJSON(t *testing.T) {
	fs := afero.NewMemMapFs()
	path := "config/orbitSetupScriptConfig.json"
	writeConfig(t, fs, path, jsonConfig)

	cfg, err := ReadConfig(fs, path)
	require.NoError(t, err)
	require.NoError(t, cfg.Check())

	require.Equal(t, uint64(412346), cfg.ChainID)
	require.Equal(t, uint64(421614), cfg.ParentChainID)
	require.Equal(t, "My Arbitrum L3 Chain", cfg.ChainName)
	require.Equal(t, common.HexToAddress("0x4444444444444444444444444444444444444444"), cfg.BatchPoster)
	require.Equal(t, common.HexToAddress("0xCcCCccccCCCCcCCCCCCcCcCccCcCCCcCcccccccC"), cfg.Bridge)
	require.Equal(t, uint64(100000000), cfg.MinL2BaseFee, "legacy base fee key is honored")
	require.Equal(t, common.Address{}, cfg.NativeToken)

	// defaults
	require.Equal(t, DefaultFundingAmount, *cfg.FundingAmount)
	require.Equal(t, DefaultDepositAmount, *cfg.DepositAmount)
	require.Equal(t, DefaultTokenBridgeCreator, cfg.TokenBridgeCreator)
	require.Equal(t, uint64(DefaultMaxGasForContracts), cfg.MaxGasForContracts)
	require.Equal(t, "network.json", cfg.NetworkPath())
	require.Equal(t, "outputInfo.json", cfg.OutputInfoPath())
}

func TestReadConfigTOML(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeConfig(t, fs, "setup.toml", tomlConfig)

	cfg, err := ReadConfig(fs, "setup.toml")
	require.NoError(t, err)
	require.NoError(t, cfg.Check())
	require.Equal(t, "toml chain", cfg.ChainName)
	require.Equal(t, uint64(200000000), cfg.MinL2BaseFee)
	require.Equal(t, uint64(30000000), cfg.MaxGasForContracts)
	require.Equal(t, filepath.Join("out", "network.json"), cfg.NetworkPath())
	require.Equal(t, common.HexToAddress("0x8888888888888888888888888888888888888888"), cfg.Inbox)
}

func TestReadConfigYAML(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeConfig(t, fs, "setup.yaml", yamlConfig)

	cfg, err := ReadConfig(fs, "setup.yaml")
	require.NoError(t, err)
	require.NoError(t, cfg.Check())
	require.Equal(t, "yaml chain", cfg.ChainName)
	require.NotEqual(t, common.Address{}, cfg.NativeToken)
	require.Equal(t, eth.GWei(500_000_000), *cfg.FundingAmount)
	require.Equal(t, eth.OneEther, *cfg.DepositAmount)
}

func TestReadConfigErrors(t *testing.T) {
	t.Run("missing", func(t *testing.T) {
		_, err := ReadConfig(afero.NewMemMapFs(), "nope.json")
		require.ErrorIs(t, err, ErrNoConfig)
	})

	t.Run("malformed", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		writeConfig(t, fs, "bad.json", `{"chainId": "not a number"}`)
		_, err := ReadConfig(fs, "bad.json")
		require.ErrorContains(t, err, "failed to read setup config")
	})
}

func TestConfigCheck(t *testing.T) {
	cfg := &SetupConfig{ChainID: 5, ParentChainID: 5}
	cfg.ApplyDefaults()
	err := cfg.Check()
	require.Error(t, err)

	var merr *multierror.Error
	require.True(t, errors.As(err, &merr))
	// same chain ids + seven missing addresses
	require.Len(t, merr.Errors, 8)
	require.ErrorContains(t, err, "chainId and parentChainId must differ")
	require.ErrorContains(t, err, "batchPoster must be specified")
	require.ErrorContains(t, err, "inbox must be specified")

	zero := eth.ZeroWei
	cfg = &SetupConfig{FundingAmount: &zero}
	err = cfg.Check()
	require.ErrorContains(t, err, "chainId must be specified")
	require.ErrorContains(t, err, "parentChainId must be specified")
	require.ErrorContains(t, err, "fundingAmount must be positive")
}
