package state

import (
	"encoding/json"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func testDeployment() TokenBridgeDeployment {
	return TokenBridgeDeployment{
		Parent: TokenBridgeContracts{
			Router:          common.HexToAddress("0xa1"),
			StandardGateway: common.HexToAddress("0xa2"),
			CustomGateway:   common.HexToAddress("0xa3"),
			WethGateway:     common.HexToAddress("0xa4"),
			Weth:            common.HexToAddress("0xa5"),
		},
		Child: TokenBridgeContracts{
			Router:             common.HexToAddress("0xb1"),
			StandardGateway:    common.HexToAddress("0xb2"),
			CustomGateway:      common.HexToAddress("0xb3"),
			WethGateway:        common.HexToAddress("0xb4"),
			Weth:               common.HexToAddress("0xb5"),
			ProxyAdmin:         common.HexToAddress("0xb6"),
			BeaconProxyFactory: common.HexToAddress("0xb7"),
			UpgradeExecutor:    common.HexToAddress("0xb8"),
			Multicall:          common.HexToAddress("0xb9"),
		},
	}
}

func TestTokenBridgeDeployed(t *testing.T) {
	require.False(t, TokenBridgeDeployment{}.Deployed())
	require.True(t, testDeployment().Deployed())
}

func TestWriteArtifacts(t *testing.T) {
	fs := afero.NewMemMapFs()
	cfg := &SetupConfig{
		ChainID:       412346,
		ParentChainID: 421614,
		ChainName:     "test chain",
		Rollup:        common.HexToAddress("0x77"),
		Inbox:         common.HexToAddress("0x88"),
		Bridge:        common.HexToAddress("0xcc"),
		OutputDir:     "artifacts",
	}
	cfg.ApplyDefaults()
	d := testDeployment()
	bridge := common.HexToAddress("0xcd")

	require.NoError(t, WriteArtifacts(fs, cfg, NewNetworkFile(cfg, bridge, 150, d), NewOutputInfo(cfg, d)))

	var network map[string]map[string]any
	require.NoError(t, ReadJSONFile(fs, "artifacts/network.json", &network))
	orbit := network["l3Network"]
	require.EqualValues(t, 412346, orbit["chainID"])
	require.EqualValues(t, 150, orbit["confirmPeriodBlocks"])
	require.EqualValues(t, 421614, orbit["partnerChainID"])
	require.Equal(t, "test chain", orbit["name"])
	ethBridge := orbit["ethBridge"].(map[string]any)
	require.Equal(t, bridge.Hex(), common.HexToAddress(ethBridge["bridge"].(string)).Hex())
	tokenBridge := orbit["tokenBridge"].(map[string]any)
	require.Equal(t, d.Parent.Router, common.HexToAddress(tokenBridge["l1GatewayRouter"].(string)))
	require.Equal(t, d.Child.Router, common.HexToAddress(tokenBridge["l2GatewayRouter"].(string)))
	require.EqualValues(t, 421614, network["l2Network"]["chainID"])

	var info OutputInfo
	require.NoError(t, ReadJSONFile(fs, "artifacts/outputInfo.json", &info))
	require.Equal(t, *NewOutputInfo(cfg, d), info)
	require.Equal(t, DefaultChildRPCURL, info.ChainInfo.RPCURL)

	raw, err := afero.ReadFile(fs, "artifacts/outputInfo.json")
	require.NoError(t, err)
	var keys map[string]map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &keys))
	require.Contains(t, keys["tokenBridgeContracts"], "l2Contracts")
	require.Contains(t, keys["tokenBridgeContracts"], "l3Contracts")
}
