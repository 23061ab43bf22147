package pipeline

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/lmittmann/w3"
	w3eth "github.com/lmittmann/w3/module/eth"
	"github.com/lmittmann/w3/w3types"

	"github.com/orbit-stack/orbit-stack/orbit-deployer/pkg/deployer/state"
)

var (
	// ArbOwner and ArbOwnerPublic precompiles on every Arbitrum chain.
	ArbOwnerAddress       = common.HexToAddress("0x0000000000000000000000000000000000000070")
	ArbOwnerPublicAddress = common.HexToAddress("0x000000000000000000000000000000000000006b")
)

var (
	rollupBridgeFunc        = w3.MustNewFunc("bridge()", "address")
	bridgeNativeTokenFunc   = w3.MustNewFunc("nativeToken()", "address")
	confirmPeriodBlocksFunc = w3.MustNewFunc("confirmPeriodBlocks()", "uint64")

	decimalsFunc  = w3.MustNewFunc("decimals()", "uint8")
	allowanceFunc = w3.MustNewFunc("allowance(address owner, address spender)", "uint256")
	approveFunc   = w3.MustNewFunc("approve(address spender, uint256 amount)", "bool")

	depositEthFunc   = w3.MustNewFunc("depositEth()", "uint256")
	depositERC20Func = w3.MustNewFunc("depositERC20(uint256 amount)", "uint256")

	createTokenBridgeFunc   = w3.MustNewFunc("createTokenBridge(address inbox, address rollupOwner, uint256 maxGasForContracts, uint256 gasPriceBid)", "")
	inboxToL1DeploymentFunc = w3.MustNewFunc("inboxToL1Deployment(address inbox)",
		"address router, address standardGateway, address customGateway, address wethGateway, address weth")
	inboxToL2DeploymentFunc = w3.MustNewFunc("inboxToL2Deployment(address inbox)",
		"address router, address standardGateway, address customGateway, address wethGateway, address weth, address proxyAdmin, address beaconProxyFactory, address upgradeExecutor, address multicall")

	ownerFunc                  = w3.MustNewFunc("owner()", "address")
	l1TokenToGatewayFunc       = w3.MustNewFunc("l1TokenToGateway(address l1Token)", "address")
	setGatewaysFunc            = w3.MustNewFunc("setGateways(address[] token, address[] gateway, uint256 maxGas, uint256 gasPriceBid, uint256 maxSubmissionCost)", "uint256")
	setGatewayFunc             = w3.MustNewFunc("setGateway(address[] l1Token, address[] gateway)", "")
	executeCallFunc            = w3.MustNewFunc("executeCall(address target, bytes targetCallData)", "")
	retryableSubmissionFeeFunc = w3.MustNewFunc("calculateRetryableSubmissionFee(uint256 dataLength, uint256 baseFee)", "uint256")

	setMinimumL2BaseFeeFunc  = w3.MustNewFunc("setMinimumL2BaseFee(uint256 priceInWei)", "")
	setNetworkFeeAccountFunc = w3.MustNewFunc("setNetworkFeeAccount(address newNetworkFeeAccount)", "")
	setInfraFeeAccountFunc   = w3.MustNewFunc("setInfraFeeAccount(address newInfraFeeAccount)", "")
	setL1PricePerUnitFunc    = w3.MustNewFunc("setL1PricePerUnit(uint256 pricePerUnit)", "")
	addChainOwnerFunc        = w3.MustNewFunc("addChainOwner(address newOwner)", "")
	removeChainOwnerFunc     = w3.MustNewFunc("removeChainOwner(address ownerToRemove)", "")
	isChainOwnerFunc         = w3.MustNewFunc("isChainOwner(address addr)", "bool")
)

// Reader reads the contract state the stages depend on.
type Reader interface {
	RollupBridge(ctx context.Context, rollup common.Address) (common.Address, error)
	BridgeNativeToken(ctx context.Context, bridge common.Address) (common.Address, error)
	ConfirmPeriodBlocks(ctx context.Context, rollup common.Address) (uint64, error)
	Decimals(ctx context.Context, token common.Address) (uint8, error)
	Allowance(ctx context.Context, token, owner, spender common.Address) (*big.Int, error)
	TokenBridgeDeployment(ctx context.Context, creator, inbox common.Address) (state.TokenBridgeDeployment, error)
	IsChainOwner(ctx context.Context, addr common.Address) (bool, error)
	Owner(ctx context.Context, contract common.Address) (common.Address, error)
	// GatewayFor returns the gateway a router has registered for a parent chain token.
	GatewayFor(ctx context.Context, router, l1Token common.Address) (common.Address, error)
	RetryableSubmissionFee(ctx context.Context, inbox common.Address, dataLength int, baseFee *big.Int) (*big.Int, error)
}

// Caller executes a read-only call against the latest block.
type Caller interface {
	Call(ctx context.Context, to common.Address, input []byte) ([]byte, error)
}

// W3Caller performs calls through a w3 client.
type W3Caller struct {
	client *w3.Client
}

func NewW3Caller(client *w3.Client) *W3Caller {
	return &W3Caller{client: client}
}

func (c *W3Caller) Call(ctx context.Context, to common.Address, input []byte) ([]byte, error) {
	var out []byte
	if err := c.client.CallCtx(ctx, w3eth.Call(&w3types.Message{To: &to, Input: input}, nil, nil).Returns(&out)); err != nil {
		return nil, err
	}
	return out, nil
}

type ContractReader struct {
	caller Caller
}

var _ Reader = (*ContractReader)(nil)

func NewContractReader(caller Caller) *ContractReader {
	return &ContractReader{caller: caller}
}

func (r *ContractReader) call(ctx context.Context, to common.Address, fn *w3.Func, args []any, returns ...any) error {
	input, err := fn.EncodeArgs(args...)
	if err != nil {
		return fmt.Errorf("failed to encode call to %s: %w", fn.Signature, err)
	}
	out, err := r.caller.Call(ctx, to, input)
	if err != nil {
		return fmt.Errorf("failed to call %s on %s: %w", fn.Signature, to, err)
	}
	if err := fn.DecodeReturns(out, returns...); err != nil {
		return fmt.Errorf("failed to decode result of %s on %s: %w", fn.Signature, to, err)
	}
	return nil
}

func (r *ContractReader) RollupBridge(ctx context.Context, rollup common.Address) (common.Address, error) {
	var bridge common.Address
	err := r.call(ctx, rollup, rollupBridgeFunc, nil, &bridge)
	return bridge, err
}

func (r *ContractReader) BridgeNativeToken(ctx context.Context, bridge common.Address) (common.Address, error) {
	var token common.Address
	err := r.call(ctx, bridge, bridgeNativeTokenFunc, nil, &token)
	return token, err
}

func (r *ContractReader) ConfirmPeriodBlocks(ctx context.Context, rollup common.Address) (uint64, error) {
	var blocks uint64
	err := r.call(ctx, rollup, confirmPeriodBlocksFunc, nil, &blocks)
	return blocks, err
}

func (r *ContractReader) Decimals(ctx context.Context, token common.Address) (uint8, error) {
	var decimals uint8
	err := r.call(ctx, token, decimalsFunc, nil, &decimals)
	return decimals, err
}

func (r *ContractReader) Allowance(ctx context.Context, token, owner, spender common.Address) (*big.Int, error) {
	allowance := new(big.Int)
	err := r.call(ctx, token, allowanceFunc, []any{owner, spender}, &allowance)
	return allowance, err
}

func (r *ContractReader) TokenBridgeDeployment(ctx context.Context, creator, inbox common.Address) (state.TokenBridgeDeployment, error) {
	var d state.TokenBridgeDeployment
	p := &d.Parent
	if err := r.call(ctx, creator, inboxToL1DeploymentFunc, []any{inbox},
		&p.Router, &p.StandardGateway, &p.CustomGateway, &p.WethGateway, &p.Weth); err != nil {
		return d, err
	}
	c := &d.Child
	if err := r.call(ctx, creator, inboxToL2DeploymentFunc, []any{inbox},
		&c.Router, &c.StandardGateway, &c.CustomGateway, &c.WethGateway, &c.Weth,
		&c.ProxyAdmin, &c.BeaconProxyFactory, &c.UpgradeExecutor, &c.Multicall); err != nil {
		return d, err
	}
	return d, nil
}

func (r *ContractReader) IsChainOwner(ctx context.Context, addr common.Address) (bool, error) {
	var owner bool
	err := r.call(ctx, ArbOwnerPublicAddress, isChainOwnerFunc, []any{addr}, &owner)
	return owner, err
}

func (r *ContractReader) Owner(ctx context.Context, contract common.Address) (common.Address, error) {
	var owner common.Address
	err := r.call(ctx, contract, ownerFunc, nil, &owner)
	return owner, err
}

func (r *ContractReader) GatewayFor(ctx context.Context, router, l1Token common.Address) (common.Address, error) {
	var gateway common.Address
	err := r.call(ctx, router, l1TokenToGatewayFunc, []any{l1Token}, &gateway)
	return gateway, err
}

func (r *ContractReader) RetryableSubmissionFee(ctx context.Context, inbox common.Address, dataLength int, baseFee *big.Int) (*big.Int, error) {
	fee := new(big.Int)
	err := r.call(ctx, inbox, retryableSubmissionFeeFunc, []any{big.NewInt(int64(dataLength)), baseFee}, &fee)
	return fee, err
}
