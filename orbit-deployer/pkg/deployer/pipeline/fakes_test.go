package pipeline

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/log"
	"github.com/spf13/afero"

	"github.com/orbit-stack/orbit-stack/orbit-deployer/pkg/deployer/state"
	"github.com/orbit-stack/orbit-stack/orbit-service/clock"
	"github.com/orbit-stack/orbit-stack/orbit-service/tasks"
	"github.com/orbit-stack/orbit-stack/orbit-service/testlog"
	"github.com/orbit-stack/orbit-stack/orbit-service/txmgr"
)

var (
	deployerAddr = common.HexToAddress("0xde9107e7")
	executorAddr = common.HexToAddress("0xe8ec")
	// upgrade executor of the rollup on the parent chain, owner of the parent router
	parentExecutor = common.HexToAddress("0x9e8ec")
	nativeTokenAdr = common.HexToAddress("0x70ce")
)

type fakeTxManager struct {
	mu      sync.Mutex
	from    common.Address
	chainID *big.Int
	sent    []txmgr.TxCandidate
	err     error
	onSend  func(c txmgr.TxCandidate)
}

func (f *fakeTxManager) Send(_ context.Context, c txmgr.TxCandidate) (*types.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, c)
	if f.onSend != nil {
		f.onSend(c)
	}
	return &types.Receipt{
		Status:      types.ReceiptStatusSuccessful,
		TxHash:      common.BigToHash(big.NewInt(int64(len(f.sent)))),
		BlockNumber: big.NewInt(100),
	}, nil
}

func (f *fakeTxManager) From() common.Address {
	return f.from
}

func (f *fakeTxManager) ChainID() *big.Int {
	return f.chainID
}

// fakeChainClient answers balance queries from per-account sequences.
// The last value of a sequence repeats.
type fakeChainClient struct {
	mu          sync.Mutex
	balances    map[common.Address][]*big.Int
	balanceErr  error
	codes       map[common.Address][]byte
	gasPrice    *big.Int
	balanceCall map[common.Address]int
	gasEstimate uint64
	estimated   []ethereum.CallMsg
}

func newFakeChainClient() *fakeChainClient {
	return &fakeChainClient{
		balances:    make(map[common.Address][]*big.Int),
		codes:       make(map[common.Address][]byte),
		gasPrice:    big.NewInt(1_000_000_000),
		balanceCall: make(map[common.Address]int),
		gasEstimate: 50_000,
	}
}

func (f *fakeChainClient) setBalance(addr common.Address, seq ...*big.Int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.balances[addr] = seq
}

func (f *fakeChainClient) BalanceAt(_ context.Context, account common.Address, _ *big.Int) (*big.Int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.balanceErr != nil {
		return nil, f.balanceErr
	}
	seq := f.balances[account]
	if len(seq) == 0 {
		return new(big.Int), nil
	}
	i := f.balanceCall[account]
	f.balanceCall[account]++
	if i >= len(seq) {
		i = len(seq) - 1
	}
	return new(big.Int).Set(seq[i]), nil
}

func (f *fakeChainClient) CodeAt(_ context.Context, account common.Address, _ *big.Int) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.codes[account], nil
}

func (f *fakeChainClient) SuggestGasPrice(context.Context) (*big.Int, error) {
	return new(big.Int).Set(f.gasPrice), nil
}

func (f *fakeChainClient) EstimateGas(_ context.Context, msg ethereum.CallMsg) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.estimated = append(f.estimated, msg)
	return f.gasEstimate, nil
}

type fakeReader struct {
	mu             sync.Mutex
	bridge         common.Address
	nativeToken    common.Address
	nativeTokenErr error
	confirmPeriod  uint64
	decimals       uint8
	allowance      *big.Int
	deployment     state.TokenBridgeDeployment
	owners         map[common.Address]bool
	routerOwner    common.Address
	gateways       map[[2]common.Address]common.Address
	submissionFee  *big.Int
}

func (f *fakeReader) RollupBridge(context.Context, common.Address) (common.Address, error) {
	return f.bridge, nil
}

func (f *fakeReader) BridgeNativeToken(context.Context, common.Address) (common.Address, error) {
	return f.nativeToken, f.nativeTokenErr
}

func (f *fakeReader) ConfirmPeriodBlocks(context.Context, common.Address) (uint64, error) {
	return f.confirmPeriod, nil
}

func (f *fakeReader) Decimals(context.Context, common.Address) (uint8, error) {
	return f.decimals, nil
}

func (f *fakeReader) Allowance(context.Context, common.Address, common.Address, common.Address) (*big.Int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.allowance == nil {
		return new(big.Int), nil
	}
	return new(big.Int).Set(f.allowance), nil
}

func (f *fakeReader) TokenBridgeDeployment(context.Context, common.Address, common.Address) (state.TokenBridgeDeployment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.deployment, nil
}

func (f *fakeReader) setDeployment(d state.TokenBridgeDeployment) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deployment = d
}

func (f *fakeReader) IsChainOwner(_ context.Context, addr common.Address) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.owners[addr], nil
}

func (f *fakeReader) setOwner(addr common.Address, owner bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.owners == nil {
		f.owners = make(map[common.Address]bool)
	}
	f.owners[addr] = owner
}

type testSetup struct {
	env          *Env
	cfg          *state.SetupConfig
	fs           afero.Fs
	clock        *clock.SimulatedClock
	parentClient *fakeChainClient
	childClient  *fakeChainClient
	parentReader *fakeReader
	childReader  *fakeReader
	parentTx     *fakeTxManager
	childTx      *fakeTxManager
}

func testConfig() *state.SetupConfig {
	cfg := &state.SetupConfig{
		ChainID:                    412346,
		ParentChainID:              421614,
		ChainName:                  "test orbit",
		BatchPoster:                common.HexToAddress("0xba7c4"),
		Staker:                     common.HexToAddress("0x57a4e"),
		ChainOwner:                 deployerAddr,
		NetworkFeeReceiver:         common.HexToAddress("0xfee1"),
		InfrastructureFeeCollector: common.HexToAddress("0xfee2"),
		Rollup:                     common.HexToAddress("0x4011"),
		Inbox:                      common.HexToAddress("0x1b0c"),
		Outbox:                     common.HexToAddress("0x0b0c"),
		SequencerInbox:             common.HexToAddress("0x5e01"),
		Bridge:                     common.HexToAddress("0xb41d"),
		MinL2BaseFee:               100_000_000,
	}
	cfg.ApplyDefaults()
	return cfg
}

func newTestSetup(t *testing.T, lgr log.Logger) *testSetup {
	if lgr == nil {
		lgr = testlog.Logger(t, log.LevelDebug)
	}
	s := &testSetup{
		cfg:          testConfig(),
		fs:           afero.NewMemMapFs(),
		clock:        clock.NewSimulatedClock(time.Unix(1_700_000_000, 0)),
		parentClient: newFakeChainClient(),
		childClient:  newFakeChainClient(),
		parentReader: &fakeReader{bridge: common.HexToAddress("0xb41d"), nativeTokenErr: errors.New("execution reverted"), confirmPeriod: 150, decimals: 18, routerOwner: parentExecutor},
		childReader:  &fakeReader{},
		parentTx:     &fakeTxManager{from: deployerAddr, chainID: big.NewInt(421614)},
		childTx:      &fakeTxManager{from: deployerAddr, chainID: big.NewInt(412346)},
	}
	s.env = &Env{
		Logger:       lgr,
		Config:       s.cfg,
		Fs:           s.fs,
		ParentClient: s.parentClient,
		ChildClient:  s.childClient,
		ParentReader: s.parentReader,
		ChildReader:  s.childReader,
		ParentTx:     s.parentTx,
		ChildTx:      s.childTx,
		Waiter:       tasks.NewWaiter(s.clock, 30*time.Second),
	}
	return s
}

func ether(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1e18))
}

func milliEther(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1e15))
}

// hookClock runs onSleep before every simulated sleep, letting a test change the
// fake chains between polls.
type hookClock struct {
	*clock.SimulatedClock
	onSleep func()
}

func (h *hookClock) After(d time.Duration) <-chan time.Time {
	h.onSleep()
	return h.SimulatedClock.After(d)
}

func (f *fakeReader) Owner(context.Context, common.Address) (common.Address, error) {
	return f.routerOwner, nil
}

func (f *fakeReader) GatewayFor(_ context.Context, router, l1Token common.Address) (common.Address, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.gateways[[2]common.Address{router, l1Token}], nil
}

func (f *fakeReader) setGateway(router, l1Token, gateway common.Address) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.gateways == nil {
		f.gateways = make(map[[2]common.Address]common.Address)
	}
	f.gateways[[2]common.Address{router, l1Token}] = gateway
}

func (f *fakeReader) RetryableSubmissionFee(context.Context, common.Address, int, *big.Int) (*big.Int, error) {
	if f.submissionFee == nil {
		return new(big.Int), nil
	}
	return new(big.Int).Set(f.submissionFee), nil
}
