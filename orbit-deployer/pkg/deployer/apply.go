package deployer

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/log"
	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/orbit-stack/orbit-stack/orbit-deployer/pkg/deployer/metrics"
	"github.com/orbit-stack/orbit-stack/orbit-deployer/pkg/deployer/pipeline"
	"github.com/orbit-stack/orbit-stack/orbit-deployer/pkg/deployer/state"
	"github.com/orbit-stack/orbit-stack/orbit-deployer/pkg/deployer/version"
	"github.com/orbit-stack/orbit-stack/orbit-service/clock"
	"github.com/orbit-stack/orbit-stack/orbit-service/dial"
	oplog "github.com/orbit-stack/orbit-stack/orbit-service/log"
	"github.com/orbit-stack/orbit-stack/orbit-service/tasks"
	"github.com/orbit-stack/orbit-stack/orbit-service/txmgr"
)

type ApplyConfig struct {
	ParentRPCURL string
	OrbitRPCURL  string
	PrivateKey   string
	ConfigPath   string
	StatePath    string
	PollInterval time.Duration

	Logger  log.Logger
	Metrics metrics.Metricer
	// Out receives the final notices and the waiting spinner.
	Out io.Writer
	Fs  afero.Fs
}

func (a *ApplyConfig) Check() error {
	var result *multierror.Error
	if a.ParentRPCURL == "" {
		result = multierror.Append(result, errors.New("parent chain RPC URL must be specified"))
	}
	if a.OrbitRPCURL == "" {
		result = multierror.Append(result, errors.New("orbit chain RPC URL must be specified"))
	}
	if a.PrivateKey == "" {
		result = multierror.Append(result, errors.New("private key must be specified"))
	}
	if a.ConfigPath == "" {
		result = multierror.Append(result, errors.New("config path must be specified"))
	}
	if a.StatePath == "" {
		result = multierror.Append(result, errors.New("state file path must be specified"))
	}
	if a.PollInterval <= 0 {
		result = multierror.Append(result, errors.New("poll interval must be positive"))
	}
	if a.Logger == nil {
		result = multierror.Append(result, errors.New("logger must be specified"))
	}
	return result.ErrorOrNil()
}

func ApplyCLI() func(cliCtx *cli.Context) error {
	return func(cliCtx *cli.Context) error {
		logCfg := oplog.ReadCLIConfig(cliCtx)
		if err := logCfg.Check(); err != nil {
			return fmt.Errorf("invalid log config: %w", err)
		}
		l := oplog.NewLogger(oplog.AppOut(cliCtx), logCfg)
		oplog.SetGlobalLogHandler(l.Handler())

		m := metrics.NewMetrics("default")
		m.RecordInfo(version.Version)

		err := Apply(cliCtx.Context, ApplyConfig{
			ParentRPCURL: cliCtx.String(ParentRPCURLFlagName),
			OrbitRPCURL:  cliCtx.String(OrbitRPCURLFlagName),
			PrivateKey:   cliCtx.String(PrivateKeyFlagName),
			ConfigPath:   cliCtx.Path(ConfigFlagName),
			StatePath:    cliCtx.Path(StateFileFlagName),
			PollInterval: cliCtx.Duration(PollIntervalFlagName),
			Logger:       l,
			Metrics:      m,
			Out:          cliCtx.App.ErrWriter,
			Fs:           afero.NewOsFs(),
		})

		if path := cliCtx.Path(MetricsTextfileFlagName); path != "" {
			if mErr := m.WriteTextfile(path); mErr != nil {
				l.Error("Failed to write metrics", "err", mErr)
			}
		}
		return err
	}
}

// Apply runs every deployment step not yet recorded in the state file.
// Configuration problems are reported before anything is read from or written to either chain.
func Apply(ctx context.Context, cfg ApplyConfig) error {
	if err := cfg.Check(); err != nil {
		return fmt.Errorf("invalid config for apply: %w", err)
	}
	if cfg.Fs == nil {
		cfg.Fs = afero.NewOsFs()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NoopMetrics{}
	}
	if cfg.Out == nil {
		cfg.Out = io.Discard
	}

	runID := uuid.NewString()
	lgr := cfg.Logger.New("run", runID)

	setup, err := state.ReadConfig(cfg.Fs, cfg.ConfigPath)
	if err != nil {
		return err
	}
	if err := setup.Check(); err != nil {
		return fmt.Errorf("invalid setup config %s: %w", cfg.ConfigPath, err)
	}
	key, err := ParsePrivateKey(cfg.PrivateKey)
	if err != nil {
		return err
	}
	if deployer := crypto.PubkeyToAddress(key.PublicKey); deployer != setup.ChainOwner {
		return fmt.Errorf("private key belongs to %s, but the chain owner is %s", deployer, setup.ChainOwner)
	}

	store := state.NewStore(cfg.Fs, cfg.StatePath)
	loaded, err := store.Load()
	if err != nil {
		return err
	}
	st, reset := state.Reconcile(loaded, setup.ChainID)
	if reset {
		lgr.Warn("Resume state was recorded for a different chain, starting over",
			"path", cfg.StatePath, "recordedChainId", loaded.ChainID, "chainId", setup.ChainID)
	}
	st.LastRunID = runID

	parent, orbit, err := Preflight(ctx, cfg.ParentRPCURL, cfg.OrbitRPCURL, setup)
	if err != nil {
		return err
	}
	defer parent.Close()
	defer orbit.Close()

	txCfg := txmgr.DefaultConfig()
	parentTx, err := txmgr.NewSimpleTxManager(ctx, "parent", lgr, parent.Eth, key, txCfg)
	if err != nil {
		return fmt.Errorf("failed to create parent chain tx manager: %w", err)
	}
	orbitTx, err := txmgr.NewSimpleTxManager(ctx, "orbit", lgr, orbit.Eth, key, txCfg)
	if err != nil {
		return fmt.Errorf("failed to create orbit chain tx manager: %w", err)
	}

	env := &pipeline.Env{
		Logger:       lgr,
		Config:       setup,
		Fs:           cfg.Fs,
		Out:          cfg.Out,
		ParentClient: parent.Eth,
		ChildClient:  orbit.Eth,
		ParentReader: pipeline.NewContractReader(pipeline.NewW3Caller(parent.W3)),
		ChildReader:  pipeline.NewContractReader(pipeline.NewW3Caller(orbit.W3)),
		ParentTx:     parentTx,
		ChildTx:      orbitTx,
		Waiter:       tasks.NewWaiter(clock.SystemClock, cfg.PollInterval),
	}
	return run(ctx, lgr, cfg, store, st, pipeline.Steps(env))
}

func run(ctx context.Context, lgr log.Logger, cfg ApplyConfig, store *state.Store, st *state.RunState, steps []pipeline.Step) error {
	cfg.Metrics.RecordRunStart()
	seq := pipeline.NewSequencer(lgr, store, cfg.Metrics, steps)
	results, err := seq.Run(ctx, st)
	cfg.Metrics.RecordRunOutcome(err)
	if err != nil {
		printFailure(cfg.Out, err)
		return err
	}
	printSuccess(cfg.Out, results, store.Path())
	return nil
}

// Preflight connects to both chains concurrently and checks each reports the configured chain id.
func Preflight(ctx context.Context, parentURL, orbitURL string, setup *state.SetupConfig) (parent, orbit *dial.Clients, err error) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := dial.DialClients(gctx, parentURL)
		if err != nil {
			return fmt.Errorf("failed to connect to parent chain: %w", err)
		}
		parent = c
		if err := dial.CheckChainID(gctx, c.Eth, setup.ParentChainID); err != nil {
			return fmt.Errorf("parent chain RPC does not serve parentChainId %d: %w", setup.ParentChainID, err)
		}
		return nil
	})
	g.Go(func() error {
		c, err := dial.DialClients(gctx, orbitURL)
		if err != nil {
			return fmt.Errorf("failed to connect to orbit chain: %w", err)
		}
		orbit = c
		if err := dial.CheckChainID(gctx, c.Eth, setup.ChainID); err != nil {
			return fmt.Errorf("orbit chain RPC does not serve chainId %d: %w", setup.ChainID, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		if parent != nil {
			parent.Close()
		}
		if orbit != nil {
			orbit.Close()
		}
		return nil, nil, err
	}
	return parent, orbit, nil
}

func ParsePrivateKey(s string) (*ecdsa.PrivateKey, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(s), "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return key, nil
}
