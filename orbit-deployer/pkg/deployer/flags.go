package deployer

import (
	"time"

	"github.com/urfave/cli/v2"

	opservice "github.com/orbit-stack/orbit-stack/orbit-service"
	oplog "github.com/orbit-stack/orbit-stack/orbit-service/log"
)

const EnvVarPrefix = "ORBIT_DEPLOYER"

const (
	ParentRPCURLFlagName    = "parent-rpc-url"
	OrbitRPCURLFlagName     = "orbit-rpc-url"
	PrivateKeyFlagName      = "private-key"
	ConfigFlagName          = "config"
	StateFileFlagName       = "state-file"
	PollIntervalFlagName    = "poll-interval"
	MetricsTextfileFlagName = "metrics.textfile"
	YesFlagName             = "yes"
)

const (
	DefaultConfigPath   = "./config/orbitSetupScriptConfig.json"
	DefaultStatePath    = "./config/resumeState.json"
	DefaultPollInterval = 30 * time.Second
)

func PrefixEnvVar(name string, aliases ...string) []string {
	return opservice.PrefixEnvVar(EnvVarPrefix, name, aliases...)
}

var (
	ParentRPCURLFlag = &cli.StringFlag{
		Name:    ParentRPCURLFlagName,
		Usage:   "RPC URL of the parent chain the Orbit chain settles to.",
		EnvVars: PrefixEnvVar("PARENT_CHAIN_RPC", "PARENT_CHAIN_RPC", "L2_RPC_URL"),
	}
	OrbitRPCURLFlag = &cli.StringFlag{
		Name:    OrbitRPCURLFlagName,
		Usage:   "RPC URL of the Orbit chain.",
		EnvVars: PrefixEnvVar("ORBIT_RPC", "ORBIT_RPC", "L3_RPC_URL", "L4_RPC_URL"),
	}
	PrivateKeyFlag = &cli.StringFlag{
		Name:    PrivateKeyFlagName,
		Usage:   "Private key of the chain owner, hex encoded.",
		EnvVars: PrefixEnvVar("PRIVATE_KEY", "PRIVATE_KEY"),
	}
	ConfigFlag = &cli.PathFlag{
		Name:    ConfigFlagName,
		Usage:   "Setup config of the Orbit chain (.json, .toml or .yaml).",
		EnvVars: PrefixEnvVar("CONFIG"),
		Value:   DefaultConfigPath,
	}
	StateFileFlag = &cli.PathFlag{
		Name:    StateFileFlagName,
		Usage:   "File recording completed deployment steps, used to resume an interrupted deployment.",
		EnvVars: PrefixEnvVar("STATE_FILE"),
		Value:   DefaultStatePath,
	}
	PollIntervalFlag = &cli.DurationFlag{
		Name:    PollIntervalFlagName,
		Usage:   "Delay between checks while waiting for deposits and retryables.",
		EnvVars: PrefixEnvVar("POLL_INTERVAL"),
		Value:   DefaultPollInterval,
	}
	MetricsTextfileFlag = &cli.PathFlag{
		Name:    MetricsTextfileFlagName,
		Usage:   "If set, write run metrics in the Prometheus text format to this file when the run ends.",
		EnvVars: PrefixEnvVar("METRICS_TEXTFILE"),
	}
	YesFlag = &cli.BoolFlag{
		Name:    YesFlagName,
		Usage:   "Confirm deletion of the resume state.",
		EnvVars: PrefixEnvVar("YES"),
	}
)

var GlobalFlags = append([]cli.Flag{}, oplog.CLIFlags(EnvVarPrefix)...)

var ApplyFlags = []cli.Flag{
	ParentRPCURLFlag,
	OrbitRPCURLFlag,
	PrivateKeyFlag,
	ConfigFlag,
	StateFileFlag,
	PollIntervalFlag,
	MetricsTextfileFlag,
}

var StatusFlags = []cli.Flag{
	StateFileFlag,
	ConfigFlag,
}

var CleanFlags = []cli.Flag{
	StateFileFlag,
	YesFlag,
}
