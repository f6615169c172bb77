package flags

import (
	"time"

	"github.com/urfave/cli/v2"
)

const envVarPrefix = "WALLET_TX_CORE"

func prefixEnvVars(name string) []string {
	return []string{envVarPrefix + "_" + name}
}

var (
	MigrationsFlag = &cli.StringFlag{
		Name:    "migrations-dir",
		Usage:   "path to migrations folder",
		EnvVars: prefixEnvVars("MIGRATIONS_DIR"),
		Value:   "./migrations",
	}
	ChainRpcFlag = &cli.StringFlag{
		Name:     "chain-rpc",
		Usage:    "HTTP endpoint of the chain json-rpc node",
		EnvVars:  prefixEnvVars("CHAIN_RPC"),
		Required: true,
	}
	ChainNameFlag = &cli.StringFlag{
		Name:     "chain-name",
		Usage:    "human readable chain name used in logs and errors",
		EnvVars:  prefixEnvVars("CHAIN_NAME"),
		Required: true,
	}
	RateOracleUrlFlag = &cli.StringFlag{
		Name:     "rate-oracle-url",
		Usage:    "base url of the exchange rate oracle",
		EnvVars:  prefixEnvVars("RATE_ORACLE_URL"),
		Required: true,
	}
	BankProviderUrlFlag = &cli.StringFlag{
		Name:    "bank-provider-url",
		Usage:   "base url of the bank transfer provider",
		EnvVars: prefixEnvVars("BANK_PROVIDER_URL"),
	}
	NativeCurrencyFlag = &cli.StringFlag{
		Name:     "native-currency",
		Usage:    "currency id of the chain native currency",
		EnvVars:  prefixEnvVars("NATIVE_CURRENCY"),
		Required: true,
	}
	DefaultCurrencyFlag = &cli.StringFlag{
		Name:    "default-currency",
		Usage:   "fiat currency id fees are displayed in",
		EnvVars: prefixEnvVars("DEFAULT_CURRENCY"),
		Value:   "usd",
	}
	ReceiptPollIntervalFlag = &cli.DurationFlag{
		Name:    "receipt-poll-interval",
		Usage:   "interval between receipt polls for pending transactions",
		EnvVars: prefixEnvVars("RECEIPT_POLL_INTERVAL"),
		Value:   5 * time.Second,
	}
	FeePollIntervalFlag = &cli.DurationFlag{
		Name:    "fee-poll-interval",
		Usage:   "interval between fee forecast refreshes",
		EnvVars: prefixEnvVars("FEE_POLL_INTERVAL"),
		Value:   15 * time.Second,
	}

	// MasterDbHostFlag set of db flags
	MasterDbHostFlag = &cli.StringFlag{
		Name:     "master-db-host",
		Usage:    "the host of the master database",
		EnvVars:  prefixEnvVars("MASTER_DB_HOST"),
		Required: true,
	}
	MasterDbPortFlag = &cli.IntFlag{
		Name:     "master-db-port",
		Usage:    "the port of the master database",
		EnvVars:  prefixEnvVars("MASTER_DB_PORT"),
		Required: true,
	}
	MasterDbUserFlag = &cli.StringFlag{
		Name:     "master-db-user",
		Usage:    "the user of the master database",
		EnvVars:  prefixEnvVars("MASTER_DB_USER"),
		Required: true,
	}
	MasterDbPasswordFlag = &cli.StringFlag{
		Name:     "master-db-password",
		Usage:    "the password of the master database",
		EnvVars:  prefixEnvVars("MASTER_DB_PASSWORD"),
		Required: true,
	}
	MasterDbNameFlag = &cli.StringFlag{
		Name:     "master-db-name",
		Usage:    "the name of the master database",
		EnvVars:  prefixEnvVars("MASTER_DB_NAME"),
		Required: true,
	}
)

var requiredFlags = []cli.Flag{
	ChainRpcFlag,
	ChainNameFlag,
	RateOracleUrlFlag,
	NativeCurrencyFlag,
	MasterDbHostFlag,
	MasterDbPortFlag,
	MasterDbUserFlag,
	MasterDbPasswordFlag,
	MasterDbNameFlag,
}

var optionalFlags = []cli.Flag{
	MigrationsFlag,
	BankProviderUrlFlag,
	DefaultCurrencyFlag,
	ReceiptPollIntervalFlag,
	FeePollIntervalFlag,
}

func init() {
	Flags = append(requiredFlags, optionalFlags...)
}

// Flags contains the list of configuration options available to the binary.
var Flags []cli.Flag
