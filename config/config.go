package config

import (
	"time"

	"github.com/urfave/cli/v2"

	"github.com/walletsuite/wallet-tx-core/currency"
	"github.com/walletsuite/wallet-tx-core/flags"
)

type DBConfig struct {
	Host     string
	Port     int
	Name     string
	User     string
	Password string
}

type Config struct {
	Migrations string

	ChainRpcUrl     string
	ChainName       string
	RateOracleUrl   string
	BankProviderUrl string

	NativeCurrency  currency.CurrencyId
	DefaultCurrency currency.CurrencyId

	ReceiptPollInterval time.Duration
	FeePollInterval     time.Duration

	MasterDB DBConfig
}

func LoadConfig(ctx *cli.Context) (Config, error) {
	return NewConfig(ctx), nil
}

func NewConfig(ctx *cli.Context) Config {
	return Config{
		Migrations: ctx.String(flags.MigrationsFlag.Name),

		ChainRpcUrl:     ctx.String(flags.ChainRpcFlag.Name),
		ChainName:       ctx.String(flags.ChainNameFlag.Name),
		RateOracleUrl:   ctx.String(flags.RateOracleUrlFlag.Name),
		BankProviderUrl: ctx.String(flags.BankProviderUrlFlag.Name),

		NativeCurrency:  currency.CurrencyId(ctx.String(flags.NativeCurrencyFlag.Name)),
		DefaultCurrency: currency.CurrencyId(ctx.String(flags.DefaultCurrencyFlag.Name)),

		ReceiptPollInterval: ctx.Duration(flags.ReceiptPollIntervalFlag.Name),
		FeePollInterval:     ctx.Duration(flags.FeePollIntervalFlag.Name),

		MasterDB: DBConfig{
			Host:     ctx.String(flags.MasterDbHostFlag.Name),
			Port:     ctx.Int(flags.MasterDbPortFlag.Name),
			Name:     ctx.String(flags.MasterDbNameFlag.Name),
			User:     ctx.String(flags.MasterDbUserFlag.Name),
			Password: ctx.String(flags.MasterDbPasswordFlag.Name),
		},
	}
}
