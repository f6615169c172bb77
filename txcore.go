package txcore

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/log"
	"github.com/pkg/errors"

	"github.com/walletsuite/wallet-tx-core/banktransfer"
	"github.com/walletsuite/wallet-tx-core/common/clock"
	"github.com/walletsuite/wallet-tx-core/config"
	"github.com/walletsuite/wallet-tx-core/database"
	"github.com/walletsuite/wallet-tx-core/fee"
	"github.com/walletsuite/wallet-tx-core/oracle"
	"github.com/walletsuite/wallet-tx-core/pollable"
	"github.com/walletsuite/wallet-tx-core/rpcclient"
	"github.com/walletsuite/wallet-tx-core/tracker"
)

// defaultGasLimit is the forecast gas limit before a concrete transaction
// request pins its own; a plain value transfer.
const defaultGasLimit = 21_000

// TxCore wires the chain client, the rate oracle, the transaction watcher
// and the fee forecast poller into one service.
type TxCore struct {
	cfg *config.Config

	db          *database.DB
	chainClient *rpcclient.ChainClient

	Watcher    *tracker.Watcher
	FeePoller  *pollable.Poller[rpcclient.ForecastParams, fee.Forecast]
	RateSource *oracle.NativeRateSource

	shutdown context.CancelCauseFunc
	stopped  atomic.Bool
}

func NewTxCore(ctx context.Context, cfg *config.Config, shutdown context.CancelCauseFunc) (*TxCore, error) {
	db, err := database.NewDB(ctx, cfg.MasterDB)
	if err != nil {
		log.Error("failed to connect to database", "err", err)
		return nil, err
	}

	chainClient, err := rpcclient.NewChainClient(cfg.ChainRpcUrl, cfg.ChainName)
	if err != nil {
		log.Error("failed to create chain client", "chain", cfg.ChainName, "err", err)
		return nil, err
	}

	oracleClient, err := oracle.NewClient(cfg.RateOracleUrl)
	if err != nil {
		log.Error("failed to create rate oracle client", "err", err)
		return nil, err
	}

	systemClock := clock.SystemClock
	rateSource := oracle.NewNativeRateSource(oracleClient, db.Tokens, systemClock, cfg.NativeCurrency, cfg.DefaultCurrency)

	forecastFetcher := rpcclient.NewForecastFetcher(chainClient, rateSource)
	feePoller := pollable.NewPoller[rpcclient.ForecastParams, fee.Forecast](forecastFetcher.Fetch, systemClock)

	watcher := tracker.NewWatcher(chainClient, db.SubmittedTransactions, systemClock, cfg.ReceiptPollInterval, shutdown)

	return &TxCore{
		cfg:         cfg,
		db:          db,
		chainClient: chainClient,
		Watcher:     watcher,
		FeePoller:   feePoller,
		RateSource:  rateSource,
		shutdown:    shutdown,
	}, nil
}

func (t *TxCore) Start(ctx context.Context) error {
	log.Info("starting wallet tx core", "chain", t.cfg.ChainName)
	if err := t.Watcher.Start(); err != nil {
		return fmt.Errorf("failed to start transaction watcher: %w", err)
	}

	t.FeePoller.Load(ctx, rpcclient.ForecastParams{
		GasLimit:       defaultGasLimit,
		NativeCurrency: t.cfg.NativeCurrency,
	})
	t.FeePoller.StartPolling(ctx, t.cfg.FeePollInterval)
	return nil
}

func (t *TxCore) Stop(ctx context.Context) error {
	log.Info("stopping wallet tx core")
	var result error
	t.FeePoller.Close()
	if err := t.Watcher.Close(); err != nil {
		result = fmt.Errorf("failed to close transaction watcher: %w", err)
	}
	if err := t.db.Close(); err != nil {
		result = fmt.Errorf("failed to close database: %w", err)
	}
	t.stopped.Store(true)
	log.Info("wallet tx core stopped")
	return result
}

func (t *TxCore) Stopped() bool {
	return t.stopped.Load()
}

// BankTransferClient builds a provider client bound to one user session.
// Session ids are per user, so clients are built on demand rather than held
// by the service.
func (t *TxCore) BankTransferClient(sessionId string) (*banktransfer.Client, error) {
	if t.cfg.BankProviderUrl == "" {
		return nil, errors.New("bank transfer provider is not configured")
	}
	return banktransfer.NewClient(t.cfg.BankProviderUrl, sessionId)
}
