package cliapp

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/walletsuite/wallet-tx-core/common/opio"
)

// Lifecycle is a long-running service started by a CLI command: Start kicks
// off background work and returns, Stop shuts it down gracefully.
type Lifecycle interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Stopped() bool
}

// LifecycleCmd turns a Lifecycle constructor into a cli action that runs the
// service until interrupted, then stops it with the interrupt-free context.
func LifecycleCmd(fn func(ctx *cli.Context, shutdown context.CancelCauseFunc) (Lifecycle, error)) cli.ActionFunc {
	return func(ctx *cli.Context) error {
		hostCtx, stop := context.WithCancelCause(ctx.Context)
		appCtx, appCancel := opio.WithSignalWaiterMain(hostCtx)
		defer appCancel()

		appLifecycle, err := fn(ctx, stop)
		if err != nil {
			stop(err)
			return fmt.Errorf("failed to setup: %w", err)
		}

		if err := appLifecycle.Start(appCtx); err != nil {
			stop(err)
			return fmt.Errorf("failed to start: %w", err)
		}

		// wait for interrupt or internal shutdown
		<-appCtx.Done()

		stopCtx := context.Background()
		if err := appLifecycle.Stop(stopCtx); err != nil {
			return fmt.Errorf("failed to stop: %w", err)
		}

		if cause := context.Cause(hostCtx); cause != nil && cause != context.Canceled {
			return cause
		}
		return nil
	}
}
