package fee

import (
	"fmt"
	"math/big"
)

// GasInfo is the actual, post-confirmation cost of a transaction taken from
// its receipt. Never used pre-confirmation.
type GasInfo interface {
	// TotalCost is the full amount paid, in native smallest units.
	TotalCost() *big.Int

	isGasInfo()
}

type GenericGasInfo struct {
	GasUsed           *big.Int
	EffectiveGasPrice *big.Int
}

func (g GenericGasInfo) TotalCost() *big.Int {
	return new(big.Int).Mul(g.GasUsed, g.EffectiveGasPrice)
}

func (g GenericGasInfo) isGasInfo() {}

// L2RollupGasInfo carries the rollup receipt extension: the L1 data-posting
// fee on top of L2 execution. L1Fee is the receipt's final scaled total
// (l1GasPrice * l1GasUsed * l1FeeScalar already applied by the sequencer),
// so the combination is execution + L1Fee, never re-applying the scalar.
type L2RollupGasInfo struct {
	L1Fee       *big.Int
	L1FeeScalar string
	L1GasPrice  *big.Int
	L1GasUsed   *big.Int
	GasUsed     *big.Int
	L2GasPrice  *big.Int
}

func (g L2RollupGasInfo) TotalCost() *big.Int {
	execution := new(big.Int).Mul(g.GasUsed, g.L2GasPrice)
	return execution.Add(execution, g.L1Fee)
}

func (g L2RollupGasInfo) isGasInfo() {}

// UnexpectedGasInfo guards exhaustive switches over the GasInfo set.
func UnexpectedGasInfo(g GasInfo) error {
	return fmt.Errorf("unexpected gas info variant: %T", g)
}
