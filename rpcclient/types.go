package rpcclient

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"

	"github.com/walletsuite/wallet-tx-core/fee"
)

// Transaction is the subset of eth_getTransactionByHash the tracker needs.
type Transaction struct {
	Hash        common.Hash
	From        common.Address
	To          *common.Address
	Value       *big.Int
	GasPrice    *big.Int
	BlockNumber *big.Int // nil while pending
}

type transactionDTO struct {
	Hash        *common.Hash    `json:"hash"`
	From        *common.Address `json:"from"`
	To          *common.Address `json:"to"`
	Value       *hexutil.Big    `json:"value"`
	GasPrice    *hexutil.Big    `json:"gasPrice"`
	BlockNumber *hexutil.Big    `json:"blockNumber"`
}

func (dto *transactionDTO) toTransaction() (*Transaction, error) {
	if dto.Hash == nil || dto.From == nil || dto.Value == nil {
		return nil, &ParseError{Method: "eth_getTransactionByHash", Err: errors.New("missing required transaction fields")}
	}
	tx := &Transaction{
		Hash:  *dto.Hash,
		From:  *dto.From,
		To:    dto.To,
		Value: dto.Value.ToInt(),
	}
	if dto.GasPrice != nil {
		tx.GasPrice = dto.GasPrice.ToInt()
	}
	if dto.BlockNumber != nil {
		tx.BlockNumber = dto.BlockNumber.ToInt()
	}
	return tx, nil
}

const (
	ReceiptStatusSuccess = 1
	ReceiptStatusFailed  = 0
)

// Receipt is a confirmed transaction outcome, including the rollup L1 fee
// extension emitted by OP-stack style chains.
type Receipt struct {
	TxHash            common.Hash
	Status            uint64
	BlockNumber       *big.Int
	GasUsed           *big.Int
	EffectiveGasPrice *big.Int

	// rollup extension, nil on L1 chains
	L1Fee       *big.Int
	L1GasPrice  *big.Int
	L1GasUsed   *big.Int
	L1FeeScalar string
}

type receiptDTO struct {
	TransactionHash   *common.Hash    `json:"transactionHash"`
	Status            *hexutil.Uint64 `json:"status"`
	BlockNumber       *hexutil.Big    `json:"blockNumber"`
	GasUsed           *hexutil.Uint64 `json:"gasUsed"`
	EffectiveGasPrice *hexutil.Big    `json:"effectiveGasPrice"`
	L1Fee             *hexutil.Big    `json:"l1Fee"`
	L1GasPrice        *hexutil.Big    `json:"l1GasPrice"`
	L1GasUsed         *hexutil.Big    `json:"l1GasUsed"`
	L1FeeScalar       string          `json:"l1FeeScalar"`
}

func (dto *receiptDTO) toReceipt() (*Receipt, error) {
	if dto.TransactionHash == nil || dto.Status == nil || dto.GasUsed == nil || dto.EffectiveGasPrice == nil {
		return nil, &ParseError{Method: "eth_getTransactionReceipt", Err: errors.New("missing required receipt fields")}
	}
	r := &Receipt{
		TxHash:            *dto.TransactionHash,
		Status:            uint64(*dto.Status),
		GasUsed:           new(big.Int).SetUint64(uint64(*dto.GasUsed)),
		EffectiveGasPrice: dto.EffectiveGasPrice.ToInt(),
		L1FeeScalar:       dto.L1FeeScalar,
	}
	if dto.BlockNumber != nil {
		r.BlockNumber = dto.BlockNumber.ToInt()
	}
	if dto.L1Fee != nil {
		r.L1Fee = dto.L1Fee.ToInt()
	}
	if dto.L1GasPrice != nil {
		r.L1GasPrice = dto.L1GasPrice.ToInt()
	}
	if dto.L1GasUsed != nil {
		r.L1GasUsed = dto.L1GasUsed.ToInt()
	}
	return r, nil
}

// GasInfo converts the receipt into the post-confirmation cost model. The
// presence of the L1 fee discriminates the rollup shape.
func (r *Receipt) GasInfo() fee.GasInfo {
	if r.L1Fee != nil {
		return fee.L2RollupGasInfo{
			L1Fee:       r.L1Fee,
			L1FeeScalar: r.L1FeeScalar,
			L1GasPrice:  r.L1GasPrice,
			L1GasUsed:   r.L1GasUsed,
			GasUsed:     r.GasUsed,
			L2GasPrice:  r.EffectiveGasPrice,
		}
	}
	return fee.GenericGasInfo{
		GasUsed:           r.GasUsed,
		EffectiveGasPrice: r.EffectiveGasPrice,
	}
}
