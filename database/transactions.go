package database

import (
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/walletsuite/wallet-tx-core/fee"
	"github.com/walletsuite/wallet-tx-core/tracker"
)

const (
	gasKindNone     = ""
	gasKindGeneric  = "generic"
	gasKindL2Rollup = "l2_rollup"
)

// SubmittedTransactions is the persisted snapshot of one tracked transaction.
// The gas columns flatten both gas info shapes; GasKind discriminates which
// one the row carries.
type SubmittedTransactions struct {
	GUID     uuid.UUID   `gorm:"primaryKey;type:uuid"`
	Hash     common.Hash `gorm:"serializer:bytes;uniqueIndex" json:"hash"`
	State    string      `json:"state"`
	QueuedAt uint64      `json:"queued_at"`

	GasKind           string   `json:"gas_kind"`
	GasUsed           *big.Int `gorm:"serializer:u256" json:"gas_used"`
	EffectiveGasPrice *big.Int `gorm:"serializer:u256" json:"effective_gas_price"`
	L2GasPrice        *big.Int `gorm:"serializer:u256" json:"l2_gas_price"`
	L1Fee             *big.Int `gorm:"serializer:u256" json:"l1_fee"`
	L1GasPrice        *big.Int `gorm:"serializer:u256" json:"l1_gas_price"`
	L1GasUsed         *big.Int `gorm:"serializer:u256" json:"l1_gas_used"`
	L1FeeScalar       string   `json:"l1_fee_scalar"`

	CompletedAt uint64 `json:"completed_at"`
	FailedAt    uint64 `json:"failed_at"`
}

func (SubmittedTransactions) TableName() string {
	return "submitted_transactions"
}

type SubmittedTransactionsView interface {
	QueryTransactionByHash(hash common.Hash) (*tracker.SubmittedTransaction, error)
	QueryUnfinalizedTransactions() ([]tracker.SubmittedTransaction, error)
}

type SubmittedTransactionsDB interface {
	SubmittedTransactionsView

	StoreTransaction(tx tracker.SubmittedTransaction) error
}

type submittedTransactionsDB struct {
	gorm *gorm.DB
}

func NewSubmittedTransactionsDB(db *gorm.DB) SubmittedTransactionsDB {
	return &submittedTransactionsDB{gorm: db}
}

func (db *submittedTransactionsDB) QueryTransactionByHash(hash common.Hash) (*tracker.SubmittedTransaction, error) {
	var row SubmittedTransactions
	result := db.gorm.Table(row.TableName()).
		Where("hash = ?", hash.String()).
		Take(&row)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	tx, err := row.toSubmittedTransaction()
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

func (db *submittedTransactionsDB) QueryUnfinalizedTransactions() ([]tracker.SubmittedTransaction, error) {
	var rows []SubmittedTransactions
	result := db.gorm.Table(SubmittedTransactions{}.TableName()).
		Where("state in ?", []string{string(tracker.StateQueued), string(tracker.StateIncludedInBlock)}).
		Order("queued_at asc").
		Find(&rows)
	if result.Error != nil {
		return nil, result.Error
	}
	txList := make([]tracker.SubmittedTransaction, 0, len(rows))
	for _, row := range rows {
		tx, err := row.toSubmittedTransaction()
		if err != nil {
			return nil, err
		}
		txList = append(txList, tx)
	}
	return txList, nil
}

// StoreTransaction upserts by hash so repeated observations of the same
// transaction collapse into one row.
func (db *submittedTransactionsDB) StoreTransaction(tx tracker.SubmittedTransaction) error {
	var existing SubmittedTransactions
	result := db.gorm.Table(existing.TableName()).
		Where("hash = ?", tx.Hash.String()).
		Take(&existing)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			row := fromSubmittedTransaction(tx)
			row.GUID = uuid.New()
			return db.gorm.Table(row.TableName()).Create(&row).Error
		}
		return result.Error
	}

	row := fromSubmittedTransaction(tx)
	row.GUID = existing.GUID
	return db.gorm.Table(row.TableName()).Save(&row).Error
}

func fromSubmittedTransaction(tx tracker.SubmittedTransaction) SubmittedTransactions {
	row := SubmittedTransactions{
		Hash:     tx.Hash,
		State:    string(tx.State),
		QueuedAt: uint64(tx.QueuedAt.Unix()),
	}
	if !tx.CompletedAt.IsZero() {
		row.CompletedAt = uint64(tx.CompletedAt.Unix())
	}
	if !tx.FailedAt.IsZero() {
		row.FailedAt = uint64(tx.FailedAt.Unix())
	}
	switch gasInfo := tx.GasInfo.(type) {
	case nil:
		row.GasKind = gasKindNone
	case fee.GenericGasInfo:
		row.GasKind = gasKindGeneric
		row.GasUsed = gasInfo.GasUsed
		row.EffectiveGasPrice = gasInfo.EffectiveGasPrice
	case fee.L2RollupGasInfo:
		row.GasKind = gasKindL2Rollup
		row.GasUsed = gasInfo.GasUsed
		row.L2GasPrice = gasInfo.L2GasPrice
		row.L1Fee = gasInfo.L1Fee
		row.L1GasPrice = gasInfo.L1GasPrice
		row.L1GasUsed = gasInfo.L1GasUsed
		row.L1FeeScalar = gasInfo.L1FeeScalar
	}
	return row
}

func (row SubmittedTransactions) toSubmittedTransaction() (tracker.SubmittedTransaction, error) {
	state, err := tracker.ParseState(row.State)
	if err != nil {
		return tracker.SubmittedTransaction{}, err
	}
	tx := tracker.SubmittedTransaction{
		Hash:     row.Hash,
		State:    state,
		QueuedAt: time.Unix(int64(row.QueuedAt), 0),
	}
	if row.CompletedAt != 0 {
		tx.CompletedAt = time.Unix(int64(row.CompletedAt), 0)
	}
	if row.FailedAt != 0 {
		tx.FailedAt = time.Unix(int64(row.FailedAt), 0)
	}
	switch row.GasKind {
	case gasKindNone:
	case gasKindGeneric:
		tx.GasInfo = fee.GenericGasInfo{
			GasUsed:           row.GasUsed,
			EffectiveGasPrice: row.EffectiveGasPrice,
		}
	case gasKindL2Rollup:
		tx.GasInfo = fee.L2RollupGasInfo{
			GasUsed:     row.GasUsed,
			L2GasPrice:  row.L2GasPrice,
			L1Fee:       row.L1Fee,
			L1GasPrice:  row.L1GasPrice,
			L1GasUsed:   row.L1GasUsed,
			L1FeeScalar: row.L1FeeScalar,
		}
	default:
		return tracker.SubmittedTransaction{}, fmt.Errorf("invalid gas kind in row %s: %s", row.GUID, row.GasKind)
	}
	return tx, nil
}
