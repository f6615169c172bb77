package database

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/walletsuite/wallet-tx-core/currency"
)

// Tokens is the persisted currency dictionary. Rows come from the rate oracle
// responses and seed the in-memory registry on startup.
type Tokens struct {
	GUID         uuid.UUID `gorm:"primaryKey;type:uuid"`
	CurrencyId   string    `gorm:"column:currency_id;uniqueIndex" json:"currency_id"`
	Kind         string    `json:"kind"`
	Symbol       string    `json:"symbol"`
	Code         string    `json:"code"`
	Fraction     uint8     `json:"fraction"`
	RateFraction uint8     `json:"rate_fraction"`
	Name         string    `json:"name"`
	Icon         string    `json:"icon"`
	HexChainId   string    `gorm:"column:hex_chain_id" json:"hex_chain_id"`
	Address      string    `json:"address"`
	Timestamp    uint64    `json:"timestamp"`
}

func (Tokens) TableName() string {
	return "tokens"
}

type TokensView interface {
	QueryKnownCurrencies() (currency.KnownCurrencies, error)
}

type TokensDB interface {
	TokensView

	StoreCurrencies(currencies currency.KnownCurrencies, timestamp uint64) error
}

type tokensDB struct {
	gorm *gorm.DB
}

func NewTokensDB(db *gorm.DB) TokensDB {
	return &tokensDB{gorm: db}
}

func (db *tokensDB) QueryKnownCurrencies() (currency.KnownCurrencies, error) {
	var rows []Tokens
	result := db.gorm.Table(Tokens{}.TableName()).Find(&rows)
	if result.Error != nil {
		return nil, result.Error
	}
	known := make(currency.KnownCurrencies, len(rows))
	for _, row := range rows {
		kind, err := currency.ParseKind(row.Kind)
		if err != nil {
			return nil, err
		}
		id := currency.CurrencyId(row.CurrencyId)
		known[id] = currency.Currency{
			Id:                id,
			Kind:              kind,
			Symbol:            row.Symbol,
			Code:              row.Code,
			Fraction:          row.Fraction,
			RateFraction:      row.RateFraction,
			Name:              row.Name,
			Icon:              row.Icon,
			NetworkHexChainId: row.HexChainId,
			Address:           row.Address,
		}
	}
	return known, nil
}

func (db *tokensDB) StoreCurrencies(currencies currency.KnownCurrencies, timestamp uint64) error {
	for _, c := range currencies {
		var existing Tokens
		result := db.gorm.Table(existing.TableName()).
			Where("currency_id = ?", string(c.Id)).
			Take(&existing)
		if result.Error != nil && !errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return result.Error
		}

		row := Tokens{
			CurrencyId:   string(c.Id),
			Kind:         string(c.Kind),
			Symbol:       c.Symbol,
			Code:         c.Code,
			Fraction:     c.Fraction,
			RateFraction: c.RateFraction,
			Name:         c.Name,
			Icon:         c.Icon,
			HexChainId:   c.NetworkHexChainId,
			Address:      c.Address,
			Timestamp:    timestamp,
		}
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			row.GUID = uuid.New()
			if err := db.gorm.Table(row.TableName()).Create(&row).Error; err != nil {
				return err
			}
			continue
		}
		row.GUID = existing.GUID
		if err := db.gorm.Table(row.TableName()).Save(&row).Error; err != nil {
			return err
		}
	}
	return nil
}
