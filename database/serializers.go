package database

import (
	"context"
	"fmt"
	"math/big"
	"reflect"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"gorm.io/gorm/schema"
)

func init() {
	schema.RegisterSerializer("bytes", BytesSerializer{})
	schema.RegisterSerializer("u256", U256Serializer{})
}

type BytesInterface interface{ Bytes() []byte }
type SetBytesInterface interface{ SetBytes([]byte) }

// BytesSerializer stores fixed-byte chain types (common.Hash, common.Address)
// as 0x-prefixed hex text columns.
type BytesSerializer struct{}

func (BytesSerializer) Scan(ctx context.Context, field *schema.Field, dst reflect.Value, dbValue interface{}) error {
	if dbValue == nil {
		return nil
	}
	hexStr, ok := dbValue.(string)
	if !ok {
		return fmt.Errorf("expected hex string as the database value: %T", dbValue)
	}
	b, err := hexutil.Decode(hexStr)
	if err != nil {
		return fmt.Errorf("failed to decode database value: %w", err)
	}

	fieldValue := reflect.New(field.FieldType)
	fieldInterface := fieldValue.Interface()

	// SetBytes is defined on the pointer receiver of the nested type when the
	// model field itself is a pointer.
	if field.FieldType.Kind() == reflect.Pointer {
		nestedField := fieldValue.Elem()
		nestedField.Set(reflect.New(field.FieldType.Elem()))
		fieldInterface = nestedField.Interface()
	}

	setBytes, ok := fieldInterface.(SetBytesInterface)
	if !ok {
		return fmt.Errorf("field does not satisfy the SetBytes([]byte) interface: %T", fieldInterface)
	}
	setBytes.SetBytes(b)
	field.ReflectValueOf(ctx, dst).Set(fieldValue.Elem())
	return nil
}

func (BytesSerializer) Value(ctx context.Context, field *schema.Field, dst reflect.Value, fieldValue interface{}) (interface{}, error) {
	if fieldValue == nil || (field.FieldType.Kind() == reflect.Pointer && reflect.ValueOf(fieldValue).IsNil()) {
		return nil, nil
	}
	bytes, ok := fieldValue.(BytesInterface)
	if !ok {
		return nil, fmt.Errorf("field does not satisfy the Bytes() interface: %T", fieldValue)
	}
	return hexutil.Encode(bytes.Bytes()), nil
}

// U256Serializer stores *big.Int amounts as numeric columns, keeping them
// sortable and exact past 64 bits.
type U256Serializer struct{}

func (U256Serializer) Scan(ctx context.Context, field *schema.Field, dst reflect.Value, dbValue interface{}) error {
	if dbValue == nil {
		return nil
	}
	if field.FieldType != reflect.TypeOf((*big.Int)(nil)) {
		return fmt.Errorf("can only deserialize into a *big.Int: %T", field.FieldType)
	}

	var str string
	switch v := dbValue.(type) {
	case string:
		str = v
	case []byte:
		str = string(v)
	case int64:
		field.ReflectValueOf(ctx, dst).Set(reflect.ValueOf(big.NewInt(v)))
		return nil
	default:
		return fmt.Errorf("expected numeric database value: %T", dbValue)
	}

	value, ok := new(big.Int).SetString(str, 10)
	if !ok {
		return fmt.Errorf("failed to parse numeric database value: %s", str)
	}
	field.ReflectValueOf(ctx, dst).Set(reflect.ValueOf(value))
	return nil
}

func (U256Serializer) Value(ctx context.Context, field *schema.Field, dst reflect.Value, fieldValue interface{}) (interface{}, error) {
	if fieldValue == nil || (field.FieldType.Kind() == reflect.Pointer && reflect.ValueOf(fieldValue).IsNil()) {
		return nil, nil
	}
	value, ok := fieldValue.(*big.Int)
	if !ok {
		return nil, fmt.Errorf("can only serialize a *big.Int: %T", fieldValue)
	}
	return value.String(), nil
}
