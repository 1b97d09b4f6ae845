package store

import (
	"fmt"
	"math"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoDB has no native floating-point type: numbers are exact decimals,
// transported as strings. Every numeric leaf in a record is rewritten into
// that representation before it reaches the client. Finite floats are
// converted via their shortest round-trip decimal string, never by direct
// binary-to-decimal expansion, so a stored value reads back as the same
// number that was extracted. Non-finite floats cannot be represented at all
// and are substituted with reserved string sentinels. Callers must treat
// these three strings as reserved values in any numeric position.
const (
	NaN         = "NaN"
	PosInfinity = "Infinity"
	NegInfinity = "-Infinity"
)

// Item is a generic record: a tree of strings, numbers, booleans, nulls,
// lists, and maps, mirroring the shape of a JSON document.
type Item map[string]any

// MarshalItem converts an Item into a DynamoDB attribute map, applying the
// numeric conversion policy to every leaf. It is a pure transform with no
// dependency on the storage client.
func MarshalItem(item Item) (map[string]types.AttributeValue, error) {
	av := make(map[string]types.AttributeValue, len(item))
	for k, v := range item {
		a, err := MarshalValue(v)
		if err != nil {
			return nil, fmt.Errorf("marshal attribute %s: %w", k, err)
		}
		av[k] = a
	}
	return av, nil
}

// MarshalValue converts a single value into a DynamoDB AttributeValue,
// recursing through lists and maps.
func MarshalValue(v any) (types.AttributeValue, error) {
	switch t := v.(type) {
	case nil:
		return &types.AttributeValueMemberNULL{Value: true}, nil
	case string:
		return &types.AttributeValueMemberS{Value: t}, nil
	case bool:
		return &types.AttributeValueMemberBOOL{Value: t}, nil
	case int:
		return &types.AttributeValueMemberN{Value: strconv.FormatInt(int64(t), 10)}, nil
	case int32:
		return &types.AttributeValueMemberN{Value: strconv.FormatInt(int64(t), 10)}, nil
	case int64:
		return &types.AttributeValueMemberN{Value: strconv.FormatInt(t, 10)}, nil
	case uint64:
		return &types.AttributeValueMemberN{Value: strconv.FormatUint(t, 10)}, nil
	case float32:
		return marshalFloat(float64(t), 32), nil
	case float64:
		return marshalFloat(t, 64), nil
	case []string:
		list := make([]types.AttributeValue, len(t))
		for i, e := range t {
			list[i] = &types.AttributeValueMemberS{Value: e}
		}
		return &types.AttributeValueMemberL{Value: list}, nil
	case []any:
		list := make([]types.AttributeValue, len(t))
		for i, e := range t {
			a, err := MarshalValue(e)
			if err != nil {
				return nil, fmt.Errorf("marshal list element %d: %w", i, err)
			}
			list[i] = a
		}
		return &types.AttributeValueMemberL{Value: list}, nil
	case map[string]string:
		m := make(map[string]types.AttributeValue, len(t))
		for k, e := range t {
			m[k] = &types.AttributeValueMemberS{Value: e}
		}
		return &types.AttributeValueMemberM{Value: m}, nil
	case map[string]any:
		m, err := MarshalItem(t)
		if err != nil {
			return nil, err
		}
		return &types.AttributeValueMemberM{Value: m}, nil
	case Item:
		m, err := MarshalItem(t)
		if err != nil {
			return nil, err
		}
		return &types.AttributeValueMemberM{Value: m}, nil
	default:
		return nil, fmt.Errorf("unsupported attribute type %T", v)
	}
}

// marshalFloat converts a floating-point value into an exact-decimal
// attribute, substituting the reserved sentinels for non-finite values.
// bitSize indicates the precision of the original value (32 or 64), which
// keeps float32 inputs from growing spurious digits.
func marshalFloat(f float64, bitSize int) types.AttributeValue {
	switch {
	case math.IsNaN(f):
		return &types.AttributeValueMemberS{Value: NaN}
	case math.IsInf(f, 1):
		return &types.AttributeValueMemberS{Value: PosInfinity}
	case math.IsInf(f, -1):
		return &types.AttributeValueMemberS{Value: NegInfinity}
	default:
		return &types.AttributeValueMemberN{Value: strconv.FormatFloat(f, 'f', -1, bitSize)}
	}
}

// UnmarshalItem converts a DynamoDB attribute map back into an Item.
// Numbers become int64 when integral and float64 otherwise, matching how
// the records are rendered as JSON on the query path. Sentinel strings stay
// strings; reversing them would reintroduce the unrepresentable values.
func UnmarshalItem(av map[string]types.AttributeValue) (Item, error) {
	item := make(Item, len(av))
	for k, a := range av {
		v, err := UnmarshalValue(a)
		if err != nil {
			return nil, fmt.Errorf("unmarshal attribute %s: %w", k, err)
		}
		item[k] = v
	}
	return item, nil
}

// UnmarshalValue converts a single AttributeValue back into a plain value.
func UnmarshalValue(a types.AttributeValue) (any, error) {
	switch t := a.(type) {
	case *types.AttributeValueMemberNULL:
		return nil, nil
	case *types.AttributeValueMemberS:
		return t.Value, nil
	case *types.AttributeValueMemberBOOL:
		return t.Value, nil
	case *types.AttributeValueMemberN:
		if i, err := strconv.ParseInt(t.Value, 10, 64); err == nil {
			return i, nil
		}
		f, err := strconv.ParseFloat(t.Value, 64)
		if err != nil {
			return nil, fmt.Errorf("parse number %q: %w", t.Value, err)
		}
		return f, nil
	case *types.AttributeValueMemberL:
		list := make([]any, len(t.Value))
		for i, e := range t.Value {
			v, err := UnmarshalValue(e)
			if err != nil {
				return nil, fmt.Errorf("unmarshal list element %d: %w", i, err)
			}
			list[i] = v
		}
		return list, nil
	case *types.AttributeValueMemberM:
		m, err := UnmarshalItem(t.Value)
		if err != nil {
			return nil, err
		}
		return map[string]any(m), nil
	default:
		return nil, fmt.Errorf("unsupported attribute value %T", a)
	}
}
