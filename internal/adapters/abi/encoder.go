package abi

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"reflect"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/trebuchet-org/treb-gov/internal/usecase"
)

// Encoder builds calldata from a human readable function signature
// such as "store(uint256)" and string arguments.
type Encoder struct{}

// NewEncoder creates a new calldata encoder
func NewEncoder() *Encoder {
	return &Encoder{}
}

// Encode packs the selector of signature followed by the encoded args
func (e *Encoder) Encode(signature string, args []string) ([]byte, error) {
	name, types, err := ParseSignature(signature)
	if err != nil {
		return nil, err
	}
	if len(types) != len(args) {
		return nil, fmt.Errorf("%s expects %d arguments, got %d", name, len(types), len(args))
	}

	arguments := make(abi.Arguments, len(types))
	values := make([]any, len(types))
	for i, typ := range types {
		t, err := abi.NewType(typ, "", nil)
		if err != nil {
			return nil, fmt.Errorf("unsupported type %q: %w", typ, err)
		}
		v, err := convertArg(t, args[i])
		if err != nil {
			return nil, fmt.Errorf("argument %d (%s): %w", i, typ, err)
		}
		arguments[i] = abi.Argument{Type: t}
		values[i] = v
	}

	packed, err := arguments.Pack(values...)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", name, err)
	}

	canonical := fmt.Sprintf("%s(%s)", name, strings.Join(types, ","))
	selector := crypto.Keccak256([]byte(canonical))[:4]
	return append(selector, packed...), nil
}

// ParseSignature splits "name(t1, t2)" into its name and normalized types
func ParseSignature(signature string) (string, []string, error) {
	signature = strings.TrimSpace(signature)
	open := strings.IndexByte(signature, '(')
	if open <= 0 || !strings.HasSuffix(signature, ")") {
		return "", nil, fmt.Errorf("invalid function signature: %q", signature)
	}
	name := signature[:open]
	inner := strings.TrimSpace(signature[open+1 : len(signature)-1])
	if inner == "" {
		return name, nil, nil
	}
	if strings.ContainsAny(inner, "()") {
		return "", nil, fmt.Errorf("tuple arguments are not supported: %q", signature)
	}

	parts := strings.Split(inner, ",")
	types := make([]string, len(parts))
	for i, part := range parts {
		// "uint256 amount" -> "uint256"
		fields := strings.Fields(part)
		if len(fields) == 0 {
			return "", nil, fmt.Errorf("empty argument type in %q", signature)
		}
		types[i] = normalizeType(fields[0])
	}
	return name, types, nil
}

func normalizeType(t string) string {
	switch t {
	case "uint":
		return "uint256"
	case "int":
		return "int256"
	}
	return t
}

func convertArg(t abi.Type, raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	switch t.T {
	case abi.AddressTy:
		if !common.IsHexAddress(raw) {
			return nil, fmt.Errorf("invalid address: %s", raw)
		}
		return common.HexToAddress(raw), nil
	case abi.BoolTy:
		return strconv.ParseBool(raw)
	case abi.StringTy:
		return raw, nil
	case abi.BytesTy:
		return decodeHex(raw)
	case abi.FixedBytesTy:
		b, err := decodeHex(raw)
		if err != nil {
			return nil, err
		}
		if len(b) > t.Size {
			return nil, fmt.Errorf("value longer than %d bytes", t.Size)
		}
		arr := reflect.New(t.GetType()).Elem()
		reflect.Copy(arr, reflect.ValueOf(common.RightPadBytes(b, t.Size)))
		return arr.Interface(), nil
	case abi.UintTy, abi.IntTy:
		return convertInteger(t, raw)
	}
	return nil, fmt.Errorf("unsupported argument type %s", t.String())
}

func convertInteger(t abi.Type, raw string) (any, error) {
	n, ok := new(big.Int).SetString(raw, 0)
	if !ok {
		return nil, fmt.Errorf("invalid integer: %s", raw)
	}
	if t.T == abi.UintTy && n.Sign() < 0 {
		return nil, fmt.Errorf("negative value for unsigned type")
	}
	if t.Size > 64 {
		return n, nil
	}

	// small integer types pack from their exact Go kinds
	target := t.GetType()
	if t.T == abi.UintTy {
		if !n.IsUint64() || (t.Size < 64 && n.Uint64() >= 1<<t.Size) {
			return nil, fmt.Errorf("value overflows uint%d", t.Size)
		}
		return reflect.ValueOf(n.Uint64()).Convert(target).Interface(), nil
	}
	if !n.IsInt64() {
		return nil, fmt.Errorf("value overflows int%d", t.Size)
	}
	v := n.Int64()
	if t.Size < 64 {
		limit := int64(1) << (t.Size - 1)
		if v < -limit || v >= limit {
			return nil, fmt.Errorf("value overflows int%d", t.Size)
		}
	}
	return reflect.ValueOf(v).Convert(target).Interface(), nil
}

func decodeHex(raw string) ([]byte, error) {
	raw = strings.TrimPrefix(strings.TrimPrefix(raw, "0x"), "0X")
	b, err := hex.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid hex: %w", err)
	}
	return b, nil
}

var _ usecase.CalldataEncoder = (*Encoder)(nil)
