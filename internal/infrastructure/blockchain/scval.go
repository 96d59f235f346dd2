package blockchain

import (
	"fmt"
	"math"
	"math/big"
	"sort"

	"github.com/stellar/go/strkey"
	"github.com/stellar/go/xdr"
)

// ArgKind is the ledger type a contract argument is encoded as
type ArgKind string

const (
	ArgAddress ArgKind = "address"
	ArgString  ArgKind = "string"
	ArgI128    ArgKind = "i128"
	ArgU64     ArgKind = "u64"
	ArgU32     ArgKind = "u32"
)

// EncodeArg converts a Go value into a type-tagged contract value
func EncodeArg(kind ArgKind, value interface{}) (xdr.ScVal, error) {
	switch kind {
	case ArgAddress:
		s, ok := value.(string)
		if !ok {
			return xdr.ScVal{}, fmt.Errorf("address argument must be a string, got %T", value)
		}
		addr, err := EncodeAddress(s)
		if err != nil {
			return xdr.ScVal{}, err
		}
		return xdr.ScVal{Type: xdr.ScValTypeScvAddress, Address: &addr}, nil
	case ArgString:
		s, ok := value.(string)
		if !ok {
			return xdr.ScVal{}, fmt.Errorf("string argument must be a string, got %T", value)
		}
		str := xdr.ScString(s)
		return xdr.ScVal{Type: xdr.ScValTypeScvString, Str: &str}, nil
	case ArgI128:
		n, err := toBigInt(value)
		if err != nil {
			return xdr.ScVal{}, err
		}
		parts, err := bigToInt128(n)
		if err != nil {
			return xdr.ScVal{}, err
		}
		return xdr.ScVal{Type: xdr.ScValTypeScvI128, I128: &parts}, nil
	case ArgU64:
		n, err := toBigInt(value)
		if err != nil {
			return xdr.ScVal{}, err
		}
		if n.Sign() < 0 || !n.IsUint64() {
			return xdr.ScVal{}, fmt.Errorf("u64 argument out of range: %s", n)
		}
		u := xdr.Uint64(n.Uint64())
		return xdr.ScVal{Type: xdr.ScValTypeScvU64, U64: &u}, nil
	case ArgU32:
		n, err := toBigInt(value)
		if err != nil {
			return xdr.ScVal{}, err
		}
		if n.Sign() < 0 || !n.IsUint64() || n.Uint64() > math.MaxUint32 {
			return xdr.ScVal{}, fmt.Errorf("u32 argument out of range: %s", n)
		}
		u := xdr.Uint32(n.Uint64())
		return xdr.ScVal{Type: xdr.ScValTypeScvU32, U32: &u}, nil
	}
	return xdr.ScVal{}, fmt.Errorf("unsupported argument kind %q", kind)
}

// EncodeAddress parses an account (G...) or contract (C...) address
func EncodeAddress(address string) (xdr.ScAddress, error) {
	if strkey.IsValidEd25519PublicKey(address) {
		var account xdr.AccountId
		if err := account.SetAddress(address); err != nil {
			return xdr.ScAddress{}, err
		}
		return xdr.ScAddress{Type: xdr.ScAddressTypeScAddressTypeAccount, AccountId: &account}, nil
	}
	raw, err := strkey.Decode(strkey.VersionByteContract, address)
	if err != nil {
		return xdr.ScAddress{}, fmt.Errorf("invalid address %q", address)
	}
	var hash xdr.Hash
	copy(hash[:], raw)
	return xdr.ScAddress{Type: xdr.ScAddressTypeScAddressTypeContract, ContractId: &hash}, nil
}

// DecodeAddress renders an address value as its strkey
func DecodeAddress(addr xdr.ScAddress) (string, error) {
	switch addr.Type {
	case xdr.ScAddressTypeScAddressTypeAccount:
		if addr.AccountId == nil {
			return "", fmt.Errorf("account address without id")
		}
		return addr.AccountId.GetAddress()
	case xdr.ScAddressTypeScAddressTypeContract:
		if addr.ContractId == nil {
			return "", fmt.Errorf("contract address without id")
		}
		return strkey.Encode(strkey.VersionByteContract, addr.ContractId[:])
	}
	return "", fmt.Errorf("unsupported address type %d", addr.Type)
}

// DecodeScVal converts a contract value into plain Go values: nil, bool,
// uint32, int32, uint64, int64, *big.Int, string, []interface{} and
// map[string]interface{}. Map keys are rendered with fmt.Sprint.
func DecodeScVal(v xdr.ScVal) (interface{}, error) {
	switch v.Type {
	case xdr.ScValTypeScvVoid:
		return nil, nil
	case xdr.ScValTypeScvBool:
		return bool(*v.B), nil
	case xdr.ScValTypeScvU32:
		return uint32(*v.U32), nil
	case xdr.ScValTypeScvI32:
		return int32(*v.I32), nil
	case xdr.ScValTypeScvU64:
		return uint64(*v.U64), nil
	case xdr.ScValTypeScvI64:
		return int64(*v.I64), nil
	case xdr.ScValTypeScvTimepoint:
		return uint64(*v.Timepoint), nil
	case xdr.ScValTypeScvDuration:
		return uint64(*v.Duration), nil
	case xdr.ScValTypeScvU128:
		hi := new(big.Int).SetUint64(uint64(v.U128.Hi))
		return hi.Lsh(hi, 64).Or(hi, new(big.Int).SetUint64(uint64(v.U128.Lo))), nil
	case xdr.ScValTypeScvI128:
		return int128ToBig(*v.I128), nil
	case xdr.ScValTypeScvString:
		return string(*v.Str), nil
	case xdr.ScValTypeScvSymbol:
		return string(*v.Sym), nil
	case xdr.ScValTypeScvBytes:
		return []byte(*v.Bytes), nil
	case xdr.ScValTypeScvAddress:
		return DecodeAddress(*v.Address)
	case xdr.ScValTypeScvVec:
		out := []interface{}{}
		if v.Vec == nil || *v.Vec == nil {
			return out, nil
		}
		for _, item := range **v.Vec {
			decoded, err := DecodeScVal(item)
			if err != nil {
				return nil, err
			}
			out = append(out, decoded)
		}
		return out, nil
	case xdr.ScValTypeScvMap:
		out := map[string]interface{}{}
		if v.Map == nil || *v.Map == nil {
			return out, nil
		}
		for _, entry := range **v.Map {
			key, err := DecodeScVal(entry.Key)
			if err != nil {
				return nil, err
			}
			val, err := DecodeScVal(entry.Val)
			if err != nil {
				return nil, err
			}
			out[fmt.Sprint(key)] = val
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported value type %s", v.Type)
}

// DecodeScValXDR decodes a base64 contract value
func DecodeScValXDR(b64 string) (interface{}, error) {
	var v xdr.ScVal
	if err := xdr.SafeUnmarshalBase64(b64, &v); err != nil {
		return nil, fmt.Errorf("decode value: %w", err)
	}
	return DecodeScVal(v)
}

// NewScVec builds a vector value
func NewScVec(items ...xdr.ScVal) xdr.ScVal {
	vec := xdr.ScVec(items)
	pvec := &vec
	return xdr.ScVal{Type: xdr.ScValTypeScvVec, Vec: &pvec}
}

// NewScStruct builds a symbol-keyed map, the encoding of a contract struct.
// Keys are sorted, as the host requires.
func NewScStruct(fields map[string]xdr.ScVal) xdr.ScVal {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	m := make(xdr.ScMap, 0, len(keys))
	for _, k := range keys {
		sym := xdr.ScSymbol(k)
		m = append(m, xdr.ScMapEntry{
			Key: xdr.ScVal{Type: xdr.ScValTypeScvSymbol, Sym: &sym},
			Val: fields[k],
		})
	}
	pm := &m
	return xdr.ScVal{Type: xdr.ScValTypeScvMap, Map: &pm}
}

func toBigInt(value interface{}) (*big.Int, error) {
	switch n := value.(type) {
	case *big.Int:
		if n == nil {
			return nil, fmt.Errorf("nil integer argument")
		}
		return new(big.Int).Set(n), nil
	case int:
		return big.NewInt(int64(n)), nil
	case int32:
		return big.NewInt(int64(n)), nil
	case int64:
		return big.NewInt(n), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(n)), nil
	case uint64:
		return new(big.Int).SetUint64(n), nil
	case uint:
		return new(big.Int).SetUint64(uint64(n)), nil
	case string:
		b, ok := new(big.Int).SetString(n, 10)
		if !ok {
			return nil, fmt.Errorf("invalid integer %q", n)
		}
		return b, nil
	}
	return nil, fmt.Errorf("integer argument has unsupported type %T", value)
}

var (
	two64   = new(big.Int).Lsh(big.NewInt(1), 64)
	maxI128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
	minI128 = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))
	mask64  = new(big.Int).Sub(two64, big.NewInt(1))
)

func bigToInt128(n *big.Int) (xdr.Int128Parts, error) {
	if n.Cmp(maxI128) > 0 || n.Cmp(minI128) < 0 {
		return xdr.Int128Parts{}, fmt.Errorf("i128 argument out of range: %s", n)
	}
	u := new(big.Int).Set(n)
	if u.Sign() < 0 {
		u.Add(u, new(big.Int).Lsh(big.NewInt(1), 128))
	}
	lo := new(big.Int).And(u, mask64).Uint64()
	hi := new(big.Int).Rsh(u, 64).Uint64()
	return xdr.Int128Parts{Hi: xdr.Int64(int64(hi)), Lo: xdr.Uint64(lo)}, nil
}

func int128ToBig(p xdr.Int128Parts) *big.Int {
	out := big.NewInt(int64(p.Hi))
	out.Mul(out, two64)
	return out.Add(out, new(big.Int).SetUint64(uint64(p.Lo)))
}
