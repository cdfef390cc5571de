package engine

import (
	"fmt"
	"reflect"

	"github.com/tetratelabs/wazero/api"
	"go.bytecodealliance.org/wit"
)

var (
	boolType    = reflect.TypeOf(false)
	int8Type    = reflect.TypeOf(int8(0))
	int16Type   = reflect.TypeOf(int16(0))
	int32Type   = reflect.TypeOf(int32(0))
	int64Type   = reflect.TypeOf(int64(0))
	uint8Type   = reflect.TypeOf(uint8(0))
	uint16Type  = reflect.TypeOf(uint16(0))
	uint32Type  = reflect.TypeOf(uint32(0))
	uint64Type  = reflect.TypeOf(uint64(0))
	float32Type = reflect.TypeOf(float32(0))
	float64Type = reflect.TypeOf(float64(0))
	runeType    = reflect.TypeOf(rune(0))
)

// coreGoType maps a core value type to its Go representation.
func coreGoType(vt api.ValueType) (reflect.Type, bool) {
	switch vt {
	case api.ValueTypeI32:
		return int32Type, true
	case api.ValueTypeI64:
		return int64Type, true
	case api.ValueTypeF32:
		return float32Type, true
	case api.ValueTypeF64:
		return float64Type, true
	}
	return nil, false
}

// witGoType maps a WIT primitive that flattens to the given core type.
// Anything else needs the canonical ABI and is rejected.
//
//	WIT Type        Core    Go
//	─────────────────────────────────
//	bool            i32     bool
//	s8, s16, s32    i32     int8, int16, int32
//	u8, u16, u32    i32     uint8, uint16, uint32
//	char            i32     rune
//	s64, u64        i64     int64, uint64
//	f32             f32     float32
//	f64             f64     float64
func witGoType(t wit.Type, core api.ValueType) (reflect.Type, bool) {
	var gt reflect.Type
	var want api.ValueType = api.ValueTypeI32

	switch t.(type) {
	case wit.Bool:
		gt = boolType
	case wit.S8:
		gt = int8Type
	case wit.S16:
		gt = int16Type
	case wit.S32:
		gt = int32Type
	case wit.U8:
		gt = uint8Type
	case wit.U16:
		gt = uint16Type
	case wit.U32:
		gt = uint32Type
	case wit.Char:
		gt = runeType
	case wit.S64:
		gt, want = int64Type, api.ValueTypeI64
	case wit.U64:
		gt, want = uint64Type, api.ValueTypeI64
	case wit.F32:
		gt, want = float32Type, api.ValueTypeF32
	case wit.F64:
		gt, want = float64Type, api.ValueTypeF64
	default:
		return nil, false
	}
	return gt, want == core
}

func encodeValue(v reflect.Value) (uint64, error) {
	switch v.Kind() {
	case reflect.Bool:
		if v.Bool() {
			return 1, nil
		}
		return 0, nil
	case reflect.Int8, reflect.Int16, reflect.Int32:
		return api.EncodeI32(int32(v.Int())), nil
	case reflect.Uint8, reflect.Uint16, reflect.Uint32:
		return api.EncodeU32(uint32(v.Uint())), nil
	case reflect.Int64:
		return api.EncodeI64(v.Int()), nil
	case reflect.Uint64:
		return v.Uint(), nil
	case reflect.Float32:
		return api.EncodeF32(float32(v.Float())), nil
	case reflect.Float64:
		return api.EncodeF64(v.Float()), nil
	}
	return 0, fmt.Errorf("cannot encode %s as a core value", v.Type())
}

func decodeValue(raw uint64, t reflect.Type) reflect.Value {
	out := reflect.New(t).Elem()
	switch t.Kind() {
	case reflect.Bool:
		out.SetBool(uint32(raw) != 0)
	case reflect.Int8, reflect.Int16, reflect.Int32:
		out.SetInt(int64(api.DecodeI32(raw)))
	case reflect.Uint8, reflect.Uint16, reflect.Uint32:
		out.SetUint(uint64(api.DecodeU32(raw)))
	case reflect.Int64:
		out.SetInt(int64(raw))
	case reflect.Uint64:
		out.SetUint(raw)
	case reflect.Float32:
		out.SetFloat(float64(api.DecodeF32(raw)))
	case reflect.Float64:
		out.SetFloat(api.DecodeF64(raw))
	}
	return out
}
