package coerce

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/wippyai/dynbridge/errors"
)

type celsius float64

func TestValue(t *testing.T) {
	tests := []struct {
		name   string
		value  any
		target reflect.Type
		want   any
	}{
		{"exact", 42, reflect.TypeOf(0), 42},
		{"float to int", 3.0, reflect.TypeOf(0), 3},
		{"int to int32", 7, reflect.TypeOf(int32(0)), int32(7)},
		{"int to float64", 2, reflect.TypeOf(0.0), 2.0},
		{"int to uint8", 200, reflect.TypeOf(uint8(0)), uint8(200)},
		{"nil to int", nil, reflect.TypeOf(0), 0},
		{"nil to string", nil, reflect.TypeOf(""), ""},
		{"float to named float", 21.5, reflect.TypeOf(celsius(0)), celsius(21.5)},
		{"anything to any", "x", reflect.TypeOf((*any)(nil)).Elem(), "x"},
		{"slice elements", []any{1.0, 2.0}, reflect.TypeOf([]int{}), []int{1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Value(tt.value, tt.target)
			if err != nil {
				t.Fatalf("Value(%v, %v): %v", tt.value, tt.target, err)
			}
			if !reflect.DeepEqual(got.Interface(), tt.want) {
				t.Errorf("Value(%v, %v) = %#v, want %#v", tt.value, tt.target, got.Interface(), tt.want)
			}
		})
	}
}

func TestValue_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		value  any
		target reflect.Type
	}{
		{"fractional float to int", 3.5, reflect.TypeOf(0)},
		{"overflow int8", 300, reflect.TypeOf(int8(0))},
		{"negative to uint", -1, reflect.TypeOf(uint(0))},
		{"string to int", "12", reflect.TypeOf(0)},
		{"int to string", 65, reflect.TypeOf("")},
		{"missing interface", 1, reflect.TypeOf((*fmt.Stringer)(nil)).Elem()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Value(tt.value, tt.target)
			if err == nil {
				t.Fatalf("Value(%v, %v) should fail", tt.value, tt.target)
			}
			var e *errors.Error
			if !errors.As(err, &e) || e.Kind != errors.KindTypeMismatch {
				t.Errorf("error = %v, want a type mismatch", err)
			}
		})
	}
}

func TestWidens(t *testing.T) {
	tests := []struct {
		from, to any
		want     bool
	}{
		{int8(0), int64(0), true},
		{int64(0), int32(0), false},
		{uint8(0), int16(0), true},
		{uint32(0), int32(0), false},
		{int32(0), float64(0), true},
		{float32(0), float64(0), true},
		{float64(0), float32(0), false},
		{"", 0, false},
	}

	for _, tt := range tests {
		from, to := reflect.TypeOf(tt.from), reflect.TypeOf(tt.to)
		if got := Widens(from, to); got != tt.want {
			t.Errorf("Widens(%v, %v) = %v, want %v", from, to, got, tt.want)
		}
	}
}

func TestNilable(t *testing.T) {
	if !Nilable(reflect.TypeOf("")) {
		t.Error("string should accept a host null")
	}
	if !Nilable(reflect.TypeOf([]int{})) {
		t.Error("slice should accept a host null")
	}
	if Nilable(reflect.TypeOf(0)) {
		t.Error("int should not accept a host null")
	}
}
