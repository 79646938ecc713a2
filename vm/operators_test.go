package vm

import (
	"math"
	"testing"

	"mooworld/types"
)

// TestArithmeticNaNRaisesInvarg verifies that float operations producing NaN
// raise E_INVARG, distinct from the E_FLOAT raised for +-Inf.
func TestArithmeticNaNRaisesInvarg(t *testing.T) {
	negOne := types.FloatValue{Val: -1.0}

	cases := []struct {
		name string
		fn   func() types.Result
	}{
		{"add_inf_negInf", func() types.Result {
			return add(types.FloatValue{Val: math.Inf(1)}, types.FloatValue{Val: math.Inf(-1)})
		}},
		{"subtract_inf_inf", func() types.Result {
			return subtract(types.FloatValue{Val: math.Inf(1)}, types.FloatValue{Val: math.Inf(1)})
		}},
		{"multiply_zero_inf", func() types.Result {
			return multiply(types.FloatValue{Val: 0.0}, types.FloatValue{Val: math.Inf(1)})
		}},
		{"divide_inf_inf", func() types.Result {
			return divide(types.FloatValue{Val: math.Inf(1)}, types.FloatValue{Val: math.Inf(1)})
		}},
		{"power_negBase_fractionalExp", func() types.Result {
			return power(negOne, types.FloatValue{Val: 0.5})
		}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			result := c.fn()
			if result.Flow != types.FlowException {
				t.Fatalf("expected exception, got %v (%v)", result.Flow, result.Val)
			}
			if result.Error != types.E_INVARG {
				t.Errorf("expected E_INVARG for NaN result, got %v", result.Error)
			}
		})
	}
}

// TestArithmeticInfinityRaisesFloat verifies +-Inf results still raise
// E_FLOAT, not E_INVARG, now that NaN has its own code.
func TestArithmeticInfinityRaisesFloat(t *testing.T) {
	cases := []struct {
		name string
		fn   func() types.Result
	}{
		{"add_overflow", func() types.Result {
			return add(types.FloatValue{Val: math.MaxFloat64}, types.FloatValue{Val: math.MaxFloat64})
		}},
		{"divide_by_zero_positive", func() types.Result {
			return divide(types.FloatValue{Val: 1.0}, types.FloatValue{Val: 0.0})
		}},
		{"power_overflow", func() types.Result {
			return power(types.FloatValue{Val: 10.0}, types.FloatValue{Val: 1000.0})
		}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			result := c.fn()
			if result.Flow != types.FlowException {
				t.Fatalf("expected exception, got %v (%v)", result.Flow, result.Val)
			}
			if result.Error != types.E_FLOAT {
				t.Errorf("expected E_FLOAT for infinite result, got %v", result.Error)
			}
		})
	}
}

// TestArithmeticUnderflowReturnsZero verifies that an underflowing float
// result is a plain 0.0, not an error.
func TestArithmeticUnderflowReturnsZero(t *testing.T) {
	result := multiply(types.FloatValue{Val: math.SmallestNonzeroFloat64}, types.FloatValue{Val: math.SmallestNonzeroFloat64})
	if result.Flow != types.FlowNormal {
		t.Fatalf("expected normal result, got %v (error %v)", result.Flow, result.Error)
	}
	f, ok := result.Val.(types.FloatValue)
	if !ok {
		t.Fatalf("expected FloatValue, got %T", result.Val)
	}
	if f.Val != 0.0 {
		t.Errorf("expected underflow to 0.0, got %v", f.Val)
	}
}
