package config

import (
	"errors"
	"fmt"
	"math"
)

const (
	defaultTrainSize      = 0.7
	defaultValidationSize = 0.2
	defaultTestSize       = 0.1

	// sumTolerance bounds the floating point error accepted when the three
	// fractions are added up.
	sumTolerance = 1e-6
)

// SplitSizes holds the resolved train/validation/test fractions.
type SplitSizes struct {
	Train      float64 `json:"train"`
	Validation float64 `json:"validation"`
	Test       float64 `json:"test"`
}

// ResolveSplitSizes fills in missing fractions:
//   - all three missing: 0.7/0.2/0.1
//   - two missing: the given one must be 1.0 and the others become 0
//   - one missing: 1 minus the other two
//
// The result must sum to 1.0 and every fraction must lie in [0, 1].
func ResolveSplitSizes(train, validation, test *float64) (SplitSizes, error) {
	missing := 0
	for _, v := range []*float64{train, validation, test} {
		if v == nil {
			missing++
		}
	}

	var sizes SplitSizes
	switch missing {
	case 3:
		return SplitSizes{Train: defaultTrainSize, Validation: defaultValidationSize, Test: defaultTestSize}, nil
	case 2:
		switch {
		case isOne(train):
			sizes = SplitSizes{Train: 1}
		case isOne(validation):
			sizes = SplitSizes{Validation: 1}
		case isOne(test):
			sizes = SplitSizes{Test: 1}
		default:
			return SplitSizes{}, errors.New("split: only one of train_size, validation_size and test_size can be omitted (set one to 1.0 or provide another one)")
		}
		return sizes, nil
	}

	sizes = SplitSizes{Train: deref(train), Validation: deref(validation), Test: deref(test)}
	switch {
	case train == nil:
		sizes.Train = clampZero(1 - sizes.Validation - sizes.Test)
	case validation == nil:
		sizes.Validation = clampZero(1 - sizes.Train - sizes.Test)
	case test == nil:
		sizes.Test = clampZero(1 - sizes.Train - sizes.Validation)
	}

	for _, f := range []struct {
		name  string
		value float64
	}{{"train_size", sizes.Train}, {"validation_size", sizes.Validation}, {"test_size", sizes.Test}} {
		if f.value < 0 || f.value > 1 || math.IsNaN(f.value) {
			return SplitSizes{}, fmt.Errorf("split: %s must be between 0 and 1, got %g", f.name, f.value)
		}
	}
	if sum := sizes.Train + sizes.Validation + sizes.Test; math.Abs(sum-1) > sumTolerance {
		return SplitSizes{}, fmt.Errorf("split: train_size + validation_size + test_size must equal 1.0, got %g", sum)
	}
	return sizes, nil
}

func isOne(v *float64) bool {
	return v != nil && math.Abs(*v-1) <= sumTolerance
}

// clampZero absorbs the rounding residue of 1 - a - b when a + b is 1.
func clampZero(v float64) float64 {
	if v < 0 && v > -sumTolerance {
		return 0
	}
	return v
}
