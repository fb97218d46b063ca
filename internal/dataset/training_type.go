package dataset

import (
	"fmt"
	"strings"
)

// TrainingType selects how annotations are resolved and how output is laid out.
type TrainingType int

const (
	TrainingUnknown TrainingType = iota
	BinarySegmentation
	MultilabelSegmentation
	MultilabelClassification
)

var trainingTypeNames = map[TrainingType]string{
	BinarySegmentation:       "binary-seg",
	MultilabelSegmentation:   "multilabel-seg",
	MultilabelClassification: "multilabel-classification",
}

// TrainingTypes lists the accepted training types in display order.
func TrainingTypes() []TrainingType {
	return []TrainingType{BinarySegmentation, MultilabelSegmentation, MultilabelClassification}
}

// TrainingTypeNames returns the textual values accepted by ParseTrainingType.
func TrainingTypeNames() []string {
	names := make([]string, 0, len(trainingTypeNames))
	for _, tt := range TrainingTypes() {
		names = append(names, tt.String())
	}
	return names
}

// ParseTrainingType converts a textual training type into its enum value.
func ParseTrainingType(value string) (TrainingType, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for tt, name := range trainingTypeNames {
		if name == normalized {
			return tt, nil
		}
	}
	return TrainingUnknown, fmt.Errorf("unsupported training type %q (expected one of %s)", value, strings.Join(TrainingTypeNames(), ", "))
}

func (t TrainingType) String() string {
	if name, ok := trainingTypeNames[t]; ok {
		return name
	}
	return "unknown"
}

// Set implements the pflag.Value interface.
func (t *TrainingType) Set(value string) error {
	parsed, err := ParseTrainingType(value)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Type implements the pflag.Value interface.
func (t *TrainingType) Type() string {
	return "training-type"
}

// MarshalText implements encoding.TextMarshaler.
func (t TrainingType) MarshalText() ([]byte, error) {
	if t == TrainingUnknown {
		return []byte(""), nil
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *TrainingType) UnmarshalText(text []byte) error {
	if strings.TrimSpace(string(text)) == "" {
		*t = TrainingUnknown
		return nil
	}
	return t.Set(string(text))
}

// IsSegmentation reports whether masks are part of the output.
func (t TrainingType) IsSegmentation() bool {
	return t == BinarySegmentation || t == MultilabelSegmentation
}

// IsClassification reports whether the run produces class-tagged frames only.
func (t TrainingType) IsClassification() bool {
	return t == MultilabelClassification
}
