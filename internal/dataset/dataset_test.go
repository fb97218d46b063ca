package dataset

import "testing"

func TestParseTrainingType(t *testing.T) {
	tests := []struct {
		in      string
		want    TrainingType
		wantErr bool
	}{
		{in: "binary-seg", want: BinarySegmentation},
		{in: " Multilabel-Seg ", want: MultilabelSegmentation},
		{in: "multilabel-classification", want: MultilabelClassification},
		{in: "segmentation", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tc := range tests {
		got, err := ParseTrainingType(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("ParseTrainingType(%q) expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseTrainingType(%q) returned error: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ParseTrainingType(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestTrainingTypeTextRoundTrip(t *testing.T) {
	var tt TrainingType
	if err := tt.UnmarshalText([]byte("binary-seg")); err != nil {
		t.Fatalf("UnmarshalText: %v", err)
	}
	text, err := tt.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText: %v", err)
	}
	if string(text) != "binary-seg" {
		t.Fatalf("MarshalText = %q", text)
	}
	if err := tt.UnmarshalText(nil); err != nil || tt != TrainingUnknown {
		t.Fatalf("empty text should reset to unknown, got %v err=%v", tt, err)
	}
}

func TestRawLabelHasAnnotation(t *testing.T) {
	if (RawLabel{Token: "pol"}).HasAnnotation() {
		t.Fatal("label without mask path must not count as annotation")
	}
	if (RawLabel{Token: "pol", MaskPath: "m.png", Empty: true}).HasAnnotation() {
		t.Fatal("zero-byte mask must not count as annotation")
	}
	if !(RawLabel{Token: "pol", MaskPath: "m.png"}).HasAnnotation() {
		t.Fatal("non-empty mask must count as annotation")
	}
}

func TestMergedMaskPaths(t *testing.T) {
	m := MergedMask{Class: "polyp", Representations: []MaskRepresentation{
		OfPath("a.png"), OfColor(Black), OfPath("b.png"),
	}}
	paths := m.MaskPaths()
	if len(paths) != 2 || paths[0] != "a.png" || paths[1] != "b.png" {
		t.Fatalf("MaskPaths = %v", paths)
	}
}

func TestPartitionNames(t *testing.T) {
	want := []string{"train", "validation", "test"}
	for i, p := range Partitions() {
		if p.String() != want[i] {
			t.Fatalf("partition %d = %q, want %q", i, p.String(), want[i])
		}
	}
}
