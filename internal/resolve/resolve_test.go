package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dsprep/internal/classmap"
	"dsprep/internal/dataset"
)

func testMapper() *classmap.Dict {
	return classmap.NewDict(map[string][]string{
		"aaa": {"X"},
		"bbb": {"Y"},
		"ccc": {"X"},
		"pol": {"polyp"},
		"ade": {"polyp", "adenoma"},
		"hlt": {"healthy"},
		"ero": {"erosion"},
	}, []string{"healthy"}, []string{"polyp", "X", "Y", "adenoma"})
}

func classesOf(masks []dataset.MergedMask) []string {
	out := make([]string, 0, len(masks))
	for _, m := range masks {
		out = append(out, m.Class)
	}
	return out
}

func TestAmbiguousMaskDroppedOutsideClassification(t *testing.T) {
	labels := []dataset.RawLabel{
		{Token: "aaa", MaskPath: "m1"},
		{Token: "bbb", MaskPath: "m1"},
	}
	for _, mode := range []dataset.TrainingType{dataset.BinarySegmentation, dataset.MultilabelSegmentation} {
		r := New(mode, false, nil)
		assert.Empty(t, r.Resolve(labels, testMapper()), mode.String())
		assert.Equal(t, 1, r.Stats().ConflictMasks)
	}
}

func TestAmbiguousMaskKeptInClassification(t *testing.T) {
	labels := []dataset.RawLabel{
		{Token: "aaa", MaskPath: "m1"},
		{Token: "bbb", MaskPath: "m1"},
	}
	r := New(dataset.MultilabelClassification, true, nil)
	got := r.Resolve(labels, testMapper())
	require.Len(t, got, 2)
	assert.Equal(t, []string{"X", "Y"}, classesOf(got))
	for _, m := range got {
		assert.Equal(t, []string{"m1"}, m.MaskPaths())
	}
	assert.Zero(t, r.Stats().ConflictMasks)
}

func TestSameClassSetIsNotAConflict(t *testing.T) {
	labels := []dataset.RawLabel{
		{Token: "aaa", MaskPath: "m1"},
		{Token: "ccc", MaskPath: "m1"},
		{Token: "bbb", MaskPath: "m2"},
	}
	r := New(dataset.MultilabelSegmentation, false, nil)
	got := r.Resolve(labels, testMapper())
	require.Len(t, got, 2)
	assert.Equal(t, "X", got[0].Class)
	assert.Equal(t, []string{"m1"}, got[0].MaskPaths(), "identical paths collapse within a class")
	assert.Equal(t, []string{"m2"}, got[1].MaskPaths())
}

func TestConflictOnlyDropsTheAmbiguousFile(t *testing.T) {
	labels := []dataset.RawLabel{
		{Token: "aaa", MaskPath: "m1"},
		{Token: "bbb", MaskPath: "m1"},
		{Token: "aaa", MaskPath: "m2"},
	}
	got := New(dataset.MultilabelSegmentation, false, nil).Resolve(labels, testMapper())
	require.Len(t, got, 1)
	assert.Equal(t, "X", got[0].Class)
	assert.Equal(t, []string{"m2"}, got[0].MaskPaths())
}

func TestBinaryCollapseOfNegativeClass(t *testing.T) {
	labels := []dataset.RawLabel{
		{Token: "ero", MaskPath: "e1"},
		{Token: "ero", MaskPath: "e2"},
		{Token: "ero", MaskPath: "e3"},
		{Token: "pol", MaskPath: "p1"},
	}
	got := New(dataset.BinarySegmentation, false, nil).Resolve(labels, testMapper())
	require.Len(t, got, 2)

	assert.Equal(t, "erosion", got[0].Class)
	assert.Equal(t, []dataset.MaskRepresentation{dataset.SolidMask{Color: dataset.Black}}, got[0].Representations)

	assert.Equal(t, "polyp", got[1].Class)
	assert.Equal(t, []dataset.MaskRepresentation{dataset.PathMask{Path: "p1"}}, got[1].Representations)
}

func TestNoCollapseOutsideBinary(t *testing.T) {
	labels := []dataset.RawLabel{{Token: "ero", MaskPath: "e1"}}
	got := New(dataset.MultilabelSegmentation, false, nil).Resolve(labels, testMapper())
	require.Len(t, got, 1)
	assert.Equal(t, []string{"e1"}, got[0].MaskPaths())
}

func TestEmptyMaskAdmission(t *testing.T) {
	mapper := testMapper()

	healthy := []dataset.RawLabel{{Token: "hlt", MaskPath: "h1", Empty: true}}
	got := New(dataset.MultilabelSegmentation, false, nil).Resolve(healthy, mapper)
	require.Len(t, got, 1, "empty mask of a healthy class is admitted")
	assert.True(t, got[0].Healthy)
	assert.Equal(t, []string{"h1"}, got[0].MaskPaths())

	lesion := []dataset.RawLabel{{Token: "pol", MaskPath: "p1", Empty: true}}
	r := New(dataset.MultilabelSegmentation, false, nil)
	assert.Empty(t, r.Resolve(lesion, mapper), "empty mask of a non-healthy class is dropped")
	assert.Equal(t, 1, r.Stats().RejectedEmpty)

	got = New(dataset.MultilabelSegmentation, true, nil).Resolve(lesion, mapper)
	require.Len(t, got, 1, "empty masks enabled admits any class")
	assert.Equal(t, []string{"p1"}, got[0].MaskPaths())
}

func TestEmptyMaskAdmissionIsPerClass(t *testing.T) {
	mapper := classmap.NewDict(map[string][]string{"mix": {"healthy", "polyp"}}, []string{"healthy"}, nil)
	labels := []dataset.RawLabel{{Token: "mix", MaskPath: "m", Empty: true}}
	got := New(dataset.MultilabelSegmentation, false, nil).Resolve(labels, mapper)
	assert.Equal(t, []string{"healthy"}, classesOf(got))
}

func TestMultiFileUnion(t *testing.T) {
	labels := []dataset.RawLabel{
		{Token: "pol", MaskPath: "p1"},
		{Token: "pol", MaskPath: "p2"},
	}
	got := New(dataset.MultilabelSegmentation, false, nil).Resolve(labels, testMapper())
	require.Len(t, got, 1)
	assert.Equal(t, []dataset.MaskRepresentation{
		dataset.PathMask{Path: "p1"},
		dataset.PathMask{Path: "p2"},
	}, got[0].Representations)
}

func TestTokenExpandsToSeveralClasses(t *testing.T) {
	labels := []dataset.RawLabel{{Token: "ade", MaskPath: "a1"}, {Token: "pol", MaskPath: "p1"}}
	got := New(dataset.MultilabelSegmentation, false, nil).Resolve(labels, testMapper())
	require.Equal(t, []string{"adenoma", "polyp"}, classesOf(got))
	assert.Equal(t, []string{"a1"}, got[0].MaskPaths())
	assert.Equal(t, []string{"a1", "p1"}, got[1].MaskPaths())
}

func TestUnmappedTokensAreSilentlyIgnored(t *testing.T) {
	r := New(dataset.BinarySegmentation, false, nil)
	got := r.Resolve([]dataset.RawLabel{{Token: "zzz", MaskPath: "z1"}}, testMapper())
	assert.Nil(t, got)
	assert.Equal(t, Stats{Frames: 1, UnmappedTokens: 1}, r.Stats())
}

func TestNullMaskBecomesWholeFrame(t *testing.T) {
	labels := []dataset.RawLabel{
		{Token: "polyp"},
		{Token: "polyp"},
		{Token: "ulcer"},
	}
	r := New(dataset.MultilabelClassification, true, nil)
	got := r.Resolve(labels, classmap.NewIdentity())
	require.Equal(t, []string{"polyp", "ulcer"}, classesOf(got))
	for _, m := range got {
		assert.Equal(t, []dataset.MaskRepresentation{dataset.SolidMask{Color: dataset.White}}, m.Representations)
	}
}

func TestNullMasksNeverConflict(t *testing.T) {
	labels := []dataset.RawLabel{{Token: "aaa"}, {Token: "bbb"}}
	got := New(dataset.MultilabelSegmentation, true, nil).Resolve(labels, testMapper())
	assert.Equal(t, []string{"X", "Y"}, classesOf(got))
}
