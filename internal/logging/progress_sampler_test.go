package logging

import "testing"

func TestProgressSampler(t *testing.T) {
	s := NewProgressSampler(10)
	var logged []int
	for done := 0; done <= 25; done++ {
		if s.ShouldLog(done, 25) {
			logged = append(logged, done)
		}
	}
	want := []int{10, 20, 25}
	if len(logged) != len(want) {
		t.Fatalf("logged %v, want %v", logged, want)
	}
	for i := range want {
		if logged[i] != want[i] {
			t.Fatalf("logged %v, want %v", logged, want)
		}
	}
}

func TestProgressSamplerDefaults(t *testing.T) {
	s := NewProgressSampler(0)
	if s.ShouldLog(99, 1000) || !s.ShouldLog(100, 1000) {
		t.Fatal("expected default interval of 100")
	}
	var nilSampler *ProgressSampler
	if !nilSampler.ShouldLog(1, 2) {
		t.Fatal("nil sampler should always log")
	}
}
