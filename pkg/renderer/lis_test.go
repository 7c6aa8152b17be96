package renderer

import (
	"reflect"
	"testing"
)

func TestLongestIncreasingSubsequence(t *testing.T) {
	tests := []struct {
		name string
		in   []int
		want []int
	}{
		{"empty", nil, nil},
		{"single", []int{4}, []int{0}},
		{"sorted", []int{0, 1, 2, 3}, []int{0, 1, 2, 3}},
		{"rotated", []int{3, 0, 1, 2}, []int{1, 2, 3}},
		{"reversed", []int{3, 2, 1, 0}, []int{3}},
		{"skips new", []int{-1, 2, -1, 3}, []int{1, 3}},
		{"all new", []int{-1, -1}, nil},
		{"mixed", []int{4, 2, 3, 1, 5}, []int{1, 2, 4}},
		{"classic", []int{2, 1, 5, 3, 6, 4, 8, 9, 7}, []int{1, 3, 5, 6, 7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := longestIncreasingSubsequence(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("longestIncreasingSubsequence(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestLongestIncreasingSubsequenceIsIncreasing(t *testing.T) {
	in := []int{9, 3, 7, -1, 4, 8, 0, 5, 6, 1, 2}
	seq := longestIncreasingSubsequence(in)
	if len(seq) != 4 {
		t.Fatalf("len = %d, want 4 (got %v)", len(seq), seq)
	}
	for k := 1; k < len(seq); k++ {
		if seq[k] <= seq[k-1] {
			t.Errorf("positions not increasing: %v", seq)
		}
		if in[seq[k]] <= in[seq[k-1]] {
			t.Errorf("values not increasing at %d: %v", k, seq)
		}
	}
}
