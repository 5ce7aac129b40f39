package rank

import "testing"

func TestOf(t *testing.T) {
	tests := []struct {
		score int
		want  Rank
	}{
		{100, S},
		{90, S},
		{89, A},
		{70, A},
		{69, B},
		{50, B},
		{49, C},
		{30, C},
		{29, D},
		{0, D},
		{-5, D},
	}
	for _, tt := range tests {
		if got := Of(tt.score); got != tt.want {
			t.Errorf("Of(%d) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestOfMonotonic(t *testing.T) {
	prev := Of(0)
	for score := 1; score <= 100; score++ {
		cur := Of(score)
		if cur.Order() > prev.Order() {
			t.Fatalf("rank regressed at score %d: %s after %s", score, cur, prev)
		}
		prev = cur
	}
}
