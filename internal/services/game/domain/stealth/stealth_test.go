package stealth

import (
	"errors"
	"math/rand"
	"testing"
)

func TestSpend(t *testing.T) {
	tests := []struct {
		name    string
		current int
		amount  int
		want    int
		wantErr bool
	}{
		{name: "normal deduction", current: 100, amount: 10, want: 90},
		{name: "zero is a no-op", current: 42, amount: 0, want: 42},
		{name: "clamps at floor", current: 3, amount: 10, want: 0},
		{name: "exact to zero", current: 5, amount: 5, want: 0},
		{name: "already at floor", current: 0, amount: 15, want: 0},
		{name: "negative rejected", current: 50, amount: -5, want: 50, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Spend(tt.current, tt.amount)
			if tt.wantErr {
				if !errors.Is(err, ErrNegativeSpend) {
					t.Fatalf("Spend() error = %v, want ErrNegativeSpend", err)
				}
			} else if err != nil {
				t.Fatalf("Spend() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Spend(%d, %d) = %d, want %d", tt.current, tt.amount, got, tt.want)
			}
		})
	}
}

func TestReact(t *testing.T) {
	tests := []struct {
		detection    int
		wantReaction Reaction
		wantIncrease int
	}{
		{0, ReactionQuiet, 5},
		{29, ReactionQuiet, 5},
		{30, ReactionAlert, 10},
		{59, ReactionAlert, 10},
		{60, ReactionLockdown, 20},
		{100, ReactionLockdown, 20},
	}
	for _, tt := range tests {
		reaction, inc := React(tt.detection)
		if reaction != tt.wantReaction || inc != tt.wantIncrease {
			t.Errorf("React(%d) = %s, %d, want %s, %d", tt.detection, reaction, inc, tt.wantReaction, tt.wantIncrease)
		}
	}
}

func TestDetectionRoll(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	if DetectionRoll(rng, 0) {
		t.Error("DetectionRoll(0) = true, want false")
	}
	if DetectionRoll(rng, -10) {
		t.Error("DetectionRoll(-10) = true, want false")
	}
	if !DetectionRoll(rng, 100) {
		t.Error("DetectionRoll(100) = false, want true")
	}

	hits := 0
	const trials = 10000
	for i := 0; i < trials; i++ {
		if DetectionRoll(rng, 30) {
			hits++
		}
	}
	if hits < trials*25/100 || hits > trials*35/100 {
		t.Errorf("DetectionRoll(30) hit rate = %d/%d, want near 30%%", hits, trials)
	}
}

func TestBonus(t *testing.T) {
	tests := []struct {
		current int
		want    int
	}{
		{100, 25},
		{80, 20},
		{50, 12},
		{1, 0},
		{0, 0},
		{-3, 0},
	}
	for _, tt := range tests {
		if got := Bonus(tt.current); got != tt.want {
			t.Errorf("Bonus(%d) = %d, want %d", tt.current, got, tt.want)
		}
	}
}
