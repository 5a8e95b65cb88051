package model

import "testing"

func TestXPToNextLevel(t *testing.T) {
	tests := []struct {
		level int
		want  int
	}{
		{0, 100},
		{1, 120},
		{5, 200},
		{10, 300},
	}
	for _, tt := range tests {
		u := User{Level: tt.level}
		if got := u.XPToNextLevel(); got != tt.want {
			t.Errorf("level %d: XPToNextLevel() = %d, want %d", tt.level, got, tt.want)
		}
	}
}

func TestAddXP(t *testing.T) {
	tests := []struct {
		name      string
		level     int
		xp        int
		grant     int
		wantLevel int
		wantXP    int
	}{
		{"no level-up", 0, 0, 50, 0, 50},
		{"exact threshold", 0, 0, 100, 1, 0},
		{"single carry-over", 0, 0, 200, 1, 100},
		{"multiple level-ups", 0, 0, 500, 3, 140},
		{"mid-level grant", 2, 30, 200, 3, 90},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := User{Level: tt.level, XP: tt.xp}
			u.AddXP(tt.grant)
			if u.Level != tt.wantLevel || u.XP != tt.wantXP {
				t.Errorf("AddXP(%d) = level %d xp %d, want level %d xp %d",
					tt.grant, u.Level, u.XP, tt.wantLevel, tt.wantXP)
			}
		})
	}
}
