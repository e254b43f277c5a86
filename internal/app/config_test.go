package app

import (
	"testing"
)

func TestParseAdminUserIDs(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    []int64
		wantErr bool
	}{
		{"single id", "100500", []int64{100500}, false},
		{"several ids", "1,2,3", []int64{1, 2, 3}, false},
		{"spaces and trailing comma", " 10 , 20 ,", []int64{10, 20}, false},
		{"empty", "", nil, true},
		{"only commas", ",,", nil, true},
		{"not a number", "1,abc", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &ReviewConfig{AdminUserIDs: tt.raw}

			ids, err := cfg.ParseAdminUserIDs()
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q, got %v", tt.raw, ids)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAdminUserIDs(%q) failed: %v", tt.raw, err)
			}
			if len(ids) != len(tt.want) {
				t.Fatalf("ids = %v, want %v", ids, tt.want)
			}
			for i := range ids {
				if ids[i] != tt.want[i] {
					t.Errorf("ids[%d] = %d, want %d", i, ids[i], tt.want[i])
				}
			}
		})
	}
}
