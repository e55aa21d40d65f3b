package qna

import "testing"

func TestCanAccept(t *testing.T) {
	tests := []struct {
		name     string
		askedBy  int64
		callerID int64
		want     bool
	}{
		{"asker may accept", 7, 7, true},
		{"other user may not", 7, 8, false},
		{"answerer is not special", 7, 9, false},
		{"zero caller", 7, 0, false},
	}

	for _, tc := range tests {
		got := CanAccept(Question{AskedBy: tc.askedBy}, tc.callerID)
		if got != tc.want {
			t.Fatalf("%s: CanAccept(askedBy=%d, caller=%d) = %v, want %v", tc.name, tc.askedBy, tc.callerID, got, tc.want)
		}
	}
}
