package ai

import (
	"testing"
)

func TestParseSuggestions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{
			name: "enumeration and non-conforming lines stripped",
			raw:  "1. 3분 스트레칭💪\n설명\n2) 2분 물마시기",
			want: []string{"3분 스트레칭💪", "2분 물마시기"},
		},
		{
			name: "bullets and blank lines",
			raw:  "- 1분 심호흡🧘\n\n• 2분 산책🚶\n* 5분 명상",
			want: []string{"1분 심호흡🧘", "2분 산책🚶", "5분 명상"},
		},
		{
			name: "capped at five",
			raw:  "1분 a\n2분 b\n3분 c\n4분 d\n5분 e\n6분 f",
			want: []string{"1분 a", "2분 b", "3분 c", "4분 d", "5분 e"},
		},
		{
			name: "minute marker without activity dropped",
			raw:  "3분\n3분 ",
			want: nil,
		},
		{
			name: "zero minutes is not a positive integer",
			raw:  "0분 스트레칭",
			want: nil,
		},
		{
			name: "crlf input",
			raw:  "1. 3분 스트레칭💪\r\n2. 2분 물마시기\r\n",
			want: []string{"3분 스트레칭💪", "2분 물마시기"},
		},
		{
			name: "empty input",
			raw:  "",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := ParseSuggestions(tt.raw)
			if len(got) != len(tt.want) {
				t.Fatalf("ParseSuggestions() = %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("ParseSuggestions()[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestPadSuggestions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      []string
		wantLen int
	}{
		{name: "empty gets three fallbacks", in: nil, wantLen: 3},
		{name: "one gets padded to three", in: []string{"3분 요가"}, wantLen: 3},
		{name: "three stays three", in: []string{"a", "b", "c"}, wantLen: 3},
		{name: "six is capped at five", in: []string{"a", "b", "c", "d", "e", "f"}, wantLen: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := PadSuggestions(tt.in)
			if len(got) != tt.wantLen {
				t.Errorf("PadSuggestions() len = %d, want %d", len(got), tt.wantLen)
			}
		})
	}
}

func TestPadSuggestionsSkipsDuplicates(t *testing.T) {
	t.Parallel()

	// "물 한잔" is already present; the pad must pull distinct candidates.
	got := PadSuggestions([]string{"물 한잔"})
	if len(got) != 3 {
		t.Fatalf("expected 3 suggestions, got %v", got)
	}
	seen := map[string]bool{}
	for _, s := range got {
		if seen[s] {
			t.Errorf("duplicate suggestion %q in %v", s, got)
		}
		seen[s] = true
	}
}
