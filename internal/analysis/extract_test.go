package analysis

import "testing"

func TestExtractJSONArray(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"bare array", `[1,2,3]`, `[1,2,3]`, false},
		{"prose around", `Here you go: [{"a":1}] hope that helps`, `[{"a":1}]`, false},
		{"code fence", "```json\n[{\"a\":1}]\n```", `[{"a":1}]`, false},
		{"nested", `[[1,[2]],{"k":[3]}]`, `[[1,[2]],{"k":[3]}]`, false},
		{"bracket inside string", `[{"text":"use ] carefully"}]`, `[{"text":"use ] carefully"}]`, false},
		{"escaped quote in string", `[{"text":"say \"]\" now"}]`, `[{"text":"say \"]\" now"}]`, false},
		{"no array", `just words`, "", true},
		{"unbalanced", `[1,2`, "", true},
		{"empty", "   ", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSONArray(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}
