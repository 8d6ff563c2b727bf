package tabular

import (
	"testing"

	"github.com/kirillkom/curve-comment-classifier/internal/core/domain"
)

func TestColumnIndexRejectsMissingComment(t *testing.T) {
	_, err := ColumnIndex([]string{"source", "date", "curve_list", "grouping_var"})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func TestColumnIndexTrimsHeaderCells(t *testing.T) {
	index, err := ColumnIndex([]string{" source", "date ", "curve_list", " comment ", "grouping_var"})
	if err != nil {
		t.Fatalf("ColumnIndex() error = %v", err)
	}
	if index["comment"] != 3 {
		t.Fatalf("expected comment at 3, got %d", index["comment"])
	}
}

func TestParseDate(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"2024-01-02", "2024-01-02", true},
		{"02/03/2024", "2024-03-02", true}, // day first
		{"2024-01-02 10:30:00", "2024-01-02", true},
		{"", "", false},
		{"nan", "", false},
		{"not a date", "", false},
	}
	for _, tc := range cases {
		got, ok := ParseDate(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("ParseDate(%q) = (%q, %v), want (%q, %v)", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}
