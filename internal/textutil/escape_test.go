package textutil

import (
	"testing"

	"golang.org/x/text/language"
)

func TestEscapeFilterText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"PLAIN TEXT\nSECOND LINE", "PLAIN TEXT\nSECOND LINE"},
		{"IT'S", "IT''S"},
		{"GIỜ: 10:30", `GIỜ\: 10\:30`},
		{"'A':B", `''A''\:B`},
		{`BACK\SLASH`, `BACK\SLASH`},
	}
	for _, tt := range tests {
		if got := EscapeFilterText(tt.in); got != tt.want {
			t.Errorf("EscapeFilterText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestHookCase(t *testing.T) {
	got := HookCase("Bạn đã thử sản phẩm này chưa?", language.Vietnamese)
	if got != "BẠN ĐÃ THỬ SẢN PHẨM NÀY CHƯA?" {
		t.Fatalf("unexpected upper case %q", got)
	}
	if got := HookCase("istanbul", language.Und); got != "ISTANBUL" {
		t.Fatalf("unexpected neutral upper case %q", got)
	}
}
