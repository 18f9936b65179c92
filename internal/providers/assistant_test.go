package providers

import (
	"context"
	"reflect"
	"testing"
)

func TestFallbackAssistant_Categorize(t *testing.T) {
	a := NewFallbackAssistant()

	tests := []struct {
		text string
		want string
	}{
		{"Prepare slides for the client presentation", "work"},
		{"Buy groceries after work", "shopping"},
		{"Pay the electricity bill", "finance"},
		{"Book a dentist appointment", "health"},
		{"Water the plants", "other"},
		{"", "other"},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, err := a.Categorize(context.Background(), tt.text)
			if err != nil {
				t.Fatalf("Categorize() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Categorize(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestFallbackAssistant_Suggest(t *testing.T) {
	got, err := NewFallbackAssistant().Suggest(context.Background(), " file taxes ")
	if err != nil {
		t.Fatalf("Suggest() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Suggest() returned %d steps", len(got))
	}
	if got[0] != "Define what done looks like for file taxes" {
		t.Errorf("Suggest()[0] = %q", got[0])
	}
}

func TestNormalizeCategory(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"work", "work"},
		{" Health.\n", "health"},
		{"**finance**", "finance"},
		{"Category: learning", "learning"},
		{"gardening", "other"},
	}

	for _, tt := range tests {
		if got := NormalizeCategory(tt.raw); got != tt.want {
			t.Errorf("NormalizeCategory(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestParseSuggestions(t *testing.T) {
	raw := "1. Draft the outline\n\n- Email the team\n* Book a room\n4) Send the invite"

	got := ParseSuggestions(raw, 3)
	want := []string{"Draft the outline", "Email the team", "Book a room"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseSuggestions() = %q, want %q", got, want)
	}

	if got := ParseSuggestions("  \n\n", 3); len(got) != 0 {
		t.Errorf("ParseSuggestions() = %q, want none", got)
	}
}
