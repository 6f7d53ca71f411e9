package models

import (
	"testing"
	"time"
)

// TestPostIsVisibleToPublic checks the visibility predicate across all
// combinations of the four conjuncts against a fixed clock.
func TestPostIsVisibleToPublic(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name        string
		published   bool
		moderated   bool
		publishedAt *time.Time
		want        bool
	}{
		{"all flags off", false, false, nil, false},
		{"only published", true, false, nil, false},
		{"only moderated", false, true, nil, false},
		{"published and moderated, no timestamp", true, true, nil, false},
		{"only timestamp past", false, false, &past, false},
		{"published with past timestamp, unmoderated", true, false, &past, false},
		{"moderated with past timestamp, unpublished", false, true, &past, false},
		{"live: all conjuncts, past timestamp", true, true, &past, true},
		{"timestamp exactly now counts", true, true, &now, true},
		{"scheduled: all conjuncts, future timestamp", true, true, &future, false},
		{"future timestamp, unmoderated", true, false, &future, false},
		{"future timestamp, unpublished", false, true, &future, false},
		{"future timestamp, both off", false, false, &future, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Post{
				IsPublished: tt.published,
				IsModerated: tt.moderated,
				PublishedAt: tt.publishedAt,
			}
			if got := p.IsVisibleToPublic(now); got != tt.want {
				t.Errorf("IsVisibleToPublic = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPostSEOTitle(t *testing.T) {
	p := &Post{Title: "Kazan Kremlin"}
	if got := p.SEOTitle(); got != "Kazan Kremlin" {
		t.Errorf("SEOTitle fallback = %q, want post title", got)
	}
	p.MetaTitle = "Kazan Kremlin — Travel Guide"
	if got := p.SEOTitle(); got != "Kazan Kremlin — Travel Guide" {
		t.Errorf("SEOTitle = %q, want meta title", got)
	}
}

func TestValidScore(t *testing.T) {
	for score, want := range map[int]bool{0: false, 1: true, 3: true, 5: true, 6: false, -1: false} {
		if got := ValidScore(score); got != want {
			t.Errorf("ValidScore(%d) = %v, want %v", score, got, want)
		}
	}
}
