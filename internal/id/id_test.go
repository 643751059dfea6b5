package id_test

import (
	"testing"

	"github.com/remaimber-it/quizengine/internal/id"
)

func TestGenerateID(t *testing.T) {
	got := id.GenerateID()

	if len(got) != 36 {
		t.Errorf("expected 36-character id, got %q", got)
	}
}

func TestGenerateID_Unique(t *testing.T) {
	a := id.GenerateID()
	b := id.GenerateID()

	if a == b {
		t.Error("expected different IDs on consecutive calls")
	}
}
