package store

import (
	"errors"
	"testing"
)

func TestSettingsRepository(t *testing.T) {
	s := newTestStore(t)
	repo := s.Settings()

	if _, err := repo.Get("detection.enabled"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if !repo.Bool("detection.enabled", true) {
		t.Error("expected default for unset key")
	}

	if err := repo.SetBool("detection.enabled", false); err != nil {
		t.Fatalf("failed to set: %v", err)
	}
	if repo.Bool("detection.enabled", true) {
		t.Error("expected stored false")
	}

	if err := repo.Set("detection.enabled", "not-a-bool"); err != nil {
		t.Fatalf("failed to overwrite: %v", err)
	}
	if !repo.Bool("detection.enabled", true) {
		t.Error("expected default for unparsable value")
	}

	value, err := repo.Get("detection.enabled")
	if err != nil || value != "not-a-bool" {
		t.Errorf("Get() = %q, %v", value, err)
	}
}
