package embedding

import (
	"context"
	"testing"
)

func TestMock_Dimension(t *testing.T) {
	m := NewMock(64)

	vec, err := m.Embed(context.Background(), "some text")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if len(vec) != 64 {
		t.Errorf("len(vec) = %d, want 64", len(vec))
	}
	if m.Dimension() != 64 {
		t.Errorf("Dimension() = %d, want 64", m.Dimension())
	}
}

func TestMock_DefaultDimension(t *testing.T) {
	m := NewMock(0)

	vec, err := m.Embed(context.Background(), "")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if len(vec) != DefaultDimension {
		t.Errorf("len(vec) = %d, want %d", len(vec), DefaultDimension)
	}
}

func TestMock_LengthIsStable(t *testing.T) {
	m := NewMock(16)
	for _, text := range []string{"", "a", "a much longer piece of text"} {
		vec, err := m.Embed(context.Background(), text)
		if err != nil {
			t.Fatalf("Embed(%q) error = %v", text, err)
		}
		if len(vec) != 16 {
			t.Errorf("Embed(%q) length = %d, want 16", text, len(vec))
		}
	}
}
