package settings

import (
	"context"
	"testing"
)

type memStore struct {
	values map[string]string
}

func (m *memStore) Get(_ context.Context, key string) (string, error) {
	return m.values[key], nil
}

func (m *memStore) Set(_ context.Context, key, value string) error {
	m.values[key] = value
	return nil
}

func TestGetDefaultsToEmpty(t *testing.T) {
	svc := NewService(&memStore{values: map[string]string{}})
	v, err := svc.Get(context.Background(), "whatsapp_urgente_link")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if v != "" {
		t.Errorf("unset key = %q, want empty", v)
	}
}

func TestSetUpsertsAndTrims(t *testing.T) {
	store := &memStore{values: map[string]string{}}
	svc := NewService(store)
	ctx := context.Background()

	if err := svc.Set(ctx, "whatsapp_urgente_link", "  https://chat.whatsapp.com/abc  "); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if v, _ := svc.Get(ctx, "whatsapp_urgente_link"); v != "https://chat.whatsapp.com/abc" {
		t.Errorf("value = %q, want trimmed link", v)
	}

	// Second write replaces, no history.
	if err := svc.Set(ctx, "whatsapp_urgente_link", "https://chat.whatsapp.com/xyz"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if v, _ := svc.Get(ctx, "whatsapp_urgente_link"); v != "https://chat.whatsapp.com/xyz" {
		t.Errorf("value = %q after upsert", v)
	}
	if len(store.values) != 1 {
		t.Errorf("store has %d keys, want 1", len(store.values))
	}
}
