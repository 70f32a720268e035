package domain

import (
	"errors"
	"testing"
)

func TestFrameTransaction_Chain(t *testing.T) {
	id, err := FrameTransaction{ChainID: "eip155:137"}.Chain()
	if err != nil || id != 137 {
		t.Errorf("Chain() = %d, %v; want 137, nil", id, err)
	}

	id, err = FrameTransaction{ChainID: "eip155:56"}.Chain()
	if !errors.Is(err, ErrUnsupportedChain) || id != 56 {
		t.Errorf("Chain() = %d, %v; want 56, ErrUnsupportedChain", id, err)
	}

	if _, err := (FrameTransaction{ChainID: "eip155:polygon"}).Chain(); err == nil {
		t.Error("expected parse error")
	}
}

func TestNewFrameAction(t *testing.T) {
	action := NewFrameAction(Identity{ID: "0x01"}, FrameActionRequest{
		ButtonIndex: 2,
		PostURL:     "https://frame.example/post",
		PubID:       "0x01-0x02",
	})

	if action.ProfileID != "0x01" || action.URL != "https://frame.example/post" {
		t.Errorf("unexpected action: %+v", action)
	}
	if action.SpecVersion != FrameSpecVersion {
		t.Errorf("SpecVersion = %q", action.SpecVersion)
	}
	if action.InputText != "" || action.State != "" || action.ActionResponse != "" {
		t.Errorf("optional fields should default to empty: %+v", action)
	}
}

func TestPreferenceUpdate_Apply(t *testing.T) {
	icon := 3
	p := PreferenceUpdate{AppIcon: &icon}.Apply(Preference{ID: "0x01", HighSignalNotificationFilter: true})

	if p.AppIcon != 3 || !p.HighSignalNotificationFilter {
		t.Errorf("Apply() = %+v", p)
	}
}
