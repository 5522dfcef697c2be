package traffic

import "testing"

func TestNewFromSpecStable(t *testing.T) {
	p, err := NewFromSpec(Spec{Type: "Stable", TargetTps: 50})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.TpsAt(0, 1000) != 50 {
		t.Fatalf("expected 50, got %v", p.TpsAt(0, 1000))
	}
}

func TestNewFromSpecRampUpRequiresDuration(t *testing.T) {
	if _, err := NewFromSpec(Spec{Type: "rampUp", TargetTps: 50}); err == nil {
		t.Fatal("expected error for missing rampDuration")
	}
}

func TestNewFromSpecSpike(t *testing.T) {
	p, err := NewFromSpec(Spec{Type: "spike", TargetTps: 10, SpikeTps: 100, SpikeStartTime: 500, SpikeDuration: 200})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.TpsAt(600, 2000) != 100 {
		t.Fatalf("expected spike tps, got %v", p.TpsAt(600, 2000))
	}
	if p.TpsAt(800, 2000) != 10 {
		t.Fatalf("expected base tps, got %v", p.TpsAt(800, 2000))
	}
}

func TestNewFromSpecRejectsUnknownType(t *testing.T) {
	if _, err := NewFromSpec(Spec{Type: "bogus"}); err == nil {
		t.Fatal("expected error for unknown type")
	}
}

func TestNewFromSpecRejectsEmptyType(t *testing.T) {
	if _, err := NewFromSpec(Spec{}); err == nil {
		t.Fatal("expected error for empty type")
	}
}
