package cache

import (
	"testing"
	"time"

	"github.com/vjranagit/apmfetch/pkg/types"
)

func baseSpec() types.QuerySpec {
	return types.QuerySpec{
		Metrics: []string{"HttpDispatcher", "Errors/all"},
		Values:  []string{"calls_per_minute", "average_response_time"},
		Period:  5 * time.Minute,
		Start:   time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC),
		End:     time.Date(2024, 3, 15, 11, 0, 0, 0, time.UTC),
	}
}

func TestFingerprintDeterministic(t *testing.T) {
	a := Fingerprint(baseSpec())
	b := Fingerprint(baseSpec())

	if a != b {
		t.Errorf("Expected identical fingerprints, got %s and %s", a, b)
	}
	if len(a) != 64 {
		t.Errorf("Expected 64 hex characters, got %d", len(a))
	}
}

func TestFingerprintSensitivity(t *testing.T) {
	base := Fingerprint(baseSpec())

	mutations := map[string]types.QuerySpec{}

	s := baseSpec()
	s.Metrics = []string{"HttpDispatcher"}
	mutations["metrics"] = s

	s = baseSpec()
	s.Values = []string{"calls_per_minute"}
	mutations["values"] = s

	s = baseSpec()
	s.Period = 10 * time.Minute
	mutations["period"] = s

	s = baseSpec()
	s.Start = s.Start.Add(time.Minute)
	mutations["start"] = s

	s = baseSpec()
	s.End = s.End.Add(time.Minute)
	mutations["end"] = s

	for field, spec := range mutations {
		if Fingerprint(spec) == base {
			t.Errorf("Changing %s did not change the fingerprint", field)
		}
	}
}

func TestFingerprintOrderMatters(t *testing.T) {
	s := baseSpec()
	s.Metrics = []string{"Errors/all", "HttpDispatcher"}

	if Fingerprint(s) == Fingerprint(baseSpec()) {
		t.Error("Expected metric ordering to affect the fingerprint")
	}
}

func TestFingerprintSubRange(t *testing.T) {
	spec := baseSpec()
	sub := spec.SubRange(spec.Start, spec.Start.Add(30*time.Minute))

	if Fingerprint(sub) == Fingerprint(spec) {
		t.Error("Expected chunk fingerprint to differ from whole-range fingerprint")
	}

	// Identical sub-ranges share a fingerprint regardless of parent
	other := baseSpec()
	other.End = other.End.Add(2 * time.Hour)
	otherSub := other.SubRange(spec.Start, spec.Start.Add(30*time.Minute))

	if Fingerprint(otherSub) != Fingerprint(sub) {
		t.Error("Expected identical sub-ranges to share a fingerprint")
	}
}
