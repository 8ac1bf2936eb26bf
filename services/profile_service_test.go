package services

import "testing"

func TestGetProfileDefaultsToGARP(t *testing.T) {
	profile, err := GetProfile("")
	if err != nil {
		t.Fatal(err)
	}
	if profile.Name != ProfileGARP {
		t.Errorf("default profile = %q, want %q", profile.Name, ProfileGARP)
	}
}

func TestGetProfileCaseInsensitive(t *testing.T) {
	for _, name := range []string{"QARP", "Qarp", "qarp", " qarp "} {
		profile, err := GetProfile(name)
		if err != nil {
			t.Fatalf("GetProfile(%q): %v", name, err)
		}
		if profile.Name != ProfileQARP {
			t.Errorf("GetProfile(%q) = %q, want %q", name, profile.Name, ProfileQARP)
		}
	}
}

func TestGetProfileUnknown(t *testing.T) {
	if _, err := GetProfile("momentum"); err == nil {
		t.Error("unknown profile should error")
	}
}

func TestProfilesCarryExpectedWeightTotals(t *testing.T) {
	cases := []struct {
		profile Profile
		total   float64
	}{
		{garpProfile, 11.5},
		{qarpProfile, 14.0},
		{dividendProfile, 9.0},
	}
	for _, tc := range cases {
		sum := 0.0
		for _, spec := range tc.profile.Metrics {
			if spec.Weight != nil {
				sum += *spec.Weight
			}
		}
		if !almostEqual(sum, tc.total) {
			t.Errorf("%s weight total = %v, want %v", tc.profile.Name, sum, tc.total)
		}
	}
}

func TestEstimateOffsets(t *testing.T) {
	if garpProfile.EstimateYearOffset != 1 {
		t.Error("GARP must look at next calendar year's estimate")
	}
	if qarpProfile.EstimateYearOffset != 0 || dividendProfile.EstimateYearOffset != 0 {
		t.Error("QARP and dividend profiles must use the current calendar year's estimate")
	}
}

func TestEveryProfileHasUniqueMetricKeys(t *testing.T) {
	for _, profile := range []Profile{garpProfile, qarpProfile, dividendProfile} {
		seen := map[string]bool{}
		for _, spec := range profile.Metrics {
			if seen[spec.Key] {
				t.Errorf("%s lists %q twice", profile.Name, spec.Key)
			}
			seen[spec.Key] = true
		}
	}
}
