package pipeline

import "testing"

func TestPhaseSequence(t *testing.T) {
	want := []Phase{
		PhaseBrief, PhaseArchitecture, PhaseBeatSheet,
		PhaseDraftV0, PhaseCohesion, PhaseRhythm, PhaseChannel,
		PhaseFinalPackage,
	}
	got := Phases()
	if len(got) != len(want) {
		t.Fatalf("got %d phases, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("phase %d: got %q, want %q", i, got[i], want[i])
		}
	}

	ph := PhaseBrief
	for _, next := range want[1:] {
		var err error
		if ph, err = ph.Next(); err != nil {
			t.Fatalf("next after %q: %v", next, err)
		}
		if ph != next {
			t.Fatalf("got %q, want %q", ph, next)
		}
	}
	ph, err := ph.Next()
	if err != nil || ph != PhaseDone {
		t.Fatalf("final package should lead to done, got %q, %v", ph, err)
	}
	if _, err := PhaseDone.Next(); err == nil {
		t.Fatal("done must be terminal")
	}
	if _, err := Phase("bogus").Next(); err == nil {
		t.Fatal("unknown phase must error")
	}
}

func TestDetectCampaignType(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"Announce the launch of the new billing plan", "launch"},
		{"Customers left items in their cart last week", "cart_recovery"},
		{"Win-back emails for lapsed subscribers", "re_engagement"},
		{"A five part welcome sequence for new signups", "nurture"},
		{"The monthly roundup going to all subscribers", "newsletter"},
		{"Tell people the product exists", ""},
	}
	for _, tc := range cases {
		if got := DetectCampaignType(tc.text); got != tc.want {
			t.Errorf("DetectCampaignType(%q) = %q, want %q", tc.text, got, tc.want)
		}
	}
}
