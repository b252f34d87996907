package fund

import (
	"errors"
	"testing"
)

func TestCanCreate(t *testing.T) {
	cases := []struct {
		name   string
		actor  Actor
		cause  Cause
		reason string
	}{
		{"kyc missing", Actor{ID: "u1"}, CauseCommunity, ReasonKYCRequired},
		{"kyc checked before ngo", Actor{ID: "u1", IsNgo: true}, CauseDisasterRelief, ReasonKYCRequired},
		{"disaster relief needs ngo", Actor{ID: "u1", KYCVerified: true}, CauseDisasterRelief, ReasonNgoOnly},
		{"ngo disaster relief", Actor{ID: "u1", KYCVerified: true, IsNgo: true}, CauseDisasterRelief, ""},
		{"verified individual medical", Actor{ID: "u1", KYCVerified: true}, CauseMedical, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := CanCreate(tc.actor, tc.cause)
			if tc.reason == "" {
				if !d.Allowed || d.Err() != nil {
					t.Fatalf("expected allow, got %+v", d)
				}
				return
			}
			if d.Allowed || d.Reason != tc.reason {
				t.Fatalf("expected deny %q, got %+v", tc.reason, d)
			}
			if !errors.Is(d.Err(), ErrForbidden) {
				t.Fatalf("denial should match ErrForbidden: %v", d.Err())
			}
		})
	}
}

func TestCanReleaseFunds(t *testing.T) {
	if d := CanReleaseFunds(Campaign{}); !d.Allowed {
		t.Fatalf("permanent campaign should release: %+v", d)
	}
	if d := CanReleaseFunds(Campaign{IsTemporary: true, Verified: true}); !d.Allowed {
		t.Fatalf("verified temporary campaign should release: %+v", d)
	}
	d := CanReleaseFunds(Campaign{IsTemporary: true})
	if d.Allowed || d.Reason != ReasonPendingReview {
		t.Fatalf("unverified temporary campaign should hold funds: %+v", d)
	}
}
