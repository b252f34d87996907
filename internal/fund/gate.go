package fund

// Denial reasons surfaced to callers verbatim.
const (
	ReasonKYCRequired   = "KYC verification is required to start a campaign"
	ReasonNgoOnly       = "only verified NGOs can create Disaster Relief campaigns"
	ReasonPendingReview = "pending hospital/verification review"
)

// Decision is the outcome of a gate check. Reason is empty when Allowed.
type Decision struct {
	Allowed bool
	Reason  string
}

// Err returns nil for an allow and a *DeniedError otherwise.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return &DeniedError{Reason: d.Reason}
}

func allow() Decision { return Decision{Allowed: true} }
func deny(reason string) Decision { return Decision{Reason: reason} }

// CanCreate decides whether actor may start a campaign for cause. KYC is checked first.
func CanCreate(actor Actor, cause Cause) Decision {
	if !actor.KYCVerified {
		return deny(ReasonKYCRequired)
	}
	if cause == CauseDisasterRelief && !actor.IsNgo {
		return deny(ReasonNgoOnly)
	}
	return allow()
}

// CanReleaseFunds decides whether donations to c are available to its owner.
// Temporary campaigns hold funds until verified.
func CanReleaseFunds(c Campaign) Decision {
	if !c.IsTemporary || c.Verified {
		return allow()
	}
	return deny(ReasonPendingReview)
}
