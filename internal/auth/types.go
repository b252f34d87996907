package auth

import (
	"time"

	"truefund.org/internal/fund"
)

// Identity is who the bearer token says the caller is.
type Identity struct {
	ID    string
	Email string
	Name  string
}

// User is the stored account record. Flags change only through moderation outcomes
// or admin action.
type User struct {
	ID          string    `json:"id"`
	Name        string    `json:"name,omitempty"`
	Email       string    `json:"email,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	IsNgo       bool      `json:"isNgo"`
	IsAdmin     bool      `json:"isAdmin"`
	KYCVerified bool      `json:"kycVerified"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Actor projects the user onto the flags the campaign gate reads.
func (u User) Actor() fund.Actor {
	return fund.Actor{ID: u.ID, KYCVerified: u.KYCVerified, IsNgo: u.IsNgo, IsAdmin: u.IsAdmin}
}

// FlagUpdate changes the non-nil flags only.
type FlagUpdate struct {
	IsNgo       *bool `json:"isNgo,omitempty"`
	KYCVerified *bool `json:"kycVerified,omitempty"`
	IsAdmin     *bool `json:"-"`
}

// Empty reports whether the update changes nothing.
func (f FlagUpdate) Empty() bool {
	return f.IsNgo == nil && f.KYCVerified == nil && f.IsAdmin == nil
}

func (f FlagUpdate) apply(u *User) {
	if f.IsNgo != nil {
		u.IsNgo = *f.IsNgo
	}
	if f.KYCVerified != nil {
		u.KYCVerified = *f.KYCVerified
	}
	if f.IsAdmin != nil {
		u.IsAdmin = *f.IsAdmin
	}
}
