package models

import "github.com/shopspring/decimal"

// Role is a member's role within a pool.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleMember
}

// Pool represents a named group of members who share expenses.
// A pool always has at least one membership.
type Pool struct {
	// ID is the unique identifier for the pool (UUID format).
	ID string

	// Name is the display name of the pool (e.g., "Roommates", "Ski Trip").
	Name string

	// Description is optional free text.
	Description string

	// Memberships lists the members of the pool, each (pool, member) pair at most once.
	Memberships []PoolMembership

	// CreatedAt is the Unix timestamp when the pool was created.
	CreatedAt int64
}

// Membership returns the membership for memberID, or nil.
func (p *Pool) Membership(memberID string) *PoolMembership {
	for i := range p.Memberships {
		if p.Memberships[i].MemberID == memberID {
			return &p.Memberships[i]
		}
	}
	return nil
}

// MemberIDs returns the member ids in membership order.
func (p *Pool) MemberIDs() []string {
	ids := make([]string, len(p.Memberships))
	for i, m := range p.Memberships {
		ids[i] = m.MemberID
	}
	return ids
}

// PoolMembership relates a member to a pool.
type PoolMembership struct {
	PoolID   string
	MemberID string
	Role     Role

	// DefaultSplitPercentage is the weight used by the Default split method.
	// Across a pool these must sum to 100; the check happens when they change.
	DefaultSplitPercentage decimal.Decimal

	// JoinedAt is the Unix timestamp when the member joined the pool.
	JoinedAt int64

	// DisplayName is the member's display name. It is filled in on reads
	// and never stored with the membership.
	DisplayName string
}

// SumDefaultSplits adds up the default split percentages of memberships.
func SumDefaultSplits(memberships []PoolMembership) decimal.Decimal {
	sum := decimal.Zero
	for _, m := range memberships {
		sum = sum.Add(m.DefaultSplitPercentage)
	}
	return sum
}
