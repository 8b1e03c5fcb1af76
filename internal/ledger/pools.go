package ledger

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitpool/internal/activity"
	"github.com/mmynk/splitpool/internal/calculator"
	"github.com/mmynk/splitpool/internal/models"
)

var hundredPercent = decimal.NewFromInt(100)

// CreatePool creates a pool with the creator as its only member: an admin
// carrying the whole default split.
func (l *Ledger) CreatePool(ctx context.Context, creatorID, name, description string) (*models.Pool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("name", "must not be empty")
	}
	creator, err := l.store.GetMember(ctx, creatorID)
	if err != nil {
		return nil, fromStore(err, "member", creatorID)
	}

	pool := &models.Pool{
		Name:        name,
		Description: description,
		Memberships: []models.PoolMembership{{
			MemberID:               creatorID,
			Role:                   models.RoleAdmin,
			DefaultSplitPercentage: hundredPercent,
			DisplayName:            creator.DisplayName(),
		}},
	}
	if err := l.store.CreatePool(ctx, pool); err != nil {
		slog.Error("Failed to create pool", "name", name, "error", err)
		return nil, err
	}

	l.events.Record(activity.NewEvent(activity.PoolCreated,
		activity.WithPool(pool.ID),
		activity.WithActor(creatorID),
		activity.WithData("name", pool.Name),
	))
	slog.Info("Pool created", "pool_id", pool.ID, "name", pool.Name)
	return pool, nil
}

// GetPool returns a pool the member belongs to, with member names filled in.
func (l *Ledger) GetPool(ctx context.Context, memberID, poolID string) (*models.Pool, error) {
	pool, err := l.poolFor(ctx, poolID, memberID)
	if err != nil {
		return nil, err
	}
	if err := l.withNames(ctx, pool); err != nil {
		return nil, err
	}
	return pool, nil
}

// ListPools returns every pool the member belongs to, newest first.
func (l *Ledger) ListPools(ctx context.Context, memberID string) ([]*models.Pool, error) {
	pools, err := l.store.ListPoolsForMember(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if err := l.withNames(ctx, pools...); err != nil {
		return nil, err
	}
	return pools, nil
}

// AddMember adds newMemberID to the pool with a zero default split, so the
// pool's defaults keep summing to 100. An empty role means RoleMember.
// Only admins may add members.
func (l *Ledger) AddMember(ctx context.Context, memberID, poolID, newMemberID string, role models.Role) (*models.PoolMembership, error) {
	if role == "" {
		role = models.RoleMember
	}
	if !role.Valid() {
		return nil, invalid("role", "unknown role %q", role)
	}
	pool, err := l.poolFor(ctx, poolID, memberID)
	if err != nil {
		return nil, err
	}
	if err := requireAdmin(pool, memberID, "add members"); err != nil {
		return nil, err
	}
	newMember, err := l.store.GetMember(ctx, newMemberID)
	if err != nil {
		return nil, fromStore(err, "member", newMemberID)
	}
	if pool.Membership(newMemberID) != nil {
		return nil, conflict("member %s is already in pool %s", newMemberID, poolID)
	}

	membership := &models.PoolMembership{
		PoolID:                 poolID,
		MemberID:               newMemberID,
		Role:                   role,
		DefaultSplitPercentage: decimal.Zero,
		DisplayName:            newMember.DisplayName(),
	}
	if err := l.store.AddPoolMember(ctx, membership); err != nil {
		return nil, fromStore(err, "pool", poolID)
	}

	l.events.Record(activity.NewEvent(activity.MemberAdded,
		activity.WithPool(poolID),
		activity.WithActor(memberID),
		activity.WithData("member_id", newMemberID),
		activity.WithData("role", string(role)),
	))
	slog.Info("Member added to pool", "pool_id", poolID, "member_id", newMemberID, "role", role)
	return membership, nil
}

// AddMemberByEmail looks the member up by email and adds them to the pool.
func (l *Ledger) AddMemberByEmail(ctx context.Context, memberID, poolID, email string, role models.Role) (*models.PoolMembership, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return nil, invalid("email", "must not be empty")
	}
	member, err := l.store.GetMemberByEmail(ctx, email)
	if err != nil {
		return nil, fromStore(err, "member", email)
	}
	return l.AddMember(ctx, memberID, poolID, member.ID, role)
}

// RemoveMember removes a membership. Admins may remove anyone; other members
// may only leave. It refuses to empty the pool or strip it of its last admin,
// to drop a member still carrying part of the default split, and to drop a
// member with unsettled line items as payer or debtor. The checks run in the
// same transaction as the delete.
func (l *Ledger) RemoveMember(ctx context.Context, memberID, poolID, removedID string) error {
	if _, err := l.poolFor(ctx, poolID, memberID); err != nil {
		return err
	}

	err := l.store.RemovePoolMember(ctx, poolID, removedID, func(memberships []models.PoolMembership, lines []models.LedgerLine) error {
		pool := &models.Pool{ID: poolID, Memberships: memberships}
		caller := pool.Membership(memberID)
		if caller == nil {
			return &NotFoundError{Kind: "pool", ID: poolID}
		}
		if removedID != memberID && caller.Role != models.RoleAdmin {
			return &ForbiddenError{Action: "remove other members"}
		}
		membership := pool.Membership(removedID)
		if membership == nil {
			return &NotFoundError{Kind: "pool member", ID: removedID}
		}
		if len(memberships) == 1 {
			return conflict("cannot remove the last member of pool %s", poolID)
		}
		if membership.Role == models.RoleAdmin && countAdmins(memberships) == 1 {
			return conflict("member %s is the last admin of pool %s; add another admin first", removedID, poolID)
		}
		if !membership.DefaultSplitPercentage.IsZero() {
			return conflict("member %s still has a default split of %s%%; reassign it first",
				removedID, membership.DefaultSplitPercentage.String())
		}
		for _, line := range lines {
			if line.PayerID == removedID || line.DebtorID == removedID {
				return conflict("member %s has unsettled expenses in pool %s", removedID, poolID)
			}
		}
		return nil
	})
	if err != nil {
		return fromStore(err, "pool member", removedID)
	}

	l.events.Record(activity.NewEvent(activity.MemberRemoved,
		activity.WithPool(poolID),
		activity.WithActor(memberID),
		activity.WithData("member_id", removedID),
	))
	slog.Info("Member removed from pool", "pool_id", poolID, "member_id", removedID)
	return nil
}

// requireAdmin fails unless memberID is an admin of the pool.
func requireAdmin(pool *models.Pool, memberID, action string) error {
	if m := pool.Membership(memberID); m == nil || m.Role != models.RoleAdmin {
		return &ForbiddenError{Action: action}
	}
	return nil
}

func countAdmins(memberships []models.PoolMembership) int {
	n := 0
	for _, m := range memberships {
		if m.Role == models.RoleAdmin {
			n++
		}
	}
	return n
}

// UpdateDefaultSplits sets the default split percentage of the given members.
// Only admins may change them.
// Each percentage must lie in [0, 100]; members not named keep theirs. The
// write and the pool-wide sum check happen in one transaction: if the result
// does not sum to exactly 100 nothing is written and a ConflictError is returned.
func (l *Ledger) UpdateDefaultSplits(ctx context.Context, memberID, poolID string, splits map[string]decimal.Decimal) (*models.Pool, error) {
	if len(splits) == 0 {
		return nil, invalid("splits", "must name at least one member")
	}
	for id, pct := range splits {
		if pct.IsNegative() || pct.GreaterThan(hundredPercent) {
			return nil, invalid("splits", "percentage for %s must be between 0 and 100, got %s", id, pct.String())
		}
	}
	pool, err := l.poolFor(ctx, poolID, memberID)
	if err != nil {
		return nil, err
	}
	if err := requireAdmin(pool, memberID, "change default splits"); err != nil {
		return nil, err
	}
	for id := range splits {
		if pool.Membership(id) == nil {
			return nil, &NotFoundError{Kind: "pool member", ID: id}
		}
	}

	err = l.store.UpdateDefaultSplits(ctx, poolID, splits, func(memberships []models.PoolMembership) error {
		if sum := models.SumDefaultSplits(memberships); !sum.Equal(hundredPercent) {
			return conflict("default splits must sum to 100, got %s", sum.String())
		}
		return nil
	})
	if err != nil {
		return nil, fromStore(err, "pool member", poolID)
	}

	l.events.Record(activity.NewEvent(activity.DefaultsUpdated,
		activity.WithPool(poolID),
		activity.WithActor(memberID),
	))
	slog.Info("Default splits updated", "pool_id", poolID, "members", len(splits))

	updated, err := l.store.GetPool(ctx, poolID)
	if err != nil {
		return nil, fromStore(err, "pool", poolID)
	}
	if err := l.withNames(ctx, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

func sortMemberBalances(balances []calculator.MemberBalance) {
	sort.Slice(balances, func(i, j int) bool {
		return balances[i].MemberID < balances[j].MemberID
	})
}
