package ledger

import (
	"context"
	"log/slog"
	"strings"

	"github.com/mmynk/splitpool/internal/categorize"
	"github.com/mmynk/splitpool/internal/models"
)

// ProfileUpdate holds the profile fields to change. Nil fields are left alone.
type ProfileUpdate struct {
	FirstName     *string
	LastName      *string
	Bio           *string
	PaymentHandle *string
}

// GetMember returns a member by id.
func (l *Ledger) GetMember(ctx context.Context, memberID string) (*models.Member, error) {
	member, err := l.store.GetMember(ctx, memberID)
	if err != nil {
		return nil, fromStore(err, "member", memberID)
	}
	return member, nil
}

// memberNames maps member ids to display names. Unknown ids are left out.
func (l *Ledger) memberNames(ctx context.Context, ids []string) (map[string]string, error) {
	members, err := l.store.GetMembersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(members))
	for id, m := range members {
		names[id] = m.DisplayName()
	}
	return names, nil
}

// withNames sets DisplayName on every membership of pools with one lookup.
func (l *Ledger) withNames(ctx context.Context, pools ...*models.Pool) error {
	var ids []string
	for _, p := range pools {
		ids = append(ids, p.MemberIDs()...)
	}
	names, err := l.memberNames(ctx, ids)
	if err != nil {
		return err
	}
	for _, p := range pools {
		for i := range p.Memberships {
			p.Memberships[i].DisplayName = names[p.Memberships[i].MemberID]
		}
	}
	return nil
}

// UpdateProfile changes a member's mutable profile fields.
// Identity (id and email) never changes.
func (l *Ledger) UpdateProfile(ctx context.Context, memberID string, update ProfileUpdate) (*models.Member, error) {
	member, err := l.GetMember(ctx, memberID)
	if err != nil {
		return nil, err
	}

	if update.FirstName != nil {
		first := strings.TrimSpace(*update.FirstName)
		if first == "" {
			return nil, invalid("first_name", "must not be empty")
		}
		member.FirstName = first
	}
	if update.LastName != nil {
		member.LastName = strings.TrimSpace(*update.LastName)
	}
	if update.Bio != nil {
		member.Bio = *update.Bio
	}
	if update.PaymentHandle != nil {
		member.PaymentHandle = strings.TrimSpace(*update.PaymentHandle)
	}

	if err := l.store.UpdateMemberProfile(ctx, member); err != nil {
		return nil, fromStore(err, "member", memberID)
	}
	slog.Info("Profile updated", "member_id", memberID)
	return member, nil
}

// CreateCategoryRule appends a rule to the member's list. A pattern that does
// not compile is still stored; it just never matches.
func (l *Ledger) CreateCategoryRule(ctx context.Context, memberID, pattern, category string) (*models.CategoryRule, error) {
	category = strings.TrimSpace(category)
	if strings.TrimSpace(pattern) == "" {
		return nil, invalid("pattern", "must not be empty")
	}
	if category == "" {
		return nil, invalid("category", "must not be empty")
	}
	if _, err := categorize.Compile(pattern); err != nil {
		slog.Warn("Storing category rule with invalid pattern", "member_id", memberID, "pattern", pattern, "error", err)
	}

	rule := &models.CategoryRule{MemberID: memberID, Pattern: pattern, Category: category}
	if err := l.store.CreateCategoryRule(ctx, rule); err != nil {
		return nil, fromStore(err, "member", memberID)
	}
	return rule, nil
}

// ListCategoryRules returns the member's rules in match order.
func (l *Ledger) ListCategoryRules(ctx context.Context, memberID string) ([]models.CategoryRule, error) {
	return l.store.ListCategoryRules(ctx, memberID)
}

// DeleteCategoryRule removes one of the member's rules.
func (l *Ledger) DeleteCategoryRule(ctx context.Context, memberID, ruleID string) error {
	return fromStore(l.store.DeleteCategoryRule(ctx, memberID, ruleID), "category rule", ruleID)
}

// SuggestCategory classifies an expense name with the member's rules.
// ok is false when nothing matches; that is not an error.
func (l *Ledger) SuggestCategory(ctx context.Context, memberID, name string) (category string, ok bool, err error) {
	rules, err := l.store.ListCategoryRules(ctx, memberID)
	if err != nil {
		return "", false, err
	}
	category, ok = categorize.Suggest(name, rules)
	return category, ok, nil
}
