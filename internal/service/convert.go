package service

import (
	"github.com/mmynk/splitpool/internal/activity"
	"github.com/mmynk/splitpool/internal/calculator"
	"github.com/mmynk/splitpool/internal/ledger"
	"github.com/mmynk/splitpool/internal/models"
	"github.com/mmynk/splitpool/pkg/api"
)

func toAPIMember(m *models.Member) *api.Member {
	return &api.Member{
		ID:            m.ID,
		Email:         m.Email,
		FirstName:     m.FirstName,
		LastName:      m.LastName,
		Bio:           m.Bio,
		PaymentHandle: m.PaymentHandle,
		CreatedAt:     m.CreatedAt,
	}
}

func toAPIMembership(m models.PoolMembership) api.Membership {
	return api.Membership{
		MemberID:               m.MemberID,
		DisplayName:            m.DisplayName,
		Role:                   string(m.Role),
		DefaultSplitPercentage: m.DefaultSplitPercentage,
		JoinedAt:               m.JoinedAt,
	}
}

func toAPIPool(p *models.Pool) *api.Pool {
	members := make([]api.Membership, len(p.Memberships))
	for i, m := range p.Memberships {
		members[i] = toAPIMembership(m)
	}
	return &api.Pool{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Members:     members,
		CreatedAt:   p.CreatedAt,
	}
}

func toAPILineItems(items []models.ExpenseLineItem) []api.LineItem {
	out := make([]api.LineItem, len(items))
	for i, li := range items {
		out[i] = api.LineItem{
			ID:        li.ID,
			DebtorID:  li.DebtorID,
			Amount:    li.Amount,
			IsSettled: li.IsSettled,
		}
	}
	return out
}

func toAPIExpense(e *models.Expense) *api.Expense {
	return &api.Expense{
		ID:          e.ID,
		PoolID:      e.PoolID,
		PayerID:     e.PayerID,
		Name:        e.Name,
		Amount:      e.Amount,
		Description: e.Description,
		Category:    e.Category,
		Notes:       e.Notes,
		SplitMethod: string(e.SplitMethod),
		IsSettled:   e.IsSettled,
		LineItems:   toAPILineItems(e.LineItems),
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
		SettledAt:   e.SettledAt,
	}
}

func fromAPISplit(s api.Split) ledger.SplitSpec {
	shares := make([]calculator.Share, len(s.Members))
	for i, m := range s.Members {
		shares[i] = calculator.Share{MemberID: m.MemberID, Weight: m.Weight}
	}
	return ledger.SplitSpec{Method: models.SplitMethod(s.Method), Shares: shares}
}

func toAPIBalances(balances []calculator.Balance) []api.Balance {
	out := make([]api.Balance, len(balances))
	for i, b := range balances {
		out[i] = api.Balance{
			OtherMemberID: b.OtherMemberID,
			Amount:        b.Amount,
			Direction:     string(b.Direction),
		}
	}
	return out
}

func toAPISummary(s *ledger.PoolSummary) *api.GetPoolSummaryResponse {
	resp := &api.GetPoolSummaryResponse{
		Balances:  make([]api.MemberBalance, len(s.Balances)),
		Transfers: make([]api.Transfer, len(s.Transfers)),
	}
	for i, b := range s.Balances {
		resp.Balances[i] = api.MemberBalance{
			MemberID:    b.MemberID,
			DisplayName: s.Names[b.MemberID],
			TotalPaid:   b.TotalPaid,
			TotalOwed:   b.TotalOwed,
			Net:         b.Net,
		}
	}
	for i, t := range s.Transfers {
		resp.Transfers[i] = api.Transfer{From: t.From, To: t.To, Amount: t.Amount}
	}
	return resp
}

func toAPISettlement(s *models.Settlement) api.Settlement {
	return api.Settlement{
		ID:            s.ID,
		SettledBy:     s.SettledBy,
		LineItemCount: s.LineItemCount,
		TotalAmount:   s.TotalAmount,
		CreatedAt:     s.CreatedAt,
	}
}

func toAPIEvent(e activity.Event) api.ActivityEvent {
	return api.ActivityEvent{
		ID:        e.ID,
		Type:      e.Type,
		ActorID:   e.ActorID,
		Data:      e.Data,
		CreatedAt: e.CreatedAt,
	}
}

func toAPIRule(r models.CategoryRule) api.CategoryRule {
	return api.CategoryRule{
		ID:       r.ID,
		Pattern:  r.Pattern,
		Category: r.Category,
		Position: r.Position,
	}
}
