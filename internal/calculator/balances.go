package calculator

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitpool/internal/models"
)

// Direction says which way money flows between the viewer and another member.
type Direction string

const (
	// Inbound means the other member owes the viewer.
	Inbound Direction = "inbound"
	// Outbound means the viewer owes the other member.
	Outbound Direction = "outbound"
)

// Balance is the net amount between the viewer and one other member.
// Amount is signed: positive = owed to viewer, negative = viewer owes.
type Balance struct {
	OtherMemberID string
	Amount        decimal.Decimal
	Direction     Direction
}

// ViewerBalances folds unsettled ledger lines into one net balance per other member.
//
// Only lines between the viewer and someone else count:
//   - viewer paid, other member owes: +amount
//   - other member paid, viewer owes: -amount
//
// Pairs netting to exactly zero are omitted. Output is sorted by member id.
func ViewerBalances(viewerID string, lines []models.LedgerLine) []Balance {
	net := make(map[string]decimal.Decimal)
	for _, line := range lines {
		if line.PayerID == line.DebtorID {
			continue
		}
		switch viewerID {
		case line.PayerID:
			net[line.DebtorID] = net[line.DebtorID].Add(line.Amount)
		case line.DebtorID:
			net[line.PayerID] = net[line.PayerID].Sub(line.Amount)
		}
	}

	balances := make([]Balance, 0, len(net))
	for other, amount := range net {
		amount = RoundMoney(amount)
		if amount.IsZero() {
			continue
		}
		dir := Inbound
		if amount.IsNegative() {
			dir = Outbound
		}
		balances = append(balances, Balance{OtherMemberID: other, Amount: amount, Direction: dir})
	}
	sort.Slice(balances, func(i, j int) bool {
		return balances[i].OtherMemberID < balances[j].OtherMemberID
	})
	return balances
}

// MemberBalance is one member's position across a whole pool.
type MemberBalance struct {
	MemberID  string
	TotalPaid decimal.Decimal // Sum of line items on expenses this member paid
	TotalOwed decimal.Decimal // Sum of line items this member is the debtor of
	Net       decimal.Decimal // Positive = owed money, Negative = owes money
}

// DebtEdge represents a suggested transfer from one member to another.
type DebtEdge struct {
	From   string // Member who owes
	To     string // Member who is owed
	Amount decimal.Decimal
}

// PoolSummary computes every member's totals over unsettled ledger lines and a
// simplified set of transfers that would clear them.
//
// Algorithm:
//   - for each line: payer's paid += amount, debtor's owed += amount
//   - net = paid - owed
//   - transfers: greedy match of the largest debtor with the largest creditor
func PoolSummary(lines []models.LedgerLine) ([]MemberBalance, []DebtEdge) {
	balances := make(map[string]*MemberBalance)
	get := func(id string) *MemberBalance {
		if _, exists := balances[id]; !exists {
			balances[id] = &MemberBalance{MemberID: id}
		}
		return balances[id]
	}

	for _, line := range lines {
		payer := get(line.PayerID)
		payer.TotalPaid = payer.TotalPaid.Add(line.Amount)
		debtor := get(line.DebtorID)
		debtor.TotalOwed = debtor.TotalOwed.Add(line.Amount)
	}

	memberBalances := make([]MemberBalance, 0, len(balances))
	for _, bal := range balances {
		bal.Net = RoundMoney(bal.TotalPaid.Sub(bal.TotalOwed))
		memberBalances = append(memberBalances, *bal)
	}
	sort.Slice(memberBalances, func(i, j int) bool {
		return memberBalances[i].MemberID < memberBalances[j].MemberID
	})

	return memberBalances, simplifyDebts(memberBalances)
}

type position struct {
	id     string
	amount decimal.Decimal // always positive
}

func simplifyDebts(balances []MemberBalance) []DebtEdge {
	var creditors, debtors []position
	for _, bal := range balances {
		switch {
		case bal.Net.IsPositive():
			creditors = append(creditors, position{bal.MemberID, bal.Net})
		case bal.Net.IsNegative():
			debtors = append(debtors, position{bal.MemberID, bal.Net.Neg()})
		}
	}
	byAmount := func(ps []position) {
		sort.SliceStable(ps, func(i, j int) bool {
			return ps[i].amount.GreaterThan(ps[j].amount)
		})
	}
	byAmount(creditors)
	byAmount(debtors)

	var edges []DebtEdge
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		amount := decimal.Min(debtors[i].amount, creditors[j].amount)
		if amount.IsPositive() {
			edges = append(edges, DebtEdge{From: debtors[i].id, To: creditors[j].id, Amount: amount})
		}

		debtors[i].amount = debtors[i].amount.Sub(amount)
		creditors[j].amount = creditors[j].amount.Sub(amount)

		if !debtors[i].amount.IsPositive() {
			i++
		}
		if !creditors[j].amount.IsPositive() {
			j++
		}
	}
	return edges
}
