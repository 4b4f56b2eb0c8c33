package domain

import (
	"fmt"
	"sort"
)

// AccountRole names an account slot used by entry templates. Roles are mapped
// to concrete account ids so a deployment can point them at its own chart.
type AccountRole string

const (
	RoleCash               AccountRole = "cash"
	RoleBank               AccountRole = "bank"
	RoleChecksInCollection AccountRole = "checks_in_collection"
	RoleCardReceivable     AccountRole = "card_receivable"
	RoleAccountsReceivable AccountRole = "accounts_receivable"
	RoleInventory          AccountRole = "inventory"
	RoleAccountsPayable    AccountRole = "accounts_payable"
	RoleChecksOut          AccountRole = "checks_out"
	RoleSalesRevenue       AccountRole = "sales_revenue"
	RolePurchases          AccountRole = "purchases"
)

// ChartEntry is a row of the default chart of accounts.
type ChartEntry struct {
	Number      string
	Name        string
	Type        AccountType
	Parent      string
	Description string
}

// DefaultChart is the chart seeded into an empty store. Account ids equal the
// account numbers.
var DefaultChart = []ChartEntry{
	{Number: "1000", Name: "Assets", Type: Asset, Description: "Resources owned by the business"},
	{Number: "1100", Name: "Cash and Cash Equivalents", Type: Asset, Parent: "1000"},
	{Number: "1110", Name: "Cash", Type: Asset, Parent: "1100", Description: "Cash on hand"},
	{Number: "1120", Name: "Bank", Type: Asset, Parent: "1100", Description: "Current bank account"},
	{Number: "1130", Name: "Checks in Collection", Type: Asset, Parent: "1100", Description: "Customer checks deposited but not cleared"},
	{Number: "1140", Name: "Card Settlements", Type: Asset, Parent: "1100", Description: "Card payments pending settlement"},
	{Number: "1200", Name: "Accounts Receivable", Type: Asset, Parent: "1000", Description: "Amounts owed by customers"},
	{Number: "1300", Name: "Inventory", Type: Asset, Parent: "1000", Description: "Goods held for sale"},

	{Number: "2000", Name: "Liabilities", Type: Liability, Description: "Obligations of the business"},
	{Number: "2100", Name: "Accounts Payable", Type: Liability, Parent: "2000", Description: "Amounts owed to vendors"},
	{Number: "2200", Name: "Checks Payable", Type: Liability, Parent: "2000", Description: "Issued checks not yet presented"},

	{Number: "3000", Name: "Equity", Type: Equity},
	{Number: "3100", Name: "Owner's Capital", Type: Equity, Parent: "3000"},
	{Number: "3200", Name: "Retained Earnings", Type: Equity, Parent: "3000"},

	{Number: "4000", Name: "Revenue", Type: Revenue},
	{Number: "4100", Name: "Sales Revenue", Type: Revenue, Parent: "4000", Description: "Income from sales of goods"},

	{Number: "5000", Name: "Expenses", Type: Expense},
	{Number: "5100", Name: "Purchases", Type: Expense, Parent: "5000", Description: "Goods bought for resale"},
	{Number: "5200", Name: "Operating Expenses", Type: Expense, Parent: "5000"},
}

// DefaultRoleAccounts maps template roles onto DefaultChart account ids.
var DefaultRoleAccounts = map[AccountRole]string{
	RoleCash:               "1110",
	RoleBank:               "1120",
	RoleChecksInCollection: "1130",
	RoleCardReceivable:     "1140",
	RoleAccountsReceivable: "1200",
	RoleInventory:          "1300",
	RoleAccountsPayable:    "2100",
	RoleChecksOut:          "2200",
	RoleSalesRevenue:       "4100",
	RolePurchases:          "5100",
}

// HierarchyIssue describes a structural problem in the chart. Issues are
// reported to callers; the chart is never rewritten to fix them.
type HierarchyIssue struct {
	AccountID string `json:"accountID"`
	ParentID  string `json:"parentID,omitempty"`
	Problem   string `json:"problem"`
}

const (
	IssueMissingParent = "missing_parent"
	IssueCycle         = "cycle"
	IssueTypeMismatch  = "type_mismatch"
)

// ChartOfAccounts is a read-only view over a set of accounts.
type ChartOfAccounts struct {
	byID     map[string]Account
	children map[string][]string
}

// NewChartOfAccounts indexes accounts by id and parent.
func NewChartOfAccounts(accounts []Account) *ChartOfAccounts {
	c := &ChartOfAccounts{
		byID:     make(map[string]Account, len(accounts)),
		children: make(map[string][]string),
	}
	for _, a := range accounts {
		c.byID[a.AccountID] = a
	}
	for _, a := range accounts {
		if a.ParentAccountID != "" {
			c.children[a.ParentAccountID] = append(c.children[a.ParentAccountID], a.AccountID)
		}
	}
	for _, ids := range c.children {
		sort.Strings(ids)
	}
	return c
}

// Lookup returns the account with the given id.
func (c *ChartOfAccounts) Lookup(id string) (Account, bool) {
	a, ok := c.byID[id]
	return a, ok
}

// Children returns the direct children of id ordered by id.
func (c *ChartOfAccounts) Children(id string) []Account {
	ids := c.children[id]
	out := make([]Account, 0, len(ids))
	for _, cid := range ids {
		out = append(out, c.byID[cid])
	}
	return out
}

// Roots returns accounts without a parent ordered by number.
func (c *ChartOfAccounts) Roots() []Account {
	var out []Account
	for _, a := range c.byID {
		if a.IsRoot() {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}

// Path returns the ancestry of id from its root down to the account itself.
// It stops at a missing parent or a cycle.
func (c *ChartOfAccounts) Path(id string) []Account {
	var rev []Account
	seen := make(map[string]bool)
	cur, ok := c.byID[id]
	for ok && !seen[cur.AccountID] {
		seen[cur.AccountID] = true
		rev = append(rev, cur)
		if cur.IsRoot() {
			break
		}
		cur, ok = c.byID[cur.ParentAccountID]
	}
	out := make([]Account, len(rev))
	for i := range rev {
		out[i] = rev[len(rev)-1-i]
	}
	return out
}

// Level is derived from ancestry: roots are level 1.
func (c *ChartOfAccounts) Level(id string) int {
	return len(c.Path(id))
}

// WouldCycle reports whether attaching id under parentID would create a cycle.
func (c *ChartOfAccounts) WouldCycle(id, parentID string) bool {
	for _, a := range c.Path(parentID) {
		if a.AccountID == id {
			return true
		}
	}
	return false
}

// Issues walks every account and reports missing parents, cycles, and
// parent/child type mismatches.
func (c *ChartOfAccounts) Issues() []HierarchyIssue {
	ids := make([]string, 0, len(c.byID))
	for id := range c.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var issues []HierarchyIssue
	for _, id := range ids {
		a := c.byID[id]
		if a.IsRoot() {
			continue
		}
		parent, ok := c.byID[a.ParentAccountID]
		if !ok {
			issues = append(issues, HierarchyIssue{AccountID: id, ParentID: a.ParentAccountID, Problem: IssueMissingParent})
			continue
		}
		if c.inCycle(id) {
			issues = append(issues, HierarchyIssue{AccountID: id, ParentID: a.ParentAccountID, Problem: IssueCycle})
			continue
		}
		if parent.AccountType != a.AccountType {
			issues = append(issues, HierarchyIssue{
				AccountID: id,
				ParentID:  parent.AccountID,
				Problem:   fmt.Sprintf("%s: %s under %s", IssueTypeMismatch, a.AccountType, parent.AccountType),
			})
		}
	}
	return issues
}

func (c *ChartOfAccounts) inCycle(id string) bool {
	seen := map[string]bool{}
	cur := id
	for {
		a, ok := c.byID[cur]
		if !ok || a.IsRoot() {
			return false
		}
		if seen[cur] {
			return true
		}
		seen[cur] = true
		cur = a.ParentAccountID
		if cur == id {
			return true
		}
	}
}
