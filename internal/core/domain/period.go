package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// AccountingPeriod is a closed date range entries are posted into. Both
// StartDate and EndDate are inclusive calendar dates.
type AccountingPeriod struct {
	PeriodID     string     `json:"periodID"`
	Name         string     `json:"name"`
	StartDate    time.Time  `json:"startDate"`
	EndDate      time.Time  `json:"endDate"`
	IsClosed     bool       `json:"isClosed"`
	ClosedAt     *time.Time `json:"closedAt,omitempty"`
	FiscalYearID string     `json:"fiscalYearID"`
	AuditFields
}

// Overlaps reports whether the two ranges share at least one day.
// Touching boundaries count as overlap.
func (p AccountingPeriod) Overlaps(o AccountingPeriod) bool {
	return !DateOf(p.StartDate).After(DateOf(o.EndDate)) && !DateOf(o.StartDate).After(DateOf(p.EndDate))
}

// Contains reports whether date falls inside the period.
func (p AccountingPeriod) Contains(date time.Time) bool {
	d := DateOf(date)
	return !d.Before(DateOf(p.StartDate)) && !d.After(DateOf(p.EndDate))
}

// PeriodInput is a candidate period.
type PeriodInput struct {
	Name         string
	StartDate    time.Time
	EndDate      time.Time
	FiscalYearID string
}

// PeriodPatch is a partial update; nil fields are left unchanged.
type PeriodPatch struct {
	Name         *string
	StartDate    *time.Time
	EndDate      *time.Time
	FiscalYearID *string
}

// ChangesRange reports whether the patch moves either boundary.
func (p PeriodPatch) ChangesRange() bool {
	return p.StartDate != nil || p.EndDate != nil
}

// PeriodFilter narrows period listings. Search matches the name without
// regard to case; FiscalYear must match exactly.
type PeriodFilter struct {
	Search     string
	FiscalYear string
}

// NewPeriod builds a period from input, normalising dates to whole days.
func NewPeriod(id string, in PeriodInput, actor string, now time.Time) AccountingPeriod {
	return AccountingPeriod{
		PeriodID:     id,
		Name:         strings.TrimSpace(in.Name),
		StartDate:    DateOf(in.StartDate),
		EndDate:      DateOf(in.EndDate),
		FiscalYearID: in.FiscalYearID,
		AuditFields:  NewAuditFields(actor, now),
	}
}

func checkRange(p AccountingPeriod) error {
	if p.StartDate.IsZero() || p.EndDate.IsZero() {
		return &PeriodError{Kind: KindInvalidRange, PeriodID: p.PeriodID, Detail: "startDate and endDate are required"}
	}
	if !DateOf(p.StartDate).Before(DateOf(p.EndDate)) {
		return &PeriodError{
			Kind:     KindInvalidRange,
			PeriodID: p.PeriodID,
			Detail: fmt.Sprintf("startDate %s must be before endDate %s",
				p.StartDate.Format(DateLayout), p.EndDate.Format(DateLayout)),
		}
	}
	return nil
}

func findOverlap(periods []AccountingPeriod, p AccountingPeriod) error {
	for _, o := range periods {
		if o.PeriodID == p.PeriodID {
			continue
		}
		if p.Overlaps(o) {
			return &PeriodError{
				Kind:          KindOverlap,
				PeriodID:      p.PeriodID,
				ConflictingID: o.PeriodID,
				Detail: fmt.Sprintf("%s..%s overlaps %q (%s..%s)",
					p.StartDate.Format(DateLayout), p.EndDate.Format(DateLayout),
					o.Name, o.StartDate.Format(DateLayout), o.EndDate.Format(DateLayout)),
			}
		}
	}
	return nil
}

func indexOfPeriod(periods []AccountingPeriod, id string) int {
	for i, p := range periods {
		if p.PeriodID == id {
			return i
		}
	}
	return -1
}

func clonePeriods(periods []AccountingPeriod) []AccountingPeriod {
	out := make([]AccountingPeriod, len(periods))
	copy(out, periods)
	return out
}

func periodNotFound(id string) error {
	return &PeriodError{Kind: KindNotFound, PeriodID: id, Detail: "period not found"}
}

// InsertPeriod returns periods with p appended, or an error if p has an
// invalid range or overlaps any existing period. The input is not modified.
func InsertPeriod(periods []AccountingPeriod, p AccountingPeriod) ([]AccountingPeriod, error) {
	if err := checkRange(p); err != nil {
		return nil, err
	}
	if indexOfPeriod(periods, p.PeriodID) >= 0 {
		return nil, &PeriodError{Kind: KindOverlap, PeriodID: p.PeriodID, ConflictingID: p.PeriodID, Detail: "period id already exists"}
	}
	if err := findOverlap(periods, p); err != nil {
		return nil, err
	}
	return append(clonePeriods(periods), p), nil
}

// ReplacePeriod applies patch to the period with id. When the range moves the
// overlap scan is re-run against every other period.
func ReplacePeriod(periods []AccountingPeriod, id string, patch PeriodPatch, actor string, now time.Time) ([]AccountingPeriod, AccountingPeriod, error) {
	i := indexOfPeriod(periods, id)
	if i < 0 {
		return nil, AccountingPeriod{}, periodNotFound(id)
	}
	p := periods[i]
	if patch.Name != nil {
		p.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.FiscalYearID != nil {
		p.FiscalYearID = *patch.FiscalYearID
	}
	if patch.StartDate != nil {
		p.StartDate = DateOf(*patch.StartDate)
	}
	if patch.EndDate != nil {
		p.EndDate = DateOf(*patch.EndDate)
	}
	if patch.ChangesRange() {
		if err := checkRange(p); err != nil {
			return nil, AccountingPeriod{}, err
		}
		if err := findOverlap(periods, p); err != nil {
			return nil, AccountingPeriod{}, err
		}
	}
	p.Touch(actor, now)
	out := clonePeriods(periods)
	out[i] = p
	return out, p, nil
}

// ClosePeriodIn marks the period closed and stamps ClosedAt with now. Closing
// an already closed period re-stamps it.
func ClosePeriodIn(periods []AccountingPeriod, id string, actor string, now time.Time) ([]AccountingPeriod, AccountingPeriod, error) {
	i := indexOfPeriod(periods, id)
	if i < 0 {
		return nil, AccountingPeriod{}, periodNotFound(id)
	}
	p := periods[i]
	closedAt := now
	p.IsClosed = true
	p.ClosedAt = &closedAt
	p.Touch(actor, now)
	out := clonePeriods(periods)
	out[i] = p
	return out, p, nil
}

// ReopenPeriodIn reopens the period unless a period starting after its end
// is closed.
func ReopenPeriodIn(periods []AccountingPeriod, id string, actor string, now time.Time) ([]AccountingPeriod, AccountingPeriod, error) {
	i := indexOfPeriod(periods, id)
	if i < 0 {
		return nil, AccountingPeriod{}, periodNotFound(id)
	}
	p := periods[i]
	end := DateOf(p.EndDate)
	for _, o := range periods {
		if o.PeriodID != id && o.IsClosed && DateOf(o.StartDate).After(end) {
			return nil, AccountingPeriod{}, &PeriodError{
				Kind:          KindLaterPeriodClosed,
				PeriodID:      id,
				ConflictingID: o.PeriodID,
				Detail:        fmt.Sprintf("later period %q is closed", o.Name),
			}
		}
	}
	p.IsClosed = false
	p.ClosedAt = nil
	p.Touch(actor, now)
	out := clonePeriods(periods)
	out[i] = p
	return out, p, nil
}

// RemovePeriod drops an open period. Closed periods cannot be deleted.
func RemovePeriod(periods []AccountingPeriod, id string) ([]AccountingPeriod, error) {
	i := indexOfPeriod(periods, id)
	if i < 0 {
		return nil, periodNotFound(id)
	}
	if periods[i].IsClosed {
		return nil, &PeriodError{Kind: KindPeriodClosed, PeriodID: id, Detail: "closed periods cannot be deleted"}
	}
	out := make([]AccountingPeriod, 0, len(periods)-1)
	out = append(out, periods[:i]...)
	out = append(out, periods[i+1:]...)
	return out, nil
}

// FilterPeriods returns the matching periods ordered by start date.
func FilterPeriods(periods []AccountingPeriod, f PeriodFilter) []AccountingPeriod {
	search := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]AccountingPeriod, 0, len(periods))
	for _, p := range periods {
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) {
			continue
		}
		if f.FiscalYear != "" && p.FiscalYearID != f.FiscalYear {
			continue
		}
		out = append(out, p)
	}
	SortPeriods(out)
	return out
}

// SortPeriods orders periods by start date, then id.
func SortPeriods(periods []AccountingPeriod) {
	sort.SliceStable(periods, func(i, j int) bool {
		if !periods[i].StartDate.Equal(periods[j].StartDate) {
			return periods[i].StartDate.Before(periods[j].StartDate)
		}
		return periods[i].PeriodID < periods[j].PeriodID
	})
}

// PeriodFor returns the period containing date. Periods never overlap so at
// most one matches.
func PeriodFor(periods []AccountingPeriod, date time.Time) (AccountingPeriod, bool) {
	for _, p := range periods {
		if p.Contains(date) {
			return p, true
		}
	}
	return AccountingPeriod{}, false
}

// EnsureOpenIn returns nil when date falls in an open period.
func EnsureOpenIn(periods []AccountingPeriod, date time.Time) error {
	p, ok := PeriodFor(periods, date)
	if !ok {
		return &PeriodError{Kind: KindNoOpenPeriod, Detail: fmt.Sprintf("no period covers %s", DateOf(date).Format(DateLayout))}
	}
	if p.IsClosed {
		return &PeriodError{Kind: KindPeriodClosed, PeriodID: p.PeriodID, Detail: fmt.Sprintf("period %q is closed", p.Name)}
	}
	return nil
}

// PeriodDiff is the set of row changes between two period collections.
type PeriodDiff struct {
	Added   []AccountingPeriod
	Changed []AccountingPeriod
	Removed []string
}

// IsEmpty reports whether nothing changed.
func (d PeriodDiff) IsEmpty() bool {
	return len(d.Added) == 0 && len(d.Changed) == 0 && len(d.Removed) == 0
}

// DiffPeriods compares two collections by id so stores can persist only what
// a mutation touched.
func DiffPeriods(before, after []AccountingPeriod) PeriodDiff {
	old := make(map[string]AccountingPeriod, len(before))
	for _, p := range before {
		old[p.PeriodID] = p
	}
	var d PeriodDiff
	seen := make(map[string]bool, len(after))
	for _, p := range after {
		seen[p.PeriodID] = true
		prev, ok := old[p.PeriodID]
		switch {
		case !ok:
			d.Added = append(d.Added, p)
		case !samePeriod(prev, p):
			d.Changed = append(d.Changed, p)
		}
	}
	for _, p := range before {
		if !seen[p.PeriodID] {
			d.Removed = append(d.Removed, p.PeriodID)
		}
	}
	return d
}

func samePeriod(a, b AccountingPeriod) bool {
	if a.Name != b.Name || !a.StartDate.Equal(b.StartDate) || !a.EndDate.Equal(b.EndDate) ||
		a.IsClosed != b.IsClosed || a.FiscalYearID != b.FiscalYearID ||
		!a.LastUpdatedAt.Equal(b.LastUpdatedAt) || a.LastUpdatedBy != b.LastUpdatedBy {
		return false
	}
	switch {
	case a.ClosedAt == nil && b.ClosedAt == nil:
		return true
	case a.ClosedAt == nil || b.ClosedAt == nil:
		return false
	}
	return a.ClosedAt.Equal(*b.ClosedAt)
}
