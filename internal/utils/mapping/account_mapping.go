package mapping

import (
	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/SscSPs/ledger_core/internal/models"
)

// ToModelAccount converts a domain Account to a model Account
func ToModelAccount(d domain.Account) models.Account {
	return models.Account{
		AccountID:       d.AccountID,
		Number:          d.Number,
		Name:            d.Name,
		AccountType:     string(d.AccountType),
		ParentAccountID: optional(d.ParentAccountID),
		Description:     d.Description,
		IsActive:        d.IsActive,
		Balance:         int64(d.Balance),
		AuditFields:     ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainAccount converts a model Account to a domain Account
func ToDomainAccount(m models.Account) domain.Account {
	return domain.Account{
		AccountID:       m.AccountID,
		Number:          m.Number,
		Name:            m.Name,
		AccountType:     domain.AccountType(m.AccountType),
		ParentAccountID: deref(m.ParentAccountID),
		Description:     m.Description,
		IsActive:        m.IsActive,
		Balance:         domain.Money(m.Balance),
		AuditFields:     ToDomainAuditFields(m.AuditFields),
	}
}
