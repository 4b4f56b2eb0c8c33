package memory

import (
	"testing"

	"github.com/stretchr/testify/suite"

	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_core/internal/repositories/storetest"
)

func TestStoreContract(t *testing.T) {
	suite.Run(t, &storetest.ContractSuite{
		NewProvider: func(t *testing.T) portsrepo.RepositoryProvider {
			return NewStore().Provider()
		},
	})
}
