package catalog_repo

import (
	"framasa/internal/domain/catalogs/machinery"
	"framasa/internal/infrastructure/storage/postgres"
)

const machineryTable = "cat_machinery"

// MachineryRepo implements machinery.Repository.
type MachineryRepo struct {
	*BaseCatalogRepo[*machinery.Machinery]
}

// NewMachineryRepo creates a new machinery repository.
func NewMachineryRepo(txm *postgres.TxManager) *MachineryRepo {
	return &MachineryRepo{
		BaseCatalogRepo: NewBaseCatalogRepo[*machinery.Machinery](
			txm,
			machineryTable,
			postgres.ExtractDBColumns[machinery.Machinery](),
			func() *machinery.Machinery { return &machinery.Machinery{} },
		),
	}
}
