package catalog_repo

import (
	"framasa/internal/domain/catalogs/truck"
	"framasa/internal/infrastructure/storage/postgres"
)

const trucksTable = "cat_trucks"

// TruckRepo implements truck.Repository.
type TruckRepo struct {
	*BaseCatalogRepo[*truck.Truck]
}

// NewTruckRepo creates a new truck repository.
func NewTruckRepo(txm *postgres.TxManager) *TruckRepo {
	return &TruckRepo{
		BaseCatalogRepo: NewBaseCatalogRepo[*truck.Truck](
			txm,
			trucksTable,
			postgres.ExtractDBColumns[truck.Truck](),
			func() *truck.Truck { return &truck.Truck{} },
		),
	}
}
