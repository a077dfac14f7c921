package order

import (
	"context"
	"database/sql"

	"github.com/safar/go-market-server/internal/store"
)

// SQLTxFactory opens a store.UnitOfWork per call and presents it through
// the Tx port.
type SQLTxFactory struct {
	DB *sql.DB
}

func (f SQLTxFactory) Begin(ctx context.Context) (Tx, error) {
	uow, err := store.Begin(ctx, f.DB)
	if err != nil {
		return nil, err
	}
	return uowTx{uow}, nil
}

type uowTx struct {
	*store.UnitOfWork
}

func (t uowTx) Products() ProductReader           { return t.UnitOfWork.Products() }
func (t uowTx) ShippingTypes() ShippingTypeReader { return t.UnitOfWork.ShippingTypes() }
func (t uowTx) Orders() OrderWriter               { return t.UnitOfWork.Orders() }
