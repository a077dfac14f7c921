package store

import (
	"github.com/safar/go-market-server/internal/database"
	"github.com/safar/go-market-server/internal/models"
)

type ShippingTypeRepository struct {
	*Repository[models.ShippingType]
}

func NewShippingTypeRepository(q Queryer, onWrite func(int64)) *ShippingTypeRepository {
	return &ShippingTypeRepository{&Repository[models.ShippingType]{
		q:       q,
		table:   "shipping_types",
		columns: []string{"id", "name", "description", "delivery_time", "price"},
		scanRow: func(s scanner) (*models.ShippingType, error) {
			st := &models.ShippingType{}
			err := s.Scan(&st.ID, &st.Name, &st.Description, &st.DeliveryTime, &st.Price)
			if err != nil {
				return nil, err
			}
			return st, nil
		},
		values: func(st *models.ShippingType) []any {
			return []any{st.Name, st.Description, st.DeliveryTime, st.Price}
		},
		entityID: func(st *models.ShippingType) int64 { return st.ID },
		setID:    func(st *models.ShippingType, id int64) { st.ID = id },
		notFound: database.ErrShippingTypeNotFound,
		onWrite:  onWrite,
	}}
}
