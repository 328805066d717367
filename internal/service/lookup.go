package service

import (
	"storefront/internal/model"
)

func findProduct(products []model.Product, id string) (model.Product, bool) {
	for _, p := range products {
		if p.ID == id {
			return p, true
		}
	}
	return model.Product{}, false
}

func findUser(users []model.User, id string) (model.User, bool) {
	for _, u := range users {
		if u.ID == id {
			return u, true
		}
	}
	return model.User{}, false
}

func findVoucher(vouchers []model.Voucher, id string) (model.Voucher, bool) {
	for _, v := range vouchers {
		if v.ID == id {
			return v, true
		}
	}
	return model.Voucher{}, false
}

func findOrder(orders []model.Order, id string) (model.Order, bool) {
	for _, o := range orders {
		if o.ID == id {
			return o, true
		}
	}
	return model.Order{}, false
}

func findOffer(offers []model.Offer, id string) (model.Offer, bool) {
	for _, o := range offers {
		if o.ID == id {
			return o, true
		}
	}
	return model.Offer{}, false
}
