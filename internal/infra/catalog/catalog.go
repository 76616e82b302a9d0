// Package catalog holds the machine's factory drink lineup, used to seed
// the store on first run. Prices are integer cents.
package catalog

import "github.com/vendo-machines/vendo/internal/domain"

const defaultStock = 5

// Slot ids are "<row>.<column>" on the button grid.
var drinks = []domain.Drink{
	{ID: "1.1", Name: "Ramune Original Flavor", Temp: "cold", PriceCents: 200, Stock: defaultStock},
	{ID: "1.2", Name: "Ramune Original Flavor", Temp: "cold", PriceCents: 200, Stock: defaultStock},
	{ID: "1.3", Name: "Ramune Mango & Pineapple", Temp: "cold", PriceCents: 300, Stock: defaultStock},
	{ID: "1.4", Name: "Calpico Strawberry Flavor", Temp: "cold", PriceCents: 250, Stock: defaultStock},
	{ID: "1.5", Name: "Calpico Original Flavor", Temp: "cold", PriceCents: 250, Stock: defaultStock},
	{ID: "1.6", Name: "Relax Milk Tea", Temp: "cold", PriceCents: 300, Stock: defaultStock},
	{ID: "1.7", Name: "Sparkling Water Peach Flavor", Temp: "cold", PriceCents: 200, Stock: defaultStock},
	{ID: "1.8", Name: "Oolong Tea Peach Flavor", Temp: "cold", PriceCents: 200, Stock: defaultStock},

	{ID: "2.1", Name: "Royal Milk Tea", Temp: "cold", PriceCents: 200, Stock: defaultStock},
	{ID: "2.2", Name: "Wangzai Milk", Temp: "cold", PriceCents: 200, Stock: defaultStock},
	{ID: "2.3", Name: "Plum Drink", Temp: "cold", PriceCents: 300, Stock: defaultStock},
	{ID: "2.4", Name: "Grape Cocktail (Non-alcoholic)", Temp: "cold", PriceCents: 250, Stock: defaultStock},
	{ID: "2.5", Name: "Orange Cocktail (Non-alcoholic)", Temp: "cold", PriceCents: 250, Stock: defaultStock},
	{ID: "2.6", Name: "Nectar Peach Juice", Temp: "cold", PriceCents: 300, Stock: defaultStock},
	{ID: "2.7", Name: "Cafe Latte Caramel", Temp: "cold", PriceCents: 200, Stock: defaultStock},
	{ID: "2.8", Name: "DemiSoda Peach Flavor", Temp: "cold", PriceCents: 200, Stock: defaultStock},

	{ID: "3.1", Name: "Royal Milk Tea", Temp: "cold", PriceCents: 200, Stock: defaultStock},
	{ID: "3.2", Name: "Wangzai Milk", Temp: "cold", PriceCents: 200, Stock: defaultStock},
	{ID: "3.3", Name: "Plum Drink", Temp: "cold", PriceCents: 300, Stock: defaultStock},
	{ID: "3.4", Name: "Grape Cocktail (Non-alcoholic)", Temp: "cold", PriceCents: 250, Stock: defaultStock},
	{ID: "3.5", Name: "Apple Juice", Temp: "cold", PriceCents: 250, Stock: defaultStock},
	{ID: "3.6", Name: "Nectar Peach Juice", Temp: "cold", PriceCents: 300, Stock: defaultStock},
	{ID: "3.7", Name: "Jeju Matcha Latte", Temp: "cold", PriceCents: 200, Stock: defaultStock},
	{ID: "3.8", Name: "DemiSoda Grapefruit Flavor", Temp: "cold", PriceCents: 200, Stock: defaultStock},
}

// Drinks returns a copy of the factory lineup.
func Drinks() []domain.Drink {
	out := make([]domain.Drink, len(drinks))
	copy(out, drinks)
	return out
}

// Lookup returns the catalog entry for a slot id, or nil if unknown.
func Lookup(id string) *domain.Drink {
	for i := range drinks {
		if drinks[i].ID == id {
			d := drinks[i]
			return &d
		}
	}
	return nil
}
