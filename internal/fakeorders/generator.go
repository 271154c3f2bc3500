// Package fakeorders генерирует синтетические файлы заказов для демонстрации и тестов.
package fakeorders

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"costdb/internal/domain/models"
)

// catalogItem реальная позиция и варианты ее написания в заказах
type catalogItem struct {
	variants  []string
	basePrice float64
	unit      string
}

var catalog = []catalogItem{
	{[]string{"Carbon Steel Pipe 100mm", "carbon steel pipe 100 mm", "CS Pipe 100 MM", "C.S. Pipe 100mm"}, 1200, "pcs"},
	{[]string{"Carbon Steel Pipe 50mm", "CS Pipe 50 mm", "carbon steel pipe 50mm"}, 650, "pcs"},
	{[]string{"Stainless Steel Valve 2 inch", `SS Valve 2"`, "stainless steel valve 2in"}, 5000, "pcs"},
	{[]string{"Gate Valve CS 50mm", "gate valve carbon steel 50 mm", "Gate valve, CS, 50mm"}, 4500, "pcs"},
	{[]string{"Hex Bolt M12", "Hex Bolts M12", "hex bolt m12 zinc"}, 2.5, "pcs"},
	{[]string{"Bearing 6204", "Ball Bearing 6204", "bearing 6204-2RS"}, 18, "pcs"},
	{[]string{"Welding Electrode 3.2mm", "Electrode 3.2 mm", "welding electrodes 3.2mm"}, 6, "kg"},
	{[]string{"Centrifugal Pump 5HP", "centrifugal pump 5 hp", "Pump centrifugal 5HP"}, 38000, "pcs"},
	{[]string{"Spiral Wound Gasket 4 inch", "SW Gasket 4\"", "spiral wound gasket 4in"}, 320, "pcs"},
	{[]string{"Safety Helmet", "safety helmets", "Helmet safety"}, 15, "pcs"},
}

var (
	regions     = []string{"North", "South", "East", "West"}
	departments = []string{"Maintenance", "Operations", "Projects", "Utilities"}
)

// Options параметры генерации
type Options struct {
	Rows int
	Seed int64
	// AnomalyRate доля заказов с завышенной или заниженной ценой
	AnomalyRate float64
	Start       time.Time
	Days        int
}

// DefaultOptions параметры по умолчанию
func DefaultOptions() Options {
	return Options{
		Rows:        200,
		Seed:        42,
		AnomalyRate: 0.05,
		Start:       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Days:        365,
	}
}

// Generate возвращает заказы, детерминированные по Seed
func Generate(opts Options) []models.PurchaseOrder {
	if opts.Rows <= 0 {
		return nil
	}
	if opts.Days <= 0 {
		opts.Days = 365
	}
	if opts.Start.IsZero() {
		opts.Start = DefaultOptions().Start
	}

	faker := gofakeit.New(opts.Seed)

	suppliers := make([]string, 6)
	for i := range suppliers {
		suppliers[i] = faker.Company()
	}

	orders := make([]models.PurchaseOrder, opts.Rows)
	for i := range orders {
		item := catalog[faker.Number(0, len(catalog)-1)]

		price := item.basePrice * (1 + faker.Float64Range(-0.08, 0.08))
		if faker.Float64Range(0, 1) < opts.AnomalyRate {
			if faker.Bool() {
				price *= faker.Float64Range(1.5, 3)
			} else {
				price *= faker.Float64Range(0.2, 0.5)
			}
		}

		orders[i] = models.PurchaseOrder{
			POID:            fmt.Sprintf("PO%05d", i+1),
			ItemDescription: faker.RandomString(item.variants),
			UnitPrice:       math.Round(price*100) / 100,
			Quantity:        faker.Number(1, 50),
			Unit:            item.unit,
			PODate:          opts.Start.AddDate(0, 0, faker.Number(0, opts.Days-1)),
			Region:          faker.RandomString(regions),
			Department:      faker.RandomString(departments),
			Supplier:        faker.RandomString(suppliers),
		}
		if orders[i].UnitPrice <= 0 {
			orders[i].UnitPrice = 0.01
		}
	}

	sort.Slice(orders, func(i, j int) bool { return orders[i].POID < orders[j].POID })
	return orders
}
