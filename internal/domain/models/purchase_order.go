package models

import "time"

// DateLayout формат даты заказа во входных и выходных файлах
const DateLayout = "2006-01-02"

// ItemCodeFormat формат кода канонической позиции
const ItemCodeFormat = "ITM-%05d"

// RequiredColumns обязательные колонки исходного файла заказов
var RequiredColumns = []string{
	"po_id",
	"item_description",
	"unit_price",
	"quantity",
	"unit",
	"po_date",
	"region",
	"department",
	"supplier",
}

// PurchaseOrder строка исходного файла закупок. После загрузки не изменяется.
type PurchaseOrder struct {
	POID            string    `json:"po_id"`
	ItemDescription string    `json:"item_description"`
	UnitPrice       float64   `json:"unit_price"`
	Quantity        int       `json:"quantity"`
	Unit            string    `json:"unit"`
	PODate          time.Time `json:"po_date"`
	Region          string    `json:"region"`
	Department      string    `json:"department"`
	Supplier        string    `json:"supplier"`
}

// CanonicalItem кластер вариантов написания одной реальной позиции
type CanonicalItem struct {
	ItemCode          string  `json:"item_code"`
	CanonicalItemName string  `json:"canonical_item_name"`
	NormalizedKey     string  `json:"normalized_key"`
	MemberCount       int     `json:"member_count"`
	Category          *string `json:"category"`
}

// StandardizedItem заказ, сопоставленный с канонической позицией
type StandardizedItem struct {
	POID              string  `json:"po_id"`
	ItemCode          string  `json:"item_code"`
	CanonicalItemName string  `json:"canonical_item_name"`
	ConfidenceScore   float64 `json:"confidence_score"`
	Category          *string `json:"category"`
}

// PricedItem стандартизированная позиция вместе с полями исходного заказа
type PricedItem struct {
	StandardizedItem
	UnitPrice float64   `json:"unit_price"`
	Quantity  int       `json:"quantity"`
	Unit      string    `json:"unit"`
	PODate    time.Time `json:"po_date"`
	Region    string    `json:"region"`
	Supplier  string    `json:"supplier"`
}

// JoinOrders соединяет стандартизированные позиции с исходными заказами по po_id.
// Возвращает po_id позиций, для которых исходный заказ не найден.
func JoinOrders(items []StandardizedItem, orders []PurchaseOrder) ([]PricedItem, []string) {
	byID := make(map[string]*PurchaseOrder, len(orders))
	for i := range orders {
		byID[orders[i].POID] = &orders[i]
	}

	joined := make([]PricedItem, 0, len(items))
	var orphans []string
	for _, item := range items {
		order, ok := byID[item.POID]
		if !ok {
			orphans = append(orphans, item.POID)
			continue
		}
		joined = append(joined, PricedItem{
			StandardizedItem: item,
			UnitPrice:        order.UnitPrice,
			Quantity:         order.Quantity,
			Unit:             order.Unit,
			PODate:           order.PODate,
			Region:           order.Region,
			Supplier:         order.Supplier,
		})
	}
	return joined, orphans
}

// StringPtr возвращает указатель на строку; пустая строка превращается в nil
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// StringValue разыменовывает указатель, nil превращается в пустую строку
func StringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
