package analytics

import "errors"

var (
	// ErrOrphanStandardizedItem стандартизированная позиция ссылается на отсутствующий заказ
	ErrOrphanStandardizedItem = errors.New("standardized item references unknown po_id")
)
