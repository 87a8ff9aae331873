package debtdoc

import (
	"fmt"
	"sort"
)

// KindLabel maps a variant to its display kind. The switch is exhaustive
// over the sealed set; an unknown variant is a programming error.
func KindLabel(doc Document) (string, error) {
	switch doc.(type) {
	case SupplierReceipt:
		return "goods_receipt", nil
	case SupplierReturn:
		return "goods_return", nil
	case *PriceAdjustment:
		return "price_adjustment", nil
	case *SalesInvoice:
		return "sales_invoice", nil
	case *SalesReturn:
		return "sales_return", nil
	default:
		return "", fmt.Errorf("debtdoc: unhandled document variant %T", doc)
	}
}

// Stream filters to confirmed documents and sorts by business date
// ascending; the sort is stable so same-date documents keep their
// assembled order.
func Stream(docs []Document) []Document {
	confirmed := make([]Document, 0, len(docs))
	for _, d := range docs {
		if d.DocStatus().IsConfirmed() {
			confirmed = append(confirmed, d)
		}
	}
	sort.SliceStable(confirmed, func(i, j int) bool {
		return confirmed[i].DocDate().Before(confirmed[j].DocDate())
	})
	return confirmed
}
