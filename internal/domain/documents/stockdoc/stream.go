package stockdoc

import (
	"sort"
	"time"
)

// Stream assembles the replay input: confirmed documents only, sorted by
// business date ascending. The sort is stable, so documents sharing a date
// keep their relative order in the assembled slice
// (receipts → write-offs → transfers → returns).
func Stream(receipts []*Receipt, writeOffs []*WriteOff, transfers []*Transfer, returns []*Return) []Document {
	docs := make([]Document, 0, len(receipts)+len(writeOffs)+len(transfers)+len(returns))
	for _, d := range receipts {
		docs = append(docs, d)
	}
	for _, d := range writeOffs {
		docs = append(docs, d)
	}
	for _, d := range transfers {
		docs = append(docs, d)
	}
	for _, d := range returns {
		docs = append(docs, d)
	}

	confirmed := docs[:0]
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

// Before returns the documents dated strictly before t, keeping order.
func Before(docs []Document, t time.Time) []Document {
	out := make([]Document, 0, len(docs))
	for _, d := range docs {
		if d.DocDate().Before(t) {
			out = append(out, d)
		}
	}
	return out
}
