package core

// ActionQuantity is the aggregated quantity of one action.
type ActionQuantity struct {
	Name     string
	Quantity int64
}

// SummaryQuery selects records. An empty User or a zero WindowStart means unset.
type SummaryQuery struct {
	User        string
	WindowStart Date
}

// Summary is derived on demand and never persisted. PerAction keeps the order
// in which actions were first seen; Skipped counts rows that failed coercion.
type Summary struct {
	PerAction   []ActionQuantity
	TotalAmount int64
	Skipped     int
}

// Quantity returns the aggregated quantity for name, or 0.
func (s Summary) Quantity(name string) int64 {
	for _, a := range s.PerAction {
		if a.Name == name {
			return a.Quantity
		}
	}
	return 0
}

func (q SummaryQuery) matches(r PricedRecord) bool {
	if q.User != "" && r.User != q.User {
		return false
	}
	if !q.WindowStart.IsEmpty() && r.Date.Before(q.WindowStart.Time) {
		return false
	}
	return true
}

// Summarize coerces stored rows and aggregates those matching q. Rows that
// cannot be coerced are skipped, never aborting the summary.
func Summarize(rows []Row, q SummaryQuery) Summary {
	records := make([]PricedRecord, 0, len(rows))
	skipped := 0
	for _, row := range rows {
		rec, err := CoerceRow(row)
		if err != nil {
			skipped++
			continue
		}
		records = append(records, rec)
	}
	s := SummarizeRecords(records, q)
	s.Skipped = skipped
	return s
}

// SummarizeRecords aggregates already typed records matching q.
func SummarizeRecords(records []PricedRecord, q SummaryQuery) Summary {
	s := Summary{PerAction: []ActionQuantity{}}
	pos := map[string]int{}
	for _, r := range records {
		if !q.matches(r) {
			continue
		}
		i, seen := pos[r.ActionName]
		if !seen {
			i = len(s.PerAction)
			pos[r.ActionName] = i
			s.PerAction = append(s.PerAction, ActionQuantity{Name: r.ActionName})
		}
		s.PerAction[i].Quantity += r.Quantity
		s.TotalAmount += r.Total
	}
	return s
}
