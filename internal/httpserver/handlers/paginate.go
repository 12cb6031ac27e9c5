package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"gorm.io/gorm"
)

const (
	defaultLimit = 5
	maxLimit     = 50
)

// pageParams carries list-endpoint query parameters. sort and filters
// arrive JSON-encoded, e.g. ?sort={"name":1}&filters={"role":"user"}.
type pageParams struct {
	Limit   int
	Offset  int
	Sort    map[string]int
	Filters map[string]string
}

func parsePageParams(r *http.Request) pageParams {
	p := pageParams{Limit: defaultLimit}
	q := r.URL.Query()

	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			p.Limit = n
		}
	}
	if p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			p.Offset = n
		}
	}
	if v := q.Get("sort"); v != "" {
		_ = json.Unmarshal([]byte(v), &p.Sort)
	}
	if v := q.Get("filters"); v != "" {
		_ = json.Unmarshal([]byte(v), &p.Filters)
	}
	return p
}

// apply scopes a query with the page's filters, sort and window. Only
// column names in allowed are honored; everything else is ignored.
func (p pageParams) apply(q *gorm.DB, allowed ...string) *gorm.DB {
	ok := make(map[string]bool, len(allowed))
	for _, col := range allowed {
		ok[col] = true
	}

	for col, val := range p.Filters {
		if !ok[col] || val == "" {
			continue
		}
		q = q.Where(col+" LIKE ?", "%"+val+"%")
	}
	for col, dir := range p.Sort {
		if !ok[col] {
			continue
		}
		if dir < 0 {
			q = q.Order(col + " desc")
		} else {
			q = q.Order(col)
		}
	}
	// limit=0 means "no rows", never "no limit"
	return q.Limit(p.Limit).Offset(p.Offset)
}

// countScope applies only the filters, for total counts.
func (p pageParams) countScope(q *gorm.DB, allowed ...string) *gorm.DB {
	ok := make(map[string]bool, len(allowed))
	for _, col := range allowed {
		ok[col] = true
	}
	for col, val := range p.Filters {
		if !ok[col] || val == "" {
			continue
		}
		q = q.Where(col+" LIKE ?", "%"+val+"%")
	}
	return q
}

type page struct {
	Docs      any   `json:"docs"`
	TotalDocs int64 `json:"totalDocs"`
	Limit     int   `json:"limit"`
	Offset    int   `json:"offset"`
}

func respondPage(w http.ResponseWriter, p pageParams, docs any, total int64) {
	respondJSON(w, http.StatusOK, page{Docs: docs, TotalDocs: total, Limit: p.Limit, Offset: p.Offset})
}

// listModel is the shared list pipeline: count with filters, then fetch the
// requested window with preloads.
func listModel(db *gorm.DB, model any, out any, p pageParams, preloads []string, allowed ...string) (int64, error) {
	var total int64
	if err := p.countScope(db.Model(model), allowed...).Count(&total).Error; err != nil {
		return 0, err
	}
	q := p.apply(db.Model(model), allowed...)
	for _, pre := range preloads {
		q = q.Preload(pre)
	}
	if len(p.Sort) == 0 {
		q = q.Order("created_at desc")
	}
	if err := q.Find(out).Error; err != nil {
		return 0, err
	}
	return total, nil
}
