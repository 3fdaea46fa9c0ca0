package api

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	service "github.com/okian/prodboard/internal/app"
)

const dateParamLayout = "2006-01-02"

// parseQuery reads the dashboard selection from URL parameters:
// machine and operator (repeatable or comma-separated), from and to
// (YYYY-MM-DD, inclusive) and serial. Range ordering is checked by the
// service.
func parseQuery(v url.Values) (service.Query, error) {
	var q service.Query
	q.Machines = listParam(v, "machine")
	q.Criteria.Operators = listParam(v, "operator")
	q.Criteria.Serial = strings.TrimSpace(v.Get("serial"))

	var err error
	if q.Criteria.From, err = dateParam(v, "from"); err != nil {
		return service.Query{}, err
	}
	if q.Criteria.To, err = dateParam(v, "to"); err != nil {
		return service.Query{}, err
	}
	return q, nil
}

func listParam(v url.Values, key string) []string {
	var out []string
	for _, raw := range v[key] {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func dateParam(v url.Values, key string) (time.Time, error) {
	raw := strings.TrimSpace(v.Get(key))
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateParamLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid %s %q; must be YYYY-MM-DD", ErrBadRequest, key, raw)
	}
	return t, nil
}
