package listing

import (
	"net/url"
	"strconv"
	"strings"
)

// Request is a parsed listing query string.
type Request struct {
	Query     string
	Filters   []Filter
	Sort      string
	Dir       string
	Cols      []string
	ColsGiven bool
	Page      int
	PageSize  int
}

// ParseRequest reads q, f[key], sort, dir, cols, page and page_size from a raw
// query string. Filters keep the order in which they were sent.
func ParseRequest(rawQuery string) Request {
	values, _ := url.ParseQuery(rawQuery)
	req := Request{
		Query: strings.TrimSpace(values.Get("q")),
		Sort:  strings.TrimSpace(values.Get("sort")),
		Dir:   strings.TrimSpace(values.Get("dir")),
	}
	if _, ok := values["cols"]; ok {
		req.ColsGiven = true
		for _, key := range strings.Split(values.Get("cols"), ",") {
			if key = strings.TrimSpace(key); key != "" {
				req.Cols = append(req.Cols, key)
			}
		}
	}
	req.Page = atoiOrZero(values.Get("page"))
	req.PageSize = atoiOrZero(values.Get("page_size"))
	req.Filters = orderedFilters(rawQuery)
	return req
}

func orderedFilters(rawQuery string) []Filter {
	var out []Filter
	seen := map[string]int{}
	for _, pair := range strings.Split(rawQuery, "&") {
		if pair == "" {
			continue
		}
		rawKey, rawValue, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(rawKey)
		if err != nil {
			continue
		}
		if !strings.HasPrefix(key, "f[") || !strings.HasSuffix(key, "]") {
			continue
		}
		value, err := url.QueryUnescape(rawValue)
		if err != nil {
			continue
		}
		field := key[2 : len(key)-1]
		if field == "" {
			continue
		}
		if idx, dup := seen[field]; dup {
			out[idx].Value = value
			continue
		}
		seen[field] = len(out)
		out = append(out, Filter{Key: field, Value: value})
	}
	return out
}

func atoiOrZero(value string) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return n
}
