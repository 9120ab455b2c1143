package controllers

import (
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	pkgerrors "github.com/elameta/quoteregistry/pkg/errors"
)

func pathID(r *http.Request, param string) (int64, error) {
	raw := strings.TrimSpace(chi.URLParam(r, param))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "invalid id").WithDetails(map[string]string{param: "must be a positive integer"})
	}
	return id, nil
}

// queryBool reads a checkbox-style flag. A missing or unknown value yields def.
func queryBool(r *http.Request, key string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(r.URL.Query().Get(key))) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return def
}

func queryIDs(r *http.Request, key string) ([]int64, error) {
	var ids []int64
	for _, raw := range r.URL.Query()[key] {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil || id <= 0 {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid id list").WithDetails(map[string]string{key: "must be positive integers"})
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func writeAttachment(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
