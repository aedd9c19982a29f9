package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/forgo/petzadopt/internal/middleware"
	"github.com/forgo/petzadopt/internal/model"
)

// requireCaller returns the authenticated email, writing a 401 when absent
func requireCaller(w http.ResponseWriter, r *http.Request) (string, bool) {
	email := middleware.GetUserEmail(r.Context())
	if email == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return "", false
	}
	return email, true
}

// pathID returns a required path parameter, writing a 400 when empty
func pathID(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	id := r.PathValue(name)
	if id == "" {
		WriteError(w, model.NewBadRequestError(name+" required"))
		return "", false
	}
	return id, true
}

// maxBodyBytes bounds JSON request bodies
const maxBodyBytes = 1 << 20

// decodeBody decodes a JSON body, writing a 400 on malformed or oversized input
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	err := DecodeJSON(http.MaxBytesReader(w, r.Body, maxBodyBytes), v)
	if err == nil {
		return true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		WriteError(w, model.NewBadRequestError("request body too large"))
		return false
	}
	WriteError(w, model.NewBadRequestError("invalid request body"))
	return false
}

// pageFromQuery reads 1-based ?page= and ?limit= parameters. Unparseable
// values fall back to the defaults.
func pageFromQuery(r *http.Request) model.Page {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	return model.NewPage(page, limit)
}

// paginationFor describes the page just served. A full page is the only
// hint of more results an offset listing gives, so only then is Next set,
// keeping the request's other query parameters.
func paginationFor(r *http.Request, page model.Page, n int) *PaginationInfo {
	number := page.Offset/page.Limit + 1
	info := &PaginationInfo{
		Page:    number,
		Limit:   page.Limit,
		HasMore: n == page.Limit,
	}
	if info.HasMore {
		q := r.URL.Query()
		q.Set("page", strconv.Itoa(number+1))
		q.Set("limit", strconv.Itoa(page.Limit))
		next := url.URL{Path: r.URL.Path, RawQuery: q.Encode()}
		info.Next = next.String()
	}
	return info
}
