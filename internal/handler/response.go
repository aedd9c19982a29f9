package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/forgo/petzadopt/internal/model"
)

// DataResponse is the envelope for a single resource
type DataResponse struct {
	Data  interface{}       `json:"data"`
	Links map[string]string `json:"_links,omitempty"`
}

// CollectionResponse is the envelope for a listing
type CollectionResponse struct {
	Data       interface{}       `json:"data"`
	Pagination *PaginationInfo   `json:"pagination,omitempty"`
	Links      map[string]string `json:"_links,omitempty"`
}

// PaginationInfo describes the page that was returned. Next is the URL of
// the following page and is only set when this page was full.
type PaginationInfo struct {
	Page    int    `json:"page"`
	Limit   int    `json:"limit"`
	HasMore bool   `json:"has_more"`
	Next    string `json:"next,omitempty"`
}

// WriteJSON encodes data before touching the response, so an encoding
// failure still produces a clean 500 instead of a truncated body.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	if data == nil {
		w.WriteHeader(status)
		return
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(data); err != nil {
		slog.Error("encode response", slog.String("error", err.Error()))
		model.NewInternalError("response could not be encoded").WriteJSON(w)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// WriteData writes a single resource. A 201 with a self link also sets
// Location.
func WriteData(w http.ResponseWriter, status int, data interface{}, links map[string]string) {
	if self := links["self"]; status == http.StatusCreated && self != "" {
		w.Header().Set("Location", self)
	}
	WriteJSON(w, status, DataResponse{Data: data, Links: links})
}

// WriteCollection writes a listing; pagination is nil for unpaged lists
func WriteCollection(w http.ResponseWriter, status int, data interface{}, pagination *PaginationInfo, links map[string]string) {
	WriteJSON(w, status, CollectionResponse{
		Data:       data,
		Pagination: pagination,
		Links:      links,
	})
}

// WriteError writes an RFC 9457 problem response
func WriteError(w http.ResponseWriter, err *model.ProblemDetails) {
	err.WriteJSON(w)
}

// WriteNoContent writes a 204 No Content response
func WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// errTrailingData marks a body with more than one JSON value
var errTrailingData = errors.New("unexpected data after JSON body")

// DecodeJSON decodes exactly one JSON value into v. Unknown fields and
// trailing data are rejected.
func DecodeJSON(r io.Reader, v interface{}) error {
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		return err
	}
	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		return errTrailingData
	}
	return nil
}
