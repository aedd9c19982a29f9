package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/forgo/petzadopt/internal/database"
	"github.com/surrealdb/surrealdb.go/pkg/models"
)

var errResultShape = errors.New("unexpected result format")

// recordIDString renders a record id as "table:key". The driver hands ids
// back as models.RecordID, as a pointer to one, or as a decoded map
// ({"tb": "user", "id": {"String": "demo"}}) depending on the path.
func recordIDString(id interface{}) string {
	switch v := id.(type) {
	case string:
		return v
	case models.RecordID:
		return fmt.Sprintf("%s:%v", v.Table, v.ID)
	case *models.RecordID:
		if v != nil {
			return fmt.Sprintf("%s:%v", v.Table, v.ID)
		}
	case map[string]interface{}:
		table := firstString(v, "tb", "Table")
		key := ""
		if raw, ok := firstPresent(v, "id", "ID"); ok {
			key = idKeyString(raw)
		}
		switch {
		case table != "" && key != "":
			return table + ":" + key
		case key != "":
			return key
		}
	}
	return fmt.Sprintf("%v", id)
}

func idKeyString(v interface{}) string {
	if m, ok := v.(map[string]interface{}); ok {
		if s := firstString(m, "String", "string"); s != "" {
			return s
		}
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func firstPresent(m map[string]interface{}, keys ...string) (interface{}, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			return v, true
		}
	}
	return nil, false
}

func firstString(m map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok {
			return s
		}
	}
	return ""
}

// asTime accepts the driver's datetime types and RFC 3339 strings
func asTime(v interface{}) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case models.CustomDateTime:
		return t.Time, true
	case *models.CustomDateTime:
		if t != nil {
			return t.Time, true
		}
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, t)
		return parsed, err == nil
	}
	return time.Time{}, false
}

// plainValue rewrites driver types, recursively, into values encoding/json
// understands
func plainValue(v interface{}) interface{} {
	switch val := v.(type) {
	case models.RecordID, *models.RecordID:
		return recordIDString(val)
	case models.CustomDateTime, *models.CustomDateTime:
		t, _ := asTime(val)
		return t
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, inner := range val {
			out[k] = plainValue(inner)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, inner := range val {
			out[i] = plainValue(inner)
		}
		return out
	}
	return v
}

// singleRecord takes a QueryOne result, which may still be wrapped in a
// {status, result} envelope or a one-row array, down to the record
func singleRecord(result interface{}) (map[string]interface{}, error) {
	if envelope, ok := result.(map[string]interface{}); ok && envelope["status"] == "OK" {
		result = envelope["result"]
	}
	if rows, ok := result.([]interface{}); ok {
		if len(rows) == 0 {
			return nil, database.ErrNotFound
		}
		result = rows[0]
	}
	if result == nil {
		return nil, database.ErrNotFound
	}

	record, ok := result.(map[string]interface{})
	if !ok {
		return nil, errResultShape
	}
	return record, nil
}

// decodeRecord maps a stored record onto T through its JSON tags. rename
// moves stored field names onto tag names, e.g. payment.campaign ->
// campaign_id.
func decodeRecord[T any](record map[string]interface{}, rename map[string]string) (*T, error) {
	fields, _ := plainValue(record).(map[string]interface{})
	for stored, tag := range rename {
		if v, ok := fields[stored]; ok {
			delete(fields, stored)
			fields[tag] = v
		}
	}

	raw, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decoding record: %w", err)
	}
	return &out, nil
}

func decodeOne[T any](result interface{}, rename map[string]string) (*T, error) {
	record, err := singleRecord(result)
	if err != nil {
		return nil, err
	}
	return decodeRecord[T](record, rename)
}

// decodeList decodes the rows of the first statement; non-object rows are
// skipped
func decodeList[T any](results []interface{}, rename map[string]string) ([]*T, error) {
	rows := firstStatementRows(results)
	out := make([]*T, 0, len(rows))
	for _, row := range rows {
		record, ok := row.(map[string]interface{})
		if !ok {
			continue
		}
		item, err := decodeRecord[T](record, rename)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

// firstStatementRows returns the rows of the first statement. A result
// that is not wrapped per statement is taken as the rows themselves.
func firstStatementRows(results []interface{}) []interface{} {
	if len(results) == 0 {
		return nil
	}
	first, ok := results[0].(map[string]interface{})
	if !ok {
		return results
	}
	if rows, ok := first["result"].([]interface{}); ok {
		return rows
	}
	if _, ok := first["status"]; ok {
		return nil
	}
	return results
}

// optional stores a nil pointer as NONE
func optional(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}
