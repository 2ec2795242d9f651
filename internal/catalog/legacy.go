// Package catalog imports legacy book catalogs and keeps the catalog in sync
// with a seed file on disk.
package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/listenupapp/pagetrail-server/internal/errors"
	"github.com/listenupapp/pagetrail-server/internal/genre"
)

// Legacy page-count field names, canonical first. Older exports used
// pagesNumber (catalog model) and totalPage (add-book route).
var pageFields = []string{"totalPages", "total_pages", "totalPage", "pagesNumber"}

// Record is a normalized legacy catalog entry.
type Record struct {
	ID         string // legacy id, empty when the export had none
	Title      string
	Author     string
	Genre      string // canonical slug
	TotalPages int    // 0 when unknown
	CreatedAt  time.Time
}

// NormalizeRecord decodes one legacy JSON object. It accepts plain values as
// well as MongoDB extended JSON wrappers ({"$oid"}, {"$date"}, {"$numberInt"}).
func NormalizeRecord(raw json.RawMessage) (*Record, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, errors.Validationf("record is not a JSON object: %v", err)
	}

	rec := &Record{}
	var err error

	for _, key := range []string{"_id", "id"} {
		if v, ok := fields[key]; ok {
			if rec.ID, err = decodeString(v, "$oid"); err != nil {
				return nil, errors.Validationf("%s: %v", key, err)
			}
			break
		}
	}

	if rec.Title, err = optionalString(fields, "title"); err != nil {
		return nil, err
	}
	rec.Title = strings.TrimSpace(rec.Title)
	if rec.Title == "" {
		return nil, errors.Validation("title is required")
	}

	if rec.Author, err = optionalString(fields, "author"); err != nil {
		return nil, err
	}
	rec.Author = strings.TrimSpace(rec.Author)

	rawGenre, err := optionalString(fields, "genre")
	if err != nil {
		return nil, err
	}
	rec.Genre = genre.Canonical(rawGenre)

	for _, key := range pageFields {
		v, ok := fields[key]
		if !ok || isNull(v) {
			continue
		}
		if rec.TotalPages, err = decodeInt(v); err != nil {
			return nil, errors.Validationf("%s: %v", key, err)
		}
		break
	}
	if rec.TotalPages < 0 {
		return nil, errors.Validationf("page count must not be negative, got %d", rec.TotalPages)
	}

	if v, ok := fields["createdAt"]; ok && !isNull(v) {
		if rec.CreatedAt, err = decodeTime(v); err != nil {
			return nil, errors.Validationf("createdAt: %v", err)
		}
	}

	return rec, nil
}

func isNull(v json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}

func optionalString(fields map[string]json.RawMessage, key string) (string, error) {
	v, ok := fields[key]
	if !ok || isNull(v) {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return "", errors.Validationf("%s must be a string", key)
	}
	return s, nil
}

// decodeString reads a string or a single-key wrapper object such as {"$oid": "..."}.
func decodeString(v json.RawMessage, wrapper string) (string, error) {
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return s, nil
	}
	var obj map[string]string
	if err := json.Unmarshal(v, &obj); err != nil {
		return "", fmt.Errorf("expected string or {%q: string}", wrapper)
	}
	s, ok := obj[wrapper]
	if !ok {
		return "", fmt.Errorf("expected string or {%q: string}", wrapper)
	}
	return s, nil
}

// decodeInt reads a number, a numeric string, or {"$numberInt"|"$numberLong"|"$numberDouble": "..."}.
func decodeInt(v json.RawMessage) (int, error) {
	var f float64
	if err := json.Unmarshal(v, &f); err == nil {
		return int(f), nil
	}

	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		var obj map[string]string
		if err := json.Unmarshal(v, &obj); err != nil {
			return 0, fmt.Errorf("expected a number")
		}
		for _, key := range []string{"$numberInt", "$numberLong", "$numberDouble"} {
			if n, ok := obj[key]; ok {
				s = n
				break
			}
		}
	}

	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("expected a number, got %q", s)
	}
	return int(f), nil
}

// decodeTime reads an RFC 3339 string, {"$date": "<RFC 3339>"} or
// {"$date": {"$numberLong": "<unix millis>"}}.
func decodeTime(v json.RawMessage) (time.Time, error) {
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return time.Parse(time.RFC3339Nano, s)
	}

	var obj struct {
		Date json.RawMessage `json:"$date"`
	}
	if err := json.Unmarshal(v, &obj); err != nil || obj.Date == nil {
		return time.Time{}, fmt.Errorf("expected RFC 3339 string or {\"$date\": ...}")
	}
	if err := json.Unmarshal(obj.Date, &s); err == nil {
		return time.Parse(time.RFC3339Nano, s)
	}
	ms, err := decodeInt(obj.Date)
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(int64(ms)).UTC(), nil
}
