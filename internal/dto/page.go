package dto

import (
	"fmt"
	"net/url"
	"strconv"

	"shareit/internal/models"
)

// ParsePage reads from/size query parameters. Missing values take the
// defaults; negative from or non-positive size is an error.
func ParsePage(q url.Values) (*models.Page, error) {
	from, err := intParam(q, "from", models.DefaultPageFrom)
	if err != nil {
		return nil, err
	}
	size, err := intParam(q, "size", models.DefaultPageSize)
	if err != nil {
		return nil, err
	}

	if from < 0 {
		return nil, fmt.Errorf("from must not be negative, got %d", from)
	}
	if size <= 0 {
		return nil, fmt.Errorf("size must be positive, got %d", size)
	}
	return &models.Page{From: from, Size: size}, nil
}

func intParam(q url.Values, name string, def int) (int, error) {
	raw := q.Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", name, raw)
	}
	return v, nil
}

// ParseID parses a positive path identifier.
func ParseID(name, raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", name, raw)
	}
	return id, nil
}
