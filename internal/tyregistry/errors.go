package tyregistry

import (
	"errors"
	"io"
)

var (
	errNotFound    = errors.New("not found")
	errRateLimited = errors.New("rate limited")
)

func readAll(r io.Reader) (interface{}, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return data, nil
}
