package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
)

// maxBodyBytes bounds request bodies; a 100 row portfolio is a few KB.
const maxBodyBytes = 1 << 20

// parseJSON decodes the request body into T. Unknown fields and trailing data are rejected.
func parseJSON[T any](r *http.Request) (T, error) {
	var req T

	if r.Body == nil {
		return req, errors.New("request body is empty")
	}

	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return req, errors.New("request body is empty")
		}
		return req, fmt.Errorf("failed to decode request body: %w", err)
	}
	if dec.More() {
		return req, errors.New("request body must contain a single JSON object")
	}

	return req, nil
}

// round rounds v to the given number of decimal places for display.
func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func roundMap(values map[string]float64, places int) map[string]float64 {
	out := make(map[string]float64, len(values))
	for k, v := range values {
		out[k] = round(v, places)
	}
	return out
}
