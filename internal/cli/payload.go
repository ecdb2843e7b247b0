package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// readPayload reads rows from path, or from stdin when path is "-".
//
// Both the HTTP body shape {"dados": [[...]]} and a bare [[...]] array are
// accepted. Numbers are kept as json.Number so document cells keep their
// exact digits.
func readPayload(path string, stdin io.Reader) ([][]any, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read payload: %w", err)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var rows [][]any
		if err := decode(trimmed, &rows); err != nil {
			return nil, err
		}
		return rows, nil
	}

	var body struct {
		Rows [][]any `json:"dados"`
	}
	if err := decode(trimmed, &body); err != nil {
		return nil, err
	}
	return body.Rows, nil
}

func decode(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	return nil
}
