package httpx

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
)

// maxPeekBytes bounds how much of a request body middleware may buffer.
const maxPeekBytes = 1 << 20 // 1 MiB

// peekBody reads the request body and restores it so downstream handlers can
// read it again.
func peekBody(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxPeekBytes))
	_ = r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	return body, nil
}

// unmarshalLenient unmarshals JSON but treats empty input as an empty object.
func unmarshalLenient(data []byte, v any) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}

// DecodeJSON decodes a JSON request body into v, enforcing the size cap and
// rejecting unknown content types.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxPeekBytes))
	return dec.Decode(v)
}
