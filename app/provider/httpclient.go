package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
)

func doJSON(
	ctx context.Context,
	client *http.Client,
	operation string,
	method string,
	url string,
	headers map[string]string,
	body interface{},
) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, &statusError{Operation: operation, StatusCode: resp.StatusCode, Body: truncateBody(string(respBody))}
	}

	return respBody, nil
}

func truncateBody(body string) string {
	body = strings.TrimSpace(body)
	if len(body) > 512 {
		return body[:512]
	}
	return body
}

// flexibleString accepts both JSON strings and numbers.
type flexibleString string

func (s *flexibleString) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*s = ""
		return nil
	}
	if strings.HasPrefix(trimmed, `"`) {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = flexibleString(v)
		return nil
	}
	*s = flexibleString(trimmed)
	return nil
}
