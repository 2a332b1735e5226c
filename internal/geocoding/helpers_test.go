package geocoding_test

import (
	"bytes"
	"io"
	"net/http"
)

// mockHTTPClient is a mock implementation of HTTPClient for testing.
type mockHTTPClient struct {
	doFunc func(req *http.Request) (*http.Response, error)
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	return m.doFunc(req)
}

func respond(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
	}
}

// stubClient answers every request with the next response in the list.
func stubClient(responses ...*http.Response) *mockHTTPClient {
	idx := 0
	return &mockHTTPClient{
		doFunc: func(_ *http.Request) (*http.Response, error) {
			resp := responses[idx]
			if idx < len(responses)-1 {
				idx++
			}
			return resp, nil
		},
	}
}
