package httpclient

// Envelope is the wire wrapper returned by every ERP endpoint.
// Field order and names are part of the API contract.
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

// errorBody covers both the envelope message and the nested error object
// some endpoints return on failure.
type errorBody struct {
	Message string `json:"message"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (b errorBody) text() string {
	if b.Message != "" {
		return b.Message
	}
	if b.Error != nil {
		return b.Error.Message
	}
	return ""
}
