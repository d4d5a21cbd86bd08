package httpclient

// Request describes an outbound HTTP request.
type Request struct {
	// Method defaults to GET.
	Method string
	// Path is joined to the client's BaseURL, e.g. "audio/transcriptions".
	// Absolute http(s) URLs bypass BaseURL, which model downloads rely on.
	Path string
	// Headers override the client defaults for this request.
	Headers map[string]string
	Query   map[string]string
	// Body is the request body. Accepts *MultipartBody, io.Reader, []byte,
	// string, or any value that will be JSON-encoded.
	Body any
	// Auth overrides the client-level auth for this request.
	Auth *AuthConfig
}

// Response is a fully read HTTP response. Audio payloads from the speech
// endpoint arrive in Body unchanged.
type Response struct {
	StatusCode int
	// Headers holds the first value of each response header.
	Headers map[string]string
	Body    []byte
}

// IsSuccess returns true if the status code is 2xx.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// ContentType returns the Content-Type header, if any.
func (r *Response) ContentType() string {
	return r.Headers["Content-Type"]
}
