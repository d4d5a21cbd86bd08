// Package httpclient is the HTTP transport used by the remote speech backend
// and the model downloader. It joins paths onto a base URL, applies bearer or
// API-key auth, encodes JSON and multipart bodies and classifies failures
// into typed errors.
//
//	client, err := httpclient.New(httpclient.Config{
//	    BaseURL: "https://api.openai.com/v1",
//	    Timeout: 60 * time.Second,
//	    Auth:    httpclient.BearerAuth(apiKey),
//	})
//
//	resp, err := client.Do(ctx, httpclient.Request{
//	    Method: http.MethodPost,
//	    Path:   "/audio/speech",
//	    Body:   map[string]any{"model": "tts-1", "input": "hello"},
//	})
//
// A non-2xx status returns the Response together with an *Error, so callers
// can log the body before mapping the failure. Set Config.Retry to retry
// transport errors, 429 and 5xx responses with backoff.
package httpclient
