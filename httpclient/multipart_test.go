package httpclient

import (
	"io"
	"mime"
	"mime/multipart"
	"strings"
	"testing"
)

func TestMultipartBody_Encode(t *testing.T) {
	body := &MultipartBody{
		Fields: map[string]string{"model": "whisper-1", "language": "en", "response_format": "json"},
		Files: []FileField{{
			FieldName:   "file",
			FileName:    "speech.mp3",
			ContentType: "audio/mpeg",
			Data:        []byte("ID3fake"),
		}},
	}

	r, contentType, err := body.encode()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil || mediaType != "multipart/form-data" {
		t.Fatalf("unexpected content type %q: %v", contentType, err)
	}

	mr := multipart.NewReader(r, params["boundary"])
	var names []string
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("next part: %v", err)
		}
		data, _ := io.ReadAll(part)
		names = append(names, part.FormName())
		if part.FormName() == "file" {
			if part.FileName() != "speech.mp3" {
				t.Errorf("filename = %q", part.FileName())
			}
			if ct := part.Header.Get("Content-Type"); ct != "audio/mpeg" {
				t.Errorf("file content type = %q", ct)
			}
			if string(data) != "ID3fake" {
				t.Errorf("file data = %q", data)
			}
		}
	}

	if got := strings.Join(names, ","); got != "file,language,model,response_format" {
		t.Errorf("part order = %s", got)
	}
}

func TestMultipartBody_ReaderAndDefaults(t *testing.T) {
	body := &MultipartBody{Files: []FileField{{
		FieldName: "file",
		FileName:  `a"b.wav`,
		Reader:    strings.NewReader("RIFF"),
		Data:      []byte("ignored"),
	}}}

	r, contentType, err := body.encode()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, params, _ := mime.ParseMediaType(contentType)
	part, err := multipart.NewReader(r, params["boundary"]).NextPart()
	if err != nil {
		t.Fatalf("next part: %v", err)
	}
	if ct := part.Header.Get("Content-Type"); ct != "application/octet-stream" {
		t.Errorf("default content type = %q", ct)
	}
	data, _ := io.ReadAll(part)
	if string(data) != "RIFF" {
		t.Errorf("reader should win over data, got %q", data)
	}
}
