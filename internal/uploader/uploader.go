// Package uploader is the client side of an upload: it trims and compresses a
// selection of images and posts them as one multipart submission.
package uploader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
	"strings"
	"time"

	"github.com/andreyxaxa/Photo-Intake/internal/entity"
	"github.com/andreyxaxa/Photo-Intake/internal/infrastructure"
)

const (
	MaxFiles = 33

	_defaultTimeout = 5 * time.Minute
	uploadPath      = "/api/upload"
)

type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Select keeps at most limit image files in their original order and reports
// how many were left out.
func Select(files []File, limit int) ([]File, int) {
	kept := make([]File, 0, min(len(files), limit))
	for _, f := range files {
		if len(kept) == limit {
			break
		}
		if !strings.HasPrefix(f.ContentType, "image/") {
			continue
		}
		kept = append(kept, f)
	}

	return kept, len(files) - len(kept)
}

// Prepare runs every file through c. A file that changed is JPEG from then on.
func Prepare(files []File, c infrastructure.Compressor) []File {
	out := make([]File, len(files))
	for i, f := range files {
		data := c.Compress(f.Data)
		if len(data) != len(f.Data) {
			f.Name = strings.TrimSuffix(f.Name, filepath.Ext(f.Name)) + ".jpg"
			f.ContentType = "image/jpeg"
			f.Data = data
		}
		out[i] = f
	}

	return out
}

// Encode writes the userInfo field and one image_N part per file.
func Encode(w io.Writer, info entity.UserInfo, files []File) (string, error) {
	mw := multipart.NewWriter(w)

	raw, err := json.Marshal(info)
	if err != nil {
		return "", fmt.Errorf("Encode - json.Marshal: %w", err)
	}

	err = mw.WriteField("userInfo", string(raw))
	if err != nil {
		return "", fmt.Errorf("Encode - mw.WriteField: %w", err)
	}

	for i, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image_%d"; filename="%s"`, i, escapeQuotes(f.Name)))
		h.Set("Content-Type", f.ContentType)

		part, err := mw.CreatePart(h)
		if err != nil {
			return "", fmt.Errorf("Encode - mw.CreatePart: %w", err)
		}

		_, err = part.Write(f.Data)
		if err != nil {
			return "", fmt.Errorf("Encode - part.Write: %w", err)
		}
	}

	err = mw.Close()
	if err != nil {
		return "", fmt.Errorf("Encode - mw.Close: %w", err)
	}

	return mw.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

type Result struct {
	Success      bool   `json:"success"`
	SubmissionID string `json:"submissionId"`
	ImageCount   int    `json:"imageCount"`
	Error        string `json:"error"`
}

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: _defaultTimeout}
	}

	return &Client{baseURL: strings.TrimSuffix(baseURL, "/"), http: hc}
}

// Upload posts one submission. A non-2xx answer is an error carrying the
// server's message.
func (c *Client) Upload(ctx context.Context, info entity.UserInfo, files []File) (Result, error) {
	body := &bytes.Buffer{}

	contentType, err := Encode(body, info, files)
	if err != nil {
		return Result{}, fmt.Errorf("Client - Upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+uploadPath, body)
	if err != nil {
		return Result{}, fmt.Errorf("Client - Upload - http.NewRequestWithContext: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.http.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("Client - Upload - c.http.Do: %w", err)
	}
	defer resp.Body.Close()

	var res Result
	err = json.NewDecoder(resp.Body).Decode(&res)
	if err != nil {
		return Result{}, fmt.Errorf("Client - Upload - status %d: %w", resp.StatusCode, err)
	}

	if resp.StatusCode/100 != 2 || !res.Success {
		return res, fmt.Errorf("Client - Upload - status %d: %s", resp.StatusCode, res.Error)
	}

	return res, nil
}
