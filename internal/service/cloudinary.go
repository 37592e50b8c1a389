package service

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/iliyamo/feedback-board/internal/config"
)

// CloudinaryUploader pushes avatar images to Cloudinary using the signed
// upload API and returns the hosted secure URL.
type CloudinaryUploader struct {
	cloudName  string
	apiKey     string
	apiSecret  string
	folder     string
	endpoint   string // override in tests
	httpClient *http.Client
}

// NewCloudinaryUploader builds an uploader from config. Returns an error when
// the account credentials are missing.
func NewCloudinaryUploader(cfg *config.Config) (*CloudinaryUploader, error) {
	if cfg.CloudinaryCloudName == "" || cfg.CloudinaryAPIKey == "" || cfg.CloudinaryAPISecret == "" {
		return nil, fmt.Errorf("cloudinary is not configured")
	}
	folder := cfg.CloudinaryFolder
	if folder == "" {
		folder = "feedback-avatars"
	}
	return &CloudinaryUploader{
		cloudName:  cfg.CloudinaryCloudName,
		apiKey:     cfg.CloudinaryAPIKey,
		apiSecret:  cfg.CloudinaryAPISecret,
		folder:     folder,
		endpoint:   fmt.Sprintf("https://api.cloudinary.com/v1_1/%s/image/upload", cfg.CloudinaryCloudName),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// signature computes the SHA-1 upload signature over the sorted parameter
// string as required by the Cloudinary API.
func (u *CloudinaryUploader) signature(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+params[k])
	}
	sum := sha1.Sum([]byte(strings.Join(pairs, "&") + u.apiSecret))
	return hex.EncodeToString(sum[:])
}

// UploadAvatar uploads image bytes and returns the hosted URL. Images are
// cropped to a 150x150 face-centered square server-side.
func (u *CloudinaryUploader) UploadAvatar(ctx context.Context, filename string, data []byte) (string, error) {
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	params := map[string]string{
		"folder":         u.folder,
		"timestamp":      ts,
		"transformation": "w_150,h_150,c_fill,g_face",
	}
	sig := u.signature(params)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range params {
		if err := w.WriteField(k, v); err != nil {
			return "", fmt.Errorf("write upload field: %w", err)
		}
	}
	if err := w.WriteField("api_key", u.apiKey); err != nil {
		return "", fmt.Errorf("write upload field: %w", err)
	}
	if err := w.WriteField("signature", sig); err != nil {
		return "", fmt.Errorf("write upload field: %w", err)
	}
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("create upload part: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("write upload body: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finish upload body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.endpoint, &buf)
	if err != nil {
		return "", fmt.Errorf("create upload request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("send upload request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read upload response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("cloudinary upload failed with %d: %s", resp.StatusCode, string(body))
	}

	var out struct {
		SecureURL string `json:"secure_url"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("parse upload response: %w", err)
	}
	if out.SecureURL == "" {
		return "", fmt.Errorf("cloudinary response missing secure_url")
	}
	return out.SecureURL, nil
}
