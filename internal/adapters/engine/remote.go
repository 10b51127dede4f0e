package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	_ "image/png"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/bft-labs/drawstream/internal/domain"
	"github.com/bft-labs/drawstream/internal/ports"
	"github.com/bft-labs/drawstream/pkg/framecodec"
)

const transformEndpoint = "/v1/transform"

// Remote implements ports.TransformEngine by calling an HTTP inference
// service. The request is multipart with a "params" JSON field and a "frame"
// file of raw RGBA bytes. The response is either raw RGBA bytes
// (application/octet-stream) or a PNG of any size.
type Remote struct {
	url     string
	authKey string
	timeout time.Duration
	client  ports.HTTPClient
	logger  ports.Logger
}

// NewRemote creates a remote engine posting to baseURL.
func NewRemote(baseURL, authKey string, timeout time.Duration, client ports.HTTPClient, logger ports.Logger) *Remote {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Remote{
		url:     strings.TrimRight(baseURL, "/") + transformEndpoint,
		authKey: authKey,
		timeout: timeout,
		client:  client,
		logger:  logger,
	}
}

// Transform sends input and params to the service and returns its result.
func (r *Remote) Transform(ctx context.Context, input domain.Frame, params domain.ParamSet) (domain.Frame, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	// Build multipart request body
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return domain.Frame{}, fmt.Errorf("marshal params: %w", err)
	}
	paramsPart, err := writer.CreateFormField("params")
	if err != nil {
		return domain.Frame{}, fmt.Errorf("create params field: %w", err)
	}
	if _, err := paramsPart.Write(paramsJSON); err != nil {
		return domain.Frame{}, fmt.Errorf("write params: %w", err)
	}

	// An empty input is sent as an empty file.
	framePart, err := writer.CreateFormFile("frame", "frame.rgba")
	if err != nil {
		return domain.Frame{}, fmt.Errorf("create frame field: %w", err)
	}
	if _, err := framePart.Write(input.Bytes()); err != nil {
		return domain.Frame{}, fmt.Errorf("write frame: %w", err)
	}

	if err := writer.Close(); err != nil {
		return domain.Frame{}, fmt.Errorf("finalize multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, &body)
	if err != nil {
		return domain.Frame{}, fmt.Errorf("create request: %w", err)
	}
	if r.authKey != "" {
		req.Header.Set("Authorization", "Bearer "+r.authKey)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Accept", "application/octet-stream, image/png")

	resp, err := r.client.Do(req)
	if err != nil {
		return domain.Frame{}, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()
	r.logger.Debug("remote transform", ports.Int("status", resp.StatusCode))

	if resp.StatusCode/100 != 2 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return domain.Frame{}, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(respBody))
	}

	return decodeResult(resp)
}

func decodeResult(resp *http.Response) (domain.Frame, error) {
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "image/") {
		img, _, err := image.Decode(resp.Body)
		if err != nil {
			return domain.Frame{}, fmt.Errorf("decode image: %w", err)
		}
		return domain.NewFrame(framecodec.Encode(img))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, domain.FrameSize+1))
	if err != nil {
		return domain.Frame{}, fmt.Errorf("read response: %w", err)
	}
	return domain.NewFrame(data)
}

var _ ports.TransformEngine = (*Remote)(nil)
