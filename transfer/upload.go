package transfer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/bytedance/sonic"

	"github.com/moyoez/upload-widget-go/tool"
	"github.com/moyoez/upload-widget-go/types"
)

// Failure classes of one upload attempt.
var (
	ErrTransport         = errors.New("upload transport failed")
	ErrRejected          = errors.New("upload rejected by server")
	ErrMalformedResponse = errors.New("malformed upload response")
)

var errBodyAbandoned = errors.New("upload body abandoned")

// MaxResponseSize bounds the JSON body read from the backend.
const MaxResponseSize = 1 << 20

// Multipart field names, in the order they are written.
const (
	FieldModul     = "modul"
	FieldFirmaGuid = "firmaGuid"
	FieldFisTurId  = "fisTurId"
	FieldFile      = "file"
	FieldSatirGuid = "satirGuid"
)

// Client posts files to <endpoint>api/uploads.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

func NewClient(endpoint string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = tool.GetHttpClient()
	}
	return &Client{
		endpoint:   endpoint,
		httpClient: httpClient,
	}
}

// Upload sends one multipart body and decodes the backend answer.
// It succeeds only on a 2xx status with success=true and a data object.
func (c *Client) Upload(ctx context.Context, uctx types.UploadContext, file types.CandidateFile, body io.Reader) (*types.UploadResponseData, error) {
	url, err := tool.BuildUploadURL(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	done := make(chan struct{})
	go func() {
		defer close(done)
		pw.CloseWithError(writeForm(mw, uctx, file, body))
	}()
	// body is the caller's again once Upload returns, read or not
	defer func() {
		_ = pr.CloseWithError(errBodyAbandoned)
		<-done
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, pr)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create upload request: %v", ErrTransport, err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			tool.DefaultLogger.Errorf("Failed to close response body: %v", err)
		}
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%w: %s", ErrTransport, resp.Status)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", ErrTransport, err)
	}
	return decodeResponse(raw)
}

func decodeResponse(raw []byte) (*types.UploadResponseData, error) {
	var result types.UploadResponse
	if err := sonic.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if !result.Success {
		msg := result.Message
		if msg == "" {
			msg = "Upload failed"
		}
		return nil, fmt.Errorf("%w: %s", ErrRejected, msg)
	}
	if result.Data == nil {
		return nil, fmt.Errorf("%w: missing data object", ErrMalformedResponse)
	}
	return result.Data, nil
}

func writeForm(mw *multipart.Writer, uctx types.UploadContext, file types.CandidateFile, body io.Reader) error {
	for _, field := range [][2]string{
		{FieldModul, uctx.Modul},
		{FieldFirmaGuid, uctx.FirmaGuid},
		{FieldFisTurId, uctx.FisTurId},
	} {
		if err := mw.WriteField(field[0], field[1]); err != nil {
			return err
		}
	}

	part, err := mw.CreatePart(filePartHeader(file))
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, body); err != nil {
		return fmt.Errorf("failed to stream %s: %w", file.Name, err)
	}

	if err := mw.WriteField(FieldSatirGuid, uctx.SatirGuid); err != nil {
		return err
	}
	return mw.Close()
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func filePartHeader(file types.CandidateFile) textproto.MIMEHeader {
	contentType := file.MediaType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		FieldFile, quoteEscaper.Replace(file.Name)))
	h.Set("Content-Type", contentType)
	return h
}
