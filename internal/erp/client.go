// File: internal/erp/client.go
package erp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"crm_gateway_backend/internal/common"
	"crm_gateway_backend/internal/config"
	"crm_gateway_backend/internal/session"

	"go.uber.org/zap"
)

// Client is a thin wrapper over the remote ERP REST API. It derives the
// Authorization header from the caller's session snapshot, falling back to
// the configured default token when no session exists. All business state
// lives behind this API; the gateway itself persists nothing durable.
type Client struct {
	baseURL      string
	defaultToken string
	httpClient   *http.Client
	logger       *zap.Logger
}

// NewClient creates an ERP API client.
func NewClient(cfg *config.Config, logger *zap.Logger) *Client {
	return &Client{
		baseURL:      strings.TrimRight(cfg.ERPBaseURL, "/"),
		defaultToken: cfg.ERPDefaultToken,
		httpClient:   &http.Client{Timeout: cfg.ERPRequestTimeout},
		logger:       logger.Named("ERPClient"),
	}
}

// FileUpload describes one file forwarded to the ERP upload endpoint.
type FileUpload struct {
	FieldName string
	FileName  string
	Content   []byte
	Doctype   string
	Docname   string
	IsPrivate bool
}

func (c *Client) authorize(req *http.Request, sess *session.Session) {
	switch {
	case sess != nil && sess.APIKey != "":
		req.Header.Set("Authorization", fmt.Sprintf("token %s:%s", sess.APIKey, sess.APISecret))
	case c.defaultToken != "":
		req.Header.Set("Authorization", "token "+c.defaultToken)
	}
	// With neither a session nor a default token the request goes out
	// unauthenticated and the ERP rejects it: fail closed.
}

// CallMethod issues a form-encoded POST to /api/method/<method> and returns
// the raw "message" payload of the response envelope.
func (c *Client) CallMethod(ctx context.Context, sess *session.Session, method string, form url.Values) (json.RawMessage, error) {
	endpoint := c.baseURL + "/api/method/" + method
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	c.authorize(req, sess)
	return c.do(req)
}

// CallMethodMultipart issues a multipart POST to /api/method/<method>. Used
// for the Facebook token relay and for file uploads.
func (c *Client) CallMethodMultipart(ctx context.Context, sess *session.Session, method string, fields map[string]string, file *FileUpload) (json.RawMessage, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return nil, fmt.Errorf("write multipart field %s: %w", name, err)
		}
	}
	if file != nil {
		part, err := writer.CreateFormFile(file.FieldName, file.FileName)
		if err != nil {
			return nil, fmt.Errorf("create multipart file part: %w", err)
		}
		if _, err := part.Write(file.Content); err != nil {
			return nil, fmt.Errorf("write multipart file: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("finalize multipart body: %w", err)
	}

	endpoint := c.baseURL + "/api/method/" + method
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", method, err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	c.authorize(req, sess)
	return c.do(req)
}

// UploadFile forwards a file to the ERP upload_file method, optionally linked
// to a document.
func (c *Client) UploadFile(ctx context.Context, sess *session.Session, file FileUpload) (json.RawMessage, error) {
	fields := map[string]string{}
	if file.Doctype != "" {
		fields["doctype"] = file.Doctype
	}
	if file.Docname != "" {
		fields["docname"] = file.Docname
	}
	if file.IsPrivate {
		fields["is_private"] = "1"
	}
	if file.FieldName == "" {
		file.FieldName = "file"
	}
	return c.CallMethodMultipart(ctx, sess, "upload_file", fields, &file)
}

// GetList queries documents of a doctype. The query values typically carry
// filters, fields and limits in the ERP's own notation.
func (c *Client) GetList(ctx context.Context, sess *session.Session, doctype string, query url.Values) ([]map[string]any, error) {
	endpoint := c.baseURL + "/api/v2/document/" + url.PathEscape(doctype)
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build list request for %s: %w", doctype, err)
	}
	c.authorize(req, sess)
	raw, err := c.do(req)
	if err != nil {
		return nil, err
	}
	var docs []map[string]any
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, common.ErrInternalServer.WithDetails(fmt.Sprintf("Unexpected list payload for %s.", doctype))
	}
	return docs, nil
}

// GetDoc fetches a single document by name.
func (c *Client) GetDoc(ctx context.Context, sess *session.Session, doctype, name string) (json.RawMessage, error) {
	endpoint := c.baseURL + "/api/v2/document/" + url.PathEscape(doctype) + "/" + url.PathEscape(name)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build get request for %s/%s: %w", doctype, name, err)
	}
	c.authorize(req, sess)
	return c.do(req)
}

// CreateDoc creates a document and returns the created payload.
func (c *Client) CreateDoc(ctx context.Context, sess *session.Session, doctype string, doc any) (json.RawMessage, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode %s document: %w", doctype, err)
	}
	endpoint := c.baseURL + "/api/v2/document/" + url.PathEscape(doctype)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build create request for %s: %w", doctype, err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req, sess)
	return c.do(req)
}

// UpdateDoc applies a partial update to a document.
func (c *Client) UpdateDoc(ctx context.Context, sess *session.Session, doctype, name string, patch any) (json.RawMessage, error) {
	body, err := json.Marshal(patch)
	if err != nil {
		return nil, fmt.Errorf("encode %s patch: %w", doctype, err)
	}
	endpoint := c.baseURL + "/api/v2/document/" + url.PathEscape(doctype) + "/" + url.PathEscape(name)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build update request for %s/%s: %w", doctype, name, err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req, sess)
	return c.do(req)
}

// DeleteDoc deletes a document by name.
func (c *Client) DeleteDoc(ctx context.Context, sess *session.Session, doctype, name string) error {
	endpoint := c.baseURL + "/api/v2/document/" + url.PathEscape(doctype) + "/" + url.PathEscape(name)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build delete request for %s/%s: %w", doctype, name, err)
	}
	c.authorize(req, sess)
	_, err = c.do(req)
	return err
}

// do executes the request and maps the three failure classes the client
// distinguishes: transport failure, backend rejection, unexpected payload.
func (c *Client) do(req *http.Request) (json.RawMessage, error) {
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("ERP request failed at transport level",
			zap.String("method", req.Method),
			zap.String("url", req.URL.Path),
			zap.Error(err))
		return nil, common.ErrServiceUnavailable.WithDetails("Cannot reach the server. Please check your connection.")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, common.ErrInternalServer.WithDetails("Failed to read server response.")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		message := BackendMessage(body)
		if message == "" {
			message = fmt.Sprintf("The server rejected the request (status %d).", resp.StatusCode)
		}
		c.logger.Warn("ERP rejected request",
			zap.String("url", req.URL.Path),
			zap.Int("status", resp.StatusCode),
			zap.String("message", message))
		return nil, common.NewAPIError(http.StatusBadGateway, "ERP_REJECTED", message)
	}

	var envelope struct {
		Message json.RawMessage `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, common.ErrInternalServer.WithDetails("Unexpected response from server.")
	}
	if envelope.Message != nil {
		return envelope.Message, nil
	}
	if envelope.Data != nil {
		return envelope.Data, nil
	}
	return json.RawMessage(body), nil
}

// BackendMessage digs the human-readable message out of an ERP error body.
func BackendMessage(body []byte) string {
	var payload struct {
		Message        json.RawMessage `json:"message"`
		Exception      string          `json:"exception"`
		ServerMessages string          `json:"_server_messages"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if len(payload.Message) > 0 {
		var text string
		if err := json.Unmarshal(payload.Message, &text); err == nil && text != "" {
			return text
		}
	}
	if payload.ServerMessages != "" {
		// _server_messages is a JSON array of JSON-encoded objects.
		var entries []string
		if err := json.Unmarshal([]byte(payload.ServerMessages), &entries); err == nil && len(entries) > 0 {
			var inner struct {
				Message string `json:"message"`
			}
			if err := json.Unmarshal([]byte(entries[0]), &inner); err == nil && inner.Message != "" {
				return inner.Message
			}
		}
	}
	if payload.Exception != "" {
		parts := strings.SplitN(payload.Exception, ":", 2)
		return strings.TrimSpace(parts[len(parts)-1])
	}
	return ""
}
