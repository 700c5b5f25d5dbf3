package waha

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"waha-gateway/internal/config"
)

// APIError is returned for any failed bridge interaction. StatusCode is 0
// for transport failures (connection refused, timeout).
type APIError struct {
	Message    string
	StatusCode int
	Payload    map[string]any
	URL        string
	Method     string
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("waha: %s (status %d)", e.Message, e.StatusCode)
	}
	return "waha: " + e.Message
}

// Response wraps a decoded WAHA response body.
type Response struct {
	Data map[string]any
}

// MessageID probes the known id field names across WAHA versions. Some
// responses wrap the sent message inside a "messages" array; recurse one
// level into its first element.
func (r Response) MessageID() string {
	candidates := []string{"message_id", "messageId", "id", "key", "key_id"}
	for _, candidate := range candidates {
		if value, ok := r.Data[candidate].(string); ok && value != "" {
			return value
		}
	}

	if wrapped, ok := r.Data["messages"].([]any); ok && len(wrapped) > 0 {
		if first, ok := wrapped[0].(map[string]any); ok {
			return Response{Data: first}.MessageID()
		}
	}

	return ""
}

// Client talks to a single configured WAHA instance.
type Client struct {
	baseURL string
	session string
	token   string
	http    *http.Client
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.WahaURL, "/"),
		session: strings.TrimSpace(cfg.WahaSession),
		token:   cfg.WahaToken,
		http:    &http.Client{Timeout: time.Duration(cfg.WahaTimeout) * time.Second},
	}
}

func (c *Client) request(method, path string, payload any) (Response, error) {
	reqURL := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if c.session != "" {
		reqURL += "?session=" + url.QueryEscape(c.session)
	}

	var bodyReader io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return Response{}, &APIError{Message: err.Error(), URL: reqURL, Method: method}
		}
		bodyReader = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, reqURL, bodyReader)
	if err != nil {
		return Response{}, &APIError{Message: err.Error(), URL: reqURL, Method: method}
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Response{}, &APIError{Message: err.Error(), URL: reqURL, Method: method}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, &APIError{Message: err.Error(), URL: reqURL, Method: method}
	}

	if resp.StatusCode < 400 {
		data := map[string]any{}
		if len(respBody) > 0 {
			// Non-JSON success bodies are tolerated and treated as empty.
			_ = json.Unmarshal(respBody, &data)
		}
		return Response{Data: data}, nil
	}

	return Response{}, newAPIError(resp.StatusCode, respBody, reqURL, method)
}

// newAPIError decodes an error body, preferring the conventional "error"
// and "message" fields for the human-readable message.
func newAPIError(status int, body []byte, reqURL, method string) *APIError {
	payload := map[string]any{}
	message := ""

	if err := json.Unmarshal(body, &payload); err == nil {
		if v, ok := payload["error"].(string); ok && v != "" {
			message = v
		} else if v, ok := payload["message"].(string); ok && v != "" {
			message = v
		} else {
			message = string(body)
		}
	} else {
		payload = map[string]any{"error": string(body)}
		message = strings.TrimSpace(string(body))
		if message == "" {
			message = fmt.Sprintf("WAHA request failed with status %d", status)
		}
	}

	return &APIError{
		Message:    strings.TrimSpace(message),
		StatusCode: status,
		Payload:    payload,
		URL:        reqURL,
		Method:     method,
	}
}

// --- Messaging methods ---

func (c *Client) SendText(phone, body string, previewURL bool) (Response, error) {
	payload := map[string]any{"phone": phone, "body": body}
	if previewURL {
		payload["previewUrl"] = true
	}
	return c.request(http.MethodPost, "api/sendText", payload)
}

func (c *Client) SendMediaFromURL(phone, mediaURL, caption string) (Response, error) {
	payload := map[string]any{"phone": phone, "url": mediaURL}
	if caption != "" {
		payload["caption"] = caption
		payload["body"] = caption
	}
	return c.request(http.MethodPost, "api/sendFileFromUrl", payload)
}

func (c *Client) SendReaction(phone, messageID, emoji string) (Response, error) {
	payload := map[string]any{"phone": phone, "messageId": messageID, "reaction": emoji}
	return c.request(http.MethodPost, "api/sendReaction", payload)
}

// WebhookURL builds the callback URL operators register with the WAHA
// instance, including the session disambiguator when one is configured.
func WebhookURL(publicURL, session string) string {
	base := strings.TrimRight(publicURL, "/") + "/webhook"
	session = strings.TrimSpace(session)
	if session != "" {
		return base + "?session=" + url.QueryEscape(session)
	}
	return base
}
