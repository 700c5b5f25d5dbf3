package messaging

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"waha-gateway/internal/config"
	"waha-gateway/internal/models"
	"waha-gateway/internal/store"
	"waha-gateway/internal/waha"

	"github.com/google/uuid"
)

// ErrInvalidRequest marks user input errors rejected before any bridge call.
var ErrInvalidRequest = errors.New("invalid send request")

// SendRequest carries the caller's intent for one outbound message.
type SendRequest struct {
	To          string   `json:"to"`
	Message     string   `json:"message"`
	ContentType string   `json:"content_type"`
	MediaURL    string   `json:"media_url"`
	ReplyTo     string   `json:"reply_to"`
	Reaction    string   `json:"reaction"`
	Template    string   `json:"template"`
	Parameters  []string `json:"parameters"`
}

// Service sends outbound messages through the bridge and tracks each one as
// a stored message record.
type Service struct {
	Config *config.Config
	Store  *store.Store
	Client *waha.Client
}

func NewService(cfg *config.Config, st *store.Store, client *waha.Client) *Service {
	return &Service{Config: cfg, Store: st, Client: client}
}

// Send validates the request, persists a Pending outgoing record, performs
// the bridge call and resolves the record to Success or Failed. The bridge
// error, if any, is surfaced to the caller after being recorded.
func (s *Service) Send(req SendRequest) (*models.Message, error) {
	msg, err := s.buildRecord(req)
	if err != nil {
		return nil, err
	}

	if err := s.Store.CreateMessage(msg); err != nil {
		return nil, fmt.Errorf("storing message: %w", err)
	}

	sendErr := s.dispatch(msg, req)
	if sendErr != nil {
		msg.Status = models.StatusFailed
	} else {
		msg.Status = models.StatusSuccess
	}
	if err := s.Store.SaveMessage(msg); err != nil {
		return msg, fmt.Errorf("updating message: %w", err)
	}

	if sendErr != nil {
		return msg, fmt.Errorf("failed to send message: %w", sendErr)
	}
	return msg, nil
}

// buildRecord validates the request and constructs the Pending record.
func (s *Service) buildRecord(req SendRequest) (*models.Message, error) {
	if strings.TrimSpace(req.To) == "" {
		return nil, fmt.Errorf("%w: recipient is required", ErrInvalidRequest)
	}

	msg := &models.Message{
		Direction:   models.DirectionOutgoing,
		PeerAddress: FormatNumber(req.To),
		ContentType: req.ContentType,
		Body:        req.Message,
		MessageKind: models.KindManual,
		Status:      models.StatusPending,
	}
	if msg.ContentType == "" {
		msg.ContentType = "text"
	}

	switch {
	case req.Reaction != "":
		msg.ContentType = "reaction"
		msg.Body = req.Reaction
		if req.ReplyTo == "" {
			return nil, fmt.Errorf("%w: a reply_to message id is required to send reactions", ErrInvalidRequest)
		}
	case req.Template != "":
		msg.MessageKind = models.KindTemplate
		msg.TemplateRef = req.Template
	}

	if req.MediaURL != "" {
		msg.AttachmentRef = s.PrepareAttachmentLink(req.MediaURL)
		if msg.ContentType == "text" {
			msg.ContentType = "image"
		}
	}

	if isMediaType(msg.ContentType) && msg.AttachmentRef == "" && msg.MessageKind != models.KindTemplate {
		return nil, fmt.Errorf("%w: attachment link is required for media messages", ErrInvalidRequest)
	}

	if req.ReplyTo != "" {
		msg.ReplyToExternalID = req.ReplyTo
		msg.IsReply = true
	}

	return msg, nil
}

// dispatch performs the actual bridge call and records the external id from
// the response. Raw API payloads are archived for audit either way.
func (s *Service) dispatch(msg *models.Message, req SendRequest) error {
	body := msg.Body
	mediaLink := msg.AttachmentRef

	if msg.MessageKind == models.KindTemplate {
		rendered, link, contentType, err := s.renderTemplate(msg, req.Parameters)
		if err != nil {
			return err
		}
		body = rendered
		if link != "" {
			mediaLink = link
		}
		msg.ContentType = contentType
		msg.Body = rendered
	}

	var (
		resp waha.Response
		err  error
	)
	switch {
	case msg.ContentType == "reaction":
		resp, err = s.Client.SendReaction(msg.PeerAddress, msg.ReplyToExternalID, body)
	case mediaLink != "":
		resp, err = s.Client.SendMediaFromURL(msg.PeerAddress, mediaLink, body)
	default:
		resp, err = s.Client.SendText(msg.PeerAddress, body, true)
	}

	if err != nil {
		var apiErr *waha.APIError
		if errors.As(err, &apiErr) {
			s.Store.Archive(uuid.NewString(), "Message", apiErr.Payload)
		}
		return err
	}

	if id := resp.MessageID(); id != "" {
		msg.ExternalID = &id
	}
	s.Store.Archive(uuid.NewString(), "Message", resp.Data)
	return nil
}

// renderTemplate loads the template and substitutes positional parameters,
// returning the rendered text, media link and resulting content type.
func (s *Service) renderTemplate(msg *models.Message, params []string) (string, string, string, error) {
	tmpl, err := s.Store.GetTemplate(msg.TemplateRef)
	if err != nil {
		return "", "", "", fmt.Errorf("loading template: %w", err)
	}
	if tmpl == nil {
		return "", "", "", fmt.Errorf("%w: template %q not found", ErrInvalidRequest, msg.TemplateRef)
	}

	if len(params) > 0 {
		serialized := map[string]string{}
		for i, p := range params {
			serialized[fmt.Sprint(i+1)] = p
		}
		if raw, err := json.Marshal(serialized); err == nil {
			msg.Extra = string(raw)
		}
	}

	var segments []string
	if tmpl.HeaderType == "TEXT" && tmpl.Header != "" {
		segments = append(segments, RenderTemplateText(tmpl.Header, params))
	}
	segments = append(segments, RenderTemplateText(tmpl.Body, params))
	if tmpl.Footer != "" {
		segments = append(segments, tmpl.Footer)
	}

	mediaLink := s.templateMediaLink(tmpl, msg.AttachmentRef)
	contentType := "text"
	if mediaLink != "" {
		if tmpl.HeaderType == "IMAGE" {
			contentType = "image"
		} else {
			contentType = "document"
		}
	}

	var nonEmpty []string
	for _, seg := range segments {
		if seg != "" {
			nonEmpty = append(nonEmpty, seg)
		}
	}
	return strings.Join(nonEmpty, "\n\n"), mediaLink, contentType, nil
}

func (s *Service) templateMediaLink(tmpl *models.Template, attach string) string {
	switch tmpl.HeaderType {
	case "IMAGE":
		if attach != "" {
			return attach
		}
		if tmpl.Sample != "" {
			return s.PrepareAttachmentLink(tmpl.Sample)
		}
	case "DOCUMENT":
		if attach != "" {
			return attach
		}
	}
	return ""
}

// GetStatus returns the stored status for a previously sent message.
func (s *Service) GetStatus(externalID string) (*models.Message, error) {
	if externalID == "" {
		return nil, fmt.Errorf("%w: message_id is required", ErrInvalidRequest)
	}
	return s.Store.GetByExternalID(externalID)
}

// RenderTemplateText replaces {{1}}..{{n}} placeholders positionally.
func RenderTemplateText(text string, params []string) string {
	for i, value := range params {
		placeholder := fmt.Sprintf("{{%d}}", i+1)
		text = strings.ReplaceAll(text, placeholder, value)
	}
	return text
}

// FormatNumber strips a leading + from phone numbers; the bridge expects
// bare digits.
func FormatNumber(number string) string {
	return strings.TrimPrefix(strings.TrimSpace(number), "+")
}

// PrepareAttachmentLink absolutizes relative attachment paths against the
// configured public URL.
func (s *Service) PrepareAttachmentLink(attach string) string {
	if attach == "" {
		return ""
	}
	if strings.HasPrefix(attach, "http") {
		return attach
	}
	return strings.TrimRight(s.Config.PublicURL, "/") + "/" + strings.TrimLeft(attach, "/")
}

func isMediaType(contentType string) bool {
	switch contentType {
	case "image", "video", "audio", "document":
		return true
	}
	return false
}
