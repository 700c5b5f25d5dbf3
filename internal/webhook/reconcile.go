package webhook

import (
	"log"
	"strconv"
	"strings"

	"waha-gateway/internal/models"
)

// reconcileUpsert stores new incoming messages. Echoes of our own sends,
// entries without an external id, duplicates and unrecognized shapes are all
// skipped per entry; one bad message never drops the rest of the batch.
func (h *Handler) reconcileUpsert(entries []any) {
	for _, raw := range entries {
		entry, ok := asMap(raw)
		if !ok {
			continue
		}

		key, _ := asMap(entry["key"])
		if fromMe, _ := key["fromMe"].(bool); fromMe {
			continue
		}

		externalID := getString(key, "id")
		if externalID == "" {
			externalID = getString(entry, "id")
		}
		if externalID == "" {
			continue
		}

		exists, err := h.Store.ExistsByExternalID(externalID)
		if err != nil {
			log.Printf("Error checking message %s: %v", externalID, err)
			continue
		}
		if exists {
			continue
		}

		content, ok := Classify(Unwrap(entry))
		if !ok {
			log.Printf("Skipping message %s: unrecognized content shape", externalID)
			continue
		}

		sender := NormalizeAddress(getString(key, "remoteJid"))
		pushName := getString(entry, "pushName")

		id := externalID
		msg := models.Message{
			Direction:         models.DirectionIncoming,
			ExternalID:        &id,
			PeerAddress:       sender,
			ContentType:       content.Type,
			Body:              content.Body,
			ReplyToExternalID: content.ReplyTo,
			IsReply:           content.IsReply,
			PushName:          pushName,
			Extra:             content.Extra,
		}

		if err := h.Store.CreateMessage(&msg); err != nil {
			// A concurrent delivery of the same external id loses the
			// insert race against the unique index; that is fine.
			log.Printf("Error storing message %s: %v", externalID, err)
			continue
		}

		// Two-phase write: the attachment reference is attached after the
		// record exists. Retries are idempotent thanks to the dedupe above.
		if content.AttachmentRef != "" {
			if err := h.Store.SetAttachment(msg.ID, content.AttachmentRef); err != nil {
				log.Printf("Error attaching media to message %s: %v", externalID, err)
			} else {
				msg.AttachmentRef = content.AttachmentRef
			}
		}

		if sender != "" {
			if err := h.Store.SaveContact(sender, pushName); err != nil {
				log.Printf("Error saving contact %s: %v", sender, err)
			}
		}

		if h.Hub != nil {
			h.Hub.NotifyMessage(msg)
		}
	}
}

// reconcileUpdate applies delivery-status changes to existing messages.
// Unknown external ids are skipped: status updates never create records.
func (h *Handler) reconcileUpdate(entries []any) {
	for _, raw := range entries {
		entry, ok := asMap(raw)
		if !ok {
			continue
		}

		externalID := ""
		if key, ok := asMap(entry["key"]); ok {
			externalID = getString(key, "id")
		}
		if externalID == "" {
			externalID = getString(entry, "id")
		}

		status := ""
		if update, ok := asMap(entry["update"]); ok {
			status = statusValue(update["status"])
		}
		if status == "" {
			status = statusValue(entry["status"])
		}

		if externalID == "" || status == "" {
			continue
		}

		found, err := h.Store.UpdateStatusByExternalID(externalID, status)
		if err != nil {
			log.Printf("Error updating status for %s: %v", externalID, err)
			continue
		}
		if !found {
			continue
		}

		if h.Hub != nil {
			h.Hub.NotifyStatus(externalID, status)
		}
	}
}

// statusValue accepts both the string and numeric status encodings WAHA
// emits across versions.
func statusValue(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return ""
	}
}

// NormalizeAddress turns a bridge JID into a bare phone identifier: the
// server suffix and any leading + are stripped.
func NormalizeAddress(jid string) string {
	if i := strings.Index(jid, "@"); i >= 0 {
		jid = jid[:i]
	}
	return strings.TrimPrefix(jid, "+")
}
