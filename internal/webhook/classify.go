package webhook

import (
	"encoding/json"
	"strconv"
)

// Content type values for classified inbound messages.
const (
	TypeText     = "text"
	TypeImage    = "image"
	TypeVideo    = "video"
	TypeAudio    = "audio"
	TypeDocument = "document"
	TypeReaction = "reaction"
	TypeButton   = "button"
	TypeFlow     = "flow"
	TypeLocation = "location"
	TypeContact  = "contact"
)

// Content is the normalized form of one inbound message.
type Content struct {
	Type          string
	Body          string
	AttachmentRef string
	ReplyTo       string
	IsReply       bool
	Extra         string
}

// Classify pattern-matches an unwrapped content mapping against the known
// WAHA message shapes. The first matching key wins. Returns false when no
// shape is recognized; the caller skips the message.
func Classify(content map[string]any) (Content, bool) {
	if content == nil {
		return Content{}, false
	}

	if text, ok := content["conversation"].(string); ok {
		return Content{Type: TypeText, Body: text}, true
	}

	if ext, ok := asMap(content["extendedTextMessage"]); ok {
		return withReply(Content{Type: TypeText, Body: getString(ext, "text")}, ext), true
	}

	if img, ok := asMap(content["imageMessage"]); ok {
		c := Content{Type: TypeImage, Body: getString(img, "caption"), AttachmentRef: mediaRef(img)}
		return withReply(c, img), true
	}

	if vid, ok := asMap(content["videoMessage"]); ok {
		return Content{Type: TypeVideo, Body: getString(vid, "caption"), AttachmentRef: mediaRef(vid)}, true
	}

	if aud, ok := asMap(content["audioMessage"]); ok {
		return Content{Type: TypeAudio, AttachmentRef: mediaRef(aud)}, true
	}

	if doc, ok := asMap(content["documentMessage"]); ok {
		body := getString(doc, "caption")
		if body == "" {
			body = getString(doc, "fileName")
		}
		return Content{Type: TypeDocument, Body: body, AttachmentRef: mediaRef(doc)}, true
	}

	if sticker, ok := asMap(content["stickerMessage"]); ok {
		body := getString(sticker, "fileSha256")
		if body == "" {
			body = "Sticker"
		}
		return Content{Type: TypeDocument, Body: body}, true
	}

	if reaction, ok := asMap(content["reactionMessage"]); ok {
		c := Content{Type: TypeReaction, Body: getString(reaction, "text")}
		if key, ok := asMap(reaction["key"]); ok {
			c.ReplyTo = getString(key, "id")
		}
		c.IsReply = true
		return c, true
	}

	if btn, ok := asMap(content["buttonsResponseMessage"]); ok {
		body := getString(btn, "selectedDisplayText")
		if body == "" {
			body = getString(btn, "selectedButtonId")
		}
		return withReply(Content{Type: TypeButton, Body: body}, btn), true
	}

	if tpl, ok := asMap(content["templateButtonReplyMessage"]); ok {
		body := getString(tpl, "selectedDisplayText")
		if body == "" {
			body = getString(tpl, "selectedId")
		}
		return Content{Type: TypeButton, Body: body}, true
	}

	if list, ok := asMap(content["listResponseMessage"]); ok {
		body := getString(list, "title")
		if body == "" {
			if single, ok := asMap(list["singleSelectReply"]); ok {
				body = getString(single, "title")
			}
		}
		return Content{Type: TypeButton, Body: body}, true
	}

	if flow, ok := asMap(content["interactiveResponseMessage"]); ok {
		return Content{Type: TypeFlow, Body: flowResponseBody(flow)}, true
	}

	if loc, ok := asMap(content["locationMessage"]); ok {
		body := getString(loc, "name")
		if body == "" {
			body = getString(loc, "address")
		}
		if body == "" {
			body = "Location"
		}
		return Content{Type: TypeLocation, Body: body, Extra: coordinates(loc)}, true
	}

	if contact, ok := asMap(content["contactMessage"]); ok {
		body := getString(contact, "displayName")
		if body == "" {
			body = "Contact"
		}
		return Content{Type: TypeContact, Body: body}, true
	}

	if contacts, ok := asMap(content["contactsArrayMessage"]); ok {
		body := ""
		if entries, ok := asList(contacts["contacts"]); ok && len(entries) > 0 {
			if first, ok := asMap(entries[0]); ok {
				body = getString(first, "displayName")
				if body == "" {
					body = getString(first, "vcard")
				}
			}
		}
		if body == "" {
			body = "Contact"
		}
		return Content{Type: TypeContact, Body: body}, true
	}

	return Content{}, false
}

func withReply(c Content, m map[string]any) Content {
	if target := replyTarget(m); target != "" {
		c.ReplyTo = target
		c.IsReply = true
	}
	return c
}

// mediaRef picks the downloadable reference for a media message: the full
// URL when present, else the bridge-internal direct path.
func mediaRef(media map[string]any) string {
	if u := getString(media, "url"); u != "" {
		return u
	}
	return getString(media, "directPath")
}

// flowResponseBody serializes a flow response: the native params JSON when
// available, otherwise the whole response payload re-encoded.
func flowResponseBody(flow map[string]any) string {
	if nfm, ok := asMap(flow["nativeFlowResponseMessage"]); ok {
		if params := getString(nfm, "paramsJson"); params != "" {
			return params
		}
	}
	raw, err := json.Marshal(flow)
	if err != nil {
		return ""
	}
	return string(raw)
}

func coordinates(loc map[string]any) string {
	lat, latOK := loc["degreesLatitude"].(float64)
	lng, lngOK := loc["degreesLongitude"].(float64)
	if !latOK || !lngOK {
		return ""
	}
	return strconv.FormatFloat(lat, 'f', -1, 64) + "," + strconv.FormatFloat(lng, 'f', -1, 64)
}
