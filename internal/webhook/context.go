package webhook

// maxContextDepth bounds the context search; reply metadata sits at most a
// few levels deep in practice.
const maxContextDepth = 16

// FindContextInfo depth-first searches a content mapping for an embedded
// contextInfo block. Returns nil if none exists.
func FindContextInfo(content map[string]any) map[string]any {
	return findContextInfo(content, 0)
}

func findContextInfo(m map[string]any, depth int) map[string]any {
	if m == nil || depth >= maxContextDepth {
		return nil
	}

	if ctx, ok := asMap(m["contextInfo"]); ok {
		return ctx
	}

	for _, value := range m {
		child, ok := asMap(value)
		if !ok {
			continue
		}
		if ctx := findContextInfo(child, depth+1); ctx != nil {
			return ctx
		}
	}

	return nil
}

// replyTarget extracts the external id of the message being replied to, if
// the content carries reply metadata.
func replyTarget(content map[string]any) string {
	ctx := FindContextInfo(content)
	if ctx == nil {
		return ""
	}
	return getString(ctx, "stanzaId")
}
