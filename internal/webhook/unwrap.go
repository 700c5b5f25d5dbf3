package webhook

// Wrapper envelopes WAHA nests actual content inside, peeled in order.
var wrapperKeys = []string{
	"ephemeralMessage",
	"viewOnceMessage",
	"viewOnceMessageV2",
	"documentWithCaptionMessage",
}

// maxUnwrapDepth bounds the peeling loop so adversarial payloads cannot
// spin it forever.
const maxUnwrapDepth = 8

// Unwrap peels the known wrapper layers off a message entry and returns the
// innermost content mapping. A "message" key holding a mapping always takes
// precedence; otherwise the wrapper keys are tried in order, descending into
// their "message" sub-field. A wrapper without a mapping inside yields an
// empty result rather than an error.
func Unwrap(entry map[string]any) map[string]any {
	current := entry
	for depth := 0; depth < maxUnwrapDepth; depth++ {
		if current == nil {
			return map[string]any{}
		}

		if inner, ok := asMap(current["message"]); ok {
			current = inner
			continue
		}

		peeled := false
		for _, key := range wrapperKeys {
			wrapper, ok := asMap(current[key])
			if !ok {
				continue
			}
			inner, ok := asMap(wrapper["message"])
			if !ok {
				return map[string]any{}
			}
			current = inner
			peeled = true
			break
		}
		if !peeled {
			return current
		}
	}

	return map[string]any{}
}
