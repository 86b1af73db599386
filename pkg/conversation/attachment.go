package conversation

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// DecodeAttachmentData decodes an inline attachment payload. Standard and
// unpadded base64 are accepted, optionally wrapped in a data URL.
func DecodeAttachmentData(payload string) ([]byte, error) {
	if strings.HasPrefix(payload, "data:") {
		if _, rest, ok := strings.Cut(payload, ","); ok {
			payload = rest
		}
	}
	payload = strings.TrimSpace(payload)

	data, err := base64.StdEncoding.DecodeString(payload)
	if err == nil {
		return data, nil
	}

	data, rawErr := base64.RawStdEncoding.DecodeString(payload)
	if rawErr != nil {
		return nil, fmt.Errorf("decoding base64 payload: %w", err)
	}
	return data, nil
}
