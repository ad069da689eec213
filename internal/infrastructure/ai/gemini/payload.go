package gemini

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyImage is returned when an image payload carries no data
var ErrEmptyImage = errors.New("image payload is empty")

// DecodeImagePayload decodes a base64 image, accepting either raw base64
// or a data URL such as "data:image/png;base64,...".
func DecodeImagePayload(payload string) ([]byte, error) {
	payload = strings.TrimSpace(payload)
	if strings.HasPrefix(payload, "data:") {
		if i := strings.Index(payload, ","); i >= 0 {
			payload = payload[i+1:]
		}
	}
	if payload == "" {
		return nil, ErrEmptyImage
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		// Some encoders drop the padding.
		if raw, rawErr := base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "=")); rawErr == nil {
			return raw, nil
		}
		return nil, fmt.Errorf("invalid base64 image: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}
	return data, nil
}

// cleanJSONArray strips markdown fences and keeps the outermost JSON array
func cleanJSONArray(text string) string {
	return cleanJSON(text, "[", "]")
}

// cleanJSONObject strips markdown fences and keeps the outermost JSON object
func cleanJSONObject(text string) string {
	return cleanJSON(text, "{", "}")
}

func cleanJSON(text, opening, closing string) string {
	cleaned := strings.ReplaceAll(text, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	start := strings.Index(cleaned, opening)
	end := strings.LastIndex(cleaned, closing)
	if start != -1 && end > start {
		cleaned = cleaned[start : end+1]
	}
	return cleaned
}
