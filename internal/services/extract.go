package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"parcel-tracking-service/internal/domain"
	"parcel-tracking-service/internal/ports"
)

// ErrNoJSONObject indicates the model output contained no {...} object at all.
var ErrNoJSONObject = errors.New("no JSON object in model output")

const extractionSystemPrompt = `Identify Address, Pincode, Phone Number, and Name if present.
Note: Don't give any other information, just provide the requested information in JSON format.
Format: { "Name": "value", "PhoneNumber": "value", "Address": "value", "Pincode": "value" }`

// ExtractAddressDetails runs the language model over OCR text and parses its
// output into structured fields.
func ExtractAddressDetails(
	ctx context.Context,
	llm ports.ChatCompleter,
	text string,
) (domain.ExtractedAddress, error) {
	blob, err := llm.Complete(ctx, extractionSystemPrompt, text)
	if err != nil {
		return domain.ExtractedAddress{}, fmt.Errorf("extract address details: %w", err)
	}

	out, err := ParseExtraction(blob)
	if err != nil {
		return domain.ExtractedAddress{}, fmt.Errorf("extract address details: %w", err)
	}
	return out, nil
}

// ParseExtraction locates the outermost {...} substring in a completed model
// output blob and decodes it. The model output is never assumed to be
// well-formed: prose around the object is tolerated, a missing or malformed
// object is a tagged failure.
func ParseExtraction(blob string) (domain.ExtractedAddress, error) {
	obj, ok := extractJSONObject(blob)
	if !ok {
		return domain.ExtractedAddress{}, ErrNoJSONObject
	}

	// The model sometimes emits numeric pincodes and phone numbers; decode
	// through RawMessage so both forms are accepted.
	var raw struct {
		Name        json.RawMessage `json:"Name"`
		PhoneNumber json.RawMessage `json:"PhoneNumber"`
		Address     json.RawMessage `json:"Address"`
		Pincode     json.RawMessage `json:"Pincode"`
	}
	if err := json.Unmarshal([]byte(obj), &raw); err != nil {
		return domain.ExtractedAddress{}, fmt.Errorf("parse extraction: %w", err)
	}

	return domain.ExtractedAddress{
		Name:        coerceString(raw.Name),
		PhoneNumber: coerceString(raw.PhoneNumber),
		Address:     coerceString(raw.Address),
		Pincode:     coerceString(raw.Pincode),
	}, nil
}

// extractJSONObject returns the substring from the first '{' to the last '}'.
func extractJSONObject(s string) (string, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end < start {
		return "", false
	}
	return s[start : end+1], true
}

func coerceString(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}
