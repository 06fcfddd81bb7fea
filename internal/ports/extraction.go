package ports

import "context"

// Port: OCR text extraction from an uploaded photo.
type TextExtractor interface {
	// ExtractText returns the document text in reading order, lines joined
	// by single spaces.
	ExtractText(ctx context.Context, photoPath string) (string, error)
}

// Port: chat-completion backend used for address field extraction. The
// returned blob is raw model output; callers must not assume well-formed
// JSON and parse it explicitly.
type ChatCompleter interface {
	Complete(ctx context.Context, systemPrompt, userText string) (string, error)
}
