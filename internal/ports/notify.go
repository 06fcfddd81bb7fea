package ports

import "context"

// Port: outbound SMS delivery.
type SMSSender interface {
	// SendSMS sends body to an E.164 phone number and returns the gateway's
	// delivery identifier.
	SendSMS(ctx context.Context, to, body string) (string, error)
}

// Port: QR code rendering for tracking links.
type QRRenderer interface {
	// RenderTrackingQR writes a QR image encoding link and returns the
	// output path.
	RenderTrackingQR(link, postID string) (string, error)
}
