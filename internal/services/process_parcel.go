package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"parcel-tracking-service/internal/domain"
	"parcel-tracking-service/internal/ports"
)

// UploadJob is the typed payload handed to background processing after the
// upload endpoint has replied.
type UploadJob struct {
	ReceiverPhotoPath string
	SenderPhotoPath   string // optional
}

// Pipeline orchestrates one parcel's intake: OCR, field extraction,
// geocoding, nearest-office resolution, persistence, QR rendering and SMS
// notification. Every resolution is an independent computation over its own
// inputs plus the read-only directory, so a single Pipeline is safely shared
// across concurrent jobs.
type Pipeline struct {
	Directory ports.OfficeDirectory
	Parcels   ports.ParcelRepository
	Geocoder  ports.Geocoder
	OCR       ports.TextExtractor
	LLM       ports.ChatCompleter
	SMS       ports.SMSSender
	QR        ports.QRRenderer

	PublicBaseURL        string
	DefaultCountryPrefix string

	// Now is the wall clock; tests override it.
	Now func() time.Time
}

func (p *Pipeline) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

// ProcessUpload runs the whole intake pipeline for one upload. Stage
// failures after record creation are logged and drop only that stage's
// contribution; they are not surfaced to the uploader.
func (p *Pipeline) ProcessUpload(ctx context.Context, job UploadJob) error {
	postID, err := p.processReceiver(ctx, job.ReceiverPhotoPath)
	if err != nil {
		return fmt.Errorf("process upload: %w", err)
	}

	if job.SenderPhotoPath != "" {
		if err := p.processSender(ctx, job.SenderPhotoPath, postID); err != nil {
			log.Printf("post_id=%s sender stage failed: %v", postID, err)
		}
	}

	if err := p.notifyParties(ctx, postID); err != nil {
		log.Printf("post_id=%s notify stage failed: %v", postID, err)
	}

	return nil
}

// processReceiver creates the parcel record from the receiver's address
// photo and returns the assigned post ID.
func (p *Pipeline) processReceiver(ctx context.Context, photoPath string) (string, error) {
	text, err := p.OCR.ExtractText(ctx, photoPath)
	if err != nil {
		return "", fmt.Errorf("receiver ocr: %w", err)
	}

	details, err := ExtractAddressDetails(ctx, p.LLM, text)
	if err != nil {
		return "", fmt.Errorf("receiver extraction: %w", err)
	}

	// A failed geocode is not fatal: the record keeps the raw extracted
	// fields and resolution falls back to the extracted pincode.
	geocoded, err := p.Geocoder.Geocode(ctx, details.Address, details.Pincode)
	if err != nil {
		log.Printf("geocode failed for %q: %v", details.Address, err)
		geocoded = domain.GeocodedAddress{}
	}

	// The geocoder's resolved pincode supersedes the extracted hint.
	pincode := geocoded.PostalCode
	if pincode == "" {
		pincode = details.Pincode
	}

	res, err := ResolveNearest(ctx, p.Directory, pincode, geocoded)
	if err != nil {
		log.Printf("nearest office resolution failed for pincode=%q: %v", pincode, err)
		res = ResolutionResult{}
	}
	if !res.Found() && res.Reason != "" {
		log.Printf("no nearest office for pincode=%q reason=%s", pincode, res.Reason)
	}

	rec := domain.NewParcelRecord(
		p.now(),
		domain.ContactDetails{
			Name:        details.Name,
			PhoneNumber: details.PhoneNumber,
			Address:     details.Address,
			Pincode:     details.Pincode,
		},
		geocoded,
		res.Office,
		res.DistanceKm,
	)

	if err := p.Parcels.Create(ctx, rec); err != nil {
		return "", fmt.Errorf("create parcel record: %w", err)
	}
	log.Printf("post_id=%s parcel record created", rec.PostID)

	if path, err := p.QR.RenderTrackingQR(p.trackingLink(rec.PostID), rec.PostID); err != nil {
		log.Printf("post_id=%s qr rendering failed: %v", rec.PostID, err)
	} else {
		log.Printf("post_id=%s qr rendered path=%s", rec.PostID, path)
	}

	return rec.PostID, nil
}

// processSender extracts the sender's details from the second photo and
// merges them into the existing record.
func (p *Pipeline) processSender(ctx context.Context, photoPath, postID string) error {
	text, err := p.OCR.ExtractText(ctx, photoPath)
	if err != nil {
		return fmt.Errorf("sender ocr: %w", err)
	}

	details, err := ExtractAddressDetails(ctx, p.LLM, text)
	if err != nil {
		return fmt.Errorf("sender extraction: %w", err)
	}

	sender := domain.ContactDetails{
		PostID:      postID,
		Name:        details.Name,
		PhoneNumber: details.PhoneNumber,
		Address:     details.Address,
		Pincode:     details.Pincode,
	}
	if err := p.Parcels.MergeSenderDetails(ctx, postID, sender); err != nil {
		return fmt.Errorf("merge sender details: %w", err)
	}

	log.Printf("post_id=%s sender details merged", postID)
	return nil
}

// notifyParties sends the tracking link to every party with a valid phone
// number. Invalid numbers are skipped, never sent to the gateway.
func (p *Pipeline) notifyParties(ctx context.Context, postID string) error {
	rec, err := p.Parcels.Get(ctx, postID)
	if err != nil {
		return fmt.Errorf("load parcel record: %w", err)
	}

	body := fmt.Sprintf(
		"Dear user, your post is received and is in transit. You can click on the link to track the post: %s",
		p.trackingLink(postID),
	)

	recipients := []struct {
		role string
		raw  string
	}{
		{"receiver", rec.ReceiverDetails.PhoneNumber},
	}
	if rec.SenderDetails != nil {
		recipients = append(recipients, struct {
			role string
			raw  string
		}{"sender", rec.SenderDetails.PhoneNumber})
	}

	for _, rcpt := range recipients {
		phone, ok := domain.NormalizePhone(rcpt.raw, p.DefaultCountryPrefix)
		if !ok {
			log.Printf("post_id=%s skipping %s: invalid phone number %q", postID, rcpt.role, rcpt.raw)
			continue
		}

		sid, err := p.SMS.SendSMS(ctx, phone, body)
		if err != nil {
			log.Printf("post_id=%s sms to %s failed: %v", postID, rcpt.role, err)
			continue
		}
		log.Printf("post_id=%s sms sent to %s sid=%s", postID, rcpt.role, sid)
	}

	return nil
}

func (p *Pipeline) trackingLink(postID string) string {
	return fmt.Sprintf("%s/check_delivery?post_id=%s", p.PublicBaseURL, postID)
}
