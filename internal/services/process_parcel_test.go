package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parcel-tracking-service/internal/domain"
	"parcel-tracking-service/internal/ports"
)

type stubOCR struct {
	texts map[string]string
}

func (s *stubOCR) ExtractText(ctx context.Context, photoPath string) (string, error) {
	text, ok := s.texts[photoPath]
	if !ok {
		return "", fmt.Errorf("no text for %q", photoPath)
	}
	return text, nil
}

// stubLLM echoes a canned JSON blob per input text.
type stubLLM struct {
	blobs map[string]string
}

func (s *stubLLM) Complete(ctx context.Context, systemPrompt, userText string) (string, error) {
	blob, ok := s.blobs[userText]
	if !ok {
		return "", fmt.Errorf("no completion for %q", userText)
	}
	return blob, nil
}

type stubGeocoder struct {
	result domain.GeocodedAddress
	err    error
}

func (s *stubGeocoder) Geocode(ctx context.Context, address, hint string) (domain.GeocodedAddress, error) {
	return s.result, s.err
}

// memParcelRepo is an in-memory ParcelRepository for pipeline tests.
type memParcelRepo struct {
	mu      sync.Mutex
	records map[string]*domain.ParcelRecord
}

func newMemParcelRepo() *memParcelRepo {
	return &memParcelRepo{records: make(map[string]*domain.ParcelRecord)}
}

func (m *memParcelRepo) Create(ctx context.Context, rec *domain.ParcelRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[rec.PostID]; ok {
		return fmt.Errorf("duplicate post id %s", rec.PostID)
	}
	cp := *rec
	m.records[rec.PostID] = &cp
	return nil
}

func (m *memParcelRepo) Get(ctx context.Context, postID string) (*domain.ParcelRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[postID]
	if !ok {
		return nil, ports.ErrParcelNotFound
	}
	cp := *rec
	return &cp, nil
}

func (m *memParcelRepo) MergeSenderDetails(ctx context.Context, postID string, sender domain.ContactDetails) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[postID]
	if !ok {
		return ports.ErrParcelNotFound
	}
	rec.SenderDetails = &sender
	return nil
}

func (m *memParcelRepo) only(t *testing.T) *domain.ParcelRecord {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.Len(t, m.records, 1)
	for _, rec := range m.records {
		return rec
	}
	return nil
}

type sentSMS struct {
	to   string
	body string
}

type stubSMS struct {
	mu   sync.Mutex
	sent []sentSMS
}

func (s *stubSMS) SendSMS(ctx context.Context, to, body string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, sentSMS{to: to, body: body})
	return fmt.Sprintf("SM%04d", len(s.sent)), nil
}

type stubQR struct {
	links []string
}

func (s *stubQR) RenderTrackingQR(link, postID string) (string, error) {
	s.links = append(s.links, link)
	return postID + ".png", nil
}

func newTestPipeline(dir ports.OfficeDirectory, repo *memParcelRepo, geo *stubGeocoder, ocr *stubOCR, llm *stubLLM, sms *stubSMS, qr *stubQR) *Pipeline {
	return &Pipeline{
		Directory:            dir,
		Parcels:              repo,
		Geocoder:             geo,
		OCR:                  ocr,
		LLM:                  llm,
		SMS:                  sms,
		QR:                   qr,
		PublicBaseURL:        "https://parcels.example.com",
		DefaultCountryPrefix: "+91",
		Now:                  func() time.Time { return time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC) },
	}
}

func TestProcessUploadEndToEnd(t *testing.T) {
	// Geocoded query point; offices at ~1.2, ~3.4 and ~9.9 km.
	origin := domain.GeoPoint{Latitude: 12.9716, Longitude: 77.5946}
	dir := &stubDirectory{offices: []domain.PostOffice{
		{Name: "Shivajinagar SO", PostalCode: "560001", Location: domain.GeoPoint{Latitude: origin.Latitude + 0.0306, Longitude: origin.Longitude}},
		{Name: "Bangalore GPO", PostalCode: "560001", Location: domain.GeoPoint{Latitude: origin.Latitude + 0.0108, Longitude: origin.Longitude}},
		{Name: "HAL II Stage SO", PostalCode: "560001", Location: domain.GeoPoint{Latitude: origin.Latitude + 0.089, Longitude: origin.Longitude}},
	}}

	repo := newMemParcelRepo()
	ocr := &stubOCR{texts: map[string]string{
		"receiver.jpg": "receiver scan",
		"sender.jpg":   "sender scan",
	}}
	llm := &stubLLM{blobs: map[string]string{
		"receiver scan": `{"Name": "Asha Rao", "PhoneNumber": "9876543210", "Address": "221B Baker Street", "Pincode": "560001"}`,
		"sender scan":   `{"Name": "Ravi Kumar", "PhoneNumber": "9123456780", "Address": "14 MG Road", "Pincode": "110001"}`,
	}}
	geo := &stubGeocoder{result: domain.GeocodedAddress{
		FormattedAddress: "221B Baker Street, Bengaluru, Karnataka 560001",
		Location:         &origin,
		PostalCode:       "560001",
		City:             "Bengaluru",
		State:            "Karnataka",
	}}
	sms := &stubSMS{}
	qr := &stubQR{}

	p := newTestPipeline(dir, repo, geo, ocr, llm, sms, qr)

	err := p.ProcessUpload(context.Background(), UploadJob{
		ReceiverPhotoPath: "receiver.jpg",
		SenderPhotoPath:   "sender.jpg",
	})
	require.NoError(t, err)

	rec := repo.only(t)

	// Nearest office is the ~1.2km one.
	require.NotNil(t, rec.NearestPostOffice)
	assert.Equal(t, "Bangalore GPO", rec.NearestPostOffice.Name)
	assert.InDelta(t, 1.2, rec.NearestDistanceKm, 0.1)

	assert.Equal(t, "Asha Rao", rec.ReceiverDetails.Name)
	assert.Equal(t, "Bengaluru", rec.GeocodedInfo.City)
	require.Len(t, rec.Events, 1)
	assert.Equal(t, "Post Received", rec.Events[0].Status)

	require.NotNil(t, rec.SenderDetails)
	assert.Equal(t, "Ravi Kumar", rec.SenderDetails.Name)
	assert.Equal(t, rec.PostID, rec.SenderDetails.PostID)

	// Both parties notified with normalized numbers and the tracking link.
	require.Len(t, sms.sent, 2)
	assert.Equal(t, "+919876543210", sms.sent[0].to)
	assert.Equal(t, "+919123456780", sms.sent[1].to)
	link := "https://parcels.example.com/check_delivery?post_id=" + rec.PostID
	assert.Contains(t, sms.sent[0].body, link)

	require.Len(t, qr.links, 1)
	assert.Equal(t, link, qr.links[0])
}

func TestProcessUploadGeocodeFailureFallsBackToExtractedPincode(t *testing.T) {
	origin := domain.GeoPoint{Latitude: 12.9716, Longitude: 77.5946}
	dir := &stubDirectory{offices: []domain.PostOffice{
		{Name: "Bangalore GPO", PostalCode: "560001", Location: origin},
	}}

	repo := newMemParcelRepo()
	ocr := &stubOCR{texts: map[string]string{"receiver.jpg": "receiver scan"}}
	llm := &stubLLM{blobs: map[string]string{
		"receiver scan": `{"Name": "Asha", "PhoneNumber": "9876543210", "Address": "221B Baker Street", "Pincode": "560001"}`,
	}}
	geo := &stubGeocoder{err: errors.New("geocoding failed: 503")}
	sms := &stubSMS{}
	qr := &stubQR{}

	p := newTestPipeline(dir, repo, geo, ocr, llm, sms, qr)

	err := p.ProcessUpload(context.Background(), UploadJob{ReceiverPhotoPath: "receiver.jpg"})
	require.NoError(t, err)

	rec := repo.only(t)

	// Without coordinates no office can be resolved, but the record is
	// still created with the extracted pincode and the receiver notified.
	assert.Nil(t, rec.NearestPostOffice)
	assert.Equal(t, "560001", rec.ReceiverDetails.Pincode)
	assert.Nil(t, rec.GeocodedInfo.Location)
	require.Len(t, sms.sent, 1)
}

func TestProcessUploadSkipsInvalidPhone(t *testing.T) {
	dir := &stubDirectory{}
	repo := newMemParcelRepo()
	ocr := &stubOCR{texts: map[string]string{"receiver.jpg": "receiver scan"}}
	llm := &stubLLM{blobs: map[string]string{
		"receiver scan": `{"Name": "Asha", "PhoneNumber": "123", "Address": "221B Baker Street", "Pincode": "560001"}`,
	}}
	geo := &stubGeocoder{result: domain.GeocodedAddress{
		Location:   &domain.GeoPoint{Latitude: 12.97, Longitude: 77.59},
		PostalCode: "560001",
	}}
	sms := &stubSMS{}
	qr := &stubQR{}

	p := newTestPipeline(dir, repo, geo, ocr, llm, sms, qr)

	err := p.ProcessUpload(context.Background(), UploadJob{ReceiverPhotoPath: "receiver.jpg"})
	require.NoError(t, err)

	repo.only(t)
	assert.Empty(t, sms.sent)
}

func TestProcessUploadOCRFailureIsFatal(t *testing.T) {
	p := newTestPipeline(
		&stubDirectory{},
		newMemParcelRepo(),
		&stubGeocoder{},
		&stubOCR{},
		&stubLLM{},
		&stubSMS{},
		&stubQR{},
	)

	err := p.ProcessUpload(context.Background(), UploadJob{ReceiverPhotoPath: "missing.jpg"})
	require.Error(t, err)
}
