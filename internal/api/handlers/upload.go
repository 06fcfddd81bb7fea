package handlers

import (
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"parcel-tracking-service/internal/api/dto"
	"parcel-tracking-service/internal/services"
)

const maxUploadBytes = 10 << 20

// UploadHandler accepts parcel photos and hands them off for background
// processing. photo1/id1 carry the receiver's address photo and are required;
// photo2/id2 carry the sender's and are optional.
type UploadHandler struct {
	UploadDir string
	Dispatch  func(services.UploadJob)
}

func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid multipart form")
		return
	}

	receiverPath, receiverAck, ok := h.saveField(r, "photo1", "id1")
	if !ok {
		writeError(w, r, http.StatusBadRequest, "photo1 and id1 are required")
		return
	}

	res := dto.UploadResponse{Files: []dto.FileAck{receiverAck}}

	// A broken optional photo never fails the upload; the receiver half of
	// the pipeline still runs.
	senderPath := ""
	if _, _, err := r.FormFile("photo2"); err == nil {
		path, ack, ok := h.saveField(r, "photo2", "id2")
		if !ok {
			ack = dto.FileAck{Field: "photo2", Saved: false, Error: "id2 is required with photo2"}
		}
		senderPath = path
		res.Files = append(res.Files, ack)
	}

	h.Dispatch(services.UploadJob{
		ReceiverPhotoPath: receiverPath,
		SenderPhotoPath:   senderPath,
	})

	writeJSON(w, r, http.StatusOK, res)
}

// saveField stores one uploaded photo under UploadDir, named by its id field.
// The third return is false only when a required part is absent entirely.
func (h *UploadHandler) saveField(r *http.Request, photoField, idField string) (string, dto.FileAck, bool) {
	file, header, err := r.FormFile(photoField)
	if err != nil {
		return "", dto.FileAck{}, false
	}
	defer file.Close()

	id := strings.TrimSpace(r.FormValue(idField))
	if id == "" {
		return "", dto.FileAck{}, false
	}

	path, err := h.save(file, id, header.Filename)
	if err != nil {
		log.Printf("upload save failed: field=%s err=%v", photoField, err)
		return "", dto.FileAck{Field: photoField, Saved: false, Error: "could not save file"}, true
	}

	return path, dto.FileAck{Field: photoField, Saved: true}, true
}

func (h *UploadHandler) save(file multipart.File, id, originalName string) (string, error) {
	if err := os.MkdirAll(h.UploadDir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	// filepath.Base strips any path components a hostile client embeds in
	// the id or filename.
	name := filepath.Base(id + filepath.Ext(originalName))
	path := filepath.Join(h.UploadDir, name)

	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}

	return path, nil
}
