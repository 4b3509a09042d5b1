package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"franchiseos-backend/internal/domain"
	"franchiseos-backend/internal/service"
	"franchiseos-backend/pkg/response"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type ContentHandler struct {
	service     *service.ContentService
	validate    *validator.Validate
	contentDir  string
	maxFileSize int64
	allowedMime map[string]bool
}

func NewContentHandler(service *service.ContentService, contentDir string, maxFileSize int64, allowedMimeTypes []string) *ContentHandler {
	allowed := make(map[string]bool, len(allowedMimeTypes))
	for _, m := range allowedMimeTypes {
		allowed[strings.TrimSpace(m)] = true
	}
	return &ContentHandler{
		service:     service,
		validate:    validator.New(),
		contentDir:  contentDir,
		maxFileSize: maxFileSize,
		allowedMime: allowed,
	}
}

// Upload accepts a multipart form with a "file" part plus optional "name"
// and "duration" fields. The file's type is sniffed from its bytes, not
// trusted from the client's Content-Type.
func (h *ContentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxFileSize)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		response.TooLarge(w, "File exceeds the maximum upload size")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		response.BadRequest(w, "Missing file field")
		return
	}
	defer file.Close()

	mtype, err := mimetype.DetectReader(file)
	if err != nil {
		response.BadRequest(w, "Unable to read uploaded file")
		return
	}
	if !h.allowedMime[mtype.String()] {
		response.BadRequest(w, fmt.Sprintf("Unsupported file type: %s", mtype.String()))
		return
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		response.InternalError(w, "Failed to process upload")
		return
	}

	filename := fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), uuid.New().String()[:8], mtype.Extension())
	destPath := filepath.Join(h.contentDir, filename)

	dest, err := os.Create(destPath)
	if err != nil {
		log.Printf("[Content] Failed to create file %s: %v", destPath, err)
		response.InternalError(w, "Failed to store upload")
		return
	}
	size, err := io.Copy(dest, file)
	dest.Close()
	if err != nil {
		os.Remove(destPath)
		response.InternalError(w, "Failed to store upload")
		return
	}

	name := r.FormValue("name")
	if name == "" {
		name = strings.TrimSuffix(header.Filename, filepath.Ext(header.Filename))
	}
	duration := 0
	if raw := r.FormValue("duration"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			duration = parsed
		}
	}

	content, err := h.service.Create(&service.NewContentMeta{
		Name:     name,
		Filename: filename,
		MimeType: mtype.String(),
		Size:     size,
		URL:      fmt.Sprintf("%s/content/%s", requestBaseURL(r), filename),
		Duration: duration,
	})
	if err != nil {
		os.Remove(destPath)
		writeServiceError(w, err)
		return
	}

	response.Created(w, content)
}

func (h *ContentHandler) List(w http.ResponseWriter, r *http.Request) {
	content, err := h.service.List()
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, content)
}

func (h *ContentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	content, err := h.service.Get(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, content)
}

func (h *ContentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req domain.UpdateContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	content, err := h.service.Update(id, &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, content)
}

// Delete removes the record first, then unlinks the file. A leftover file
// after a failed unlink is harmless; the record going first means no route
// can ever serve metadata for a missing file.
func (h *ContentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	filename, err := h.service.Delete(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if filename != "" {
		if err := os.Remove(filepath.Join(h.contentDir, filename)); err != nil && !os.IsNotExist(err) {
			log.Printf("[Content] Failed to remove file %s: %v", filename, err)
		}
	}

	response.Success(w, map[string]string{"message": "Content deleted successfully"})
}

// requestBaseURL reconstructs the externally reachable address of this
// request, honoring reverse-proxy forwarding headers.
func requestBaseURL(r *http.Request) string {
	scheme := "http"
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	} else if r.TLS != nil {
		scheme = "https"
	}
	host := r.Host
	if forwarded := r.Header.Get("X-Forwarded-Host"); forwarded != "" {
		host = forwarded
	}
	return fmt.Sprintf("%s://%s", scheme, host)
}
