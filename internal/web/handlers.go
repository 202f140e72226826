package web

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/invtrack/invtrack/internal/core"
	"github.com/invtrack/invtrack/internal/logging"
)

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// handleListProducts returns the full catalog, newest first.
func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := s.service.ListProducts(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, products)
}

// handleSearchProducts returns products matching ?name=.
func (s *Server) handleSearchProducts(w http.ResponseWriter, r *http.Request) {
	products, err := s.service.SearchProducts(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, products)
}

// handleCreateProduct inserts a new product.
func (s *Server) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var in core.ProductInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		s.respondError(w, r, fmt.Errorf("%w: invalid JSON body: %v", core.ErrInvalidArgument, err))
		return
	}

	product, err := s.service.CreateProduct(r.Context(), in)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, product)
}

// handleUpdateProduct overwrites an existing product.
func (s *Server) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	var in core.ProductInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		s.respondError(w, r, fmt.Errorf("%w: invalid JSON body: %v", core.ErrInvalidArgument, err))
		return
	}

	product, err := s.service.UpdateProduct(r.Context(), id, in)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, product)
}

// handleDeleteProduct removes a product and its history.
func (s *Server) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	result, err := s.service.DeleteProduct(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// handleProductHistory returns the stock-change ledger for one product.
func (s *Server) handleProductHistory(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	history, err := s.service.ProductHistory(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, history)
}

// handleImportProducts stages the uploaded CSV to a temp file and runs the
// import pipeline, which removes the file whatever the outcome.
func (s *Server) handleImportProducts(w http.ResponseWriter, r *http.Request) {
	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		s.respondError(w, r, fmt.Errorf("%w: file too large or invalid form", core.ErrInvalidArgument))
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, r, fmt.Errorf("%w: no CSV file uploaded", core.ErrInvalidArgument))
		return
	}
	defer file.Close()

	path, err := s.stageUpload(file)
	if err != nil {
		s.respondError(w, r, fmt.Errorf("stage upload: %w", err))
		return
	}

	logging.FromContext(r.Context()).Info("import started", "artifact", filepath.Base(path))

	summary, err := s.service.ImportFile(r.Context(), path)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, summary)
}

// handleExportProducts streams the catalog as a CSV download.
func (s *Server) handleExportProducts(w http.ResponseWriter, r *http.Request) {
	payload, err := s.service.ExportCSV(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, core.ExportFilename()))
	w.Write(payload)
}

// stageUpload copies the multipart file into the upload temp directory under
// a unique name.
func (s *Server) stageUpload(file io.Reader) (string, error) {
	dir := s.cfg.Upload.TempDir
	if dir == "" {
		dir = os.TempDir()
	}

	path := filepath.Join(dir, "import-"+uuid.New().String()+".csv")
	dst, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}

// parseID extracts the {id} route parameter.
func parseID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid product id %q", core.ErrInvalidArgument, raw)
	}
	return id, nil
}
