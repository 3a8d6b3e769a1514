package api

import (
	"net/http"

	"github.com/KonnexionsGmbH/dcr-sub001/internal/classify"
	"github.com/KonnexionsGmbH/dcr-sub001/internal/model"
)

type classifyResponse struct {
	JobID       string           `json:"job_id,omitempty"`
	Document    *model.Document  `json:"document"`
	Result      *classify.Result `json:"result"`
	ReportFiles []string         `json:"report_files,omitempty"`
}

// handleClassify classifies a document posted in the page/line JSON format
// and returns it with every line tagged.
func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	doc, err := model.Decode(r.Body)
	if err != nil {
		jsonError(w, "invalid document: "+err.Error(), http.StatusBadRequest)
		return
	}
	if len(doc.Pages) == 0 {
		jsonError(w, "document has no pages", http.StatusBadRequest)
		return
	}

	res := s.orchestrator.Classify(doc)
	writeJSON(w, http.StatusOK, classifyResponse{Document: doc, Result: res})
}
