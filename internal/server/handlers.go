package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"cardioscan/internal/models"
	"cardioscan/pkg/analysis"
	"cardioscan/pkg/imaging"
)

// ErrorResponse is the JSON body returned for any failed request.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PatientInfo echoes the submitted patient form fields.
type PatientInfo struct {
	Name  string `json:"name"`
	Age   int    `json:"age"`
	Sex   string `json:"sex"`
	Notes string `json:"notes"`
}

// AIAnalysis is the findings block of the analysis response.
type AIAnalysis struct {
	Finding         string                    `json:"finding"`
	ConfidenceScore string                    `json:"confidence_score"`
	Explanation     string                    `json:"explanation"`
	Diseases        []analysis.Condition      `json:"diseases"`
	LabelStats      []analysis.StructureStats `json:"label_stats"`
}

// AnalyzeResponse is the full body returned by /api/analyze-heart.
type AnalyzeResponse struct {
	Status       string                              `json:"status"`
	PatientInfo  PatientInfo                         `json:"patient_info"`
	ScanMetadata imaging.ScanMetadata                `json:"scan_metadata"`
	Resolution   imaging.Resolution                  `json:"resolution"`
	Measurements imaging.MeasurementReport           `json:"measurements"`
	Slices       map[models.Axis]string              `json:"slices"`
	Sliders      map[models.Axis]imaging.SliderRange `json:"sliders"`
	AIAnalysis   AIAnalysis                          `json:"ai_analysis"`
}

// handleAnalyzeHeart accepts the multipart scan upload, runs the imaging
// pipeline and findings generation, and returns the aggregated report.
// Any pipeline failure fails the whole request; there is no partial output.
func (s *Server) handleAnalyzeHeart(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if err := r.ParseMultipartForm(s.cfg.Server.MaxUploadMB << 20); err != nil {
		sendErrorResponse(w, "invalid_request", "failed to parse multipart form", http.StatusBadRequest)
		return
	}

	patient, err := parsePatientForm(r)
	if err != nil {
		sendErrorResponse(w, "invalid_request", err.Error(), http.StatusBadRequest)
		return
	}

	scanFile, scanHeader, err := r.FormFile("ct_mri_file")
	if err != nil {
		sendErrorResponse(w, "invalid_request", "ct_mri_file is required", http.StatusBadRequest)
		return
	}
	defer scanFile.Close()

	s.logger.Info("analysis request received",
		zap.String("patient", patient.Name),
		zap.Int("age", patient.Age),
		zap.String("scan_file", scanHeader.Filename))

	scanPath, err := s.saveUpload(scanFile, scanHeader.Filename)
	if err != nil {
		s.logger.Error("failed to store upload", zap.Error(err))
		sendErrorResponse(w, "storage_error", "failed to store uploaded scan", http.StatusInternalServerError)
		return
	}

	// Optional attachments are stored alongside the scan but not analyzed.
	for _, field := range []string{"ecg_file", "blood_test_file", "echo_file"} {
		file, header, err := r.FormFile(field)
		if err != nil {
			continue
		}
		if _, err := s.saveUpload(file, header.Filename); err != nil {
			s.logger.Warn("failed to store attachment",
				zap.String("field", field), zap.Error(err))
		}
		file.Close()
	}

	result, err := s.pipeline.Process(scanPath)
	if err != nil {
		var invalid *models.InvalidInputError
		if errors.As(err, &invalid) {
			s.logger.Warn("rejected scan", zap.Error(err))
			sendErrorResponse(w, "invalid_input", err.Error(), http.StatusBadRequest)
			return
		}
		s.logger.Error("pipeline failed", zap.Error(err))
		sendErrorResponse(w, "processing_error", err.Error(), http.StatusInternalServerError)
		return
	}

	report := analysis.Run(patient.Age)

	response := AnalyzeResponse{
		Status:       "success",
		PatientInfo:  patient,
		ScanMetadata: result.Meta,
		Resolution:   result.Resolution,
		Measurements: result.Measurements,
		Slices:       result.Slices,
		Sliders:      result.Sliders,
		AIAnalysis: AIAnalysis{
			Finding:         report.Summary.Label,
			ConfidenceScore: fmt.Sprintf("%d%%", int(report.Summary.Confidence*100)),
			Explanation:     report.Summary.Explanation,
			Diseases:        report.Diseases,
			LabelStats:      report.LabelStats,
		},
	}

	s.logger.Info("analysis complete",
		zap.String("patient", patient.Name),
		zap.Duration("elapsed", time.Since(start)))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// handleClearData deletes uploaded scans and rendered slices.
func (s *Server) handleClearData(w http.ResponseWriter, _ *http.Request) {
	removed := 0
	for _, dir := range []string{s.cfg.Storage.UploadDir, s.cfg.Storage.SlicesDir} {
		n, err := clearDirectory(dir)
		if err != nil {
			s.logger.Error("failed to clear directory", zap.String("dir", dir), zap.Error(err))
			sendErrorResponse(w, "clear_error", err.Error(), http.StatusInternalServerError)
			return
		}
		removed += n
	}

	s.logger.Info("data cleared", zap.Int("files_removed", removed))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "success",
		"message": "All data cleared successfully",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "healthy",
		"service": "Cardiology AI Backend",
	})
}

// parsePatientForm validates the required patient fields.
func parsePatientForm(r *http.Request) (PatientInfo, error) {
	name := r.FormValue("patient_name")
	if name == "" {
		return PatientInfo{}, fmt.Errorf("patient_name is required")
	}

	ageStr := r.FormValue("patient_age")
	age, err := strconv.Atoi(ageStr)
	if err != nil || age < 0 {
		return PatientInfo{}, fmt.Errorf("patient_age must be a non-negative integer")
	}

	sex := r.FormValue("patient_sex")
	if sex == "" {
		return PatientInfo{}, fmt.Errorf("patient_sex is required")
	}

	return PatientInfo{
		Name:  name,
		Age:   age,
		Sex:   sex,
		Notes: r.FormValue("patient_notes"),
	}, nil
}

// saveUpload copies a multipart file into the upload directory under a
// unique name and returns the stored path.
func (s *Server) saveUpload(file multipart.File, originalName string) (string, error) {
	if err := os.MkdirAll(s.cfg.Storage.UploadDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	name := fmt.Sprintf("%s_%s", uuid.NewString(), filepath.Base(originalName))
	path := filepath.Join(s.cfg.Storage.UploadDir, name)

	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, file); err != nil {
		return "", fmt.Errorf("failed to write upload file: %w", err)
	}

	return path, nil
}

// clearDirectory removes regular files in dir, returning how many were
// deleted. A missing directory counts as already clear.
func clearDirectory(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

func sendErrorResponse(w http.ResponseWriter, code, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{
		Code:    code,
		Message: message,
	})
}
