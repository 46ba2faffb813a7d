package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/scriptforge/api/internal/client"
	"github.com/scriptforge/api/internal/model"
)

// ExportDraftRequest represents the request body for exporting a draft
type ExportDraftRequest struct {
	ScriptID      string `json:"scriptId" validate:"required,uuid4"`
	VersionNumber *int   `json:"versionNumber" validate:"omitempty,min=1"`
}

// ExportDraftResponse points at the exported artifact.
type ExportDraftResponse struct {
	FileURL       string    `json:"fileUrl"`
	VersionNumber int       `json:"versionNumber"`
	Size          int       `json:"size"`
	ExpiresAt     time.Time `json:"expiresAt"`
}

// ExportService uploads script drafts to object storage for download.
type ExportService struct {
	scripts  *ScriptService
	r2Client client.StorageClient
}

func NewExportService(scripts *ScriptService, r2Client client.StorageClient) *ExportService {
	return &ExportService{
		scripts:  scripts,
		r2Client: r2Client,
	}
}

// ExportDraft uploads the requested version (latest when unspecified) as a
// plain-text artifact and returns a time-limited download URL.
func (s *ExportService) ExportDraft(ctx context.Context, ownerID string, req *ExportDraftRequest) (*ExportDraftResponse, error) {
	var (
		version *model.ScriptVersion
		err     error
	)
	if req.VersionNumber != nil {
		var detail *model.VersionDetailResponse
		detail, err = s.scripts.GetVersion(ctx, ownerID, req.ScriptID, *req.VersionNumber)
		if err == nil {
			version = &detail.Version
		}
	} else {
		version, err = s.scripts.LatestVersion(ctx, ownerID, req.ScriptID)
	}
	if err != nil {
		return nil, err
	}

	// Use mock response if storage is not configured
	if s.r2Client == nil {
		return s.exportMock(version)
	}

	key := fmt.Sprintf("exports/%s.txt", uuid.New().String())
	if _, err := s.r2Client.Upload(ctx, key, strings.NewReader(version.Content), "text/plain; charset=utf-8"); err != nil {
		return nil, fmt.Errorf("draft export failed: %w", err)
	}

	signedURL, err := s.r2Client.GetSignedURL(ctx, key, 24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("failed to sign export URL: %w", err)
	}

	return &ExportDraftResponse{
		FileURL:       signedURL,
		VersionNumber: version.VersionNumber,
		Size:          len(version.Content),
		ExpiresAt:     time.Now().Add(24 * time.Hour),
	}, nil
}

func (s *ExportService) exportMock(version *model.ScriptVersion) (*ExportDraftResponse, error) {
	return &ExportDraftResponse{
		FileURL:       fmt.Sprintf("https://exports.scriptforge.local/mock/%s-v%d.txt", version.ScriptID, version.VersionNumber),
		VersionNumber: version.VersionNumber,
		Size:          len(version.Content),
		ExpiresAt:     time.Now().Add(24 * time.Hour),
	}, nil
}
