package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"collector-service/constant"
	"collector-service/dto"
	"collector-service/entities"
	"collector-service/outbox"
	"collector-service/pkg/storage"
	"collector-service/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var allowedFileTypes = map[string]struct{}{
	"audio/mpeg":      {},
	"audio/wav":       {},
	"audio/ogg":       {},
	"audio/webm":      {},
	"audio/mp4":       {},
	"video/mp4":       {},
	"video/webm":      {},
	"video/quicktime": {},
	"video/x-msvideo": {},
}

type MediaIngestService interface {
	UploadMedia(ctx context.Context, content []byte, fileName string, contentType string, req dto.MediaUploadRequest) (*dto.MediaUploadResponse, error)
	UpdateStatus(ctx context.Context, fileKey string, status constant.MediaStatus) error
}

type mediaIngestService struct {
	repo        repository.CollectorRepository
	publisher   *outbox.Publisher
	store       storage.Store
	maxFileSize int64
}

func NewMediaIngestService(repo repository.CollectorRepository, publisher *outbox.Publisher, store storage.Store, maxFileSize int64) MediaIngestService {
	if maxFileSize <= 0 {
		maxFileSize = 500 * 1024 * 1024
	}
	return &mediaIngestService{
		repo:        repo,
		publisher:   publisher,
		store:       store,
		maxFileSize: maxFileSize,
	}
}

// UploadMedia stores uploaded bytes exactly once per distinct content. The
// checksum lookup, asset and link rows, and the MEDIA_UPLOADED outbox event
// all commit in one transaction; a storage write failure aborts the whole
// call with no partial rows. Duplicate content is a success: the existing
// asset is reused, a fresh MeetingMedia row still records this call's
// metadata.
func (s *mediaIngestService) UploadMedia(ctx context.Context, content []byte, fileName string, contentType string, req dto.MediaUploadRequest) (*dto.MediaUploadResponse, error) {
	if err := s.validate(content, contentType); err != nil {
		return nil, err
	}

	sum := sha256.Sum256(content)
	checksum := hex.EncodeToString(sum[:])
	platform := strings.ToUpper(req.Platform)

	var (
		asset     *entities.MediaAsset
		duplicate bool
	)

	err := s.repo.Transaction(ctx, func(ctx context.Context) error {
		existing, err := s.repo.FindMediaAssetByChecksum(ctx, checksum)
		switch {
		case err == nil:
			asset = existing
			duplicate = true
			zerolog.Ctx(ctx).Info().Str("checksum", checksum).Str("file_key", asset.FileKey).
				Msg("duplicate content detected, reusing media asset")
		case errors.Is(err, repository.ErrNotFound):
			asset, err = s.storeNewAsset(ctx, content, fileName, contentType, platform, checksum)
			if err != nil {
				return err
			}
		default:
			return err
		}

		media := &entities.MeetingMedia{
			ID:               uuid.New(),
			MeetingID:        req.MeetingID,
			Platform:         platform,
			MediaAssetID:     asset.ID,
			MeetingTitle:     req.MeetingTitle,
			HostName:         req.HostName,
			MeetingStartTime: req.MeetingStartTime,
			MeetingEndTime:   req.MeetingEndTime,
			ParticipantCount: req.ParticipantCount,
			UploadedAt:       time.Now(),
			UploadedBy:       req.UploadedBy,
		}
		if err := s.repo.CreateMeetingMedia(ctx, media); err != nil {
			return err
		}

		return s.publishUploadedEvent(ctx, asset, req, platform)
	})
	if err != nil {
		return nil, err
	}

	message := "File uploaded successfully."
	if duplicate {
		message = "Duplicate content; existing media asset reused."
	}

	return &dto.MediaUploadResponse{
		MediaStatusID: asset.ID,
		FileKey:       asset.FileKey,
		Status:        "SUCCESS",
		Message:       message,
		Duplicate:     duplicate,
		UploadedAt:    time.Now(),
	}, nil
}

func (s *mediaIngestService) validate(content []byte, contentType string) error {
	if len(content) == 0 {
		return ErrEmptyFile
	}
	if int64(len(content)) > s.maxFileSize {
		return ErrFileTooLarge
	}
	if _, ok := allowedFileTypes[contentType]; !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedFileType, contentType)
	}
	return nil
}

func (s *mediaIngestService) storeNewAsset(ctx context.Context, content []byte, fileName string, contentType string, platform string, checksum string) (*entities.MediaAsset, error) {
	fileKey := fmt.Sprintf("%s_%s", strings.ToLower(platform), uuid.New())
	objectName := fmt.Sprintf("%s/%s%s", strings.ToLower(platform), fileKey, fileExtension(fileName))

	storagePath, err := s.store.Put(ctx, objectName, content, contentType)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("object", objectName).Msg("media storage write failed")
		return nil, fmt.Errorf("store media object %s: %w", objectName, err)
	}

	asset := &entities.MediaAsset{
		ID:               uuid.New(),
		FileKey:          fileKey,
		Checksum:         checksum,
		MimeType:         contentType,
		OriginalFileName: fileName,
		FileSize:         int64(len(content)),
		StoragePath:      storagePath,
		Status:           constant.MediaStatusPending,
		CreatedAt:        time.Now(),
	}
	if err := s.repo.CreateMediaAsset(ctx, asset); err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().Str("file_key", fileKey).Str("storage_path", storagePath).Msg("media asset stored")
	return asset, nil
}

func (s *mediaIngestService) publishUploadedEvent(ctx context.Context, asset *entities.MediaAsset, req dto.MediaUploadRequest, platform string) error {
	payload := dto.MediaUploadedPayload{
		EventID:          uuid.New().String(),
		EventType:        constant.EventTypeMediaUploaded.String(),
		Platform:         platform,
		MeetingID:        req.MeetingID,
		FileKey:          asset.FileKey,
		StoragePath:      asset.StoragePath,
		MimeType:         asset.MimeType,
		FileSize:         asset.FileSize,
		Checksum:         asset.Checksum,
		OriginalFileName: asset.OriginalFileName,
		MeetingTitle:     req.MeetingTitle,
		HostName:         req.HostName,
		MeetingStartTime: req.MeetingStartTime,
		MeetingEndTime:   req.MeetingEndTime,
		ParticipantCount: req.ParticipantCount,
		UploadedBy:       req.UploadedBy,
		Timestamp:        time.Now().UnixMilli(),
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("serialize media uploaded payload: %w", err)
	}

	return s.publisher.PublishRaw(ctx, raw, asset.FileKey, constant.AggregateTypeMeetingMedia, constant.EventTypeMediaUploaded)
}

// UpdateStatus applies a processing-progress report from the downstream
// pipeline. Only PENDING->PROCESSING and PROCESSING->{COMPLETED,FAILED} are
// valid; COMPLETED stamps processed_at.
func (s *mediaIngestService) UpdateStatus(ctx context.Context, fileKey string, status constant.MediaStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidStatusTransition, status)
	}

	return s.repo.Transaction(ctx, func(ctx context.Context) error {
		asset, err := s.repo.FindMediaAssetByFileKey(ctx, fileKey)
		if err != nil {
			return err
		}

		if !validStatusTransition(asset.Status, status) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, asset.Status, status)
		}

		asset.Status = status
		if status == constant.MediaStatusCompleted {
			now := time.Now()
			asset.ProcessedAt = &now
		}

		if err := s.repo.SaveMediaAsset(ctx, asset); err != nil {
			return err
		}

		zerolog.Ctx(ctx).Info().Str("file_key", fileKey).Str("status", status.String()).Msg("media asset status updated")
		return nil
	})
}

func validStatusTransition(from, to constant.MediaStatus) bool {
	switch from {
	case constant.MediaStatusPending:
		return to == constant.MediaStatusProcessing
	case constant.MediaStatusProcessing:
		return to == constant.MediaStatusCompleted || to == constant.MediaStatusFailed
	default:
		return false
	}
}

func fileExtension(fileName string) string {
	return filepath.Ext(fileName)
}
