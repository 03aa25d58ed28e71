package service

import (
	"context"
	"strings"
	"testing"

	"collector-service/constant"
	"collector-service/dto"
	"collector-service/entities"
	"collector-service/repository"

	"github.com/stretchr/testify/require"
)

func uploadRequest(platform string) dto.MediaUploadRequest {
	return dto.MediaUploadRequest{
		MeetingID:        "meet-1",
		Platform:         platform,
		MeetingTitle:     "weekly sync",
		HostName:         "alice",
		ParticipantCount: 4,
		UploadedBy:       "bob",
	}
}

func countRows(t *testing.T, repo repository.CollectorRepository, model any) int64 {
	t.Helper()
	var count int64
	require.NoError(t, repo.GetDB().Model(model).Count(&count).Error)
	return count
}

func TestUploadMediaStoresAssetLinkAndEvent(t *testing.T) {
	repo, publisher := setupTestRepo(t)
	store := &fakeStore{}
	svc := NewMediaIngestService(repo, publisher, store, 0)
	ctx := context.Background()

	resp, err := svc.UploadMedia(ctx, []byte("abc"), "rec.mp4", "video/mp4", uploadRequest("ZOOM"))
	require.NoError(t, err)
	require.Equal(t, "SUCCESS", resp.Status)
	require.False(t, resp.Duplicate)
	require.True(t, strings.HasPrefix(resp.FileKey, "zoom_"))

	asset, err := repo.FindMediaAssetByFileKey(ctx, resp.FileKey)
	require.NoError(t, err)
	require.Equal(t, constant.MediaStatusPending, asset.Status)
	require.Equal(t, int64(3), asset.FileSize)
	require.Len(t, asset.Checksum, 64)
	require.True(t, strings.HasPrefix(asset.StoragePath, "media/zoom/"))

	require.EqualValues(t, 1, countRows(t, repo, &entities.MeetingMedia{}))
	require.Len(t, store.puts, 1)

	events, err := repo.FindUnprocessedEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, "MeetingMedia", events[0].AggregateType)
	require.Equal(t, "MEDIA_UPLOADED", events[0].EventType)
	require.Equal(t, resp.FileKey, events[0].AggregateID)
	require.Contains(t, events[0].Payload, asset.Checksum)
	require.Contains(t, events[0].Payload, `"meetingId":"meet-1"`)
}

func TestUploadDistinctContentProducesSeparateAssets(t *testing.T) {
	repo, publisher := setupTestRepo(t)
	store := &fakeStore{}
	svc := NewMediaIngestService(repo, publisher, store, 0)
	ctx := context.Background()

	first, err := svc.UploadMedia(ctx, []byte("content-a"), "a.wav", "audio/wav", uploadRequest("DISCORD"))
	require.NoError(t, err)
	second, err := svc.UploadMedia(ctx, []byte("content-b"), "b.wav", "audio/wav", uploadRequest("DISCORD"))
	require.NoError(t, err)

	require.NotEqual(t, first.FileKey, second.FileKey)
	require.EqualValues(t, 2, countRows(t, repo, &entities.MediaAsset{}))
	require.EqualValues(t, 2, countRows(t, repo, &entities.MeetingMedia{}))
	require.EqualValues(t, 2, countRows(t, repo, &entities.OutboxEvent{}))
	require.Len(t, store.puts, 2)
}

func TestUploadDuplicateContentReusesAsset(t *testing.T) {
	repo, publisher := setupTestRepo(t)
	store := &fakeStore{}
	svc := NewMediaIngestService(repo, publisher, store, 0)
	ctx := context.Background()

	first, err := svc.UploadMedia(ctx, []byte("abc"), "rec.mp4", "video/mp4", uploadRequest("ZOOM"))
	require.NoError(t, err)

	// Same bytes from another platform and meeting: the asset and stored
	// object are reused, only a fresh link row is added.
	req := uploadRequest("DISCORD")
	req.MeetingID = "meet-2"
	second, err := svc.UploadMedia(ctx, []byte("abc"), "copy.mp4", "video/mp4", req)
	require.NoError(t, err)

	require.True(t, second.Duplicate)
	require.Equal(t, "SUCCESS", second.Status)
	require.Equal(t, first.FileKey, second.FileKey)

	require.EqualValues(t, 1, countRows(t, repo, &entities.MediaAsset{}))
	require.EqualValues(t, 2, countRows(t, repo, &entities.MeetingMedia{}))
	require.Len(t, store.puts, 1)
}

func TestUploadValidationFailuresHaveNoSideEffects(t *testing.T) {
	repo, publisher := setupTestRepo(t)
	store := &fakeStore{}
	svc := NewMediaIngestService(repo, publisher, store, 16)
	ctx := context.Background()

	tests := []struct {
		name        string
		content     []byte
		contentType string
		wantErr     error
	}{
		{"empty file", nil, "video/mp4", ErrEmptyFile},
		{"oversized file", []byte(strings.Repeat("x", 17)), "video/mp4", ErrFileTooLarge},
		{"unsupported type", []byte("abc"), "application/pdf", ErrUnsupportedFileType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.UploadMedia(ctx, tt.content, "f.mp4", tt.contentType, uploadRequest("ZOOM"))
			require.ErrorIs(t, err, tt.wantErr)
		})
	}

	require.EqualValues(t, 0, countRows(t, repo, &entities.MediaAsset{}))
	require.EqualValues(t, 0, countRows(t, repo, &entities.MeetingMedia{}))
	require.EqualValues(t, 0, countRows(t, repo, &entities.OutboxEvent{}))
	require.Empty(t, store.puts)
}

func TestUploadStorageFailureLeavesNothingBehind(t *testing.T) {
	repo, publisher := setupTestRepo(t)
	store := &fakeStore{fail: true}
	svc := NewMediaIngestService(repo, publisher, store, 0)
	ctx := context.Background()

	_, err := svc.UploadMedia(ctx, []byte("abc"), "rec.mp4", "video/mp4", uploadRequest("ZOOM"))
	require.Error(t, err)

	require.EqualValues(t, 0, countRows(t, repo, &entities.MediaAsset{}))
	require.EqualValues(t, 0, countRows(t, repo, &entities.MeetingMedia{}))
	require.EqualValues(t, 0, countRows(t, repo, &entities.OutboxEvent{}))
}

func TestUpdateStatusTransitions(t *testing.T) {
	repo, publisher := setupTestRepo(t)
	store := &fakeStore{}
	svc := NewMediaIngestService(repo, publisher, store, 0)
	ctx := context.Background()

	resp, err := svc.UploadMedia(ctx, []byte("abc"), "rec.mp4", "video/mp4", uploadRequest("ZOOM"))
	require.NoError(t, err)

	// PENDING may only go to PROCESSING.
	err = svc.UpdateStatus(ctx, resp.FileKey, constant.MediaStatusCompleted)
	require.ErrorIs(t, err, ErrInvalidStatusTransition)

	require.NoError(t, svc.UpdateStatus(ctx, resp.FileKey, constant.MediaStatusProcessing))
	require.NoError(t, svc.UpdateStatus(ctx, resp.FileKey, constant.MediaStatusCompleted))

	asset, err := repo.FindMediaAssetByFileKey(ctx, resp.FileKey)
	require.NoError(t, err)
	require.Equal(t, constant.MediaStatusCompleted, asset.Status)
	require.NotNil(t, asset.ProcessedAt)

	// Terminal states accept no further transitions.
	err = svc.UpdateStatus(ctx, resp.FileKey, constant.MediaStatusProcessing)
	require.ErrorIs(t, err, ErrInvalidStatusTransition)
}

func TestUpdateStatusUnknownFileKey(t *testing.T) {
	repo, publisher := setupTestRepo(t)
	svc := NewMediaIngestService(repo, publisher, &fakeStore{}, 0)

	err := svc.UpdateStatus(context.Background(), "zoom_missing", constant.MediaStatusProcessing)
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	repo, publisher := setupTestRepo(t)
	svc := NewMediaIngestService(repo, publisher, &fakeStore{}, 0)

	err := svc.UpdateStatus(context.Background(), "zoom_x", constant.MediaStatus("ARCHIVED"))
	require.ErrorIs(t, err, ErrInvalidStatusTransition)
}
