package repository

import (
	"context"
	"database/sql"
	"errors"

	"collector-service/entities"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrNotFound is returned when a looked-up aggregate does not exist.
var ErrNotFound = errors.New("record not found")

type CollectorRepository interface {
	Transaction(ctx context.Context, callback func(ctx context.Context) error, opts ...*sql.TxOptions) error
	GetDB() *gorm.DB
	Migrate() error

	SaveOutboxEvent(ctx context.Context, event *entities.OutboxEvent) error
	FindUnprocessedEvents(ctx context.Context, limit int) ([]*entities.OutboxEvent, error)
	MarkEventProcessed(ctx context.Context, id int64) error

	CreateMediaAsset(ctx context.Context, asset *entities.MediaAsset) error
	FindMediaAssetByChecksum(ctx context.Context, checksum string) (*entities.MediaAsset, error)
	FindMediaAssetByFileKey(ctx context.Context, fileKey string) (*entities.MediaAsset, error)
	SaveMediaAsset(ctx context.Context, asset *entities.MediaAsset) error
	CreateMeetingMedia(ctx context.Context, media *entities.MeetingMedia) error

	CreateVoiceSession(ctx context.Context, session *entities.VoiceSession) error
	FindVoiceSessionByID(ctx context.Context, id uuid.UUID) (*entities.VoiceSession, error)
	SaveVoiceSession(ctx context.Context, session *entities.VoiceSession) error
	FindActiveVoiceSessions(ctx context.Context) ([]*entities.VoiceSession, error)

	CreateMeeting(ctx context.Context, meeting *entities.Meeting) error
	FindMeetingByID(ctx context.Context, id uuid.UUID) (*entities.Meeting, error)
	SaveMeeting(ctx context.Context, meeting *entities.Meeting) error

	CreateMessage(ctx context.Context, message *entities.Message) error

	CreateAudioMessage(ctx context.Context, audio *entities.AudioMessage) error
	FindAudioMessageByID(ctx context.Context, id uuid.UUID) (*entities.AudioMessage, error)
	SaveAudioMessage(ctx context.Context, audio *entities.AudioMessage) error
}

type txKey struct{}

type repo struct {
	db *gorm.DB
}

func NewRepo(db *sql.DB) CollectorRepository {
	gormDB, _ := gorm.Open(postgres.New(postgres.Config{
		Conn: db}),
		&gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		},
	)
	return &repo{
		db: gormDB,
	}
}

// NewRepoWithGorm wraps an already-opened gorm DB. Used by tests with the
// sqlite dialect.
func NewRepoWithGorm(db *gorm.DB) CollectorRepository {
	return &repo{db: db}
}

func (r *repo) GetDB() *gorm.DB {
	return r.db
}

func (r *repo) Migrate() error {
	return r.db.AutoMigrate(
		&entities.OutboxEvent{},
		&entities.MediaAsset{},
		&entities.MeetingMedia{},
		&entities.VoiceSession{},
		&entities.Meeting{},
		&entities.Message{},
		&entities.AudioMessage{},
	)
}

// Transaction runs callback inside one database transaction. The transaction
// handle is carried in the context, so every repository call made with that
// context joins the same transaction. Either everything in the callback
// commits or nothing does.
func (r *repo) Transaction(ctx context.Context, callback func(ctx context.Context) error, opts ...*sql.TxOptions) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return callback(context.WithValue(ctx, txKey{}, tx))
	}, opts...)
}

// conn returns the transaction bound to ctx, or the base connection when the
// caller is not inside Transaction.
func (r *repo) conn(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return r.db.WithContext(ctx)
}

func (r *repo) SaveOutboxEvent(ctx context.Context, event *entities.OutboxEvent) error {
	return r.conn(ctx).Create(event).Error
}

func (r *repo) FindUnprocessedEvents(ctx context.Context, limit int) ([]*entities.OutboxEvent, error) {
	var events []*entities.OutboxEvent
	err := r.conn(ctx).Where("processed = ?", false).Order("id ASC").Limit(limit).Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (r *repo) MarkEventProcessed(ctx context.Context, id int64) error {
	return r.conn(ctx).Model(&entities.OutboxEvent{}).Where("id = ?", id).Update("processed", true).Error
}

func (r *repo) CreateMediaAsset(ctx context.Context, asset *entities.MediaAsset) error {
	return r.conn(ctx).Create(asset).Error
}

func (r *repo) FindMediaAssetByChecksum(ctx context.Context, checksum string) (*entities.MediaAsset, error) {
	asset := &entities.MediaAsset{}
	err := r.conn(ctx).First(asset, "checksum = ?", checksum).Error
	if err != nil {
		return nil, mapNotFound(err)
	}
	return asset, nil
}

func (r *repo) FindMediaAssetByFileKey(ctx context.Context, fileKey string) (*entities.MediaAsset, error) {
	asset := &entities.MediaAsset{}
	err := r.conn(ctx).First(asset, "file_key = ?", fileKey).Error
	if err != nil {
		return nil, mapNotFound(err)
	}
	return asset, nil
}

func (r *repo) SaveMediaAsset(ctx context.Context, asset *entities.MediaAsset) error {
	return r.conn(ctx).Save(asset).Error
}

func (r *repo) CreateMeetingMedia(ctx context.Context, media *entities.MeetingMedia) error {
	return r.conn(ctx).Omit("MediaAsset").Create(media).Error
}

func (r *repo) CreateVoiceSession(ctx context.Context, session *entities.VoiceSession) error {
	return r.conn(ctx).Create(session).Error
}

func (r *repo) FindVoiceSessionByID(ctx context.Context, id uuid.UUID) (*entities.VoiceSession, error) {
	session := &entities.VoiceSession{}
	err := r.conn(ctx).First(session, "id = ?", id).Error
	if err != nil {
		return nil, mapNotFound(err)
	}
	return session, nil
}

func (r *repo) SaveVoiceSession(ctx context.Context, session *entities.VoiceSession) error {
	return r.conn(ctx).Save(session).Error
}

func (r *repo) FindActiveVoiceSessions(ctx context.Context) ([]*entities.VoiceSession, error) {
	var sessions []*entities.VoiceSession
	err := r.conn(ctx).Where("end_time IS NULL").Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *repo) CreateMeeting(ctx context.Context, meeting *entities.Meeting) error {
	return r.conn(ctx).Create(meeting).Error
}

func (r *repo) FindMeetingByID(ctx context.Context, id uuid.UUID) (*entities.Meeting, error) {
	meeting := &entities.Meeting{}
	err := r.conn(ctx).First(meeting, "id = ?", id).Error
	if err != nil {
		return nil, mapNotFound(err)
	}
	return meeting, nil
}

func (r *repo) SaveMeeting(ctx context.Context, meeting *entities.Meeting) error {
	return r.conn(ctx).Save(meeting).Error
}

func (r *repo) CreateMessage(ctx context.Context, message *entities.Message) error {
	return r.conn(ctx).Create(message).Error
}

func (r *repo) CreateAudioMessage(ctx context.Context, audio *entities.AudioMessage) error {
	return r.conn(ctx).Create(audio).Error
}

func (r *repo) FindAudioMessageByID(ctx context.Context, id uuid.UUID) (*entities.AudioMessage, error) {
	audio := &entities.AudioMessage{}
	err := r.conn(ctx).First(audio, "id = ?", id).Error
	if err != nil {
		return nil, mapNotFound(err)
	}
	return audio, nil
}

func (r *repo) SaveAudioMessage(ctx context.Context, audio *entities.AudioMessage) error {
	return r.conn(ctx).Save(audio).Error
}

func mapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
