package services

import (
	"context"

	"task-management-api/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MarkReadAll marks every unread notice of the user; any other mode marks a
// single notice.
const MarkReadAll = "all"

// NoticeService lists notices and records read receipts.
type NoticeService struct {
	db *gorm.DB
}

func NewNoticeService(db *gorm.DB) *NoticeService {
	return &NoticeService{db: db}
}

// ListUnread returns the notices addressed to userID that the user has not
// acknowledged yet, newest first, with the originating task's title.
func (s *NoticeService) ListUnread(ctx context.Context, userID string) ([]models.Notice, error) {
	db := s.db.WithContext(ctx)
	addressed := db.Table("notice_team").Select("notice_id").Where("user_id = ?", userID)
	read := db.Table("notice_reads").Select("notice_id").Where("user_id = ?", userID)

	notices := []models.Notice{}
	err := db.
		Preload("Team").
		Preload("Task", func(db *gorm.DB) *gorm.DB { return db.Select("id", "title") }).
		Where("id IN (?) AND id NOT IN (?)", addressed, read).
		Order("created_at desc").
		Find(&notices).Error
	if err != nil {
		return nil, wrapInternal(err, "list notices")
	}
	return notices, nil
}

// MarkRead adds userID to the read set of one notice, or of every notice
// addressed to the user when mode is MarkReadAll. A user already in a read
// set is left as is.
func (s *NoticeService) MarkRead(ctx context.Context, userID, mode, noticeID string) error {
	db := s.db.WithContext(ctx)

	if mode == MarkReadAll {
		err := db.Exec(
			"INSERT INTO notice_reads (notice_id, user_id) SELECT notice_id, ? FROM notice_team WHERE user_id = ? ON CONFLICT DO NOTHING",
			userID, userID,
		).Error
		return wrapInternal(err, "mark notices read")
	}

	if err := validateID(noticeID, "Notice"); err != nil {
		return err
	}
	var count int64
	if err := db.Model(&models.Notice{}).Where("id = ?", noticeID).Count(&count).Error; err != nil {
		return wrapInternal(err, "load notice")
	}
	if count == 0 {
		return notFound("Notification not found.")
	}
	err := db.Table("notice_reads").
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(map[string]any{"notice_id": noticeID, "user_id": userID}).Error
	return wrapInternal(err, "mark notice read")
}

// ReadBy returns the ids of the users who acknowledged a notice.
func (s *NoticeService) ReadBy(ctx context.Context, noticeID string) ([]string, error) {
	ids := []string{}
	err := s.db.WithContext(ctx).Table("notice_reads").Where("notice_id = ?", noticeID).Order("user_id").Pluck("user_id", &ids).Error
	if err != nil {
		return nil, wrapInternal(err, "load read receipts")
	}
	return ids, nil
}
