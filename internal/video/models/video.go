package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// 审核状态
const (
	ReviewPending  = "P"
	ReviewApproved = "A"
	ReviewHeld     = "H"
)

// 屏蔽标记
const (
	FlagYes = "Y"
	FlagNo  = "N"
)

// 特征来源
const (
	SourceGPTImage  = "GPT_IMAGE"
	SourceDesktopML = "DESKTOP_ML"
)

// 反应类型
const (
	ReactionLike    = "LIKE"
	ReactionDislike = "DISLIKE"
)

// Video 视频主表，一个上传文件对应一行
type Video struct {
	VideoNo      int64   `gorm:"primaryKey;autoIncrement"`
	UserNo       int64   `gorm:"not null;index"`
	Title        string  `gorm:"size:200;not null"`
	Description  *string `gorm:"type:text"`
	FileName     string  `gorm:"size:255;not null"`
	ContentType  string  `gorm:"size:100"`
	FileSize     int64   `gorm:"not null;default:0"`
	FilePath     string  `gorm:"size:1000;not null"`
	Tag1         *string `gorm:"size:100"`
	Tag2         *string `gorm:"size:100"`
	Tag3         *string `gorm:"size:100"`
	Tag4         *string `gorm:"size:100"`
	Tag5         *string `gorm:"size:100"`
	ViewCount    int64   `gorm:"not null;default:0"`
	LikeCount    int64   `gorm:"not null;default:0"`
	DislikeCount int64   `gorm:"not null;default:0"`
	IsBlocked    string  `gorm:"type:char(1);not null;default:N;index:idx_video_public,priority:1"`
	ReviewStatus string  `gorm:"type:char(1);not null;default:P;index:idx_video_public,priority:2"`
	UploadDate   time.Time
	CreatedAt    time.Time `gorm:"index"`
	UpdatedAt    time.Time
}

func (Video) TableName() string {
	return "video"
}

// Tags 返回非空的 tag1..tag5
func (v *Video) Tags() []string {
	tags := make([]string, 0, 5)
	for _, t := range []*string{v.Tag1, v.Tag2, v.Tag3, v.Tag4, v.Tag5} {
		if t != nil && *t != "" {
			tags = append(tags, *t)
		}
	}
	return tags
}

// TagsEmpty tag1..tag5 全部为空
func (v *Video) TagsEmpty() bool {
	return len(v.Tags()) == 0
}

// SetTags 按顺序写入 tag1..tag5，不足的位置置空
func (v *Video) SetTags(tags []string) {
	slots := []**string{&v.Tag1, &v.Tag2, &v.Tag3, &v.Tag4, &v.Tag5}
	for i, slot := range slots {
		if i < len(tags) && tags[i] != "" {
			t := tags[i]
			*slot = &t
		} else {
			*slot = nil
		}
	}
}

// IsPublic 已通过审核且未屏蔽
func (v *Video) IsPublic() bool {
	return v.IsBlocked == FlagNo && v.ReviewStatus == ReviewApproved
}

// VideoFeature 每个 (video_no, source) 至多一行
type VideoFeature struct {
	FeatureNo int64    `gorm:"primaryKey;autoIncrement"`
	VideoNo   int64    `gorm:"not null;uniqueIndex:uk_video_feature_source,priority:1"`
	Source    string   `gorm:"size:30;not null;uniqueIndex:uk_video_feature_source,priority:2"`
	TagsJSON  RawJSON  `gorm:"column:tags_json;type:jsonb"`
	FrameTime *float64 `gorm:"column:frame_time"`
	CreatedAt time.Time
}

func (VideoFeature) TableName() string {
	return "video_feature"
}

// VideoReaction 用户对视频的赞/踩
type VideoReaction struct {
	ReactionNo   int64  `gorm:"primaryKey;autoIncrement"`
	VideoNo      int64  `gorm:"not null;uniqueIndex:uk_video_reaction_user,priority:1"`
	UserNo       int64  `gorm:"not null;uniqueIndex:uk_video_reaction_user,priority:2;index"`
	ReactionType string `gorm:"size:10;not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (VideoReaction) TableName() string {
	return "video_reaction"
}

// RawJSON 原样存取的 JSON 文档
type RawJSON []byte

// Scan implements sql.Scanner interface
func (j *RawJSON) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*j = nil
	case []byte:
		*j = append((*j)[:0], v...)
	case string:
		*j = RawJSON(v)
	default:
		return errors.New("unsupported type for RawJSON")
	}
	return nil
}

// Value implements driver.Valuer interface
func (j RawJSON) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	if !json.Valid(j) {
		return nil, errors.New("invalid json document")
	}
	return string(j), nil
}

// MarshalJSON 保持原始文档
func (j RawJSON) MarshalJSON() ([]byte, error) {
	if len(j) == 0 {
		return []byte("null"), nil
	}
	return j, nil
}
