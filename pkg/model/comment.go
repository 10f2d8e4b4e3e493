package model

import "time"

// Comment is a discussion comment owned by exactly one parent record.
// ParentKind names the owning family ("assignments", "resources",
// "weeks"); ParentID is the parent's key rendered as a string. Dependent
// tables carry no enforced foreign key, so cascade cleanup is the
// gateway's job.
type Comment struct {
	ID         int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ParentKind string    `gorm:"column:parent_kind;not null;index:idx_comments_parent" json:"parent_kind"`
	ParentID   string    `gorm:"column:parent_id;not null;index:idx_comments_parent" json:"parent_id"`
	Author     string    `gorm:"column:author;not null" json:"author"`
	Text       string    `gorm:"column:text;not null" json:"text"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Comment) TableName() string {
	return "comments"
}
