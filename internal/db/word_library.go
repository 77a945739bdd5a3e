package db

import "time"

type WordLibrary struct {
	ID        uint      `gorm:"primaryKey"`
	Language  string    `gorm:"size:16;not null;uniqueIndex:idx_word_library_language_text"`
	Text      string    `gorm:"size:64;not null;uniqueIndex:idx_word_library_language_text"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (WordLibrary) TableName() string {
	return "word_library"
}
