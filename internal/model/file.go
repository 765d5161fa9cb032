package model

// FileRecord is one indexed media item. ID is a stable content-derived
// identifier, unique within a tier; the same ID may appear in another tier
// after a crashed move and that is tolerated.
type FileRecord struct {
	ID       string `gorm:"primaryKey;size:128" json:"id"`
	FileName string `gorm:"size:512;not null" json:"file_name"`
	Caption  string `gorm:"type:text" json:"caption"`
	FileSize int64  `gorm:"not null;default:0" json:"file_size"`
}
