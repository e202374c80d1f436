package models

// SynthesiaAvatar and SynthesiaVoice are the locally seeded Synthesia
// catalog. Synthesia has no public catalog endpoint on the plan this
// system targets, so the rows are imported once and read-only here.

type SynthesiaAvatar struct {
	ID     string `gorm:"primaryKey" json:"id"`
	Name   string `gorm:"not null;index" json:"name"`
	Gender string `json:"gender"`
}

func (SynthesiaAvatar) TableName() string {
	return "synthesia_avatars"
}

type SynthesiaVoice struct {
	ID       string `gorm:"primaryKey" json:"id"`
	Name     string `gorm:"not null" json:"name"`
	Language string `gorm:"index" json:"language"`
	Locale   string `json:"locale"`
	Gender   string `json:"gender"`
}

func (SynthesiaVoice) TableName() string {
	return "synthesia_voices"
}
