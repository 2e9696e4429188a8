package model

// StudentProfile is the academic identity behind a student login. Guests never get one.
//
// swagger:model StudentProfile
type StudentProfile struct {
	BaseModel
	FullName      string   `gorm:"size:150;not null" json:"full_name"`
	StudentNumber *string  `gorm:"size:50;uniqueIndex" json:"student_number"`
	SectionID     *uint    `gorm:"index" json:"section_id"`
	Section       *Section `gorm:"constraint:OnDelete:SET NULL" json:"section,omitempty"`
	UserID        *uint    `gorm:"uniqueIndex" json:"user_id"`
	User          *User    `gorm:"constraint:OnDelete:CASCADE" json:"user,omitempty"`
}

func (StudentProfile) TableName() string {
	return "students"
}
