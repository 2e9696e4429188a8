package model

type UserRole string

const (
	RoleStudent    UserRole = "student"
	RoleSupervisor UserRole = "supervisor"
	RoleManager    UserRole = "manager"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleStudent, RoleSupervisor, RoleManager:
		return true
	}
	return false
}

// swagger:model User
type User struct {
	BaseModel
	Username     string          `gorm:"size:100;uniqueIndex;not null" json:"username"`
	Email        *string         `gorm:"size:150;uniqueIndex" json:"email"`
	NationalID   string          `gorm:"size:50;uniqueIndex;not null" json:"national_id"`
	PasswordHash string          `gorm:"size:100;not null" json:"-"`
	Role         UserRole        `gorm:"size:20;not null;default:'student';index" json:"role"`
	Student      *StudentProfile `gorm:"foreignKey:UserID" json:"student,omitempty"`
}

func (User) TableName() string {
	return "users"
}
