package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Profile roles, checked as membership in a per-route allow-list.
const (
	RoleUser          = "user"
	RoleModerator     = "moderator"
	RoleAdministrator = "administrator"
)

type Department struct {
	ID          string    `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"uniqueIndex;not null" json:"name"`
	Description string    `gorm:"not null" json:"description"`
	Phone       string    `gorm:"not null" json:"phone"`
	Manager     string    `gorm:"not null" json:"manager"`
	Services    []Service `gorm:"many2many:department_services" json:"services"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (d *Department) BeforeCreate(_ *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}

type Service struct {
	ID        string          `gorm:"type:uuid;primaryKey" json:"id"`
	Code      string          `gorm:"uniqueIndex;not null" json:"code"`
	Name      string          `gorm:"uniqueIndex;not null" json:"name"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

func (s *Service) BeforeCreate(_ *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

type Branch struct {
	ID           string        `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string        `gorm:"uniqueIndex;not null" json:"name"`
	Description  string        `gorm:"uniqueIndex;not null" json:"description"`
	Subdivisions []Subdivision `gorm:"many2many:branch_subdivisions" json:"subdivisions"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

func (b *Branch) BeforeCreate(_ *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

type Subdivision struct {
	ID          string    `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"uniqueIndex;not null" json:"name"`
	Description string    `gorm:"uniqueIndex;not null" json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (s *Subdivision) BeforeCreate(_ *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// Report is the monthly fact table: one row per
// (department, service, branch, subdivision, month, year).
// currentJobCount == previousJobCount + changesJobCount after every update.
type Report struct {
	ID               string       `gorm:"type:uuid;primaryKey" json:"id"`
	MonthOfReport    int          `gorm:"not null;uniqueIndex:ux_report_period" json:"monthOfReport"`
	YearOfReport     int          `gorm:"not null;uniqueIndex:ux_report_period" json:"yearOfReport"`
	DepartmentID     string       `gorm:"type:uuid;not null;index;uniqueIndex:ux_report_period" json:"departmentId"`
	ServiceID        string       `gorm:"type:uuid;not null;index;uniqueIndex:ux_report_period" json:"serviceId"`
	BranchID         string       `gorm:"type:uuid;not null;index;uniqueIndex:ux_report_period" json:"branchId"`
	SubdivisionID    string       `gorm:"type:uuid;not null;index;uniqueIndex:ux_report_period" json:"subdivisionId"`
	PreviousJobCount int          `gorm:"not null;default:0" json:"previousJobCount"`
	ChangesJobCount  int          `gorm:"not null;default:0" json:"changesJobCount"`
	CurrentJobCount  int          `gorm:"not null;default:0" json:"currentJobCount"`
	Completed        bool         `gorm:"not null;default:false" json:"completed"`
	Department       *Department  `gorm:"foreignKey:DepartmentID" json:"department,omitempty"`
	Service          *Service     `gorm:"foreignKey:ServiceID" json:"service,omitempty"`
	Branch           *Branch      `gorm:"foreignKey:BranchID" json:"branch,omitempty"`
	Subdivision      *Subdivision `gorm:"foreignKey:SubdivisionID" json:"subdivision,omitempty"`
	CreatedAt        time.Time    `json:"createdAt"`
	UpdatedAt        time.Time    `json:"updatedAt"`
}

func (r *Report) BeforeCreate(_ *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// Archive is an immutable denormalized snapshot of a report row. Reference
// details are embedded so archived periods survive catalog deletions.
type Archive struct {
	ID                     string          `gorm:"type:uuid;primaryKey" json:"id"`
	MonthOfReport          int             `gorm:"not null;index" json:"monthOfReport"`
	YearOfReport           int             `gorm:"not null;index" json:"yearOfReport"`
	DepartmentID           string          `gorm:"type:uuid;not null;index" json:"departmentId"`
	DepartmentName         string          `gorm:"not null" json:"departmentName"`
	DepartmentPhone        string          `json:"departmentPhone"`
	DepartmentManager      string          `json:"departmentManager"`
	ServiceID              string          `gorm:"type:uuid;not null" json:"serviceId"`
	ServiceCode            string          `gorm:"not null" json:"serviceCode"`
	ServiceName            string          `gorm:"not null" json:"serviceName"`
	ServicePrice           decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"servicePrice"`
	BranchID               string          `gorm:"type:uuid;not null" json:"branchId"`
	BranchName             string          `gorm:"not null" json:"branchName"`
	BranchDescription      string          `json:"branchDescription"`
	SubdivisionID          string          `gorm:"type:uuid;not null" json:"subdivisionId"`
	SubdivisionName        string          `gorm:"not null" json:"subdivisionName"`
	SubdivisionDescription string          `json:"subdivisionDescription"`
	PreviousJobCount       int             `gorm:"not null;default:0" json:"previousJobCount"`
	ChangesJobCount        int             `gorm:"not null;default:0" json:"changesJobCount"`
	CurrentJobCount        int             `gorm:"not null;default:0" json:"currentJobCount"`
	CreatedAt              time.Time       `json:"createdAt"`
}

func (a *Archive) BeforeCreate(_ *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

type Profile struct {
	ID          string    `gorm:"type:uuid;primaryKey" json:"id"`
	Email       string    `gorm:"uniqueIndex;not null" json:"email"`
	Password    string    `gorm:"not null" json:"-"`
	Fullname    string    `gorm:"not null" json:"fullname"`
	Phone       string    `json:"phone"`
	IsActivated bool      `gorm:"not null;default:false" json:"isActivated"`
	Role        string    `gorm:"not null;default:user" json:"role"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (p *Profile) BeforeCreate(_ *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// RefreshToken holds the hash of a profile's current refresh token.
// One row per profile, replaced on every sign-in or refresh.
type RefreshToken struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	ProfileID string    `gorm:"type:uuid;uniqueIndex;not null" json:"profileId"`
	TokenHash string    `gorm:"not null" json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (t *RefreshToken) BeforeCreate(_ *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

type Notice struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	ProfileID string    `gorm:"type:uuid;not null;index" json:"profileId"`
	Title     string    `gorm:"not null" json:"title"`
	Text      string    `gorm:"not null" json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

func (n *Notice) BeforeCreate(_ *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return nil
}

// Syslog is an append-only request audit record written after every request.
type Syslog struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Host      string    `json:"host"`
	Profile   string    `gorm:"index" json:"profile"`
	Method    string    `json:"method"`
	BaseURL   string    `json:"baseUrl"`
	Params    JSONB     `gorm:"type:jsonb;default:'{}'" json:"params"`
	Query     JSONB     `gorm:"type:jsonb;default:'{}'" json:"query"`
	Body      JSONB     `gorm:"type:jsonb;default:'{}'" json:"body"`
	Status    int       `json:"status"`
	UserAgent string    `json:"userAgent"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
}
