package models

import "time"

type MemberModel struct {
	ID        string  `gorm:"primaryKey;type:uuid"`
	Username  *string `gorm:"uniqueIndex"`
	SponsorID *string `gorm:"type:uuid;index:idx_members_sponsor"`

	ParentID     *string `gorm:"type:uuid;index:idx_members_parent"`
	LeftChildID  *string `gorm:"type:uuid"`
	RightChildID *string `gorm:"type:uuid"`
	Position     *string

	CurrentLeftPV  float64 `gorm:"column:current_left_pv;not null;default:0"`
	CurrentRightPV float64 `gorm:"column:current_right_pv;not null;default:0"`
	LeftLegPV      float64 `gorm:"column:left_leg_pv;not null;default:0"`
	RightLegPV     float64 `gorm:"column:right_leg_pv;not null;default:0"`
	PersonalPV     float64 `gorm:"column:personal_pv;not null;default:0"`

	Rank                string `gorm:"not null;default:Bronze"`
	Status              string `gorm:"not null;default:pending;index:idx_members_status_placed"`
	IsPlaced            bool   `gorm:"not null;default:false;index:idx_members_status_placed"`
	SpilloverPreference string
	HoldingTankOverride string `gorm:"not null;default:system"`

	EnrollmentPackagePrice float64
	EnrollmentPackagePV    float64 `gorm:"column:enrollment_package_pv"`
	ActivationAmount       float64

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (MemberModel) TableName() string { return "members" }
