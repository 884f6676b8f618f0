package mappers

import (
	"github.com/LavaJover/shvark-binary-engine/internal/domain"
	"github.com/LavaJover/shvark-binary-engine/internal/infrastructure/postgres/models"
)

func ToDomainMember(model *models.MemberModel) *domain.Member {
	return &domain.Member{
		ID:                     model.ID,
		Username:               deref(model.Username),
		SponsorID:              deref(model.SponsorID),
		ParentID:               deref(model.ParentID),
		LeftChildID:            deref(model.LeftChildID),
		RightChildID:           deref(model.RightChildID),
		Position:               domain.Side(deref(model.Position)),
		CurrentLeftPV:          model.CurrentLeftPV,
		CurrentRightPV:         model.CurrentRightPV,
		LeftLegPV:              model.LeftLegPV,
		RightLegPV:             model.RightLegPV,
		PersonalPV:             model.PersonalPV,
		Rank:                   domain.Rank(model.Rank),
		Status:                 domain.MemberStatus(model.Status),
		IsPlaced:               model.IsPlaced,
		SpilloverPreference:    domain.SpilloverStrategy(model.SpilloverPreference),
		HoldingTankOverride:    domain.HoldingTankOverride(model.HoldingTankOverride),
		EnrollmentPackagePrice: model.EnrollmentPackagePrice,
		EnrollmentPackagePV:    model.EnrollmentPackagePV,
		ActivationAmount:       model.ActivationAmount,
		CreatedAt:              model.CreatedAt,
		UpdatedAt:              model.UpdatedAt,
	}
}

func ToGORMMember(member *domain.Member) *models.MemberModel {
	return &models.MemberModel{
		ID:                     member.ID,
		Username:               ref(member.Username),
		SponsorID:              ref(member.SponsorID),
		ParentID:               ref(member.ParentID),
		LeftChildID:            ref(member.LeftChildID),
		RightChildID:           ref(member.RightChildID),
		Position:               ref(string(member.Position)),
		CurrentLeftPV:          member.CurrentLeftPV,
		CurrentRightPV:         member.CurrentRightPV,
		LeftLegPV:              member.LeftLegPV,
		RightLegPV:             member.RightLegPV,
		PersonalPV:             member.PersonalPV,
		Rank:                   string(member.Rank),
		Status:                 string(member.Status),
		IsPlaced:               member.IsPlaced,
		SpilloverPreference:    string(member.SpilloverPreference),
		HoldingTankOverride:    string(member.HoldingTankOverride),
		EnrollmentPackagePrice: member.EnrollmentPackagePrice,
		EnrollmentPackagePV:    member.EnrollmentPackagePV,
		ActivationAmount:       member.ActivationAmount,
		CreatedAt:              member.CreatedAt,
		UpdatedAt:              member.UpdatedAt,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// ref maps the domain's empty string to SQL NULL.
func ref(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
