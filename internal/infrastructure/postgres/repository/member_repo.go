package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/LavaJover/shvark-binary-engine/internal/domain"
	"github.com/LavaJover/shvark-binary-engine/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/shvark-binary-engine/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DefaultMemberRepository struct {
	DB *gorm.DB
}

func NewDefaultMemberRepository(db *gorm.DB) *DefaultMemberRepository {
	return &DefaultMemberRepository{DB: db}
}

func (r *DefaultMemberRepository) CreateMember(ctx context.Context, member *domain.Member) error {
	model := mappers.ToGORMMember(member)
	if model.Rank == "" {
		model.Rank = string(domain.RankBronze)
	}
	if model.Status == "" {
		model.Status = string(domain.MemberStatusPending)
	}
	if model.HoldingTankOverride == "" {
		model.HoldingTankOverride = string(domain.HoldingTankSystem)
	}
	if err := r.DB.WithContext(ctx).Create(model).Error; err != nil {
		return classify(fmt.Errorf("failed to create member: %w", err))
	}
	return nil
}

func (r *DefaultMemberRepository) GetMember(ctx context.Context, memberID string) (*domain.Member, error) {
	return r.getMember(r.DB.WithContext(ctx), memberID)
}

func (r *DefaultMemberRepository) GetMemberForUpdate(ctx context.Context, memberID string) (*domain.Member, error) {
	return r.getMember(r.DB.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), memberID)
}

func (r *DefaultMemberRepository) getMember(db *gorm.DB, memberID string) (*domain.Member, error) {
	var model models.MemberModel
	if err := db.Where("id = ?", memberID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrMemberNotFound, memberID)
		}
		return nil, classify(err)
	}
	return mappers.ToDomainMember(&model), nil
}

func (r *DefaultMemberRepository) GetMembers(ctx context.Context, memberIDs []string) ([]*domain.Member, error) {
	if len(memberIDs) == 0 {
		return nil, nil
	}
	var memberModels []models.MemberModel
	if err := r.DB.WithContext(ctx).Where("id IN ?", memberIDs).Find(&memberModels).Error; err != nil {
		return nil, classify(err)
	}
	members := make([]*domain.Member, len(memberModels))
	for i := range memberModels {
		members[i] = mappers.ToDomainMember(&memberModels[i])
	}
	return members, nil
}

func (r *DefaultMemberRepository) MarkPlaced(ctx context.Context, memberID, parentID string, position domain.Side) error {
	result := r.DB.WithContext(ctx).
		Model(&models.MemberModel{}).
		Where("id = ? AND is_placed = ? AND parent_id IS NULL", memberID, false).
		Updates(map[string]interface{}{
			"parent_id":  parentID,
			"position":   string(position),
			"is_placed":  true,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return classify(result.Error)
	}
	if result.RowsAffected == 0 {
		return r.missingOr(ctx, memberID, domain.ErrAlreadyPlaced)
	}
	return nil
}

func (r *DefaultMemberRepository) MarkRoot(ctx context.Context, memberID string) error {
	result := r.DB.WithContext(ctx).
		Model(&models.MemberModel{}).
		Where("id = ? AND is_placed = ?", memberID, false).
		Updates(map[string]interface{}{
			"is_placed":  true,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return classify(result.Error)
	}
	if result.RowsAffected == 0 {
		return r.missingOr(ctx, memberID, domain.ErrAlreadyPlaced)
	}
	return nil
}

func (r *DefaultMemberRepository) AttachChild(ctx context.Context, parentID string, side domain.Side, childID string) error {
	column := "left_child_id"
	if side == domain.SideRight {
		column = "right_child_id"
	}
	result := r.DB.WithContext(ctx).
		Model(&models.MemberModel{}).
		Where(fmt.Sprintf("id = ? AND %s IS NULL", column), parentID).
		Updates(map[string]interface{}{
			column:       childID,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return classify(result.Error)
	}
	if result.RowsAffected == 0 {
		return r.missingOr(ctx, parentID, fmt.Errorf("%w: %s %s", domain.ErrSlotTaken, parentID, side))
	}
	return nil
}

func (r *DefaultMemberRepository) MarkActive(ctx context.Context, memberID string, activationAmount float64) error {
	return r.update(ctx, memberID, map[string]interface{}{
		"status":            string(domain.MemberStatusActive),
		"activation_amount": activationAmount,
	})
}

func (r *DefaultMemberRepository) AddLegVolume(ctx context.Context, memberID string, side domain.Side, amount float64) error {
	current, aggregate := "current_left_pv", "left_leg_pv"
	if side == domain.SideRight {
		current, aggregate = "current_right_pv", "right_leg_pv"
	}
	return r.update(ctx, memberID, map[string]interface{}{
		current:   gorm.Expr(current+" + ?", amount),
		aggregate: gorm.Expr(aggregate+" + ?", amount),
	})
}

func (r *DefaultMemberRepository) DeductVolume(ctx context.Context, memberID string, left, right float64) error {
	return r.update(ctx, memberID, map[string]interface{}{
		"current_left_pv":  gorm.Expr("current_left_pv - ?", left),
		"current_right_pv": gorm.Expr("current_right_pv - ?", right),
	})
}

func (r *DefaultMemberRepository) AddPersonalPV(ctx context.Context, memberID string, amount float64) error {
	return r.update(ctx, memberID, map[string]interface{}{
		"personal_pv": gorm.Expr("personal_pv + ?", amount),
	})
}

func (r *DefaultMemberRepository) UpdateRank(ctx context.Context, memberID string, rank domain.Rank) error {
	return r.update(ctx, memberID, map[string]interface{}{
		"rank": string(rank),
	})
}

const countSubtreeQuery = `
WITH RECURSIVE subtree AS (
	SELECT id, left_child_id, right_child_id FROM members WHERE id = ?
	UNION
	SELECT m.id, m.left_child_id, m.right_child_id
	FROM members m
	JOIN subtree s ON m.id = s.left_child_id OR m.id = s.right_child_id
)
SELECT COUNT(*) FROM subtree`

func (r *DefaultMemberRepository) CountSubtree(ctx context.Context, rootID string) (int64, error) {
	var count int64
	if err := r.DB.WithContext(ctx).Raw(countSubtreeQuery, rootID).Scan(&count).Error; err != nil {
		return 0, classify(err)
	}
	return count, nil
}

func (r *DefaultMemberRepository) ListPairingCandidates(ctx context.Context) ([]string, error) {
	var ids []string
	if err := r.DB.WithContext(ctx).
		Model(&models.MemberModel{}).
		Where("is_placed = ? AND current_left_pv > 0 AND current_right_pv > 0", true).
		Order("created_at ASC").
		Pluck("id", &ids).Error; err != nil {
		return nil, classify(err)
	}
	return ids, nil
}

func (r *DefaultMemberRepository) ListHoldingTank(ctx context.Context, sponsorID string) ([]*domain.Member, error) {
	var memberModels []models.MemberModel
	if err := r.DB.WithContext(ctx).
		Where("sponsor_id = ? AND status = ? AND is_placed = ?", sponsorID, string(domain.MemberStatusActive), false).
		Order("created_at ASC, id ASC").
		Find(&memberModels).Error; err != nil {
		return nil, classify(err)
	}
	members := make([]*domain.Member, len(memberModels))
	for i := range memberModels {
		members[i] = mappers.ToDomainMember(&memberModels[i])
	}
	return members, nil
}

func (r *DefaultMemberRepository) update(ctx context.Context, memberID string, fields map[string]interface{}) error {
	fields["updated_at"] = time.Now()
	result := r.DB.WithContext(ctx).
		Model(&models.MemberModel{}).
		Where("id = ?", memberID).
		Updates(fields)
	if result.Error != nil {
		return classify(result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", domain.ErrMemberNotFound, memberID)
	}
	return nil
}

// missingOr tells a lost compare-and-set apart from an unknown row.
func (r *DefaultMemberRepository) missingOr(ctx context.Context, memberID string, casErr error) error {
	var count int64
	if err := r.DB.WithContext(ctx).Model(&models.MemberModel{}).Where("id = ?", memberID).Count(&count).Error; err != nil {
		return classify(err)
	}
	if count == 0 {
		return fmt.Errorf("%w: %s", domain.ErrMemberNotFound, memberID)
	}
	return casErr
}
