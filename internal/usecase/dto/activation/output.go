package activationdto

import "github.com/LavaJover/shvark-binary-engine/internal/domain"

type ActivationOutput struct {
	MemberID      string
	AlreadyActive bool
	Parked        bool
	Root          bool
	Placement     *domain.Placement
	Credits       []domain.Credit
}
