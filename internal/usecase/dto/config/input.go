package configdto

type CreateSnapshotInput struct {
	PairRatio                string    `validate:"required,oneof=1:1 1:2 2:1"`
	PairUnit                 float64   `validate:"gt=0"`
	CommissionValue          float64   `validate:"gte=0"`
	DailyCapAmount           float64   `validate:"gt=0"`
	DailyCapMode             string    `validate:"omitempty,oneof=per_evaluation rolling_24h"`
	ReferralBonusPercentage  float64   `validate:"gte=0,lte=100"`
	MatchingBonusGenerations []float64 `validate:"max=10,dive,gte=0,lte=100"`
	// nil keeps the system default (true)
	HoldingTankDefault *bool
	CreatedBy          string `validate:"omitempty,max=64"`
}
