package domain

type Rank string

const (
	RankBronze  Rank = "Bronze"
	RankSilver  Rank = "Silver"
	RankGold    Rank = "Gold"
	RankDiamond Rank = "Diamond"
)

type rankRule struct {
	rank      Rank
	threshold float64
	bonus     float64
}

// ascending by threshold
var rankLadder = []rankRule{
	{RankBronze, 0, 0},
	{RankSilver, 1000, 50},
	{RankGold, 5000, 200},
	{RankDiamond, 20000, 1000},
}

func (r Rank) Level() int {
	for i, rule := range rankLadder {
		if rule.rank == r {
			return i
		}
	}
	return 0
}

func (r Rank) Less(other Rank) bool {
	return r.Level() < other.Level()
}

// RankForEarnings returns the highest rank whose threshold totalEarned reaches.
func RankForEarnings(totalEarned float64) Rank {
	rank := RankBronze
	for _, rule := range rankLadder {
		if totalEarned >= rule.threshold {
			rank = rule.rank
		}
	}
	return rank
}

func RankBonus(r Rank) float64 {
	for _, rule := range rankLadder {
		if rule.rank == r {
			return rule.bonus
		}
	}
	return 0
}
