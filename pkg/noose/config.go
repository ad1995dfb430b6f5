package noose

// Config carries every tunable gameplay parameter. All fields have
// defaults; callers only need to override what they care about.
// Configuration is read-only once a game is constructed.
type Config struct {
	BoardSize  int // side length of the square grid
	ForceCount int // tokens per player

	StartingShih int
	MaxShih      int

	BaseShihIncome       int
	ContentiousShihBonus int

	VisibilityRange int
	ScoutRange      int
	SupplyRange     int
	MaxSupplyHops   int

	ScoutCost     int
	FortifyCost   int
	AmbushCost    int
	ChargeCost    int
	ScoutAccuracy float64 // probability a Scout yields an exact reveal

	ChargeAttackBonus     int
	FortifyBonus          int
	AmbushBonus           int
	DifficultDefenseBonus int
	MaxSupportBonus       int
	RetreatThreshold      int

	ShrinkInterval int

	DominationHexesRequired int
	DominationTurnsRequired int

	// ScoutRevealsPublicly controls whether an exact Scout reveal also sets
	// the target token's public Revealed flag. Default false: scout results
	// are private to the scouter.
	ScoutRevealsPublicly bool

	MaxTurns int
}

// DefaultConfig returns the standard parameter set.
func DefaultConfig() Config {
	return Config{
		BoardSize:  7,
		ForceCount: 5,

		StartingShih: 6,
		MaxShih:      10,

		BaseShihIncome:       1,
		ContentiousShihBonus: 2,

		VisibilityRange: 2,
		ScoutRange:      2,
		SupplyRange:     2,
		MaxSupplyHops:   2,

		ScoutCost:     2,
		FortifyCost:   2,
		AmbushCost:    3,
		ChargeCost:    2,
		ScoutAccuracy: 0.7,

		ChargeAttackBonus:     2,
		FortifyBonus:          2,
		AmbushBonus:           2,
		DifficultDefenseBonus: 1,
		MaxSupportBonus:       2,
		RetreatThreshold:      2,

		ShrinkInterval: 5,

		DominationHexesRequired: 2,
		DominationTurnsRequired: 4,

		ScoutRevealsPublicly: false,

		MaxTurns: 30,
	}
}
