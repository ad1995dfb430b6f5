package noose

import "fmt"

// OrderType is one of the five actions a token can be given for a turn.
type OrderType string

const (
	OrderMove    OrderType = "move"
	OrderCharge  OrderType = "charge"
	OrderScout   OrderType = "scout"
	OrderFortify OrderType = "fortify"
	OrderAmbush  OrderType = "ambush"
)

// Order is a single token's instruction for one turn. Target is only
// meaningful for Move and Charge; ScoutTargetID names the enemy token a
// Scout order observes. Fortify and Ambush act in place.
type Order struct {
	Player        string
	TokenID       string
	Type          OrderType
	Target        Hex
	ScoutTargetID string
}

// Describe renders a short human-readable summary, used in error messages
// and in agent reports' order lists.
func (o Order) Describe() string {
	switch o.Type {
	case OrderMove, OrderCharge:
		return fmt.Sprintf("%s %s -> %s", o.Type, o.TokenID, o.Target)
	case OrderScout:
		return fmt.Sprintf("%s %s -> %s", o.Type, o.TokenID, o.ScoutTargetID)
	default:
		return fmt.Sprintf("%s %s", o.Type, o.TokenID)
	}
}

// orderCost returns the shih price of an order under cfg.
func orderCost(cfg Config, t OrderType) int {
	switch t {
	case OrderScout:
		return cfg.ScoutCost
	case OrderFortify:
		return cfg.FortifyCost
	case OrderAmbush:
		return cfg.AmbushCost
	case OrderCharge:
		return cfg.ChargeCost
	default:
		return 0 // Move is free
	}
}

// Validate checks a single order for in-band legality against s. It does
// not check shih affordability: costs are paid sequentially during
// resolution, since several orders by the same player draw from one pool.
// Destination conflicts and swaps are arbitrated later, in Resolve.
//
// A nil return means the order is individually well-formed. ContractError
// is reserved for caller bugs (unknown player, token not owned by the
// submitter); Resolve checks for those itself and returns them as errors.
func Validate(o Order, s *State) error {
	p := s.Players[o.Player]
	if p == nil {
		return &ContractError{Message: "unknown player " + o.Player}
	}
	t := p.TokenByID(o.TokenID)
	if t == nil {
		return &ContractError{Message: "token " + o.TokenID + " not owned by " + o.Player}
	}
	if !t.Alive {
		return &ValidationError{o, "token is not alive"}
	}

	switch o.Type {
	case OrderMove:
		if err := validateStep(s, o, t.Position, o.Target, 1); err != nil {
			return err
		}
	case OrderCharge:
		dist := t.Position.Distance(o.Target)
		if dist < 1 || dist > 2 {
			return &ValidationError{o, "charge target must be within 2 hexes"}
		}
		if err := validateStep(s, o, t.Position, o.Target, 2); err != nil {
			return err
		}
		if dist == 2 && !hasChargeLane(s, t.Position, o.Target) {
			return &ValidationError{o, "no passable lane to charge target"}
		}
	case OrderScout:
		enemy := s.TokenByID(o.ScoutTargetID)
		if enemy == nil || enemy.Owner == o.Player || !enemy.Alive {
			return &ValidationError{o, "scout target is not a living enemy token"}
		}
		if t.Position.Distance(enemy.Position) > s.Config.ScoutRange {
			return &ValidationError{o, "scout target is beyond scout range"}
		}
		if !scoutCanSee(s, p, enemy) {
			return &ValidationError{o, "scout target is neither visible nor previously known"}
		}
	case OrderFortify, OrderAmbush:
		// No target; always legal to attempt in place.
	default:
		return &ValidationError{o, "unknown order type"}
	}

	if requiresSupply(o.Type) && !IsSupplied(s, t) {
		return &SupplyError{TokenID: t.ID}
	}
	return nil
}

func requiresSupply(t OrderType) bool {
	return t == OrderCharge || t == OrderScout || t == OrderFortify || t == OrderAmbush
}

func validateStep(s *State, o Order, from, to Hex, maxDist int) error {
	if !s.Board.InBounds(to) {
		return &ValidationError{o, "target is off the board"}
	}
	if d := from.Distance(to); d < 1 || d > maxDist {
		return &ValidationError{o, "target is out of reach"}
	}
	if mh := s.Board.Get(to); mh != nil && mh.Terrain == Scorched {
		return &ValidationError{o, "cannot move into scorched terrain"}
	}
	return nil
}

// hasChargeLane reports whether a 2-hex charge has at least one valid
// intermediate: a hex adjacent to both endpoints, in bounds, not Scorched.
func hasChargeLane(s *State, from, to Hex) bool {
	for _, mid := range from.Neighbors() {
		if !mid.IsAdjacent(to) {
			continue
		}
		mh := s.Board.Get(mid)
		if mh != nil && mh.Terrain != Scorched {
			return true
		}
	}
	return false
}

// scoutCanSee reports whether p may legally target enemy with a Scout:
// the token is inside p's current visibility, or p already holds knowledge
// of it from an earlier scout or combat reveal.
func scoutCanSee(s *State, p *Player, enemy *Token) bool {
	if enemy.Revealed {
		return true
	}
	if _, ok := p.KnownEnemyPowers[enemy.ID]; ok {
		return true
	}
	for _, own := range p.AliveTokens() {
		if own.Position.Distance(enemy.Position) <= s.Config.VisibilityRange {
			return true
		}
	}
	return false
}
