package noose

// Game wraps a State with the turn-submission protocol: both players
// submit a full order batch for the turn, and only once both batches are
// in does resolution run. Neither side's orders are applied until both are
// committed, which is what makes turns simultaneous.
type Game struct {
	State   *State
	pending map[string][]Order
}

// NewGame constructs a fresh, undeployed game.
func NewGame(cfg Config, seed int64, playerA, playerB string) *Game {
	return &Game{
		State:   NewState(cfg, seed, playerA, playerB),
		pending: make(map[string][]Order),
	}
}

// Deploy forwards a player's secret power assignment to the engine.
func (g *Game) Deploy(playerID string, powers map[string]int) error {
	return Deploy(g.State, playerID, powers)
}

// SubmitOrders records playerID's order batch for the current turn. Once
// both players have submitted, the turn resolves and upkeep runs, and the
// pending batches are cleared. Returns the Resolution if this submission
// completed the turn, or nil if still waiting on the opponent.
func (g *Game) SubmitOrders(playerID string, orders []Order) (*Resolution, error) {
	if g.State.Phase != PhasePlan {
		return nil, &ContractError{Message: "orders submitted in phase " + string(g.State.Phase)}
	}
	if g.State.Players[playerID] == nil {
		return nil, &ContractError{Message: "unknown player " + playerID}
	}
	for _, o := range orders {
		if o.Player != playerID {
			return nil, &ContractError{Message: "order player does not match submitter"}
		}
	}
	g.pending[playerID] = orders

	if len(g.pending) < len(g.State.Order) {
		return nil, nil
	}

	var all []Order
	for _, id := range g.State.Order {
		all = append(all, g.pending[id]...)
	}
	g.pending = make(map[string][]Order)

	res, err := Resolve(g.State, all)
	if err != nil {
		return nil, err
	}
	Upkeep(g.State)
	return res, nil
}

// View returns playerID's fog-of-war projection of the current state.
func (g *Game) View(playerID string) *View {
	return ViewFor(g.State, playerID)
}
