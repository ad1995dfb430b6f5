package noose

// Phase is the game lifecycle stage. Transitions are
// deploy -> plan -> resolve -> upkeep -> plan -> ... until ended,
// which is terminal.
type Phase string

const (
	PhaseDeploy  Phase = "deploy"
	PhasePlan    Phase = "plan"
	PhaseResolve Phase = "resolve"
	PhaseUpkeep  Phase = "upkeep"
	PhaseEnded   Phase = "ended"
)

// Victory types recorded when a game ends. Winner is empty for draws and
// timeouts.
const (
	VictorySovereignCapture  = "sovereign_capture"
	VictoryElimination       = "elimination"
	VictoryDomination        = "domination"
	VictoryMutualDestruction = "mutual_destruction"
	VictoryTimeout           = "timeout"
)

// State is the complete, privileged game state: both players' full token
// sets (including hidden powers), the board, and bookkeeping needed to
// resolve turns and adjudicate victory. Everything a fog-of-war View hides
// lives here.
type State struct {
	ID     string
	Config Config
	Board  *Board
	Seed   int64
	Turn   int // 0 = awaiting deployment
	Phase  Phase

	Players map[string]*Player
	Order   []string // deterministic iteration order, [playerA, playerB]

	Events      []Event
	Winner      string // set when Phase == PhaseEnded; empty for draws
	VictoryType string // one of the Victory* constants once ended
	ShrinkStage int    // number of times the Noose has contracted so far

	rng *gameRand
}

// NewState builds a fresh game awaiting deployment: a generated board and
// two players whose tokens sit in opposite corner clusters with no powers
// assigned yet. Power assignment happens via Deploy.
func NewState(cfg Config, seed int64, playerA, playerB string) *State {
	s := &State{
		Config:  cfg,
		Board:   GenerateBoard(cfg.BoardSize, seed),
		Seed:    seed,
		Turn:    0,
		Phase:   PhaseDeploy,
		Players: make(map[string]*Player, 2),
		Order:   []string{playerA, playerB},
	}
	s.Players[playerA] = newPlayer(playerA, cfg.StartingShih, cfg.ForceCount)
	s.Players[playerB] = newPlayer(playerB, cfg.StartingShih, cfg.ForceCount)
	s.rng = newGameRand(seed)

	for i, id := range s.Order {
		cluster := startingCluster(cfg.BoardSize, i)
		for k, t := range s.Players[id].Tokens {
			t.Position = cluster[k%len(cluster)]
		}
	}
	return s
}

// startingCluster returns the corner cluster of starting positions for the
// first or second player in Order.
func startingCluster(side, playerIdx int) []Hex {
	if playerIdx == 0 {
		return []Hex{{0, 0}, {1, 0}, {0, 1}, {1, 1}, {2, 0}}
	}
	last := side - 1
	return []Hex{
		{last, last}, {last - 1, last}, {last, last - 1},
		{last - 1, last - 1}, {last - 2, last},
	}
}

// Finished reports whether the game has ended.
func (s *State) Finished() bool {
	return s.Phase == PhaseEnded
}

// Opponent returns the other player's id.
func (s *State) Opponent(id string) string {
	for _, p := range s.Order {
		if p != id {
			return p
		}
	}
	return ""
}

// TokenAt returns the living token occupying h, across both players, or nil.
func (s *State) TokenAt(h Hex) *Token {
	for _, id := range s.Order {
		for _, t := range s.Players[id].Tokens {
			if t.Alive && t.Position == h {
				return t
			}
		}
	}
	return nil
}

// TokenByID looks up any token (either player's) by id.
func (s *State) TokenByID(id string) *Token {
	for _, pid := range s.Order {
		if t := s.Players[pid].TokenByID(id); t != nil {
			return t
		}
	}
	return nil
}

// AllAlive returns every living token across both players.
func (s *State) AllAlive() []*Token {
	var out []*Token
	for _, id := range s.Order {
		out = append(out, s.Players[id].AliveTokens()...)
	}
	return out
}

// GroundTruth returns the hidden power of every token of the given player,
// keyed by token id. This is a harness privilege used for scoring beliefs;
// game-facing code must go through ViewFor instead.
func (s *State) GroundTruth(playerID string) map[string]int {
	out := make(map[string]int)
	p := s.Players[playerID]
	if p == nil {
		return out
	}
	for _, t := range p.Tokens {
		out[t.ID] = t.Power
	}
	return out
}

// Clone performs a deep copy: boards, players, tokens, and events are all
// independently allocated, so mutating the clone never affects the
// original. Used by agents that need to simulate forward without
// disturbing authoritative state.
func (s *State) Clone() *State {
	out := &State{
		ID:          s.ID,
		Config:      s.Config,
		Seed:        s.Seed,
		Turn:        s.Turn,
		Phase:       s.Phase,
		Order:       append([]string(nil), s.Order...),
		Winner:      s.Winner,
		VictoryType: s.VictoryType,
		ShrinkStage: s.ShrinkStage,
	}
	out.Board = s.Board.clone()
	out.Players = make(map[string]*Player, len(s.Players))
	for id, p := range s.Players {
		out.Players[id] = p.clone()
	}
	out.Events = append([]Event(nil), s.Events...)
	// A clone used for simulation must not advance the original's rng, so it
	// gets an independently-seeded stream derived from the current draw.
	out.rng = newGameRand(s.rng.Int63())
	return out
}

func (b *Board) clone() *Board {
	out := &Board{Side: b.Side, Hexes: make(map[Hex]*MapHex, len(b.Hexes))}
	for h, mh := range b.Hexes {
		cp := *mh
		out.Hexes[h] = &cp
	}
	return out
}

func (p *Player) clone() *Player {
	out := &Player{
		ID:               p.ID,
		Shih:             p.Shih,
		Deployed:         p.Deployed,
		DominationStreak: p.DominationStreak,
		KnownEnemyPowers: make(map[string]PowerKnowledge, len(p.KnownEnemyPowers)),
	}
	for id, k := range p.KnownEnemyPowers {
		kc := k
		kc.Band = append([]int(nil), k.Band...)
		out.KnownEnemyPowers[id] = kc
	}
	out.Tokens = make([]*Token, len(p.Tokens))
	for i, t := range p.Tokens {
		tc := *t
		out.Tokens[i] = &tc
	}
	return out
}
