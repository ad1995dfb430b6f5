package noose

import "strconv"

// Deploy secretly assigns hidden powers to a player's tokens. powers must
// map exactly that player's token ids to the values 1..ForceCount, each
// used once. Once both players have deployed, the phase advances to plan
// and the turn counter is set to 1.
func Deploy(s *State, playerID string, powers map[string]int) error {
	p := s.Players[playerID]
	if p == nil {
		return &ContractError{Message: "unknown player " + playerID}
	}
	if s.Phase != PhaseDeploy {
		return &ContractError{Message: "deployment attempted outside deploy phase"}
	}
	if p.Deployed {
		return &BadDeploymentError{Player: playerID, Message: "already deployed"}
	}
	if len(powers) != len(p.Tokens) {
		return &BadDeploymentError{Player: playerID, Message: "must assign a power to every token"}
	}

	seen := make(map[int]bool, len(powers))
	for id, pow := range powers {
		if p.TokenByID(id) == nil {
			return &BadDeploymentError{Player: playerID, Message: "token " + id + " does not belong to player"}
		}
		if pow < 1 || pow > len(p.Tokens) || seen[pow] {
			return &BadDeploymentError{Player: playerID, Message: "powers must be a permutation of 1.." + strconv.Itoa(len(p.Tokens))}
		}
		seen[pow] = true
	}

	for id, pow := range powers {
		p.TokenByID(id).Power = pow
	}
	p.Deployed = true

	if s.BothDeployed() {
		s.Phase = PhasePlan
		s.Turn = 1
	}
	return nil
}

// BothDeployed reports whether both players have completed deployment.
func (s *State) BothDeployed() bool {
	for _, id := range s.Order {
		if !s.Players[id].Deployed {
			return false
		}
	}
	return true
}
