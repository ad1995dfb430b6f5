// Package render turns a fog-of-war view into deterministic text. Four
// formats carry identical information content: for every view, every own
// and visible-enemy token id, the turn number, and the shih value appear
// literally in the output, whichever format is chosen. Format
// invariance across these is a validity check for the benchmark: if
// reasoning metrics shift between formats, the prompt is the confound.
package render

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/covertfive/noose/pkg/noose"
)

// Func renders one view under one configuration.
type Func func(v *noose.View, cfg noose.Config) string

// Formats is the renderer registry, keyed by format name.
var Formats = map[string]Func{
	"narrative": Narrative,
	"tabular":   Tabular,
	"ascii":     ASCIIMap,
	"json":      JSON,
}

// FormatNames returns the registry's keys in stable order.
func FormatNames() []string {
	names := make([]string, 0, len(Formats))
	for name := range Formats {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var terrainChar = map[noose.Terrain]string{
	noose.Open:        ".",
	noose.Difficult:   "#",
	noose.Contentious: "*",
	noose.Scorched:    "X",
}

// RulesReference renders a concise rules summary parameterized by the
// configuration, independent of any per-turn state.
func RulesReference(cfg noose.Config) string {
	scoutPct := int(cfg.ScoutAccuracy * 100)
	scoutPolicy := "private to the scouter"
	if cfg.ScoutRevealsPublicly {
		scoutPolicy = "publicly revealed"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "RULES:\n")
	fmt.Fprintf(&b, "- %dx%d hex grid. Two players, %d forces each.\n", cfg.BoardSize, cfg.BoardSize, cfg.ForceCount)
	fmt.Fprintf(&b, "- Each player assigns hidden power values 1-%d to forces (each used once).\n", cfg.ForceCount)
	fmt.Fprintf(&b, "- Power 1 = Sovereign. Lose your Sovereign, lose the game.\n")
	fmt.Fprintf(&b, "- Victory: capture the enemy Sovereign, OR control %d+ Contentious hexes for %d consecutive turns (domination), OR eliminate all enemy forces.\n",
		cfg.DominationHexesRequired, cfg.DominationTurnsRequired)
	fmt.Fprintf(&b, "\nORDERS (one per force per turn):\n")
	fmt.Fprintf(&b, "- Move (free): step to an adjacent hex.\n")
	fmt.Fprintf(&b, "- Charge (%d Shih): move 1-2 hexes toward an enemy, +%d attack if combat occurs. Requires supply.\n", cfg.ChargeCost, cfg.ChargeAttackBonus)
	fmt.Fprintf(&b, "- Scout (%d Shih): stay put, observe one enemy within %d hexes (%d%% exact, otherwise a power band). Results are %s. Requires supply.\n",
		cfg.ScoutCost, cfg.ScoutRange, scoutPct, scoutPolicy)
	fmt.Fprintf(&b, "- Fortify (%d Shih): stay put, +%d defense this turn. Requires supply.\n", cfg.FortifyCost, cfg.FortifyBonus)
	fmt.Fprintf(&b, "- Ambush (%d Shih): stay put, +%d defense when attacked, hidden from the enemy this turn. Requires supply.\n", cfg.AmbushCost, cfg.AmbushBonus)
	fmt.Fprintf(&b, "\nSUPPLY: a force has supply if it can chain back to your Sovereign through friendly forces within %d hexes per link (max %d hops). Forces without supply can only Move.\n",
		cfg.SupplyRange, cfg.MaxSupplyHops)
	fmt.Fprintf(&b, "\nCOMBAT: effective power = base power + bonuses + support (up to +%d from adjacent friendlies) + random(-2..+2). Higher wins. Gap <= %d: loser retreats. Gap > %d: loser eliminated. Tie: both retreat. Both powers are revealed permanently after combat.\n",
		cfg.MaxSupportBonus, cfg.RetreatThreshold, cfg.RetreatThreshold)
	fmt.Fprintf(&b, "\nTERRAIN: Open (no effect), Difficult (+%d defense), Contentious (objective, +%d Shih income when held), Scorched (impassable, forces die).\n",
		cfg.DifficultDefenseBonus, cfg.ContentiousShihBonus)
	fmt.Fprintf(&b, "\nVISIBILITY: you see enemies within %d hexes of your forces. Beyond that is fog of war.\n", cfg.VisibilityRange)
	fmt.Fprintf(&b, "\nTHE NOOSE: every %d turns the outermost ring becomes Scorched. Forces caught there die.\n", cfg.ShrinkInterval)
	fmt.Fprintf(&b, "\nRESOURCES: base income %d Shih per turn + %d per Contentious hex held. Maximum %d Shih.",
		cfg.BaseShihIncome, cfg.ContentiousShihBonus, cfg.MaxShih)
	return b.String()
}

// sortedOwn returns the view's own tokens ordered by id.
func sortedOwn(v *noose.View) []noose.TokenView {
	out := append([]noose.TokenView(nil), v.OwnTokens...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func sortedEnemies(v *noose.View) []noose.TokenView {
	out := append([]noose.TokenView(nil), v.EnemyTokens...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func enemyPowerLabel(tv noose.TokenView) (string, string) {
	switch {
	case tv.Source == "combat", tv.Source == "scouted" && tv.Power > 0:
		return fmt.Sprintf("%d", tv.Power), tv.Source
	case tv.Known != nil && !tv.Known.Exact:
		parts := make([]string, len(tv.Known.Band))
		for i, p := range tv.Known.Band {
			parts[i] = fmt.Sprintf("%d", p)
		}
		return "one of " + strings.Join(parts, "/"), "scouted"
	default:
		return "unknown", ""
	}
}

func terrainGroups(v *noose.View) (contentious, difficult, scorched []noose.Hex) {
	b := v.Board
	for r := 0; r < b.Side; r++ {
		for q := 0; q < b.Side; q++ {
			mh := b.Get(noose.Hex{Q: q, R: r})
			if mh == nil {
				continue
			}
			switch mh.Terrain {
			case noose.Contentious:
				contentious = append(contentious, mh.Coord)
			case noose.Difficult:
				difficult = append(difficult, mh.Coord)
			case noose.Scorched:
				scorched = append(scorched, mh.Coord)
			}
		}
	}
	return
}

func hexList(hs []noose.Hex) string {
	parts := make([]string, len(hs))
	for i, h := range hs {
		parts[i] = h.String()
	}
	return strings.Join(parts, " ")
}

// Narrative renders the view as short declarative sentences.
func Narrative(v *noose.View, cfg noose.Config) string {
	var b strings.Builder

	fmt.Fprintf(&b, "It is turn %d. You have %d Shih. The enemy has %d Shih.\n", v.Turn, v.Shih, v.OpponentShih)
	fmt.Fprintf(&b, "Domination progress: you have %d, the enemy has %d consecutive turns (need %d).\n",
		v.DominationTurns[v.Player], v.DominationTurns[v.Opponent], cfg.DominationTurnsRequired)
	if v.ShrinkStage > 0 {
		fmt.Fprintf(&b, "The Noose has tightened %d time(s).\n", v.ShrinkStage)
	}

	own := sortedOwn(v)
	fmt.Fprintf(&b, "\nYou have %d force(s) alive:\n", len(own))
	for _, tv := range own {
		sov := ""
		if tv.Power == 1 {
			sov = " (your Sovereign)"
		}
		supply := "has supply"
		if !tv.HasSupply {
			supply = "NO SUPPLY"
		}
		rev := ""
		if tv.Revealed {
			rev = ", revealed to the enemy"
		}
		fmt.Fprintf(&b, "  %s at %s, power %d%s, %s%s.\n", tv.ID, tv.Position, tv.Power, sov, supply, rev)
	}

	enemies := sortedEnemies(v)
	if len(enemies) > 0 {
		fmt.Fprintf(&b, "\nYou can see %d enemy force(s):\n", len(enemies))
		for _, tv := range enemies {
			label, source := enemyPowerLabel(tv)
			if source != "" {
				fmt.Fprintf(&b, "  %s at %s, power %s (%s).\n", tv.ID, tv.Position, label, source)
			} else {
				fmt.Fprintf(&b, "  %s at %s, power unknown.\n", tv.ID, tv.Position)
			}
		}
	} else {
		fmt.Fprintf(&b, "\nNo enemy forces are currently visible.\n")
	}

	contentious, difficult, scorched := terrainGroups(v)
	fmt.Fprintf(&b, "\nContentious hexes (objectives): %s", hexList(contentious))
	if len(difficult) > 0 {
		fmt.Fprintf(&b, "\nDifficult terrain: %s", hexList(difficult))
	}
	if len(scorched) > 0 {
		fmt.Fprintf(&b, "\nScorched hexes (impassable): %s", hexList(scorched))
	}
	return b.String()
}

// Tabular renders the view as fixed-width tables.
func Tabular(v *noose.View, cfg noose.Config) string {
	var b strings.Builder
	fmt.Fprintf(&b, "TURN %d | Your Shih: %d | Enemy Shih: %d | Domination: You %d/%d, Enemy %d/%d | Shrink stage: %d\n",
		v.Turn, v.Shih, v.OpponentShih,
		v.DominationTurns[v.Player], cfg.DominationTurnsRequired,
		v.DominationTurns[v.Opponent], cfg.DominationTurnsRequired,
		v.ShrinkStage)

	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintf(&b, "\nYOUR FORCES:\n")
	fmt.Fprintln(tw, "ID\tPos\tPower\tSupply\tStatus")
	for _, tv := range sortedOwn(v) {
		var status []string
		if tv.Power == 1 {
			status = append(status, "Sovereign")
		}
		if tv.Revealed {
			status = append(status, "Revealed")
		}
		if tv.Fortified {
			status = append(status, "Fortified")
		}
		supply := "Yes"
		if !tv.HasSupply {
			supply = "NO"
		}
		label := "-"
		if len(status) > 0 {
			label = strings.Join(status, ", ")
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", tv.ID, tv.Position, tv.Power, supply, label)
	}
	tw.Flush()

	fmt.Fprintf(&b, "\nVISIBLE ENEMIES:\n")
	enemies := sortedEnemies(v)
	if len(enemies) == 0 {
		fmt.Fprintf(&b, "  (none visible)\n")
	} else {
		tw = tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tPos\tPower\tSource")
		for _, tv := range enemies {
			label, source := enemyPowerLabel(tv)
			if source == "" {
				source = "-"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", tv.ID, tv.Position, label, source)
		}
		tw.Flush()
	}

	contentious, _, _ := terrainGroups(v)
	fmt.Fprintf(&b, "\nCONTENTIOUS HEXES: %s\n", hexList(contentious))
	return b.String()
}

// ASCIIMap renders the view as a character grid plus legend and force
// listing: terrain glyphs, digits for own powers, 'e' for enemies of
// unknown power.
func ASCIIMap(v *noose.View, cfg noose.Config) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Turn %d | Shih: %d (enemy: %d) | Shrink: %d\n", v.Turn, v.Shih, v.OpponentShih, v.ShrinkStage)
	fmt.Fprintf(&b, "Domination: You %d/%d, Enemy %d/%d\n",
		v.DominationTurns[v.Player], cfg.DominationTurnsRequired,
		v.DominationTurns[v.Opponent], cfg.DominationTurnsRequired)

	display := make(map[noose.Hex]string)
	for r := 0; r < v.Board.Side; r++ {
		for q := 0; q < v.Board.Side; q++ {
			h := noose.Hex{Q: q, R: r}
			if mh := v.Board.Get(h); mh != nil {
				display[h] = terrainChar[mh.Terrain]
			}
		}
	}
	for _, tv := range v.OwnTokens {
		display[tv.Position] = fmt.Sprintf("%d", tv.Power)
	}
	for _, tv := range v.EnemyTokens {
		if label, source := enemyPowerLabel(tv); source != "" && tv.Power > 0 {
			display[tv.Position] = label
		} else {
			display[tv.Position] = "e"
		}
	}

	fmt.Fprintf(&b, "\n    q: ")
	for q := 0; q < v.Board.Side; q++ {
		fmt.Fprintf(&b, "%d  ", q)
	}
	fmt.Fprintf(&b, "\n  r  %s\n", strings.Repeat("-", v.Board.Side*3))
	for r := 0; r < v.Board.Side; r++ {
		offset := "  "
		if r%2 == 1 {
			offset = " "
		}
		fmt.Fprintf(&b, "  %d %s", r, offset)
		for q := 0; q < v.Board.Side; q++ {
			cell := display[noose.Hex{Q: q, R: r}]
			if cell == "" {
				cell = " "
			}
			fmt.Fprintf(&b, "%s  ", cell)
		}
		fmt.Fprintf(&b, "\n")
	}
	fmt.Fprintf(&b, "\nLegend: . Open  # Difficult  * Contentious  X Scorched\n")
	fmt.Fprintf(&b, "        1-5 = your force power  e = enemy (unknown power)\n")

	fmt.Fprintf(&b, "\nYour forces:\n")
	for _, tv := range sortedOwn(v) {
		sov := ""
		if tv.Power == 1 {
			sov = " [SOVEREIGN]"
		}
		supply := "[supplied]"
		if !tv.HasSupply {
			supply = "[NO SUPPLY]"
		}
		fmt.Fprintf(&b, "  %s pow=%d pos=%s %s%s\n", tv.ID, tv.Power, tv.Position, supply, sov)
	}
	if enemies := sortedEnemies(v); len(enemies) > 0 {
		fmt.Fprintf(&b, "Visible enemies:\n")
		for _, tv := range enemies {
			label, source := enemyPowerLabel(tv)
			if source == "" {
				label = "?"
			}
			src := ""
			if source != "" {
				src = fmt.Sprintf(" (%s)", source)
			}
			fmt.Fprintf(&b, "  %s pow=%s pos=%s%s\n", tv.ID, label, tv.Position, src)
		}
	}
	return b.String()
}

// viewDoc is the JSON shape of a rendered view: the board flattened to a
// hex list so coordinates survive serialization.
type viewDoc struct {
	Turn            int            `json:"turn"`
	Phase           string         `json:"phase"`
	YourShih        int            `json:"your_shih"`
	EnemyShih       int            `json:"enemy_shih"`
	ShrinkStage     int            `json:"shrink_stage"`
	DominationTurns map[string]int `json:"domination_turns"`
	YourForces      []tokenDoc     `json:"your_forces"`
	EnemyForces     []tokenDoc     `json:"enemy_forces"`
	Map             []hexDoc       `json:"map"`
	Winner          string         `json:"winner,omitempty"`
	VictoryType     string         `json:"victory_type,omitempty"`
}

type tokenDoc struct {
	ID        string `json:"id"`
	Q         int    `json:"q"`
	R         int    `json:"r"`
	Power     *int   `json:"power"`
	Band      []int  `json:"power_band,omitempty"`
	Source    string `json:"source,omitempty"`
	HasSupply *bool  `json:"has_supply,omitempty"`
	Fortified *bool  `json:"fortified,omitempty"`
	Revealed  bool   `json:"revealed,omitempty"`
}

type hexDoc struct {
	Q       int    `json:"q"`
	R       int    `json:"r"`
	Terrain string `json:"terrain"`
}

// JSON renders the view as indented structured text.
func JSON(v *noose.View, cfg noose.Config) string {
	doc := viewDoc{
		Turn:            v.Turn,
		Phase:           string(v.Phase),
		YourShih:        v.Shih,
		EnemyShih:       v.OpponentShih,
		ShrinkStage:     v.ShrinkStage,
		DominationTurns: v.DominationTurns,
		Winner:          v.Winner,
		VictoryType:     v.VictoryType,
	}
	for _, tv := range sortedOwn(v) {
		power := tv.Power
		supply := tv.HasSupply
		fortified := tv.Fortified
		doc.YourForces = append(doc.YourForces, tokenDoc{
			ID: tv.ID, Q: tv.Position.Q, R: tv.Position.R,
			Power: &power, HasSupply: &supply, Fortified: &fortified, Revealed: tv.Revealed,
		})
	}
	for _, tv := range sortedEnemies(v) {
		td := tokenDoc{ID: tv.ID, Q: tv.Position.Q, R: tv.Position.R, Revealed: tv.Revealed}
		if tv.Power > 0 {
			power := tv.Power
			td.Power = &power
			td.Source = tv.Source
		} else if tv.Known != nil && !tv.Known.Exact {
			td.Band = tv.Known.Band
			td.Source = "scouted"
		}
		doc.EnemyForces = append(doc.EnemyForces, td)
	}
	for r := 0; r < v.Board.Side; r++ {
		for q := 0; q < v.Board.Side; q++ {
			if mh := v.Board.Get(noose.Hex{Q: q, R: r}); mh != nil {
				doc.Map = append(doc.Map, hexDoc{Q: q, R: r, Terrain: mh.Terrain.String()})
			}
		}
	}
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return ""
	}
	return string(out)
}
