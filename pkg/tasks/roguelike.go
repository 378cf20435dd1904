package tasks

import "encoding/json"

type rogueLikeParams struct {
	Theme                  RogueLikeTheme `json:"theme"`
	Mode                   RogueLikeMode  `json:"mode"`
	StartsCount            int            `json:"starts_count,omitempty"`
	InvestmentEnabled      bool           `json:"investment_enabled"`
	InvestmentCount        int            `json:"investment_count,omitempty"`
	StopWhenInvestmentFull bool           `json:"stop_when_investment_full"`
	Squad                  Squad          `json:"squad,omitempty"`
	Roles                  Roles          `json:"roles,omitempty"`
	CoreChar               string         `json:"core_char,omitempty"`
	UseSupport             bool           `json:"use_support"`
	UseNonfriendSupport    bool           `json:"use_nonfriend_support"`
	RefreshTraderWithDice  bool           `json:"refresh_trader_with_dice"`
}

// RogueLike runs Integrated Strategies.
type RogueLike struct {
	p rogueLikeParams
}

// NewRogueLike returns a Phantom run that invests and starts with the leader
// squad and a balanced recruitment strategy.
func NewRogueLike() RogueLike {
	return RogueLike{p: rogueLikeParams{
		Theme:             ThemePhantom,
		Mode:              ModeMostFloors,
		InvestmentEnabled: true,
		Squad:             SquadLeader,
		Roles:             RolesBalanced,
	}}
}

func (r RogueLike) Name() string { return KindRogueLike }

func (r RogueLike) MarshalJSON() ([]byte, error) { return json.Marshal(r.p) }

func (r RogueLike) Start() Submitted { return freeze(r) }

func (r RogueLike) Theme(theme RogueLikeTheme) RogueLike {
	r.p.Theme = theme
	return r
}

func (r RogueLike) Mode(mode RogueLikeMode) RogueLike {
	r.p.Mode = mode
	return r
}

// StartsCount caps the number of runs.
func (r RogueLike) StartsCount(n int) RogueLike {
	r.p.StartsCount = n
	return r
}

// Investment enables investing and caps it at n when n is positive.
func (r RogueLike) Investment(enabled bool, n int) RogueLike {
	r.p.InvestmentEnabled = enabled
	r.p.InvestmentCount = n
	return r
}

func (r RogueLike) StopWhenInvestmentFull(enabled bool) RogueLike {
	r.p.StopWhenInvestmentFull = enabled
	return r
}

func (r RogueLike) Squad(squad Squad) RogueLike {
	r.p.Squad = squad
	return r
}

func (r RogueLike) Roles(roles Roles) RogueLike {
	r.p.Roles = roles
	return r
}

// CoreChar sets the operator recruited first.
func (r RogueLike) CoreChar(name string) RogueLike {
	r.p.CoreChar = name
	return r
}

// Support borrows a support operator, optionally from non-friends.
func (r RogueLike) Support(enabled, nonFriend bool) RogueLike {
	r.p.UseSupport = enabled
	r.p.UseNonfriendSupport = nonFriend
	return r
}

func (r RogueLike) RefreshTraderWithDice(enabled bool) RogueLike {
	r.p.RefreshTraderWithDice = enabled
	return r
}
