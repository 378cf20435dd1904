package tasks

import (
	"encoding/json"
	"maps"
	"slices"
	"strconv"
)

type recruitParams struct {
	Refresh         bool           `json:"refresh"`
	Select          []int          `json:"select"`
	Confirm         []int          `json:"confirm"`
	Times           int            `json:"times,omitempty"`
	SetTime         bool           `json:"set_time"`
	Expedite        bool           `json:"expedite"`
	ExpediteTimes   int            `json:"expedite_times,omitempty"`
	SkipRobot       bool           `json:"skip_robot"`
	RecruitmentTime map[string]int `json:"recruitment_time"`
	ReportToPenguin bool           `json:"report_to_penguin"`
	PenguinID       string         `json:"penguin_id,omitempty"`
	ReportToYituliu bool           `json:"report_to_yituliu"`
	YituliuID       string         `json:"yituliu_id,omitempty"`
	Server          Server         `json:"server"`
}

// Recruit runs the recruitment slots.
type Recruit struct {
	p recruitParams
}

// NewRecruit returns a Recruit that selects levels 3 to 5, confirms 3 to 6,
// sets the timer to 9 hours and skips robot tags.
func NewRecruit() Recruit {
	return Recruit{p: recruitParams{
		Select:          []int{3, 4, 5},
		Confirm:         []int{3, 5, 4, 6},
		SetTime:         true,
		SkipRobot:       true,
		RecruitmentTime: map[string]int{"3": 540, "4": 540, "5": 540, "6": 540},
		Server:          ServerCN,
	}}
}

func (r Recruit) Name() string { return KindRecruit }

func (r Recruit) MarshalJSON() ([]byte, error) { return json.Marshal(r.p) }

func (r Recruit) Start() Submitted { return freeze(r) }

// Refresh refreshes three-star tag sets.
func (r Recruit) Refresh(enabled bool) Recruit {
	r.p.Refresh = enabled
	return r
}

// Select sets the tag levels to pick.
func (r Recruit) Select(levels ...int) Recruit {
	r.p.Select = slices.Clone(levels)
	return r
}

// Confirm sets the tag levels to confirm.
func (r Recruit) Confirm(levels ...int) Recruit {
	r.p.Confirm = slices.Clone(levels)
	return r
}

func (r Recruit) Times(n int) Recruit {
	r.p.Times = n
	return r
}

func (r Recruit) SetTime(enabled bool) Recruit {
	r.p.SetTime = enabled
	return r
}

// Expedite uses expedited plans, at most n times when n is positive.
func (r Recruit) Expedite(enabled bool, n int) Recruit {
	r.p.Expedite = enabled
	r.p.ExpediteTimes = n
	return r
}

func (r Recruit) SkipRobot(enabled bool) Recruit {
	r.p.SkipRobot = enabled
	return r
}

// RecruitmentTime sets the timer in minutes for one tag level.
func (r Recruit) RecruitmentTime(level, minutes int) Recruit {
	times := maps.Clone(r.p.RecruitmentTime)
	if times == nil {
		times = make(map[string]int, 1)
	}
	times[strconv.Itoa(level)] = minutes
	r.p.RecruitmentTime = times
	return r
}

func (r Recruit) ReportToPenguin(enabled bool, penguinID string) Recruit {
	r.p.ReportToPenguin = enabled
	r.p.PenguinID = penguinID
	return r
}

func (r Recruit) ReportToYituliu(enabled bool, yituliuID string) Recruit {
	r.p.ReportToYituliu = enabled
	r.p.YituliuID = yituliuID
	return r
}

func (r Recruit) Server(server Server) Recruit {
	r.p.Server = server
	return r
}
