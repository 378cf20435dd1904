package tasks

import (
	"encoding/json"
	"maps"
)

type fightParams struct {
	Stage            string         `json:"stage,omitempty"`
	Medicine         int            `json:"medicine,omitempty"`
	ExpiringMedicine int            `json:"expiring_medicine,omitempty"`
	Stone            int            `json:"stone,omitempty"`
	Times            int            `json:"times,omitempty"`
	Drops            map[string]int `json:"drop,omitempty"`
	ReportToPenguin  bool           `json:"report_to_penguin"`
	PenguinID        string         `json:"penguin_id,omitempty"`
	Server           Server         `json:"server"`
	ClientType       ClientType     `json:"client_type,omitempty"`
	DrGrandet        bool           `json:"DrGrandet"`
}

// Fight farms a stage. Without a stage the engine fights the current or last
// played one.
type Fight struct {
	p fightParams
}

// NewFight returns a Fight on the CN server.
func NewFight() Fight {
	return Fight{p: fightParams{Server: ServerCN}}
}

func (f Fight) Name() string { return KindFight }

func (f Fight) MarshalJSON() ([]byte, error) { return json.Marshal(f.p) }

func (f Fight) Start() Submitted { return freeze(f) }

// Stage sets the stage code, for example "1-7" or "CE-6".
func (f Fight) Stage(stage string) Fight {
	f.p.Stage = stage
	return f
}

// Medicine sets how many sanity potions may be used.
func (f Fight) Medicine(n int) Fight {
	f.p.Medicine = n
	return f
}

// ExpiringMedicine sets how many soon-to-expire potions may be used.
func (f Fight) ExpiringMedicine(n int) Fight {
	f.p.ExpiringMedicine = n
	return f
}

// Stone sets how many originium may be spent on sanity.
func (f Fight) Stone(n int) Fight {
	f.p.Stone = n
	return f
}

// Times caps the number of fights.
func (f Fight) Times(n int) Fight {
	f.p.Times = n
	return f
}

// Drop stops fighting once count of itemID dropped. Drops for different items
// accumulate.
func (f Fight) Drop(itemID string, count int) Fight {
	drops := make(map[string]int, len(f.p.Drops)+1)
	maps.Copy(drops, f.p.Drops)
	drops[itemID] = count
	f.p.Drops = drops
	return f
}

// Drops replaces all drop targets.
func (f Fight) Drops(drops map[string]int) Fight {
	f.p.Drops = maps.Clone(drops)
	return f
}

// ReportToPenguin uploads drops to Penguin Statistics.
func (f Fight) ReportToPenguin(enabled bool) Fight {
	f.p.ReportToPenguin = enabled
	return f
}

func (f Fight) PenguinID(id string) Fight {
	f.p.PenguinID = id
	return f
}

func (f Fight) Server(server Server) Fight {
	f.p.Server = server
	return f
}

func (f Fight) ClientType(client ClientType) Fight {
	f.p.ClientType = client
	return f
}

// DrGrandet waits for a sanity point to be restored before using a potion.
func (f Fight) DrGrandet(enabled bool) Fight {
	f.p.DrGrandet = enabled
	return f
}
