package tasks

import "encoding/json"

type startUpParams struct {
	ClientType       ClientType `json:"client_type,omitempty"`
	StartGameEnabled bool       `json:"start_game_enabled"`
}

// StartUp wakes the game and enters the main screen.
type StartUp struct {
	p startUpParams
}

func NewStartUp() StartUp { return StartUp{} }

func (s StartUp) Name() string { return KindStartUp }

func (s StartUp) MarshalJSON() ([]byte, error) { return json.Marshal(s.p) }

func (s StartUp) Start() Submitted { return freeze(s) }

func (s StartUp) ClientType(client ClientType) StartUp {
	s.p.ClientType = client
	return s
}

// StartGame launches the client when it is not running. Requires ClientType.
func (s StartUp) StartGame(enabled bool) StartUp {
	s.p.StartGameEnabled = enabled
	return s
}

// Award collects daily and weekly mission rewards. It has no parameters.
type Award struct{}

func NewAward() Award { return Award{} }

func (Award) Name() string { return KindAward }

func (Award) MarshalJSON() ([]byte, error) { return []byte("{}"), nil }

func (a Award) Start() Submitted { return freeze(a) }

// CloseDown closes the game client. It has no parameters.
type CloseDown struct{}

func NewCloseDown() CloseDown { return CloseDown{} }

func (CloseDown) Name() string { return KindCloseDown }

func (CloseDown) MarshalJSON() ([]byte, error) { return []byte("{}"), nil }

func (c CloseDown) Start() Submitted { return freeze(c) }
