package tasks

import "encoding/json"

type mallParams struct {
	Shopping                  bool     `json:"shopping"`
	BuyFirst                  []string `json:"buy_first"`
	Blacklist                 []string `json:"blacklist"`
	ForceShoppingIfCreditFull bool     `json:"force_shopping_if_credit_full"`
}

// Mall collects credits and optionally shops in the credit store. Shop items
// are matched by their label on the configured server.
type Mall struct {
	shopping  bool
	buyFirst  []ShopItem
	blacklist []ShopItem
	force     bool
	server    Server
}

// NewMall returns a Mall that only collects credits.
func NewMall() Mall {
	return Mall{server: ServerCN}
}

func (m Mall) Name() string { return KindMall }

func (m Mall) MarshalJSON() ([]byte, error) {
	return json.Marshal(mallParams{
		Shopping:                  m.shopping,
		BuyFirst:                  labels(m.buyFirst, m.server),
		Blacklist:                 labels(m.blacklist, m.server),
		ForceShoppingIfCreditFull: m.force,
	})
}

func (m Mall) Start() Submitted { return freeze(m) }

func (m Mall) Shopping(enabled bool) Mall {
	m.shopping = enabled
	return m
}

// BuyFirst adds items to buy before anything else.
func (m Mall) BuyFirst(items ...ShopItem) Mall {
	m.buyFirst = append(append([]ShopItem(nil), m.buyFirst...), items...)
	return m
}

// Blacklist adds items never to buy.
func (m Mall) Blacklist(items ...ShopItem) Mall {
	m.blacklist = append(append([]ShopItem(nil), m.blacklist...), items...)
	return m
}

// ForceShoppingIfCreditFull ignores the blacklist when credits would overflow.
func (m Mall) ForceShoppingIfCreditFull(enabled bool) Mall {
	m.force = enabled
	return m
}

// Server selects which labels are sent for shop items.
func (m Mall) Server(server Server) Mall {
	m.server = server
	return m
}

func labels(items []ShopItem, server Server) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if label := item.Label(server); label != "" {
			out = append(out, label)
		}
	}
	return out
}
