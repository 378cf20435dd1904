package tasks

// ClientType identifies the game client distribution.
type ClientType string

const (
	ClientOfficial ClientType = "Official"
	ClientBilibili ClientType = "Bilibili"
	ClientTxwy     ClientType = "txwy"
	ClientYoStarEN ClientType = "YoStarEN"
	ClientYoStarJP ClientType = "YoStarJP"
	ClientYoStarKR ClientType = "YoStarKR"
)

// Server is the game server region.
type Server string

const (
	ServerCN Server = "CN"
	ServerJP Server = "JP"
	ServerKR Server = "KR"
	ServerUS Server = "US"
)

// ShopItem is an item in the credit shop.
type ShopItem int

const (
	ShopLMD ShopItem = iota
	ShopRecruitmentPermit
	ShopExpeditedPermit
	ShopCarbonStick
	ShopFurniturePart
)

var shopItemNames = map[ShopItem]string{
	ShopLMD:               "LMD",
	ShopRecruitmentPermit: "RecruitmentPermit",
	ShopExpeditedPermit:   "ExpeditedPermit",
	ShopCarbonStick:       "CarbonStick",
	ShopFurniturePart:     "FurniturePart",
}

// shopItemLabels holds the text the engine matches in the shop, per server.
var shopItemLabels = map[Server][5]string{
	ServerCN: {"龙门币", "招聘", "加急", "碳", "家具"},
	ServerJP: {"龍門幣", "採用", "", "炭素", "家具"},
	ServerUS: {"LMD", "Recruitment", "Expedited", "Carbon", "Furniture"},
	ServerKR: {"LMD", "채용 허가증", "탐색 허가증", "탄소", "가구 부품"},
}

func (i ShopItem) String() string {
	if name, ok := shopItemNames[i]; ok {
		return name
	}
	return "ShopItem(?)"
}

// Label returns the shop label of i on server. An empty label means the item
// is not sold there.
func (i ShopItem) Label(server Server) string {
	labels, ok := shopItemLabels[server]
	if !ok {
		labels = shopItemLabels[ServerCN]
	}
	if i < 0 || int(i) >= len(labels) {
		return ""
	}
	return labels[i]
}

// ParseShopItem maps a ShopItem name back to its value.
func ParseShopItem(name string) (ShopItem, bool) {
	for item, n := range shopItemNames {
		if n == name {
			return item, true
		}
	}
	return 0, false
}

// RogueLikeTheme selects the Integrated Strategies theme.
type RogueLikeTheme string

const (
	ThemePhantom RogueLikeTheme = "Phantom"
	ThemeMizuki  RogueLikeTheme = "Mizuki"
)

// RogueLikeMode selects what a run optimises for.
type RogueLikeMode int

const (
	ModeMostFloors RogueLikeMode = 0
	ModeFarmMoney  RogueLikeMode = 1
)

// Squad is the starting squad of a run.
type Squad string

const (
	SquadLeader           Squad = "指挥分队"
	SquadGathering        Squad = "集群分队"
	SquadSupport          Squad = "后勤分队"
	SquadSpearhead        Squad = "矛头分队"
	SquadTacticalAssault  Squad = "突击战术分队"
	SquadTacticalFortify  Squad = "堡垒战术分队"
	SquadTacticalRanged   Squad = "远程战术分队"
	SquadTacticalDestruct Squad = "破坏战术分队"
	SquadResearch         Squad = "研究分队"
	SquadFirstClass       Squad = "高规格分队"
	SquadMindOverMatter   Squad = "心胜于物分队"
	SquadResourceful      Squad = "物尽其用分队"
	SquadPeopleFirst      Squad = "以人为本分队"
)

// Roles is the operator recruitment strategy of a run.
type Roles string

const (
	RolesRandom    Roles = "随心所欲"
	RolesFirstMove Roles = "先手必胜"
	RolesSteady    Roles = "稳扎稳打"
	RolesBalanced  Roles = "取长补短"
)
