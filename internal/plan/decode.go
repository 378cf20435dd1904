package plan

import (
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/foxwhite25/maabridge/pkg/tasks"
)

type decoder func(*yaml.Node) (tasks.Configurable, error)

var decoders = map[string]decoder{
	"startup":   decodeStartUp,
	"fight":     decodeFight,
	"recruit":   decodeRecruit,
	"mall":      decodeMall,
	"roguelike": decodeRogueLike,
	"award":     decodeAward,
	"closedown": decodeCloseDown,
}

var (
	servers     = []tasks.Server{tasks.ServerCN, tasks.ServerJP, tasks.ServerKR, tasks.ServerUS}
	clientTypes = []tasks.ClientType{
		tasks.ClientOfficial, tasks.ClientBilibili, tasks.ClientTxwy,
		tasks.ClientYoStarEN, tasks.ClientYoStarJP, tasks.ClientYoStarKR,
	}
	themes = []tasks.RogueLikeTheme{tasks.ThemePhantom, tasks.ThemeMizuki}
	modes  = []tasks.RogueLikeMode{tasks.ModeMostFloors, tasks.ModeFarmMoney}
)

func oneOf[T comparable](field string, v T, allowed []T) error {
	if slices.Contains(allowed, v) {
		return nil
	}
	return fmt.Errorf("%w: %s %v", ErrInvalid, field, v)
}

func decodeStartUp(node *yaml.Node) (tasks.Configurable, error) {
	var in struct {
		Type       string            `yaml:"type"`
		ClientType *tasks.ClientType `yaml:"client_type"`
		StartGame  *bool             `yaml:"start_game"`
	}
	if err := decodeStrict(node, &in); err != nil {
		return nil, err
	}

	t := tasks.NewStartUp()
	if in.ClientType != nil {
		if err := oneOf("client_type", *in.ClientType, clientTypes); err != nil {
			return nil, err
		}
		t = t.ClientType(*in.ClientType)
	}
	if in.StartGame != nil {
		t = t.StartGame(*in.StartGame)
	}
	return t, nil
}

func decodeFight(node *yaml.Node) (tasks.Configurable, error) {
	var in struct {
		Type             string            `yaml:"type"`
		Stage            *string           `yaml:"stage"`
		Medicine         *int              `yaml:"medicine"`
		ExpiringMedicine *int              `yaml:"expiring_medicine"`
		Stone            *int              `yaml:"stone"`
		Times            *int              `yaml:"times"`
		Drops            map[string]int    `yaml:"drops"`
		ReportToPenguin  *bool             `yaml:"report_to_penguin"`
		PenguinID        *string           `yaml:"penguin_id"`
		Server           *tasks.Server     `yaml:"server"`
		ClientType       *tasks.ClientType `yaml:"client_type"`
		DrGrandet        *bool             `yaml:"dr_grandet"`
	}
	if err := decodeStrict(node, &in); err != nil {
		return nil, err
	}

	t := tasks.NewFight()
	if in.Stage != nil {
		t = t.Stage(*in.Stage)
	}
	for field, n := range map[string]*int{
		"medicine": in.Medicine, "expiring_medicine": in.ExpiringMedicine,
		"stone": in.Stone, "times": in.Times,
	} {
		if n != nil && *n < 0 {
			return nil, fmt.Errorf("%w: %s must not be negative", ErrInvalid, field)
		}
	}
	if in.Medicine != nil {
		t = t.Medicine(*in.Medicine)
	}
	if in.ExpiringMedicine != nil {
		t = t.ExpiringMedicine(*in.ExpiringMedicine)
	}
	if in.Stone != nil {
		t = t.Stone(*in.Stone)
	}
	if in.Times != nil {
		t = t.Times(*in.Times)
	}
	if len(in.Drops) > 0 {
		t = t.Drops(in.Drops)
	}
	if in.ReportToPenguin != nil {
		t = t.ReportToPenguin(*in.ReportToPenguin)
	}
	if in.PenguinID != nil {
		t = t.PenguinID(*in.PenguinID)
	}
	if in.Server != nil {
		if err := oneOf("server", *in.Server, servers); err != nil {
			return nil, err
		}
		t = t.Server(*in.Server)
	}
	if in.ClientType != nil {
		if err := oneOf("client_type", *in.ClientType, clientTypes); err != nil {
			return nil, err
		}
		t = t.ClientType(*in.ClientType)
	}
	if in.DrGrandet != nil {
		t = t.DrGrandet(*in.DrGrandet)
	}
	return t, nil
}

func decodeRecruit(node *yaml.Node) (tasks.Configurable, error) {
	var in struct {
		Type            string        `yaml:"type"`
		Refresh         *bool         `yaml:"refresh"`
		Select          []int         `yaml:"select"`
		Confirm         []int         `yaml:"confirm"`
		Times           *int          `yaml:"times"`
		SetTime         *bool         `yaml:"set_time"`
		Expedite        *int          `yaml:"expedite"`
		SkipRobot       *bool         `yaml:"skip_robot"`
		RecruitmentTime map[int]int   `yaml:"recruitment_time"`
		PenguinID       *string       `yaml:"penguin_id"`
		YituliuID       *string       `yaml:"yituliu_id"`
		Server          *tasks.Server `yaml:"server"`
	}
	if err := decodeStrict(node, &in); err != nil {
		return nil, err
	}

	t := tasks.NewRecruit()
	if in.Refresh != nil {
		t = t.Refresh(*in.Refresh)
	}
	if in.Select != nil {
		t = t.Select(in.Select...)
	}
	if in.Confirm != nil {
		t = t.Confirm(in.Confirm...)
	}
	if in.Times != nil {
		t = t.Times(*in.Times)
	}
	if in.SetTime != nil {
		t = t.SetTime(*in.SetTime)
	}
	if in.Expedite != nil {
		t = t.Expedite(*in.Expedite > 0, *in.Expedite)
	}
	if in.SkipRobot != nil {
		t = t.SkipRobot(*in.SkipRobot)
	}
	for level, minutes := range in.RecruitmentTime {
		if level < 3 || level > 6 || minutes < 60 || minutes > 540 {
			return nil, fmt.Errorf("%w: recruitment_time %d: %d", ErrInvalid, level, minutes)
		}
		t = t.RecruitmentTime(level, minutes)
	}
	if in.PenguinID != nil {
		t = t.ReportToPenguin(true, *in.PenguinID)
	}
	if in.YituliuID != nil {
		t = t.ReportToYituliu(true, *in.YituliuID)
	}
	if in.Server != nil {
		if err := oneOf("server", *in.Server, servers); err != nil {
			return nil, err
		}
		t = t.Server(*in.Server)
	}
	return t, nil
}

func decodeMall(node *yaml.Node) (tasks.Configurable, error) {
	var in struct {
		Type                      string        `yaml:"type"`
		Shopping                  *bool         `yaml:"shopping"`
		BuyFirst                  []string      `yaml:"buy_first"`
		Blacklist                 []string      `yaml:"blacklist"`
		ForceShoppingIfCreditFull *bool         `yaml:"force_shopping_if_credit_full"`
		Server                    *tasks.Server `yaml:"server"`
	}
	if err := decodeStrict(node, &in); err != nil {
		return nil, err
	}

	t := tasks.NewMall()
	if in.Shopping != nil {
		t = t.Shopping(*in.Shopping)
	}
	buyFirst, err := shopItems("buy_first", in.BuyFirst)
	if err != nil {
		return nil, err
	}
	blacklist, err := shopItems("blacklist", in.Blacklist)
	if err != nil {
		return nil, err
	}
	if len(buyFirst) > 0 {
		t = t.BuyFirst(buyFirst...)
	}
	if len(blacklist) > 0 {
		t = t.Blacklist(blacklist...)
	}
	if in.ForceShoppingIfCreditFull != nil {
		t = t.ForceShoppingIfCreditFull(*in.ForceShoppingIfCreditFull)
	}
	if in.Server != nil {
		if err := oneOf("server", *in.Server, servers); err != nil {
			return nil, err
		}
		t = t.Server(*in.Server)
	}
	return t, nil
}

func shopItems(field string, names []string) ([]tasks.ShopItem, error) {
	items := make([]tasks.ShopItem, 0, len(names))
	for _, name := range names {
		item, ok := tasks.ParseShopItem(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s %q", ErrInvalid, field, name)
		}
		items = append(items, item)
	}
	return items, nil
}

func decodeRogueLike(node *yaml.Node) (tasks.Configurable, error) {
	var in struct {
		Type                   string                `yaml:"type"`
		Theme                  *tasks.RogueLikeTheme `yaml:"theme"`
		Mode                   *tasks.RogueLikeMode  `yaml:"mode"`
		StartsCount            *int                  `yaml:"starts_count"`
		Investment             *int                  `yaml:"investment"`
		StopWhenInvestmentFull *bool                 `yaml:"stop_when_investment_full"`
		Squad                  *tasks.Squad          `yaml:"squad"`
		Roles                  *tasks.Roles          `yaml:"roles"`
		CoreChar               *string               `yaml:"core_char"`
		Support                *bool                 `yaml:"use_support"`
		NonfriendSupport       *bool                 `yaml:"use_nonfriend_support"`
		RefreshTraderWithDice  *bool                 `yaml:"refresh_trader_with_dice"`
	}
	if err := decodeStrict(node, &in); err != nil {
		return nil, err
	}

	t := tasks.NewRogueLike()
	if in.Theme != nil {
		if err := oneOf("theme", *in.Theme, themes); err != nil {
			return nil, err
		}
		t = t.Theme(*in.Theme)
	}
	if in.Mode != nil {
		if err := oneOf("mode", *in.Mode, modes); err != nil {
			return nil, err
		}
		t = t.Mode(*in.Mode)
	}
	if in.StartsCount != nil {
		t = t.StartsCount(*in.StartsCount)
	}
	if in.Investment != nil {
		t = t.Investment(*in.Investment > 0, *in.Investment)
	}
	if in.StopWhenInvestmentFull != nil {
		t = t.StopWhenInvestmentFull(*in.StopWhenInvestmentFull)
	}
	if in.Squad != nil {
		t = t.Squad(*in.Squad)
	}
	if in.Roles != nil {
		t = t.Roles(*in.Roles)
	}
	if in.CoreChar != nil {
		t = t.CoreChar(*in.CoreChar)
	}
	if in.Support != nil || in.NonfriendSupport != nil {
		support := in.Support != nil && *in.Support
		nonFriend := in.NonfriendSupport != nil && *in.NonfriendSupport
		t = t.Support(support || nonFriend, nonFriend)
	}
	if in.RefreshTraderWithDice != nil {
		t = t.RefreshTraderWithDice(*in.RefreshTraderWithDice)
	}
	return t, nil
}

func decodeAward(node *yaml.Node) (tasks.Configurable, error) {
	var in struct {
		Type string `yaml:"type"`
	}
	if err := decodeStrict(node, &in); err != nil {
		return nil, err
	}
	return tasks.NewAward(), nil
}

func decodeCloseDown(node *yaml.Node) (tasks.Configurable, error) {
	var in struct {
		Type string `yaml:"type"`
	}
	if err := decodeStrict(node, &in); err != nil {
		return nil, err
	}
	return tasks.NewCloseDown(), nil
}
