package tasks

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingAppender struct {
	next  int32
	kinds []string
	raw   [][]byte
	err   error
}

func (r *recordingAppender) AppendTask(kind string, params []byte) (int32, error) {
	if r.err != nil {
		return 0, r.err
	}
	r.kinds = append(r.kinds, kind)
	r.raw = append(r.raw, params)
	if r.next < 0 {
		return 0, nil
	}
	r.next++
	return r.next, nil
}

func decodeMap(t *testing.T, task Task) map[string]any {
	t.Helper()
	data, err := json.Marshal(task)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func TestFight_DefaultsOmitOptionalFields(t *testing.T) {
	params := decodeMap(t, NewFight())

	for _, key := range []string{"stage", "medicine", "expiring_medicine", "stone", "times", "drop", "penguin_id", "client_type"} {
		assert.NotContains(t, params, key)
	}
	assert.Equal(t, "CN", params["server"])
	assert.Equal(t, false, params["report_to_penguin"])
	assert.Equal(t, false, params["DrGrandet"])
}

func TestFight_Medicine(t *testing.T) {
	params := decodeMap(t, NewFight().Medicine(2))
	assert.Equal(t, float64(2), params["medicine"])
}

func TestFight_SettersCommute(t *testing.T) {
	a := NewFight().Stage("1-7").Medicine(3).Drop("30012", 10).Server(ServerJP)
	b := NewFight().Server(ServerJP).Drop("30012", 10).Medicine(3).Stage("1-7")

	ja, err := json.Marshal(a)
	require.NoError(t, err)
	jb, err := json.Marshal(b)
	require.NoError(t, err)
	assert.JSONEq(t, string(ja), string(jb))
}

func TestFight_ValueSemantics(t *testing.T) {
	base := NewFight().Drop("30012", 1)
	more := base.Drop("30013", 2)

	assert.Len(t, decodeMap(t, base)["drop"], 1)
	assert.Len(t, decodeMap(t, more)["drop"], 2)
}

func TestStart_FreezesParameters(t *testing.T) {
	fight := NewFight().Stage("CE-6")
	sub := fight.Start()

	fight = fight.Stage("1-7")

	assert.Equal(t, KindFight, sub.Name())
	assert.Equal(t, "CE-6", decodeMap(t, sub)["stage"])
	_, ok := sub.ID()
	assert.False(t, ok)
	assert.Equal(t, "1-7", decodeMap(t, fight)["stage"])
}

func TestSubmitted_IsNotConfigurable(t *testing.T) {
	var task any = NewAward().Start()
	_, ok := task.(Configurable)
	assert.False(t, ok)

	_, ok = task.(Task)
	assert.True(t, ok)
}

func TestAppend(t *testing.T) {
	app := &recordingAppender{}

	sub, err := Append(app, NewFight().Stage("1-7"))
	require.NoError(t, err)
	id, ok := sub.ID()
	assert.True(t, ok)
	assert.Equal(t, int32(1), id)
	assert.Equal(t, "Fight#1", sub.String())

	_, err = Append(app, NewAward())
	require.NoError(t, err)

	assert.Equal(t, []string{"Fight", "Award"}, app.kinds)
	assert.JSONEq(t, `{}`, string(app.raw[1]))
}

func TestAppend_Rejected(t *testing.T) {
	_, err := Append(&recordingAppender{next: -1}, NewCloseDown())
	assert.True(t, errors.Is(err, ErrAppendRejected))
}

func TestAppend_Error(t *testing.T) {
	boom := errors.New("destroyed")
	_, err := Append(&recordingAppender{err: boom}, NewStartUp())
	assert.True(t, errors.Is(err, boom))
	assert.Contains(t, err.Error(), "StartUp")
}

func TestRecruit_Defaults(t *testing.T) {
	params := decodeMap(t, NewRecruit())

	assert.Equal(t, []any{float64(3), float64(4), float64(5)}, params["select"])
	assert.Equal(t, []any{float64(3), float64(5), float64(4), float64(6)}, params["confirm"])
	assert.Equal(t, true, params["set_time"])
	assert.Equal(t, true, params["skip_robot"])
	assert.Equal(t, map[string]any{"3": float64(540), "4": float64(540), "5": float64(540), "6": float64(540)}, params["recruitment_time"])
	for _, key := range []string{"times", "expedite_times", "penguin_id", "yituliu_id"} {
		assert.NotContains(t, params, key)
	}
}

func TestRecruit_RecruitmentTimeDoesNotAlias(t *testing.T) {
	base := NewRecruit()
	changed := base.RecruitmentTime(3, 460)

	assert.Equal(t, float64(540), decodeMap(t, base)["recruitment_time"].(map[string]any)["3"])
	assert.Equal(t, float64(460), decodeMap(t, changed)["recruitment_time"].(map[string]any)["3"])
}

func TestMall_LocalizedLabels(t *testing.T) {
	tests := []struct {
		server    Server
		buyFirst  []any
		blacklist []any
	}{
		{ServerCN, []any{"招聘", "龙门币"}, []any{"家具", "碳"}},
		{ServerUS, []any{"Recruitment", "LMD"}, []any{"Furniture", "Carbon"}},
		{ServerJP, []any{"採用", "龍門幣"}, []any{"家具", "炭素"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.server), func(t *testing.T) {
			mall := NewMall().Shopping(true).
				BuyFirst(ShopRecruitmentPermit, ShopLMD).
				Blacklist(ShopFurniturePart, ShopCarbonStick).
				Server(tt.server)
			params := decodeMap(t, mall)
			assert.Equal(t, tt.buyFirst, params["buy_first"])
			assert.Equal(t, tt.blacklist, params["blacklist"])
			assert.Equal(t, true, params["shopping"])
		})
	}
}

func TestMall_UnsoldItemDropped(t *testing.T) {
	params := decodeMap(t, NewMall().Server(ServerJP).BuyFirst(ShopExpeditedPermit))
	assert.Equal(t, []any{}, params["buy_first"])
}

func TestShopItem_Parse(t *testing.T) {
	item, ok := ParseShopItem("CarbonStick")
	assert.True(t, ok)
	assert.Equal(t, ShopCarbonStick, item)
	assert.Equal(t, "CarbonStick", item.String())

	_, ok = ParseShopItem("Orundum")
	assert.False(t, ok)
}

func TestRogueLike_Defaults(t *testing.T) {
	params := decodeMap(t, NewRogueLike())

	assert.Equal(t, "Phantom", params["theme"])
	assert.Equal(t, float64(0), params["mode"])
	assert.Equal(t, true, params["investment_enabled"])
	assert.Equal(t, "指挥分队", params["squad"])
	assert.Equal(t, "取长补短", params["roles"])
	assert.NotContains(t, params, "starts_count")
	assert.NotContains(t, params, "core_char")

	params = decodeMap(t, NewRogueLike().Theme(ThemeMizuki).Mode(ModeFarmMoney).Squad(SquadResearch).CoreChar("Thorns"))
	assert.Equal(t, "Mizuki", params["theme"])
	assert.Equal(t, float64(1), params["mode"])
	assert.Equal(t, "研究分队", params["squad"])
	assert.Equal(t, "Thorns", params["core_char"])
}

func TestStartUp(t *testing.T) {
	params := decodeMap(t, NewStartUp())
	assert.NotContains(t, params, "client_type")
	assert.Equal(t, false, params["start_game_enabled"])

	params = decodeMap(t, NewStartUp().ClientType(ClientBilibili).StartGame(true))
	assert.Equal(t, "Bilibili", params["client_type"])
	assert.Equal(t, true, params["start_game_enabled"])
}

func TestParameterlessTasks(t *testing.T) {
	for _, task := range []Configurable{NewAward(), NewCloseDown()} {
		data, err := json.Marshal(task)
		require.NoError(t, err)
		assert.JSONEq(t, `{}`, string(data))
	}
	assert.Equal(t, "Award", NewAward().Name())
	assert.Equal(t, "CloseDown", NewCloseDown().Name())
	assert.Equal(t, "Roguelike", NewRogueLike().Name())
}
