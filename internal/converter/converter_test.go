package converter

import (
	"context"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/tariff-cli/internal/source"
	"github.com/sells-group/tariff-cli/internal/tariff"
)

func memFS(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fsys := afero.NewMemMapFs()
	for path, content := range files {
		require.NoError(t, afero.WriteFile(fsys, path, []byte(content), 0o644))
	}
	return fsys
}

func csvLines(lines ...string) string {
	return strings.Join(lines, "\n") + "\n"
}

const (
	baseHeader  = "DATE_DEBUT;DATE_FIN;P_SOUSCRITE;PART_FIXE_HT;PART_FIXE_TTC;PART_VARIABLE_HT;PART_VARIABLE_TTC"
	hphcHeader  = "DATE_DEBUT;DATE_FIN;P_SOUSCRITE;PART_FIXE_TTC;PART_VARIABLE_HC_TTC;PART_VARIABLE_HP_TTC"
	tempoHeader = "DATE_DEBUT;DATE_FIN;P_SOUSCRITE;PART_FIXE_TTC;PART_VARIABLE_HCBleu_TTC;PART_VARIABLE_HPBleu_TTC;PART_VARIABLE_HCBlanc_TTC;PART_VARIABLE_HPBlanc_TTC;PART_VARIABLE_HCRouge_TTC;PART_VARIABLE_HPRouge_TTC"
)

func TestFlatRate_Convert(t *testing.T) {
	fsys := memFS(t, map[string]string{
		"base.csv": csvLines(
			baseHeader,
			"01/02/2023;31/07/2023;6;100,00;151,20;0,1300;0,2062",
			"01/08/2023;;6;100,00;158,76;0,1500;0,2276",
			"01/08/2023;;9;130,00;199,80;0,1500;0,2276",
			"01/08/2023;;12;;;0,1500;0,2276",
		),
	})

	c := &FlatRate{Contract: "base", Path: "base.csv"}
	res, err := c.Convert(context.Background(), fsys)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, []string{"6", "9"}, res.Levels.Levels())

	six := res.Levels["6"]
	require.Len(t, six, 4)

	assert.Equal(t, tariff.Consumption, six[0].PriceType)
	assert.Equal(t, int64(2062), six[0].Price)
	assert.Equal(t, "2023-02-01", *six[0].StartDate)
	assert.Equal(t, "2023-07-31", *six[0].EndDate)
	assert.Nil(t, six[0].HourSlots)
	assert.Nil(t, six[0].DayType)

	assert.Equal(t, tariff.Subscription, six[1].PriceType)
	assert.Equal(t, int64(126000), six[1].Price)
	assert.Equal(t, tariff.Euro, six[1].Currency)

	assert.Equal(t, int64(2276), six[2].Price)
	assert.Nil(t, six[2].EndDate)
	assert.Equal(t, int64(132300), six[3].Price)
}

func TestFlatRate_MalformedDatePropagatesNull(t *testing.T) {
	fsys := memFS(t, map[string]string{
		"base.csv": csvLines(baseHeader, "01022023;;6;;151,20;;0,2062"),
	})

	res, err := (&FlatRate{Contract: "base", Path: "base.csv"}).Convert(context.Background(), fsys)
	require.NoError(t, err)
	require.Len(t, res.Levels["6"], 2)
	assert.Nil(t, res.Levels["6"][0].StartDate)
	assert.Nil(t, res.Levels["6"][1].StartDate)
}

func TestFlatRate_UnparseablePrice(t *testing.T) {
	fsys := memFS(t, map[string]string{
		"base.csv": csvLines(baseHeader,
			"01/02/2023;;6;;151,20;;0,2062",
			"01/02/2023;;9;;n/a;;0,2062",
		),
	})

	_, err := (&FlatRate{Contract: "base", Path: "base.csv"}).Convert(context.Background(), fsys)
	require.Error(t, err)

	var rowErr *RowError
	require.ErrorAs(t, err, &rowErr)
	assert.Equal(t, 2, rowErr.Row)
	assert.Equal(t, "PART_FIXE_TTC", rowErr.Column)
	assert.Contains(t, err.Error(), "base.csv row 2")
}

func TestFlatRate_MissingFixedHeader(t *testing.T) {
	fsys := memFS(t, map[string]string{
		"base.csv": csvLines(
			"DATE_DEBUT;DATE_FIN;P_SOUSCRITE;PART_VARIABLE_TTC",
			"01/02/2023;;6;0,2062",
		),
	})

	res, err := (&FlatRate{Contract: "base", Path: "base.csv"}).Convert(context.Background(), fsys)
	require.Error(t, err)
	assert.Nil(t, res)

	var he *source.HeaderError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, []string{"PART_FIXE_TTC"}, he.Missing)
}

func TestDualRate_EndToEndScenario(t *testing.T) {
	fsys := memFS(t, map[string]string{
		"hphc.csv": csvLines(
			hphcHeader,
			"01/01/2023;;6;120,00;0,1234;0,2345",
			"01/01/2023;;6;120,00;;",
		),
	})

	res, err := (&DualRate{Contract: "peak-off-peak", Path: "hphc.csv"}).Convert(context.Background(), fsys)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Skipped)

	recs := res.Levels["6"]
	require.Len(t, recs, 3)

	assert.Equal(t, tariff.Consumption, recs[0].PriceType)
	assert.Equal(t, int64(1234), recs[0].Price)
	assert.Equal(t, tariff.OffPeakToken, *recs[0].HourSlots)

	assert.Equal(t, tariff.Consumption, recs[1].PriceType)
	assert.Equal(t, int64(2345), recs[1].Price)
	assert.Equal(t, tariff.PeakToken, *recs[1].HourSlots)

	assert.Equal(t, tariff.Subscription, recs[2].PriceType)
	assert.Equal(t, int64(100000), recs[2].Price)
	assert.Nil(t, recs[2].HourSlots)

	for _, r := range recs {
		assert.Equal(t, "peak-off-peak", r.Contract)
		assert.Equal(t, "2023-01-01", *r.StartDate)
		assert.Nil(t, r.EndDate)
		assert.Nil(t, r.DayType)
	}
}

func TestDualRate_MissingPriceHeader(t *testing.T) {
	fsys := memFS(t, map[string]string{
		"hphc.csv": csvLines(
			"DATE_DEBUT;DATE_FIN;P_SOUSCRITE;PART_FIXE_TTC;PART_VARIABLE_HC_TTC",
			"01/01/2023;;6;120,00;0,1234",
		),
	})

	_, err := (&DualRate{Contract: "peak-off-peak", Path: "hphc.csv"}).Convert(context.Background(), fsys)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PART_VARIABLE_HP_TTC")
}

func TestCalendarTiered_SingleRowYieldsSeven(t *testing.T) {
	fsys := memFS(t, map[string]string{
		"tempo.csv": csvLines(
			tempoHeader,
			"01/02/2024;;9;193,32;0,1296;0,1609;0,1486;0,1894;0,1568;0,7562",
		),
	})

	res, err := (&CalendarTiered{Contract: "tempo", Path: "tempo.csv"}).Convert(context.Background(), fsys)
	require.NoError(t, err)

	recs := res.Levels["9"]
	require.Len(t, recs, 7)

	want := []struct {
		day   tariff.DayType
		slots string
		price int64
	}{
		{tariff.Blue, tariff.OffPeakSlots, 1296},
		{tariff.Blue, tariff.PeakSlots, 1609},
		{tariff.White, tariff.OffPeakSlots, 1486},
		{tariff.White, tariff.PeakSlots, 1894},
		{tariff.Red, tariff.OffPeakSlots, 1568},
		{tariff.Red, tariff.PeakSlots, 7562},
	}
	for i, w := range want {
		assert.Equal(t, tariff.Consumption, recs[i].PriceType, "record %d", i)
		assert.Equal(t, w.day, *recs[i].DayType, "record %d", i)
		assert.Equal(t, w.slots, *recs[i].HourSlots, "record %d", i)
		assert.Equal(t, w.price, recs[i].Price, "record %d", i)
	}

	sub := recs[6]
	assert.Equal(t, tariff.Subscription, sub.PriceType)
	assert.Equal(t, int64(161100), sub.Price)
	assert.Nil(t, sub.DayType)
	assert.Nil(t, sub.HourSlots)
}

func TestCalendarTiered_RowAllOrNothing(t *testing.T) {
	fsys := memFS(t, map[string]string{
		"tempo.csv": csvLines(
			tempoHeader,
			"01/02/2024;;9;193,32;0,1296;0,1609;0,1486;0,1894;0,1568;",
			"01/02/2024;;12;;0,1296;0,1609;0,1486;0,1894;0,1568;0,7562",
			"01/02/2024;;15;279,84;0,1296;0,1609;0,1486;0,1894;0,1568;0,7562",
		),
	})

	res, err := (&CalendarTiered{Contract: "tempo", Path: "tempo.csv"}).Convert(context.Background(), fsys)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Skipped)
	assert.Equal(t, []string{"15"}, res.Levels.Levels())
	assert.Len(t, res.Levels["15"], 7)
}

func TestCalendarTiered_MissingTierHeader(t *testing.T) {
	header := strings.Replace(tempoHeader, ";PART_VARIABLE_HPRouge_TTC", "", 1)
	fsys := memFS(t, map[string]string{
		"tempo.csv": csvLines(header, "01/02/2024;;9;193,32;0,1296;0,1609;0,1486;0,1894;0,1568"),
	})

	_, err := (&CalendarTiered{Contract: "tempo", Path: "tempo.csv"}).Convert(context.Background(), fsys)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PART_VARIABLE_HPRouge_TTC")
}

func TestConvert_CancelledContext(t *testing.T) {
	fsys := memFS(t, map[string]string{
		"base.csv": csvLines(baseHeader, "01/02/2023;;6;;151,20;;0,2062"),
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := (&FlatRate{Contract: "base", Path: "base.csv"}).Convert(ctx, fsys)
	assert.Error(t, err)
}

const greenConsumption = `[
  {"contract": "green-base", "price_type": "consumption", "currency": "euro", "price": 2390,
   "start_date": "2024-02-01", "end_date": null, "hour_slots": null, "day_type": null}
]`

const greenSubscriptions = `{
  "6": [{"contract": "green-base", "price_type": "subscription", "currency": "euro", "price": 132100,
         "start_date": "2024-02-01", "end_date": null, "hour_slots": null, "day_type": null}],
  "9": [{"contract": "green-base", "price_type": "subscription", "currency": "euro", "price": 165500,
         "start_date": "2024-02-01", "end_date": null, "hour_slots": null, "day_type": null}]
}`

func TestStaticCatalog_Convert(t *testing.T) {
	fsys := memFS(t, map[string]string{
		"cons.json": greenConsumption,
		"subs.json": greenSubscriptions,
	})

	c := &StaticCatalog{Contract: "green-base", ConsumptionPath: "cons.json", SubscriptionPath: "subs.json"}
	res, err := c.Convert(context.Background(), fsys)
	require.NoError(t, err)

	assert.Equal(t, []string{"6", "9"}, res.Levels.Levels())
	for _, level := range []string{"6", "9"} {
		recs := res.Levels[level]
		require.Len(t, recs, 2)
		assert.Equal(t, tariff.Consumption, recs[0].PriceType)
		assert.Equal(t, int64(2390), recs[0].Price)
		assert.Equal(t, tariff.Subscription, recs[1].PriceType)
	}
	assert.Equal(t, int64(165500), res.Levels["9"][1].Price)
	assert.Equal(t, []string{"cons.json", "subs.json"}, c.Sources())
}

func TestStaticCatalog_DeepCopyIsolation(t *testing.T) {
	fsys := memFS(t, map[string]string{
		"cons.json": greenConsumption,
		"subs.json": greenSubscriptions,
	})

	res, err := (&StaticCatalog{Contract: "green-base", ConsumptionPath: "cons.json", SubscriptionPath: "subs.json"}).
		Convert(context.Background(), fsys)
	require.NoError(t, err)

	six := res.Levels["6"]
	six[0].Price = 1
	*six[0].StartDate = "1999-01-01"
	res.Levels["6"] = append(six, tariff.NewSubscription("green-base", 1, nil, nil))

	nine := res.Levels["9"]
	require.Len(t, nine, 2)
	assert.Equal(t, int64(2390), nine[0].Price)
	assert.Equal(t, "2024-02-01", *nine[0].StartDate)
}

func TestStaticCatalog_MalformedJSON(t *testing.T) {
	fsys := memFS(t, map[string]string{
		"cons.json": `[{"contract": "green-base", "price": 12.5}]`,
		"subs.json": greenSubscriptions,
	})

	_, err := (&StaticCatalog{Contract: "green-base", ConsumptionPath: "cons.json", SubscriptionPath: "subs.json"}).
		Convert(context.Background(), fsys)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "consumption catalog")
}

func TestConsumptionCatalog_Convert(t *testing.T) {
	fsys := memFS(t, map[string]string{"cons.json": greenConsumption})

	res, err := (&ConsumptionCatalog{Contract: "market-index", ConsumptionPath: "cons.json"}).
		Convert(context.Background(), fsys)
	require.NoError(t, err)

	assert.Equal(t, RegulatedPowerLevels, res.Levels.Levels())
	for _, level := range RegulatedPowerLevels {
		require.Len(t, res.Levels[level], 1)
		assert.Equal(t, tariff.Consumption, res.Levels[level][0].PriceType)
	}

	*res.Levels["3"][0].StartDate = "1999-01-01"
	assert.Equal(t, "2024-02-01", *res.Levels["36"][0].StartDate)
}

func TestConsumptionCatalog_CustomLevels(t *testing.T) {
	fsys := memFS(t, map[string]string{"cons.json": greenConsumption})

	res, err := (&ConsumptionCatalog{Contract: "market-index", ConsumptionPath: "cons.json", Levels: []string{"6"}}).
		Convert(context.Background(), fsys)
	require.NoError(t, err)
	assert.Equal(t, []string{"6"}, res.Levels.Levels())
}
