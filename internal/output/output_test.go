package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/tariff-cli/internal/tariff"
)

func sampleAggregate() tariff.Aggregate {
	start := tariff.Ptr("2023-01-01")
	return tariff.Aggregate{
		"peak-off-peak": {
			"6": {
				tariff.NewConsumption("peak-off-peak", 1234, start, nil, tariff.Ptr(tariff.OffPeakToken), nil),
				tariff.NewConsumption("peak-off-peak", 2345, start, nil, tariff.Ptr(tariff.PeakToken), nil),
				tariff.NewSubscription("peak-off-peak", 100000, start, nil),
			},
		},
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("JSON")
	require.NoError(t, err)
	assert.Equal(t, JSON, f)

	f, err = ParseFormat(" yaml ")
	require.NoError(t, err)
	assert.Equal(t, YAML, f)

	_, err = ParseFormat("toml")
	assert.Error(t, err)
}

func TestFormatForPath(t *testing.T) {
	assert.Equal(t, YAML, FormatForPath("out/tariffs.yaml"))
	assert.Equal(t, YAML, FormatForPath("out/tariffs.YML"))
	assert.Equal(t, JSON, FormatForPath("out/tariffs.json"))
	assert.Equal(t, JSON, FormatForPath("out/tariffs"))
}

func TestEncode_JSONShape(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, sampleAggregate(), JSON, 2))

	var raw map[string]map[string][]map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &raw))

	recs := raw["peak-off-peak"]["6"]
	require.Len(t, recs, 3)
	assert.Equal(t, "consumption", recs[0]["price_type"])
	assert.Equal(t, "euro", recs[0]["currency"])
	assert.EqualValues(t, 1234, recs[0]["price"])
	assert.Equal(t, "2023-01-01", recs[0]["start_date"])
	assert.Equal(t, "TO_REPLACE_OFF_PEAK", recs[0]["hour_slots"])

	// Null fields are present, not omitted.
	for _, key := range []string{"end_date", "day_type"} {
		v, ok := recs[2][key]
		assert.True(t, ok, "key %s missing", key)
		assert.Nil(t, v)
	}
	assert.Contains(t, buf.String(), "\n  \"peak-off-peak\"")
}

func TestEncode_UnknownFormat(t *testing.T) {
	assert.Error(t, Encode(&bytes.Buffer{}, sampleAggregate(), "xml", 0))
}

func TestWriteRead_RoundTrip(t *testing.T) {
	for _, tt := range []struct {
		format Format
		path   string
	}{
		{JSON, "dist/tariffs.json"},
		{YAML, "dist/tariffs.yaml"},
	} {
		t.Run(string(tt.format), func(t *testing.T) {
			fsys := afero.NewMemMapFs()
			w := NewWriter(fsys, tt.format, 2)
			require.NoError(t, w.Write(tt.path, sampleAggregate()))

			got, err := Read(fsys, tt.path)
			require.NoError(t, err)
			assert.Equal(t, sampleAggregate(), got)
		})
	}
}

func TestWrite_ReplacesAndLeavesNoTempFiles(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "dist/tariffs.json", []byte("stale"), 0o644))

	w := NewWriter(fsys, JSON, 0)
	require.NoError(t, w.Write("dist/tariffs.json", sampleAggregate()))

	data, err := afero.ReadFile(fsys, "dist/tariffs.json")
	require.NoError(t, err)
	assert.NotEqual(t, "stale", string(data))

	entries, err := afero.ReadDir(fsys, "dist")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "tariffs.json", entries[0].Name())
}

func TestWrite_ReadOnlyFs(t *testing.T) {
	fsys := afero.NewReadOnlyFs(afero.NewMemMapFs())
	w := NewWriter(fsys, JSON, 2)
	assert.Error(t, w.Write("dist/tariffs.json", sampleAggregate()))
}

func TestRead_Errors(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "bad.json", []byte("{"), 0o644))

	_, err := Read(fsys, "bad.json")
	assert.Error(t, err)

	_, err = Read(fsys, "missing.json")
	assert.Error(t, err)
}
