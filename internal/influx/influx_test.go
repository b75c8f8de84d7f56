package influx

import (
	"bufio"
	"compress/gzip"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/OCAP2/airfight/pkg/core"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readBackup(t *testing.T, path string) []string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	gz, err := gzip.NewReader(f)
	require.NoError(t, err)

	var lines []string
	sc := bufio.NewScanner(gz)
	for sc.Scan() {
		if sc.Text() != "" {
			lines = append(lines, sc.Text())
		}
	}
	require.NoError(t, sc.Err())
	return lines
}

func TestConnect_Disabled(t *testing.T) {
	viper.Set("influx.enabled", false)
	t.Cleanup(viper.Reset)

	m := NewManager(zerolog.Nop(), "")
	assert.Error(t, m.Connect())
	assert.False(t, m.IsValid)
}

func TestConnect_UnreachableFallsBackToFile(t *testing.T) {
	viper.Set("influx.enabled", true)
	viper.Set("influx.protocol", "http")
	viper.Set("influx.host", "127.0.0.1")
	viper.Set("influx.port", "1")
	t.Cleanup(viper.Reset)

	path := filepath.Join(t.TempDir(), "influx_backup.log.gz")
	m := NewManager(zerolog.Nop(), path)
	require.NoError(t, m.Connect())
	assert.False(t, m.IsValid)
	require.NotNil(t, m.BackupWriter)

	e := core.CombatEvent{
		Campaign: "thunder",
		Time:     time.Unix(1000, 0),
		Clock:    20,
		Type:     core.EventHit,
		Target:   "Fighter",
		Damage:   30,
	}
	require.NoError(t, m.WriteCombatEvent(context.Background(), e))
	require.NoError(t, m.Close())

	lines := readBackup(t, path)
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "combat_event,")
	assert.Contains(t, lines[0], "campaign=thunder")
	assert.Contains(t, lines[0], "target=Fighter")
	assert.Contains(t, lines[0], "damage=30i")
}

func TestWritePoint_NoWriter(t *testing.T) {
	m := NewManager(zerolog.Nop(), "")
	p := influxdb2_write.NewPointWithMeasurement("x").AddField("v", 1)
	assert.Error(t, m.WritePoint(context.Background(), BucketStatus, p))
	assert.Error(t, m.OpenBackup())
	assert.NoError(t, m.Close())
}

func TestStatusPoint(t *testing.T) {
	p := StatusPoint("thunder", time.Unix(5, 0), map[string]any{"projectiles": 3})
	line := influxdb2_write.PointToLineProtocol(p, time.Second)
	assert.Equal(t, "campaign_status,campaign=thunder projectiles=3i 5", strings.TrimSpace(line))
}

func TestCombatEventPoint_OptionalTags(t *testing.T) {
	p := CombatEventPoint(core.CombatEvent{Campaign: "thunder", Type: core.EventMiss})
	line := influxdb2_write.PointToLineProtocol(p, time.Second)
	assert.NotContains(t, line, "attacker=")
	assert.NotContains(t, line, "item=")
}

func TestParseMetric(t *testing.T) {
	bucket, p, err := ParseMetric([]string{
		BucketStatus, "radar",
		"tag::base::Alpha",
		"field::int::contacts::3",
		"field::float::range::12.5",
		"field::string::mode::active",
	})
	require.NoError(t, err)
	assert.Equal(t, BucketStatus, bucket)
	line := influxdb2_write.PointToLineProtocol(p, time.Second)
	assert.Contains(t, line, "radar,base=Alpha")
	assert.Contains(t, line, "contacts=3i")
	assert.Contains(t, line, "range=12.5")
	assert.Contains(t, line, `mode="active"`)
}

func TestParseMetric_Errors(t *testing.T) {
	cases := map[string][]string{
		"too short": {"bucket"},
		"no fields": {"bucket", "m", "tag::a::b"},
		"bad int":   {"bucket", "m", "field::int::n::x"},
		"bad float": {"bucket", "m", "field::float::n::x"},
		"bad type":  {"bucket", "m", "field::bool::n::true"},
		"malformed": {"bucket", "m", "oops"},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := ParseMetric(args)
			assert.Error(t, err)
		})
	}
}
