package timefmt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateTimeRoundTrip(t *testing.T) {
	in := time.Date(2024, 3, 9, 17, 4, 5, 0, time.FixedZone("x", 3600))

	s := FormatDateTime(in)
	assert.Equal(t, "2024-03-09T16:04:05Z", s)

	out, err := ParseDateTime(s)
	require.NoError(t, err)
	assert.True(t, in.Equal(out))
	assert.Equal(t, time.UTC, out.Location())
}

func TestParseDateTime_Offsets(t *testing.T) {
	out, err := ParseDateTime("2024-03-09T18:04:05.5+02:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 9, 16, 4, 5, 5e8, time.UTC), out)

	_, err = ParseDateTime("yesterday")
	assert.Error(t, err)
}

func TestHTTPDateRoundTrip(t *testing.T) {
	in := time.Date(2015, 10, 21, 7, 28, 0, 0, time.UTC)

	s := FormatHTTPDate(in)
	assert.Equal(t, "Wed, 21 Oct 2015 07:28:00 GMT", s)

	out, err := ParseHTTPDate(s)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestEpochSeconds(t *testing.T) {
	in := time.Date(2020, 1, 1, 0, 0, 1, 250*int(time.Millisecond), time.UTC)

	assert.InDelta(t, 1577836801.25, EpochSeconds(in), 1e-6)
	assert.Equal(t, in, FromEpochSeconds(EpochSeconds(in)))

	s := FormatEpochString(in)
	assert.Equal(t, "1577836801.25", s)

	out, err := ParseEpochString(s)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	_, err = ParseEpochString("nope")
	assert.Error(t, err)
}
