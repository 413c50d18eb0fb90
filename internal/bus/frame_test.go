package bus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestEncodeParse_RoundTrip(t *testing.T) {
	at := time.Unix(1700000000, 0)
	raw := Encode("ambulance", 3, 4, at)
	require.Equal(t, "ambulance 3 4 1700000000", raw)

	f, err := Parse(raw)
	require.NoError(t, err)
	require.Equal(t, "ambulance", f.Type)
	require.Equal(t, 3, f.X)
	require.Equal(t, 4, f.Y)
	require.Equal(t, at.Unix(), f.Submitted.Unix())
}

func TestParse_RejectsWrongFieldCount(t *testing.T) {
	_, err := Parse("ambulance 3 4")
	require.Error(t, err)
}

func TestParse_RejectsNonIntegerFields(t *testing.T) {
	_, err := Parse("ambulance x 4 1700000000")
	require.Error(t, err)
}
