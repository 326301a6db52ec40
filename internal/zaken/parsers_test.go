package zaken

import (
	"errors"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsAbsent(t *testing.T) {
	for _, v := range []any{nil, "", 0, 0.0, false, []any{}, map[string]any{}} {
		assert.True(t, IsAbsent(v), "%#v", v)
	}
	for _, v := range []any{" ", "x", 1, -1.5, true, []any{1}} {
		assert.False(t, IsAbsent(v), "%#v", v)
	}
}

func TestToString(t *testing.T) {
	v, err := ToString("  Dam 1 ")
	require.NoError(t, err)
	assert.Equal(t, "Dam 1", v)

	v, err = ToString(float64(1234))
	require.NoError(t, err)
	assert.Equal(t, "1234", v)

	v, _ = ToString("")
	assert.Nil(t, v)

	v, _ = ToStringOrEmpty(nil)
	assert.Equal(t, "", v)
}

func TestToInt(t *testing.T) {
	t.Run("explicit zero is kept", func(t *testing.T) {
		v, err := ToInt(float64(0))
		require.NoError(t, err)
		assert.Equal(t, 0, v)
	})

	t.Run("other absent values are null", func(t *testing.T) {
		for _, raw := range []any{nil, ""} {
			v, err := ToInt(raw)
			require.NoError(t, err)
			assert.Nil(t, v)
		}
	})

	t.Run("numbers and numeric strings", func(t *testing.T) {
		v, _ := ToInt(float64(42.9))
		assert.Equal(t, 42, v)
		v, _ = ToInt(" 17 ")
		assert.Equal(t, 17, v)
	})

	t.Run("garbage is an error", func(t *testing.T) {
		_, err := ToInt("twelve")
		assert.ErrorIs(t, err, ErrUnparseable)
	})
}

func TestToBool(t *testing.T) {
	v, _ := ToBool(nil)
	assert.Equal(t, false, v)
	v, _ = ToBool("J")
	assert.Equal(t, true, v)
	v, _ = ToBool(float64(0))
	assert.Equal(t, false, v)
}

func TestToDate(t *testing.T) {
	want := civil.Date{Year: 2021, Month: time.April, Day: 27}

	t.Run("round trips the upstream ISO form", func(t *testing.T) {
		v, err := ToDate(want.String())
		require.NoError(t, err)
		assert.Equal(t, want, v)

		v, err = ToDate("2021-04-27T00:00:00")
		require.NoError(t, err)
		assert.Equal(t, want, v)
	})

	t.Run("dates and timestamps pass through", func(t *testing.T) {
		v, _ := ToDate(want)
		assert.Equal(t, want, v)

		v, _ = ToDate(time.Date(2021, time.April, 27, 23, 10, 0, 0, time.UTC))
		assert.Equal(t, want, v)
	})

	t.Run("absent is null", func(t *testing.T) {
		for _, raw := range []any{nil, "", 0, false} {
			v, err := ToDate(raw)
			require.NoError(t, err)
			assert.Nil(t, v)
		}
	})

	t.Run("unparseable is an error and null", func(t *testing.T) {
		v, err := ToDate("not-a-date")
		assert.ErrorIs(t, err, ErrUnparseable)
		assert.Nil(t, v)

		_, err = ToDate(float64(20210427))
		assert.ErrorIs(t, err, ErrUnparseable)
	})
}

func TestToDateTime(t *testing.T) {
	v, err := ToDateTime("2021-04-27T10:15:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2021, time.April, 27, 10, 15, 0, 0, time.UTC), v)

	v, err = ToDateTime(civil.Date{Year: 2021, Month: time.April, Day: 27})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2021, time.April, 27, 0, 0, 0, 0, time.UTC), v)
}

func TestToTime(t *testing.T) {
	cases := []struct {
		in   any
		want any
	}{
		{"10:5", "10:50"},
		{"10:05", "10:50"},
		{"9.30", "09:30"},
		{"23;59", "23:59"},
		{"24:00", "24:00"},
		{"07,15 uur", "07:15"},
		{civil.Time{Hour: 8, Minute: 45}, "08:45"},
		{civil.DateTime{Time: civil.Time{Hour: 14, Minute: 20}}, "14:20"},
		{"", nil},
		{nil, nil},
	}
	for _, tc := range cases {
		v, err := ToTime(tc.in)
		require.NoError(t, err, "%#v", tc.in)
		assert.Equal(t, tc.want, v, "%#v", tc.in)
	}

	for _, bad := range []any{"24:01", "25:00", "12:60", "noon"} {
		v, err := ToTime(bad)
		assert.ErrorIs(t, err, ErrUnparseable, "%#v", bad)
		assert.Nil(t, v)
	}
}

func TestToLicensePlates(t *testing.T) {
	v, err := ToLicensePlates(" ab-12-cd,  ef-34-gh;xx ")
	require.NoError(t, err)
	assert.Equal(t, "AB-12-CD | EF-34-GH | XX", v)

	v, _ = ToLicensePlates(nil)
	assert.Nil(t, v)
}

func TestTranslated(t *testing.T) {
	parse := Translated(Translations{T("a", "1")}, false)
	v, _ := parse(" A ")
	assert.Equal(t, "1", v)
	v, _ = parse("b")
	assert.Nil(t, v)
}

func TestParseErrorTemporal(t *testing.T) {
	var pe *ParseError

	_, err := ToDate("soon")
	require.True(t, errors.As(err, &pe))
	assert.True(t, pe.Temporal())

	_, err = ToTime("later")
	require.True(t, errors.As(err, &pe))
	assert.True(t, pe.Temporal())

	_, err = ToInt("twelve")
	require.True(t, errors.As(err, &pe))
	assert.False(t, pe.Temporal())
	assert.ErrorIs(t, err, ErrUnparseable)
}
