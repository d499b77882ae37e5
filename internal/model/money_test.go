package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMoney(t *testing.T) {
	m, err := ParseMoney("10.00")
	require.NoError(t, err)
	assert.Equal(t, "10.00", m.String())

	assert.True(t, m.Equal(MustMoney("10")))
	assert.Equal(t, -1, MustMoney("9.99").Cmp(m))
	assert.False(t, m.IsZero())
	assert.True(t, MustMoney("0.00").IsZero())
}

func TestParseMoney_Rejects(t *testing.T) {
	for _, in := range []string{"", "abc", "-1.00", "NaN", "Infinity"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseMoney(in)
			require.Error(t, err)
		})
	}
}

func TestMoneyAdd(t *testing.T) {
	sum, err := MustMoney("10.00").Add(MustMoney("2.50"))
	require.NoError(t, err)
	assert.Equal(t, "12.50", sum.String())
}

func TestPaymentTotal(t *testing.T) {
	p := Payment{Items: []PaymentItem{
		{Amount: MustMoney("30.00")},
		{Amount: MustMoney("10.00")},
	}}
	total, err := p.Total()
	require.NoError(t, err)
	assert.True(t, total.Equal(MustMoney("40")))
}

func TestMoneyScan(t *testing.T) {
	var m Money
	require.NoError(t, m.Scan("12.34"))
	assert.Equal(t, "12.34", m.String())

	require.NoError(t, m.Scan(int64(5)))
	assert.Equal(t, "5", m.String())

	require.Error(t, m.Scan(1.5))
}

func TestMoneyValue_Canonical(t *testing.T) {
	for in, want := range map[string]string{
		"10":      "10.00",
		"10.0":    "10.00",
		"10.00":   "10.00",
		"10.000":  "10.00",
		"10.5":    "10.50",
		"10.125":  "10.125",
		"10.1250": "10.125",
		"1E+1":    "10.00",
		"0":       "0.00",
		"0.000":   "0.00",
	} {
		t.Run(in, func(t *testing.T) {
			v, err := MustMoney(in).Value()
			require.NoError(t, err)
			assert.Equal(t, want, v)
		})
	}
}
