package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDesgloseTotal(t *testing.T) {
	d := Desglose{
		{Denominacion: 50000, Cantidad: 3},
		{Denominacion: 10000, Cantidad: 2},
		{Denominacion: 500, Cantidad: 10},
		{Denominacion: 50, Cantidad: 0},
	}

	total, err := d.Total()
	require.NoError(t, err)
	assert.Equal(t, "175000", total.String())
}

func TestDesgloseVacioSumaCero(t *testing.T) {
	total, err := Desglose{}.Total()
	require.NoError(t, err)
	assert.True(t, total.IsZero())
}

func TestDesgloseRechazaCantidadNegativa(t *testing.T) {
	d := Desglose{{Denominacion: 20000, Cantidad: -1}}
	_, err := d.Total()
	assert.ErrorContains(t, err, "cantidad negativa")
}

func TestDesgloseRechazaDenominacionDesconocida(t *testing.T) {
	d := Desglose{{Denominacion: 3000, Cantidad: 1}}
	_, err := d.Total()
	assert.ErrorContains(t, err, "denominación desconocida")
}

func TestDesgloseRoundTripJSONB(t *testing.T) {
	d := Desglose{
		{Denominacion: 100000, Cantidad: 1},
		{Denominacion: 200, Cantidad: 4},
	}

	raw, err := d.Value()
	require.NoError(t, err)

	var back Desglose
	require.NoError(t, back.Scan(raw))
	assert.Equal(t, d, back)
}

func TestEsBillete(t *testing.T) {
	assert.True(t, EsBillete(2000))
	assert.True(t, EsBillete(100000))
	assert.False(t, EsBillete(1000))
	assert.False(t, EsBillete(50))
}
