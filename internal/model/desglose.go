package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Cédula de denominaciones en pesos colombianos. El corte billete/moneda es
// puramente de presentación; no tiene significado aritmético.
var (
	Billetes = []int64{100000, 50000, 20000, 10000, 5000, 2000}
	Monedas  = []int64{1000, 500, 200, 100, 50}

	// BilleteMinimo is the smallest face value grouped as a bill.
	BilleteMinimo int64 = 2000
)

// DenominacionConteo is one (face value, count) pair of a physical count.
type DenominacionConteo struct {
	Denominacion int64 `json:"denominacion"`
	Cantidad     int   `json:"cantidad"`
}

// Desglose is the itemized breakdown of a physical count, stored as a JSONB
// snapshot on shift closes and till counts.
type Desglose []DenominacionConteo

func (d Desglose) Value() (driver.Value, error) {
	if d == nil {
		return nil, nil
	}
	return json.Marshal(d)
}

func (d *Desglose) Scan(value interface{}) error {
	if value == nil {
		*d = nil
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		if s, ok := value.(string); ok {
			b = []byte(s)
		} else {
			return fmt.Errorf("desglose: tipo de columna inesperado %T", value)
		}
	}
	return json.Unmarshal(b, d)
}

// EsBillete reports whether a face value is grouped as a bill for display.
func EsBillete(denominacion int64) bool {
	return denominacion >= BilleteMinimo
}

func denominacionValida(denominacion int64) bool {
	for _, d := range Billetes {
		if d == denominacion {
			return true
		}
	}
	for _, d := range Monedas {
		if d == denominacion {
			return true
		}
	}
	return false
}

// Total computes Σ denominación × cantidad. It rejects negative counts and
// face values outside the national schedule; it has no side effects and is
// used identically by shift closes and session till counts.
func (d Desglose) Total() (decimal.Decimal, error) {
	total := decimal.Zero
	for _, item := range d {
		if item.Cantidad < 0 {
			return decimal.Zero, fmt.Errorf("cantidad negativa para denominación %d", item.Denominacion)
		}
		if !denominacionValida(item.Denominacion) {
			return decimal.Zero, fmt.Errorf("denominación desconocida: %d", item.Denominacion)
		}
		total = total.Add(decimal.NewFromInt(item.Denominacion).Mul(decimal.NewFromInt(int64(item.Cantidad))))
	}
	return total, nil
}
