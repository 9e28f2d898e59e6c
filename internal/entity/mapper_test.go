package entity

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

func fixedMapper() Mapper {
	return Mapper{Now: func() time.Time { return fixedNow }}
}

func TestProduct_FullRecord(t *testing.T) {
	raw := json.RawMessage(`{
		"id": 42,
		"title": "Hex Bolt M12",
		"art_pts_list_no": "ART-7",
		"qty": 15,
		"weight": "2.5",
		"bg": "X",
		"date": "03.11.2023",
		"codename": "ALPHA",
		"filename": "sheet-01.pdf",
		"part_list_no": "PL-1",
		"pos": 3,
		"qu": "pcs",
		"drawg_docu_no": "D-99"
	}`)

	p := fixedMapper().Product(raw)

	assert.Equal(t, "42", p.ID)
	assert.Equal(t, Some("Hex Bolt M12"), p.Name)
	assert.Equal(t, "ART-7", p.Category.Value)
	assert.True(t, p.InStock)
	assert.True(t, p.IsSpecial)
	assert.Equal(t, time.Date(2023, 11, 3, 0, 0, 0, 0, time.UTC), p.Date.Value)
	assert.Equal(t, 15, p.Qty.Value)
	assert.Equal(t, 2.5, p.Weight.Value)
	assert.Equal(t, Some("D-99"), p.DrawgDocuNo)
	assert.Empty(t, p.Missing)
}

func TestProduct_EmptyRecordUsesSentinels(t *testing.T) {
	p := fixedMapper().Product(json.RawMessage(`{}`))

	assert.Equal(t, Missing(UntitledItem), p.Name)
	assert.Equal(t, Missing(DefaultCategory), p.Category)
	assert.False(t, p.InStock)
	assert.False(t, p.IsSpecial)
	assert.Equal(t, fixedNow, p.Date.Value)
	assert.False(t, p.Date.Present)
	assert.False(t, p.DrawgDocuNo.Present)
	assert.Contains(t, p.Missing, "name")
	assert.Contains(t, p.Missing, "date")
}

func TestProduct_UnparsableDateIsNow(t *testing.T) {
	before := time.Now()
	p := Mapper{}.Product(json.RawMessage(`{"title": "x", "date": "bad"}`))
	after := time.Now()

	assert.False(t, p.Date.Present)
	assert.WithinRange(t, p.Date.Value, before, after)
}

func TestProduct_ZeroQuantityIsOutOfStock(t *testing.T) {
	p := fixedMapper().Product(json.RawMessage(`{"qty": 0, "bg": null}`))
	assert.True(t, p.Qty.Present)
	assert.False(t, p.InStock)
	assert.False(t, p.IsSpecial)
}

func TestMapper_NonObjectRecords(t *testing.T) {
	for _, raw := range []string{`null`, `[]`, `"text"`, `12`, `{broken`} {
		t.Run(raw, func(t *testing.T) {
			m := fixedMapper()
			p := m.Product(json.RawMessage(raw))
			assert.Equal(t, UntitledItem, p.Name.Value)

			mat := m.Material(json.RawMessage(raw))
			assert.Equal(t, UnnamedMaterial, mat.Nama.Value)

			s := m.Supplier(json.RawMessage(raw))
			assert.Equal(t, UnnamedSupplier, s.NamaSupplier.Value)
		})
	}
}

func TestMaterial_MissingPriceIsZero(t *testing.T) {
	mat := fixedMapper().Material(json.RawMessage(`{"id": 1, "nama": "Semen Portland"}`))

	assert.True(t, mat.HargaSatuan.Value.Equal(decimal.Zero))
	assert.False(t, mat.HargaSatuan.Present)
	assert.Contains(t, mat.Missing, "hargaSatuan")
	assert.Equal(t, Missing(NotAvailable), mat.Kode)
	assert.Equal(t, Missing(DefaultUnit), mat.Satuan)
	assert.Equal(t, Missing(DefaultCategory), mat.Kelompok)
}

func TestMaterial_FullRecord(t *testing.T) {
	raw := json.RawMessage(`{
		"id": 7,
		"kode": "M.01",
		"kode_ahs": "A.2.3",
		"no": 12,
		"kelompok": "Bahan",
		"bahan_upah_alat_bantu": "Semen",
		"satuan": "zak",
		"harga_satuan": 72500.50,
		"koefisien": 0.25,
		"jumlah_harga": "18125.125",
		"tanggal_update": "2024-02-29",
		"createdAt": "2024-03-01T08:15:00.000Z"
	}`)

	mat := fixedMapper().Material(raw)

	assert.Equal(t, "Semen", mat.Nama.Value, "falls back to bahan_upah_alat_bantu")
	assert.True(t, mat.Nama.Present)
	assert.Equal(t, "72500.5", mat.HargaSatuan.Value.String())
	assert.Equal(t, "18125.125", mat.JumlahHarga.Value.String())
	assert.Equal(t, 0.25, mat.Koefisien.Value)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), mat.TanggalUpdate.Value)
	assert.Equal(t, time.Date(2024, 3, 1, 8, 15, 0, 0, time.UTC), mat.CreatedAt.Value)
	assert.Empty(t, mat.Missing)
}

func TestMaterial_WrongTypes(t *testing.T) {
	mat := fixedMapper().Material(json.RawMessage(`{"harga_satuan": {"x": 1}, "no": true, "nama": ""}`))
	assert.False(t, mat.HargaSatuan.Present)
	assert.False(t, mat.No.Present)
	assert.Equal(t, UnnamedMaterial, mat.Nama.Value)
}

func TestSupplier_Sentinels(t *testing.T) {
	s := fixedMapper().Supplier(json.RawMessage(`{"id": "s-1", "nama_supplier": "PT Maju", "email": null, "hp": "   "}`))

	assert.Equal(t, "s-1", s.ID)
	assert.Equal(t, Some("PT Maju"), s.NamaSupplier)
	assert.Equal(t, Missing(NotAvailable), s.Email)
	assert.Equal(t, Missing(NotAvailable), s.HP)
	assert.Equal(t, fixedNow, s.CreatedAt.Value)
}

func TestMapper_OnMissing(t *testing.T) {
	counts := map[string]int{}
	m := Mapper{
		Now:       func() time.Time { return fixedNow },
		OnMissing: func(kind, field string) { counts[kind+"."+field]++ },
	}

	m.Suppliers([]json.RawMessage{json.RawMessage(`{}`), json.RawMessage(`{"email": "a@b.c"}`)})

	assert.Equal(t, 2, counts["supplier.namaSupplier"])
	assert.Equal(t, 1, counts["supplier.email"])
}

func TestField_JSON(t *testing.T) {
	p := fixedMapper().Product(json.RawMessage(`{"title": "Nut", "qty": 3}`))

	data, err := json.Marshal(p)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, "Nut", out["name"])
	assert.Equal(t, float64(3), out["qty"])
	assert.Equal(t, DefaultCategory, out["category"])
	assert.NotContains(t, out, "drawg_docu_no")
	assert.Contains(t, out["missing"], "category")

	var f Field[string]
	require.NoError(t, json.Unmarshal([]byte(`null`), &f))
	assert.False(t, f.Present)
	require.NoError(t, json.Unmarshal([]byte(`"x"`), &f))
	assert.Equal(t, Some("x"), f)
}

func TestField_Or(t *testing.T) {
	assert.Equal(t, "real", Some("real").Or("-"))
	assert.Equal(t, "-", Missing(NotAvailable).Or("-"))
	assert.Equal(t, "N/A", Missing(NotAvailable).String())
}

func TestParseTime(t *testing.T) {
	tests := map[string]time.Time{
		"2024-05-17":               time.Date(2024, 5, 17, 0, 0, 0, 0, time.UTC),
		"17.05.2024":               time.Date(2024, 5, 17, 0, 0, 0, 0, time.UTC),
		"7.5.2024":                 time.Date(2024, 5, 7, 0, 0, 0, 0, time.UTC),
		"2024-05-17T10:00:00Z":     time.Date(2024, 5, 17, 10, 0, 0, 0, time.UTC),
		"2024-05-17T10:00:00.123Z": time.Date(2024, 5, 17, 10, 0, 0, 123000000, time.UTC),
	}
	for in, want := range tests {
		got, ok := ParseTime(in)
		require.True(t, ok, in)
		assert.True(t, want.Equal(got), "%s: got %v", in, got)
	}

	_, ok := ParseTime("bad")
	assert.False(t, ok)
	_, ok = ParseTime("31.02.2024")
	assert.False(t, ok)
}

func TestFormatIDR(t *testing.T) {
	assert.Equal(t, "Rp 1.250.000", FormatIDR(decimal.NewFromInt(1250000)))
	assert.Equal(t, "Rp 0", FormatIDR(decimal.Zero))
	assert.Equal(t, "Rp 72.501", FormatIDR(decimal.RequireFromString("72500.5")))
}

func TestMapper_NonFiniteNumbersUseSentinels(t *testing.T) {
	m := fixedMapper()

	p := m.Product(json.RawMessage(`{"title": "x", "weight": "NaN", "qty": "Inf", "pos": 1e30}`))
	assert.Equal(t, Missing(0.0), p.Weight)
	assert.Equal(t, Missing(0), p.Qty)
	assert.False(t, p.InStock)
	assert.Contains(t, p.Missing, "weight")
	assert.Contains(t, p.Missing, "qty")
	_, err := json.Marshal(p)
	require.NoError(t, err)

	mat := m.Material(json.RawMessage(`{"no": "-Inf", "koefisien": "nan"}`))
	assert.False(t, mat.No.Present)
	assert.False(t, mat.Koefisien.Present)
	_, err = json.Marshal(mat)
	require.NoError(t, err)
}

func TestMaterial_MissingUpdateDateIsToday(t *testing.T) {
	mat := fixedMapper().Material(json.RawMessage(`{"nama": "Semen"}`))
	assert.False(t, mat.TanggalUpdate.Present)
	assert.Equal(t, time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC), mat.TanggalUpdate.Value)
	assert.Equal(t, fixedNow, mat.CreatedAt.Value)

	s := fixedMapper().Supplier(json.RawMessage(`{}`))
	assert.Equal(t, time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC), s.TanggalUpdate.Value)
}
