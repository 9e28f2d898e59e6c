package entity

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Kinds of entity, as reported to Mapper.OnMissing.
const (
	KindProduct  = "product"
	KindMaterial = "material"
	KindSupplier = "supplier"
)

// Display sentinels.
const (
	NotAvailable    = "N/A"
	DefaultCategory = "General"
	DefaultUnit     = "Hr"
	UntitledItem    = "Untitled Item"
	UnnamedMaterial = "Unnamed Material"
	UnnamedSupplier = "Unnamed Supplier"
	specialItemFlag = "X"
)

// Mapper converts raw records into display entities. The zero value is
// ready to use.
type Mapper struct {
	// Now supplies the timestamp substituted for missing or unparsable
	// dates. Defaults to time.Now.
	Now func() time.Time

	// OnMissing, when set, is called once per substituted field.
	OnMissing func(kind, field string)
}

func (m Mapper) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

// fields reads one record, remembering which values were substituted.
type fields struct {
	r       record
	kind    string
	now     time.Time
	missing []string
	report  func(kind, field string)
}

func (m Mapper) begin(kind string, raw json.RawMessage) *fields {
	return &fields{
		r:      decodeRecord(raw),
		kind:   kind,
		now:    m.now(),
		report: m.OnMissing,
	}
}

func (f *fields) miss(name string) {
	f.missing = append(f.missing, name)
	if f.report != nil {
		f.report(f.kind, name)
	}
}

func (f *fields) str(key, name, sentinel string) Field[string] {
	if v, ok := f.r.str(key); ok {
		return Some(v)
	}
	f.miss(name)
	return Missing(sentinel)
}

func (f *fields) integer(key, name string) Field[int] {
	if v, ok := f.r.integer(key); ok {
		return Some(v)
	}
	f.miss(name)
	return Missing(0)
}

func (f *fields) number(key, name string) Field[float64] {
	if v, ok := f.r.number(key); ok {
		return Some(v)
	}
	f.miss(name)
	return Missing(0.0)
}

func (f *fields) money(key, name string) Field[decimal.Decimal] {
	if v, ok := f.r.money(key); ok {
		return Some(v)
	}
	f.miss(name)
	return Missing(decimal.Zero)
}

func (f *fields) timestamp(key, name string) Field[time.Time] {
	if v, ok := f.r.timestamp(key); ok {
		return Some(v)
	}
	f.miss(name)
	return Missing(f.now)
}

// date is timestamp truncated to the calendar day. The "now" sentinel is
// kept whole.
func (f *fields) date(key, name string) Field[time.Time] {
	t := f.timestamp(key, name)
	if !t.Present {
		return t
	}
	t.Value = truncateDay(t.Value)
	return t
}

// day is date with the sentinel truncated too, to today's UTC date.
func (f *fields) day(key, name string) Field[time.Time] {
	t := f.date(key, name)
	if !t.Present {
		t.Value = truncateDay(t.Value.UTC())
	}
	return t
}

func truncateDay(t time.Time) time.Time {
	y, mo, d := t.Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, t.Location())
}

// Product maps a catalog record.
func (m Mapper) Product(raw json.RawMessage) Product {
	f := m.begin(KindProduct, raw)

	p := Product{
		ID:           f.r.id(),
		Name:         f.str("title", "name", UntitledItem),
		Category:     f.str("art_pts_list_no", "category", DefaultCategory),
		Date:         f.date("date", "date"),
		Qty:          f.integer("qty", "qty"),
		Weight:       f.number("weight", "weight"),
		Codename:     f.str("codename", "codename", ""),
		Filename:     f.str("filename", "filename", ""),
		PartListNo:   f.str("part_list_no", "part_list_no", ""),
		ArtPtsListNo: f.str("art_pts_list_no", "art_pts_list_no", ""),
		Pos:          f.integer("pos", "pos"),
		Qu:           f.str("qu", "qu", ""),
	}
	if v, ok := f.r.str("drawg_docu_no"); ok {
		p.DrawgDocuNo = Some(v)
	}
	bg, _ := f.r.str("bg")

	p.InStock = p.Qty.Value > 0
	p.IsSpecial = bg == specialItemFlag
	p.Missing = f.missing
	return p
}

// Material maps a material record.
func (m Mapper) Material(raw json.RawMessage) Material {
	f := m.begin(KindMaterial, raw)

	mat := Material{
		ID:      f.r.id(),
		Kode:    f.str("kode", "kode", NotAvailable),
		KodeAhs: f.str("kode_ahs", "kodeAhs", NotAvailable),
		No:      f.integer("no", "no"),
	}
	if v, ok := f.r.str("nama"); ok {
		mat.Nama = Some(v)
	} else if v, ok := f.r.str("bahan_upah_alat_bantu"); ok {
		mat.Nama = Some(v)
	} else {
		f.miss("nama")
		mat.Nama = Missing(UnnamedMaterial)
	}
	mat.Kelompok = f.str("kelompok", "kelompok", DefaultCategory)
	mat.BahanUpahAlatBantu = f.str("bahan_upah_alat_bantu", "bahanUpahAlatBantu", "")
	mat.Satuan = f.str("satuan", "satuan", DefaultUnit)
	mat.HargaSatuan = f.money("harga_satuan", "hargaSatuan")
	mat.Koefisien = f.number("koefisien", "koefisien")
	mat.JumlahHarga = f.money("jumlah_harga", "jumlahHarga")
	mat.TanggalUpdate = f.day("tanggal_update", "tanggalUpdate")
	mat.CreatedAt = f.timestamp("createdAt", "createdAt")
	mat.Missing = f.missing
	return mat
}

// Supplier maps a supplier record.
func (m Mapper) Supplier(raw json.RawMessage) Supplier {
	f := m.begin(KindSupplier, raw)

	s := Supplier{
		ID:            f.r.id(),
		Kode:          f.str("kode", "kode", NotAvailable),
		Kelompok:      f.str("kelompok", "kelompok", DefaultCategory),
		NamaSupplier:  f.str("nama_supplier", "namaSupplier", UnnamedSupplier),
		Alamat:        f.str("alamat", "alamat", NotAvailable),
		NomorTelepon:  f.str("nomor_telepon", "nomorTelepon", NotAvailable),
		Email:         f.str("email", "email", NotAvailable),
		PIC:           f.str("pic", "pic", NotAvailable),
		HP:            f.str("hp", "hp", NotAvailable),
		TanggalUpdate: f.day("tanggal_update", "tanggalUpdate"),
		CreatedAt:     f.timestamp("createdAt", "createdAt"),
	}
	s.Missing = f.missing
	return s
}

// Products maps a page of catalog records.
func (m Mapper) Products(raw []json.RawMessage) []Product {
	out := make([]Product, len(raw))
	for i, r := range raw {
		out[i] = m.Product(r)
	}
	return out
}

// Materials maps a page of material records.
func (m Mapper) Materials(raw []json.RawMessage) []Material {
	out := make([]Material, len(raw))
	for i, r := range raw {
		out[i] = m.Material(r)
	}
	return out
}

// Suppliers maps a page of supplier records.
func (m Mapper) Suppliers(raw []json.RawMessage) []Supplier {
	out := make([]Supplier, len(raw))
	for i, r := range raw {
		out[i] = m.Supplier(r)
	}
	return out
}
