package entity

import (
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// Product is a catalog item ready for display.
type Product struct {
	ID           string           `json:"id"`
	Name         Field[string]    `json:"name"`
	Category     Field[string]    `json:"category"`
	InStock      bool             `json:"inStock"`
	IsSpecial    bool             `json:"isSpecial"`
	Date         Field[time.Time] `json:"date"`
	Qty          Field[int]       `json:"qty"`
	Weight       Field[float64]   `json:"weight"`
	Codename     Field[string]    `json:"codename"`
	Filename     Field[string]    `json:"filename"`
	PartListNo   Field[string]    `json:"part_list_no"`
	ArtPtsListNo Field[string]    `json:"art_pts_list_no"`
	Pos          Field[int]       `json:"pos"`
	Qu           Field[string]    `json:"qu"`
	DrawgDocuNo  Field[string]    `json:"drawg_docu_no,omitzero"`

	// Missing names the fields that hold a sentinel instead of an upstream
	// value.
	Missing []string `json:"missing,omitempty"`
}

// Material is a construction material price entry.
type Material struct {
	ID                 string                 `json:"id"`
	Kode               Field[string]          `json:"kode"`
	KodeAhs            Field[string]          `json:"kodeAhs"`
	No                 Field[int]             `json:"no"`
	Nama               Field[string]          `json:"nama"`
	Kelompok           Field[string]          `json:"kelompok"`
	BahanUpahAlatBantu Field[string]          `json:"bahanUpahAlatBantu"`
	Satuan             Field[string]          `json:"satuan"`
	HargaSatuan        Field[decimal.Decimal] `json:"hargaSatuan"`
	Koefisien          Field[float64]         `json:"koefisien"`
	JumlahHarga        Field[decimal.Decimal] `json:"jumlahHarga"`
	TanggalUpdate      Field[time.Time]       `json:"tanggalUpdate"`
	CreatedAt          Field[time.Time]       `json:"createdAt"`
	Missing            []string               `json:"missing,omitempty"`
}

// Supplier is a supplier directory entry.
type Supplier struct {
	ID            string           `json:"id"`
	Kode          Field[string]    `json:"kode"`
	Kelompok      Field[string]    `json:"kelompok"`
	NamaSupplier  Field[string]    `json:"namaSupplier"`
	Alamat        Field[string]    `json:"alamat"`
	NomorTelepon  Field[string]    `json:"nomorTelepon"`
	Email         Field[string]    `json:"email"`
	PIC           Field[string]    `json:"pic"`
	HP            Field[string]    `json:"hp"`
	TanggalUpdate Field[time.Time] `json:"tanggalUpdate"`
	CreatedAt     Field[time.Time] `json:"createdAt"`
	Missing       []string         `json:"missing,omitempty"`
}

// FormatIDR renders an amount in rupiah with dot grouping, e.g.
// "Rp 1.250.000". Amounts are rounded to whole rupiah.
func FormatIDR(amount decimal.Decimal) string {
	f, _ := amount.Round(0).Float64()
	return "Rp " + humanize.FormatFloat("#.###,", f)
}

// FormatDate renders a calendar date the way the listings show it.
func FormatDate(t time.Time) string {
	return t.Format("02 Jan 2006")
}

// FormatWeight renders a weight in kilograms.
func FormatWeight(kg float64) string {
	return humanize.FormatFloat("#,###.##", kg) + " kg"
}
