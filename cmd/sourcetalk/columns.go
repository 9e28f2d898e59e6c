package main

import (
	"strconv"

	"sourcetalk/cmd/sourcetalk/ui"
	"sourcetalk/internal/entity"
)

var productColumns = ui.Columns[entity.Product]{
	Headers: []string{"Name", "Codename", "Category", "Qty", "Weight", "Date", "Stock"},
	Row: func(p entity.Product) []string {
		stock := "in stock"
		if !p.InStock {
			stock = "out"
		}
		if p.IsSpecial {
			stock += " ★"
		}
		return []string{
			p.Name.Value,
			p.Codename.Value,
			p.Category.Value,
			strconv.Itoa(p.Qty.Value),
			entity.FormatWeight(p.Weight.Value),
			entity.FormatDate(p.Date.Value),
			stock,
		}
	},
	Codename: func(p entity.Product) string {
		if !p.Codename.Present {
			return ""
		}
		return p.Codename.Value
	},
}

var materialColumns = ui.Columns[entity.Material]{
	Headers: []string{"Kode", "Nama", "Kelompok", "Satuan", "Harga Satuan", "Update"},
	Row: func(m entity.Material) []string {
		return []string{
			m.Kode.Value,
			m.Nama.Value,
			m.Kelompok.Value,
			m.Satuan.Value,
			entity.FormatIDR(m.HargaSatuan.Value),
			entity.FormatDate(m.TanggalUpdate.Value),
		}
	},
}

var supplierColumns = ui.Columns[entity.Supplier]{
	Headers: []string{"Kode", "Supplier", "Kelompok", "PIC", "Telepon", "Email", "Update"},
	Row: func(s entity.Supplier) []string {
		return []string{
			s.Kode.Value,
			s.NamaSupplier.Value,
			s.Kelompok.Value,
			s.PIC.Value,
			s.NomorTelepon.Value,
			s.Email.Value,
			entity.FormatDate(s.TanggalUpdate.Value),
		}
	},
}
