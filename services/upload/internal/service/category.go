package service

import (
	"slices"

	"github.com/Skotchmaster/tradefund/pkg/roles"
)

const (
	mb = 1 << 20

	mimeJPEG = "image/jpeg"
	mimePNG  = "image/png"
	mimeWEBP = "image/webp"
	mimePDF  = "application/pdf"
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Category is one kind of asset with its own directory, size cap and MIME allow list.
type Category struct {
	Name     string
	MaxBytes int64
	Allowed  []string
	// Roles that may upload; nil means any signed-in user.
	Roles []string
}

func (c Category) permits(role string) bool {
	return c.Roles == nil || slices.Contains(c.Roles, role) || role == roles.SuperAdmin
}

var categories = []Category{
	{Name: "kyc", MaxBytes: 5 * mb, Allowed: []string{mimeJPEG, mimePNG, mimePDF}},
	{Name: "transfer-proof", MaxBytes: 5 * mb, Allowed: []string{mimeJPEG, mimePNG, mimePDF},
		Roles: append([]string{roles.Investor}, roles.InvestmentStaff...)},
	{Name: "prospectus", MaxBytes: 10 * mb, Allowed: []string{mimePDF},
		Roles: append([]string{roles.ProjectOwner}, roles.InvestmentStaff...)},
	{Name: "financial-report", MaxBytes: 10 * mb, Allowed: []string{mimePDF, mimeXLSX},
		Roles: append([]string{roles.ProjectOwner}, roles.InvestmentStaff...)},
	{Name: "product-image", MaxBytes: 5 * mb, Allowed: []string{mimeJPEG, mimePNG, mimeWEBP},
		Roles: append([]string{roles.Seller}, roles.TradingStaff...)},
	{Name: "company-logo", MaxBytes: 5 * mb, Allowed: []string{mimeJPEG, mimePNG, mimeWEBP},
		Roles: append([]string{roles.Seller}, roles.TradingStaff...)},
	{Name: "company-profile", MaxBytes: 10 * mb, Allowed: []string{mimePDF},
		Roles: append([]string{roles.Seller}, roles.TradingStaff...)},
}

func Lookup(name string) (Category, bool) {
	for _, c := range categories {
		if c.Name == name {
			return c, true
		}
	}
	return Category{}, false
}

func CategoryNames() []string {
	out := make([]string, 0, len(categories))
	for _, c := range categories {
		out = append(out, c.Name)
	}
	return out
}

// MaxUploadBytes is the largest cap over all categories.
func MaxUploadBytes() int64 {
	var m int64
	for _, c := range categories {
		m = max(m, c.MaxBytes)
	}
	return m
}
