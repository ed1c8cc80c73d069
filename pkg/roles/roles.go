// Package roles lists the user roles known to every service.
package roles

import "slices"

const (
	Investor        = "INVESTOR"
	ProjectOwner    = "PROJECT_OWNER"
	Buyer           = "BUYER"
	Seller          = "SELLER"
	SuperAdmin      = "SUPER_ADMIN"
	InvestmentAdmin = "INVESTMENT_ADMIN"
	TradingAdmin    = "TRADING_ADMIN"
)

var (
	// SelfService are the roles a user may pick at registration.
	SelfService = []string{Investor, ProjectOwner, Buyer, Seller}
	Admins      = []string{SuperAdmin, InvestmentAdmin, TradingAdmin}

	TradingStaff    = []string{TradingAdmin, SuperAdmin}
	InvestmentStaff = []string{InvestmentAdmin, SuperAdmin}
)

func Valid(role string) bool {
	return slices.Contains(SelfService, role) || slices.Contains(Admins, role)
}

func IsAdmin(role string) bool { return slices.Contains(Admins, role) }

func IsTradingStaff(role string) bool { return slices.Contains(TradingStaff, role) }

func IsInvestmentStaff(role string) bool { return slices.Contains(InvestmentStaff, role) }
