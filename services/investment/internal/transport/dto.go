package transport

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreateProjectRequest struct {
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Sector        string          `json:"sector"`
	Currency      string          `json:"currency"`
	TargetAmount  decimal.Decimal `json:"target_amount"`
	MinInvestment decimal.Decimal `json:"min_investment"`
	ProspectusURL string          `json:"prospectus_url"`
	StartDate     *time.Time      `json:"start_date"`
	EndDate       *time.Time      `json:"end_date"`
}

type PatchProjectRequest struct {
	Title         *string          `json:"title"`
	Description   *string          `json:"description"`
	Sector        *string          `json:"sector"`
	TargetAmount  *decimal.Decimal `json:"target_amount"`
	MinInvestment *decimal.Decimal `json:"min_investment"`
	ProspectusURL *string          `json:"prospectus_url"`
	StartDate     *time.Time       `json:"start_date"`
	EndDate       *time.Time       `json:"end_date"`
}

type RejectRequest struct {
	Reason string `json:"reason"`
}

type InvestRequest struct {
	Amount           decimal.Decimal `json:"amount"`
	TransferProofURL string          `json:"transfer_proof_url"`
}

type DistributeRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Period string          `json:"period"`
}

type ReportRequest struct {
	Title   string `json:"title"`
	Period  string `json:"period"`
	Summary string `json:"summary"`
	FileURL string `json:"file_url"`
}

type PatchReportRequest struct {
	Title   *string `json:"title"`
	Period  *string `json:"period"`
	Summary *string `json:"summary"`
	FileURL *string `json:"file_url"`
}
