package service

import (
	"time"

	"tiketi/internal/domain"
	"tiketi/internal/repository"
)

type DebtRow struct {
	PartnerID           uint   `json:"partner_id"`
	PartnerName         string `json:"partner_name"`
	FeeOutstandingCents int64  `json:"fee_outstanding_cents"`
	FeePaidCents        int64  `json:"fee_paid_cents"`
	FeeStatus           string `json:"fee_status"` // settled, due
}

type DebtReport struct {
	GeneratedAt           time.Time `json:"generated_at"`
	TotalOutstandingCents int64     `json:"total_outstanding_cents"`
	TotalPaidCents        int64     `json:"total_paid_cents"`
	SettledCount          int       `json:"settled_count"`
	DueCount              int       `json:"due_count"`
	Partners              []DebtRow `json:"partners"`
}

// ReportService aggregates outstanding service fees across partners.
// Read-only: it derives everything from ledger rows and the partner
// directory and mutates nothing.
type ReportService struct {
	ledgerRepo  *repository.LedgerRepository
	partnerRepo *repository.PartnerRepository
}

func NewReportService(ledgerRepo *repository.LedgerRepository, partnerRepo *repository.PartnerRepository) *ReportService {
	return &ReportService{ledgerRepo: ledgerRepo, partnerRepo: partnerRepo}
}

// GenerateDebtReport summarizes fee debt per partner plus system-wide sums.
// Any outstanding balance above zero counts as due; there is no partial tier.
// An empty partner set yields zero rows and zero sums.
func (s *ReportService) GenerateDebtReport() (*DebtReport, error) {
	ledgers, err := s.ledgerRepo.List()
	if err != nil {
		return nil, err
	}
	partners, err := s.partnerRepo.List()
	if err != nil {
		return nil, err
	}
	names := make(map[uint]string, len(partners))
	for _, p := range partners {
		names[p.ID] = p.Name
	}

	report := &DebtReport{
		GeneratedAt: time.Now(),
		Partners:    make([]DebtRow, 0, len(ledgers)),
	}
	for _, l := range ledgers {
		row := DebtRow{
			PartnerID:           l.PartnerID,
			PartnerName:         names[l.PartnerID],
			FeeOutstandingCents: l.ServiceFeeCents,
			FeePaidCents:        l.WithdrawnFeeCents,
		}
		if l.ServiceFeeCents > 0 {
			row.FeeStatus = domain.FeeStatusDue
			report.DueCount++
		} else {
			row.FeeStatus = domain.FeeStatusSettled
			report.SettledCount++
		}
		report.TotalOutstandingCents += row.FeeOutstandingCents
		report.TotalPaidCents += row.FeePaidCents
		report.Partners = append(report.Partners, row)
	}
	return report, nil
}
