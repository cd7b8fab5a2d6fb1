package model

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/immocalc/internal/money"
	"github.com/cleared-dev/immocalc/internal/period"
)

// Financing lists the equity and debt used to fund the purchase.
type Financing struct {
	Equity []EquityContribution `yaml:"equity,omitempty" json:"equity,omitempty"`
	Loans  []Loan               `yaml:"loans,omitempty" json:"loans,omitempty"`
}

// EquityContribution is cash brought in by the investor.
type EquityContribution struct {
	Source string      `yaml:"source" json:"source"`
	Amount money.Money `yaml:"amount" json:"amount"`
	Date   time.Time   `yaml:"date,omitempty" json:"date,omitempty"`
}

// LoanType selects the repayment profile.
type LoanType string

const (
	LoanAnnuity      LoanType = "annuity"
	LoanBullet       LoanType = "bullet"
	LoanKfW          LoanType = "kfw"
	LoanSubordinated LoanType = "subordinated"
)

// Loan is one debt tranche. Rates are percentages per year.
type Loan struct {
	ID                   string           `yaml:"id" json:"id"`
	Name                 string           `yaml:"name,omitempty" json:"name,omitempty"`
	Type                 LoanType         `yaml:"type" json:"type"`
	Principal            money.Money      `yaml:"principal" json:"principal"`
	DisbursementDate     period.YearMonth `yaml:"disbursement" json:"disbursement"`
	InterestRate         decimal.Decimal  `yaml:"interest_rate" json:"interestRate"`
	InitialRepaymentRate decimal.Decimal  `yaml:"initial_repayment_rate,omitempty" json:"initialRepaymentRate"`
	FixedInterestYears   int              `yaml:"fixed_interest_years,omitempty" json:"fixedInterestYears,omitempty"`
	// TermYears ends a bullet loan with a full repayment; ignored for other types.
	TermYears int `yaml:"term_years,omitempty" json:"termYears,omitempty"`

	CommitmentFee     *CommitmentFee     `yaml:"commitment_fee,omitempty" json:"commitmentFee,omitempty"`
	DisagioPercent    decimal.Decimal    `yaml:"disagio_percent,omitempty" json:"disagioPercent,omitempty"`
	GracePeriodMonths int                `yaml:"grace_period_months,omitempty" json:"gracePeriodMonths,omitempty"`
	Refinancing       *Refinancing       `yaml:"refinancing,omitempty" json:"refinancing,omitempty"`
	SpecialRepayments []SpecialRepayment `yaml:"special_repayments,omitempty" json:"specialRepayments,omitempty"`
}

// CommitmentFee charges RatePercent/12 of the principal per month from
// AgreementDate + FreeMonths until disbursement.
type CommitmentFee struct {
	AgreementDate period.YearMonth `yaml:"agreement" json:"agreement"`
	FreeMonths    int              `yaml:"free_months" json:"freeMonths"`
	RatePercent   decimal.Decimal  `yaml:"rate_percent" json:"ratePercent"`
}

// Refinancing replaces the terms once the fixed-interest period ends.
type Refinancing struct {
	InterestRate decimal.Decimal `yaml:"interest_rate" json:"interestRate"`
	// MonthlyPayment, when set, is used as-is; otherwise a fresh annuity is
	// computed from RepaymentRate on the remaining balance.
	MonthlyPayment *money.Money    `yaml:"monthly_payment,omitempty" json:"monthlyPayment,omitempty"`
	RepaymentRate  decimal.Decimal `yaml:"repayment_rate,omitempty" json:"repaymentRate,omitempty"`
}

// SpecialRepayment is an unscheduled principal payment.
type SpecialRepayment struct {
	Period period.YearMonth `yaml:"period" json:"period"`
	Amount money.Money      `yaml:"amount" json:"amount"`
}

// TotalEquity sums the equity contributions.
func (f Financing) TotalEquity(currency string) (money.Money, error) {
	total := money.Zero(currency)
	for _, e := range f.Equity {
		var err error
		if total, err = total.Add(e.Amount); err != nil {
			return money.Money{}, err
		}
	}
	return total, nil
}

// TotalDebt sums the loan principals.
func (f Financing) TotalDebt(currency string) (money.Money, error) {
	total := money.Zero(currency)
	for _, l := range f.Loans {
		var err error
		if total, err = total.Add(l.Principal); err != nil {
			return money.Money{}, err
		}
	}
	return total, nil
}
