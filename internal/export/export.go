// Package export renders a calculated bill as a CSV grid or as a short text
// summary for sharing.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmynk/billsplit/internal/calculator"
	"github.com/mmynk/billsplit/internal/currency"
	"github.com/mmynk/billsplit/internal/models"
)

const dateLayout = "2 Jan 2006"

// CSV renders one row per item and one column per person, followed by the
// bill-level trailer rows and payee details.
func CSV(snap *models.Snapshot) ([]byte, error) {
	totals := calculator.CalculateBill(snap)
	code := snap.Bill.Currency

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	header := []string{"Item", "Total"}
	for _, p := range snap.People {
		header = append(header, p.Name)
	}
	if err := writer.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, item := range snap.Items {
		row := []string{item.Name, amount(item.TotalAmount(), code)}
		for _, p := range snap.People {
			owed, ok := owedFor(snap, item.ID, p.ID)
			if !ok {
				row = append(row, "")
				continue
			}
			row = append(row, amount(owed, code))
		}
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	trailers := []struct {
		label  string
		bill   decimal.Decimal
		person func(calculator.PersonBreakdown) decimal.Decimal
	}{
		{"Subtotal", totals.Subtotal, func(p calculator.PersonBreakdown) decimal.Decimal { return p.Subtotal }},
		{"Discount (" + currency.Percent(snap.Bill.DiscountPercentage) + ")", totals.DiscountAmount.Neg(), func(p calculator.PersonBreakdown) decimal.Decimal { return p.DiscountAmount.Neg() }},
		{"Service Charge (" + currency.Percent(snap.Bill.ServiceChargePercentage) + ")", totals.ServiceCharge, func(p calculator.PersonBreakdown) decimal.Decimal { return p.ServiceCharge }},
		{"Tax (" + currency.Percent(snap.Bill.TaxPercentage) + ")", totals.Tax, func(p calculator.PersonBreakdown) decimal.Decimal { return p.Tax }},
		{"Total", totals.GrandTotal, func(p calculator.PersonBreakdown) decimal.Decimal { return p.FinalAmount }},
	}
	if err := writer.Write(nil); err != nil {
		return nil, fmt.Errorf("failed to write CSV row: %w", err)
	}
	for _, tr := range trailers {
		row := []string{tr.label, amount(tr.bill, code)}
		for _, p := range totals.People {
			row = append(row, amount(tr.person(p), code))
		}
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	paid := []string{"Paid", ""}
	for _, p := range totals.People {
		paid = append(paid, yesNo(p.HasPaid))
	}
	if err := writer.Write(paid); err != nil {
		return nil, fmt.Errorf("failed to write CSV row: %w", err)
	}

	for _, field := range [][2]string{
		{"Payee", snap.Bill.PayeeName},
		{"Payment Method", snap.Bill.PayeeMethod},
		{"Payment Details", snap.Bill.PayeeDetails},
	} {
		if field[1] == "" {
			continue
		}
		if err := writer.Write([]string{field[0], field[1]}); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

// Summary renders a short plain-text summary of who owes what.
func Summary(snap *models.Snapshot) string {
	totals := calculator.CalculateBill(snap)
	code := snap.Bill.Currency

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s (%s)\n", snap.Bill.Name, snap.Bill.Date.Format(dateLayout))
	fmt.Fprintf(&sb, "Total: %s\n", currency.Format(totals.GrandTotal, code))

	if len(totals.People) > 0 {
		sb.WriteString("\n")
	}
	for _, p := range totals.People {
		fmt.Fprintf(&sb, "%s: %s", p.Name, currency.Format(p.FinalAmount, code))
		if p.HasPaid {
			sb.WriteString(" (paid)")
		}
		sb.WriteString("\n")
	}

	if totals.UnassignedAmount.IsPositive() {
		fmt.Fprintf(&sb, "\nUnassigned: %s\n", currency.Format(totals.UnassignedAmount, code))
	} else if !totals.IsReconciled() {
		fmt.Fprintf(&sb, "\nDoes not add up: off by %s\n", currency.Format(totals.Difference, code))
	}

	if snap.Bill.PayeeName != "" {
		fmt.Fprintf(&sb, "\nPay to %s", snap.Bill.PayeeName)
		if snap.Bill.PayeeMethod != "" {
			fmt.Fprintf(&sb, " via %s", snap.Bill.PayeeMethod)
		}
		if snap.Bill.PayeeDetails != "" {
			fmt.Fprintf(&sb, ": %s", snap.Bill.PayeeDetails)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// owedFor sums the splits one person has on one item.
func owedFor(snap *models.Snapshot, itemID, personID string) (decimal.Decimal, bool) {
	sum := decimal.Zero
	found := false
	for _, s := range snap.SplitsForItem(itemID) {
		if s.PersonID == personID {
			sum = sum.Add(s.Amount)
			found = true
		}
	}
	return sum, found
}

func amount(v decimal.Decimal, code string) string {
	return currency.Round(v, code).StringFixed(currency.Places(code))
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
