// Package ofx turns OFX/QFX bank and credit-card statements into expense drafts.
package ofx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/Veraticus/tally/internal/common"
	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"
)

// ErrNotDebit marks statement lines that are not spending.
var ErrNotDebit = errors.New("not a debit")

// Draft is one debit taken from a statement, not yet in the ledger.
type Draft struct {
	Date    time.Time
	FITID   string
	Account string
	Payee   string
	Amount  int64
}

// Stats counts what a parse kept and dropped.
type Stats struct {
	Debits  int
	Credits int
	Zero    int
}

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	openTagRegex  = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// Parser reads OFX/QFX statements.
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a new OFX parser.
func NewParser(logger *slog.Logger) *Parser {
	return &Parser{logger: common.OrDefault(logger)}
}

// preprocessOFX fixes formatting issues some banks emit.
func preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)
	// SGML files sometimes drop the closing bracket of a bare opening tag.
	return openTagRegex.ReplaceAllString(content, "$1>")
}

func (p *Parser) parse(reader io.Reader) (*ofxgo.Response, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}
	return resp, nil
}

// ParseFile returns the debits of every bank and credit-card statement in the
// file, in statement order. Posting times are converted to local time.
func (p *Parser) ParseFile(ctx context.Context, reader io.Reader) ([]Draft, Stats, error) {
	resp, err := p.parse(reader)
	if err != nil {
		return nil, Stats{}, err
	}

	var (
		drafts []Draft
		stats  Stats
	)

	collect := func(account string, list *ofxgo.TransactionList) error {
		if list == nil {
			return nil
		}
		for _, tx := range list.Transactions {
			if err := ctx.Err(); err != nil {
				return err
			}

			draft, err := convertTransaction(tx, account)
			switch {
			case errors.Is(err, ErrNotDebit):
				stats.Credits++
				continue
			case errors.Is(err, common.ErrInvalidAmount):
				stats.Zero++
				p.logger.Debug("skipping debit that rounds to zero", "fitid", tx.FiTID, "amount", tx.TrnAmt.String())
				continue
			case err != nil:
				return err
			}

			stats.Debits++
			drafts = append(drafts, draft)
		}
		return nil
	}

	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok {
			if err := collect(string(stmt.BankAcctFrom.AcctID), stmt.BankTranList); err != nil {
				return nil, stats, err
			}
		}
	}

	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok {
			if err := collect(string(stmt.CCAcctFrom.AcctID), stmt.BankTranList); err != nil {
				return nil, stats, err
			}
		}
	}

	p.logger.Info("Parsed OFX file",
		"debits", stats.Debits,
		"credits_skipped", stats.Credits,
		"zero_skipped", stats.Zero)

	return drafts, stats, nil
}

// convertTransaction maps a statement line onto a draft.
func convertTransaction(tx ofxgo.Transaction, account string) (Draft, error) {
	amount, err := decimal.NewFromString(tx.TrnAmt.FloatString(8))
	if err != nil {
		return Draft{}, fmt.Errorf("transaction %s: invalid amount: %w", tx.FiTID, err)
	}
	// OFX signs debits negative.
	if !amount.IsNegative() {
		return Draft{}, ErrNotDebit
	}

	whole := RoundAmount(amount)
	if whole <= 0 {
		return Draft{}, common.ErrInvalidAmount
	}

	return Draft{
		Date:    tx.DtPosted.Time.Local(),
		FITID:   string(tx.FiTID),
		Account: account,
		Payee:   payeeName(tx),
		Amount:  whole,
	}, nil
}

// RoundAmount returns |amount| rounded half-up to whole units.
func RoundAmount(amount decimal.Decimal) int64 {
	return amount.Abs().Round(0).IntPart()
}

var purchasePrefixes = []string{
	"POS PURCHASE ",
	"PURCHASE AUTHORIZED ON ",
	"DEBIT CARD PURCHASE ",
	"ACH DEBIT ",
	"CHECK CARD ",
	"VISA PURCHASE ",
	"MC PURCHASE ",
	"DEBIT PURCHASE ",
}

var genericNames = map[string]bool{
	"DEBIT":           true,
	"CREDIT":          true,
	"PURCHASE":        true,
	"PAYMENT":         true,
	"POS TRANSACTION": true,
	"CARD PURCHASE":   true,
}

// payeeName picks the most readable merchant name on the line.
func payeeName(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return strings.TrimSpace(string(tx.Payee.Name))
	}

	name := strings.TrimSpace(string(tx.Name))
	if tx.Memo != "" && genericNames[strings.ToUpper(name)] {
		name = strings.TrimSpace(string(tx.Memo))
	}

	upper := strings.ToUpper(name)
	for _, prefix := range purchasePrefixes {
		if strings.HasPrefix(upper, prefix) {
			name = name[len(prefix):]
			break
		}
	}

	// Leading "MM/DD " posting dates.
	if len(name) > 5 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}

	return name
}

// Accounts lists the distinct account IDs in the file, sorted.
func (p *Parser) Accounts(reader io.Reader) ([]string, error) {
	resp, err := p.parse(reader)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok && stmt.BankAcctFrom.AcctID != "" {
			seen[string(stmt.BankAcctFrom.AcctID)] = true
		}
	}
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok && stmt.CCAcctFrom.AcctID != "" {
			seen[string(stmt.CCAcctFrom.AcctID)] = true
		}
	}

	accounts := make([]string, 0, len(seen))
	for acct := range seen {
		accounts = append(accounts, acct)
	}
	sort.Strings(accounts)
	return accounts, nil
}
