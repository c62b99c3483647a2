package service

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"po-service/internal/order/model"
)

// Two-number policies. With exactly two numeric tokens in a line,
// qty-first-price-last takes the earliest as quantity and the latest as
// price; confirm routes the line to the confirmation protocol instead.
const (
	PolicyQtyFirstPriceLast = "qty-first-price-last"
	PolicyConfirm           = "confirm"
)

type TokenizeOptions struct {
	TwoNumberPolicy string
	StripUnits      bool
}

// A numeric token is a standalone whitespace-delimited number, so the
// digits inside codes like "ABC123" are left alone. A leading "@" marks
// prices in trade shorthand ("2 bolt @55") and is consumed with the token.
var rxNumToken = regexp.MustCompile(`^@?\d+(?:\.\d+)?$`)

// Packaging and unit words that carry no product identity.
var rxUnitTokens = regexp.MustCompile(`(?i)\b(PCS?|PIECES?|BOX|CARTON|CTN|NOS?|PKT|PACKETS?|SET|DOZ|EACH|KG|GM|MG|MM|CM|MTR|ML|LTR)\b`)

func findNumberTokens(line string) []model.NumberToken {
	var out []model.NumberToken
	i := 0
	for i < len(line) {
		// skip whitespace
		for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
			i++
		}
		start := i
		for i < len(line) && line[i] != ' ' && line[i] != '\t' {
			i++
		}
		if start == i {
			continue
		}
		tok := line[start:i]
		if !rxNumToken.MatchString(tok) {
			continue
		}
		v, err := decimal.NewFromString(strings.TrimPrefix(tok, "@"))
		if err != nil {
			continue
		}
		out = append(out, model.NumberToken{Text: tok, Value: v, Start: start, End: i})
	}
	return out
}

// removeTokens cuts the given tokens out of the raw line and collapses
// the remaining whitespace.
func removeTokens(raw string, tokens []model.NumberToken) string {
	if len(tokens) == 0 {
		return strings.Join(strings.Fields(raw), " ")
	}
	var b strings.Builder
	prev := 0
	for _, t := range tokens {
		b.WriteString(raw[prev:t.Start])
		b.WriteString(" ")
		prev = t.End
	}
	b.WriteString(raw[prev:])
	return strings.Join(strings.Fields(b.String()), " ")
}

func stripUnitWords(s string) string {
	return strings.Join(strings.Fields(rxUnitTokens.ReplaceAllString(s, " ")), " ")
}

func quantityFrom(t model.NumberToken, warnings *[]string) int {
	q := int(t.Value.IntPart())
	if !t.Value.Equal(decimal.NewFromInt(int64(q))) {
		*warnings = append(*warnings, fmt.Sprintf("fractional quantity %s truncated to %d", t.Value, q))
	}
	if q < 1 {
		*warnings = append(*warnings, fmt.Sprintf("quantity %s below 1, using 1", t.Value))
		q = 1
	}
	return q
}

// Tokenize splits one raw order line into quantity, optional price
// override and residual product text.
//
// Zero numbers: quantity 1, warning. One number: quantity. Two numbers:
// per policy. More: ambiguous, caller runs the confirmation protocol.
// Same line and options always produce the same OrderLine.
func Tokenize(raw string, opt TokenizeOptions) (model.OrderLine, error) {
	line := model.OrderLine{Raw: raw, Quantity: 1}
	tokens := findNumberTokens(raw)

	switch {
	case len(tokens) == 0:
		line.Warnings = append(line.Warnings, "no quantity found, assuming 1")
		line.Query = removeTokens(raw, nil)

	case len(tokens) == 1:
		line.Quantity = quantityFrom(tokens[0], &line.Warnings)
		line.Query = removeTokens(raw, tokens)

	case len(tokens) == 2 && opt.TwoNumberPolicy != PolicyConfirm:
		line.Quantity = quantityFrom(tokens[0], &line.Warnings)
		p := tokens[1].Value
		line.PriceOverride = &p
		line.Query = removeTokens(raw, tokens)

	default:
		amb := model.Ambiguity{Raw: raw, Tokens: tokens}
		line.Ambiguous = &amb
		return line, &model.AmbiguousError{Ambiguity: amb}
	}

	if opt.StripUnits {
		line.Query = stripUnitWords(line.Query)
	}
	return line, nil
}

// ResolveAmbiguity applies the user's role assignments to an ambiguous
// line: exactly one quantity (absent means 1), at most one price.
// Product text drops every numeric token regardless of its role.
func ResolveAmbiguity(amb model.Ambiguity, roles []model.TokenRole, opt TokenizeOptions) (model.OrderLine, error) {
	if len(roles) != len(amb.Tokens) {
		return model.OrderLine{}, fmt.Errorf("expected %d roles, got %d", len(amb.Tokens), len(roles))
	}

	line := model.OrderLine{Raw: amb.Raw, Quantity: 1}
	qtySeen, priceSeen := false, false
	for i, role := range roles {
		switch role {
		case model.RoleQuantity:
			if qtySeen {
				return model.OrderLine{}, fmt.Errorf("more than one token marked as quantity")
			}
			qtySeen = true
			line.Quantity = quantityFrom(amb.Tokens[i], &line.Warnings)
		case model.RolePrice:
			if priceSeen {
				return model.OrderLine{}, fmt.Errorf("more than one token marked as price")
			}
			priceSeen = true
			p := amb.Tokens[i].Value
			line.PriceOverride = &p
		case model.RoleIgnore:
		default:
			return model.OrderLine{}, fmt.Errorf("unknown token role %q", role)
		}
	}
	if !qtySeen {
		line.Warnings = append(line.Warnings, "no token marked as quantity, assuming 1")
	}

	line.Query = removeTokens(amb.Raw, amb.Tokens)
	if opt.StripUnits {
		line.Query = stripUnitWords(line.Query)
	}
	return line, nil
}
