package report

import (
	"fmt"
	"log/slog"

	"golang.org/x/text/unicode/norm"
)

// Parser validates raw parameter records into canonical Parameters.
type Parser struct {
	maxParams int
	formulas  FormulaResolver
	logger    *slog.Logger
}

// NewParser creates a parser bounded to maxParams surviving parameters.
// A maxParams outside [1, MaxParamsCeiling] falls back to DefaultMaxParams.
// formulas may be nil, in which case formula defaults are never resolved.
func NewParser(maxParams int, formulas FormulaResolver) *Parser {
	if maxParams < 1 || maxParams > MaxParamsCeiling {
		maxParams = DefaultMaxParams
	}
	return &Parser{
		maxParams: maxParams,
		formulas:  formulas,
		logger:    slog.Default().With("component", "report.parser"),
	}
}

// WithLogger replaces the parser logger.
func (p *Parser) WithLogger(l *slog.Logger) *Parser {
	if l != nil {
		p.logger = l
	}
	return p
}

// MaxParams returns the capacity the parser enforces.
func (p *Parser) MaxParams() int { return p.maxParams }

// Parse drops hidden records, resolves the rest in order and assigns
// contiguous slot indices starting at 0.
func (p *Parser) Parse(records []RawParamRecord) ([]Parameter, error) {
	params := make([]Parameter, 0, len(records))
	for i, rec := range records {
		if rec.Attributes == nil {
			return nil, newError(CodeMissingAttributes, rec.Name, rec.ValueType,
				fmt.Sprintf("parameter record %d received with no attributes", i), nil)
		}
		if rec.Hidden() {
			p.logger.Debug("skipping hidden parameter", "name", rec.Name)
			continue
		}
		param, err := p.parseOne(rec)
		if err != nil {
			return nil, err
		}
		param.SlotIndex = len(params)
		params = append(params, param)
	}

	if len(params) > p.maxParams {
		return nil, newError(CodeTooManyParameters, "", "",
			fmt.Sprintf("too many report parameters (%d, capacity %d)", len(params), p.maxParams), nil)
	}
	return params, nil
}

func (p *Parser) parseOne(rec RawParamRecord) (Parameter, error) {
	if rec.Name == "" {
		return Parameter{}, newError(CodeMissingParameterName, "", rec.ValueType, "unnamed parameter encountered", nil)
	}

	t, err := MapType(rec.ValueType, rec.Attributes[AttrDataFormat])
	if err != nil {
		if e, ok := err.(*Error); ok {
			e.Parameter = rec.Name
		}
		return Parameter{}, err
	}

	param := Parameter{
		Variable:  rec.Name,
		Label:     norm.NFC.String(rec.Attributes[AttrLabel]),
		Type:      t,
		Mandatory: rec.IsMandatory || t.Temporal(),
	}

	switch {
	case !Falsy(rec.DefaultValue):
		def, err := ConvertDefault(rec.Name, t, rec.DefaultValue)
		if err != nil {
			return Parameter{}, err
		}
		param.Default = def
	case rec.Attributes[AttrFormula] != "" && p.formulas != nil:
		if v, ok := p.formulas.Resolve(rec.Attributes[AttrFormula], t); ok && !Falsy(v) {
			param.Default = v
		}
	}
	return param, nil
}
