package root

import (
	"strconv"

	"github.com/horia141/jupiter-sub011/internal/domain"
	"github.com/horia141/jupiter-sub011/internal/schedule"
)

func parseRef(raw string) (domain.Ref, error) {
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		return 0, domain.InputValidationError{Field: "ref", Msg: raw}
	}
	return domain.Ref(n), nil
}

// parseDateFlag maps an unset flag to nil.
func parseDateFlag(raw string) (*schedule.ADate, error) {
	if raw == "" {
		return nil, nil
	}
	d, err := schedule.ParseADate(raw)
	if err != nil {
		return nil, domain.InputValidationError{Field: "date", Msg: raw}
	}
	return &d, nil
}

// parseNameFlag maps an unset flag to nil.
func parseNameFlag(raw string) (*domain.EntityName, error) {
	if raw == "" {
		return nil, nil
	}
	name, err := domain.NewEntityName(raw)
	if err != nil {
		return nil, err
	}
	return &name, nil
}

func parseRefFlag(raw string) (*domain.Ref, error) {
	if raw == "" {
		return nil, nil
	}
	ref, err := parseRef(raw)
	if err != nil {
		return nil, err
	}
	return &ref, nil
}

func strFlag(raw string) *string {
	if raw == "" {
		return nil
	}
	return &raw
}

// parseGenParams assembles recurring generation parameters from flag
// values. Validation happens in the domain layer.
func parseGenParams(period, eisen, difficulty, skipRule string) (domain.RecurringTaskGenParams, error) {
	p, err := schedule.ParsePeriod(period)
	if err != nil {
		return domain.RecurringTaskGenParams{}, domain.InputValidationError{Field: "period", Msg: period}
	}
	e, err := domain.ParseEisen(eisen)
	if err != nil {
		return domain.RecurringTaskGenParams{}, err
	}
	d, err := domain.ParseDifficulty(difficulty)
	if err != nil {
		return domain.RecurringTaskGenParams{}, err
	}
	return domain.RecurringTaskGenParams{
		Period:     p,
		Eisen:      e,
		Difficulty: d,
		SkipRule:   strFlag(skipRule),
	}, nil
}

func formatDate(d *schedule.ADate) string {
	if d == nil {
		return "-"
	}
	return d.String()
}
