package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/horia141/jupiter-sub011/internal/domain"
	"github.com/horia141/jupiter-sub011/internal/schedule"
)

type PersonRepo struct {
	q Querier
}

func NewPersonRepo(q Querier) *PersonRepo {
	return &PersonRepo{q: q}
}

const personCols = entityHeadColumns + `, workspace_ref, name, relationship,
	gen_period, gen_eisen, gen_difficulty, gen_actionable_from_day, gen_actionable_from_month,
	gen_due_at_day, gen_due_at_month, gen_skip_rule,
	birthday_month, birthday_day`

var personExtraCols = append(append([]string{"workspace_ref", "name", "relationship"}, genParamsCols...),
	"birthday_month", "birthday_day")

func personVals(p domain.Person) []any {
	vals := []any{int64(p.WorkspaceRef), p.Name.String(), string(p.Relationship)}
	vals = append(vals, genParamsVals(p.CatchUpParams)...)
	if p.Birthday != nil {
		return append(vals, int(p.Birthday.Month), p.Birthday.Day)
	}
	return append(vals, nil, nil)
}

func (r *PersonRepo) Create(ctx context.Context, p domain.Person) (domain.Person, error) {
	ref, err := insertEntity(ctx, r.q, "persons", p.Entity, personExtraCols, personVals(p))
	if err != nil {
		return p, err
	}
	p.Entity.Ref = ref
	p.Entity = p.Entity.ClearEvents()
	return p, nil
}

func (r *PersonRepo) Save(ctx context.Context, p domain.Person) (domain.Person, error) {
	if err := updateEntity(ctx, r.q, "persons", "person", p.Entity, personExtraCols, personVals(p)); err != nil {
		return p, err
	}
	p.Entity = p.Entity.ClearEvents()
	return p, nil
}

func (r *PersonRepo) Get(ctx context.Context, ref domain.Ref) (*domain.Person, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+personCols+` FROM persons WHERE id = ?`, int64(ref))
	return scanPerson(row)
}

func (r *PersonRepo) ListActive(ctx context.Context, workspaceRef domain.Ref) ([]domain.Person, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT `+personCols+` FROM persons
		WHERE workspace_ref = ? AND archived = 0
		ORDER BY id ASC
	`, int64(workspaceRef))
	if err != nil {
		return nil, fmt.Errorf("person list: %w", err)
	}
	defer rows.Close()

	var out []domain.Person
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("person rows: %w", err)
	}
	return out, nil
}

func scanPerson(row scanner) (*domain.Person, error) {
	var (
		head          entityRow
		workspace     int64
		name          string
		relationship  string
		params        genParamsRow
		birthdayMonth sql.NullInt64
		birthdayDay   sql.NullInt64
	)
	dests := append(head.dests(), &workspace, &name, &relationship)
	dests = append(dests, params.dests()...)
	dests = append(dests, &birthdayMonth, &birthdayDay)
	if err := row.Scan(dests...); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("person scan: %w", err)
	}

	var birthday *domain.PersonBirthday
	if birthdayMonth.Valid && birthdayDay.Valid {
		birthday = &domain.PersonBirthday{
			Month: time.Month(birthdayMonth.Int64),
			Day:   int(birthdayDay.Int64),
		}
	}

	return &domain.Person{
		Entity:        head.toEntity(),
		WorkspaceRef:  domain.Ref(workspace),
		Name:          domain.EntityName(name),
		Relationship:  domain.PersonRelationship(relationship),
		CatchUpParams: params.toParams(),
		Birthday:      birthday,
	}, nil
}

type VacationRepo struct {
	q Querier
}

func NewVacationRepo(q Querier) *VacationRepo {
	return &VacationRepo{q: q}
}

const vacationCols = entityHeadColumns + `, workspace_ref, name, start_date, end_date`

var vacationExtraCols = []string{"workspace_ref", "name", "start_date", "end_date"}

func vacationVals(v domain.Vacation) []any {
	return []any{int64(v.WorkspaceRef), v.Name.String(), v.StartDate.String(), v.EndDate.String()}
}

func (r *VacationRepo) Create(ctx context.Context, v domain.Vacation) (domain.Vacation, error) {
	ref, err := insertEntity(ctx, r.q, "vacations", v.Entity, vacationExtraCols, vacationVals(v))
	if err != nil {
		return v, err
	}
	v.Entity.Ref = ref
	v.Entity = v.Entity.ClearEvents()
	return v, nil
}

func (r *VacationRepo) Save(ctx context.Context, v domain.Vacation) (domain.Vacation, error) {
	if err := updateEntity(ctx, r.q, "vacations", "vacation", v.Entity, vacationExtraCols, vacationVals(v)); err != nil {
		return v, err
	}
	v.Entity = v.Entity.ClearEvents()
	return v, nil
}

func (r *VacationRepo) Get(ctx context.Context, ref domain.Ref) (*domain.Vacation, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+vacationCols+` FROM vacations WHERE id = ?`, int64(ref))
	return scanVacation(row)
}

func (r *VacationRepo) ListActive(ctx context.Context, workspaceRef domain.Ref) ([]domain.Vacation, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT `+vacationCols+` FROM vacations
		WHERE workspace_ref = ? AND archived = 0
		ORDER BY start_date ASC, id ASC
	`, int64(workspaceRef))
	if err != nil {
		return nil, fmt.Errorf("vacation list: %w", err)
	}
	defer rows.Close()

	var out []domain.Vacation
	for rows.Next() {
		v, err := scanVacation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("vacation rows: %w", err)
	}
	return out, nil
}

func scanVacation(row scanner) (*domain.Vacation, error) {
	var (
		head      entityRow
		workspace int64
		name      string
		startDate string
		endDate   string
	)
	dests := append(head.dests(), &workspace, &name, &startDate, &endDate)
	if err := row.Scan(dests...); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("vacation scan: %w", err)
	}

	start, err := schedule.ParseADate(startDate)
	if err != nil {
		return nil, fmt.Errorf("vacation start date: %w", err)
	}
	end, err := schedule.ParseADate(endDate)
	if err != nil {
		return nil, fmt.Errorf("vacation end date: %w", err)
	}

	return &domain.Vacation{
		Entity:       head.toEntity(),
		WorkspaceRef: domain.Ref(workspace),
		Name:         domain.EntityName(name),
		StartDate:    start,
		EndDate:      end,
	}, nil
}
