package domain

import "github.com/horia141/jupiter-sub011/internal/schedule"

// Metric is a trackable numeric series. When CollectionParams is set the
// generation engine creates collection tasks in the workspace's default
// project.
type Metric struct {
	Entity
	WorkspaceRef     Ref
	Name             EntityName
	Unit             *string
	CollectionParams *RecurringTaskGenParams
}

func NewMetric(stamp Stamp, workspaceRef Ref, name EntityName, unit *string, collection *RecurringTaskGenParams) (Metric, error) {
	if collection != nil {
		if err := collection.Validate(); err != nil {
			return Metric{}, err
		}
	}
	return Metric{
		Entity:           newEntity(stamp, "Created", Frame{"name": name.String()}),
		WorkspaceRef:     workspaceRef,
		Name:             name,
		Unit:             unit,
		CollectionParams: collection,
	}, nil
}

type MetricUpdate struct {
	Name             *EntityName
	Unit             *string
	CollectionParams *RecurringTaskGenParams
	ClearCollection  bool
}

func (m Metric) Update(stamp Stamp, upd MetricUpdate) (Metric, error) {
	if err := m.checkMutable("metric"); err != nil {
		return m, err
	}
	changed := false
	if upd.Name != nil && *upd.Name != m.Name {
		m.Name = *upd.Name
		changed = true
	}
	if upd.Unit != nil && !strPtrEq(upd.Unit, m.Unit) {
		m.Unit = upd.Unit
		changed = true
	}
	if upd.ClearCollection {
		if m.CollectionParams != nil {
			m.CollectionParams = nil
			changed = true
		}
	} else if upd.CollectionParams != nil {
		if m.CollectionParams == nil || !upd.CollectionParams.Equal(*m.CollectionParams) {
			if err := upd.CollectionParams.Validate(); err != nil {
				return m, err
			}
			m.CollectionParams = upd.CollectionParams
			changed = true
		}
	}
	if !changed {
		return m, nil
	}
	m.Entity = m.bump(stamp, "Updated", Frame{})
	return m, nil
}

func (m Metric) Archive(stamp Stamp, reason ArchiveReason) Metric {
	m.Entity = m.Entity.archive(stamp, reason)
	return m
}

// MetricEntry is one measurement of a metric.
type MetricEntry struct {
	Entity
	MetricRef      Ref
	CollectionTime schedule.ADate
	Value          float64
	Notes          *string
}

func NewMetricEntry(stamp Stamp, metricRef Ref, collectionTime schedule.ADate, value float64, notes *string) MetricEntry {
	return MetricEntry{
		Entity:         newEntity(stamp, "Created", Frame{"value": value}),
		MetricRef:      metricRef,
		CollectionTime: collectionTime,
		Value:          value,
		Notes:          notes,
	}
}

type MetricEntryUpdate struct {
	CollectionTime *schedule.ADate
	Value          *float64
	Notes          *string
}

func (e MetricEntry) Update(stamp Stamp, upd MetricEntryUpdate) (MetricEntry, error) {
	if err := e.checkMutable("metric entry"); err != nil {
		return e, err
	}
	changed := false
	if upd.CollectionTime != nil && !upd.CollectionTime.Equal(e.CollectionTime) {
		e.CollectionTime = *upd.CollectionTime
		changed = true
	}
	if upd.Value != nil && *upd.Value != e.Value {
		e.Value = *upd.Value
		changed = true
	}
	if upd.Notes != nil && !strPtrEq(upd.Notes, e.Notes) {
		e.Notes = upd.Notes
		changed = true
	}
	if !changed {
		return e, nil
	}
	e.Entity = e.bump(stamp, "Updated", Frame{})
	return e, nil
}

func (e MetricEntry) Archive(stamp Stamp, reason ArchiveReason) MetricEntry {
	e.Entity = e.Entity.archive(stamp, reason)
	return e
}
