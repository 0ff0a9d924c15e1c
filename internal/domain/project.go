package domain

// Project groups tasks, habits, chores and big plans. Exactly one root
// project (no parent) exists per workspace; cycles are forbidden by the
// engine at move time.
type Project struct {
	Entity
	WorkspaceRef     Ref
	ParentProjectRef *Ref
	Name             EntityName
}

func NewProject(stamp Stamp, workspaceRef Ref, parentRef *Ref, name EntityName) Project {
	return Project{
		Entity:           newEntity(stamp, "Created", Frame{"name": name.String()}),
		WorkspaceRef:     workspaceRef,
		ParentProjectRef: parentRef,
		Name:             name,
	}
}

func (p Project) IsRoot() bool { return p.ParentProjectRef == nil }

type ProjectUpdate struct {
	Name *EntityName
}

func (p Project) Update(stamp Stamp, upd ProjectUpdate) (Project, error) {
	if err := p.checkMutable("project"); err != nil {
		return p, err
	}
	if upd.Name == nil || *upd.Name == p.Name {
		return p, nil
	}
	p.Name = *upd.Name
	p.Entity = p.bump(stamp, "Updated", Frame{"name": p.Name.String()})
	return p, nil
}

func (p Project) ChangeParent(stamp Stamp, parentRef Ref) (Project, error) {
	if err := p.checkMutable("project"); err != nil {
		return p, err
	}
	if p.IsRoot() {
		return p, CannotModifyError{Kind: "project", Ref: p.Ref, What: "the root project cannot be reparented"}
	}
	if *p.ParentProjectRef == parentRef {
		return p, nil
	}
	p.ParentProjectRef = &parentRef
	p.Entity = p.bump(stamp, "ChangedParent", Frame{"parent": int64(parentRef)})
	return p, nil
}

func (p Project) Archive(stamp Stamp, reason ArchiveReason) Project {
	p.Entity = p.Entity.archive(stamp, reason)
	return p
}
