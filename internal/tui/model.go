package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/horia141/jupiter-sub011/internal/domain"
	"github.com/horia141/jupiter-sub011/internal/engine"
)

type boardModel struct {
	ctx context.Context
	svc *engine.Service

	width  int
	height int

	workspace *domain.Workspace
	projects  []domain.Project
	tasks     []domain.InboxTask
	score     *engine.ScoreOverview

	expanded map[domain.Ref]bool
	selected int

	lastLog string
	loading bool
	err     error
}

type loadedMsg struct {
	workspace *domain.Workspace
	projects  []domain.Project
	tasks     []domain.InboxTask
	score     *engine.ScoreOverview
	err       error
}

type statusChangedMsg struct {
	ref    domain.Ref
	status domain.InboxTaskStatus
	err    error
}

func newBoardModel(ctx context.Context, svc *engine.Service) boardModel {
	return boardModel{
		ctx:      ctx,
		svc:      svc,
		expanded: map[domain.Ref]bool{},
		loading:  true,
		lastLog:  "Loaded.",
	}
}

func (m boardModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m boardModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ws, err := m.svc.GetWorkspace(m.ctx)
		if err != nil {
			return loadedMsg{err: err}
		}
		projects, err := m.svc.ListProjects(m.ctx)
		if err != nil {
			return loadedMsg{err: err}
		}
		tasks, err := m.svc.ListInboxTasks(m.ctx)
		if err != nil {
			return loadedMsg{err: err}
		}
		msg := loadedMsg{workspace: &ws, projects: projects, tasks: tasks}
		if ws.FeatureFlags.IsEnabled(domain.FeatureGamification) {
			if overview, err := m.svc.GetScoreOverview(m.ctx, 0); err == nil {
				msg.score = &overview
			}
		}
		return msg
	}
}

func (m boardModel) statusCmd(ref domain.Ref, status domain.InboxTaskStatus) tea.Cmd {
	return func() tea.Msg {
		_, err := m.svc.ChangeInboxTaskStatus(m.ctx, ref, status)
		return statusChangedMsg{ref: ref, status: status, err: err}
	}
}

func (m boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case loadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err != nil {
			m.lastLog = "Load failed: " + msg.err.Error()
			return m, nil
		}
		m.workspace = msg.workspace
		m.projects = msg.projects
		m.tasks = msg.tasks
		m.score = msg.score
		// Default-expand projects that have live tasks.
		byProject := indexTasks(m.tasks)
		for _, p := range m.projects {
			if len(byProject[p.Ref]) > 0 {
				m.expanded[p.Ref] = true
			}
		}
		m.lastLog = fmt.Sprintf("Refreshed at %s.", time.Now().Format("15:04:05"))
		return m, nil
	case statusChangedMsg:
		if msg.err != nil {
			m.lastLog = "Status change failed: " + msg.err.Error()
			return m, nil
		}
		m.lastLog = fmt.Sprintf("Task %d is now %s.", msg.ref, msg.status)
		return m, m.loadCmd()
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r":
			m.loading = true
			m.lastLog = "Refreshing…"
			return m, m.loadCmd()
		case "up", "k":
			if m.selected > 0 {
				m.selected--
			}
			return m, nil
		case "down", "j":
			lines := m.boardLines()
			if m.selected < len(lines)-1 {
				m.selected++
			}
			return m, nil
		case "enter":
			lines := m.boardLines()
			if m.selected < 0 || m.selected >= len(lines) {
				return m, nil
			}
			line := lines[m.selected]
			if line.isProject {
				m.expanded[line.ref] = !m.expanded[line.ref]
			}
			return m, nil
		case "d", " ":
			return m.changeSelected(domain.InboxTaskStatusDone)
		case "x":
			return m.changeSelected(domain.InboxTaskStatusNotDone)
		case "p":
			return m.changeSelected(domain.InboxTaskStatusInProgress)
		case "b":
			return m.changeSelected(domain.InboxTaskStatusBlocked)
		}
	}
	return m, nil
}

func (m boardModel) changeSelected(status domain.InboxTaskStatus) (tea.Model, tea.Cmd) {
	lines := m.boardLines()
	if m.selected < 0 || m.selected >= len(lines) {
		return m, nil
	}
	line := lines[m.selected]
	if line.isProject {
		m.lastLog = "Select a task, not a project."
		return m, nil
	}
	t := findTask(m.tasks, line.ref)
	if t == nil {
		m.lastLog = "Task not found."
		return m, nil
	}
	if t.Status == status {
		m.lastLog = fmt.Sprintf("Already %s.", status)
		return m, nil
	}
	m.lastLog = fmt.Sprintf("Marking %d %s…", t.Ref, status)
	return m, m.statusCmd(t.Ref, status)
}

type boardLine struct {
	ref       domain.Ref
	title     string
	status    domain.InboxTaskStatus
	source    domain.InboxTaskSource
	due       *string
	isProject bool
	taskCount int
	expanded  bool
}

func (m boardModel) boardLines() []boardLine {
	if len(m.projects) == 0 {
		return nil
	}
	byProject := indexTasks(m.tasks)

	var out []boardLine
	for _, p := range m.projects {
		tasks := byProject[p.Ref]
		out = append(out, boardLine{
			ref:       p.Ref,
			title:     p.Name.String(),
			isProject: true,
			taskCount: len(tasks),
			expanded:  m.expanded[p.Ref],
		})
		if !m.expanded[p.Ref] {
			continue
		}
		for _, t := range tasks {
			line := boardLine{
				ref:    t.Ref,
				title:  t.Name.String(),
				status: t.Status,
				source: t.Source,
			}
			if t.DueDate != nil {
				due := t.DueDate.String()
				line.due = &due
			}
			out = append(out, line)
		}
	}
	if m.selected >= len(out) {
		m.selected = len(out) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
	return out
}

func (m boardModel) View() string {
	if m.err != nil {
		return "Error: " + m.err.Error() + "\n\nPress q to quit.\n"
	}

	header := m.renderHeader()
	sidebar := m.renderSidebar()
	main := m.renderMain()
	footer := m.renderFooter()

	// Simple 2-column layout.
	leftW := 28
	if m.width > 0 {
		maxLeft := m.width / 2
		if maxLeft < leftW {
			leftW = maxLeft
		}
		if leftW < 18 {
			leftW = 18
		}
	}

	linesLeft := strings.Split(sidebar, "\n")
	linesRight := strings.Split(main, "\n")
	max := len(linesLeft)
	if len(linesRight) > max {
		max = len(linesRight)
	}

	var body strings.Builder
	for i := 0; i < max; i++ {
		l := ""
		r := ""
		if i < len(linesLeft) {
			l = linesLeft[i]
		}
		if i < len(linesRight) {
			r = linesRight[i]
		}
		body.WriteString(padRight(l, leftW))
		body.WriteString("  ")
		body.WriteString(r)
		body.WriteString("\n")
	}

	return header + "\n" + body.String() + footer
}

func (m boardModel) renderHeader() string {
	if m.workspace == nil {
		return "Jupiter — loading…"
	}
	open := 0
	for _, t := range m.tasks {
		if !t.Status.IsCompleted() {
			open++
		}
	}
	head := fmt.Sprintf("Jupiter | Workspace: %s | %d open tasks", m.workspace.Name, open)
	if m.score != nil {
		head += fmt.Sprintf(" | Score today %d / week %d", m.score.Daily.TotalScore, m.score.Weekly.TotalScore)
	}
	return head
}

func (m boardModel) renderSidebar() string {
	var lines []string
	if m.score != nil {
		lines = append(lines, "Scores")
		lines = append(lines, renderStat("Day", m.score.Daily))
		lines = append(lines, renderStat("Week", m.score.Weekly))
		lines = append(lines, renderStat("Month", m.score.Monthly))
		lines = append(lines, renderStat("Year", m.score.Yearly))
		lines = append(lines, renderStat("Life", m.score.Lifetime))
		lines = append(lines, "")
	}
	lines = append(lines, "Keys")
	lines = append(lines, "- ↑/↓ or j/k: move")
	lines = append(lines, "- enter: expand/collapse")
	lines = append(lines, "- d/space: done")
	lines = append(lines, "- x: not-done")
	lines = append(lines, "- p: in-progress")
	lines = append(lines, "- b: blocked")
	lines = append(lines, "- r: refresh")
	lines = append(lines, "- q: quit")
	return strings.Join(lines, "\n")
}

func (m boardModel) renderMain() string {
	if m.loading {
		return "Loading…"
	}
	focus := m.focusTasks(3)
	var out []string
	out = append(out, "Focus")
	if len(focus) == 0 {
		out = append(out, "(no open tasks)")
	} else {
		for _, t := range focus {
			label := fmt.Sprintf("- %d %s", t.Ref, t.Name)
			if t.DueDate != nil {
				label += " (due " + t.DueDate.String() + ")"
			}
			out = append(out, label)
		}
	}
	out = append(out, "")
	out = append(out, "Inbox")

	lines := m.boardLines()
	if len(lines) == 0 {
		out = append(out, "(empty)")
		return strings.Join(out, "\n")
	}
	for i, bl := range lines {
		cursor := "  "
		if i == m.selected {
			cursor = "> "
		}
		if bl.isProject {
			fold := "▸ "
			if bl.expanded {
				fold = "▾ "
			}
			out = append(out, fmt.Sprintf("%s%s%s (%d)", cursor, fold, bl.title, bl.taskCount))
			continue
		}
		tag := ""
		if bl.source != domain.InboxTaskSourceUser {
			tag = " [" + string(bl.source) + "]"
		}
		due := ""
		if bl.due != nil {
			due = " due=" + *bl.due
		}
		out = append(out, fmt.Sprintf("%s  %s%s (status=%s%s)", cursor, bl.title, tag, bl.status, due))
	}
	return strings.Join(out, "\n")
}

func (m boardModel) renderFooter() string {
	return "\n" + m.lastLog
}

// focusTasks picks the n open tasks most worth looking at: due soonest,
// urgency breaking ties.
func (m boardModel) focusTasks(n int) []domain.InboxTask {
	var open []domain.InboxTask
	for _, t := range m.tasks {
		if t.Status.IsCompleted() {
			continue
		}
		open = append(open, t)
	}
	sort.Slice(open, func(i, j int) bool {
		di := open[i].DueDate
		dj := open[j].DueDate
		if di == nil && dj != nil {
			return false
		}
		if di != nil && dj == nil {
			return true
		}
		if di != nil && dj != nil && !di.Equal(*dj) {
			return di.Before(*dj)
		}
		if open[i].Eisen != open[j].Eisen {
			return eisenRank(open[i].Eisen) > eisenRank(open[j].Eisen)
		}
		return open[i].Ref < open[j].Ref
	})
	if len(open) > n {
		open = open[:n]
	}
	return open
}

func eisenRank(e domain.Eisen) int {
	switch e {
	case domain.EisenImportantAndUrgent:
		return 3
	case domain.EisenUrgent:
		return 2
	case domain.EisenImportant:
		return 1
	default:
		return 0
	}
}

func renderStat(label string, stats domain.ScoreStats) string {
	return fmt.Sprintf("- %s %d (%dt %dp)", label, stats.TotalScore, stats.InboxTaskCnt, stats.BigPlanCnt)
}

func padRight(s string, width int) string {
	if width <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) >= width {
		return string(r[:width])
	}
	return s + strings.Repeat(" ", width-len(r))
}

func findTask(tasks []domain.InboxTask, ref domain.Ref) *domain.InboxTask {
	for i := range tasks {
		if tasks[i].Ref == ref {
			return &tasks[i]
		}
	}
	return nil
}

func indexTasks(tasks []domain.InboxTask) map[domain.Ref][]domain.InboxTask {
	byProject := map[domain.Ref][]domain.InboxTask{}
	for _, t := range tasks {
		byProject[t.ProjectRef] = append(byProject[t.ProjectRef], t)
	}
	for ref := range byProject {
		group := byProject[ref]
		sort.Slice(group, func(i, j int) bool { return group[i].Ref < group[j].Ref })
		byProject[ref] = group
	}
	return byProject
}
